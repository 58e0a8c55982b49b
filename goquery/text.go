package goquery

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true, "dd": true,
	"div": true, "dl": true, "dt": true, "figcaption": true, "figure": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

// visibleLines renders the document's visible text one block per line.
func visibleLines(doc *goquery.Document) []string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template", "head":
				return
			}
		}
		block := n.Type == html.ElementNode && blockTags[n.Data]
		if block {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte('\n')
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	var out []string
	for _, line := range strings.Split(b.String(), "\n") {
		if t := cleanText(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}

const maxServings = 100

var servingsREs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,3})\s*(?:[-–]\s*\d{1,3}\s*)?(?:portioner|portionen|portions?|port\.|personer|personen|personnes|persons|people|pers\.|servings?|porciones|raciones|personas)(?:$|[^\p{L}])`),
	regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:serves|servings|yield|makes|portioner|portionen|porciones)\s*:?\s*(\d{1,3})`),
}

// findServings returns the first serving count stated in lines.
func findServings(lines []string) *int {
	for _, line := range lines {
		for _, re := range servingsREs {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n <= maxServings {
				return &n
			}
		}
	}
	return nil
}

type timeKeywords struct {
	prep, cook, total []string
}

var timeKeywordsByLang = map[string]timeKeywords{
	"sv": {
		prep:  []string{"förberedelsetid", "förberedelse"},
		cook:  []string{"tillagningstid", "tillagning", "koktid", "ugnstid", "stektid"},
		total: []string{"total tid", "totaltid", "tid"},
	},
	"en": {
		prep:  []string{"preparation time", "prep time", "preparation", "prep"},
		cook:  []string{"cooking time", "cook time", "baking time", "bake time", "cook"},
		total: []string{"total time", "ready in", "total"},
	},
	"de": {
		prep:  []string{"vorbereitungszeit", "arbeitszeit", "vorbereitung"},
		cook:  []string{"kochzeit", "backzeit", "garzeit"},
		total: []string{"gesamtzeit"},
	},
	"fr": {
		prep:  []string{"temps de préparation", "préparation"},
		cook:  []string{"temps de cuisson", "cuisson"},
		total: []string{"temps total"},
	},
	"es": {
		prep:  []string{"tiempo de preparación", "preparación"},
		cook:  []string{"tiempo de cocción", "cocción"},
		total: []string{"tiempo total"},
	},
}

// keywordsFor returns the time keywords of lang, or of every language when
// lang is unknown. Longer phrases come first.
func keywordsFor(lang string) timeKeywords {
	kw, ok := timeKeywordsByLang[lang]
	if !ok {
		for _, k := range timeKeywordsByLang {
			kw.prep = append(kw.prep, k.prep...)
			kw.cook = append(kw.cook, k.cook...)
			kw.total = append(kw.total, k.total...)
		}
	}
	return timeKeywords{prep: byLength(kw.prep), cook: byLength(kw.cook), total: byLength(kw.total)}
}

func byLength(words []string) []string {
	out := append([]string(nil), words...)
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}

var durationPhraseRE = regexp.MustCompile(`(?i)^[\s:.\-–]*(?:ca\.?\s*|cirka\s*|about\s*|approx\.?\s*)?(?:(\d+)\s*(?:hours?|hrs?|timmar|timme|tim|stunden|stunde|std|heures?|horas?|h)\.?)?\s*(?:(\d+)\s*(?:minutes|minuten|minutos|minuter|minut|mins|min|m)\b)?`)

// findMinutes returns the duration stated right after the first keyword
// found in lines, in minutes.
func findMinutes(lines []string, keywords []string) *int {
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, kw := range keywords {
			if n := minutesAfter(lower, kw); n != nil {
				return n
			}
		}
	}
	return nil
}

func minutesAfter(lower, kw string) *int {
	for from := 0; from < len(lower); {
		i := strings.Index(lower[from:], kw)
		if i < 0 {
			return nil
		}
		i += from
		from = i + len(kw)
		if i > 0 {
			if r, _ := utf8.DecodeLastRuneInString(lower[:i]); unicode.IsLetter(r) {
				continue
			}
		}
		m := durationPhraseRE.FindStringSubmatch(lower[from:])
		if m == nil || (m[1] == "" && m[2] == "") {
			continue
		}
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		if total := h*60 + mins; total > 0 {
			return &total
		}
	}
	return nil
}
