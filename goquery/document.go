// Package goquery implements recipe extraction strategies over HTML
// documents: JSON-LD, Microdata, a content-density heuristic, domain
// fingerprint replay and post-extraction enrichment.
package goquery

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mise"
)

var (
	spaceRE     = regexp.MustCompile(`\s+`)
	identRE     = regexp.MustCompile(`^[A-Za-z_-][A-Za-z0-9_-]*$`)
	generatedRE = regexp.MustCompile(`\d{3,}|^(css|sc|jsx|svelte|emotion)-`)
)

// parse builds a document from raw HTML.
func parse(raw string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, mise.Errorf(mise.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// cleanText unescapes entities and collapses whitespace.
func cleanText(s string) string {
	return strings.TrimSpace(spaceRE.ReplaceAllString(html.UnescapeString(s), " "))
}

// stripTags returns the text content of an HTML fragment. Plain text is
// returned cleaned.
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return cleanText(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return cleanText(s)
	}
	return cleanText(doc.Find("body").Text())
}

// selText returns the cleaned text of a selection.
func selText(s *goquery.Selection) string {
	return cleanText(s.Text())
}

// listItems returns the cleaned, non-empty texts of a list's items.
func listItems(list *goquery.Selection) []string {
	var out []string
	list.Find("li").Each(func(_ int, li *goquery.Selection) {
		// Nested lists are visited on their own.
		if li.Find("li").Length() > 0 {
			li = li.Clone()
			li.Find("ul, ol").Remove()
		}
		if t := selText(li); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// selectorFor builds a CSS selector for s from up to three levels of
// tag names, ids and stable class names. Ids anchor the path.
func selectorFor(s *goquery.Selection) string {
	var parts []string
	for cur := s; cur.Length() > 0 && len(parts) < 3; cur = cur.Parent() {
		tag := goquery.NodeName(cur)
		if tag == "html" || tag == "body" || tag == "" {
			break
		}
		if id, ok := cur.Attr("id"); ok && identRE.MatchString(id) && !generatedRE.MatchString(id) {
			parts = append([]string{tag + "#" + id}, parts...)
			break
		}
		part := tag
		if cls := stableClasses(cur); len(cls) > 0 {
			part += "." + strings.Join(cls, ".")
		}
		parts = append([]string{part}, parts...)
	}
	return strings.Join(parts, " > ")
}

func stableClasses(s *goquery.Selection) []string {
	class, _ := s.Attr("class")
	var out []string
	for _, c := range strings.Fields(class) {
		if identRE.MatchString(c) && !generatedRE.MatchString(c) {
			out = append(out, c)
		}
		if len(out) == 2 {
			break
		}
	}
	return out
}

// resolveURL resolves href against base. Returns "" for unparseable and
// non-HTTP references such as data: URIs.
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || isNonHTTPLink(href) {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		if ref.IsAbs() {
			return ref.String()
		}
		return ""
	}
	return b.ResolveReference(ref).String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

// metaContent returns the first non-empty content of the meta tags
// matched by selector.
func metaContent(doc *goquery.Document, selector string) string {
	var out string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out = cleanText(s.AttrOr("content", ""))
		return out == ""
	})
	return out
}

// pageTitle returns the first heading, falling back to og:title and <title>.
func pageTitle(doc *goquery.Document) string {
	if t := selText(doc.Find("h1").First()); t != "" {
		return t
	}
	if t := metaContent(doc, `meta[property="og:title"]`); t != "" {
		return t
	}
	return selText(doc.Find("title").First())
}

// pageDescription returns the meta description, falling back to og:description.
func pageDescription(doc *goquery.Document) string {
	if d := metaContent(doc, `meta[name="description"]`); d != "" {
		return d
	}
	return metaContent(doc, `meta[property="og:description"]`)
}
