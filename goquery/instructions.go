package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	methodHeadingRE = regexp.MustCompile(`(?i)^\s*(gör så här|så här gör du|instruktioner|tillvägagångssätt|tillagning|instructions|directions|method|preparation|steps|zubereitung|anleitung|préparation|elaboración|preparación|pasos)\b`)
	stepPrefixRE    = regexp.MustCompile(`(?i)^\s*((steg|step|schritt|étape|paso)\s*\d+\s*[.:)-]?|\d+\s*[.):])\s*`)
	cookingVerbRE   = regexp.MustCompile(`(?i)^(sätt|värm|blanda|vispa|koka|stek|skala|hacka|skär|tillsätt|rör|häll|lägg|grädda|smält|låt|servera|fräs|preheat|heat|mix|whisk|stir|boil|fry|peel|chop|cut|add|pour|place|bake|melt|combine|bring|cook|season|serve|put|let|heizen|mischen|schneiden|verrühren|geben|préchauffer|préchauffez|mélanger|mélangez|couper|coupez|ajouter|ajoutez|precalentar|precalienta|mezclar|mezcla|cortar|corta|añadir|añade)\b`)
)

const headingTags = "h1, h2, h3, h4, h5, h6, strong, b, dt"

// maxHeadingLength bounds how long heading text may be; longer text is prose.
const maxHeadingLength = 40

// stripStepNumber removes a leading "1." or "Step 2:" label.
func stripStepNumber(s string) string {
	return strings.TrimSpace(stepPrefixRE.ReplaceAllString(s, ""))
}

// methodSection finds ordered or labeled steps anchored under a heading
// that names the method. It returns the step texts and the list they were
// read from, which is empty when steps came from paragraphs.
func methodSection(scope *goquery.Selection) ([]string, *goquery.Selection) {
	var steps []string
	var list *goquery.Selection
	scope.Find(headingTags).EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := selText(h)
		if len(text) > maxHeadingLength || strings.ContainsAny(text, "0123456789") || !methodHeadingRE.MatchString(text) {
			return true
		}
		steps, list = stepsAfter(h)
		return len(steps) == 0
	})
	if list == nil {
		list = scope.Slice(0, 0)
	}
	return trimLeadIn(steps), list
}

// stepsAfter reads the first list, or else the paragraphs, that follow h
// up to the next heading. Inline headings such as <strong> are lifted to
// their block parent first.
func stepsAfter(h *goquery.Selection) ([]string, *goquery.Selection) {
	anchor := h
	for anchor.Next().Length() == 0 && anchor.Parent().Length() > 0 && !isBlockRoot(anchor.Parent()) {
		anchor = anchor.Parent()
	}

	var paragraphs []string
	for sib := anchor.Next(); sib.Length() > 0; sib = sib.Next() {
		if sib.Is("h1, h2, h3, h4, h5, h6") {
			break
		}
		lists := sib.Filter("ol, ul").AddSelection(sib.Find("ol, ul")).First()
		if lists.Length() > 0 {
			var steps []string
			for _, it := range listItems(lists) {
				if s := stripStepNumber(it); s != "" {
					steps = append(steps, s)
				}
			}
			if len(steps) > 0 {
				return steps, lists
			}
		}
		if sib.Is("p, div") {
			if t := stripStepNumber(selText(sib)); t != "" {
				paragraphs = append(paragraphs, t)
			}
		}
	}
	return paragraphs, nil
}

func isBlockRoot(s *goquery.Selection) bool {
	switch goquery.NodeName(s) {
	case "body", "html", "main", "article", "section":
		return true
	}
	return false
}

// trimLeadIn drops generic lines before the first step that starts with a
// cooking verb. Steps are kept as-is when none does.
func trimLeadIn(steps []string) []string {
	for i, s := range steps {
		if cookingVerbRE.MatchString(s) {
			return steps[i:]
		}
	}
	return steps
}
