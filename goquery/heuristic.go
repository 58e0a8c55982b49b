package goquery

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/ingredient"
	"golang.org/x/net/html"
)

var _ mise.Strategy = (*Heuristic)(nil)

// Content scoring weights.
const (
	keywordBonus    = 25
	listBonus       = 30
	maxScoredLists  = 10
	minContentScore = 80
	descendRatio    = 0.75
)

const containerTags = "body, main, article, section, div, td"

// Heuristic extracts recipes from plain HTML. Known recipe-card plugins are
// read through their own selectors; other pages are denoised and scored
// for the densest recipe-like container, whose lists are harvested.
type Heuristic struct {
	detector *Detector
}

// NewHeuristic creates a Heuristic strategy. A nil detector uses NewDetector.
func NewHeuristic(detector *Detector) *Heuristic {
	if detector == nil {
		detector = NewDetector()
	}
	return &Heuristic{detector: detector}
}

// Source returns mise.SourceHeuristic.
func (*Heuristic) Source() mise.Source {
	return mise.SourceHeuristic
}

// Extract returns nil when no container holds an ingredient list.
func (h *Heuristic) Extract(ctx context.Context, page *mise.Page) (*mise.RecipeDraft, error) {
	doc, err := parse(page.HTML)
	if err != nil {
		return nil, err
	}
	// Headings and meta survive cleaning poorly, so read them first.
	title, desc := pageTitle(doc), pageDescription(doc)

	if d := h.fromPlugin(doc, page.URL); d != nil {
		d.Title, d.Description = title, desc
		return d, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean(doc)
	container := bestContainer(doc)
	if container == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	steps, methodList := methodSection(container)
	if len(steps) == 0 {
		steps, methodList = methodSection(doc.Selection)
	}
	lines, selector := harvestIngredients(container, methodList)
	if len(lines) == 0 {
		return nil, nil
	}

	d := &mise.RecipeDraft{
		Title:        title,
		Description:  desc,
		Ingredients:  ingredient.ParseAll(lines),
		Instructions: steps,
		ImageURL:     ResolveImage(doc, container, page.URL),
		Source:       mise.SourceHeuristic,
		Selectors:    []string{selector},
	}
	if methodList.Length() > 0 {
		d.Selectors = append(d.Selectors, selectorFor(methodList)+" li")
	}
	return d, nil
}

func (h *Heuristic) fromPlugin(doc *goquery.Document, baseURL string) *mise.RecipeDraft {
	p := h.detector.Detect(doc)
	if p == PluginUnknown {
		return nil
	}
	sel, _ := h.detector.Get(p)
	raw := texts(doc.Find(sel.Ingredients))
	lines := ingredient.ParseAll(raw)
	if len(lines) == 0 {
		return nil
	}
	var steps []string
	for _, t := range texts(doc.Find(sel.Instructions)) {
		if s := stripStepNumber(t); s != "" {
			steps = append(steps, s)
		}
	}
	return &mise.RecipeDraft{
		Ingredients:  lines,
		Instructions: steps,
		ImageURL:     ResolveImage(doc, doc.Find(sel.Marker).First(), baseURL),
		Source:       mise.SourceHeuristic,
		Selectors:    []string{sel.Ingredients, sel.Instructions},
	}
}

func texts(s *goquery.Selection) []string {
	var out []string
	s.Each(func(_ int, item *goquery.Selection) {
		if t := selText(item); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// bestContainer returns the highest-scoring container, then descends into
// any descendant that keeps most of that score. Returns nil when nothing
// reaches minContentScore.
func bestContainer(doc *goquery.Document) *goquery.Selection {
	scores := make(map[*html.Node]float64)
	score := func(s *goquery.Selection) float64 {
		n := s.Get(0)
		if v, ok := scores[n]; ok {
			return v
		}
		v := contentScore(s)
		scores[n] = v
		return v
	}

	var best *goquery.Selection
	var bestScore float64
	doc.Find(containerTags).Each(func(_ int, s *goquery.Selection) {
		if s.Find("li").Length() == 0 {
			return
		}
		if v := score(s); best == nil || v > bestScore {
			best, bestScore = s, v
		}
	})
	if best == nil || bestScore < minContentScore {
		return nil
	}

	for {
		var next *goquery.Selection
		var nextScore float64
		best.Find(containerTags).Each(func(_ int, s *goquery.Selection) {
			if s.Find("li").Length() == 0 {
				return
			}
			if v := score(s); next == nil || v > nextScore {
				next, nextScore = s, v
			}
		})
		if next == nil || nextScore < descendRatio*bestScore {
			return best
		}
		best, bestScore = next, nextScore
	}
}

// contentScore is text_length × (1 − link_density) plus bonuses for
// recipe vocabulary and contained lists.
func contentScore(s *goquery.Selection) float64 {
	text := selText(s)
	length := utf8.RuneCountInString(text)
	if length == 0 {
		return 0
	}
	var linkLen int
	s.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkLen += utf8.RuneCountInString(selText(a))
	})
	density := float64(linkLen) / float64(length)
	if density > 1 {
		density = 1
	}
	lists := min(s.Find("ul, ol").Length(), maxScoredLists)
	return float64(length)*(1-density) +
		float64(mise.CountRecipeKeywords(text)*keywordBonus) +
		float64(lists*listBonus)
}

// harvestIngredients collects lines from lists in container where at
// least half the items look like ingredients. The method list and lists
// under a method heading are skipped. The selector matches the items of
// every harvested list.
func harvestIngredients(container, methodList *goquery.Selection) ([]string, string) {
	var lines, selectors []string
	seen := make(map[string]bool)
	container.Find("ul, ol").Each(func(_ int, list *goquery.Selection) {
		if methodList.Length() > 0 && list.Get(0) == methodList.Get(0) {
			return
		}
		if list.ParentsFiltered("ul, ol").Length() > 0 || underMethodHeading(list) {
			return
		}
		items := ingredient.MergeSplitQuantities(listItems(list))
		var kept []string
		for _, it := range items {
			if ingredient.LooksLikeIngredient(it) {
				kept = append(kept, it)
			}
		}
		if len(kept) == 0 || 2*len(kept) < len(items) {
			return
		}
		lines = append(lines, kept...)
		if sel := selectorFor(list) + " li"; !seen[sel] {
			seen[sel] = true
			selectors = append(selectors, sel)
		}
	})
	return lines, strings.Join(selectors, ", ")
}

// underMethodHeading reports whether the nearest heading before list, at
// its own level or an ancestor's, names the method section.
func underMethodHeading(list *goquery.Selection) bool {
	for cur := list; cur.Length() > 0 && !isBlockRoot(cur); cur = cur.Parent() {
		for prev := cur.Prev(); prev.Length() > 0; prev = prev.Prev() {
			h := prev.Filter(headingTags).AddSelection(prev.Find(headingTags)).Last()
			if h.Length() > 0 {
				return methodHeadingRE.MatchString(selText(h))
			}
		}
	}
	return false
}
