package goquery

import (
	"context"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/ingredient"
)

var _ mise.Strategy = (*Microdata)(nil)

// Microdata extracts recipes from schema.org Microdata attributes.
type Microdata struct{}

// NewMicrodata creates a Microdata strategy.
func NewMicrodata() *Microdata {
	return &Microdata{}
}

// Source returns mise.SourceMicrodata.
func (*Microdata) Source() mise.Source {
	return mise.SourceMicrodata
}

// Extract reads the item properties of the first Recipe-typed item scope.
// Returns nil when the page has no such scope or it lists no ingredients.
func (m *Microdata) Extract(ctx context.Context, page *mise.Page) (*mise.RecipeDraft, error) {
	doc, err := parse(page.HTML)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.extract(doc, page.URL), nil
}

func (m *Microdata) extract(doc *goquery.Document, baseURL string) *mise.RecipeDraft {
	scope := recipeScope(doc)
	if scope == nil {
		return nil
	}
	props := scopeProps(scope)

	ingredientProp := "recipeIngredient"
	if len(props[ingredientProp]) == 0 {
		ingredientProp = "ingredients"
	}
	var raw []string
	for _, s := range props[ingredientProp] {
		if t := selText(s); t != "" {
			raw = append(raw, t)
		}
	}
	lines := ingredient.ParseAll(raw)
	if len(lines) == 0 {
		return nil
	}

	d := &mise.RecipeDraft{
		Title:        propText(props, "name"),
		Description:  propText(props, "description"),
		Ingredients:  lines,
		Instructions: microdataSteps(props["recipeInstructions"]),
		Servings:     yieldValue(propText(props, "recipeYield")),
		PrepMinutes:  parseDuration(propText(props, "prepTime")),
		CookMinutes:  parseDuration(propText(props, "cookTime")),
		TotalMinutes: parseDuration(propText(props, "totalTime")),
		Source:       mise.SourceMicrodata,
		Selectors:    []string{`[itemprop="` + ingredientProp + `"]`},
	}
	if img := props["image"]; len(img) > 0 {
		d.ImageURL = resolveURL(baseURL, itemValue(img[0]))
	}
	for k := range props {
		d.SchemaKeys = append(d.SchemaKeys, k)
	}
	sort.Strings(d.SchemaKeys)
	return d
}

// recipeScope returns the first element whose itemtype names schema.org Recipe.
func recipeScope(doc *goquery.Document) *goquery.Selection {
	var scope *goquery.Selection
	doc.Find("[itemscope][itemtype]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, t := range strings.Fields(s.AttrOr("itemtype", "")) {
			if typeIs(t, "Recipe") {
				scope = s
				return false
			}
		}
		return true
	})
	return scope
}

// scopeProps groups the properties that belong to scope itself, skipping
// those of nested item scopes such as an author or nutrition block.
func scopeProps(scope *goquery.Selection) map[string][]*goquery.Selection {
	root := scope.Get(0)
	props := make(map[string][]*goquery.Selection)
	scope.Find("[itemprop]").Each(func(_ int, s *goquery.Selection) {
		owner := s.Parent().Closest("[itemscope]")
		if owner.Length() == 0 || owner.Get(0) != root {
			return
		}
		for _, name := range strings.Fields(s.AttrOr("itemprop", "")) {
			props[name] = append(props[name], s)
		}
	})
	return props
}

// itemValue returns a property value following the Microdata rules for
// which attribute carries the value of each element type.
func itemValue(s *goquery.Selection) string {
	switch goquery.NodeName(s) {
	case "meta":
		return cleanText(s.AttrOr("content", ""))
	case "img", "audio", "video", "source", "embed", "iframe":
		if src := s.AttrOr("src", ""); src != "" && !strings.HasPrefix(src, "data:") {
			return src
		}
		return s.AttrOr("data-src", "")
	case "a", "link", "area":
		return s.AttrOr("href", "")
	case "time":
		if dt, ok := s.Attr("datetime"); ok {
			return dt
		}
	case "data", "meter":
		if v, ok := s.Attr("value"); ok {
			return v
		}
	}
	if c, ok := s.Attr("content"); ok {
		return cleanText(c)
	}
	return selText(s)
}

func propText(props map[string][]*goquery.Selection, name string) string {
	for _, s := range props[name] {
		if v := itemValue(s); v != "" {
			return v
		}
	}
	return ""
}

// microdataSteps flattens instruction properties. A property holding a
// list contributes one step per item; a HowToStep scope contributes its
// text property.
func microdataSteps(sels []*goquery.Selection) []string {
	var out []string
	for _, s := range sels {
		if items := s.Find("li"); items.Length() > 0 {
			for _, it := range listItems(s) {
				if t := stripStepNumber(it); t != "" {
					out = append(out, t)
				}
			}
			continue
		}
		if _, ok := s.Attr("itemscope"); ok {
			if text := s.Find(`[itemprop="text"]`).First(); text.Length() > 0 {
				s = text
			}
		}
		if t := stripStepNumber(itemValue(s)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
