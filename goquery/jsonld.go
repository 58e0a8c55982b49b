package goquery

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/ingredient"
)

const jsonLDSelector = `script[type="application/ld+json"]`

var _ mise.Strategy = (*JSONLD)(nil)

var (
	blockCommentRE  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRE   = regexp.MustCompile(`(?m)^\s*//.*$`)
	htmlCommentRE   = regexp.MustCompile(`(?s)<!--|-->|<!\[CDATA\[|\]\]>`)
	trailingCommaRE = regexp.MustCompile(`,\s*([}\]])`)
	controlCharRE   = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)

	durationDaysRE    = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*D`)
	durationHoursRE   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*H`)
	durationMinutesRE = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*M`)
	firstIntRE        = regexp.MustCompile(`\d+`)
)

// JSONLD extracts recipes from embedded JSON-LD blocks.
type JSONLD struct{}

// NewJSONLD creates a JSON-LD strategy.
func NewJSONLD() *JSONLD {
	return &JSONLD{}
}

// Source returns mise.SourceStructured.
func (*JSONLD) Source() mise.Source {
	return mise.SourceStructured
}

// Extract scans every JSON-LD block for a Recipe node. Returns nil when no
// block holds a recipe with at least one ingredient.
func (j *JSONLD) Extract(ctx context.Context, page *mise.Page) (*mise.RecipeDraft, error) {
	doc, err := parse(page.HTML)
	if err != nil {
		return nil, err
	}
	return j.extract(ctx, doc, page.URL)
}

func (j *JSONLD) extract(ctx context.Context, doc *goquery.Document, baseURL string) (*mise.RecipeDraft, error) {
	var draft *mise.RecipeDraft
	var ctxErr error
	doc.Find(jsonLDSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if ctxErr = ctx.Err(); ctxErr != nil {
			return false
		}
		v, ok := decodeLenient(s.Text())
		if !ok {
			return true
		}
		node := findRecipeNode(v)
		if node == nil {
			return true
		}
		draft = draftFromNode(node, baseURL)
		return draft == nil
	})
	if ctxErr != nil {
		return nil, ctxErr
	}
	return draft, nil
}

// decodeLenient parses a JSON-LD block, stripping comment-like noise and
// trailing commas and finally falling back to the first balanced object.
func decodeLenient(raw string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v, true
	}
	cleaned := htmlCommentRE.ReplaceAllString(raw, "")
	cleaned = blockCommentRE.ReplaceAllString(cleaned, "")
	cleaned = lineCommentRE.ReplaceAllString(cleaned, "")
	cleaned = controlCharRE.ReplaceAllString(cleaned, " ")
	cleaned = trailingCommaRE.ReplaceAllString(cleaned, "$1")
	if err := json.Unmarshal([]byte(cleaned), &v); err == nil {
		return v, true
	}
	obj, ok := mise.FirstJSONObject(cleaned)
	if !ok {
		return nil, false
	}
	if err := json.Unmarshal([]byte(obj), &v); err != nil {
		return nil, false
	}
	return v, true
}

// findRecipeNode walks @graph arrays, nested objects and lists depth-first
// for the first node typed Recipe.
func findRecipeNode(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if typeIs(t["@type"], "Recipe") {
			return t
		}
		if g, ok := t["@graph"]; ok {
			if n := findRecipeNode(g); n != nil {
				return n
			}
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			if k != "@graph" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			if n := findRecipeNode(t[k]); n != nil {
				return n
			}
		}
	case []any:
		for _, item := range t {
			if n := findRecipeNode(item); n != nil {
				return n
			}
		}
	}
	return nil
}

// typeIs reports whether an @type value, a string or an array of strings,
// names want. Prefixed forms such as "schema:Recipe" match too.
func typeIs(v any, want string) bool {
	match := func(s string) bool {
		s = strings.TrimSpace(s)
		if i := strings.LastIndexAny(s, "/:"); i >= 0 {
			s = s[i+1:]
		}
		return strings.EqualFold(s, want)
	}
	switch t := v.(type) {
	case string:
		return match(t)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && match(s) {
				return true
			}
		}
	}
	return false
}

func draftFromNode(node map[string]any, baseURL string) *mise.RecipeDraft {
	raw := stringList(first(node, "recipeIngredient", "ingredients"))
	lines := ingredient.ParseAll(raw)
	if len(lines) == 0 {
		return nil
	}

	d := &mise.RecipeDraft{
		Title:        stripTags(stringValue(node["name"])),
		Description:  stripTags(stringValue(node["description"])),
		Ingredients:  lines,
		Instructions: flattenInstructions(node["recipeInstructions"]),
		ImageURL:     resolveURL(baseURL, imageValue(node["image"])),
		Servings:     yieldValue(node["recipeYield"]),
		PrepMinutes:  parseDuration(stringValue(node["prepTime"])),
		CookMinutes:  parseDuration(stringValue(node["cookTime"])),
		TotalMinutes: parseDuration(stringValue(node["totalTime"])),
		Source:       mise.SourceStructured,
		Selectors:    []string{jsonLDSelector},
		SchemaKeys:   schemaKeys(node),
	}
	if lang := stringValue(node["inLanguage"]); lang != "" {
		d.Language = primaryLanguage(lang)
	}
	return d
}

// primaryLanguage reduces a language tag such as "sv-SE" to "sv".
func primaryLanguage(tag string) string {
	tag, _, _ = strings.Cut(tag, "-")
	tag, _, _ = strings.Cut(tag, "_")
	return strings.ToLower(strings.TrimSpace(tag))
}

func first(node map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := node[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func schemaKeys(node map[string]any) []string {
	keys := make([]string, 0, len(node))
	for k := range node {
		if !strings.HasPrefix(k, "@") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// stringValue renders scalars as strings; objects yield their "name",
// "text" or "@value" member.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		for _, k := range []string{"name", "text", "@value"} {
			if s, ok := t[k].(string); ok {
				return s
			}
		}
	case []any:
		if len(t) > 0 {
			return stringValue(t[0])
		}
	}
	return ""
}

// stringList flattens a string, or a list of strings and objects, into
// cleaned non-empty lines. A single string is split on newlines.
func stringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		for _, line := range strings.Split(t, "\n") {
			if s := stripTags(line); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			out = append(out, stringList(item)...)
		}
	case map[string]any:
		if s := stripTags(stringValue(t)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// flattenInstructions turns a string, HowToStep list or nested
// HowToSection tree into an ordered flat list of step texts.
func flattenInstructions(v any) []string {
	switch t := v.(type) {
	case string:
		if strings.Contains(t, "<li") || strings.Contains(t, "<p") {
			return htmlSteps(t)
		}
		var out []string
		for _, line := range strings.Split(t, "\n") {
			if s := stripStepNumber(stripTags(line)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, flattenInstructions(item)...)
		}
		return out
	case map[string]any:
		if items, ok := t["itemListElement"]; ok {
			return flattenInstructions(items)
		}
		if typeIs(t["@type"], "HowToSection") {
			return nil
		}
		text := stringValue(t["text"])
		if text == "" {
			text = stringValue(t["name"])
		}
		if s := stripStepNumber(stripTags(text)); s != "" {
			return []string{s}
		}
	}
	return nil
}

func htmlSteps(fragment string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + fragment + "</body>"))
	if err != nil {
		return nil
	}
	var out []string
	doc.Find("li, p").Each(func(_ int, s *goquery.Selection) {
		if s.Find("li, p").Length() > 0 {
			return
		}
		if t := stripStepNumber(selText(s)); t != "" {
			out = append(out, t)
		}
	})
	return out
}

// imageValue returns the first URL of a string, ImageObject or list of either.
func imageValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if s := imageValue(item); s != "" {
				return s
			}
		}
	case map[string]any:
		for _, k := range []string{"url", "contentUrl", "@id"} {
			if s, ok := t[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// yieldValue reads the first positive integer of a recipeYield value.
func yieldValue(v any) *int {
	var s string
	switch t := v.(type) {
	case float64:
		if t > 0 {
			n := int(t)
			return &n
		}
		return nil
	case []any:
		for _, item := range t {
			if n := yieldValue(item); n != nil {
				return n
			}
		}
		return nil
	default:
		s = stringValue(t)
	}
	m := firstIntRE.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// parseDuration converts an ISO-8601 style duration such as "PT1H30M" to
// minutes by extracting its day, hour and minute components. Bare numbers
// are minutes. Returns nil when nothing usable is found.
func parseDuration(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return nil
		}
		return &n
	}
	upper := strings.ToUpper(s)
	var datePart, timePart string
	if i := strings.Index(upper, "T"); i >= 0 && strings.HasPrefix(upper, "P") {
		datePart, timePart = upper[:i], upper[i+1:]
	} else if strings.HasPrefix(upper, "P") {
		datePart = upper
	} else {
		timePart = upper
	}

	var total float64
	var found bool
	if m := durationDaysRE.FindStringSubmatch(datePart); m != nil {
		total += number(m[1]) * 24 * 60
		found = true
	}
	if m := durationHoursRE.FindStringSubmatch(timePart); m != nil {
		total += number(m[1]) * 60
		found = true
	}
	if m := durationMinutesRE.FindStringSubmatch(timePart); m != nil {
		total += number(m[1])
		found = true
	}
	if !found || total <= 0 {
		return nil
	}
	n := int(total + 0.5)
	return &n
}

func number(s string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0
	}
	return f
}
