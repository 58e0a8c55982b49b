package crawl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/ingredient"
)

// Validity gate thresholds.
const (
	minIngredientLines = 2
	minKeywordHits     = 3
	minSteps           = 2
	readinessThreshold = 0.70
)

var labeledStepRE = regexp.MustCompile(`(?i)^(\d+[.)]|(step|steg|schritt|étape|paso)\s*\d+)`)

// verdict is the validity gate's judgement of one draft.
type verdict struct {
	ok     bool
	reason string

	ingredientLike int // lines that look like ingredients
	complete       int // ingredient-like lines with an amount and an explicit unit
}

// readiness is the share of ingredient-like lines that parsed completely.
func (v verdict) readiness() float64 {
	if v.ingredientLike == 0 {
		return 0
	}
	return float64(v.complete) / float64(v.ingredientLike)
}

// validate applies the validity gate: at least two ingredient-like lines
// and enough evidence that the page is a recipe.
func validate(d *mise.RecipeDraft) verdict {
	var v verdict
	var hasQuantities bool
	for _, l := range d.Ingredients {
		if !ingredient.LooksLikeIngredient(l.Raw) {
			continue
		}
		v.ingredientLike++
		if l.Amount != nil {
			hasQuantities = true
			if l.Unit != "" && !l.UnitGuessed {
				v.complete++
			}
		}
	}
	if v.ingredientLike < minIngredientLines {
		v.reason = fmt.Sprintf("%d ingredient-like lines", v.ingredientLike)
		return v
	}

	hits := mise.CountRecipeKeywords(draftText(d))
	steps := hasSteps(d)
	switch {
	case hits >= minKeywordHits:
	case hasQuantities && steps:
	case hits >= 2 && hasQuantities:
	default:
		v.reason = fmt.Sprintf("not recipe-like (keywords=%d quantities=%t steps=%t)", hits, hasQuantities, steps)
		return v
	}
	v.ok = true
	return v
}

// hasSteps reports whether the draft's instructions are recognisably a
// method. Structured sources declare each step; scraped text must number
// or label at least minSteps of them.
func hasSteps(d *mise.RecipeDraft) bool {
	switch d.Source {
	case mise.SourceStructured, mise.SourceMicrodata:
		return len(d.Instructions) >= minSteps
	}
	var labeled int
	for _, s := range d.Instructions {
		if labeledStepRE.MatchString(strings.TrimSpace(s)) {
			labeled++
		}
	}
	return labeled >= minSteps
}

func draftText(d *mise.RecipeDraft) string {
	var b strings.Builder
	b.WriteString(d.Title)
	b.WriteByte('\n')
	b.WriteString(d.Description)
	for _, l := range d.Ingredients {
		b.WriteByte('\n')
		b.WriteString(l.Raw)
	}
	for _, s := range d.Instructions {
		b.WriteByte('\n')
		b.WriteString(s)
	}
	return b.String()
}

// countIngredientLike returns how many of the draft's lines look like ingredients.
func countIngredientLike(d *mise.RecipeDraft) int {
	var n int
	for _, l := range d.Ingredients {
		if ingredient.LooksLikeIngredient(l.Raw) {
			n++
		}
	}
	return n
}
