package goquery

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/mise"
)

var _ mise.Enricher = (*Enricher)(nil)

// Enricher backfills what a winning draft left empty from the page it was
// read from: language, servings, times, instructions and image. It never
// overwrites a field the draft already has.
type Enricher struct {
	// Images downloads the resolved image when set.
	Images mise.ImageStore
	// Language detects the recipe language; marker words are used when nil.
	Language mise.LanguageDetector
}

// NewEnricher creates an Enricher. Either dependency may be nil.
func NewEnricher(images mise.ImageStore, language mise.LanguageDetector) *Enricher {
	return &Enricher{Images: images, Language: language}
}

// Enrich fills missing fields of d in place. An image download that cannot
// be scheduled is reported after every other field has been filled.
func (e *Enricher) Enrich(ctx context.Context, d *mise.RecipeDraft, page *mise.Page) error {
	doc, err := parse(page.HTML)
	if err != nil {
		return err
	}
	lines := visibleLines(doc)

	if d.Language == "" {
		d.Language = e.detectLanguage(d, lines)
	}
	if d.Servings == nil {
		d.Servings = findServings(lines)
	}

	kw := keywordsFor(d.Language)
	if d.PrepMinutes == nil {
		d.PrepMinutes = findMinutes(lines, kw.prep)
	}
	if d.CookMinutes == nil {
		d.CookMinutes = findMinutes(lines, kw.cook)
	}
	if d.TotalMinutes == nil {
		d.TotalMinutes = findMinutes(lines, kw.total)
	}
	if d.TotalMinutes == nil && d.PrepMinutes != nil && d.CookMinutes != nil {
		total := *d.PrepMinutes + *d.CookMinutes
		d.TotalMinutes = &total
	}

	if len(d.Instructions) == 0 {
		d.Instructions, _ = methodSection(doc.Selection)
	}
	if d.ImageURL == "" {
		d.ImageURL = ResolveImage(doc, nil, page.URL)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Images == nil || d.SourceImageURL != "" || !isRemote(d.ImageURL) {
		return nil
	}
	local, err := e.Images.Schedule(ctx, d.ImageURL)
	if err != nil {
		return fmt.Errorf("schedule image %s: %w", d.ImageURL, err)
	}
	d.SourceImageURL, d.ImageURL = d.ImageURL, local
	return nil
}

// detectLanguage tries the draft's own text before the whole page.
func (e *Enricher) detectLanguage(d *mise.RecipeDraft, lines []string) string {
	for _, text := range []string{recipeText(d), strings.Join(lines, "\n")} {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if e.Language != nil {
			if lang := e.Language.DetectLanguage(text); lang != "" {
				return lang
			}
			continue
		}
		if lang, ok := mise.DetectLanguageByMarkers(text); ok {
			return lang
		}
	}
	return ""
}

func recipeText(d *mise.RecipeDraft) string {
	var b strings.Builder
	b.WriteString(d.Title)
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

func isRemote(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
