package goquery

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/ingredient"
)

var _ mise.FingerprintExtractor = (*Fingerprint)(nil)

// Fingerprint replays the approach that previously worked for a domain:
// the structured parser that won, or the remembered CSS selectors.
type Fingerprint struct {
	jsonld    *JSONLD
	microdata *Microdata
}

// NewFingerprint creates a fingerprint replayer.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{jsonld: NewJSONLD(), microdata: NewMicrodata()}
}

// ExtractWithFingerprint returns a draft tagged mise.SourceFingerprint, or
// nil when the remembered approach finds nothing on this page.
func (f *Fingerprint) ExtractWithFingerprint(ctx context.Context, page *mise.Page, fp *mise.DomainFingerprint) (*mise.RecipeDraft, error) {
	doc, err := parse(page.HTML)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var d *mise.RecipeDraft
	switch fp.Source {
	case mise.SourceStructured:
		if d, err = f.jsonld.extract(ctx, doc, page.URL); err != nil {
			return nil, err
		}
	case mise.SourceMicrodata:
		d = f.microdata.extract(doc, page.URL)
	default:
		d = replaySelectors(doc, fp.Selectors, page.URL)
	}
	if d == nil {
		return nil, nil
	}
	d.Source = mise.SourceFingerprint
	return d, nil
}

// replaySelectors reads ingredients from the first selector and
// instructions from the second, falling back to the method heading scan.
// Matched items that do not look like ingredients are dropped, as they
// are when the heuristic first harvests the list.
func replaySelectors(doc *goquery.Document, selectors []string, baseURL string) *mise.RecipeDraft {
	if len(selectors) == 0 {
		return nil
	}
	title, desc := pageTitle(doc), pageDescription(doc)

	items := doc.Find(selectors[0])
	var kept []string
	for _, it := range ingredient.MergeSplitQuantities(texts(items)) {
		if ingredient.LooksLikeIngredient(it) {
			kept = append(kept, it)
		}
	}
	lines := ingredient.ParseAll(kept)
	if len(lines) == 0 {
		return nil
	}

	var steps []string
	if len(selectors) > 1 {
		for _, t := range texts(doc.Find(selectors[1])) {
			if s := stripStepNumber(t); s != "" {
				steps = append(steps, s)
			}
		}
	}
	if len(steps) == 0 {
		steps, _ = methodSection(doc.Selection)
	}

	container := items.First().Parent()
	return &mise.RecipeDraft{
		Title:        title,
		Description:  desc,
		Ingredients:  lines,
		Instructions: steps,
		ImageURL:     ResolveImage(doc, container, baseURL),
		Selectors:    selectors,
	}
}
