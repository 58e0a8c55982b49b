package mise

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Source tags which strategy produced a recipe.
type Source string

const (
	SourceStructured  Source = "structured"
	SourceMicrodata   Source = "microdata"
	SourceHeuristic   Source = "heuristic"
	SourceFingerprint Source = "fingerprint"
	SourceAI          Source = "ai"
)

// NutritionEstimate holds per-serving values estimated by the AI fallback.
type NutritionEstimate struct {
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
}

// RecipeDraft is an in-flight recipe candidate produced by a strategy.
type RecipeDraft struct {
	Title          string             `json:"title"`
	Description    string             `json:"description,omitempty"`
	Servings       *int               `json:"servings,omitempty"`
	PrepMinutes    *int               `json:"prepMinutes,omitempty"`
	CookMinutes    *int               `json:"cookMinutes,omitempty"`
	TotalMinutes   *int               `json:"totalMinutes,omitempty"`
	Ingredients    []IngredientLine   `json:"ingredients"`
	Instructions   []string           `json:"instructions"`
	ImageURL       string             `json:"imageUrl,omitempty"`
	SourceImageURL string             `json:"sourceImageUrl,omitempty"` // remote image once ImageURL is local
	ImageCategory  string             `json:"imageCategory,omitempty"`
	Language       string             `json:"lang,omitempty"`
	Source         Source             `json:"source"`
	Nutrition      *NutritionEstimate `json:"nutrition,omitempty"`

	// Selectors and SchemaKeys describe what produced the ingredient
	// lines; they feed the domain fingerprint and are not serialized.
	Selectors  []string `json:"-"`
	SchemaKeys []string `json:"-"`
}

// Recipe is the output record of a successful crawl.
type Recipe struct {
	ID          string    `json:"id"`
	SourceURL   string    `json:"sourceUrl"`
	ExtractedAt time.Time `json:"extractedAt"`
	RecipeDraft
}

// Page is a fetched HTML snapshot. Strategies share one Page concurrently
// and must treat it as read-only.
type Page struct {
	URL      string
	HTML     string
	Rendered bool
}

// Domain returns the lower-cased host of the page URL without a "www." prefix.
func (p *Page) Domain() string {
	return Domain(p.URL)
}

// Domain returns the lower-cased host of rawURL without a "www." prefix.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// Strategy extracts a recipe candidate from a page.
// A nil draft with a nil error means the page offered no candidate.
type Strategy interface {
	Source() Source
	Extract(ctx context.Context, page *Page) (*RecipeDraft, error)
}

// FingerprintExtractor replays a remembered extraction approach for a domain.
type FingerprintExtractor interface {
	ExtractWithFingerprint(ctx context.Context, page *Page, fp *DomainFingerprint) (*RecipeDraft, error)
}

// RecipeCrawler turns a recipe page URL into a validated Recipe.
type RecipeCrawler interface {
	// Crawl returns a validated recipe or an error; it never returns a
	// partial draft. Exhausting every strategy yields *ExtractionFailed.
	Crawl(ctx context.Context, url string) (*Recipe, error)
}

// Enricher backfills fields missing from a winning draft.
type Enricher interface {
	Enrich(ctx context.Context, draft *RecipeDraft, page *Page) error
}

// ImageStore downloads recipe images for local addressing.
type ImageStore interface {
	// Schedule starts a background download of imageURL and returns the
	// local path the image will be written to.
	Schedule(ctx context.Context, imageURL string) (string, error)
}

// LanguageDetector returns an ISO 639-1 code for text, or "" when unsure.
type LanguageDetector interface {
	DetectLanguage(text string) string
}
