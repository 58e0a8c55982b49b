package crawl_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/goquery"
	"github.com/fwojciec/mise/ingredient"
	"github.com/fwojciec/mise/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const structuredPage = `<!DOCTYPE html><html><head>
<script type="application/ld+json">{
	"@context": "https://schema.org",
	"@type": "Recipe",
	"name": "Pannkakor",
	"recipeIngredient": ["2 dl mjölk", "1 ägg"],
	"recipeInstructions": ["Blanda.", "Stek."]
}</script>
</head><body><h1>Pannkakor</h1></body></html>`

const blogBody = `<article class="post">
	<h1>Kanelbullar</h1>
	<p>Klassiska kanelbullar med mycket fyllning. Perfekta till fikat.</p>
	<h2>Ingredienser</h2>
	<ul>
		<li>50 g jäst</li>
		<li>5 dl mjölk</li>
		<li>150 g smör</li>
		<li>1 dl socker</li>
		<li>13 dl vetemjöl</li>
	</ul>
	<h2>Gör så här</h2>
	<ol>
		<li>1. Smält smöret och häll i mjölken.</li>
		<li>2. Lös jästen i degvätskan.</li>
		<li>3. Blanda i socker och mjöl.</li>
		<li>4. Grädda i 225 grader.</li>
	</ol>
</article>`

const blogPage = `<!DOCTYPE html><html><head><title>Kanelbullar</title></head><body>` + blogBody + `</body></html>`

const prosePage = `<!DOCTYPE html><html><head><title>Mormors pannkakor</title></head><body>
<h1>Mormors pannkakor</h1>
<p>Till fyra personer behöver du tre deciliter vetemjöl, sex deciliter mjölk och tre ägg.</p>
<p>Vispa först ut mjölet i hälften av mjölken, späd sedan med resten och vispa ner äggen.</p>
</body></html>`

// counted wraps a strategy and counts its calls.
func counted(s mise.Strategy, calls *atomic.Int32) *mock.Strategy {
	return &mock.Strategy{
		SourceFn: s.Source,
		ExtractFn: func(ctx context.Context, page *mise.Page) (*mise.RecipeDraft, error) {
			calls.Add(1)
			return s.Extract(ctx, page)
		},
	}
}

func parsers() []mise.Strategy {
	return []mise.Strategy{goquery.NewJSONLD(), goquery.NewMicrodata(), goquery.NewHeuristic(nil)}
}

func TestCrawler_Scenarios(t *testing.T) {
	t.Parallel()

	t.Run("structured data wins on a JSON-LD page", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(fetcher(structuredPage, nil), parsers()...)

		r, err := c.Crawl(context.Background(), recipeURL)

		require.NoError(t, err)
		assert.Equal(t, mise.SourceStructured, r.Source)
		assert.Equal(t, "Pannkakor", r.Title)
		assert.Equal(t, []string{"2 dl mjölk", "1 ägg"}, raws(r.Ingredients))
		assert.Equal(t, []string{"Blanda.", "Stek."}, r.Instructions)

		milk, egg := r.Ingredients[0], r.Ingredients[1]
		require.NotNil(t, milk.Amount)
		assert.InDelta(t, 2.0, *milk.Amount, 1e-9)
		assert.Equal(t, mise.UnitDeciliter, milk.Unit)
		assert.Equal(t, "mjölk", milk.Name)
		require.NotNil(t, egg.Amount)
		assert.InDelta(t, 1.0, *egg.Amount, 1e-9)
		assert.Equal(t, mise.UnitEach, egg.Unit)
		assert.Equal(t, "ägg", egg.Name)
	})

	t.Run("a hyphenated mixed fraction survives the crawl as one amount", func(t *testing.T) {
		t.Parallel()

		page := `<!DOCTYPE html><html><head>
<script type="application/ld+json">{"@type": "Recipe", "name": "Scones", "recipeIngredient": ["1-1/2 cups flour", "2 tbsp sugar", "1 cup milk"], "recipeInstructions": ["Mix.", "Bake."]}</script>
</head><body><h1>Scones</h1></body></html>`
		c := newCrawler(fetcher(page, nil), parsers()...)

		r, err := c.Crawl(context.Background(), recipeURL)

		require.NoError(t, err)
		flour := r.Ingredients[0]
		require.NotNil(t, flour.Amount)
		assert.InDelta(t, 1.5, *flour.Amount, 1e-9)
		assert.False(t, flour.IsRange)
		assert.Equal(t, mise.UnitCup, flour.Unit)
	})

	t.Run("the heuristic reads a plain blog post", func(t *testing.T) {
		t.Parallel()

		c := newCrawler(fetcher(blogPage, nil), parsers()...)

		r, err := c.Crawl(context.Background(), recipeURL)

		require.NoError(t, err)
		assert.Equal(t, mise.SourceHeuristic, r.Source)
		assert.Len(t, r.Ingredients, 5)
		assert.Len(t, r.Instructions, 4)
	})

	t.Run("structured data beats the heuristic on a page with both", func(t *testing.T) {
		t.Parallel()

		both := `<!DOCTYPE html><html><head>
<script type="application/ld+json">{"@type": "Recipe", "name": "Kanelbullar", "recipeIngredient": ["50 g jäst", "5 dl mjölk", "150 g smör"], "recipeInstructions": ["Blanda.", "Grädda."]}</script>
</head><body>` + blogBody + `</body></html>`
		c := newCrawler(fetcher(both, nil), parsers()...)

		r, err := c.Crawl(context.Background(), recipeURL)

		require.NoError(t, err)
		assert.Equal(t, mise.SourceStructured, r.Source)
		assert.Len(t, r.Ingredients, 3)
	})

	t.Run("a prose page goes to the AI exactly once", func(t *testing.T) {
		t.Parallel()

		var aiCalls atomic.Int32
		c := newCrawler(fetcher(prosePage, nil), parsers()...)
		c.Extractors = []mise.Extractor{&mock.Extractor{
			ExtractFn: func(html string) (*mise.ExtractResult, error) {
				return &mise.ExtractResult{Title: "Mormors pannkakor", ContentHTML: "<p>Till fyra personer behöver du tre deciliter vetemjöl.</p>"}, nil
			},
		}}
		c.AI = &mock.AIExtractor{
			ExtractRecipeFn: func(_ context.Context, req mise.AIRequest) (*mise.RecipeDraft, error) {
				aiCalls.Add(1)
				assert.Equal(t, recipeURL, req.URL)
				assert.Contains(t, req.Text, "deciliter vetemjöl")
				return &mise.RecipeDraft{
					Title:        "Mormors pannkakor",
					Ingredients:  ingredient.ParseAll([]string{"3 dl vetemjöl", "6 dl mjölk", "3 ägg"}),
					Instructions: []string{"Vispa mjölet i hälften av mjölken.", "Vispa ner äggen."},
				}, nil
			},
		}

		r, err := c.Crawl(context.Background(), recipeURL)

		require.NoError(t, err)
		assert.Equal(t, mise.SourceAI, r.Source)
		assert.Len(t, r.Ingredients, 3)
		assert.Equal(t, int32(1), aiCalls.Load())
	})

	t.Run("a fingerprinted domain skips every other strategy", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		var strategies []mise.Strategy
		for _, s := range parsers() {
			strategies = append(strategies, counted(s, &calls))
		}
		var upserted *mise.DomainFingerprint
		c := newCrawler(fetcher(blogPage, nil), strategies...)
		c.Fingerprint = goquery.NewFingerprint()
		c.Fingerprints = &mock.FingerprintService{
			FindFingerprintFn: func(_ context.Context, domain string) (*mise.DomainFingerprint, error) {
				assert.Equal(t, "example.com", domain)
				return &mise.DomainFingerprint{
					Domain:    domain,
					Source:    mise.SourceHeuristic,
					Selectors: []string{"article.post > ul li", "article.post > ol li"},
				}, nil
			},
			UpsertFingerprintFn: func(_ context.Context, fp *mise.DomainFingerprint) error {
				upserted = fp
				return nil
			},
		}

		r, err := c.Crawl(context.Background(), recipeURL)

		require.NoError(t, err)
		assert.Equal(t, mise.SourceFingerprint, r.Source)
		assert.Len(t, r.Ingredients, 5)
		assert.Len(t, r.Instructions, 4)
		assert.Equal(t, int32(0), calls.Load())
		require.NotNil(t, upserted)
		assert.Equal(t, mise.SourceHeuristic, upserted.Source)
	})
}

func raws(lines []mise.IngredientLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Raw
	}
	return out
}
