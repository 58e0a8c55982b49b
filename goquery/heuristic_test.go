package goquery_test

import (
	"context"
	"testing"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blogPost = `<!DOCTYPE html>
<html>
<head>
	<title>Kanelbullar | Bakbloggen</title>
	<meta property="og:image" content="https://cdn.example.com/bullar.jpg">
</head>
<body>
<nav class="menu"><ul><li><a href="/">Hem</a></li><li><a href="/recept">Recept</a></li></ul></nav>
<article class="post">
	<h1>Kanelbullar</h1>
	<p>Klassiska kanelbullar med mycket fyllning. Perfekta till fikat en regnig söndag.</p>
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
</article>
<div class="comments"><ul><li>2 dl mer socker hade varit gott!</li></ul></div>
<footer><ul><li>Kontakt</li><li>Om oss</li></ul></footer>
</body>
</html>`

func TestHeuristic_Extract(t *testing.T) {
	t.Parallel()

	t.Run("harvests ingredients and method steps from a plain blog post", func(t *testing.T) {
		t.Parallel()

		d, err := goquery.NewHeuristic(nil).Extract(context.Background(), page(blogPost))

		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, "Kanelbullar", d.Title)
		assert.Equal(t, mise.SourceHeuristic, d.Source)
		require.Len(t, d.Ingredients, 5)
		assert.Equal(t, "50 g jäst", d.Ingredients[0].Raw)
		assert.Equal(t, "13 dl vetemjöl", d.Ingredients[4].Raw)
		assert.Equal(t, []string{
			"Smält smöret och häll i mjölken.",
			"Lös jästen i degvätskan.",
			"Blanda i socker och mjöl.",
			"Grädda i 225 grader.",
		}, d.Instructions)
		assert.Equal(t, "https://cdn.example.com/bullar.jpg", d.ImageURL)
		assert.Equal(t, []string{"article.post > ul li", "article.post > ol li"}, d.Selectors)
	})

	t.Run("reads paragraph steps under an inline heading", func(t *testing.T) {
		t.Parallel()

		p := page(`<html><body>
<div class="recipe">
	<h1>Morotssoppa</h1>
	<ul>
		<li>1 l vatten</li>
		<li>6 morötter</li>
		<li>1 tsk salt</li>
	</ul>
	<p><strong>Gör så här</strong></p>
	<p>Koka upp vattnet.</p>
	<p>Lägg i morötterna och låt koka i 20 minuter.</p>
</div>
</body></html>`)

		d, err := goquery.NewHeuristic(nil).Extract(context.Background(), p)

		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Len(t, d.Ingredients, 3)
		assert.Equal(t, []string{"Koka upp vattnet.", "Lägg i morötterna och låt koka i 20 minuter."}, d.Instructions)
		assert.Equal(t, []string{"div.recipe > ul li"}, d.Selectors)
	})

	t.Run("reads a known recipe plugin through its own selectors", func(t *testing.T) {
		t.Parallel()

		p := page(`<html><body>
<h1>Vispgrädde</h1>
<div class="wprm-recipe">
	<ul>
		<li class="wprm-recipe-ingredient">2 dl grädde</li>
		<li class="wprm-recipe-ingredient">1 msk socker</li>
	</ul>
	<div class="wprm-recipe-instruction-text">Vispa grädden.</div>
	<div class="wprm-recipe-instruction-text">Servera.</div>
</div>
</body></html>`)

		d, err := goquery.NewHeuristic(nil).Extract(context.Background(), p)

		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, "Vispgrädde", d.Title)
		assert.Len(t, d.Ingredients, 2)
		assert.Equal(t, []string{"Vispa grädden.", "Servera."}, d.Instructions)
		assert.Equal(t, []string{".wprm-recipe-ingredient", ".wprm-recipe-instruction-text"}, d.Selectors)
	})

	t.Run("returns nil for a page without lists", func(t *testing.T) {
		t.Parallel()

		p := page(`<html><body><h1>Om oss</h1><p>Vi skriver om mat.</p></body></html>`)

		d, err := goquery.NewHeuristic(nil).Extract(context.Background(), p)

		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("returns nil when no list looks like ingredients", func(t *testing.T) {
		t.Parallel()

		p := page(`<html><body><article>
<h1>Veckans läsning</h1>
<p>Här är några av våra favoritartiklar från veckan som gått, med allt från resor till trädgård.</p>
<ul><li>Resor i Norrland</li><li>Trädgårdstips</li><li>Bokrecensioner</li></ul>
</article></body></html>`)

		d, err := goquery.NewHeuristic(nil).Extract(context.Background(), p)

		require.NoError(t, err)
		assert.Nil(t, d)
	})
}

func TestDetector(t *testing.T) {
	t.Parallel()

	t.Run("detects a plugin when marker and ingredients are present", func(t *testing.T) {
		t.Parallel()

		doc := mustDocument(t, `<div class="tasty-recipes"><div class="tasty-recipes-ingredients"><ul><li>1 ägg</li></ul></div></div>`)

		assert.Equal(t, goquery.PluginTasty, goquery.NewDetector().Detect(doc))
	})

	t.Run("ignores a marker without ingredient items", func(t *testing.T) {
		t.Parallel()

		doc := mustDocument(t, `<div class="wprm-recipe"><p>Recipe coming soon</p></div>`)

		assert.Equal(t, goquery.PluginUnknown, goquery.NewDetector().Detect(doc))
	})

	t.Run("detects registered plugins", func(t *testing.T) {
		t.Parallel()

		d := goquery.NewDetector()
		d.Register("koket", goquery.PluginSelectors{
			Marker:       ".koket-recipe",
			Ingredients:  ".koket-ingredients li",
			Instructions: ".koket-steps li",
		})
		doc := mustDocument(t, `<div class="koket-recipe"><ul class="koket-ingredients"><li>1 ägg</li></ul></div>`)

		assert.Equal(t, goquery.Plugin("koket"), d.Detect(doc))
		sel, ok := d.Get("koket")
		require.True(t, ok)
		assert.Equal(t, ".koket-steps li", sel.Instructions)
	})

	t.Run("ready selectors start with JSON-LD and cover every plugin", func(t *testing.T) {
		t.Parallel()

		sels := goquery.NewDetector().ReadySelectors()

		require.Len(t, sels, 7)
		assert.Equal(t, `script[type="application/ld+json"]`, sels[0])
		assert.Contains(t, sels, ".wprm-recipe-ingredient")
		assert.Contains(t, sels, ".zlrecipe-ingredient")
	})
}
