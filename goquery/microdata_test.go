package goquery_test

import (
	"context"
	"testing"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMicrodata_Extract(t *testing.T) {
	t.Parallel()

	t.Run("reads the properties owned by the Recipe scope", func(t *testing.T) {
		t.Parallel()

		p := page(`<html><body>
<div itemscope itemtype="https://schema.org/Recipe">
	<h1 itemprop="name">Köttbullar</h1>
	<time itemprop="prepTime" datetime="PT20M">20 min</time>
	<span itemprop="recipeYield">4 portioner</span>
	<img itemprop="image" src="/img/kottbullar.jpg">
	<div itemprop="author" itemscope itemtype="https://schema.org/Person">
		<span itemprop="name">Anna</span>
	</div>
	<ul>
		<li itemprop="recipeIngredient">500 g köttfärs</li>
		<li itemprop="recipeIngredient">1 ägg</li>
		<li itemprop="recipeIngredient">1 dl ströbröd</li>
	</ul>
	<ol itemprop="recipeInstructions">
		<li>Blanda allt.</li>
		<li>Forma bullar.</li>
		<li>Stek.</li>
	</ol>
</div>
</body></html>`)

		d, err := goquery.NewMicrodata().Extract(context.Background(), p)

		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, "Köttbullar", d.Title)
		assert.Len(t, d.Ingredients, 3)
		assert.Equal(t, []string{"Blanda allt.", "Forma bullar.", "Stek."}, d.Instructions)
		require.NotNil(t, d.Servings)
		assert.Equal(t, 4, *d.Servings)
		require.NotNil(t, d.PrepMinutes)
		assert.Equal(t, 20, *d.PrepMinutes)
		assert.Equal(t, "https://www.example.com/img/kottbullar.jpg", d.ImageURL)
		assert.Equal(t, mise.SourceMicrodata, d.Source)
		assert.Equal(t, []string{`[itemprop="recipeIngredient"]`}, d.Selectors)
		assert.Equal(t, []string{
			"author", "image", "name", "prepTime",
			"recipeIngredient", "recipeInstructions", "recipeYield",
		}, d.SchemaKeys)
	})

	t.Run("reads HowToStep scopes through their text property", func(t *testing.T) {
		t.Parallel()

		p := page(`<html><body>
<div itemscope itemtype="http://schema.org/Recipe">
	<span itemprop="name">Gröt</span>
	<span itemprop="ingredients">1 dl havregryn</span>
	<span itemprop="ingredients">2 dl vatten</span>
	<div itemprop="recipeInstructions" itemscope itemtype="http://schema.org/HowToStep">
		<span itemprop="text">Koka upp vattnet.</span>
	</div>
	<div itemprop="recipeInstructions" itemscope itemtype="http://schema.org/HowToStep">
		<span itemprop="text">Rör ner gryn.</span>
	</div>
</div>
</body></html>`)

		d, err := goquery.NewMicrodata().Extract(context.Background(), p)

		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Len(t, d.Ingredients, 2)
		assert.Equal(t, []string{"Koka upp vattnet.", "Rör ner gryn."}, d.Instructions)
		assert.Equal(t, []string{`[itemprop="ingredients"]`}, d.Selectors)
	})

	t.Run("returns nil without a Recipe scope", func(t *testing.T) {
		t.Parallel()

		p := page(`<html><body><div itemscope itemtype="https://schema.org/Article"><span itemprop="name">Nyheter</span></div></body></html>`)

		d, err := goquery.NewMicrodata().Extract(context.Background(), p)

		require.NoError(t, err)
		assert.Nil(t, d)
	})

	t.Run("returns nil when the scope lists no ingredients", func(t *testing.T) {
		t.Parallel()

		p := page(`<html><body><div itemscope itemtype="https://schema.org/Recipe"><span itemprop="name">Tom</span></div></body></html>`)

		d, err := goquery.NewMicrodata().Extract(context.Background(), p)

		require.NoError(t, err)
		assert.Nil(t, d)
	})
}
