package readability_test

import (
	"net/url"
	"testing"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements mise.Extractor at compile time.
var _ mise.Extractor = (*readability.Extractor)(nil)

const recipePost = `<!DOCTYPE html>
<html>
<head><title>Mormors köttbullar</title></head>
<body>
<nav><a href="/">Startsida</a><a href="/recept">Alla recept</a></nav>
<aside class="sidebar"><p>Populära recept just nu</p></aside>
<article>
<h1>Mormors köttbullar</h1>
<p>Det här är mormors recept på köttbullar som hela familjen älskar. De serveras med potatismos, gräddsås och rårörda lingon.</p>
<h2>Ingredienser</h2>
<ul>
<li>500 g blandfärs</li>
<li>1 dl ströbröd</li>
<li>2 dl mjölk</li>
</ul>
<h2>Gör så här</h2>
<p>Blanda ströbröd och mjölk och låt svälla i tio minuter. Blanda ner färsen och rulla små bullar.</p>
<table>
<tr><th>Portioner</th><th>Tid</th></tr>
<tr><td>4</td><td>45 min</td></tr>
</table>
<p><img src="/img/kottbullar.jpg" alt="köttbullar"></p>
</article>
<footer><p>Copyright 2024 Mormors kök</p></footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := readability.NewExtractor(nil).Extract("")

		require.Error(t, err)
		assert.Equal(t, mise.EINVALID, mise.ErrorCode(err))
	})

	t.Run("extracts the title", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor(nil).Extract(recipePost)

		require.NoError(t, err)
		assert.Equal(t, "Mormors köttbullar", result.Title)
	})

	t.Run("keeps the recipe body", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor(nil).Extract(recipePost)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "hela familjen älskar")
		assert.Contains(t, result.ContentHTML, "500 g blandfärs")
		assert.Contains(t, result.ContentHTML, "<li")
		assert.Contains(t, result.ContentHTML, "<table")
	})

	t.Run("removes site chrome", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor(nil).Extract(recipePost)

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "Alla recept")
		assert.NotContains(t, result.ContentHTML, "Populära recept just nu")
		assert.NotContains(t, result.ContentHTML, "Copyright 2024")
	})

	t.Run("resolves relative image sources against the base", func(t *testing.T) {
		t.Parallel()

		base, err := url.Parse("https://www.example.com/recept/kottbullar")
		require.NoError(t, err)

		result, err := readability.NewExtractor(base).Extract(recipePost)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "https://www.example.com/img/kottbullar.jpg")
	})
}
