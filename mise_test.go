package mise_test

import (
	"testing"
	"time"

	"github.com/fwojciec/mise"
	"github.com/stretchr/testify/assert"
)

func TestFirstJSONObject(t *testing.T) {
	t.Parallel()

	t.Run("returns the first balanced object", func(t *testing.T) {
		t.Parallel()
		got, ok := mise.FirstJSONObject(`Sure! Here it is: {"a": {"b": 1}} and {"c": 2}`)
		assert.True(t, ok)
		assert.Equal(t, `{"a": {"b": 1}}`, got)
	})

	t.Run("ignores braces inside strings", func(t *testing.T) {
		t.Parallel()
		got, ok := mise.FirstJSONObject(`{"title": "Pie {best}", "x": "\"}"}`)
		assert.True(t, ok)
		assert.Equal(t, `{"title": "Pie {best}", "x": "\"}"}`, got)
	})

	t.Run("reports false for an unterminated object", func(t *testing.T) {
		t.Parallel()
		_, ok := mise.FirstJSONObject(`{"title": "Pie"`)
		assert.False(t, ok)
	})
}

func TestCountRecipeKeywords(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, mise.CountRecipeKeywords("Quarterly earnings rose sharply."))
	assert.GreaterOrEqual(t, mise.CountRecipeKeywords("Ingredienser: 2 dl mjölk. Gör så här: blanda och stek."), 3)
	// "dl" only counts as a whole word
	assert.Equal(t, 0, mise.CountRecipeKeywords("handle"))
}

func TestDetectLanguageByMarkers(t *testing.T) {
	t.Parallel()

	lang, ok := mise.DetectLanguageByMarkers("Blanda mjölk och ägg, stek med smör.")
	assert.True(t, ok)
	assert.Equal(t, "sv", lang)

	lang, ok = mise.DetectLanguageByMarkers("Whisk the eggs with the milk and add to the pan.")
	assert.True(t, ok)
	assert.Equal(t, "en", lang)

	_, ok = mise.DetectLanguageByMarkers("Pannkakor")
	assert.False(t, ok)
}

func TestCacheRecord_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ok := mise.NewSuccessRecord("https://x.test", &mise.Recipe{}, now)
	failed := mise.NewFailureRecord("https://x.test", "no recipe", now)

	assert.False(t, ok.Expired(now.Add(6*24*time.Hour)))
	assert.True(t, ok.Expired(now.Add(8*24*time.Hour)))
	assert.False(t, failed.Expired(now.Add(23*time.Hour)))
	assert.True(t, failed.Expired(now.Add(25*time.Hour)))
}

func TestFetchCacheEntry_Reusable(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	neg := &mise.FetchCacheEntry{StatusCode: 500, FetchedAt: now.Add(-30 * time.Minute)}
	old := &mise.FetchCacheEntry{StatusCode: 404, FetchedAt: now.Add(-2 * time.Hour)}
	pos := &mise.FetchCacheEntry{StatusCode: 200, FetchedAt: now, Body: []byte("<html>")}

	assert.True(t, neg.Reusable(now))
	assert.False(t, old.Reusable(now))
	assert.False(t, pos.Reusable(now))
}

func TestDomain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ica.se", mise.Domain("https://WWW.ica.se/recept/pannkakor/"))
	assert.Equal(t, "example.com", (&mise.Page{URL: "http://example.com:8080/a"}).Domain())
}
