package gemini_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	tc, err := gemini.NewTokenCounter("gemini-2.0-flash")
	require.NoError(t, err)

	t.Run("counts a recipe method", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "Vispa ihop mjölk och ägg. Stek tunna pannkakor i smör.")

		require.NoError(t, err)
		assert.Positive(t, count)
	})

	t.Run("empty text costs nothing", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("a full article costs more than its title", func(t *testing.T) {
		t.Parallel()

		title, err := tc.CountTokens(context.Background(), "Pannkakor")
		require.NoError(t, err)
		article, err := tc.CountTokens(context.Background(), strings.Repeat("3 dl vetemjöl, 6 dl mjölk, 3 ägg. ", 20))
		require.NoError(t, err)

		assert.Greater(t, article, title)
	})

	t.Run("stops when the crawl is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := tc.CountTokens(ctx, "Pannkakor")

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewTokenCounter(t *testing.T) {
	t.Parallel()

	_, err := gemini.NewTokenCounter("no-such-model")

	assert.Equal(t, mise.EINVALID, mise.ErrorCode(err))
}
