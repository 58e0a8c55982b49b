//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestAIExtractor_Integration_ExtractsRecipe(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	require.NoError(t, err)

	counter, err := gemini.NewTokenCounter("gemini-2.0-flash")
	require.NoError(t, err)

	a := gemini.NewAIExtractor(client, gemini.WithTokenLimit(counter, gemini.DefaultMaxPromptTokens))

	d, err := a.ExtractRecipe(ctx, mise.AIRequest{
		URL: "https://www.example.com/recept/pannkakor",
		Text: "# Mormors pannkakor\n\nTill fyra personer behöver du tre deciliter vetemjöl, " +
			"sex deciliter mjölk och tre ägg. Vispa först ut mjölet i hälften av mjölken, " +
			"späd sedan med resten och vispa ner äggen. Stek tunna pannkakor i smör.",
		Language: "sv",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, d.Title)
	assert.GreaterOrEqual(t, len(d.Ingredients), 3)
	assert.NotEmpty(t, d.Instructions)
}
