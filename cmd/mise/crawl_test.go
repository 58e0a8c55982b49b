package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fwojciec/mise"
	main "github.com/fwojciec/mise/cmd/mise"
	"github.com/fwojciec/mise/ingredient"
	"github.com/fwojciec/mise/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pannkakorURL = "https://www.example.com/recept/pannkakor"

func pannkakor(url string) *mise.Recipe {
	return &mise.Recipe{
		ID:        "3f2a",
		SourceURL: url,
		RecipeDraft: mise.RecipeDraft{
			Title:        "Pannkakor",
			Ingredients:  ingredient.ParseAll([]string{"3 dl vetemjöl", "6 dl mjölk", "3 ägg"}),
			Instructions: []string{"Vispa mjölet i hälften av mjölken.", "Stek."},
			Source:       mise.SourceStructured,
		},
	}
}

type waiter struct {
	calls int
	err   error
}

func (w *waiter) Wait() error {
	w.calls++
	return w.err
}

func TestCrawlCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the recipe as JSON", func(t *testing.T) {
		t.Parallel()

		crawler := &mock.RecipeCrawler{
			CrawlFn: func(_ context.Context, url string) (*mise.Recipe, error) {
				return pannkakor(url), nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Crawler: crawler,
		}

		err := (&main.CrawlCmd{URL: pannkakorURL}).Run(deps)

		require.NoError(t, err)
		var got mise.Recipe
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
		assert.Equal(t, "Pannkakor", got.Title)
		assert.Equal(t, pannkakorURL, got.SourceURL)
		assert.Len(t, got.Ingredients, 3)
		assert.Contains(t, stdout.String(), "vetemjöl")
	})

	t.Run("lists the attempts when no recipe is found", func(t *testing.T) {
		t.Parallel()

		failed := &mise.ExtractionFailed{
			URL: pannkakorURL,
			Trail: []mise.Attempt{
				{Stage: "static", Source: mise.SourceStructured, Reason: "no recipe markup"},
				{Stage: "ai", Source: mise.SourceAI, Reason: "skipped"},
			},
		}
		crawler := &mock.RecipeCrawler{
			CrawlFn: func(context.Context, string) (*mise.Recipe, error) {
				return nil, failed
			},
		}
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  stderr,
			Crawler: crawler,
		}

		err := (&main.CrawlCmd{URL: pannkakorURL}).Run(deps)

		require.ErrorIs(t, err, failed)
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "No recipe found at "+pannkakorURL)
		assert.Contains(t, stderr.String(), " 1. ")
		assert.Contains(t, stderr.String(), "no recipe markup")
		assert.Contains(t, stderr.String(), " 2. ")
	})

	t.Run("waits for image downloads before returning", func(t *testing.T) {
		t.Parallel()

		images := &waiter{}
		crawler := &mock.RecipeCrawler{
			CrawlFn: func(_ context.Context, url string) (*mise.Recipe, error) {
				return pannkakor(url), nil
			},
		}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  &bytes.Buffer{},
			Crawler: crawler,
			Images:  images,
		}

		err := (&main.CrawlCmd{URL: pannkakorURL}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, 1, images.calls)
	})

	t.Run("a failed image download only warns", func(t *testing.T) {
		t.Parallel()

		logs := &bytes.Buffer{}
		crawler := &mock.RecipeCrawler{
			CrawlFn: func(_ context.Context, url string) (*mise.Recipe, error) {
				return pannkakor(url), nil
			},
		}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  &bytes.Buffer{},
			Logger:  newTestLogger(logs),
			Crawler: crawler,
			Images:  &waiter{err: errors.New("disk full")},
		}

		err := (&main.CrawlCmd{URL: pannkakorURL}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, logs.String(), "disk full")
	})
}
