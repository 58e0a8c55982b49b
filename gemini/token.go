package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/mise"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ mise.TokenCounter = (*TokenCounter)(nil)

// TokenCounter measures page text the way the model will see it, so the
// AI fallback can trim a long article before it exceeds the prompt budget.
// Counting runs offline; no request reaches the API.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter loads the local tokenizer for model. It fails for models
// the tokenizer package does not know.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, mise.Errorf(mise.EINVALID, "tokenizer for %s: %v", model, err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens returns the token count of text sent as a single user turn.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}
	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return 0, fmt.Errorf("count recipe text tokens: %w", err)
	}
	return int(result.TotalTokens), nil
}
