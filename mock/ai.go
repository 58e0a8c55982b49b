package mock

import (
	"context"

	"github.com/fwojciec/mise"
)

var _ mise.AIExtractor = (*AIExtractor)(nil)

// AIExtractor is a mock implementation of mise.AIExtractor.
type AIExtractor struct {
	ExtractRecipeFn func(ctx context.Context, req mise.AIRequest) (*mise.RecipeDraft, error)
}

func (a *AIExtractor) ExtractRecipe(ctx context.Context, req mise.AIRequest) (*mise.RecipeDraft, error) {
	return a.ExtractRecipeFn(ctx, req)
}
