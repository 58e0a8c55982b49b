package mise

import "context"

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML with boilerplate removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
// Its output feeds the AI fallback prompt.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// AIRequest is the input to a generative extraction.
type AIRequest struct {
	URL      string
	Text     string // cleaned main content, already length-bounded
	ImageURL string // optional detected image
	Language string // optional dominant page language
}

// AIExtractor extracts a recipe from page text with a generative model.
type AIExtractor interface {
	// ExtractRecipe returns *AIParseError when the model reply is not a
	// JSON object with every required key.
	ExtractRecipe(ctx context.Context, req AIRequest) (*RecipeDraft, error)
}
