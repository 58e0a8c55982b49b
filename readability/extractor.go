package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/mise"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements mise.Extractor at compile time.
var _ mise.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability. It is the fallback when trafilatura finds
// no main content, which happens on pages built mostly from lists.
type Extractor struct {
	base *url.URL
}

// NewExtractor creates a new Extractor. A non-nil base resolves relative
// links and image sources in the content.
func NewExtractor(base *url.URL) *Extractor {
	return &Extractor{base: base}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*mise.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, mise.Errorf(mise.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), e.base)
	if err != nil {
		return nil, err
	}

	return &mise.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
