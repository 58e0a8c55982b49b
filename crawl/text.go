package crawl

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/mise"
)

var errNoText = errors.New("no readable main content")

// pageText returns the page's main content as markdown, bounded to
// MaxAIText runes. Extractors are tried in order until one yields content.
func (c *Crawler) pageText(page *mise.Page) (string, error) {
	lastErr := errNoText
	for _, ex := range c.Extractors {
		res, err := ex.Extract(page.HTML)
		if err != nil {
			lastErr = err
			continue
		}
		if strings.TrimSpace(res.ContentHTML) == "" {
			continue
		}

		text := res.ContentHTML
		if c.Converter != nil {
			md, err := c.Converter.Convert(res.ContentHTML)
			if err != nil {
				lastErr = err
				continue
			}
			text = md
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if res.Title != "" && !strings.Contains(text, res.Title) {
			text = "# " + res.Title + "\n\n" + text
		}

		limit := c.MaxAIText
		if limit <= 0 {
			limit = DefaultMaxAIText
		}
		return truncateRunes(text, limit), nil
	}
	return "", lastErr
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	var i, count int
	for i = range s {
		if count == n {
			break
		}
		count++
	}
	return s[:i]
}

// candidateImage returns the first image any rejected candidate resolved.
func candidateImage(rejected []candidate) string {
	for _, c := range rejected {
		if c.draft.ImageURL != "" {
			return c.draft.ImageURL
		}
	}
	return ""
}
