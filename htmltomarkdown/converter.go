package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/mise"
)

// Ensure Converter implements mise.Converter at compile time.
var _ mise.Converter = (*Converter)(nil)

var (
	imageRE    = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRE     = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	blankRunRE = regexp.MustCompile(`\n{3,}`)
)

// Converter wraps html-to-markdown to turn extracted recipe content into
// compact Markdown for the model prompt. Images are dropped and links
// reduced to their text unless KeepLinks is set.
type Converter struct {
	conv      *converter.Converter
	keepLinks bool
}

// Option configures a Converter.
type Option func(*Converter)

// KeepLinks leaves Markdown links intact.
func KeepLinks() Option {
	return func(c *Converter) {
		c.keepLinks = true
	}
}

// NewConverter creates a new Converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", mise.Errorf(mise.EINVALID, "empty HTML input")
	}

	md, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	md = imageRE.ReplaceAllString(md, "")
	if !c.keepLinks {
		md = linkRE.ReplaceAllString(md, "$1")
	}
	md = blankRunRE.ReplaceAllString(md, "\n\n")
	return strings.TrimSpace(md), nil
}
