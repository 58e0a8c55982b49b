// Package whatlang detects the language of recipe text.
package whatlang

import (
	"strings"

	"github.com/RadhiFadlillah/whatlanggo"
	"github.com/fwojciec/mise"
)

// Ensure Detector implements mise.LanguageDetector at compile time.
var _ mise.LanguageDetector = (*Detector)(nil)

// supported maps the languages with recipe vocabulary to ISO 639-1 codes.
var supported = map[whatlanggo.Lang]string{
	whatlanggo.Swe: "sv",
	whatlanggo.Eng: "en",
	whatlanggo.Deu: "de",
	whatlanggo.Fra: "fr",
	whatlanggo.Spa: "es",
}

// Detector names the dominant language of a text. Kitchen marker words
// decide first; trigram detection settles texts the markers leave open.
type Detector struct {
	opts          whatlanggo.Options
	minConfidence float64
}

// Option configures a Detector.
type Option func(*Detector)

// WithMinConfidence discards trigram guesses below c.
func WithMinConfidence(c float64) Option {
	return func(d *Detector) {
		d.minConfidence = c
	}
}

// NewDetector creates a Detector limited to the supported languages.
func NewDetector(opts ...Option) *Detector {
	whitelist := make(map[whatlanggo.Lang]bool, len(supported))
	for l := range supported {
		whitelist[l] = true
	}
	d := &Detector{opts: whatlanggo.Options{Whitelist: whitelist}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectLanguage returns an ISO 639-1 code, or "" when unsure.
func (d *Detector) DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if lang, ok := mise.DetectLanguageByMarkers(text); ok {
		return lang
	}
	info := whatlanggo.DetectWithOptions(text, d.opts)
	if info.Confidence < d.minConfidence {
		return ""
	}
	return supported[info.Lang]
}
