package crawl

import (
	"fmt"
	"strings"

	"github.com/fwojciec/mise"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatTrail renders an extraction trail one attempt per line.
func FormatTrail(trail []mise.Attempt) string {
	var b strings.Builder
	for i, a := range trail {
		fmt.Fprintf(&b, "%2d. %s\n", i+1, a)
	}
	return b.String()
}
