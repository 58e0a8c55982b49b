package goquery

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ResolveImage picks the recipe image in priority order: Open Graph,
// Twitter card, the largest responsive candidate inside a <picture> (in
// container first, then anywhere on the page), the largest declared image
// inside container, and finally the first image on the page that is not
// an inline data URI. Relative URLs are resolved
// against baseURL. container may be nil.
func ResolveImage(doc *goquery.Document, container *goquery.Selection, baseURL string) string {
	for _, sel := range []string{
		`meta[property="og:image"]`, `meta[property="og:image:secure_url"]`, `meta[name="og:image"]`,
		`meta[name="twitter:image"]`, `meta[property="twitter:image"]`, `meta[name="twitter:image:src"]`,
	} {
		if u := resolveURL(baseURL, metaContent(doc, sel)); u != "" {
			return u
		}
	}

	hasContainer := container != nil && container.Length() > 0
	if hasContainer {
		if u := resolveURL(baseURL, largestPictureSource(container)); u != "" {
			return u
		}
	}
	if u := resolveURL(baseURL, largestPictureSource(doc.Selection)); u != "" {
		return u
	}
	if hasContainer {
		if u := resolveURL(baseURL, largestImage(container)); u != "" {
			return u
		}
	}

	var out string
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		out = resolveURL(baseURL, imgSrc(img))
		return out == ""
	})
	return out
}

// largestPictureSource returns the widest srcset candidate of any
// <picture> in scope.
func largestPictureSource(scope *goquery.Selection) string {
	var best string
	var bestW float64
	scope.Find("picture source[srcset], picture img[srcset], picture source[data-srcset], picture img[data-srcset]").Each(func(_ int, s *goquery.Selection) {
		srcset := s.AttrOr("srcset", "")
		if srcset == "" {
			srcset = s.AttrOr("data-srcset", "")
		}
		if u, w := widestCandidate(srcset); u != "" && (best == "" || w > bestW) {
			best, bestW = u, w
		}
	})
	if best == "" {
		scope.Find("picture img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			best = imgSrc(img)
			return best == ""
		})
	}
	return best
}

// widestCandidate parses a srcset and returns the candidate with the
// largest width or density descriptor.
func widestCandidate(srcset string) (string, float64) {
	var best string
	bestW := -1.0
	for _, cand := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(cand))
		if len(fields) == 0 || strings.HasPrefix(fields[0], "data:") {
			continue
		}
		w := 1.0
		if len(fields) > 1 {
			d := fields[1]
			if v, err := strconv.ParseFloat(strings.TrimRight(d, "wxWX"), 64); err == nil {
				w = v
			}
		}
		if w > bestW {
			best, bestW = fields[0], w
		}
	}
	return best, bestW
}

// largestImage returns the image in container with the largest declared
// width×height. Images without dimensions count as zero area.
func largestImage(container *goquery.Selection) string {
	var best string
	bestArea := -1
	container.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := imgSrc(img)
		if src == "" {
			return
		}
		area := dimension(img, "width") * dimension(img, "height")
		if area > bestArea {
			best, bestArea = src, area
		}
	})
	return best
}

func dimension(img *goquery.Selection, attr string) int {
	v := strings.TrimSuffix(strings.TrimSpace(img.AttrOr(attr, "")), "px")
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// imgSrc returns the image URL of an <img>, preferring lazy-load attributes
// over an inline placeholder.
func imgSrc(img *goquery.Selection) string {
	src := strings.TrimSpace(img.AttrOr("src", ""))
	if src != "" && !strings.HasPrefix(src, "data:") {
		return src
	}
	for _, attr := range []string{"data-src", "data-lazy-src", "data-original"} {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}
