package goquery

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

const noiseTags = "script, style, noscript, template, iframe, svg, form, nav, header, footer, aside"

// denylistRE matches class and id tokens of page furniture.
var denylistRE = regexp.MustCompile(`(?i)(^|[\s_-])(ads?|advert\w*|sponsor\w*|banner|cookies?|consent|gdpr|social|share|sharing|comments?|newsletter|subscribe|menu|sidebar|related|promo|popup|modal|breadcrumbs?)($|[\s_-])`)

// clean removes noise elements and page furniture from doc in place.
// Structural roots are never removed even if their class matches.
func clean(doc *goquery.Document) {
	doc.Find(noiseTags).Remove()
	doc.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "html", "body", "main", "article":
			return
		}
		if denylistRE.MatchString(s.AttrOr("class", "")) || denylistRE.MatchString(s.AttrOr("id", "")) {
			s.Remove()
		}
	})
}
