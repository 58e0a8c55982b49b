package ingredient

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var vulgarFractions = map[rune]float64{
	'½': 1.0 / 2, '⅓': 1.0 / 3, '⅔': 2.0 / 3, '¼': 1.0 / 4, '¾': 3.0 / 4,
	'⅕': 1.0 / 5, '⅖': 2.0 / 5, '⅗': 3.0 / 5, '⅘': 4.0 / 5, '⅙': 1.0 / 6,
	'⅚': 5.0 / 6, '⅛': 1.0 / 8, '⅜': 3.0 / 8, '⅝': 5.0 / 8, '⅞': 7.0 / 8,
	'⅐': 1.0 / 7, '⅑': 1.0 / 9, '⅒': 1.0 / 10,
}

const vulgarClass = `[½⅓⅔¼¾⅕⅖⅗⅘⅙⅚⅛⅜⅝⅞⅐⅑⅒]`

var (
	mixedVulgarRE = regexp.MustCompile(`(\d+)\s*(` + vulgarClass + `)`)
	vulgarRE      = regexp.MustCompile(vulgarClass)
	mixedASCIIRE  = regexp.MustCompile(`(\d+)\s+(\d+)\s*/\s*(\d+)`)
	hyphenMixedRE = regexp.MustCompile(`\b(\d+)-(\d+)/(\d+)\b`)
	thousandsRE   = regexp.MustCompile(`(^|[^\d.,])([1-9]\d{0,2}(?:\.\d{3})+)([^\d.,]|$)`)
	asciiRE       = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
)

// normalizeFractions rewrites unicode vulgar fractions and ASCII fractions,
// mixed or not, as decimals: "1½", "1 1/2" and "1-1/2" all become "1.5".
func normalizeFractions(s string) string {
	s = strings.ReplaceAll(s, "⁄", "/")
	s = mixedVulgarRE.ReplaceAllStringFunc(s, func(m string) string {
		sub := mixedVulgarRE.FindStringSubmatch(m)
		whole, _ := strconv.Atoi(sub[1])
		r, _ := utf8.DecodeRuneInString(sub[2])
		return formatAmount(float64(whole) + vulgarFractions[r])
	})
	s = vulgarRE.ReplaceAllStringFunc(s, func(m string) string {
		r, _ := utf8.DecodeRuneInString(m)
		return formatAmount(vulgarFractions[r])
	})
	s = hyphenMixedRE.ReplaceAllStringFunc(s, func(m string) string {
		sub := hyphenMixedRE.FindStringSubmatch(m)
		whole, _ := strconv.Atoi(sub[1])
		num, _ := strconv.Atoi(sub[2])
		den, _ := strconv.Atoi(sub[3])
		if den == 0 || num >= den {
			return m
		}
		return formatAmount(float64(whole) + float64(num)/float64(den))
	})
	s = mixedASCIIRE.ReplaceAllStringFunc(s, func(m string) string {
		sub := mixedASCIIRE.FindStringSubmatch(m)
		whole, _ := strconv.Atoi(sub[1])
		num, _ := strconv.Atoi(sub[2])
		den, _ := strconv.Atoi(sub[3])
		if den == 0 {
			return m
		}
		return formatAmount(float64(whole) + float64(num)/float64(den))
	})
	return asciiRE.ReplaceAllStringFunc(s, func(m string) string {
		sub := asciiRE.FindStringSubmatch(m)
		num, _ := strconv.Atoi(sub[1])
		den, _ := strconv.Atoi(sub[2])
		if den == 0 {
			return m
		}
		return formatAmount(float64(num) / float64(den))
	})
}

// stripThousands removes "." thousands separators: "1.000 g" becomes
// "1000 g". Exactly three digits must follow each dot.
func stripThousands(s string) string {
	for range 3 {
		next := thousandsRE.ReplaceAllStringFunc(s, func(m string) string {
			sub := thousandsRE.FindStringSubmatch(m)
			return sub[1] + strings.ReplaceAll(sub[2], ".", "") + sub[3]
		})
		if next == s {
			break
		}
		s = next
	}
	return s
}

// parseNumber parses a decimal that may use a comma separator.
func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return round(v), true
}

// round keeps three decimals so that amounts survive a format/parse cycle.
func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(round(v), 'f', -1, 64)
}

// displayAmount is formatAmount with a decimal comma where a dot would
// read as a thousands separator ("1,125" rather than "1.125").
func displayAmount(v float64) string {
	s := formatAmount(v)
	if i := strings.IndexByte(s, '.'); i > 0 && len(s)-i-1 == 3 && s[:i] != "0" {
		s = s[:i] + "," + s[i+1:]
	}
	return s
}
