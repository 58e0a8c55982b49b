package ingredient

import (
	"regexp"
	"strings"

	"github.com/fwojciec/mise"
)

const timeUnits = `(min|mins|minut|minuter|minutes|minuten|minutos|h|tim|timme|timmar|hour|hours|std|stunde|stunden|heure|heures|hora|horas)\.?`

var (
	timeOnlyREs = []*regexp.Regexp{
		regexp.MustCompile(`^\d{1,2}[:.]\d{2}$`),
		regexp.MustCompile(`(?i)^(ca\.?\s*)?\d+(\s*[-–]\s*\d+)?\s*` + timeUnits + `$`),
		regexp.MustCompile(`(?i)^[\p{L} ]{0,30}?(tid|time|zeit|temps|tiempo|prep|cook|total|tillagning|förberedelse|koktid|ugnstid|bake|baking|zubereitung|préparation|cuisson|preparación|cocción)[\p{L} ]{0,15}:?\s*(ca\.?\s*)?\d+(\s*[-–]\s*\d+)?\s*` + timeUnits + `$`),
	}
	bareNumeralRE     = regexp.MustCompile(`^\d+$`)
	leadingFractionRE = regexp.MustCompile(`^(` + vulgarClass + `|\d+\s*/\s*\d+)\s*\S`)
	leadingAmountRE   = regexp.MustCompile(`(?i)^((ca\.?|cirka|about)\s+)?\d`)
	stepNumberRE      = regexp.MustCompile(`^\d+[.)]\s+\D`)
)

// maxLineLength bounds how long an ingredient line may be; longer text is prose.
const maxLineLength = 200

// IsTimeOnly reports whether line only states a duration or clock time,
// like "Tillagning: 20 min" or "12:30".
func IsTimeOnly(line string) bool {
	line = collapseSpace(line)
	for _, re := range timeOnlyREs {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// LooksLikeIngredient reports whether line starts with an amount or
// contains a recognized unit token, and is not a time-only line.
func LooksLikeIngredient(line string) bool {
	line = collapseSpace(line)
	if line == "" || len(line) > maxLineLength || IsTimeOnly(line) {
		return false
	}
	line = normalizeFractions(line)
	if stepNumberRE.MatchString(line) {
		return false
	}
	return leadingAmountRE.MatchString(line) || hasUnitToken(line)
}

// MergeSplitQuantities joins a bare numeral line with a following line that
// starts with a fraction, repairing markup that splits "1" and "½ dl mjölk".
func MergeSplitQuantities(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		cur := strings.TrimSpace(lines[i])
		if bareNumeralRE.MatchString(cur) && i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if leadingFractionRE.MatchString(next) {
				out = append(out, cur+" "+next)
				i++
				continue
			}
		}
		out = append(out, lines[i])
	}
	return out
}

// ParseAll merges split quantities, drops blank and time-only lines, and
// parses the rest in order.
func ParseAll(lines []string) []mise.IngredientLine {
	merged := MergeSplitQuantities(lines)
	out := make([]mise.IngredientLine, 0, len(merged))
	for _, l := range merged {
		l = collapseSpace(l)
		if l == "" || IsTimeOnly(l) {
			continue
		}
		out = append(out, Parse(l))
	}
	return out
}

// FromInputs converts a list of source ingredients, dropping time-only lines.
func FromInputs(ins []mise.IngredientInput) []mise.IngredientLine {
	var raw []string
	var out []mise.IngredientLine
	flush := func() {
		out = append(out, ParseAll(raw)...)
		raw = raw[:0]
	}
	for _, in := range ins {
		if r, ok := in.(mise.RawIngredient); ok {
			raw = append(raw, r.Text)
			continue
		}
		flush()
		if line := FromInput(in); line.Name != "" || line.Amount != nil {
			out = append(out, line)
		}
	}
	flush()
	return out
}
