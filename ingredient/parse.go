// Package ingredient parses free-text ingredient lines into amount, unit,
// name and notes.
package ingredient

import (
	"regexp"
	"strings"

	"github.com/fwojciec/mise"
)

var (
	quantityRE = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)(?:\s*(?:-|–|—|to|till|bis|à|a)\s*(\d+(?:[.,]\d+)?))?\s*(.*)$`)
	multiplyRE = regexp.MustCompile(`(?i)^[x×*]\s*(\d+(?:[.,]\d+)?)\s*(.*)$`)
	approxRE   = regexp.MustCompile(`(?i)^(ca\.?|cirka|circa|about|approx\.?|ungefär|etwa|environ|aprox\.?)\s+`)
	parenRE    = regexp.MustCompile(`\(([^()]*)\)|\[([^\[\]]*)\]`)
	leadingOf  = regexp.MustCompile(`(?i)^(of|av|de|d'|von)\s+`)

	// qualifierRE matches parentheticals that describe temperature or
	// state rather than the ingredient itself.
	qualifierRE = regexp.MustCompile(`(?i)^(ca\.?\s*)?(\d+\s*°\s*[cf]?|rumstemperera\w*|rumsvarm\w*|kall\w*|ljum\w*|varm|smält\w*|mjuk\w*|fryst\w*|tinad\w*|(at )?room[ -]temperature|cold|chilled|warm|lukewarm|melted|softened|frozen|thawed|zimmerwarm|kalt|weich|geschmolzen|fondu|ramolli|à température ambiante|a temperatura ambiente|derretid[oa]|fr[ií][oa])$`)
)

// wordAmounts are spelled-out amounts accepted only directly before a unit
// token, as in "en nypa salt" or "a pinch of salt".
var wordAmounts = map[string]float64{
	"en": 1, "ett": 1, "one": 1, "a": 1, "an": 1, "ein": 1, "eine": 1, "un": 1, "une": 1, "una": 1, "uno": 1,
	"två": 2, "two": 2, "zwei": 2, "deux": 2, "dos": 2,
	"halv": 0.5, "halva": 0.5, "half": 0.5, "halbe": 0.5,
}

// Parse decomposes a single ingredient line.
func Parse(line string) mise.IngredientLine {
	out := mise.IngredientLine{Raw: line}

	text := normalizeFractions(stripThousands(collapseSpace(line)))
	text, out.Notes = extractParentheticals(text)
	text = approxRE.ReplaceAllString(text, "")

	amount, rest, ok := leadingAmount(text)
	if !ok {
		out.Name = tidyName(text)
		return out
	}
	out.Amount = &amount.value
	out.IsRange = amount.isRange

	unit, rest, explicit := matchUnit(rest)
	out.Name = tidyName(rest)
	if amount.pack != nil {
		out.Notes = joinNotes(packNote(amount.count, *amount.pack, unit, explicit), out.Notes)
	}
	switch {
	case explicit:
		out.Unit = unit
	case !out.IsRange:
		if u, ok := guessUnit(out.Name, amount.value); ok {
			out.Unit = u
			out.UnitGuessed = true
		}
	}
	return out
}

type quantity struct {
	value   float64
	isRange bool

	// count and pack are set for "N x M" multiples; value is their product.
	count float64
	pack  *float64
}

// leadingAmount reads "amount[-amount2]" or "amount x amount2" from the
// start of text. Ranges yield their arithmetic mean, multiples their product.
func leadingAmount(text string) (quantity, string, bool) {
	if m := quantityRE.FindStringSubmatch(text); m != nil {
		a1, ok := parseNumber(m[1])
		if !ok {
			return quantity{}, text, false
		}
		if m[2] == "" {
			if mm := multiplyRE.FindStringSubmatch(m[3]); mm != nil {
				if each, ok := parseNumber(mm[1]); ok {
					return quantity{value: round(a1 * each), count: a1, pack: &each}, mm[2], true
				}
			}
			return quantity{value: a1}, m[3], true
		}
		a2, ok := parseNumber(m[2])
		if !ok {
			return quantity{value: a1}, m[3], true
		}
		return quantity{value: round((a1 + a2) / 2), isRange: true}, m[3], true
	}

	fields := strings.Fields(text)
	if len(fields) < 2 {
		return quantity{}, text, false
	}
	v, ok := wordAmounts[strings.ToLower(fields[0])]
	if !ok {
		return quantity{}, text, false
	}
	rest := strings.Join(fields[1:], " ")
	if _, _, isUnit := matchUnit(rest); !isUnit {
		return quantity{}, text, false
	}
	return quantity{value: v}, rest, true
}

// extractParentheticals removes bracketed text. Temperature and state
// qualifiers are dropped; anything else is returned as notes.
func extractParentheticals(text string) (string, string) {
	var notes []string
	text = parenRE.ReplaceAllStringFunc(text, func(m string) string {
		inner := strings.TrimSpace(m[1 : len(m)-1])
		if inner != "" && !qualifierRE.MatchString(inner) {
			notes = append(notes, inner)
		}
		return " "
	})
	return collapseSpace(text), strings.Join(notes, "; ")
}

// packNote records the original "N × M unit" of a multiplied amount.
func packNote(count, pack float64, unit mise.Unit, explicit bool) string {
	note := displayAmount(count) + " × " + displayAmount(pack)
	if explicit {
		note += " " + string(unit)
	}
	return note
}

func joinNotes(notes ...string) string {
	var out []string
	for _, n := range notes {
		if n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, "; ")
}

func tidyName(s string) string {
	s = strings.TrimSpace(s)
	s = leadingOf.ReplaceAllString(s, "")
	return strings.Trim(s, " ,;:")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Display renders the canonical quantity string for an amount and unit.
// Parsing the result yields the same amount and unit.
func Display(amount *float64, unit mise.Unit) string {
	if amount == nil {
		return string(unit)
	}
	if unit == "" {
		return displayAmount(*amount)
	}
	return displayAmount(*amount) + " " + string(unit)
}

// Format renders a full canonical line: quantity, name and notes.
func Format(l mise.IngredientLine) string {
	parts := make([]string, 0, 3)
	if q := Display(l.Amount, l.Unit); q != "" {
		parts = append(parts, q)
	}
	if l.Name != "" {
		parts = append(parts, l.Name)
	}
	if l.Notes != "" {
		parts = append(parts, "("+l.Notes+")")
	}
	return strings.Join(parts, " ")
}

// FromInput converts a raw or structured ingredient into a parsed line.
func FromInput(in mise.IngredientInput) mise.IngredientLine {
	switch v := in.(type) {
	case mise.RawIngredient:
		return Parse(v.Text)
	case mise.StructuredIngredient:
		line := mise.IngredientLine{
			Amount: v.Amount,
			Name:   strings.TrimSpace(v.Name),
			Notes:  strings.TrimSpace(v.Notes),
		}
		if u, ok := LookupUnit(v.Unit); ok {
			line.Unit = u
		} else if v.Unit != "" {
			line.Name = strings.TrimSpace(v.Unit + " " + line.Name)
		}
		line.Raw = Format(line)
		return line
	}
	return mise.IngredientLine{}
}
