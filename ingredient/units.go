package ingredient

import (
	"strings"

	"github.com/fwojciec/mise"
)

// unitTokens maps lower-cased unit spellings to canonical codes. Every
// canonical code maps to itself so display strings parse back.
var unitTokens = map[string]mise.Unit{
	"tsp": mise.UnitTeaspoon, "tsps": mise.UnitTeaspoon, "teaspoon": mise.UnitTeaspoon, "teaspoons": mise.UnitTeaspoon,
	"tsk": mise.UnitTeaspoon, "tesked": mise.UnitTeaspoon, "teskedar": mise.UnitTeaspoon,
	"tl": mise.UnitTeaspoon, "teelöffel": mise.UnitTeaspoon, "cc": mise.UnitTeaspoon, "cdta": mise.UnitTeaspoon,
	"cucharadita": mise.UnitTeaspoon, "cucharaditas": mise.UnitTeaspoon,

	"tbsp": mise.UnitTablespoon, "tbsps": mise.UnitTablespoon, "tbs": mise.UnitTablespoon, "tblsp": mise.UnitTablespoon,
	"tablespoon": mise.UnitTablespoon, "tablespoons": mise.UnitTablespoon, "msk": mise.UnitTablespoon,
	"matsked": mise.UnitTablespoon, "matskedar": mise.UnitTablespoon, "el": mise.UnitTablespoon,
	"esslöffel": mise.UnitTablespoon, "cs": mise.UnitTablespoon, "cda": mise.UnitTablespoon,
	"cucharada": mise.UnitTablespoon, "cucharadas": mise.UnitTablespoon,

	"krm": mise.UnitSpiceMeasure, "kryddmått": mise.UnitSpiceMeasure,

	"g": mise.UnitGram, "gr": mise.UnitGram, "gram": mise.UnitGram, "grams": mise.UnitGram,
	"gramm": mise.UnitGram, "gramos": mise.UnitGram, "gramme": mise.UnitGram, "grammes": mise.UnitGram,
	"kg": mise.UnitKilogram, "kilo": mise.UnitKilogram, "kilos": mise.UnitKilogram, "kilogram": mise.UnitKilogram,
	"kilogramm": mise.UnitKilogram, "mg": mise.UnitMilligram, "milligram": mise.UnitMilligram,

	"ml": mise.UnitMilliliter, "milliliter": mise.UnitMilliliter, "millilitre": mise.UnitMilliliter,
	"l": mise.UnitLiter, "liter": mise.UnitLiter, "litre": mise.UnitLiter, "liters": mise.UnitLiter,
	"litres": mise.UnitLiter, "litro": mise.UnitLiter, "litros": mise.UnitLiter,
	"dl": mise.UnitDeciliter, "deciliter": mise.UnitDeciliter, "décilitre": mise.UnitDeciliter,
	"cl": mise.UnitCentiliter, "centiliter": mise.UnitCentiliter,

	"cup": mise.UnitCup, "cups": mise.UnitCup, "kopp": mise.UnitCup, "koppar": mise.UnitCup,
	"tasse": mise.UnitCup, "tasses": mise.UnitCup, "taza": mise.UnitCup, "tazas": mise.UnitCup,
	"oz": mise.UnitOunce, "ounce": mise.UnitOunce, "ounces": mise.UnitOunce,
	"floz": mise.UnitFluidOunce, "fl oz": mise.UnitFluidOunce, "fl. oz": mise.UnitFluidOunce,
	"fluid ounce": mise.UnitFluidOunce, "fluid ounces": mise.UnitFluidOunce,
	"lb": mise.UnitPound, "lbs": mise.UnitPound, "pound": mise.UnitPound, "pounds": mise.UnitPound,

	"pinch": mise.UnitPinch, "pinches": mise.UnitPinch, "nypa": mise.UnitPinch, "nypor": mise.UnitPinch,
	"prise": mise.UnitPinch, "pizca": mise.UnitPinch,
	"clove": mise.UnitClove, "cloves": mise.UnitClove, "klyfta": mise.UnitClove, "klyftor": mise.UnitClove,
	"zehe": mise.UnitClove, "zehen": mise.UnitClove, "gousse": mise.UnitClove, "gousses": mise.UnitClove,
	"diente": mise.UnitClove, "dientes": mise.UnitClove,
	"can": mise.UnitCan, "cans": mise.UnitCan, "tin": mise.UnitCan, "tins": mise.UnitCan,
	"burk": mise.UnitCan, "burkar": mise.UnitCan, "dose": mise.UnitCan, "dosen": mise.UnitCan,
	"pkg": mise.UnitPackage, "package": mise.UnitPackage, "packages": mise.UnitPackage, "pack": mise.UnitPackage,
	"paket": mise.UnitPackage, "pkt": mise.UnitPackage, "förp": mise.UnitPackage, "förpackning": mise.UnitPackage,
	"päckchen": mise.UnitPackage, "packung": mise.UnitPackage, "sachet": mise.UnitPackage,

	"each": mise.UnitEach, "st": mise.UnitEach, "styck": mise.UnitEach, "stycken": mise.UnitEach,
	"pc": mise.UnitEach, "pcs": mise.UnitEach, "piece": mise.UnitEach, "pieces": mise.UnitEach,
	"stk": mise.UnitEach, "stück": mise.UnitEach, "pièce": mise.UnitEach, "pièces": mise.UnitEach,

	"cm": mise.UnitCentimeter, "mm": mise.UnitMillimeter,
	"inch": mise.UnitInch, "inches": mise.UnitInch,
}

// ambiguousTokens are unit spellings that are also everyday words. They
// count as units only directly after an amount.
var ambiguousTokens = map[string]bool{
	"l": true, "el": true, "can": true, "tin": true, "each": true,
	"pack": true, "dose": true, "st": true, "cc": true, "cs": true, "pc": true,
}

// LookupUnit maps a unit spelling to its canonical code.
func LookupUnit(token string) (mise.Unit, bool) {
	u, ok := unitTokens[normalizeToken(token)]
	return u, ok
}

// matchUnit consumes a leading unit token from rest. Two-word spellings
// such as "fl oz" are tried before single words.
func matchUnit(rest string) (mise.Unit, string, bool) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", rest, false
	}
	if len(fields) > 1 {
		if u, ok := LookupUnit(fields[0] + " " + fields[1]); ok {
			return u, strings.Join(fields[2:], " "), true
		}
	}
	if u, ok := LookupUnit(fields[0]); ok {
		return u, strings.Join(fields[1:], " "), true
	}
	return "", rest, false
}

// hasUnitToken reports whether any unambiguous unit spelling occurs as a
// word in s.
func hasUnitToken(s string) bool {
	for _, f := range strings.Fields(s) {
		tok := normalizeToken(f)
		if ambiguousTokens[tok] {
			continue
		}
		if _, ok := unitTokens[tok]; ok {
			return true
		}
	}
	return false
}

func normalizeToken(s string) string {
	return strings.Trim(strings.ToLower(s), ".,:;")
}
