package mise

import (
	"strings"
	"unicode"
)

// recipeKeywords is recipe-domain vocabulary across the supported languages.
var recipeKeywords = []string{
	// sv
	"recept", "ingredienser", "gör så här", "tillagning", "portioner", "minuter",
	"msk", "tsk", "krm", "dl", "ugn", "ugnen", "stek", "koka", "blanda", "vispa", "grädda",
	// en
	"recipe", "ingredients", "instructions", "directions", "method", "servings", "serves",
	"minutes", "tablespoon", "teaspoon", "cup", "cups", "oven", "bake", "stir", "preheat", "whisk",
	// de
	"rezept", "zutaten", "zubereitung", "portionen", "esslöffel", "teelöffel", "backofen",
	// fr
	"recette", "préparation", "cuisson", "cuillère", "four",
	// es
	"receta", "ingredientes", "preparación", "cucharada", "horno",
}

// CountRecipeKeywords returns how many distinct recipe keywords occur in text.
func CountRecipeKeywords(text string) int {
	lower := strings.ToLower(text)
	words := wordSet(lower)
	hits := 0
	for _, kw := range recipeKeywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(lower, kw) {
				hits++
			}
			continue
		}
		if words[kw] {
			hits++
		}
	}
	return hits
}

// languageMarkers are frequent function words and kitchen words that tell
// the supported languages apart.
var languageMarkers = map[string][]string{
	"sv": {"och", "med", "till", "eller", "på", "gör", "så", "här", "ägg", "mjölk", "smör", "grädde", "msk", "tsk", "dl", "ugnen", "stek", "koka"},
	"en": {"and", "the", "with", "of", "to", "or", "until", "cup", "cups", "tablespoon", "teaspoon", "oven", "stir", "add", "minutes"},
	"de": {"und", "mit", "der", "die", "das", "oder", "zutaten", "zubereitung", "esslöffel", "teelöffel", "minuten", "backofen"},
	"fr": {"et", "avec", "le", "les", "du", "des", "ou", "cuillère", "cuillères", "four", "préparation", "cuisson"},
	"es": {"y", "con", "el", "los", "las", "del", "o", "cucharada", "cucharadas", "horno", "preparación", "minutos"},
}

// DetectLanguageByMarkers counts marker words per language and returns the
// winner. ok is false when fewer than two markers matched or two languages tie.
func DetectLanguageByMarkers(text string) (lang string, ok bool) {
	counts := make(map[string]int, len(languageMarkers))
	for _, w := range strings.FieldsFunc(strings.ToLower(text), isWordBreak) {
		for l, markers := range languageMarkers {
			for _, m := range markers {
				if w == m {
					counts[l]++
					break
				}
			}
		}
	}
	best, tie := 0, false
	for l, n := range counts {
		switch {
		case n > best:
			best, lang, tie = n, l, false
		case n == best:
			tie = true
			if l < lang {
				lang = l
			}
		}
	}
	if best < 2 || tie {
		return lang, false
	}
	return lang, true
}

func wordSet(lower string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(lower, isWordBreak) {
		words[w] = true
	}
	return words
}

func isWordBreak(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
