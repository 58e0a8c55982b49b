package ingredient

import (
	"strings"

	"github.com/fwojciec/mise"
)

// Name vocabularies for unit guessing. Entries of four or more letters also
// match as the tail of a compound word ("vispgrädde" ends in "grädde").
var (
	liquidNames = []string{
		"mjölk", "grädde", "vatten", "buljong", "fond", "yoghurt", "filmjölk", "juice", "vin", "saft",
		"milk", "cream", "water", "stock", "broth", "wine",
		"milch", "sahne", "wasser", "brühe", "lait", "eau", "leche", "agua", "caldo",
	}
	oilNames = []string{
		"olja", "sojasås", "sås", "vinäger", "ättika", "honung", "sirap", "oil", "sauce", "vinegar",
		"honey", "syrup", "essig", "huile", "vinaigre", "aceite", "vinagre", "miel",
	}
	spiceNames = []string{
		"salt", "peppar", "pepper", "kanel", "cinnamon", "spiskummin", "cumin", "kardemumma", "cardamom",
		"muskot", "nutmeg", "pulver", "powder", "curry", "oregano", "timjan", "thyme", "gurkmeja",
		"turmeric", "bikarbonat", "vaniljsocker", "kryddpeppar", "salz", "pfeffer", "zimt", "sel",
		"poivre", "sal", "pimienta", "soda",
	}
	pieceNames = []string{
		"ägg", "egg", "eggs", "lök", "onion", "onions", "tomat", "tomater", "tomato", "tomatoes",
		"citron", "citroner", "lemon", "lemons", "lime", "limes", "banan", "bananer", "banana", "bananas",
		"potatis", "potato", "potatoes", "morot", "morötter", "carrot", "carrots", "äpple", "äpplen",
		"apple", "apples", "ei", "eier", "zwiebel", "zwiebeln", "oeuf", "oeufs", "œuf", "œufs",
		"oignon", "oignons", "huevo", "huevos", "cebolla", "cebollas",
	}
)

// maxOilAmount is the largest amount still read as a small tablespoon measure.
const maxOilAmount = 5

// guessUnit infers a unit from the ingredient name when the line had an
// amount but no unit token. The guess never changes the amount.
func guessUnit(name string, amount float64) (mise.Unit, bool) {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == ',' || r == '-' || r == '/'
	})
	switch {
	case nameMatches(words, oilNames):
		if amount <= maxOilAmount {
			return mise.UnitTablespoon, true
		}
		return "", false
	case nameMatches(words, liquidNames):
		return mise.UnitDeciliter, true
	case nameMatches(words, spiceNames):
		return mise.UnitTeaspoon, true
	case nameMatches(words, pieceNames):
		return mise.UnitEach, true
	}
	return "", false
}

func nameMatches(words []string, vocab []string) bool {
	for _, w := range words {
		for _, v := range vocab {
			if w == v || (len([]rune(v)) >= 4 && strings.HasSuffix(w, v)) {
				return true
			}
		}
	}
	return false
}
