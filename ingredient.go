package mise

// Unit is a canonical unit code.
type Unit string

const (
	UnitTeaspoon     Unit = "tsp"
	UnitTablespoon   Unit = "tbsp"
	UnitSpiceMeasure Unit = "krm"
	UnitGram         Unit = "g"
	UnitKilogram     Unit = "kg"
	UnitMilligram    Unit = "mg"
	UnitMilliliter   Unit = "ml"
	UnitLiter        Unit = "l"
	UnitDeciliter    Unit = "dl"
	UnitCentiliter   Unit = "cl"
	UnitCup          Unit = "cup"
	UnitOunce        Unit = "oz"
	UnitFluidOunce   Unit = "floz"
	UnitPound        Unit = "lb"
	UnitPinch        Unit = "pinch"
	UnitClove        Unit = "clove"
	UnitCan          Unit = "can"
	UnitPackage      Unit = "pkg"
	UnitEach         Unit = "each"
	UnitCentimeter   Unit = "cm"
	UnitMillimeter   Unit = "mm"
	UnitInch         Unit = "inch"
)

// IngredientLine is the parsed form of one ingredient string.
//
// If Amount is set and the raw text carried no unit token, Unit is either
// a guess from the ingredient name (UnitGuessed is true) or empty.
type IngredientLine struct {
	Raw         string   `json:"raw"`
	Amount      *float64 `json:"amount,omitempty"`
	Unit        Unit     `json:"unit,omitempty"`
	UnitGuessed bool     `json:"unitGuessed,omitempty"`
	Name        string   `json:"name"`
	Notes       string   `json:"notes,omitempty"`
	IsRange     bool     `json:"isRange,omitempty"`
}

// IngredientInput is an ingredient as found in source markup: either a raw
// string or an already structured object.
type IngredientInput interface {
	ingredientInput()
}

// RawIngredient is an ingredient given as free text.
type RawIngredient struct {
	Text string
}

// StructuredIngredient is an ingredient given as separate fields.
type StructuredIngredient struct {
	Amount *float64
	Unit   string
	Name   string
	Notes  string
}

func (RawIngredient) ingredientInput()        {}
func (StructuredIngredient) ingredientInput() {}
