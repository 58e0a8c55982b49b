package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Plugin identifies a recipe-card plugin that renders a predictable DOM.
type Plugin string

const (
	PluginUnknown    Plugin = ""
	PluginWPRM       Plugin = "wprm"
	PluginTasty      Plugin = "tasty"
	PluginMediavine  Plugin = "mv-create"
	PluginZipRecipes Plugin = "zip"
	PluginCooked     Plugin = "cooked"
	PluginEasyRecipe Plugin = "easyrecipe"
)

// PluginSelectors locate a plugin's ingredient and instruction items.
type PluginSelectors struct {
	Marker       string // present only on pages using the plugin
	Ingredients  string
	Instructions string
}

// Detector identifies recipe-card plugins from their CSS markers.
type Detector struct {
	plugins []Plugin
	known   map[Plugin]PluginSelectors
}

// NewDetector creates a Detector that knows the built-in plugins.
func NewDetector() *Detector {
	d := &Detector{known: make(map[Plugin]PluginSelectors)}
	d.Register(PluginWPRM, PluginSelectors{
		Marker:       ".wprm-recipe",
		Ingredients:  ".wprm-recipe-ingredient",
		Instructions: ".wprm-recipe-instruction-text",
	})
	d.Register(PluginTasty, PluginSelectors{
		Marker:       ".tasty-recipes",
		Ingredients:  ".tasty-recipes-ingredients li",
		Instructions: ".tasty-recipes-instructions li",
	})
	d.Register(PluginMediavine, PluginSelectors{
		Marker:       ".mv-create-card",
		Ingredients:  ".mv-create-ingredients li",
		Instructions: ".mv-create-instructions li",
	})
	d.Register(PluginZipRecipes, PluginSelectors{
		Marker:       "#zlrecipe-container",
		Ingredients:  ".zlrecipe-ingredient, #zlrecipe-ingredients-list li",
		Instructions: "#zlrecipe-instructions-list li",
	})
	d.Register(PluginCooked, PluginSelectors{
		Marker:       ".cooked-recipe-ingredients",
		Ingredients:  ".cooked-single-ingredient.cooked-ingredient",
		Instructions: ".cooked-single-direction .cooked-dir-content",
	})
	d.Register(PluginEasyRecipe, PluginSelectors{
		Marker:       ".easyrecipe",
		Ingredients:  ".easyrecipe .ingredient",
		Instructions: ".easyrecipe .instruction",
	})
	return d
}

// Register adds or replaces a plugin. Plugins are checked in registration order.
func (d *Detector) Register(p Plugin, sel PluginSelectors) {
	if _, ok := d.known[p]; !ok {
		d.plugins = append(d.plugins, p)
	}
	d.known[p] = sel
}

// Get returns the selectors for a plugin.
func (d *Detector) Get(p Plugin) (PluginSelectors, bool) {
	sel, ok := d.known[p]
	return sel, ok
}

// Detect returns the first registered plugin whose marker and ingredient
// items are present, or PluginUnknown.
func (d *Detector) Detect(doc *goquery.Document) Plugin {
	for _, p := range d.plugins {
		sel := d.known[p]
		if doc.Find(sel.Marker).Length() > 0 && doc.Find(sel.Ingredients).Length() > 0 {
			return p
		}
	}
	return PluginUnknown
}

// ReadySelectors returns a selector per plugin whose appearance means the
// recipe card has rendered, plus the JSON-LD script selector.
func (d *Detector) ReadySelectors() []string {
	out := []string{jsonLDSelector}
	for _, p := range d.plugins {
		out = append(out, firstSelector(d.known[p].Ingredients))
	}
	return out
}

func firstSelector(group string) string {
	first, _, _ := strings.Cut(group, ",")
	return strings.TrimSpace(first)
}
