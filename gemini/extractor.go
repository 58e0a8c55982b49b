package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/mise"
	"github.com/fwojciec/mise/ingredient"
	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Generation bounds.
const (
	DefaultMaxOutputTokens = 4096
	DefaultMaxPromptTokens = 8000
)

// requiredKeys must all be present in a reply; values may be null.
var requiredKeys = []string{
	"title", "description", "servings", "prepMinutes", "cookMinutes",
	"ingredients", "instructions", "nutrition",
}

// Ensure AIExtractor implements mise.AIExtractor at compile time.
var _ mise.AIExtractor = (*AIExtractor)(nil)

// AIExtractor extracts recipes from page text with Google Gemini.
type AIExtractor struct {
	client          *genai.Client
	model           string
	counter         mise.TokenCounter
	maxPromptTokens int
	maxOutputTokens int32
}

// Option configures an AIExtractor.
type Option func(*AIExtractor)

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(a *AIExtractor) {
		a.model = model
	}
}

// WithTokenLimit bounds the prompt to max tokens as counted by counter.
// Longer page text is cut proportionally.
func WithTokenLimit(counter mise.TokenCounter, max int) Option {
	return func(a *AIExtractor) {
		a.counter = counter
		a.maxPromptTokens = max
	}
}

// WithMaxOutputTokens bounds the size of the reply.
func WithMaxOutputTokens(n int32) Option {
	return func(a *AIExtractor) {
		a.maxOutputTokens = n
	}
}

// NewAIExtractor creates a new AIExtractor.
func NewAIExtractor(client *genai.Client, opts ...Option) *AIExtractor {
	a := &AIExtractor{
		client:          client,
		model:           DefaultModel,
		maxPromptTokens: DefaultMaxPromptTokens,
		maxOutputTokens: DefaultMaxOutputTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ExtractRecipe sends the page text to the model and parses its reply.
func (a *AIExtractor) ExtractRecipe(ctx context.Context, req mise.AIRequest) (*mise.RecipeDraft, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, mise.Errorf(mise.EINVALID, "page text required")
	}

	text, err := a.fitText(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	req.Text = text

	result, err := a.client.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{genai.NewContentFromText(BuildUserPrompt(req), genai.RoleUser)},
		BuildConfig(a.maxOutputTokens),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, mise.Errorf(mise.EINTERNAL, "gemini returned nil result")
	}
	return ParseResponse(result.Text())
}

// fitText cuts text until its prompt fits maxPromptTokens.
func (a *AIExtractor) fitText(ctx context.Context, text string) (string, error) {
	if a.counter == nil || a.maxPromptTokens <= 0 {
		return text, nil
	}
	for range 3 {
		n, err := a.counter.CountTokens(ctx, text)
		if err != nil {
			return "", fmt.Errorf("counting prompt tokens: %w", err)
		}
		if n <= a.maxPromptTokens {
			return text, nil
		}
		keep := utf8.RuneCountInString(text) * a.maxPromptTokens / n * 9 / 10
		text = string([]rune(text)[:keep])
	}
	return text, nil
}

// BuildConfig returns the GenerateContentConfig for recipe extraction.
func BuildConfig(maxOutputTokens int32) *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You extract cooking recipes from web page text. Reply with exactly one JSON object and nothing else. " +
					"Use only what the text states; estimate only the nutrition values. " +
					"Write every text field in the language of the page.",
			}},
		},
		Temperature:      &temp,
		MaxOutputTokens:  maxOutputTokens,
		ResponseMIMEType: "application/json",
	}
}

// BuildUserPrompt builds the prompt carrying the schema and the page text.
func BuildUserPrompt(req mise.AIRequest) string {
	var sb strings.Builder
	sb.WriteString("Extract the recipe from the page below as a JSON object with these keys:\n")
	sb.WriteString(`{
  "title": string,
  "description": string or null,
  "image": image URL or null,
  "imageCategory": one word naming the dish type when image is null,
  "servings": integer or null,
  "prepMinutes": integer or null,
  "cookMinutes": integer or null,
  "ingredients": [one string per ingredient line, quantity first],
  "instructions": [one string per step],
  "nutrition": {"calories": number, "protein": number, "carbs": number, "fat": number} per serving, or null
}`)
	sb.WriteString("\n\n")
	if req.Language != "" {
		fmt.Fprintf(&sb, "<language>%s</language>\n", req.Language)
	}
	fmt.Fprintf(&sb, "<source>%s</source>\n", req.URL)
	if req.ImageURL != "" {
		fmt.Fprintf(&sb, "<image>%s</image>\n", req.ImageURL)
	}
	fmt.Fprintf(&sb, "<page>\n%s\n</page>", req.Text)
	return sb.String()
}

type reply struct {
	Title         string                  `json:"title"`
	Description   *string                 `json:"description"`
	Image         *string                 `json:"image"`
	ImageCategory *string                 `json:"imageCategory"`
	Servings      *float64                `json:"servings"`
	PrepMinutes   *float64                `json:"prepMinutes"`
	CookMinutes   *float64                `json:"cookMinutes"`
	Ingredients   []json.RawMessage       `json:"ingredients"`
	Instructions  []string                `json:"instructions"`
	Nutrition     *mise.NutritionEstimate `json:"nutrition"`
}

type structuredLine struct {
	Amount *float64 `json:"amount"`
	Unit   string   `json:"unit"`
	Name   string   `json:"name"`
	Notes  string   `json:"notes"`
}

// ParseResponse reads the first balanced JSON object of a model reply.
// A reply without one, or missing a required key, is *mise.AIParseError.
func ParseResponse(text string) (*mise.RecipeDraft, error) {
	obj, ok := mise.FirstJSONObject(text)
	if !ok {
		return nil, &mise.AIParseError{Reason: "no JSON object", Raw: text}
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &keys); err != nil {
		return nil, &mise.AIParseError{Reason: err.Error(), Raw: text}
	}
	var missing []string
	for _, k := range requiredKeys {
		if _, ok := keys[k]; !ok {
			missing = append(missing, k)
		}
	}
	_, hasImage := keys["image"]
	_, hasCategory := keys["imageCategory"]
	if !hasImage && !hasCategory {
		missing = append(missing, "image")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &mise.AIParseError{Reason: "missing keys: " + strings.Join(missing, ", "), Raw: text}
	}

	var r reply
	if err := json.Unmarshal([]byte(obj), &r); err != nil {
		return nil, &mise.AIParseError{Reason: err.Error(), Raw: text}
	}

	inputs := make([]mise.IngredientInput, 0, len(r.Ingredients))
	for _, raw := range r.Ingredients {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			inputs = append(inputs, mise.RawIngredient{Text: s})
			continue
		}
		var sl structuredLine
		if err := json.Unmarshal(raw, &sl); err != nil {
			return nil, &mise.AIParseError{Reason: "ingredient is neither text nor object", Raw: text}
		}
		inputs = append(inputs, mise.StructuredIngredient{Amount: sl.Amount, Unit: sl.Unit, Name: sl.Name, Notes: sl.Notes})
	}

	d := &mise.RecipeDraft{
		Title:        strings.TrimSpace(r.Title),
		Ingredients:  ingredient.FromInputs(inputs),
		Instructions: nonEmpty(r.Instructions),
		Servings:     positiveInt(r.Servings),
		PrepMinutes:  positiveInt(r.PrepMinutes),
		CookMinutes:  positiveInt(r.CookMinutes),
		Nutrition:    r.Nutrition,
		Source:       mise.SourceAI,
	}
	if r.Description != nil {
		d.Description = strings.TrimSpace(*r.Description)
	}
	if r.Image != nil && strings.HasPrefix(*r.Image, "http") {
		d.ImageURL = *r.Image
	} else if r.ImageCategory != nil {
		d.ImageCategory = strings.TrimSpace(*r.ImageCategory)
	}
	if d.PrepMinutes != nil && d.CookMinutes != nil {
		total := *d.PrepMinutes + *d.CookMinutes
		d.TotalMinutes = &total
	}
	return d, nil
}

// positiveInt rounds a positive JSON number; anything else is nil.
func positiveInt(v *float64) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	n := int(*v + 0.5)
	return &n
}

func nonEmpty(steps []string) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
