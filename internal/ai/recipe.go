package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrMalformedRecipe marks a model response that does not match the recipe schema.
var ErrMalformedRecipe = errors.New("malformed recipe response")

// recipeFields is the wire order of the schema; every field is required.
var recipeFields = []string{"recipeName", "description", "prepTime", "cookTime", "servings", "ingredients", "instructions"}

type Recipe struct {
	Name         string   `json:"recipeName" jsonschema_description:"The name of the recipe."`
	Description  string   `json:"description" jsonschema_description:"A short, appetizing description of the dish."`
	PrepTime     string   `json:"prepTime" jsonschema_description:"Preparation time, e.g. '15 minutes'."`
	CookTime     string   `json:"cookTime" jsonschema_description:"Cooking time, e.g. '30 minutes'."`
	Servings     string   `json:"servings" jsonschema_description:"Number of servings, e.g. '4 servings'."`
	Ingredients  []string `json:"ingredients" jsonschema_description:"A list of ingredients with quantities."`
	Instructions []string `json:"instructions" jsonschema_description:"Step-by-step cooking instructions."`
}

// wireRecipe keeps pointers so a missing field can be told apart from an empty one.
type wireRecipe struct {
	Name         *string   `json:"recipeName"`
	Description  *string   `json:"description"`
	PrepTime     *string   `json:"prepTime"`
	CookTime     *string   `json:"cookTime"`
	Servings     *string   `json:"servings"`
	Ingredients  []*string `json:"ingredients"`
	Instructions []*string `json:"instructions"`
}

// ParseRecipe decodes and validates a structured model response. Markdown code
// fences are tolerated. Values are kept verbatim apart from surrounding
// whitespace; pages escape them when rendering.
func ParseRecipe(raw string) (*Recipe, error) {
	content := stripCodeFence(raw)
	if content == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedRecipe)
	}

	var wire wireRecipe
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecipe, err)
	}

	var missing []string
	str := func(field string, v *string) string {
		s := ""
		if v != nil {
			s = strings.TrimSpace(*v)
		}
		if s == "" {
			missing = append(missing, field)
		}
		return s
	}
	list := func(field string, v []*string) []string {
		items := lo.FilterMap(v, func(item *string, _ int) (string, bool) {
			if item == nil {
				return "", false
			}
			s := strings.TrimSpace(*item)
			return s, s != ""
		})
		if len(items) == 0 {
			missing = append(missing, field)
		}
		return items
	}

	recipe := &Recipe{
		Name:         str("recipeName", wire.Name),
		Description:  str("description", wire.Description),
		PrepTime:     str("prepTime", wire.PrepTime),
		CookTime:     str("cookTime", wire.CookTime),
		Servings:     str("servings", wire.Servings),
		Ingredients:  list("ingredients", wire.Ingredients),
		Instructions: list("instructions", wire.Instructions),
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedRecipe, strings.Join(missing, ", "))
	}
	return recipe, nil
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
