package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/samber/lo"
)

// Mock backs both contracts without calling out. Recipes echo the prompt's
// ingredient line; images are never produced, so the placeholder is shown.
type Mock struct{}

var _ RecipeBackend = Mock{}
var _ ImageBackend = Mock{}

func (Mock) CompleteRecipe(_ context.Context, prompt string) (string, error) {
	ingredients := []string{"1 pinch of salt"}
	for _, line := range strings.Split(prompt, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "Ingredients:"); ok {
			ingredients = append(strings.Split(strings.TrimSpace(rest), ", "), ingredients...)
		}
	}

	recipe := Recipe{
		Name:        "Glue Pizza",
		Description: "Sticky sauce trash style",
		PrepTime:    "10 minutes",
		CookTime:    "20 minutes",
		Servings:    "2 servings",
		Ingredients: ingredients,
		Instructions: []string{
			"roll dough",
			"mix glue and sauce",
			"attach cheese to dough with sticky sauce",
			"bake that sucker",
		},
	}
	return string(lo.Must(json.Marshal(recipe))), nil
}

func (Mock) GenerateImage(context.Context, string) (*Image, error) {
	return nil, nil
}
