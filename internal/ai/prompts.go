package ai

import (
	"fmt"
	"strings"
)

const (
	AnyCuisine = "Any"
	NoDiet     = "None"
)

// Constraints are the user supplied generation parameters.
type Constraints struct {
	Ingredients []string `json:"ingredients"`
	Cuisine     string   `json:"cuisine"`
	Diet        string   `json:"diet"`
}

// DefaultConstraints is the empty form.
func DefaultConstraints() Constraints {
	return Constraints{Ingredients: []string{}, Cuisine: AnyCuisine, Diet: NoDiet}
}

// RecipePrompt renders the chef prompt. The "Any" cuisine and "None" diet
// sentinels are both rendered as "None".
func RecipePrompt(c Constraints) string {
	var b strings.Builder
	b.WriteString("You are a world-class chef. Create a delicious recipe based on the following details.\n\n")
	fmt.Fprintf(&b, "Ingredients: %s\n", strings.Join(c.Ingredients, ", "))
	fmt.Fprintf(&b, "Cuisine preference: %s\n", preference(c.Cuisine, AnyCuisine))
	fmt.Fprintf(&b, "Dietary restriction: %s\n\n", preference(c.Diet, NoDiet))
	b.WriteString("Provide the recipe in the specified JSON format. The instructions should be clear and easy to follow.")
	return b.String()
}

func preference(value, sentinel string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == sentinel {
		return "None"
	}
	return value
}

// ImagePrompt renders the food photography prompt for a recipe name.
func ImagePrompt(recipeName string) string {
	return fmt.Sprintf(`Professional, high-resolution food photography of "%s".
The dish should look incredibly appetizing, with vibrant colors and beautiful lighting.
Styled on a clean, modern plate, with a soft-focus background.`, strings.TrimSpace(recipeName))
}
