package generation

import (
	"slices"
	"strings"

	"recipegen/internal/ai"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
)

// foldKey is the identity of an ingredient: "Eggs" and "eggs " are the same.
func foldKey(ingredient string) string {
	return cases.Fold().String(strings.TrimSpace(ingredient))
}

// addIngredient appends a trimmed ingredient unless it is blank or already
// present. The first spelling wins.
func addIngredient(c ai.Constraints, ingredient string) (ai.Constraints, bool) {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return c, false
	}
	key := foldKey(ingredient)
	if slices.ContainsFunc(c.Ingredients, func(existing string) bool { return foldKey(existing) == key }) {
		return c, false
	}
	c.Ingredients = append(slices.Clone(c.Ingredients), ingredient)
	return c, true
}

func removeIngredient(c ai.Constraints, ingredient string) (ai.Constraints, bool) {
	key := foldKey(ingredient)
	kept := lo.Reject(c.Ingredients, func(existing string, _ int) bool { return foldKey(existing) == key })
	if len(kept) == len(c.Ingredients) {
		return c, false
	}
	c.Ingredients = kept
	return c, true
}

func cloneConstraints(c ai.Constraints) ai.Constraints {
	c.Ingredients = slices.Clone(c.Ingredients)
	if c.Ingredients == nil {
		c.Ingredients = []string{}
	}
	return c
}
