package ai

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const validRecipeJSON = `{
  "recipeName": "Fluffy Egg Pancakes",
  "description": "Light pancakes from pantry staples.",
  "prepTime": "10 minutes",
  "cookTime": "15 minutes",
  "servings": "4 servings",
  "ingredients": ["2 eggs", "1 cup flour"],
  "instructions": ["Whisk the eggs.", "Fold in the flour.", "Cook on a hot griddle."]
}`

func TestParseRecipe(t *testing.T) {
	got, err := ParseRecipe(validRecipeJSON)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := &Recipe{
		Name:         "Fluffy Egg Pancakes",
		Description:  "Light pancakes from pantry staples.",
		PrepTime:     "10 minutes",
		CookTime:     "15 minutes",
		Servings:     "4 servings",
		Ingredients:  []string{"2 eggs", "1 cup flour"},
		Instructions: []string{"Whisk the eggs.", "Fold in the flour.", "Cook on a hot griddle."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("recipe mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRecipeStripsCodeFence(t *testing.T) {
	got, err := ParseRecipe("```json\n" + validRecipeJSON + "\n```")
	if err != nil {
		t.Fatalf("expected fenced JSON to parse, got %v", err)
	}
	if got.Name != "Fluffy Egg Pancakes" {
		t.Fatalf("unexpected name %q", got.Name)
	}
}

func TestParseRecipeKeepsBracketedText(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		get  func(*Recipe) any
		want any
	}{
		{
			name: "name is only bracketed text",
			from: `"Fluffy Egg Pancakes"`,
			to:   `"<Chef's Special>"`,
			get:  func(r *Recipe) any { return r.Name },
			want: "<Chef's Special>",
		},
		{
			name: "angle brackets inside the name",
			from: `"Fluffy Egg Pancakes"`,
			to:   `"Mac <and> Cheese"`,
			get:  func(r *Recipe) any { return r.Name },
			want: "Mac <and> Cheese",
		},
		{
			name: "entities stay as written",
			from: `"Fluffy Egg Pancakes"`,
			to:   `"  Mac &amp; Cheese "`,
			get:  func(r *Recipe) any { return r.Name },
			want: "Mac &amp; Cheese",
		},
		{
			name: "bracketed ingredient note",
			from: `["2 eggs", "1 cup flour"]`,
			to:   `["salt <to taste>", "<optional>"]`,
			get:  func(r *Recipe) any { return r.Ingredients },
			want: []string{"salt <to taste>", "<optional>"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecipe(strings.Replace(validRecipeJSON, tt.from, tt.to, 1))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if diff := cmp.Diff(tt.want, tt.get(got)); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRecipeMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		missing string
	}{
		{
			name:    "missing servings",
			raw:     strings.Replace(validRecipeJSON, `"servings": "4 servings",`, "", 1),
			missing: "servings",
		},
		{
			name:    "null name",
			raw:     strings.Replace(validRecipeJSON, `"Fluffy Egg Pancakes"`, "null", 1),
			missing: "recipeName",
		},
		{
			name:    "blank cook time",
			raw:     strings.Replace(validRecipeJSON, `"15 minutes"`, `"   "`, 1),
			missing: "cookTime",
		},
		{
			name:    "empty instructions",
			raw:     strings.Replace(validRecipeJSON, `["Whisk the eggs.", "Fold in the flour.", "Cook on a hot griddle."]`, "[]", 1),
			missing: "instructions",
		},
		{
			name:    "only blank ingredients",
			raw:     strings.Replace(validRecipeJSON, `["2 eggs", "1 cup flour"]`, `["", null]`, 1),
			missing: "ingredients",
		},
		{
			name:    "json null",
			raw:     "null",
			missing: "recipeName, description, prepTime, cookTime, servings, ingredients, instructions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecipe(tt.raw)
			if !errors.Is(err, ErrMalformedRecipe) {
				t.Fatalf("expected ErrMalformedRecipe, got %v", err)
			}
			if !strings.Contains(err.Error(), "missing "+tt.missing) {
				t.Fatalf("expected error to name %q, got %v", tt.missing, err)
			}
		})
	}
}

func TestParseRecipeRejectsWrongShapes(t *testing.T) {
	for _, raw := range []string{"", "not json", `["a list"]`, `{"recipeName": 7}`, `{"ingredients": "eggs"}`} {
		if _, err := ParseRecipe(raw); !errors.Is(err, ErrMalformedRecipe) {
			t.Errorf("ParseRecipe(%q): expected ErrMalformedRecipe, got %v", raw, err)
		}
	}
}
