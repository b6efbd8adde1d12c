package ai

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"google.golang.org/genai"
)

// geminiRecipeSchema is the response schema sent with every Gemini request.
var geminiRecipeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"recipeName":  {Type: genai.TypeString, Description: "The name of the recipe."},
		"description": {Type: genai.TypeString, Description: "A short, appetizing description of the dish."},
		"prepTime":    {Type: genai.TypeString, Description: "Preparation time, e.g., '15 minutes'."},
		"cookTime":    {Type: genai.TypeString, Description: "Cooking time, e.g., '30 minutes'."},
		"servings":    {Type: genai.TypeString, Description: "Number of servings, e.g., '4 servings'."},
		"ingredients": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of ingredients with quantities.",
		},
		"instructions": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Step-by-step cooking instructions.",
		},
	},
	Required:         recipeFields,
	PropertyOrdering: recipeFields,
}

// reflectRecipeSchema builds a JSON schema for Recipe for OpenAI-compatible
// structured output.
func reflectRecipeSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	return r.Reflect(&Recipe{})
}

func recipeSchemaMap() map[string]any {
	schemaJSON := lo.Must(json.Marshal(reflectRecipeSchema()))
	var m map[string]any
	lo.Must0(json.Unmarshal(schemaJSON, &m))
	return m
}

func recipeSchemaJSON() string {
	return string(lo.Must(json.MarshalIndent(reflectRecipeSchema(), "", "  ")))
}
