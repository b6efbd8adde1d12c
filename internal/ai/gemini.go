package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultGeminiRecipeModel = "gemini-2.5-flash"
	defaultGeminiImageModel  = "imagen-4.0-generate-001"
)

// geminiModels is the slice of *genai.Models used here.
type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Gemini serves recipes from a Gemini text model and photos from Imagen.
type Gemini struct {
	models      geminiModels
	recipeModel string
	imageModel  string
}

var _ RecipeBackend = (*Gemini)(nil)
var _ ImageBackend = (*Gemini)(nil)

func NewGemini(ctx context.Context, apiKey, recipeModel, imageModel string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGemini(client.Models, recipeModel, imageModel), nil
}

func newGemini(models geminiModels, recipeModel, imageModel string) *Gemini {
	if strings.TrimSpace(recipeModel) == "" {
		recipeModel = defaultGeminiRecipeModel
	}
	if strings.TrimSpace(imageModel) == "" {
		imageModel = defaultGeminiImageModel
	}
	return &Gemini{models: models, recipeModel: recipeModel, imageModel: imageModel}
}

func (g *Gemini) CompleteRecipe(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.recipeModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiRecipeSchema,
	})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("gemini returned no response")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty response content")
	}
	return text, nil
}

func (g *Gemini) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	resp, err := g.models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    "16:9",
	})
	if err != nil {
		return nil, fmt.Errorf("imagen request failed: %w", err)
	}
	if resp == nil {
		return nil, nil
	}
	for _, generated := range resp.GeneratedImages {
		if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		return &Image{Bytes: generated.Image.ImageBytes, MIMEType: generated.Image.MIMEType}, nil
	}
	return nil, nil
}
