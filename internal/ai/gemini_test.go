package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	contentResp *genai.GenerateContentResponse
	contentErr  error
	imagesResp  *genai.GenerateImagesResponse
	imagesErr   error

	model         string
	contents      []*genai.Content
	contentConfig *genai.GenerateContentConfig
	imagePrompt   string
	imagesConfig  *genai.GenerateImagesConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.contentConfig = config
	return f.contentResp, f.contentErr
}

func (f *fakeModels) GenerateImages(_ context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.model = model
	f.imagePrompt = prompt
	f.imagesConfig = config
	return f.imagesResp, f.imagesErr
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestGeminiCompleteRecipe(t *testing.T) {
	models := &fakeModels{contentResp: textResponse(validRecipeJSON)}
	g := newGemini(models, "", "")

	raw, err := g.CompleteRecipe(t.Context(), "make pancakes")
	require.NoError(t, err)
	assert.Equal(t, validRecipeJSON, raw)

	assert.Equal(t, defaultGeminiRecipeModel, models.model)
	require.Len(t, models.contents, 1)
	assert.Equal(t, "make pancakes", models.contents[0].Parts[0].Text)
	require.NotNil(t, models.contentConfig)
	assert.Equal(t, "application/json", models.contentConfig.ResponseMIMEType)
	assert.Same(t, geminiRecipeSchema, models.contentConfig.ResponseSchema)
}

func TestGeminiCompleteRecipeErrors(t *testing.T) {
	tests := []struct {
		name   string
		models *fakeModels
	}{
		{name: "request error", models: &fakeModels{contentErr: errors.New("503")}},
		{name: "nil response", models: &fakeModels{}},
		{name: "empty text", models: &fakeModels{contentResp: textResponse("  ")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newGemini(tt.models, "gemini-test", "").CompleteRecipe(t.Context(), "p")
			assert.Error(t, err)
		})
	}
}

func TestGeminiGenerateImage(t *testing.T) {
	models := &fakeModels{imagesResp: &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{
			{Image: &genai.Image{}},
			{Image: &genai.Image{ImageBytes: []byte("photo"), MIMEType: "image/jpeg"}},
		},
	}}
	g := newGemini(models, "", "imagen-test")

	img, err := g.GenerateImage(t.Context(), "a photo")
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, []byte("photo"), img.Bytes)
	assert.Equal(t, "imagen-test", models.model)
	assert.Equal(t, "a photo", models.imagePrompt)
	assert.Equal(t, int32(1), models.imagesConfig.NumberOfImages)
	assert.Equal(t, "16:9", models.imagesConfig.AspectRatio)
	assert.Equal(t, "image/jpeg", models.imagesConfig.OutputMIMEType)
}

func TestGeminiGenerateImageNothing(t *testing.T) {
	for name, resp := range map[string]*genai.GenerateImagesResponse{
		"nil response":  nil,
		"no images":     {},
		"filtered only": {GeneratedImages: []*genai.GeneratedImage{{RAIFilteredReason: "blocked"}}},
	} {
		t.Run(name, func(t *testing.T) {
			img, err := newGemini(&fakeModels{imagesResp: resp}, "", "").GenerateImage(t.Context(), "p")
			assert.NoError(t, err)
			assert.Nil(t, img)
		})
	}
}

func TestGeminiGenerateImageError(t *testing.T) {
	_, err := newGemini(&fakeModels{imagesErr: errors.New("quota")}, "", "").GenerateImage(t.Context(), "p")
	assert.Error(t, err)
}
