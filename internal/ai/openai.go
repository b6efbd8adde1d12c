package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultOpenRouterModel = "google/gemini-2.5-flash"

// OpenAI completes recipes against any OpenAI-compatible chat endpoint,
// OpenRouter by default.
type OpenAI struct {
	client openai.Client
	model  string
	schema map[string]any
}

var _ RecipeBackend = (*OpenAI)(nil)

func NewOpenAI(apiKey, endpoint, model string) *OpenAI {
	selectedModel := strings.TrimSpace(model)
	if selectedModel == "" {
		selectedModel = defaultOpenRouterModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0), // one attempt per click
	}
	if endpoint != "" {
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  selectedModel,
		schema: recipeSchemaMap(),
	}
}

func (o *OpenAI) CompleteRecipe(ctx context.Context, prompt string) (string, error) {
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "recipe",
					Strict: openai.Bool(true),
					Schema: o.schema,
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	slog.InfoContext(ctx, "API usage", "model", completion.Model,
		"prompt_tokens", completion.Usage.PromptTokens,
		"completion_tokens", completion.Usage.CompletionTokens)

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai returned empty response content")
	}
	return content, nil
}
