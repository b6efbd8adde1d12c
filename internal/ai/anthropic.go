package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

// Anthropic has no schema-constrained output, so the schema travels in the
// system prompt and ParseRecipe enforces it.
type Anthropic struct {
	client *anthropic.Client
	model  string
	system string
}

var _ RecipeBackend = (*Anthropic)(nil)

func NewAnthropic(apiKey, model string, opts ...anthropic.ClientOption) *Anthropic {
	selectedModel := strings.TrimSpace(model)
	if selectedModel == "" {
		selectedModel = defaultAnthropicModel
	}
	return &Anthropic{
		client: anthropic.NewClient(apiKey, opts...),
		model:  selectedModel,
		system: "Respond with a single JSON object and nothing else. It must match this JSON schema, with every property present:\n" + recipeSchemaJSON(),
	}
}

func (a *Anthropic) CompleteRecipe(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		System:    a.system,
		Messages:  []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
		MaxTokens: 2048,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var b strings.Builder
	for _, content := range resp.Content {
		if content.Type == anthropic.MessagesContentTypeText {
			b.WriteString(content.GetText())
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("anthropic returned empty text content")
	}
	return text, nil
}
