package ai

import (
	"context"
	"fmt"
	"log/slog"

	"recipegen/internal/config"
)

// NewFromConfig wires the recipe backend selected by cfg.AI.Provider. Images
// always come from Imagen unless the provider is the mock.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.AI.Provider == config.ProviderMock {
		slog.InfoContext(ctx, "using mock model backends")
		return NewClient(Mock{}, Mock{}), nil
	}

	gemini, err := NewGemini(ctx, cfg.AI.APIKey, cfg.AI.RecipeModel, cfg.AI.ImageModel)
	if err != nil {
		return nil, err
	}

	var recipes RecipeBackend
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		recipes = gemini
	case config.ProviderOpenRouter:
		recipes = NewOpenAI(cfg.AI.OpenRouterAPIKey, cfg.AI.OpenRouterEndpoint, cfg.AI.RecipeModel)
	case config.ProviderAnthropic:
		recipes = NewAnthropic(cfg.AI.AnthropicAPIKey, cfg.AI.RecipeModel)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AI.Provider)
	}
	slog.InfoContext(ctx, "model backends ready", "provider", cfg.AI.Provider, "recipe_model", cfg.AI.RecipeModel, "image_model", cfg.AI.ImageModel)
	return NewClient(recipes, gemini), nil
}
