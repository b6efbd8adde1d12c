package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PlaceholderImageURL is shown whenever image generation degrades.
const PlaceholderImageURL = "https://picsum.photos/1280/720?random=1"

// ErrRecipeGeneration is the only error RequestRecipe returns. The remote
// detail is logged, never surfaced.
var ErrRecipeGeneration = errors.New("Failed to generate recipe. The model may be unable to create a recipe with the provided constraints.")

// RecipeBackend turns a recipe prompt into the raw structured JSON text.
type RecipeBackend interface {
	CompleteRecipe(ctx context.Context, prompt string) (string, error)
}

// ImageBackend generates a single image. A nil image with a nil error means
// the model produced nothing.
type ImageBackend interface {
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

type Image struct {
	Bytes    []byte
	MIMEType string
}

var tracer = otel.Tracer("recipegen/internal/ai")

type Client struct {
	recipes RecipeBackend
	images  ImageBackend
}

func NewClient(recipes RecipeBackend, images ImageBackend) *Client {
	return &Client{recipes: recipes, images: images}
}

var (
	ErrNoClient        = errors.New("model client not configured")
	ErrNoRecipeBackend = errors.New("no recipe backend configured")
	ErrNoImageBackend  = errors.New("no image backend configured")
)

// Ready reports whether both backends are wired. It makes no remote call.
func (c *Client) Ready(context.Context) error {
	switch {
	case c == nil:
		return ErrNoClient
	case c.recipes == nil:
		return ErrNoRecipeBackend
	case c.images == nil:
		return ErrNoImageBackend
	}
	return nil
}

// RequestRecipe asks the text model for a recipe matching the constraints.
func (c *Client) RequestRecipe(ctx context.Context, constraints Constraints) (*Recipe, error) {
	ctx, span := tracer.Start(ctx, "ai.RequestRecipe", trace.WithAttributes(
		attribute.Int("ingredients", len(constraints.Ingredients)),
		attribute.String("cuisine", constraints.Cuisine),
		attribute.String("diet", constraints.Diet),
	))
	defer span.End()

	raw, err := c.recipes.CompleteRecipe(ctx, RecipePrompt(constraints))
	if err != nil {
		return nil, recipeFailure(ctx, span, err)
	}
	recipe, err := ParseRecipe(raw)
	if err != nil {
		return nil, recipeFailure(ctx, span, err)
	}
	span.SetAttributes(attribute.String("recipe", recipe.Name))
	slog.InfoContext(ctx, "generated recipe", "recipe", recipe.Name)
	return recipe, nil
}

func recipeFailure(ctx context.Context, span trace.Span, err error) error {
	slog.ErrorContext(ctx, "error generating recipe", "error", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, "recipe generation failed")
	return ErrRecipeGeneration
}

// RequestImage always yields an image reference: a data URI of the generated
// photo, or PlaceholderImageURL when generation fails or produces nothing.
func (c *Client) RequestImage(ctx context.Context, recipeName string) string {
	ctx, span := tracer.Start(ctx, "ai.RequestImage", trace.WithAttributes(attribute.String("recipe", recipeName)))
	defer span.End()

	placeholder := func(reason string, err error) string {
		slog.WarnContext(ctx, "using placeholder image", "recipe", recipeName, "reason", reason, "error", err)
		span.SetAttributes(attribute.Bool("placeholder", true))
		if err != nil {
			span.RecordError(err)
		}
		return PlaceholderImageURL
	}

	if strings.TrimSpace(recipeName) == "" {
		return placeholder("empty recipe name", nil)
	}
	if c.images == nil {
		return placeholder("no image backend", nil)
	}

	img, err := c.images.GenerateImage(ctx, ImagePrompt(recipeName))
	if err != nil {
		return placeholder("image request failed", err)
	}
	if img == nil || len(img.Bytes) == 0 {
		return placeholder("no image was generated", nil)
	}

	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	span.SetAttributes(attribute.Bool("placeholder", false))
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Bytes)
}
