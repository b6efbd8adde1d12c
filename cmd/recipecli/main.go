package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"recipegen/internal/ai"
	"recipegen/internal/config"
	"recipegen/internal/generation"
	"recipegen/internal/logging"
	"recipegen/internal/recipes"
)

// ingredientList collects repeated -i flags; each may also be comma separated.
type ingredientList []string

func (l *ingredientList) String() string { return strings.Join(*l, ", ") }

func (l *ingredientList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		*l = append(*l, part)
	}
	return nil
}

type options struct {
	ingredients ingredientList
	cuisine     string
	diet        string
	asJSON      bool
}

func main() {
	var opts options
	flag.Var(&opts.ingredients, "ingredient", "Ingredient to cook with (repeatable, or comma separated)")
	flag.Var(&opts.ingredients, "i", "Ingredient to cook with (short form)")
	flag.StringVar(&opts.cuisine, "cuisine", "Any", "Cuisine preference")
	flag.StringVar(&opts.diet, "diet", "None", "Dietary restriction")
	flag.BoolVar(&opts.asJSON, "json", false, "Print the final state as JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %s", err)
	}
	logging.New(cfg.Log.Level)

	ctx := context.Background()
	client, err := ai.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create model client: %s", err)
	}

	if err := run(ctx, os.Stdout, generation.New(client, generation.Config{Timeout: cfg.Generation.Timeout, SessionID: "cli"}), opts); err != nil {
		log.Fatalf("%s", err)
	}
}

// run drives one generation sequence and prints the outcome.
func run(ctx context.Context, w io.Writer, o *generation.Orchestrator, opts options) error {
	catalogue, err := recipes.LoadOptions()
	if err != nil {
		return err
	}
	if err := catalogue.Validate(opts.cuisine, opts.diet); err != nil {
		return err
	}
	for _, ingredient := range opts.ingredients {
		if _, err := o.AddIngredient(ingredient); err != nil {
			return err
		}
	}
	if err := o.SetCuisine(opts.cuisine); err != nil {
		return err
	}
	if err := o.SetDiet(opts.diet); err != nil {
		return err
	}

	updates, unsubscribe := o.Subscribe()
	defer unsubscribe()
	if err := o.Generate(ctx); err != nil {
		return err
	}

	var final generation.Snapshot
	for snap := range updates {
		if snap.Loading() {
			fmt.Fprintln(os.Stderr, snap.LoadingMessage())
			continue
		}
		if snap.Phase == generation.PhaseSuccess || snap.Phase == generation.PhaseFailed {
			final = snap
			break
		}
	}
	o.Wait()

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(final)
	}
	if final.Phase == generation.PhaseFailed {
		return errors.New(final.Error)
	}
	printRecipe(w, final)
	return nil
}

func printRecipe(w io.Writer, snap generation.Snapshot) {
	r := snap.Recipe
	fmt.Fprintf(w, "%s\n\n%s\n\n", r.Name, r.Description)
	fmt.Fprintf(w, "Prep: %s | Cook: %s | %s\n\n", r.PrepTime, r.CookTime, r.Servings)
	fmt.Fprintln(w, "Ingredients:")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(w, "  - %s\n", ing)
	}
	fmt.Fprintln(w, "\nInstructions:")
	for i, step := range r.Instructions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
	fmt.Fprintf(w, "\nImage: %s\n", describeImage(snap.ImageURL))
}

// describeImage keeps base64 payloads off the terminal.
func describeImage(u string) string {
	if mime, data, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ";base64,"); ok && strings.HasPrefix(u, "data:") {
		return fmt.Sprintf("%s, %d base64 chars", mime, len(data))
	}
	return u
}
