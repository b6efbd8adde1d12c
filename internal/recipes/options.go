package recipes

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"recipegen/internal/ai"

	"gopkg.in/yaml.v3"
)

//go:embed options.yaml
var optionsYAML []byte

var (
	ErrUnknownCuisine = errors.New("Please choose a cuisine from the list.")
	ErrUnknownDiet    = errors.New("Please choose a diet from the list.")
)

// Options are the values the preference selects accept.
type Options struct {
	Cuisines []string `yaml:"cuisines"`
	Diets    []string `yaml:"diets"`
}

func LoadOptions() (*Options, error) {
	return parseOptions(optionsYAML)
}

func parseOptions(data []byte) (*Options, error) {
	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("failed to parse options: %w", err)
	}
	if len(opts.Cuisines) == 0 || opts.Cuisines[0] != ai.AnyCuisine {
		return nil, fmt.Errorf("cuisine options must start with %q", ai.AnyCuisine)
	}
	if len(opts.Diets) == 0 || opts.Diets[0] != ai.NoDiet {
		return nil, fmt.Errorf("diet options must start with %q", ai.NoDiet)
	}
	return &opts, nil
}

// Validate checks a cuisine and diet pair. Blank values mean the default.
func (o *Options) Validate(cuisine, diet string) error {
	if cuisine != "" && !slices.Contains(o.Cuisines, cuisine) {
		return ErrUnknownCuisine
	}
	if diet != "" && !slices.Contains(o.Diets, diet) {
		return ErrUnknownDiet
	}
	return nil
}
