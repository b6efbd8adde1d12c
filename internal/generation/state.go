package generation

import (
	"slices"

	"recipegen/internal/ai"
)

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailed  Phase = "failed"
)

// Stage is only set while loading.
type Stage string

const (
	StageRecipe Stage = "recipe"
	StageImage  Stage = "image"
)

// Snapshot is a copy of one session's generation state. Recipe and ImageURL
// are only set in PhaseSuccess. Error holds the failure message in
// PhaseFailed or a validation message in PhaseIdle.
type Snapshot struct {
	Seq         uint64         `json:"seq"`
	Phase       Phase          `json:"phase"`
	Stage       Stage          `json:"stage,omitempty"`
	Constraints ai.Constraints `json:"constraints"`
	Recipe      *ai.Recipe     `json:"recipe,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	Error       string         `json:"error,omitempty"`
}

func (s Snapshot) Loading() bool {
	return s.Phase == PhaseLoading
}

// Editable reports whether the constraints form is shown and accepts edits.
func (s Snapshot) Editable() bool {
	return s.Phase == PhaseIdle || s.Phase == PhaseFailed
}

// LoadingMessage is the progress text shown for the current stage.
func (s Snapshot) LoadingMessage() string {
	switch s.Stage {
	case StageRecipe:
		return "Creating your unique recipe..."
	case StageImage:
		return "Generating a delicious-looking image..."
	default:
		return ""
	}
}

func (s Snapshot) clone() Snapshot {
	s.Constraints = cloneConstraints(s.Constraints)
	if s.Recipe != nil {
		r := *s.Recipe
		r.Ingredients = slices.Clone(r.Ingredients)
		r.Instructions = slices.Clone(r.Instructions)
		s.Recipe = &r
	}
	return s
}
