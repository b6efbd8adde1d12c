package generation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"recipegen/internal/ai"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNoIngredients = errors.New("Please add at least one ingredient.")
	ErrBusy          = errors.New("A recipe is already being generated.")
	ErrLocked        = errors.New("Start over to make another recipe.")
)

const DefaultTimeout = 2 * time.Minute

// ModelClient is the part of *ai.Client the orchestrator drives.
type ModelClient interface {
	RequestRecipe(ctx context.Context, constraints ai.Constraints) (*ai.Recipe, error)
	RequestImage(ctx context.Context, recipeName string) string
}

type Config struct {
	// Timeout bounds one whole sequence, both remote calls included.
	Timeout   time.Duration
	SessionID string
}

var tracer = otel.Tracer("recipegen/internal/generation")

// Orchestrator owns the generation state of one session. It is the only
// writer; readers get copies through Snapshot and Subscribe.
//
// Each sequence carries the Seq it was started with. A background write whose
// Seq no longer matches the current one belongs to a superseded sequence and
// is dropped.
type Orchestrator struct {
	client  ModelClient
	timeout time.Duration
	session string

	mu    sync.Mutex
	state Snapshot
	subs  map[chan Snapshot]struct{}

	wg sync.WaitGroup
}

func New(client ModelClient, cfg Config) *Orchestrator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{
		client:  client,
		timeout: timeout,
		session: cfg.SessionID,
		state:   Snapshot{Phase: PhaseIdle, Constraints: ai.DefaultConstraints()},
		subs:    make(map[chan Snapshot]struct{}),
	}
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Subscribe returns a channel that always holds the latest snapshot; older
// undelivered snapshots are replaced. The current state is delivered first.
// The returned func unsubscribes and closes the channel.
func (o *Orchestrator) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	o.mu.Lock()
	ch <- o.state.clone()
	o.subs[ch] = struct{}{}
	o.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, ch)
			close(ch)
			o.mu.Unlock()
		})
	}
}

func (o *Orchestrator) publishLocked() {
	for ch := range o.subs {
		snap := o.state.clone()
		select {
		case ch <- snap:
			continue
		default:
		}
		// drop the stale value the reader has not picked up yet
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Generate validates the constraints and starts a sequence in the background.
// The sequence is detached from ctx cancellation so a closed request does not
// abort it.
func (o *Orchestrator) Generate(ctx context.Context) error {
	o.mu.Lock()
	switch o.state.Phase {
	case PhaseLoading:
		o.mu.Unlock()
		return ErrBusy
	case PhaseSuccess:
		o.mu.Unlock()
		return ErrLocked
	}
	if len(o.state.Constraints.Ingredients) == 0 {
		o.state.Error = ErrNoIngredients.Error()
		o.publishLocked()
		o.mu.Unlock()
		return ErrNoIngredients
	}

	seq := o.state.Seq + 1
	constraints := cloneConstraints(o.state.Constraints)
	o.state = Snapshot{Seq: seq, Phase: PhaseLoading, Stage: StageRecipe, Constraints: constraints}
	o.publishLocked()
	o.wg.Add(1)
	o.mu.Unlock()

	slog.InfoContext(ctx, "generation started", "session", o.session, "seq", seq,
		"ingredients", len(constraints.Ingredients), "cuisine", constraints.Cuisine, "diet", constraints.Diet)
	go o.run(context.WithoutCancel(ctx), seq, constraints)
	return nil
}

func (o *Orchestrator) run(ctx context.Context, seq uint64, constraints ai.Constraints) {
	defer o.wg.Done()
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "generation.sequence", trace.WithAttributes(
		attribute.String("session", o.session),
		attribute.Int64("seq", int64(seq)),
	))
	defer span.End()

	start := time.Now()
	recipe, err := o.client.RequestRecipe(ctx, constraints)
	stageSeconds.WithLabelValues(string(StageRecipe)).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recipe generation failed")
		o.commit(ctx, seq, outcomeFailed, func(s *Snapshot) {
			s.Phase = PhaseFailed
			s.Stage = ""
			s.Error = failureMessage(err)
		})
		return
	}

	if !o.commit(ctx, seq, "", func(s *Snapshot) { s.Stage = StageImage }) {
		return
	}

	start = time.Now()
	imageURL := o.client.RequestImage(ctx, recipe.Name)
	stageSeconds.WithLabelValues(string(StageImage)).Observe(time.Since(start).Seconds())

	committed := o.commit(ctx, seq, outcomeSuccess, func(s *Snapshot) {
		s.Phase = PhaseSuccess
		s.Stage = ""
		s.Recipe = recipe
		s.ImageURL = imageURL
	})
	if committed && imageURL == ai.PlaceholderImageURL {
		placeholderImagesTotal.Inc()
	}
}

// commit applies fn when seq is still the live loading sequence. A non-empty
// outcome is counted once the write lands.
func (o *Orchestrator) commit(ctx context.Context, seq uint64, outcome string, fn func(*Snapshot)) bool {
	o.mu.Lock()
	if o.state.Seq != seq || o.state.Phase != PhaseLoading {
		current := o.state.Seq
		o.mu.Unlock()
		generationsTotal.WithLabelValues(outcomeSuperseded).Inc()
		slog.InfoContext(ctx, "discarding superseded response", "session", o.session, "seq", seq, "current_seq", current)
		return false
	}
	fn(&o.state)
	phase := o.state.Phase
	o.publishLocked()
	o.mu.Unlock()

	if outcome != "" {
		generationsTotal.WithLabelValues(outcome).Inc()
		slog.InfoContext(ctx, "generation finished", "session", o.session, "seq", seq, "phase", phase)
	}
	return true
}

func failureMessage(err error) string {
	if errors.Is(err, ai.ErrRecipeGeneration) {
		return err.Error()
	}
	return ai.ErrRecipeGeneration.Error()
}

// StartOver clears everything from a finished sequence. It is a no-op when
// already idle and refused while loading.
func (o *Orchestrator) StartOver() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state.Phase {
	case PhaseIdle:
		return nil
	case PhaseLoading:
		return ErrBusy
	}
	o.state = Snapshot{Seq: o.state.Seq + 1, Phase: PhaseIdle, Constraints: ai.DefaultConstraints()}
	o.publishLocked()
	return nil
}

// Abandon leaves the loading view and keeps the constraints. The in-flight
// calls run to completion and their results are discarded.
func (o *Orchestrator) Abandon() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Phase != PhaseLoading {
		return
	}
	o.state = Snapshot{Seq: o.state.Seq + 1, Phase: PhaseIdle, Constraints: o.state.Constraints}
	o.publishLocked()
}

// AddIngredient reports whether the ingredient was new.
func (o *Orchestrator) AddIngredient(ingredient string) (bool, error) {
	var added bool
	err := o.edit(func(c ai.Constraints) ai.Constraints {
		c, added = addIngredient(c, ingredient)
		return c
	})
	return added, err
}

func (o *Orchestrator) RemoveIngredient(ingredient string) (bool, error) {
	var removed bool
	err := o.edit(func(c ai.Constraints) ai.Constraints {
		c, removed = removeIngredient(c, ingredient)
		return c
	})
	return removed, err
}

// SetCuisine stores the cuisine; blank means AnyCuisine.
func (o *Orchestrator) SetCuisine(cuisine string) error {
	return o.edit(func(c ai.Constraints) ai.Constraints {
		c.Cuisine = orDefault(cuisine, ai.AnyCuisine)
		return c
	})
}

// SetDiet stores the diet; blank means NoDiet.
func (o *Orchestrator) SetDiet(diet string) error {
	return o.edit(func(c ai.Constraints) ai.Constraints {
		c.Diet = orDefault(diet, ai.NoDiet)
		return c
	})
}

func (o *Orchestrator) edit(fn func(ai.Constraints) ai.Constraints) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state.Phase {
	case PhaseLoading:
		return ErrBusy
	case PhaseSuccess:
		return ErrLocked
	}
	o.state.Constraints = fn(o.state.Constraints)
	if o.state.Phase == PhaseIdle {
		o.state.Error = ""
	}
	o.publishLocked()
	return nil
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}

// Wait blocks until every started sequence has returned.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
