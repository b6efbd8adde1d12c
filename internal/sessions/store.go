package sessions

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"recipegen/internal/generation"
)

const DefaultTTL = 2 * time.Hour

// Factory builds the orchestrator for a new session id.
type Factory func(id string) *generation.Orchestrator

type entry struct {
	orchestrator *generation.Orchestrator
	lastSeen     time.Time
}

// Store maps session ids to their orchestrators. Sessions idle for longer
// than the TTL are evicted by Sweep unless a generation is still running.
type Store struct {
	newOrchestrator Factory
	ttl             time.Duration
	now             func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewStore(factory Factory, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		newOrchestrator: factory,
		ttl:             ttl,
		now:             time.Now,
		sessions:        make(map[string]*entry),
	}
}

// Lookup returns the orchestrator for id and marks the session as seen.
func (s *Store) Lookup(id string) (*generation.Orchestrator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.orchestrator, true
}

// Create registers a fresh session under id, replacing any previous one.
func (s *Store) Create(id string) *generation.Orchestrator {
	o := s.newOrchestrator(id)
	s.mu.Lock()
	s.sessions[id] = &entry{orchestrator: o, lastSeen: s.now()}
	s.mu.Unlock()
	return o
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, e := range s.sessions {
		if e.lastSeen.After(cutoff) || e.orchestrator.Snapshot().Loading() {
			continue
		}
		delete(s.sessions, id)
		evicted++
	}
	return evicted
}

// Run sweeps on an interval until ctx is done.
func (s *Store) Run(ctx context.Context) error {
	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.InfoContext(ctx, "evicted idle sessions", "count", n, "remaining", s.Len())
			}
		}
	}
}

// Wait blocks until every session's background generation has finished.
func (s *Store) Wait() {
	s.mu.Lock()
	orchestrators := make([]*generation.Orchestrator, 0, len(s.sessions))
	for _, e := range s.sessions {
		orchestrators = append(orchestrators, e.orchestrator)
	}
	s.mu.Unlock()
	for _, o := range orchestrators {
		o.Wait()
	}
}
