// Package worker contains event consumers that maintain derived data.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/matthewbaird/taskform/internal/event"
)

// ProgramTypeHealth is the observed availability of the resource store for
// one program type, across all sessions.
type ProgramTypeHealth struct {
	ProgramType         string     `json:"program_type"`
	Fetches             int        `json:"fetches"`
	CacheHits           int        `json:"cache_hits"`
	Failures            int        `json:"failures"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastRoots           int        `json:"last_roots"`
	LastError           string     `json:"last_error,omitempty"`
	LastSuccessAt       *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
}

// ResourceHealthWorker consumes option events from the event bus and keeps
// a ProgramTypeHealth per program type.
type ResourceHealthWorker struct {
	mu     sync.RWMutex
	byType map[string]*ProgramTypeHealth
}

// NewResourceHealthWorker creates a new resource health worker.
func NewResourceHealthWorker() *ResourceHealthWorker {
	return &ResourceHealthWorker{byType: make(map[string]*ProgramTypeHealth)}
}

// HandleEvent updates the health of the program type an option event names.
// Other events are ignored.
func (w *ResourceHealthWorker) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	switch evt.EventType {
	case event.TypeOptionsLoaded:
		var p event.OptionsLoadedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("resource_health: decoding %s: %w", evt.EventType, err)
		}
		w.update(p.ProgramType, func(h *ProgramTypeHealth) {
			if p.Cached {
				h.CacheHits++
				return
			}
			at := evt.OccurredAt
			h.Fetches++
			h.ConsecutiveFailures = 0
			h.LastRoots = p.Roots
			h.LastSuccessAt = &at
		})
	case event.TypeOptionsFetchFailed:
		var p event.OptionsFetchFailedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("resource_health: decoding %s: %w", evt.EventType, err)
		}
		at := evt.OccurredAt
		w.update(p.ProgramType, func(h *ProgramTypeHealth) {
			h.Failures++
			h.ConsecutiveFailures++
			h.LastError = p.Error
			h.LastFailureAt = &at
		})
		log.Printf("resource_health: %s fetch failed (%d in a row)", p.ProgramType, w.consecutive(p.ProgramType))
	}
	return nil
}

func (w *ResourceHealthWorker) update(programType string, fn func(*ProgramTypeHealth)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	h, ok := w.byType[programType]
	if !ok {
		h = &ProgramTypeHealth{ProgramType: programType}
		w.byType[programType] = h
	}
	fn(h)
}

func (w *ResourceHealthWorker) consecutive(programType string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if h, ok := w.byType[programType]; ok {
		return h.ConsecutiveFailures
	}
	return 0
}

// Snapshot returns a copy of every program type's health, ordered by
// program type.
func (w *ResourceHealthWorker) Snapshot() []ProgramTypeHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]ProgramTypeHealth, 0, len(w.byType))
	for _, h := range w.byType {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProgramType < out[j].ProgramType })
	return out
}
