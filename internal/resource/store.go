// Package resource provides the resource query service consumed by the
// Spark form, the option-tree normalizer, and the cached option loader that
// feeds the jar and resource pickers.
package resource

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/matthewbaird/taskform/internal/types"
)

// Store is the resource query service. Query returns the raw resource tree
// of the given kind visible to a program type: every directory, plus the
// files whose suffix matches the program type.
type Store interface {
	Query(ctx context.Context, kind, programType string) ([]types.Resource, error)
}

// Suffix returns the file suffix runnable by a program type.
func Suffix(programType string) string {
	if programType == types.ProgramPython {
		return ".py"
	}
	return ".jar"
}

// MemoryStore implements Store using an in-memory slice.
// Intended for demos and testing — no database required.
type MemoryStore struct {
	mu        sync.RWMutex
	resources []types.Resource
}

// NewMemoryStore creates a MemoryStore holding the given flat resources.
// Children of the arguments are ignored; hierarchy comes from PID.
func NewMemoryStore(resources ...types.Resource) *MemoryStore {
	s := &MemoryStore{}
	s.Add(resources...)
	return s
}

// Add appends flat resources.
func (s *MemoryStore) Add(resources ...types.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range resources {
		r.Children = nil
		s.resources = append(s.resources, r)
	}
}

func (s *MemoryStore) Query(_ context.Context, kind, programType string) ([]types.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suffix := Suffix(programType)
	var matched []types.Resource
	for _, r := range s.resources {
		if r.Type != kind {
			continue
		}
		if !r.Directory && !strings.HasSuffix(r.FullName, suffix) {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].FullName < matched[j].FullName
	})
	return buildTree(matched), nil
}

// buildTree nests flat rows under their parents. Rows whose parent is not in
// the set are roots.
func buildTree(flat []types.Resource) []types.Resource {
	present := make(map[int64]bool, len(flat))
	byParent := make(map[int64][]types.Resource)
	for _, r := range flat {
		present[r.ID] = true
	}
	var roots []types.Resource
	for _, r := range flat {
		if r.PID != 0 && present[r.PID] {
			byParent[r.PID] = append(byParent[r.PID], r)
			continue
		}
		roots = append(roots, r)
	}

	var attach func(nodes []types.Resource) []types.Resource
	attach = func(nodes []types.Resource) []types.Resource {
		out := make([]types.Resource, len(nodes))
		for i, n := range nodes {
			if kids, ok := byParent[n.ID]; ok {
				n.Children = attach(kids)
			}
			out[i] = n
		}
		return out
	}
	return attach(roots)
}
