// Package model holds the live Spark task record an editing session works on.
//
// A Model is written by the renderer (user edits, addressed by field name)
// and by the hooks a form builder installs. Every write is serialised by the
// Model's lock: write hooks run inside the same critical section as the write
// they react to, so a reset triggered by a selector write is never observable
// half-applied. Watchers run after the lock is released and may read the
// Model freely.
package model

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/matthewbaird/taskform/internal/types"
)

// ErrAlreadyBound is returned by Bind when a builder already owns the Model.
var ErrAlreadyBound = errors.New("model: already bound to a form builder")

// WriteHook mutates the record in the same critical section as the write
// that triggered it. It must not call back into the Model.
type WriteHook func(task *types.SparkTask)

// Change describes a committed write.
type Change struct {
	Field   string
	Value   any
	Version uint64
}

// Watcher observes committed writes.
type Watcher func(c Change)

// Model is the mutable record plus its change hooks.
type Model struct {
	mu       sync.Mutex
	task     types.SparkTask
	version  uint64
	hooks    map[string][]WriteHook
	watchers map[string][]Watcher
	any      []Watcher

	bound atomic.Bool
}

// New creates a Model holding a copy of task.
func New(task types.SparkTask) *Model {
	return &Model{
		task:     task.Clone(),
		hooks:    make(map[string][]WriteHook),
		watchers: make(map[string][]Watcher),
	}
}

// Bind claims the Model for a single builder.
func (m *Model) Bind() error {
	if !m.bound.CompareAndSwap(false, true) {
		return ErrAlreadyBound
	}
	return nil
}

// Release gives up a claim made by Bind.
func (m *Model) Release() {
	m.bound.Store(false)
}

// Bound reports whether a builder holds the Model.
func (m *Model) Bound() bool { return m.bound.Load() }

// OnWrite registers a hook run inside every write to field.
func (m *Model) OnWrite(field string, h WriteHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[field] = append(m.hooks[field], h)
}

// Watch registers fn for committed writes to field. An empty field watches
// every write.
func (m *Model) Watch(field string, fn Watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if field == "" {
		m.any = append(m.any, fn)
		return
	}
	m.watchers[field] = append(m.watchers[field], fn)
}

// Set writes value into the named field, runs the field's write hooks and
// then notifies watchers.
func (m *Model) Set(field string, value any) error {
	acc, ok := accessors[field]
	if !ok {
		return &FieldError{Field: field, Reason: "unknown field"}
	}

	m.mu.Lock()
	if err := acc.set(&m.task, value); err != nil {
		m.mu.Unlock()
		return &FieldError{Field: field, Reason: err.Error()}
	}
	for _, h := range m.hooks[field] {
		h(&m.task)
	}
	m.version++
	c := Change{Field: field, Value: acc.get(&m.task), Version: m.version}
	watchers := append(append([]Watcher(nil), m.watchers[field]...), m.any...)
	m.mu.Unlock()

	for _, w := range watchers {
		w(c)
	}
	return nil
}

// Get returns the current value of the named field.
func (m *Model) Get(field string) (any, error) {
	acc, ok := accessors[field]
	if !ok {
		return nil, &FieldError{Field: field, Reason: "unknown field"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return acc.get(&m.task), nil
}

// Snapshot returns a deep copy of the record.
func (m *Model) Snapshot() types.SparkTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.task.Clone()
}

// Version returns the number of committed writes.
func (m *Model) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// ProgramType returns the dependent-type selector.
func (m *Model) ProgramType() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.task.ProgramType
}

// LocalParams returns a copy of the local parameter list.
func (m *Model) LocalParams() []types.LocalParam {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.LocalParam(nil), m.task.LocalParams...)
}

// Fields lists every writable field name in declaration order.
func Fields() []string {
	return append([]string(nil), fieldOrder...)
}
