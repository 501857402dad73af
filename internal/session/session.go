// Package session manages the lifecycle of form editing sessions. A session
// owns one record, the option loader whose cache lives as long as the
// session, and the form builder bound to both.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/taskform/internal/catalog"
	"github.com/matthewbaird/taskform/internal/event"
	"github.com/matthewbaird/taskform/internal/form"
	"github.com/matthewbaird/taskform/internal/i18n"
	"github.com/matthewbaird/taskform/internal/model"
	"github.com/matthewbaird/taskform/internal/resource"
	"github.com/matthewbaird/taskform/internal/types"
	"github.com/matthewbaird/taskform/internal/validate"
)

// ErrNotFound is returned for unknown, expired or idle sessions.
var ErrNotFound = errors.New("session: not found")

// Session holds the per-editor state.
type Session struct {
	ID        string
	Language  string
	CreatedAt time.Time

	Model   *model.Model
	Loader  *resource.Loader
	Builder *form.Builder

	cancel   context.CancelFunc
	recorder event.Recorder

	mu           sync.Mutex
	lastActiveAt time.Time
	closed       bool
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActiveAt = time.Now()
	s.mu.Unlock()
}

// LastActiveAt returns the last activity timestamp.
func (s *Session) LastActiveAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActiveAt
}

// IsExpired returns true if the session has exceeded the given max age.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	return maxAge > 0 && time.Since(s.CreatedAt) > maxAge
}

// IsIdle returns true if the session has been idle longer than the timeout.
func (s *Session) IsIdle(timeout time.Duration) bool {
	return timeout > 0 && time.Since(s.LastActiveAt()) > timeout
}

// Set writes one field of the record.
func (s *Session) Set(field string, value any) error {
	s.Touch()
	return s.Model.Set(field, value)
}

// Schema renders the descriptors together with the record and the version
// they were rendered at.
func (s *Session) Schema() (uint64, []form.RenderedField, types.SparkTask) {
	version := s.Model.Version()
	return version, s.Builder.Render(), s.Model.Snapshot()
}

// Validate runs the rule of field against value. With index set, field must
// name the local parameter prop and the live entry at index is validated
// instead. An empty trigger counts as blur.
func (s *Session) Validate(field string, trigger validate.Trigger, value any, index *int) (validate.Outcome, error) {
	s.Touch()
	if trigger == "" {
		trigger = validate.TriggerBlur
	}
	if index != nil {
		if field != ParamPropField {
			return validate.Outcome{}, fmt.Errorf("index is only valid for %s", ParamPropField)
		}
		return s.Builder.ValidateParam(*index, trigger)
	}
	return s.Builder.Validate(field, trigger, value)
}

// ParamPropField addresses the prop of a local parameter.
const ParamPropField = model.FieldLocalParams + "." + form.ParamProp

// Close stops background fetches and unbinds the builder. It is safe to call
// more than once.
func (s *Session) Close(reason string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.Loader.Wait()
	s.Builder.Close()
	s.record(event.NewSessionClosed(event.SessionClosedPayload{
		SessionID: s.ID,
		Reason:    reason,
		Writes:    s.Model.Version(),
	}))
}

func (s *Session) record(evt event.DomainEvent) {
	if err := s.recorder.Record(context.Background(), evt); err != nil {
		log.Printf("session: recording %s for %s: %v", evt.EventType, s.ID, err)
	}
}

func (s *Session) handleResult(r resource.Result) {
	resource.LogFailures(r)
	if r.Err != nil {
		s.record(event.NewOptionsFetchFailed(event.OptionsFetchFailedPayload{
			SessionID:   s.ID,
			ProgramType: r.Key,
			Error:       r.Err.Error(),
		}))
		return
	}
	s.record(event.NewOptionsLoaded(event.OptionsLoadedPayload{
		SessionID:   s.ID,
		ProgramType: r.Key,
		Roots:       len(r.Options),
		Cached:      r.Cached,
	}))
}

// Config configures a Manager.
type Config struct {
	Store       resource.Store
	Catalog     *catalog.Catalog // nil: the embedded catalog
	Messages    *i18n.Catalog    // nil: i18n.Default()
	Recorder    event.Recorder   // nil: event.Discard
	MaxAge      time.Duration
	IdleTimeout time.Duration
	// DefaultLang is used when Create is given no language.
	DefaultLang string

	// StaleGuard stops a late option fetch from replacing the options of
	// the program type selected since.
	StaleGuard bool
}

// Manager handles session creation, lookup, and cleanup.
type Manager struct {
	cfg Config

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, errors.New("session: resource store is required")
	}
	if cfg.Catalog == nil {
		c, err := catalog.Load()
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		cfg.Catalog = c
	}
	if cfg.Messages == nil {
		cfg.Messages = i18n.Default()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = event.Discard
	}
	return &Manager{cfg: cfg, sessions: make(map[string]*Session)}, nil
}

// Catalog returns the catalog sessions are built from.
func (m *Manager) Catalog() *catalog.Catalog { return m.cfg.Catalog }

// Create opens a session on task, or on the catalog defaults when task is
// nil. lang is an Accept-Language value selecting the label language.
func (m *Manager) Create(task *types.SparkTask, lang string) (*Session, error) {
	if lang == "" {
		lang = m.cfg.DefaultLang
	}
	initial := m.cfg.Catalog.NewTask()
	if task != nil {
		initial = task.Clone()
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	s := &Session{
		ID:           uuid.New().String(),
		Language:     lang,
		CreatedAt:    now,
		Model:        model.New(initial),
		cancel:       cancel,
		recorder:     m.cfg.Recorder,
		lastActiveAt: now,
	}

	opts := []resource.Option{resource.WithResultHandler(s.handleResult)}
	if m.cfg.StaleGuard {
		opts = append(opts, resource.WithCurrentKey(s.Model.ProgramType))
	}
	s.Loader = resource.NewLoader(m.cfg.Store, opts...)

	s.record(event.NewSessionOpened(event.SessionOpenedPayload{SessionID: s.ID, Task: initial}))
	s.Model.Watch("", func(c model.Change) {
		s.record(event.NewFieldChanged(event.FieldChangedPayload{
			SessionID: s.ID,
			Field:     c.Field,
			Value:     c.Value,
			Version:   c.Version,
		}))
	})

	b, err := form.New(ctx, s.Model, s.Loader,
		form.WithCatalog(m.cfg.Catalog),
		form.WithTranslator(m.cfg.Messages.Match(lang)),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("building form: %w", err)
	}
	s.Builder = b

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get retrieves a live session by ID and marks it active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if s.IsExpired(m.cfg.MaxAge) || s.IsIdle(m.cfg.IdleTimeout) {
		m.remove(id, "expired")
		return nil, ErrNotFound
	}
	s.Touch()
	return s, nil
}

// Remove closes and deletes a session.
func (m *Manager) Remove(id string) {
	m.remove(id, "removed")
}

func (m *Manager) remove(id, reason string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close(reason)
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Cleanup removes all expired and idle sessions and returns how many it
// removed.
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.IsExpired(m.cfg.MaxAge) || s.IsIdle(m.cfg.IdleTimeout) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close("expired")
	}
	return len(stale)
}

// Run calls Cleanup every interval until ctx is done, then closes every
// remaining session.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := m.Cleanup(); n > 0 {
				log.Printf("session: removed %d expired sessions", n)
			}
		case <-ctx.Done():
			m.closeAll()
			return
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range all {
		s.Close("shutdown")
	}
}
