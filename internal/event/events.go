package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/taskform/internal/types"
)

// DomainEvent carries the canonical shape of every form event.
type DomainEvent struct {
	ID               string
	EventType        string
	OccurredAt       time.Time
	AffectedEntities []types.SourceRef
	Summary          string
	Category         string // "session", "field", "options"
	Weight           string // "major", "minor", "info"
	Payload          json.RawMessage
}

// Event types.
const (
	TypeSessionOpened      = "session_opened"
	TypeSessionClosed      = "session_closed"
	TypeFieldChanged       = "field_changed"
	TypeOptionsLoaded      = "options_loaded"
	TypeOptionsFetchFailed = "options_fetch_failed"
)

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func sessionRef(id string) types.SourceRef {
	return types.SourceRef{EntityType: "session", EntityID: id, Role: "subject"}
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ── Session events ───────────────────────────────────────────────────────────

// SessionOpenedPayload carries the record a session starts from.
type SessionOpenedPayload struct {
	SessionID string          `json:"session_id"`
	Task      types.SparkTask `json:"task"`
}

func NewSessionOpened(p SessionOpenedPayload) DomainEvent {
	return DomainEvent{
		ID:               newID(),
		EventType:        TypeSessionOpened,
		OccurredAt:       time.Now(),
		AffectedEntities: []types.SourceRef{sessionRef(p.SessionID)},
		Summary:          fmt.Sprintf("Session %s opened with program type %s", short(p.SessionID), p.Task.ProgramType),
		Category:         "session",
		Weight:           "minor",
		Payload:          mustJSON(p),
	}
}

// SessionClosedPayload records why a session ended.
type SessionClosedPayload struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"` // "removed", "expired"
	Writes    uint64 `json:"writes"`
}

func NewSessionClosed(p SessionClosedPayload) DomainEvent {
	return DomainEvent{
		ID:               newID(),
		EventType:        TypeSessionClosed,
		OccurredAt:       time.Now(),
		AffectedEntities: []types.SourceRef{sessionRef(p.SessionID)},
		Summary:          fmt.Sprintf("Session %s %s after %d writes", short(p.SessionID), p.Reason, p.Writes),
		Category:         "session",
		Weight:           "minor",
		Payload:          mustJSON(p),
	}
}

// ── Field events ─────────────────────────────────────────────────────────────

// FieldChangedPayload carries a committed write.
type FieldChangedPayload struct {
	SessionID string `json:"session_id"`
	Field     string `json:"field"`
	Value     any    `json:"value"`
	Version   uint64 `json:"version"`
}

func NewFieldChanged(p FieldChangedPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeFieldChanged,
		OccurredAt: time.Now(),
		AffectedEntities: []types.SourceRef{
			sessionRef(p.SessionID),
			{EntityType: "field", EntityID: p.Field, Role: "target"},
		},
		Summary:  fmt.Sprintf("%s set to %v (v%d)", p.Field, p.Value, p.Version),
		Category: "field",
		Weight:   "info",
		Payload:  mustJSON(p),
	}
}

// ── Option events ────────────────────────────────────────────────────────────

// OptionsLoadedPayload describes a successful option load.
type OptionsLoadedPayload struct {
	SessionID   string `json:"session_id"`
	ProgramType string `json:"program_type"`
	Roots       int    `json:"roots"`
	Cached      bool   `json:"cached"`
}

func NewOptionsLoaded(p OptionsLoadedPayload) DomainEvent {
	source := "fetched"
	if p.Cached {
		source = "served from cache"
	}
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeOptionsLoaded,
		OccurredAt: time.Now(),
		AffectedEntities: []types.SourceRef{
			sessionRef(p.SessionID),
			{EntityType: "program_type", EntityID: p.ProgramType, Role: "context"},
		},
		Summary:  fmt.Sprintf("%s options %s (%d roots)", p.ProgramType, source, p.Roots),
		Category: "options",
		Weight:   "info",
		Payload:  mustJSON(p),
	}
}

// OptionsFetchFailedPayload describes a failed option fetch. The cache and
// the published options were left as they were.
type OptionsFetchFailedPayload struct {
	SessionID   string `json:"session_id"`
	ProgramType string `json:"program_type"`
	Error       string `json:"error"`
}

func NewOptionsFetchFailed(p OptionsFetchFailedPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  TypeOptionsFetchFailed,
		OccurredAt: time.Now(),
		AffectedEntities: []types.SourceRef{
			sessionRef(p.SessionID),
			{EntityType: "program_type", EntityID: p.ProgramType, Role: "context"},
		},
		Summary:  fmt.Sprintf("%s options fetch failed: %s", p.ProgramType, p.Error),
		Category: "options",
		Weight:   "major",
		Payload:  mustJSON(p),
	}
}
