// Package wire defines the WebSocket protocol for live form editing.
package wire

import (
	"encoding/json"

	"github.com/matthewbaird/taskform/internal/form"
	"github.com/matthewbaird/taskform/internal/types"
	"github.com/matthewbaird/taskform/internal/validate"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "update", "validate", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// UpdateData is the payload for "update" messages.
type UpdateData struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// ValidateData is the payload for "validate" messages. Index selects a local
// parameter when Field is "localParams.prop"; Value is then ignored and the
// live entry is validated.
type ValidateData struct {
	Field   string           `json:"field"`
	Trigger validate.Trigger `json:"trigger"`
	Value   any              `json:"value"`
	Index   *int             `json:"index,omitempty"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "schema", "validation", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// SessionData carries session information.
type SessionData struct {
	SessionID string `json:"session_id"`
}

// SchemaData carries the rendered descriptors and the record they describe.
type SchemaData struct {
	Version uint64               `json:"version"`
	Fields  []form.RenderedField `json:"fields"`
	Task    types.SparkTask      `json:"task"`
}

// ValidationData carries the outcome of one rule.
type ValidationData struct {
	Field string `json:"field"`
	Index *int   `json:"index,omitempty"`
	validate.Outcome
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
