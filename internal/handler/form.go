package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/matthewbaird/taskform/internal/form"
	"github.com/matthewbaird/taskform/internal/session"
	"github.com/matthewbaird/taskform/internal/types"
	"github.com/matthewbaird/taskform/internal/validate"
)

// FormHandler implements the Spark form session endpoints.
type FormHandler struct {
	sessions *session.Manager
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(sessions *session.Manager) *FormHandler {
	return &FormHandler{sessions: sessions}
}

type formResponse struct {
	ID      string               `json:"id"`
	Version uint64               `json:"version"`
	Fields  []form.RenderedField `json:"fields"`
	Task    types.SparkTask      `json:"task"`
}

type createFormRequest struct {
	Task *types.SparkTask `json:"task,omitempty"`
}

type updateFieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type validateFieldRequest struct {
	Field   string           `json:"field"`
	Trigger validate.Trigger `json:"trigger,omitempty"`
	Value   any              `json:"value"`
	Index   *int             `json:"index,omitempty"`
}

type validateFieldResponse struct {
	Field string `json:"field"`
	Index *int   `json:"index,omitempty"`
	Valid bool   `json:"valid"`
	validate.Outcome
}

// CreateForm opens a session, from the posted task or from the defaults.
// POST /api/spark-forms
func (h *FormHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}

	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = r.Header.Get("Accept-Language")
	}
	sess, err := h.sessions.Create(req.Task, lang)
	if err != nil {
		sessionErrorToHTTP(w, err)
		return
	}
	if r.URL.Query().Get("wait_options") != "" {
		sess.Loader.Wait()
	}
	writeJSON(w, http.StatusCreated, renderForm(sess))
}

// GetForm returns the rendered fields and the record of a session. With
// wait_options set it first waits for pending option loads.
// GET /api/spark-forms/{id}
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("wait_options") != "" {
		sess.Loader.Wait()
	}
	writeJSON(w, http.StatusOK, renderForm(sess))
}

// UpdateField writes one field and returns the re-rendered form.
// PATCH /api/spark-forms/{id}
func (h *FormHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req updateFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	if req.Field == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "field is required")
		return
	}
	if err := sess.Set(req.Field, req.Value); err != nil {
		sessionErrorToHTTP(w, err)
		return
	}
	if r.URL.Query().Get("wait_options") != "" {
		sess.Loader.Wait()
	}
	writeJSON(w, http.StatusOK, renderForm(sess))
}

// ValidateField runs the rule bound to one field.
// POST /api/spark-forms/{id}/validate
func (h *FormHandler) ValidateField(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req validateFieldRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+err.Error())
		return
	}
	out, err := sess.Validate(req.Field, req.Trigger, req.Value, req.Index)
	if err != nil {
		// Unknown field names and out-of-range parameter indexes.
		writeError(w, http.StatusBadRequest, "INVALID_FIELD", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, validateFieldResponse{
		Field:   req.Field,
		Index:   req.Index,
		Valid:   !out.Failed(),
		Outcome: out,
	})
}

// DeleteForm closes a session.
// DELETE /api/spark-forms/{id}
func (h *FormHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.sessions.Get(id.String()); err != nil {
		sessionErrorToHTTP(w, err)
		return
	}
	h.sessions.Remove(id.String())
	w.WriteHeader(http.StatusNoContent)
}

func (h *FormHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, ok := parseUUID(w, r, "id")
	if !ok {
		return nil, false
	}
	sess, err := h.sessions.Get(id.String())
	if err != nil {
		sessionErrorToHTTP(w, err)
		return nil, false
	}
	return sess, true
}

func renderForm(sess *session.Session) formResponse {
	version, fields, task := sess.Schema()
	return formResponse{ID: sess.ID, Version: version, Fields: fields, Task: task}
}
