package handler

import (
	"net/http"

	"github.com/matthewbaird/taskform/internal/resource"
	"github.com/matthewbaird/taskform/internal/types"
	"github.com/matthewbaird/taskform/internal/worker"
)

// ResourceHandler exposes the resource center the option pickers read.
type ResourceHandler struct {
	store  resource.Store
	health *worker.ResourceHealthWorker
}

// NewResourceHandler creates a new ResourceHandler. health may be nil.
func NewResourceHandler(store resource.Store, health *worker.ResourceHealthWorker) *ResourceHandler {
	return &ResourceHandler{store: store, health: health}
}

// ListResources returns the resource tree for a kind and program type, both
// as stored and as normalized picker options.
// GET /api/resources?type=FILE&program_type=JAVA
func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")
	if kind == "" {
		kind = types.ResourceFile
	}
	programType := r.URL.Query().Get("program_type")
	if programType == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "program_type is required")
		return
	}

	tree, err := h.store.Query(r.Context(), kind, programType)
	if err != nil {
		writeError(w, http.StatusBadGateway, "QUERY_FAILED", err.Error())
		return
	}
	if tree == nil {
		tree = []types.Resource{}
	}

	resp := struct {
		Type        string             `json:"type"`
		ProgramType string             `json:"program_type"`
		Resources   []types.Resource   `json:"resources"`
		Options     []types.OptionNode `json:"options"`
	}{
		Type:        kind,
		ProgramType: programType,
		Resources:   tree,
		Options:     resource.Options(resource.Normalize(tree)),
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health reports how option fetches per program type have fared.
// GET /api/resources/health
func (h *ResourceHandler) Health(w http.ResponseWriter, r *http.Request) {
	programTypes := []worker.ProgramTypeHealth{}
	if h.health != nil {
		programTypes = h.health.Snapshot()
	}
	writeJSON(w, http.StatusOK, map[string]any{"program_types": programTypes})
}
