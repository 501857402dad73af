// Package handler implements the HTTP API of the form service.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/taskform/internal/activity"
	"github.com/matthewbaird/taskform/internal/resource"
	"github.com/matthewbaird/taskform/internal/session"
	"github.com/matthewbaird/taskform/internal/wire"
	"github.com/matthewbaird/taskform/internal/worker"
)

// Deps are the services the routes are served from.
type Deps struct {
	Sessions  *session.Manager
	Resources resource.Store
	Activity  activity.Store
	Health    *worker.ResourceHealthWorker // optional
}

// RegisterRoutes registers the form, resource and activity routes on r.
func RegisterRoutes(r chi.Router, d Deps) {
	sessions := d.Sessions
	fh := NewFormHandler(sessions)
	rh := NewResourceHandler(d.Resources, d.Health)
	ah := NewActivityHandler(d.Activity)
	ws := wire.NewHandler(sessions)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": sessions.Len()})
	})

	r.Get("/api/resources", rh.ListResources)
	r.Get("/api/resources/health", rh.Health)

	r.Route("/api/spark-forms", func(r chi.Router) {
		// WebSocket endpoint
		r.Get("/ws", ws.ServeHTTP)

		r.Post("/", fh.CreateForm)
		r.Get("/{id}", fh.GetForm)
		r.Patch("/{id}", fh.UpdateField)
		r.Delete("/{id}", fh.DeleteForm)
		r.Post("/{id}/validate", fh.ValidateField)
	})

	r.Route("/api/activity", func(r chi.Router) {
		r.Post("/search", ah.HandleSearchActivity)
		r.Get("/{entity_type}/{entity_id}", ah.HandleGetEntityActivity)
		r.Get("/{entity_type}/{entity_id}/summary", ah.HandleGetSummary)
	})
}
