package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cfreality/internal/session"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(sess *session.Session, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(sess)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/state", h.GetState)
	r.Post("/reset", h.Reset)

	// Stages.
	r.Get("/nodes", h.ListNodes)
	r.Get("/nodes/{id}", h.GetNode)
	r.Post("/nodes/{id}/collapse", h.CollapseNode)

	// Parameters.
	r.Patch("/parameters", h.PatchParameters)
	r.Put("/parameters/{name}", h.SetParameter)

	r.Get("/insights", h.ListInsights)

	// Dictionary.
	r.Get("/dictionary", h.SearchDictionary)
	r.Get("/dictionary/{id}", h.GetTerm)

	// Animation clock.
	r.Get("/clock", h.GetClock)
	r.Post("/clock/start", h.StartClock)
	r.Post("/clock/stop", h.StopClock)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
