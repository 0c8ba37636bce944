package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers admin routes behind guard
func RegisterRoutes(r chi.Router, h *Handler, guard func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(guard)

		r.Get("/stats", h.Stats)
		r.Post("/settings", h.UpdateSettings)
	})
}
