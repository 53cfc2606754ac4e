package clinic

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the action endpoint at its own path and at the
// hosted-function path the UI already calls.
func RegisterRoutes(r chi.Router, h *Handler) {
	for _, path := range []string{"/ai-clinic", "/functions/v1/ai-clinic"} {
		r.Post(path, h.HandleAction)
		r.Options(path, h.HandlePreflight)
	}
}
