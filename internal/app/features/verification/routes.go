// internal/app/features/verification/routes.go
package verification

import (
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /verification subrouter.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(am.RequireSignedIn)
	r.Post("/create-verification", h.CreateVerification)
	r.Get("/status", h.Status)
	return r
}
