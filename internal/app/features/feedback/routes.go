// internal/app/features/feedback/routes.go
package feedback

import (
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /feedback subrouter.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(am.RequireSignedIn)
	r.Post("/create-feedback", h.CreateFeedback)
	r.Get("/my-feedback", h.MyFeedback)
	return r
}
