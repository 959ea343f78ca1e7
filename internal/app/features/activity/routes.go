// internal/app/features/activity/routes.go
package activity

import (
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /activity subrouter.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(am.RequireSignedIn)
	r.Get("/my-activity", h.MyActivity)
	return r
}
