// internal/app/features/users/routes.go
package users

import (
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /users subrouter. Registration, login and the
// license/token checks are public; profile changes need a bearer token.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/check-license-number", h.CheckLicenseNumber)
	r.Post("/is-authenticated", h.IsAuthenticated)

	r.Group(func(pr chi.Router) {
		pr.Use(am.RequireSignedIn)
		pr.Post("/is-new-user", h.IsNewUser)
		pr.Put("/update", h.Update)
	})
	return r
}
