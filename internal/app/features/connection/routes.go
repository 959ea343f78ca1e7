// internal/app/features/connection/routes.go
package connection

import (
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /connection subrouter. Every endpoint needs a bearer token.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(am.RequireSignedIn)
	r.Post("/read-invite", h.ReadInvite)
	r.Post("/read-my-connection", h.ReadMyConnection)
	r.Post("/add-connection", h.AddConnection)
	r.Post("/remove-connection", h.RemoveConnection)
	r.Post("/search-user", h.SearchUser)
	return r
}
