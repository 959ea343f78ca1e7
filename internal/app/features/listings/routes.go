// internal/app/features/listings/routes.go
package listings

import (
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /listings subrouter.
func Routes(h *Handler, am *auth.Manager) chi.Router {
	r := chi.NewRouter()
	r.Use(am.RequireSignedIn)
	r.Post("/create-listing", h.CreateListing)
	r.Get("/my-listings", h.MyListings)
	return r
}
