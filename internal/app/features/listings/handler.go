// internal/app/features/listings/handler.go
package listings

import (
	"context"
	"errors"
	"net/http"
	"strings"

	listingstore "github.com/brooky/dazle/internal/app/store/listings"
	userstore "github.com/brooky/dazle/internal/app/store/users"
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/brooky/dazle/internal/app/system/htmlsanitize"
	"github.com/brooky/dazle/internal/app/system/jsonutil"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/app/system/timeouts"
	"github.com/brooky/dazle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the /listings endpoints.
type Handler struct {
	Listings *listingstore.Store
	Users    *userstore.Store
	Log      *zap.Logger
}

// NewHandler wires the listings feature.
func NewHandler(listings *listingstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Listings: listings, Users: users, Log: logger}
}

type createResult struct {
	outcome.Base
	Property *models.Listing `json:"property,omitempty"`
}

type listResult struct {
	outcome.Base
	Listings []models.Listing `json:"listings"`
}

type createRequest struct {
	Property *models.Listing `json:"property"`
}

// CreateListing handles POST /listings/create-listing. Only users someone
// has accepted as a connection may post.
func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)

	var req createRequest
	if err := jsonutil.Decode(r, &req); err != nil || req.Property == nil {
		jsonutil.BadRequest(w, "Request must contain property")
		return
	}
	ownerID, err := primitive.ObjectIDFromHex(caller.ID)
	if err != nil {
		jsonutil.Unauthorized(w, "Fail to authenticate")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	accepted, err := h.Users.HasAcceptedInviteFor(ctx, caller.Email)
	if err != nil {
		h.Log.Error("create-listing: invite lookup failed", zap.Error(err), zap.String("user_id", caller.ID))
		jsonutil.ServerError(w)
		return
	}
	if !accepted {
		jsonutil.Unauthorized(w, "Your account status is currently pending")
		return
	}

	l := sanitize(*req.Property)
	created, err := h.Listings.Create(ctx, ownerID, l)
	if isValidation(err) {
		jsonutil.OK(w, createResult{Base: outcome.Fail(outcome.Validation, err.Error())})
		return
	}
	if err != nil {
		h.Log.Error("create-listing: insert failed", zap.Error(err), zap.String("user_id", caller.ID))
		jsonutil.ServerError(w)
		return
	}
	jsonutil.OK(w, createResult{Base: outcome.OK("Listing Created"), Property: &created})
}

// MyListings handles GET /listings/my-listings. user_id defaults to the
// caller and may not name anyone else.
func (h *Handler) MyListings(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		userID = caller.ID
	}
	if userID != caller.ID {
		jsonutil.Unauthorized(w, "Cannot read another user's listings")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	out, err := h.Listings.ListByCreator(ctx, userID)
	if err != nil {
		h.Log.Error("my-listings failed", zap.Error(err), zap.String("user_id", userID))
		jsonutil.ServerError(w)
		return
	}
	jsonutil.OK(w, listResult{Base: outcome.OK("Got My Listings"), Listings: out})
}

func isValidation(err error) bool {
	return errors.Is(err, listingstore.ErrCityRequired) ||
		errors.Is(err, listingstore.ErrBadTimePeriod) ||
		errors.Is(err, listingstore.ErrNegativePrice) ||
		errors.Is(err, listingstore.ErrBadViewType)
}

// sanitize strips markup from client text. Description keeps the safe
// subset of HTML the app renders.
func sanitize(l models.Listing) models.Listing {
	l.Description = htmlsanitize.Sanitize(l.Description)
	l.City = htmlsanitize.PlainText(l.City)
	l.District = htmlsanitize.PlainText(l.District)
	l.Landmark = htmlsanitize.PlainText(l.Landmark)
	l.TotalArea = htmlsanitize.PlainText(l.TotalArea)
	l.IsYourProperty = htmlsanitize.PlainText(l.IsYourProperty)
	l.NumberOfBedrooms = htmlsanitize.PlainText(l.NumberOfBedrooms)
	l.NumberOfBathrooms = htmlsanitize.PlainText(l.NumberOfBathrooms)
	l.NumberOfParkingSpace = htmlsanitize.PlainText(l.NumberOfParkingSpace)
	l.Amenities = plainAll(l.Amenities)
	l.Keywords = plainAll(l.Keywords)
	return l
}

func plainAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = htmlsanitize.PlainText(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
