// internal/app/features/verification/handler.go
package verification

import (
	"context"
	"errors"
	"net/http"
	"strings"

	verificationstore "github.com/brooky/dazle/internal/app/store/verification"
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/brooky/dazle/internal/app/system/jsonutil"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/app/system/timeouts"
	"github.com/brooky/dazle/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the /verification endpoints.
type Handler struct {
	Verifications *verificationstore.Store
	Log           *zap.Logger
}

func NewHandler(store *verificationstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Verifications: store, Log: logger}
}

type createRequest struct {
	Verification *models.Verification `json:"verification"`
}

type verificationResult struct {
	outcome.Base
	Property *models.Verification `json:"property,omitempty"`
}

// CreateVerification handles POST /verification/create-verification.
// Requests always start out pending.
func (h *Handler) CreateVerification(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)

	var req createRequest
	if err := jsonutil.Decode(r, &req); err != nil || req.Verification == nil {
		jsonutil.BadRequest(w, "Request must contain verification")
		return
	}
	v := *req.Verification
	if v.UserID == "" {
		v.UserID = caller.ID
	}
	if v.UserID != caller.ID {
		jsonutil.Unauthorized(w, "Cannot submit verification for another user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Verifications.Create(ctx, v)
	if errors.Is(err, verificationstore.ErrAttachmentRequired) {
		jsonutil.OK(w, verificationResult{Base: outcome.Fail(outcome.MissingData, err.Error())})
		return
	}
	if err != nil {
		h.Log.Error("create-verification failed", zap.Error(err), zap.String("user_id", caller.ID))
		jsonutil.ServerError(w)
		return
	}
	jsonutil.OK(w, verificationResult{Base: outcome.OK("Verification Created"), Property: &created})
}

// Status handles GET /verification/status and reports the caller's latest
// request. user_id defaults to the caller and may not name anyone else.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		userID = caller.ID
	}
	if userID != caller.ID {
		jsonutil.Unauthorized(w, "Cannot read another user's verification")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, err := h.Verifications.LatestForUser(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.OK(w, verificationResult{Base: outcome.Fail(outcome.NotFound, "No verification found")})
		return
	}
	if err != nil {
		h.Log.Error("verification status failed", zap.Error(err), zap.String("user_id", userID))
		jsonutil.ServerError(w)
		return
	}
	jsonutil.OK(w, verificationResult{Base: outcome.OK(outcome.StatusSuccess), Property: &v})
}
