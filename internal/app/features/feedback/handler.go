// internal/app/features/feedback/handler.go
package feedback

import (
	"context"
	"errors"
	"net/http"

	feedbackstore "github.com/brooky/dazle/internal/app/store/feedback"
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/brooky/dazle/internal/app/system/htmlsanitize"
	"github.com/brooky/dazle/internal/app/system/jsonutil"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/app/system/timeouts"
	"github.com/brooky/dazle/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the /feedback endpoints.
type Handler struct {
	Feedback *feedbackstore.Store
	Log      *zap.Logger
}

func NewHandler(store *feedbackstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Feedback: store, Log: logger}
}

type createRequest struct {
	Feedback *models.Feedback `json:"feedback"`
}

type createResult struct {
	outcome.Base
	Property *models.Feedback `json:"property,omitempty"`
}

type listResult struct {
	outcome.Base
	Feedback []models.Feedback `json:"feedback"`
}

// CreateFeedback handles POST /feedback/create-feedback. user_id defaults
// to the caller and may not name anyone else.
func (h *Handler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)

	var req createRequest
	if err := jsonutil.Decode(r, &req); err != nil || req.Feedback == nil {
		jsonutil.BadRequest(w, "Request must contain feedback")
		return
	}
	f := *req.Feedback
	if f.UserID == "" {
		f.UserID = caller.ID
	}
	if f.UserID != caller.ID {
		jsonutil.Unauthorized(w, "Cannot send feedback for another user")
		return
	}
	f.UserDisplayName = htmlsanitize.PlainText(f.UserDisplayName)
	if f.UserDisplayName == "" {
		f.UserDisplayName = caller.Name
	}
	f.Likes = htmlsanitize.PlainText(f.Likes)
	f.Improvements = htmlsanitize.PlainText(f.Improvements)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Feedback.Create(ctx, f)
	if errors.Is(err, feedbackstore.ErrEmpty) {
		jsonutil.OK(w, createResult{Base: outcome.Fail(outcome.MissingData, err.Error())})
		return
	}
	if err != nil {
		h.Log.Error("create-feedback failed", zap.Error(err), zap.String("user_id", caller.ID))
		jsonutil.ServerError(w)
		return
	}
	jsonutil.OK(w, createResult{Base: outcome.OK("Feedback Created"), Property: &created})
}

// MyFeedback handles GET /feedback/my-feedback.
func (h *Handler) MyFeedback(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out, err := h.Feedback.ListByUser(ctx, caller.ID)
	if err != nil {
		h.Log.Error("my-feedback failed", zap.Error(err), zap.String("user_id", caller.ID))
		jsonutil.ServerError(w)
		return
	}
	jsonutil.OK(w, listResult{Base: outcome.OK(outcome.StatusSuccess), Feedback: out})
}
