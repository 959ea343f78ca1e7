// internal/app/features/connection/handler.go
package connection

import (
	"context"
	"net/http"
	"strings"

	"github.com/brooky/dazle/internal/app/store/queries/connectionqueries"
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/brooky/dazle/internal/app/system/invites"
	"github.com/brooky/dazle/internal/app/system/jsonutil"
	"github.com/brooky/dazle/internal/app/system/metrics"
	"github.com/brooky/dazle/internal/app/system/normalize"
	"github.com/brooky/dazle/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the /connection endpoints.
type Handler struct {
	Queries *connectionqueries.Queries
	Invites *invites.Service
	Log     *zap.Logger

	// Metrics counts add/remove calls. Nil disables counting.
	Metrics *metrics.Metrics
}

// NewHandler wires the connection feature.
func NewHandler(q *connectionqueries.Queries, inv *invites.Service, logger *zap.Logger) *Handler {
	return &Handler{Queries: q, Invites: inv, Log: logger}
}

type readRequest struct {
	Email        string `json:"email"`
	FilterByName string `json:"filter_by_name"`
}

type toggleRequest struct {
	UserID    string `json:"user_id"`
	InvitedID string `json:"invited_id"`
}

type searchRequest struct {
	UserID  string `json:"user_id"`
	Pattern string `json:"pattern"`
	Invited bool   `json:"invited"`
}

// ownEmail resolves the email a read targets. Empty means the caller; any
// other address must be the caller's own.
func ownEmail(w http.ResponseWriter, caller *auth.SessionUser, email string) (string, bool) {
	email = normalize.Email(email)
	if email == "" {
		return caller.Email, true
	}
	if !strings.EqualFold(email, caller.Email) {
		jsonutil.Unauthorized(w, "Cannot read another user's connections")
		return "", false
	}
	return email, true
}

// ownID is ownEmail for user ids.
func ownID(w http.ResponseWriter, caller *auth.SessionUser, id string) (string, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return caller.ID, true
	}
	if id != caller.ID {
		jsonutil.Unauthorized(w, "Cannot act for another user")
		return "", false
	}
	return id, true
}

// ReadInvite handles POST /connection/read-invite.
func (h *Handler) ReadInvite(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)
	var req readRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	email, ok := ownEmail(w, caller, req.Email)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Queries.ReadInvite(ctx, email, normalize.QueryParam(req.FilterByName))
	if err != nil {
		h.Log.Error("read-invite failed", zap.Error(err), zap.String("email", email))
		jsonutil.ServerError(w)
		return
	}
	if !res.Success {
		jsonutil.OK(w, res.Base)
		return
	}
	jsonutil.OK(w, res)
}

// ReadMyConnection handles POST /connection/read-my-connection.
func (h *Handler) ReadMyConnection(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)
	var req readRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	email, ok := ownEmail(w, caller, req.Email)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Queries.ReadMyConnection(ctx, email, normalize.QueryParam(req.FilterByName))
	if err != nil {
		h.Log.Error("read-my-connection failed", zap.Error(err), zap.String("email", email))
		jsonutil.ServerError(w)
		return
	}
	if !res.Success {
		jsonutil.OK(w, res.Base)
		return
	}
	jsonutil.OK(w, res)
}

// SearchUser handles POST /connection/search-user.
func (h *Handler) SearchUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)
	var req searchRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	userID, ok := ownID(w, caller, req.UserID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Queries.SearchUser(ctx, userID, normalize.QueryParam(req.Pattern), req.Invited)
	if err != nil {
		h.Log.Error("search-user failed", zap.Error(err), zap.String("user_id", userID))
		jsonutil.ServerError(w)
		return
	}
	if !res.Success {
		jsonutil.OK(w, res.Base)
		return
	}
	jsonutil.OK(w, res)
}

// AddConnection handles POST /connection/add-connection.
func (h *Handler) AddConnection(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

// RemoveConnection handles POST /connection/remove-connection.
func (h *Handler) RemoveConnection(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, accept bool) {
	caller, _ := auth.CurrentUser(r)
	var req toggleRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	userID, ok := ownID(w, caller, req.UserID)
	if !ok {
		return
	}
	invitedID := strings.TrimSpace(req.InvitedID)
	if invitedID == "" {
		jsonutil.BadRequest(w, "invited_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		res invites.Result
		err error
	)
	if accept {
		res, err = h.Invites.AddConnection(ctx, r, userID, invitedID)
	} else {
		res, err = h.Invites.RemoveConnection(ctx, r, userID, invitedID)
	}
	if err != nil {
		h.Log.Error("connection toggle failed",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("invited_id", invitedID),
			zap.Bool("accept", accept))
		jsonutil.ServerError(w)
		return
	}

	action, result := "remove", "success"
	if accept {
		action = "add"
	}
	if !res.Success {
		result = res.ErrorType
	}
	h.Metrics.Transition(action, result)
	jsonutil.OK(w, res)
}
