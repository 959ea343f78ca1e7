// internal/app/features/activity/handler.go
package activity

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brooky/dazle/internal/app/store/audit"
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/brooky/dazle/internal/app/system/jsonutil"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Handler serves the caller's own audit trail.
type Handler struct {
	Events *audit.Store
	Log    *zap.Logger
}

func NewHandler(events *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Log: logger}
}

type eventView struct {
	ID            string            `json:"_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	CounterpartID string            `json:"counterpart_id,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

type activityResult struct {
	outcome.Base
	Total  int64       `json:"total"`
	Events []eventView `json:"events"`
}

// MyActivity handles GET /activity/my-activity. Optional query parameters
// are category (auth or connection), limit and offset.
func (h *Handler) MyActivity(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)
	userID, err := primitive.ObjectIDFromHex(caller.ID)
	if err != nil {
		jsonutil.Unauthorized(w, "Fail to authenticate")
		return
	}

	q := r.URL.Query()
	category := strings.ToLower(strings.TrimSpace(q.Get("category")))
	switch category {
	case "", audit.CategoryAuth, audit.CategoryConnection:
	default:
		jsonutil.BadRequest(w, `category must be "auth"|"connection"`)
		return
	}
	limit, ok := intParam(q.Get("limit"), defaultLimit)
	if !ok || limit < 1 {
		jsonutil.BadRequest(w, "limit must be a positive number")
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, ok := intParam(q.Get("offset"), 0)
	if !ok || offset < 0 {
		jsonutil.BadRequest(w, "offset must not be negative")
		return
	}

	filter := audit.QueryFilter{
		UserID:   &userID,
		Category: category,
		Limit:    limit,
		Offset:   offset,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("my-activity: count failed", zap.Error(err), zap.String("user_id", caller.ID))
		jsonutil.ServerError(w)
		return
	}
	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Log.Error("my-activity: query failed", zap.Error(err), zap.String("user_id", caller.ID))
		jsonutil.ServerError(w)
		return
	}

	out := make([]eventView, 0, len(events))
	for _, e := range events {
		v := eventView{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.CounterpartID != nil {
			v.CounterpartID = e.CounterpartID.Hex()
		}
		out = append(out, v)
	}
	jsonutil.OK(w, activityResult{Base: outcome.OK(outcome.StatusSuccess), Total: total, Events: out})
}

func intParam(raw string, def int64) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	return n, err == nil
}
