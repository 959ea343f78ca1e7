// internal/app/features/users/login.go
package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/brooky/dazle/internal/app/system/jsonutil"
	"github.com/brooky/dazle/internal/app/system/normalize"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/app/system/passwords"
	"github.com/brooky/dazle/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const loginFailStatus = "Please enter a valid username/password to sign in"

// Login handles POST /users/login.
//
// Unknown email and wrong password give the same not_found answer.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body userEnvelope
	if err := jsonutil.Decode(r, &body); err != nil || body.User == nil {
		jsonutil.BadRequest(w, "Request must contain a user object")
		return
	}
	email := normalize.Email(body.User.Email)
	fail := userResult{Base: outcome.Fail(outcome.NotFound, loginFailStatus)}

	if ok, reason := h.Limiter.Check(r, email); !ok {
		h.Audit.LoginFailed(r.Context(), r, nil, email, "rate limited")
		h.Metrics.Login(outcome.RateLimited)
		jsonutil.TooManyRequests(w, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.Audit.LoginFailed(ctx, r, nil, email, "user not found")
		h.Metrics.Login(outcome.NotFound)
		jsonutil.OK(w, fail)
		return
	}
	if err != nil {
		h.Log.Error("login: lookup failed", zap.Error(err), zap.String("email", email))
		jsonutil.ServerError(w)
		return
	}

	if !passwords.Check(u.Password, body.User.Password) {
		h.Audit.LoginFailed(ctx, r, &u.ID, email, "wrong password")
		h.Metrics.Login(outcome.NotFound)
		jsonutil.OK(w, fail)
		return
	}

	token, err := h.issue(u)
	if err != nil {
		h.Log.Error("login: issue token", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		jsonutil.ServerError(w)
		return
	}

	h.Limiter.ResetEmail(email)
	h.Audit.LoginSuccess(ctx, r, u.ID, u.Email)
	h.Metrics.Login("success")
	jsonutil.OK(w, userResult{Base: outcome.OK("Login success"), User: u, Token: token})
}
