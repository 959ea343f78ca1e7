// internal/app/features/users/account.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/brooky/dazle/internal/app/store/users"
	"github.com/brooky/dazle/internal/app/system/auth"
	"github.com/brooky/dazle/internal/app/system/htmlsanitize"
	"github.com/brooky/dazle/internal/app/system/jsonutil"
	"github.com/brooky/dazle/internal/app/system/normalize"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const noBrokerStatus = "It seems your Broker is not yet with Dazle. Invite your Broker to complete your registration."

// CheckLicenseNumber handles POST /users/check-license-number.
func (h *Handler) CheckLicenseNumber(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BrokerLicenseNumber string `json:"broker_license_number"`
	}
	if err := jsonutil.Decode(r, &body); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	license := normalize.LicenseNumber(body.BrokerLicenseNumber)
	if license == "" {
		jsonutil.OK(w, brokerResult{Base: outcome.Fail(outcome.MissingData, "Broker license number is required")})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	broker, err := h.Users.FindBrokerByLicense(ctx, license)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.OK(w, brokerResult{Base: outcome.Fail(outcome.NoBroker, noBrokerStatus)})
		return
	}
	if err != nil {
		h.Log.Error("check-license-number: lookup failed", zap.Error(err))
		jsonutil.ServerError(w)
		return
	}
	jsonutil.OK(w, brokerResult{Base: outcome.OK(outcome.StatusSuccess), Broker: broker})
}

// IsAuthenticated handles POST /users/is-authenticated.
//
// A valid token is not enough: someone must have accepted the user as a
// connection, otherwise the account is still pending.
func (h *Handler) IsAuthenticated(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	// The token may come in the body or the Authorization header, so an
	// empty body is fine but a malformed one is not.
	if err := jsonutil.Decode(r, &body); err != nil && !errors.Is(err, jsonutil.ErrEmptyBody) {
		jsonutil.BadRequest(w, "Request body must be a JSON object")
		return
	}
	token := strings.TrimSpace(body.Token)
	if token == "" {
		token = auth.BearerToken(r)
	}

	fail := outcome.Fail(outcome.NotFound, "Fail to authenticate")
	claims, err := h.Tokens.Verify(token)
	if err != nil {
		jsonutil.OK(w, fail)
		return
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		jsonutil.OK(w, fail)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.OK(w, fail)
		return
	}
	if err != nil {
		h.Log.Error("is-authenticated: lookup failed", zap.Error(err), zap.String("user_id", claims.UserID))
		jsonutil.ServerError(w)
		return
	}

	accepted, err := h.Users.HasAcceptedInviteFor(ctx, u.Email)
	if err != nil {
		h.Log.Error("is-authenticated: invite lookup failed", zap.Error(err), zap.String("user_id", claims.UserID))
		jsonutil.ServerError(w)
		return
	}
	if !accepted {
		jsonutil.OK(w, outcome.Fail(outcome.Pending, "Your account status is currently pending"))
		return
	}
	jsonutil.OK(w, outcome.OK("User authenticated success"))
}

// IsNewUser handles POST /users/is-new-user. Callers may only change
// their own flag.
func (h *Handler) IsNewUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)

	var body userEnvelope
	if err := jsonutil.Decode(r, &body); err != nil || body.User == nil || body.User.IsNewUser == nil {
		jsonutil.BadRequest(w, "Request must contain user.email and user.is_new_user")
		return
	}
	email := normalize.Email(body.User.Email)
	if email == "" {
		email = caller.Email
	}
	if !strings.EqualFold(email, caller.Email) {
		jsonutil.Unauthorized(w, "Cannot change another user")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.SetIsNewUser(ctx, email, *body.User.IsNewUser)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.OK(w, userResult{Base: outcome.Fail(outcome.NotFound, "Failed")})
		return
	}
	if err != nil {
		h.Log.Error("is-new-user: update failed", zap.Error(err), zap.String("email", email))
		jsonutil.ServerError(w)
		return
	}
	jsonutil.OK(w, userResult{Base: outcome.OK(outcome.StatusSuccess), User: u})
}

// Update handles PUT /users/update. Callers may only update themselves.
//
// A Broker cannot take a license number another Broker already holds.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)

	var body profileEnvelope
	if err := jsonutil.Decode(r, &body); err != nil || body.User == nil {
		jsonutil.BadRequest(w, "Request must contain a user object")
		return
	}
	in := body.User
	if in.ID == "" {
		in.ID = caller.ID
	}
	if in.ID != caller.ID {
		jsonutil.Unauthorized(w, "Cannot change another user")
		return
	}
	id, err := primitive.ObjectIDFromHex(in.ID)
	if err != nil {
		jsonutil.OK(w, userResult{Base: outcome.Fail(outcome.NotFound, "Update Fail")})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	found, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.OK(w, userResult{Base: outcome.Fail(outcome.NotFound, "Update Fail")})
		return
	}
	if err != nil {
		h.Log.Error("update: lookup failed", zap.Error(err), zap.String("user_id", in.ID))
		jsonutil.ServerError(w)
		return
	}

	upd := userstore.ProfileUpdate{
		FirstName:           nonBlank(mapStr(in.FirstName, htmlsanitize.PlainText)),
		LastName:            nonBlank(mapStr(in.LastName, htmlsanitize.PlainText)),
		BrokerLicenseNumber: nonBlank(mapStr(in.BrokerLicenseNumber, normalize.LicenseNumber)),
		MobileNumber:        mapStr(in.MobileNumber, strings.TrimSpace),
		AboutMe:             mapStr(in.AboutMe, htmlsanitize.Sanitize),
		ProfilePicture:      mapStr(in.ProfilePicture, strings.TrimSpace),
	}

	for _, v := range []*string{upd.BrokerLicenseNumber, upd.MobileNumber, upd.ProfilePicture} {
		if v != nil && !htmlsanitize.IsPlainText(*v) {
			jsonutil.OK(w, userResult{Base: outcome.Fail(outcome.Validation, "Update Fail")})
			return
		}
	}

	if found.IsBroker() && upd.BrokerLicenseNumber != nil {
		taken, err := h.Users.BrokerLicenseTakenByOther(ctx, *upd.BrokerLicenseNumber, found.ID)
		if err != nil {
			h.Log.Error("update: license check failed", zap.Error(err), zap.String("user_id", in.ID))
			jsonutil.ServerError(w)
			return
		}
		if taken {
			jsonutil.OK(w, userResult{Base: outcome.Fail(outcome.BrokerExist, "Broker already exist")})
			return
		}
	}

	u, err := h.Users.UpdateProfile(ctx, found.ID, upd)
	if err != nil {
		h.Log.Error("update: write failed", zap.Error(err), zap.String("user_id", in.ID))
		jsonutil.ServerError(w)
		return
	}
	jsonutil.OK(w, userResult{Base: outcome.OK("Update Success"), User: u})
}

// mapStr applies fn to *p, keeping nil as nil.
func mapStr(p *string, fn func(string) string) *string {
	if p == nil {
		return nil
	}
	v := fn(*p)
	return &v
}

// nonBlank drops values that are empty, so required fields keep their
// stored value.
func nonBlank(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
