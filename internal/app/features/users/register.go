// internal/app/features/users/register.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/brooky/dazle/internal/app/store/users"
	"github.com/brooky/dazle/internal/app/system/htmlsanitize"
	"github.com/brooky/dazle/internal/app/system/jsonutil"
	"github.com/brooky/dazle/internal/app/system/normalize"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/app/system/passwords"
	"github.com/brooky/dazle/internal/app/system/timeouts"
	"github.com/brooky/dazle/internal/domain/models"
	"github.com/dalemusser/waffle/toolkit/validate"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// validateRegistration cleans in and returns a non-empty message when a
// required field is missing or malformed.
func validateRegistration(in *userInput) string {
	in.FirstName = htmlsanitize.PlainText(in.FirstName)
	in.LastName = htmlsanitize.PlainText(in.LastName)
	in.Email = normalize.Email(in.Email)
	in.Position = normalize.Position(in.Position)
	in.BrokerLicenseNumber = normalize.LicenseNumber(in.BrokerLicenseNumber)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)

	var missing []string
	if in.FirstName == "" {
		missing = append(missing, "firstname")
	}
	if in.LastName == "" {
		missing = append(missing, "lastname")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if in.Position == "" {
		missing = append(missing, "position")
	}
	if len(missing) > 0 {
		return "Missing required fields: " + strings.Join(missing, ", ")
	}

	switch {
	case !validate.SimpleEmailValid(in.Email):
		return "Email address is not valid"
	case len(in.Password) < passwords.MinLength:
		return "Password must be at least 8 characters"
	case in.Position != models.PositionBroker && in.Position != models.PositionSalesperson:
		return `Position must be "Broker" or "Salesperson"`
	case in.BrokerLicenseNumber == "":
		return "Broker license number is required"
	case !htmlsanitize.IsPlainText(in.BrokerLicenseNumber):
		return "Broker license number must be plain text"
	case !htmlsanitize.IsPlainText(in.MobileNumber):
		return "Mobile number must be plain text"
	}
	return ""
}

// Register handles POST /users/register.
//
// Brokers start with a pending invite for every salesperson already under
// their license and are announced to the platform admin. Salespersons are
// announced to the broker holding their license.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body userEnvelope
	if err := jsonutil.Decode(r, &body); err != nil || body.User == nil {
		jsonutil.BadRequest(w, "Request must contain a user object")
		return
	}
	in := body.User

	if msg := validateRegistration(in); msg != "" {
		jsonutil.OK(w, userResult{Base: outcome.Fail(outcome.Validation, msg)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if _, err := h.Users.GetByEmail(ctx, in.Email); err == nil {
		jsonutil.OK(w, userResult{Base: outcome.Fail(outcome.EmailExist, "Email already exist")})
		return
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		h.Log.Error("register: email lookup failed", zap.Error(err), zap.String("email", in.Email))
		jsonutil.ServerError(w)
		return
	}

	hash, err := passwords.Hash(in.Password)
	if err != nil {
		h.Log.Error("register: hash password", zap.Error(err))
		jsonutil.ServerError(w)
		return
	}

	u := models.User{
		FirstName:           in.FirstName,
		LastName:            in.LastName,
		Email:               in.Email,
		Password:            hash,
		Position:            in.Position,
		BrokerLicenseNumber: in.BrokerLicenseNumber,
		MobileNumber:        in.MobileNumber,
		LoginType:           models.LoginTypeEmailPass,
		IsNewUser:           true,
	}

	if u.IsBroker() {
		list, err := h.Invites.BrokerInvites(ctx, u.BrokerLicenseNumber)
		if err != nil {
			h.Log.Error("register: build broker invites", zap.Error(err), zap.String("email", u.Email))
			jsonutil.ServerError(w)
			return
		}
		u.Invites = &list
	}

	created, err := h.Users.Create(ctx, u)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		jsonutil.OK(w, userResult{Base: outcome.Fail(outcome.EmailExist, "Email already exist")})
		return
	}
	if err != nil {
		h.Log.Error("register: insert user", zap.Error(err), zap.String("email", u.Email))
		jsonutil.ServerError(w)
		return
	}

	if created.IsBroker() {
		err = h.Invites.SeedForBroker(ctx, created)
	} else {
		err = h.Invites.SeedForSalesperson(ctx, created)
	}
	if err != nil {
		h.Log.Error("register: seed invites", zap.Error(err), zap.String("user_id", created.ID.Hex()))
		jsonutil.ServerError(w)
		return
	}

	token, err := h.issue(&created)
	if err != nil {
		h.Log.Error("register: issue token", zap.Error(err), zap.String("user_id", created.ID.Hex()))
		jsonutil.ServerError(w)
		return
	}

	h.Audit.UserRegistered(ctx, r, created.ID, created.Email, created.Position)
	h.Metrics.Registered(created.Position)
	jsonutil.OK(w, userResult{
		Base:  outcome.OK("Registration Success"),
		User:  &created,
		Token: token,
	})
}
