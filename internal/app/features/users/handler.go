// internal/app/features/users/handler.go
package users

import (
	userstore "github.com/brooky/dazle/internal/app/store/users"
	"github.com/brooky/dazle/internal/app/system/auditlog"
	"github.com/brooky/dazle/internal/app/system/authtoken"
	"github.com/brooky/dazle/internal/app/system/invites"
	"github.com/brooky/dazle/internal/app/system/metrics"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/app/system/ratelimit"
	"github.com/brooky/dazle/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves registration, login and account endpoints.
type Handler struct {
	Users   *userstore.Store
	Invites *invites.Service
	Tokens  *authtoken.Service
	Audit   *auditlog.Logger
	Log     *zap.Logger

	// Limiter throttles /users/login. Nil disables throttling.
	Limiter *ratelimit.LoginLimiter
	// Metrics counts registrations and logins. Nil disables counting.
	Metrics *metrics.Metrics
}

// NewHandler wires the users feature.
func NewHandler(users *userstore.Store, inv *invites.Service, tokens *authtoken.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   users,
		Invites: inv,
		Tokens:  tokens,
		Audit:   audit,
		Log:     logger,
	}
}

// userResult is the response of register, login, is-new-user and update.
type userResult struct {
	outcome.Base
	User  *models.User `json:"user,omitempty"`
	Token string       `json:"token,omitempty"`
}

// brokerResult is the response of check-license-number.
type brokerResult struct {
	outcome.Base
	Broker *models.User `json:"broker,omitempty"`
}

// userInput is the "user" object accepted by register, login,
// is-new-user and update.
type userInput struct {
	ID                  string `json:"_id"`
	FirstName           string `json:"firstname"`
	LastName            string `json:"lastname"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	Position            string `json:"position"`
	BrokerLicenseNumber string `json:"broker_license_number"`
	MobileNumber        string `json:"mobile_number"`
	AboutMe             string `json:"about_me"`
	ProfilePicture      string `json:"profile_picture"`
	IsNewUser           *bool  `json:"is_new_user"`
}

type userEnvelope struct {
	User *userInput `json:"user"`
}

// profileInput is the "user" object accepted by update. Absent fields
// decode to nil and are left unchanged.
type profileInput struct {
	ID                  string  `json:"_id"`
	FirstName           *string `json:"firstname"`
	LastName            *string `json:"lastname"`
	BrokerLicenseNumber *string `json:"broker_license_number"`
	MobileNumber        *string `json:"mobile_number"`
	AboutMe             *string `json:"about_me"`
	ProfilePicture      *string `json:"profile_picture"`
}

type profileEnvelope struct {
	User *profileInput `json:"user"`
}

func (h *Handler) issue(u *models.User) (string, error) {
	return h.Tokens.Issue(authtoken.Subject{
		UserID:   u.ID.Hex(),
		Email:    u.Email,
		Position: u.Position,
	})
}
