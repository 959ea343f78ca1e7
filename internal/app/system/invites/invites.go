// Package invites owns the broker/salesperson invitation lifecycle: seeding
// pending entries at registration and flipping an entry between pending
// and accepted.
//
// Entries live on the owner's user document and point at the counterpart
// by email. The relation is one-sided: accepting an entry never touches the
// counterpart's own document.
package invites

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	userstore "github.com/brooky/dazle/internal/app/store/users"
	"github.com/brooky/dazle/internal/app/system/auditlog"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Result is returned by AddConnection and RemoveConnection.
type Result struct {
	outcome.Base
	Broker *models.User `json:"broker,omitempty"`
}

// Service applies invitation transitions.
type Service struct {
	users        *userstore.Store
	audit        *auditlog.Logger
	log          *zap.Logger
	adminLicense string
	now          func() time.Time
}

// New creates a Service. adminLicense identifies the platform-admin broker
// that receives a pending entry for every newly registered broker.
func New(users *userstore.Store, audit *auditlog.Logger, logger *zap.Logger, adminLicense string) *Service {
	return &Service{
		users:        users,
		audit:        audit,
		log:          logger,
		adminLicense: adminLicense,
		now:          time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// stamp is the current time at the precision MongoDB stores.
func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Seeding                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// BrokerInvites builds the invites list a new Broker starts with: one
// pending entry per Salesperson already registered under the license.
// The result is never nil, so brokers always carry an invites field.
func (s *Service) BrokerInvites(ctx context.Context, license string) ([]models.InviteEntry, error) {
	sales, err := s.users.ListSalespersonsByLicense(ctx, license)
	if err != nil {
		return nil, fmt.Errorf("list salespersons for license: %w", err)
	}

	now := s.stamp()
	out := make([]models.InviteEntry, 0, len(sales))
	for _, sp := range sales {
		id := sp.ID
		out = append(out, models.InviteEntry{
			Email:        sp.Email,
			UserID:       &id,
			Invited:      false,
			DateModified: now,
		})
	}
	return out, nil
}

// SeedForSalesperson pushes a pending entry for sp onto the Broker holding
// sp's license number. Without such a broker this is a no-op.
func (s *Service) SeedForSalesperson(ctx context.Context, sp models.User) error {
	broker, err := s.users.FindBrokerByLicense(ctx, sp.BrokerLicenseNumber)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find broker by license: %w", err)
	}
	return s.push(ctx, broker.ID, sp)
}

// SeedForBroker pushes a pending entry for b onto the platform admin.
// Without an admin, or when b is the admin, this is a no-op.
func (s *Service) SeedForBroker(ctx context.Context, b models.User) error {
	if s.adminLicense == "" {
		return nil
	}
	admin, err := s.users.FindBrokerByLicense(ctx, s.adminLicense)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find admin broker: %w", err)
	}
	if admin.ID == b.ID {
		return nil
	}
	return s.push(ctx, admin.ID, b)
}

func (s *Service) push(ctx context.Context, ownerID primitive.ObjectID, counterpart models.User) error {
	id := counterpart.ID
	entry := models.InviteEntry{
		Email:        counterpart.Email,
		UserID:       &id,
		Invited:      false,
		DateModified: s.stamp(),
	}
	if err := s.users.PushInvite(ctx, ownerID, entry); err != nil {
		// Owner vanished between lookup and push: nothing to seed.
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return fmt.Errorf("push invite: %w", err)
	}
	s.audit.InviteSeeded(ctx, ownerID, counterpart.ID, counterpart.Email)
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Transitions                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// AddConnection marks userID's entry for invitedID as accepted.
func (s *Service) AddConnection(ctx context.Context, r *http.Request, userID, invitedID string) (Result, error) {
	return s.setState(ctx, r, userID, invitedID, true)
}

// RemoveConnection returns userID's entry for invitedID to pending.
// Removing an already pending entry succeeds.
func (s *Service) RemoveConnection(ctx context.Context, r *http.Request, userID, invitedID string) (Result, error) {
	return s.setState(ctx, r, userID, invitedID, false)
}

func notFound() Result {
	return Result{Base: outcome.Fail(outcome.NotFound, outcome.StatusFail)}
}

func (s *Service) setState(ctx context.Context, r *http.Request, userID, invitedID string, invited bool) (Result, error) {
	owner, err := s.loadUser(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	counterpart, err := s.loadUser(ctx, invitedID)
	if err != nil {
		return Result{}, err
	}
	if owner == nil || counterpart == nil {
		return notFound(), nil
	}

	err = s.users.SetInviteState(ctx, owner.ID, counterpart.Email, invited, s.stamp())
	switch {
	case errors.Is(err, userstore.ErrInviteNotFound):
		return Result{Base: outcome.Fail(outcome.InviteNotFound, outcome.StatusFail)}, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return notFound(), nil
	case err != nil:
		return Result{}, fmt.Errorf("set invite state: %w", err)
	}

	if invited {
		s.audit.ConnectionAdded(ctx, r, owner.ID, counterpart.ID)
	} else {
		s.audit.ConnectionRemoved(ctx, r, owner.ID, counterpart.ID)
	}
	s.log.Debug("invite state changed",
		zap.String("user_id", owner.ID.Hex()),
		zap.String("invited_id", counterpart.ID.Hex()),
		zap.Bool("invited", invited))

	return Result{Base: outcome.OK(outcome.StatusSuccess), Broker: owner}, nil
}

// loadUser returns nil (and no error) for malformed or unknown ids.
func (s *Service) loadUser(ctx context.Context, hex string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, nil
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", hex, err)
	}
	return u, nil
}
