package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brooky/dazle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given names, email, position and
// license. Brokers get an empty invites list; salespersons get none.
func (f *Fixtures) CreateUser(ctx context.Context, first, last, email, position, license string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:                  primitive.NewObjectID(),
		FirstName:           first,
		LastName:            last,
		Email:               strings.ToLower(email),
		Position:            position,
		BrokerLicenseNumber: license,
		LoginType:           models.LoginTypeEmailPass,
		IsNewUser:           true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if position == models.PositionBroker {
		empty := []models.InviteEntry{}
		u.Invites = &empty
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateBroker creates a Broker with an empty invites list.
func (f *Fixtures) CreateBroker(ctx context.Context, first, last, email, license string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, first, last, email, models.PositionBroker, license)
}

// CreateSalesperson creates a Salesperson without an invites field.
func (f *Fixtures) CreateSalesperson(ctx context.Context, first, last, email, license string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, first, last, email, models.PositionSalesperson, license)
}

// AddInvite appends an entry to the owner's invites list.
func (f *Fixtures) AddInvite(ctx context.Context, ownerID primitive.ObjectID, email string, invited bool, at time.Time) {
	f.t.Helper()

	entry := models.InviteEntry{Email: strings.ToLower(email), Invited: invited, DateModified: at.UTC()}
	_, err := f.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": ownerID},
		bson.M{"$push": bson.M{"invites": entry}},
	)
	if err != nil {
		f.t.Fatalf("failed to add test invite: %v", err)
	}
}

// Invites reloads the owner's invites list.
func (f *Fixtures) Invites(ctx context.Context, ownerID primitive.ObjectID) []models.InviteEntry {
	f.t.Helper()

	var u models.User
	if err := f.db.Collection("users").FindOne(ctx, bson.M{"_id": ownerID}).Decode(&u); err != nil {
		f.t.Fatalf("failed to reload user: %v", err)
	}
	return u.InviteList()
}
