package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/brooky/dazle/internal/app/system/normalize"
	"github.com/brooky/dazle/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrInviteNotFound is returned when the owner exists but has no invite entry for the counterpart.
	ErrInviteNotFound = errors.New("invite entry not found")
	errBadPosition    = errors.New(`position must be "Broker"|"Salesperson"`)
)

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindBrokerByLicense returns the Broker holding the license number.
// Returns mongo.ErrNoDocuments if there is none.
func (s *Store) FindBrokerByLicense(ctx context.Context, license string) (*models.User, error) {
	var u models.User
	filter := bson.M{
		"position":              models.PositionBroker,
		"broker_license_number": normalize.LicenseNumber(license),
	}
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListSalespersonsByLicense returns every Salesperson registered under the
// license number, oldest first.
func (s *Store) ListSalespersonsByLicense(ctx context.Context, license string) ([]models.User, error) {
	filter := bson.M{
		"position":              models.PositionSalesperson,
		"broker_license_number": normalize.LicenseNumber(license),
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1, "email": 1})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByLicense counts users of any position sharing the license number.
func (s *Store) CountByLicense(ctx context.Context, license string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"broker_license_number": normalize.LicenseNumber(license)})
}

// BrokerLicenseTakenByOther reports whether a Broker other than excludeID
// already holds the license number.
func (s *Store) BrokerLicenseTakenByOther(ctx context.Context, license string, excludeID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"position":              models.PositionBroker,
		"broker_license_number": normalize.LicenseNumber(license),
		"_id":                   bson.M{"$ne": excludeID},
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Create inserts a new user after normalizing & validating fields.
// The caller supplies an already hashed password.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.Email = normalize.Email(u.Email)
	u.Position = normalize.Position(u.Position)
	u.BrokerLicenseNumber = normalize.LicenseNumber(u.BrokerLicenseNumber)

	switch u.Position {
	case models.PositionBroker, models.PositionSalesperson:
		// ok
	default:
		return models.User{}, errBadPosition
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName           *string
	LastName            *string
	MobileNumber        *string
	AboutMe             *string
	ProfilePicture      *string
	BrokerLicenseNumber *string
}

// UpdateProfile sets the non-nil profile fields and returns the updated
// document. Returns mongo.ErrNoDocuments if the user does not exist.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if upd.FirstName != nil {
		set["firstname"] = normalize.Name(*upd.FirstName)
	}
	if upd.LastName != nil {
		set["lastname"] = normalize.Name(*upd.LastName)
	}
	if upd.MobileNumber != nil {
		set["mobile_number"] = *upd.MobileNumber
	}
	if upd.AboutMe != nil {
		set["about_me"] = *upd.AboutMe
	}
	if upd.ProfilePicture != nil {
		set["profile_picture"] = *upd.ProfilePicture
	}
	if upd.BrokerLicenseNumber != nil {
		set["broker_license_number"] = normalize.LicenseNumber(*upd.BrokerLicenseNumber)
	}
	return s.findAndSet(ctx, bson.M{"_id": id}, set)
}

// SetIsNewUser sets the onboarding flag on the user with the given email.
// Returns mongo.ErrNoDocuments if the user does not exist.
func (s *Store) SetIsNewUser(ctx context.Context, email string, isNew bool) (*models.User, error) {
	set := bson.M{
		"is_new_user": isNew,
		"updated_at":  time.Now(),
	}
	return s.findAndSet(ctx, bson.M{"email": normalize.Email(email)}, set)
}

func (s *Store) findAndSet(ctx context.Context, filter bson.M, set bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	if err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertAdmin makes sure the platform admin broker exists. The admin holds a
// self-accepted invite so it counts as connected. An existing admin is left
// untouched. Returns created=true when a new document was inserted.
func (s *Store) UpsertAdmin(ctx context.Context, email, passwordHash, license string) (bool, error) {
	email = normalize.Email(email)
	now := time.Now()
	invites := []models.InviteEntry{{Email: email, Invited: true, DateModified: now}}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$setOnInsert": bson.M{
			"firstname":             "app",
			"lastname":              "admin",
			"position":              models.PositionBroker,
			"broker_license_number": normalize.LicenseNumber(license),
			"email":                 email,
			"password":              passwordHash,
			"login_type":            models.LoginTypeEmailPass,
			"is_new_user":           false,
			"email_verified":        true,
			"verified":              true,
			"invites":               invites,
			"created_at":            now,
			"updated_at":            now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}
