package verificationstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/brooky/dazle/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAttachmentRequired is returned when no attachment is given.
var ErrAttachmentRequired = errors.New("attachment is required")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("verifications")}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Create inserts v as a pending request. Any client-supplied status is
// ignored.
func (s *Store) Create(ctx context.Context, v models.Verification) (models.Verification, error) {
	v.Attachment = strings.TrimSpace(v.Attachment)
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.StructField() == "Attachment" {
					return models.Verification{}, ErrAttachmentRequired
				}
			}
		}
		return models.Verification{}, err
	}

	v.ID = primitive.NewObjectID()
	v.Status = models.VerificationPending
	now := time.Now().UTC().Truncate(time.Millisecond)
	v.CreatedAt = now
	v.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return models.Verification{}, err
	}
	return v, nil
}

// LatestForUser returns the user's most recent request.
// Returns mongo.ErrNoDocuments if there is none.
func (s *Store) LatestForUser(ctx context.Context, userID string) (models.Verification, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	var v models.Verification
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&v)
	return v, err
}
