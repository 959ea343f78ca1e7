package feedbackstore

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

// ErrEmpty is returned when a feedback says neither what the user likes
// nor what should improve.
var ErrEmpty = errors.New("likes or improvements is required")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("feedbacks")}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Create inserts f with fresh id and timestamps.
func (s *Store) Create(ctx context.Context, f models.Feedback) (models.Feedback, error) {
	f.Likes = strings.TrimSpace(f.Likes)
	f.Improvements = strings.TrimSpace(f.Improvements)
	if f.Likes == "" && f.Improvements == "" {
		return models.Feedback{}, ErrEmpty
	}
	if err := validate.Struct(f); err != nil {
		return models.Feedback{}, err
	}

	f.ID = primitive.NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)
	f.CreatedAt = now
	f.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.Feedback{}, err
	}
	return f, nil
}

// ListByUser returns the user's feedback, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Feedback{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
