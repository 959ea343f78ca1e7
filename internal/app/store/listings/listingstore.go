package listingstore

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

var (
	// ErrCityRequired is returned when a listing has no city.
	ErrCityRequired = errors.New("city is required")
	// ErrBadTimePeriod is returned for a time period other than Sell or Rent.
	ErrBadTimePeriod = errors.New(`time_period must be "Sell"|"Rent"`)
	// ErrNegativePrice is returned for a price below zero.
	ErrNegativePrice = errors.New("price must not be negative")
	// ErrBadViewType is returned for a view type other than public or private.
	ErrBadViewType = errors.New(`view_type must be "public"|"private"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("listings")}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldErrors maps a failing struct field to its sentinel error.
var fieldErrors = map[string]error{
	"City":       ErrCityRequired,
	"TimePeriod": ErrBadTimePeriod,
	"Price":      ErrNegativePrice,
	"ViewType":   ErrBadViewType,
}

// Validate normalizes enum fields on l and checks the struct rules on
// models.Listing. The first failing field decides the error.
func Validate(l *models.Listing) error {
	l.City = strings.TrimSpace(l.City)
	switch strings.ToLower(strings.TrimSpace(l.TimePeriod)) {
	case "sell":
		l.TimePeriod = models.TimePeriodSell
	case "rent":
		l.TimePeriod = models.TimePeriodRent
	}
	switch v := strings.ToLower(strings.TrimSpace(l.ViewType)); v {
	case "":
		l.ViewType = models.ViewTypePublic
	case models.ViewTypePublic, models.ViewTypePrivate:
		l.ViewType = v
	}

	err := validate.Struct(l)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, order := range []string{"City", "TimePeriod", "Price", "ViewType"} {
			for _, fe := range verrs {
				if fe.StructField() == order {
					return fieldErrors[order]
				}
			}
		}
	}
	return err
}

// Create validates and inserts a listing owned by createdBy.
func (s *Store) Create(ctx context.Context, createdBy primitive.ObjectID, l models.Listing) (models.Listing, error) {
	if err := Validate(&l); err != nil {
		return models.Listing{}, err
	}

	l.ID = primitive.NewObjectID()
	l.CreatedBy = createdBy.Hex()
	if l.Photos == nil {
		l.Photos = []string{}
	}
	if l.Amenities == nil {
		l.Amenities = []string{}
	}
	if l.Keywords == nil {
		l.Keywords = []string{}
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	l.CreatedAt = now
	l.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Listing{}, err
	}
	return l, nil
}

// ListByCreator returns the user's listings, newest first.
func (s *Store) ListByCreator(ctx context.Context, userID string) ([]models.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"created_by": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Listing{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
