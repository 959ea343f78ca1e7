// internal/domain/models/listing.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing view types.
const (
	ViewTypePublic  = "public"
	ViewTypePrivate = "private"
)

// Listing time periods.
const (
	TimePeriodSell = "Sell"
	TimePeriodRent = "Rent"
)

// Listing is a property posted by a broker or salesperson.
type Listing struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CoverPhoto           string             `bson:"cover_photo,omitempty" json:"cover_photo,omitempty"`
	Photos               []string           `bson:"photos" json:"photos"`
	Amenities            []string           `bson:"amenities" json:"amenities"`
	Keywords             []string           `bson:"keywords" json:"keywords"`
	Price                float64            `bson:"price" json:"price" validate:"gte=0"`
	TimePeriod           string             `bson:"time_period" json:"time_period" validate:"oneof=Sell Rent"`
	NumberOfBedrooms     string             `bson:"number_of_bedrooms" json:"number_of_bedrooms"`
	NumberOfBathrooms    string             `bson:"number_of_bathrooms" json:"number_of_bathrooms"`
	NumberOfParkingSpace string             `bson:"number_of_parking_space" json:"number_of_parking_space"`
	TotalArea            string             `bson:"total_area" json:"total_area"`
	IsYourProperty       string             `bson:"is_your_property" json:"is_your_property"` // furnished or not
	District             string             `bson:"district,omitempty" json:"district,omitempty"`
	City                 string             `bson:"city" json:"city" validate:"required"`
	Landmark             string             `bson:"landmark,omitempty" json:"landmark,omitempty"`
	Description          string             `bson:"description" json:"description"`
	CreatedBy            string             `bson:"created_by" json:"created_by"` // user id hex
	ViewType             string             `bson:"view_type" json:"view_type" validate:"oneof=public private"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
