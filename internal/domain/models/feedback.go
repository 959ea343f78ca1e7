// internal/domain/models/feedback.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is what a user told us about the app.
type Feedback struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID          string             `bson:"user_id" json:"user_id" validate:"required"`
	UserDisplayName string             `bson:"user_display_name" json:"user_display_name"`
	Likes           string             `bson:"likes" json:"likes"`
	Improvements    string             `bson:"improvements" json:"improvements"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Verification statuses.
const (
	VerificationPending = "pending"
)

// Verification is an identity document a user submitted for review.
type Verification struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID     string             `bson:"user_id" json:"user_id" validate:"required"`
	Attachment string             `bson:"attachment" json:"attachment" validate:"required"`
	Status     string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
