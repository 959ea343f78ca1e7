// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Positions a user can register with.
const (
	PositionBroker      = "Broker"
	PositionSalesperson = "Salesperson"
)

// LoginTypeEmailPass marks accounts created through email/password registration.
const LoginTypeEmailPass = "email&pass"

// User represents brokers and salespersons.
//
// NOTE:
//   - Connections live on the user as the embedded Invites list.
//     Entries point at the counterpart by email; see InviteEntry.
//   - Invites is a pointer so that "field absent" and "empty list" can be
//     told apart when reading legacy documents.
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName           string             `bson:"firstname" json:"firstname"`
	LastName            string             `bson:"lastname" json:"lastname"`
	MobileNumber        string             `bson:"mobile_number,omitempty" json:"mobile_number,omitempty"`
	Position            string             `bson:"position" json:"position"` // Broker | Salesperson
	BrokerLicenseNumber string             `bson:"broker_license_number,omitempty" json:"broker_license_number,omitempty"`
	Email               string             `bson:"email" json:"email"`
	Password            string             `bson:"password,omitempty" json:"-"`
	LoginType           string             `bson:"login_type,omitempty" json:"login_type,omitempty"`
	IsNewUser           bool               `bson:"is_new_user" json:"is_new_user"`
	EmailVerified       bool               `bson:"email_verified" json:"email_verified"`
	Verified            bool               `bson:"verified" json:"verified"`
	AboutMe             string             `bson:"about_me,omitempty" json:"about_me,omitempty"`
	ProfilePicture      string             `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	PhotoURL            string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Invites             *[]InviteEntry     `bson:"invites,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// InviteEntry tracks one counterpart relationship on the owning user.
//
// Email is the counterpart's email at seed time and is what lookups match
// on. UserID is the counterpart's _id captured at seed time; it is not used
// for matching.
type InviteEntry struct {
	Email        string              `bson:"email" json:"email"`
	UserID       *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Invited      bool                `bson:"invited" json:"invited"`
	DateModified time.Time           `bson:"date_modified" json:"date_modified"`
}

// DisplayName is "firstname lastname" as shown in connection lists.
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// IsBroker reports whether the user registered as a Broker.
func (u User) IsBroker() bool {
	return u.Position == PositionBroker
}

// InviteList returns the embedded invites, or nil when the field is absent.
func (u User) InviteList() []InviteEntry {
	if u.Invites == nil {
		return nil
	}
	return *u.Invites
}

// HasInvitesField reports whether the document carries an invites field at all.
func (u User) HasInvitesField() bool {
	return u.Invites != nil
}
