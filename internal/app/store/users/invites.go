package userstore

import (
	"context"
	"time"

	"github.com/brooky/dazle/internal/app/system/normalize"
	"github.com/brooky/dazle/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PushInvite appends an entry to the owner's invites list.
// Returns mongo.ErrNoDocuments if the owner does not exist.
func (s *Store) PushInvite(ctx context.Context, ownerID primitive.ObjectID, entry models.InviteEntry) error {
	entry.Email = normalize.Email(entry.Email)
	if entry.DateModified.IsZero() {
		entry.DateModified = time.Now()
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": ownerID},
		bson.M{"$push": bson.M{"invites": entry}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetInviteState flips the invited flag on the owner's entry for the
// counterpart email and stamps date_modified.
//
// The update targets the matching array element positionally, so concurrent
// toggles on other entries of the same owner are never overwritten.
// Only the first entry for an email is touched.
//
// Returns mongo.ErrNoDocuments if the owner does not exist and
// ErrInviteNotFound if the owner has no entry for the email.
func (s *Store) SetInviteState(ctx context.Context, ownerID primitive.ObjectID, counterpartEmail string, invited bool, now time.Time) error {
	email := normalize.Email(counterpartEmail)
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": ownerID, "invites.email": email},
		bson.M{"$set": bson.M{
			"invites.$.invited":       invited,
			"invites.$.date_modified": now,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Tell a missing owner apart from a missing entry.
	if err := s.c.FindOne(ctx, bson.M{"_id": ownerID}).Err(); err != nil {
		return err
	}
	return ErrInviteNotFound
}

// HasAcceptedInviteFor reports whether any user holds an accepted invite
// for the email, i.e. someone has taken this user on as a connection.
func (s *Store) HasAcceptedInviteFor(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"invites": bson.M{"$elemMatch": bson.M{
			"email":   normalize.Email(email),
			"invited": true,
		}},
	}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}
