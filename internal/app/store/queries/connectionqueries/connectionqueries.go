// Package connectionqueries builds the human-facing views over a user's
// invites list: pending invites, accepted connections and name search.
// Each entry is joined back to the counterpart's profile by email.
package connectionqueries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	userstore "github.com/brooky/dazle/internal/app/store/users"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/dustin/go-humanize"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Summary is one counterpart as shown in invite and connection lists.
type Summary struct {
	ID              primitive.ObjectID `json:"_id"`
	FirstName       string             `json:"firstname"`
	LastName        string             `json:"lastname"`
	PhotoURL        string             `json:"photo_url"`
	Position        string             `json:"position"`
	TotalConnection int64              `json:"total_connection"`

	// Set for accepted connections only.
	DateConnected *time.Time `json:"date_connected,omitempty"`
	TimeConnected string     `json:"time_connected,omitempty"`
}

// InvitesResult is returned by ReadInvite.
type InvitesResult struct {
	outcome.Base
	Invites []Summary `json:"invites"`
}

// ConnectionsResult is returned by ReadMyConnection.
type ConnectionsResult struct {
	outcome.Base
	MyConnection []Summary `json:"my_connection"`
}

// SearchResult is returned by SearchUser.
type SearchResult struct {
	outcome.Base
	Data []string `json:"data"`
}

// Queries reads connection views from the users collection.
type Queries struct {
	users *userstore.Store
	now   func() time.Time
}

// New creates Queries over the users store.
func New(users *userstore.Store) *Queries {
	return &Queries{users: users, now: time.Now}
}

// WithClock replaces the time source used for relative times.
func (q *Queries) WithClock(now func() time.Time) *Queries {
	q.now = now
	return q
}

func notFound() outcome.Base {
	return outcome.Fail(outcome.NotFound, outcome.StatusFail)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Pure helpers                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// DisplayName is "firstname lastname".
func DisplayName(first, last string) string {
	return first + " " + last
}

// MatchesName reports whether filter occurs in name, ignoring case.
// An empty filter matches everything.
func MatchesName(name, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	return strings.Contains(text.Fold(name), text.Fold(filter))
}

// TeamSize turns a same-license user count into the counterpart's
// connection count. Brokers do not count themselves.
func TeamSize(sameLicense int64, position string) int64 {
	if position == models.PositionBroker && sameLicense > 0 {
		return sameLicense - 1
	}
	return sameLicense
}

// RelativeTime renders then relative to now, e.g. "3 days ago".
func RelativeTime(then, now time.Time) string {
	return humanize.RelTime(then, now, "ago", "from now")
}

// selectEntries keeps entries with the wanted flag, dropping self-entries.
func selectEntries(owner *models.User, invited bool) []models.InviteEntry {
	var out []models.InviteEntry
	for _, e := range owner.InviteList() {
		if e.Invited != invited {
			continue
		}
		if strings.EqualFold(e.Email, owner.Email) {
			continue
		}
		out = append(out, e)
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| Reads                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// loadOwner returns nil when the owner is missing or has no invites field.
func (q *Queries) loadOwner(ctx context.Context, find func() (*models.User, error)) (*models.User, error) {
	owner, err := find()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}
	if !owner.HasInvitesField() {
		return nil, nil
	}
	return owner, nil
}

// counterpart fetches the entry's counterpart; nil when it no longer exists.
func (q *Queries) counterpart(ctx context.Context, e models.InviteEntry) (*models.User, error) {
	u, err := q.users.GetByEmail(ctx, e.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load counterpart %s: %w", e.Email, err)
	}
	return u, nil
}

func (q *Queries) summaries(ctx context.Context, entries []models.InviteEntry, filter string, accepted bool) ([]Summary, error) {
	out := []Summary{}
	now := q.now()
	for _, e := range entries {
		u, err := q.counterpart(ctx, e)
		if err != nil {
			return nil, err
		}
		if u == nil || !MatchesName(u.DisplayName(), filter) {
			continue
		}

		count, err := q.users.CountByLicense(ctx, u.BrokerLicenseNumber)
		if err != nil {
			return nil, fmt.Errorf("count team for %s: %w", u.Email, err)
		}

		s := Summary{
			ID:              u.ID,
			FirstName:       u.FirstName,
			LastName:        u.LastName,
			PhotoURL:        u.PhotoURL,
			Position:        u.Position,
			TotalConnection: TeamSize(count, u.Position),
		}
		if accepted {
			at := e.DateModified
			s.DateConnected = &at
			s.TimeConnected = RelativeTime(at, now)
		}
		out = append(out, s)
	}
	return out, nil
}

// ReadInvite lists the pending invites of the user with the given email,
// optionally filtered by counterpart name. Order follows the invites list.
func (q *Queries) ReadInvite(ctx context.Context, email, filterByName string) (InvitesResult, error) {
	owner, err := q.loadOwner(ctx, func() (*models.User, error) { return q.users.GetByEmail(ctx, email) })
	if err != nil {
		return InvitesResult{}, err
	}
	if owner == nil {
		return InvitesResult{Base: notFound()}, nil
	}

	list, err := q.summaries(ctx, selectEntries(owner, false), filterByName, false)
	if err != nil {
		return InvitesResult{}, err
	}
	return InvitesResult{Base: outcome.OK(outcome.StatusSuccess), Invites: list}, nil
}

// ReadMyConnection lists accepted connections of the user with the given
// email, with when each was connected.
func (q *Queries) ReadMyConnection(ctx context.Context, email, filterByName string) (ConnectionsResult, error) {
	owner, err := q.loadOwner(ctx, func() (*models.User, error) { return q.users.GetByEmail(ctx, email) })
	if err != nil {
		return ConnectionsResult{}, err
	}
	if owner == nil {
		return ConnectionsResult{Base: notFound()}, nil
	}

	list, err := q.summaries(ctx, selectEntries(owner, true), filterByName, true)
	if err != nil {
		return ConnectionsResult{}, err
	}
	return ConnectionsResult{Base: outcome.OK(outcome.StatusSuccess), MyConnection: list}, nil
}

// SearchUser returns the display names of userID's counterparts with the
// given invited flag whose name contains pattern.
func (q *Queries) SearchUser(ctx context.Context, userID, pattern string, invited bool) (SearchResult, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return SearchResult{Base: notFound()}, nil
	}
	owner, err := q.loadOwner(ctx, func() (*models.User, error) { return q.users.GetByID(ctx, id) })
	if err != nil {
		return SearchResult{}, err
	}
	if owner == nil {
		return SearchResult{Base: notFound()}, nil
	}

	names := []string{}
	for _, e := range selectEntries(owner, invited) {
		u, err := q.counterpart(ctx, e)
		if err != nil {
			return SearchResult{}, err
		}
		if u == nil {
			continue
		}
		name := u.DisplayName()
		if MatchesName(name, pattern) {
			names = append(names, name)
		}
	}
	return SearchResult{Base: outcome.OK(outcome.StatusSuccess), Data: names}, nil
}
