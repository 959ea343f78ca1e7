package connectionqueries

import (
	"testing"
	"time"

	"github.com/brooky/dazle/internal/domain/models"
)

func TestMatchesName(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   bool
	}{
		{"Samantha Cruz", "", true},
		{"Samantha Cruz", "   ", true},
		{"Samantha Cruz", "sam", true},
		{"Samantha Cruz", "SAM", true},
		{"Samantha Cruz", "a cr", true},
		{"John Doe", "sam", false},
		{"John Doe", "zzz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.filter, func(t *testing.T) {
			if got := MatchesName(tt.name, tt.filter); got != tt.want {
				t.Errorf("MatchesName(%q, %q) = %v, want %v", tt.name, tt.filter, got, tt.want)
			}
		})
	}
}

func TestTeamSize(t *testing.T) {
	tests := []struct {
		count    int64
		position string
		want     int64
	}{
		{5, models.PositionBroker, 4},
		{1, models.PositionBroker, 0},
		{0, models.PositionBroker, 0},
		{5, models.PositionSalesperson, 5},
		{0, models.PositionSalesperson, 0},
	}

	for _, tt := range tests {
		if got := TeamSize(tt.count, tt.position); got != tt.want {
			t.Errorf("TeamSize(%d, %q) = %d, want %d", tt.count, tt.position, got, tt.want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	if got := RelativeTime(now.Add(-72*time.Hour), now); got != "3 days ago" {
		t.Errorf("got %q, want %q", got, "3 days ago")
	}
	if got := RelativeTime(now.Add(-2*time.Hour), now); got != "2 hours ago" {
		t.Errorf("got %q, want %q", got, "2 hours ago")
	}
}

func TestSelectEntries(t *testing.T) {
	list := []models.InviteEntry{
		{Email: "a@example.com", Invited: false},
		{Email: "owner@example.com", Invited: true},
		{Email: "b@example.com", Invited: true},
		{Email: "c@example.com", Invited: false},
	}
	owner := &models.User{Email: "owner@example.com", Invites: &list}

	pending := selectEntries(owner, false)
	accepted := selectEntries(owner, true)

	if len(pending) != 2 || pending[0].Email != "a@example.com" || pending[1].Email != "c@example.com" {
		t.Errorf("pending: got %+v", pending)
	}
	if len(accepted) != 1 || accepted[0].Email != "b@example.com" {
		t.Errorf("accepted: got %+v", accepted)
	}
	// Pending and accepted partition the list minus the self-entry.
	if len(pending)+len(accepted) != len(list)-1 {
		t.Errorf("expected partition of %d entries, got %d", len(list)-1, len(pending)+len(accepted))
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("Samantha", "Cruz"); got != "Samantha Cruz" {
		t.Errorf("got %q", got)
	}
}
