package connectionqueries_test

import (
	"testing"
	"time"

	"github.com/brooky/dazle/internal/app/store/queries/connectionqueries"
	userstore "github.com/brooky/dazle/internal/app/store/users"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newQueries(t *testing.T, fx *testutil.Fixtures) *connectionqueries.Queries {
	t.Helper()
	return connectionqueries.New(userstore.New(fx.DB())).WithClock(func() time.Time { return now })
}

func TestReadInvite_PendingOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	q := newQueries(t, fx)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	broker := fx.CreateBroker(ctx, "Bea", "Broker", "bea@example.com", "B1")
	sam := fx.CreateSalesperson(ctx, "Samantha", "Cruz", "sam@example.com", "B1")
	john := fx.CreateSalesperson(ctx, "John", "Doe", "john@example.com", "B1")
	otherBroker := fx.CreateBroker(ctx, "Oscar", "Other", "oscar@example.com", "B2")
	fx.CreateSalesperson(ctx, "Tim", "Team", "tim@example.com", "B2")

	fx.AddInvite(ctx, broker.ID, john.Email, false, now)
	fx.AddInvite(ctx, broker.ID, sam.Email, true, now)
	fx.AddInvite(ctx, broker.ID, otherBroker.Email, false, now)
	fx.AddInvite(ctx, broker.ID, "gone@example.com", false, now)

	res, err := q.ReadInvite(ctx, "BEA@example.com", "")
	if err != nil {
		t.Fatalf("ReadInvite failed: %v", err)
	}
	if !res.Success || res.Status != outcome.StatusSuccess {
		t.Fatalf("unexpected result: %+v", res.Base)
	}
	if len(res.Invites) != 2 {
		t.Fatalf("expected 2 invites (missing counterpart skipped), got %d", len(res.Invites))
	}

	// Array order.
	if res.Invites[0].ID != john.ID || res.Invites[1].ID != otherBroker.ID {
		t.Errorf("unexpected order: %v, %v", res.Invites[0].FirstName, res.Invites[1].FirstName)
	}
	// John: 3 users share B1 (broker + 2 salespersons).
	if res.Invites[0].TotalConnection != 3 {
		t.Errorf("john total_connection: got %d, want 3", res.Invites[0].TotalConnection)
	}
	// Oscar is a Broker: 2 users share B2, minus himself.
	if res.Invites[1].TotalConnection != 1 {
		t.Errorf("oscar total_connection: got %d, want 1", res.Invites[1].TotalConnection)
	}
	if res.Invites[0].DateConnected != nil || res.Invites[0].TimeConnected != "" {
		t.Error("pending invites should not carry connection time")
	}
}

func TestReadInvite_FilterWithNoMatchIsEmptySuccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	q := newQueries(t, fx)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	broker := fx.CreateBroker(ctx, "Bea", "Broker", "bea@example.com", "B1")
	sam := fx.CreateSalesperson(ctx, "Samantha", "Cruz", "sam@example.com", "B1")
	fx.AddInvite(ctx, broker.ID, sam.Email, false, now)

	res, err := q.ReadInvite(ctx, broker.Email, "zzz")
	if err != nil {
		t.Fatalf("ReadInvite failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %+v", res.Base)
	}
	if res.Invites == nil || len(res.Invites) != 0 {
		t.Errorf("expected empty list, got %#v", res.Invites)
	}
}

func TestReadInvite_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	q := newQueries(t, fx)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Salespersons carry no invites field.
	sp := fx.CreateSalesperson(ctx, "Sam", "Cruz", "sam@example.com", "B1")

	for _, email := range []string{"nobody@example.com", sp.Email} {
		res, err := q.ReadInvite(ctx, email, "")
		if err != nil {
			t.Fatalf("ReadInvite(%s) failed: %v", email, err)
		}
		if res.Success || res.ErrorType != outcome.NotFound || res.Status != outcome.StatusFail {
			t.Errorf("ReadInvite(%s): expected not_found, got %+v", email, res.Base)
		}
	}
}

func TestReadMyConnection_AcceptedWithoutSelf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	q := newQueries(t, fx)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateBroker(ctx, "app", "admin", "admin@dazle.com", "1234567890")
	bea := fx.CreateBroker(ctx, "Bea", "Broker", "bea@example.com", "B1")
	pending := fx.CreateBroker(ctx, "Pat", "Pending", "pat@example.com", "B3")

	connectedAt := now.Add(-72 * time.Hour)
	fx.AddInvite(ctx, admin.ID, admin.Email, true, now)
	fx.AddInvite(ctx, admin.ID, bea.Email, true, connectedAt)
	fx.AddInvite(ctx, admin.ID, pending.Email, false, now)

	res, err := q.ReadMyConnection(ctx, admin.Email, "")
	if err != nil {
		t.Fatalf("ReadMyConnection failed: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %+v", res.Base)
	}
	if len(res.MyConnection) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(res.MyConnection))
	}
	c := res.MyConnection[0]
	if c.ID != bea.ID {
		t.Errorf("expected Bea, got %s %s", c.FirstName, c.LastName)
	}
	if c.DateConnected == nil || !c.DateConnected.Equal(connectedAt) {
		t.Errorf("date_connected: got %v, want %v", c.DateConnected, connectedAt)
	}
	if c.TimeConnected != "3 days ago" {
		t.Errorf("time_connected: got %q, want %q", c.TimeConnected, "3 days ago")
	}

	invites, err := q.ReadInvite(ctx, admin.Email, "")
	if err != nil {
		t.Fatalf("ReadInvite failed: %v", err)
	}
	if len(invites.Invites) != 1 || invites.Invites[0].ID != pending.ID {
		t.Errorf("expected only Pat pending, got %+v", invites.Invites)
	}
}

func TestSearchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	q := newQueries(t, fx)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	broker := fx.CreateBroker(ctx, "Bea", "Broker", "bea@example.com", "B1")
	sam := fx.CreateSalesperson(ctx, "Samantha", "Cruz", "sam@example.com", "B1")
	john := fx.CreateSalesperson(ctx, "John", "Doe", "john@example.com", "B1")
	samuel := fx.CreateSalesperson(ctx, "Samuel", "Accepted", "samuel@example.com", "B1")
	fx.AddInvite(ctx, broker.ID, sam.Email, false, now)
	fx.AddInvite(ctx, broker.ID, john.Email, false, now)
	fx.AddInvite(ctx, broker.ID, samuel.Email, true, now)

	tests := []struct {
		name    string
		pattern string
		invited bool
		want    []string
	}{
		{"pending sam", "sam", false, []string{"Samantha Cruz"}},
		{"accepted sam", "SAM", true, []string{"Samuel Accepted"}},
		{"all pending", "", false, []string{"Samantha Cruz", "John Doe"}},
		{"no match", "zzz", false, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := q.SearchUser(ctx, broker.ID.Hex(), tc.pattern, tc.invited)
			if err != nil {
				t.Fatalf("SearchUser failed: %v", err)
			}
			if !res.Success {
				t.Fatalf("expected success, got %+v", res.Base)
			}
			if len(res.Data) != len(tc.want) {
				t.Fatalf("got %v, want %v", res.Data, tc.want)
			}
			for i := range tc.want {
				if res.Data[i] != tc.want[i] {
					t.Errorf("data[%d]: got %q, want %q", i, res.Data[i], tc.want[i])
				}
			}
		})
	}

	res, err := q.SearchUser(ctx, primitive.NewObjectID().Hex(), "sam", false)
	if err != nil {
		t.Fatalf("SearchUser failed: %v", err)
	}
	if res.Success || res.ErrorType != outcome.NotFound {
		t.Errorf("expected not_found for unknown user, got %+v", res.Base)
	}
}
