package users_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brooky/dazle/internal/app/features/users"
	userstore "github.com/brooky/dazle/internal/app/store/users"
	"github.com/brooky/dazle/internal/app/system/authtoken"
	"github.com/brooky/dazle/internal/app/system/invites"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/app/system/ratelimit"
	"github.com/brooky/dazle/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const adminLicense = "1234567890"

type userResp struct {
	Success   bool   `json:"success"`
	ErrorType string `json:"error_type"`
	Status    string `json:"status"`
	Token     string `json:"token"`
	User      *struct {
		ID        string `json:"_id"`
		Email     string `json:"email"`
		Position  string `json:"position"`
		IsNewUser bool   `json:"is_new_user"`
		FirstName string `json:"firstname"`
		LastName  string `json:"lastname"`
		Password  string `json:"password"`

		BrokerLicenseNumber string `json:"broker_license_number"`
		MobileNumber        string `json:"mobile_number"`
		AboutMe             string `json:"about_me"`
	} `json:"user"`
	Broker *struct {
		ID string `json:"_id"`
	} `json:"broker"`
}

func newTokens(t *testing.T) *authtoken.Service {
	t.Helper()
	svc, err := authtoken.New(authtoken.Config{Secret: "test-secret", Issuer: "dazle", TTL: time.Hour})
	if err != nil {
		t.Fatalf("authtoken.New: %v", err)
	}
	return svc
}

func newHandler(t *testing.T, db *mongo.Database) *users.Handler {
	t.Helper()
	store := userstore.New(db)
	inv := invites.New(store, nil, zap.NewNop(), adminLicense)
	return users.NewHandler(store, inv, newTokens(t), nil, zap.NewNop())
}

func serve(t *testing.T, fn http.HandlerFunc, req *http.Request) (*testutil.ResponseRecorder, userResp) {
	t.Helper()
	rec := testutil.NewRecorder()
	fn(rec, req)
	var resp userResp
	rec.DecodeJSON(t, &resp)
	return rec, resp
}

func register(t *testing.T, h *users.Handler, first, email, position, license string) userResp {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/users/register", map[string]any{
		"user": map[string]any{
			"firstname":             first,
			"lastname":              "Test",
			"email":                 email,
			"password":              "password123",
			"position":              position,
			"broker_license_number": license,
		},
	})
	rec, resp := serve(t, h.Register, req)
	rec.AssertStatus(t, http.StatusOK)
	if !resp.Success {
		t.Fatalf("register %s failed: %+v", email, resp)
	}
	return resp
}

func TestRegister_Validation(t *testing.T) {
	// Validation runs before any store access.
	h := users.NewHandler(nil, nil, newTokens(t), nil, zap.NewNop())

	tests := []struct {
		name string
		user map[string]any
	}{
		{"missing names", map[string]any{"email": "a@example.com", "password": "password123", "position": "Broker", "broker_license_number": "1"}},
		{"bad email", map[string]any{"firstname": "A", "lastname": "B", "email": "nope", "password": "password123", "position": "Broker", "broker_license_number": "1"}},
		{"short password", map[string]any{"firstname": "A", "lastname": "B", "email": "a@example.com", "password": "short", "position": "Broker", "broker_license_number": "1"}},
		{"bad position", map[string]any{"firstname": "A", "lastname": "B", "email": "a@example.com", "password": "password123", "position": "Manager", "broker_license_number": "1"}},
		{"no license", map[string]any{"firstname": "A", "lastname": "B", "email": "a@example.com", "password": "password123", "position": "Broker"}},
		{"markup in license", map[string]any{"firstname": "A", "lastname": "B", "email": "a@example.com", "password": "password123", "position": "Broker", "broker_license_number": "<b>1</b>"}},
		{"markup in mobile", map[string]any{"firstname": "A", "lastname": "B", "email": "a@example.com", "password": "password123", "position": "Broker", "broker_license_number": "1", "mobile_number": "<a href=x>555</a>"}},
		{"markup-only name", map[string]any{"firstname": "<script>x</script>", "lastname": "B", "email": "a@example.com", "password": "password123", "position": "Broker", "broker_license_number": "1"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/users/register", map[string]any{"user": tc.user})
			rec, resp := serve(t, h.Register, req)
			rec.AssertStatus(t, http.StatusOK)
			if resp.Success || resp.ErrorType != outcome.Validation {
				t.Errorf("expected validation failure, got %+v", resp)
			}
		})
	}
}

func TestRegister_MalformedBody(t *testing.T) {
	h := users.NewHandler(nil, nil, newTokens(t), nil, zap.NewNop())
	rec := testutil.NewRecorder()
	h.Register(rec, testutil.NewJSONRequest(t, "POST", "/users/register", "not an object"))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestRegister_SalespersonSeedsBroker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	broker := fx.CreateBroker(ctx, "Bea", "Broker", "bea@example.com", "B1")

	resp := register(t, h, "Sam", "Sam@Example.com", "salesperson", "B1")
	if resp.Status != "Registration Success" {
		t.Errorf("status: got %q", resp.Status)
	}
	if resp.User == nil || resp.User.Email != "sam@example.com" || !resp.User.IsNewUser {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
	if resp.User.Password != "" {
		t.Error("password must never be serialized")
	}
	claims, err := newTokens(t).Verify(resp.Token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("token uid: got %q, want %q", claims.UserID, resp.User.ID)
	}

	inv := fx.Invites(ctx, broker.ID)
	if len(inv) != 1 || inv[0].Email != "sam@example.com" || inv[0].Invited {
		t.Errorf("expected pending entry on broker, got %+v", inv)
	}
}

func TestRegister_BrokerGetsExistingSalespersonsAndNotifiesAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateBroker(ctx, "app", "admin", "admin@dazle.com", adminLicense)
	fx.CreateSalesperson(ctx, "Sam", "Early", "early@example.com", "B1")

	resp := register(t, h, "Bea", "bea@example.com", "Broker", "B1")

	store := userstore.New(db)
	bea, err := store.GetByEmail(ctx, "bea@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if bea.ID.Hex() != resp.User.ID {
		t.Fatalf("id mismatch")
	}
	inv := bea.InviteList()
	if len(inv) != 1 || inv[0].Email != "early@example.com" || inv[0].Invited {
		t.Errorf("expected pending entry for early salesperson, got %+v", inv)
	}

	adminInv := fx.Invites(ctx, admin.ID)
	if len(adminInv) != 1 || adminInv[0].Email != "bea@example.com" {
		t.Errorf("expected admin entry for new broker, got %+v", adminInv)
	}

	// A broker with no salespersons still gets an (empty) invites field.
	register(t, h, "Lone", "lone@example.com", "Broker", "B9")
	lone, err := store.GetByEmail(ctx, "lone@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if !lone.HasInvitesField() {
		t.Error("expected brokers to carry an invites field")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateBroker(ctx, "Bea", "Broker", "bea@example.com", "B1")

	req := testutil.NewJSONRequest(t, "POST", "/users/register", map[string]any{
		"user": map[string]any{
			"firstname": "Other", "lastname": "Bea", "email": "BEA@example.com",
			"password": "password123", "position": "Broker", "broker_license_number": "B2",
		},
	})
	_, resp := serve(t, h.Register, req)
	if resp.Success || resp.ErrorType != outcome.EmailExist {
		t.Errorf("expected email_exist, got %+v", resp)
	}
}

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)

	register(t, h, "Bea", "bea@example.com", "Broker", "B1")

	tests := []struct {
		name     string
		email    string
		password string
		wantOK   bool
	}{
		{"valid", "BEA@example.com", "password123", true},
		{"wrong password", "bea@example.com", "password124", false},
		{"unknown email", "nobody@example.com", "password123", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/users/login", map[string]any{
				"user": map[string]any{"email": tc.email, "password": tc.password},
			})
			rec, resp := serve(t, h.Login, req)
			rec.AssertStatus(t, http.StatusOK)
			if resp.Success != tc.wantOK {
				t.Fatalf("success: got %v, want %v (%+v)", resp.Success, tc.wantOK, resp)
			}
			if tc.wantOK {
				if resp.Token == "" || resp.Status != "Login success" {
					t.Errorf("unexpected success body: %+v", resp)
				}
			} else if resp.ErrorType != outcome.NotFound {
				t.Errorf("error_type: got %q, want not_found", resp.ErrorType)
			}
		})
	}
}

func TestLogin_Throttled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db)
	h.Limiter = ratelimit.NewLoginLimiter(ratelimit.LoginConfig{PerIP: 100, PerEmail: 2})

	register(t, h, "Bea", "bea@example.com", "Broker", "B1")

	login := func(password string) (*testutil.ResponseRecorder, userResp) {
		req := testutil.NewJSONRequest(t, "POST", "/users/login", map[string]any{
			"user": map[string]any{"email": "bea@example.com", "password": password},
		})
		return serve(t, h.Login, req)
	}

	login("wrong-one")
	login("wrong-two")
	rec, resp := login("password123")
	rec.AssertStatus(t, http.StatusTooManyRequests)
	if resp.Success || resp.ErrorType != outcome.RateLimited {
		t.Errorf("expected rate_limited, got %+v", resp)
	}
}

func TestCheckLicenseNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	broker := fx.CreateBroker(ctx, "Bea", "Broker", "bea@example.com", "B1")

	_, resp := serve(t, h.CheckLicenseNumber, testutil.NewJSONRequest(t, "POST", "/", map[string]string{"broker_license_number": " B1 "}))
	if !resp.Success || resp.Broker == nil || resp.Broker.ID != broker.ID.Hex() {
		t.Errorf("expected broker, got %+v", resp)
	}

	_, resp = serve(t, h.CheckLicenseNumber, testutil.NewJSONRequest(t, "POST", "/", map[string]string{"broker_license_number": "B404"}))
	if resp.Success || resp.ErrorType != outcome.NoBroker {
		t.Errorf("expected no_broker, got %+v", resp)
	}
}

func TestIsAuthenticated_PendingUntilAccepted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	broker := fx.CreateBroker(ctx, "Bea", "Broker", "bea@example.com", "B1")
	sam := register(t, h, "Sam", "sam@example.com", "Salesperson", "B1")

	check := func() userResp {
		_, resp := serve(t, h.IsAuthenticated, testutil.NewJSONRequest(t, "POST", "/", map[string]string{"token": sam.Token}))
		return resp
	}

	if resp := check(); resp.Success || resp.ErrorType != outcome.Pending {
		t.Fatalf("expected pending, got %+v", resp)
	}

	if err := userstore.New(db).SetInviteState(ctx, broker.ID, "sam@example.com", true, time.Now()); err != nil {
		t.Fatalf("SetInviteState failed: %v", err)
	}
	if resp := check(); !resp.Success || resp.Status != "User authenticated success" {
		t.Errorf("expected authenticated, got %+v", resp)
	}

	_, resp := serve(t, h.IsAuthenticated, testutil.NewJSONRequest(t, "POST", "/", map[string]string{"token": "garbage"}))
	if resp.Success || resp.ErrorType != outcome.NotFound {
		t.Errorf("expected not_found for bad token, got %+v", resp)
	}

	// No body at all: the header carries the token.
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("Authorization", "Bearer "+sam.Token)
	_, resp = serve(t, h.IsAuthenticated, req)
	if !resp.Success {
		t.Errorf("expected header token to authenticate, got %+v", resp)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+sam.Token)
	rec, _ := serve(t, h.IsAuthenticated, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	bea := fx.CreateBroker(ctx, "Bea", "Broker", "bea@example.com", "B1")
	fx.CreateBroker(ctx, "Oscar", "Other", "oscar@example.com", "B2")
	caller := testutil.FromModel(bea)

	update := func(user map[string]any, as testutil.TestUser) (*testutil.ResponseRecorder, userResp) {
		req := testutil.WithUser(testutil.NewJSONRequest(t, "PUT", "/users/update", map[string]any{"user": user}), as)
		return serve(t, h.Update, req)
	}

	_, resp := update(map[string]any{"_id": bea.ID.Hex(), "broker_license_number": "B2"}, caller)
	if resp.Success || resp.ErrorType != outcome.BrokerExist {
		t.Errorf("expected broker_exist, got %+v", resp)
	}

	_, resp = update(map[string]any{"_id": bea.ID.Hex(), "firstname": "Beatrice", "about_me": "Condos <b>only</b>", "broker_license_number": "B1"}, caller)
	if !resp.Success || resp.Status != "Update Success" {
		t.Fatalf("expected update success, got %+v", resp)
	}
	if resp.User == nil || resp.User.FirstName != "Beatrice" {
		t.Errorf("unexpected user: %+v", resp.User)
	}

	_, resp = update(map[string]any{"mobile_number": "555-0100"}, caller)
	if !resp.Success {
		t.Fatalf("expected update success, got %+v", resp)
	}

	// Omitted fields keep their stored values.
	_, resp = update(map[string]any{"lastname": "Brokerage"}, caller)
	if !resp.Success || resp.User == nil {
		t.Fatalf("expected update success, got %+v", resp)
	}
	if resp.User.MobileNumber != "555-0100" {
		t.Errorf("mobile_number lost: %q", resp.User.MobileNumber)
	}
	if resp.User.AboutMe == "" {
		t.Error("about_me lost on partial update")
	}
	if resp.User.FirstName != "Beatrice" || resp.User.BrokerLicenseNumber != "B1" || resp.User.LastName != "Brokerage" {
		t.Errorf("unexpected user after partial update: %+v", resp.User)
	}

	_, resp = update(map[string]any{"mobile_number": "<img src=x>"}, caller)
	if resp.Success || resp.ErrorType != outcome.Validation {
		t.Errorf("expected validation failure for markup, got %+v", resp)
	}

	rec, _ := update(map[string]any{"_id": bea.ID.Hex(), "firstname": "Hacker"}, testutil.BrokerUser())
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestIsNewUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sam := fx.CreateSalesperson(ctx, "Sam", "Cruz", "sam@example.com", "B1")

	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/users/is-new-user", map[string]any{
		"user": map[string]any{"email": "sam@example.com", "is_new_user": false},
	}), testutil.FromModel(sam))
	_, resp := serve(t, h.IsNewUser, req)
	if !resp.Success || resp.User == nil || resp.User.IsNewUser {
		t.Errorf("expected is_new_user=false, got %+v", resp)
	}
}
