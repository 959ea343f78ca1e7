package verification_test

import (
	"net/http"
	"testing"

	"github.com/brooky/dazle/internal/app/features/verification"
	verificationstore "github.com/brooky/dazle/internal/app/store/verification"
	"github.com/brooky/dazle/internal/app/system/outcome"
	"github.com/brooky/dazle/internal/domain/models"
	"github.com/brooky/dazle/internal/testutil"
	"go.uber.org/zap"
)

type verificationResp struct {
	Success   bool                 `json:"success"`
	ErrorType string               `json:"error_type"`
	Status    string               `json:"status"`
	Property  *models.Verification `json:"property"`
}

func TestCreateVerification(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := verification.NewHandler(verificationstore.New(db), zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	bea := fx.CreateBroker(ctx, "Bea", "Broker", "bea@example.com", "B1")
	caller := testutil.FromModel(bea)

	status := func() verificationResp {
		req := testutil.WithUser(testutil.NewJSONRequest(t, "GET", "/verification/status", nil), caller)
		rec := testutil.NewRecorder()
		h.Status(rec, req)
		rec.AssertStatus(t, http.StatusOK)
		var resp verificationResp
		rec.DecodeJSON(t, &resp)
		return resp
	}

	if resp := status(); resp.Success || resp.ErrorType != outcome.NotFound {
		t.Errorf("expected not_found before any request, got %+v", resp)
	}

	send := func(body map[string]any) *testutil.ResponseRecorder {
		req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/verification/create-verification", body), caller)
		rec := testutil.NewRecorder()
		h.CreateVerification(rec, req)
		return rec
	}

	rec := send(map[string]any{"verification": map[string]any{"attachment": "id-front.png", "status": "approved"}})
	rec.AssertStatus(t, http.StatusOK)
	var resp verificationResp
	rec.DecodeJSON(t, &resp)
	if !resp.Success || resp.Status != "Verification Created" || resp.Property == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Property.Status != models.VerificationPending {
		t.Errorf("status = %q, want pending", resp.Property.Status)
	}
	if resp.Property.UserID != bea.ID.Hex() {
		t.Errorf("user_id = %q", resp.Property.UserID)
	}

	rec = send(map[string]any{"verification": map[string]any{"attachment": " "}})
	var missing verificationResp
	rec.DecodeJSON(t, &missing)
	if missing.Success || missing.ErrorType != outcome.MissingData {
		t.Errorf("expected missing_data, got %+v", missing)
	}

	send(map[string]any{"verification": map[string]any{"user_id": "someoneelse", "attachment": "x.png"}}).
		AssertStatus(t, http.StatusUnauthorized)

	if got := status(); !got.Success || got.Property == nil || got.Property.Attachment != "id-front.png" {
		t.Errorf("status = %+v", got)
	}
}
