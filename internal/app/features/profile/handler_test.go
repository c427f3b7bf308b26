package profile_test

import (
	"net/http"
	"testing"

	"github.com/gamifystation/pointsboard/internal/app/features/profile"
	"github.com/gamifystation/pointsboard/internal/app/store/ledger"
	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/domain/models"
	"github.com/gamifystation/pointsboard/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*profile.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	users := userstore.New(db)
	h := profile.NewHandler(users, ledger.New(users), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func TestServeProfile(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUserWithLedger(ctx, "Profiled", "profiled@example.com", models.RoleStudent, []models.Transaction{
		{Points: 4, Reason: "Teamwork"},
		{Points: 3, Reason: "Teamwork"},
		{Points: -2, Reason: "Late Submission"},
	})

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/profile", testutil.AsTestUser(u))
	rec := testutil.NewRecorder()
	h.ServeProfile(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		TotalPoints int `json:"total_points"`
		Categories  map[string]struct {
			Points int `json:"points"`
			Count  int `json:"count"`
		} `json:"categories"`
	}
	rec.DecodeJSON(t, &resp)

	if resp.TotalPoints != 5 {
		t.Errorf("total_points: got %d, want 5", resp.TotalPoints)
	}
	if got := resp.Categories["Teamwork"]; got.Points != 7 || got.Count != 2 {
		t.Errorf("Teamwork summary: got %+v, want {7 2}", got)
	}
}

func TestServeProfile_Anonymous(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/profile", nil)
	rec := testutil.NewRecorder()
	h.ServeProfile(rec, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestHandleSetImage(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateStudent(ctx, "Pictured", "pictured@example.com")

	req := testutil.NewJSONRequest(t, http.MethodPut, "/profile/image", map[string]string{
		"url": "https://img.example.com/me.png",
	})
	req = testutil.WithUser(req, testutil.AsTestUser(u))
	rec := testutil.NewRecorder()
	h.HandleSetImage(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	// Rejects a relative URL.
	req = testutil.NewJSONRequest(t, http.MethodPut, "/profile/image", map[string]string{
		"url": "/static/me.png",
	})
	req = testutil.WithUser(req, testutil.AsTestUser(u))
	rec = testutil.NewRecorder()
	h.HandleSetImage(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}
