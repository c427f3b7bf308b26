package users_test

import (
	"net/http"
	"testing"
	"time"

	userfeature "github.com/gamifystation/pointsboard/internal/app/features/users"
	taskstore "github.com/gamifystation/pointsboard/internal/app/store/tasks"
	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/domain/models"
	"github.com/gamifystation/pointsboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*userfeature.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := userfeature.NewHandler(userstore.New(db), taskstore.New(db), zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func TestServeTransactions_NewestFirst(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	u := fixtures.CreateUserWithLedger(ctx, "History User", "history@example.com", models.RoleStudent, []models.Transaction{
		{Points: 4, Reason: "Teamwork", Timestamp: now.Add(-2 * time.Hour)},
		{Points: -1, Reason: "Late Submission", Timestamp: now.Add(-1 * time.Hour)},
		{Points: 7, Reason: "Leadership Award", Timestamp: now},
	})

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/users/"+u.ID.Hex()+"/transactions", testutil.StudentUser())
	req = testutil.WithChiURLParam(req, "id", u.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeTransactions(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		TotalPoints  int `json:"total_points"`
		Transactions []struct {
			Points int    `json:"points"`
			Reason string `json:"reason"`
		} `json:"transactions"`
	}
	rec.DecodeJSON(t, &resp)

	if resp.TotalPoints != 10 {
		t.Errorf("total_points: got %d, want 10", resp.TotalPoints)
	}
	if len(resp.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(resp.Transactions))
	}
	if resp.Transactions[0].Reason != "Leadership Award" || resp.Transactions[2].Reason != "Teamwork" {
		t.Errorf("expected newest-first ordering, got %+v", resp.Transactions)
	}
}

func TestServeTransactions_NotFound(t *testing.T) {
	h, _ := newHandler(t)

	id := primitive.NewObjectID().Hex()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/users/"+id+"/transactions", testutil.StudentUser())
	req = testutil.WithChiURLParam(req, "id", id)
	rec := testutil.NewRecorder()
	h.ServeTransactions(rec, req)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeBadges(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx, "Badge Hunter", "hunter@example.com")
	creator := primitive.NewObjectID()

	// Five approved tasks with this volunteer → "social" tier earned.
	tasks := taskstore.New(fixtures.DB())
	for i := 0; i < 5; i++ {
		task := fixtures.CreateTask(ctx, "Badge Task", 5, 1, creator)
		if _, err := tasks.ToggleVolunteer(ctx, task.ID, student.ID); err != nil {
			t.Fatalf("ToggleVolunteer failed: %v", err)
		}
		if _, err := tasks.SetStatus(ctx, task.ID, models.TaskReady, models.TaskApproved); err != nil {
			t.Fatalf("SetStatus failed: %v", err)
		}
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/users/"+student.ID.Hex()+"/badges", testutil.StudentUser())
	req = testutil.WithChiURLParam(req, "id", student.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeBadges(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		CompletedTasks int `json:"completed_tasks"`
		Badges         []struct {
			ID     string `json:"id"`
			Earned bool   `json:"earned"`
		} `json:"badges"`
	}
	rec.DecodeJSON(t, &resp)

	if resp.CompletedTasks != 5 {
		t.Errorf("completed_tasks: got %d, want 5", resp.CompletedTasks)
	}
	earned := map[string]bool{}
	for _, b := range resp.Badges {
		earned[b.ID] = b.Earned
	}
	if !earned["starter"] || !earned["social"] {
		t.Errorf("expected starter and social earned, got %v", earned)
	}
	if earned["first-ten"] {
		t.Error("first-ten should not be earned at 5 tasks")
	}
}

func TestServeBadges_BadID(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/users/junk/badges", testutil.StudentUser())
	req = testutil.WithChiURLParam(req, "id", "junk")
	rec := testutil.NewRecorder()
	h.ServeBadges(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}
