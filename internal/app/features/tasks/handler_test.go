package tasks_test

import (
	"net/http"
	"testing"

	"github.com/gamifystation/pointsboard/internal/app/features/tasks"
	"github.com/gamifystation/pointsboard/internal/app/store/ledger"
	taskstore "github.com/gamifystation/pointsboard/internal/app/store/tasks"
	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/domain/models"
	"github.com/gamifystation/pointsboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*tasks.Handler, *taskstore.Store, *userstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	users := userstore.New(db)
	store := taskstore.New(db)
	h := tasks.NewHandler(store, ledger.New(users), nil, zap.NewNop())
	return h, store, users, testutil.NewFixtures(t, db)
}

func TestHandleCreate(t *testing.T) {
	h, _, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor := fixtures.CreateMentor(ctx, "Maker", "maker@example.com")

	req := testutil.NewJSONRequest(t, http.MethodPost, "/tasks", map[string]any{
		"title":               "  Library cleanup  ",
		"description":         "Reshelve the stacks",
		"category":            "Teamwork",
		"points":              10,
		"required_volunteers": 2,
	})
	req = testutil.WithUser(req, testutil.AsTestUser(mentor))
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)

	rec.AssertStatus(t, http.StatusCreated)

	var resp struct {
		ID         string   `json:"id"`
		Title      string   `json:"title"`
		Status     string   `json:"status"`
		Volunteers []string `json:"volunteers"`
		CreatedBy  string   `json:"created_by"`
	}
	rec.DecodeJSON(t, &resp)

	if resp.Title != "Library cleanup" {
		t.Errorf("title: got %q, want trimmed %q", resp.Title, "Library cleanup")
	}
	if resp.Status != models.TaskPending {
		t.Errorf("status: got %q, want %q", resp.Status, models.TaskPending)
	}
	if len(resp.Volunteers) != 0 {
		t.Errorf("volunteers: got %d, want empty roster", len(resp.Volunteers))
	}
	if resp.CreatedBy != mentor.ID.Hex() {
		t.Errorf("created_by: got %q, want %q", resp.CreatedBy, mentor.ID.Hex())
	}
}

func TestHandleCreate_Invalid(t *testing.T) {
	h, _, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor := fixtures.CreateMentor(ctx, "Strict", "strict@example.com")

	cases := []struct {
		name string
		body map[string]any
	}{
		{"empty title", map[string]any{"title": "   ", "points": 5, "required_volunteers": 1}},
		{"zero points", map[string]any{"title": "Task", "points": 0, "required_volunteers": 1}},
		{"no volunteers needed", map[string]any{"title": "Task", "points": 5, "required_volunteers": 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/tasks", tc.body)
			req = testutil.WithUser(req, testutil.AsTestUser(mentor))
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, req)

			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestServeList(t *testing.T) {
	h, _, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor := fixtures.CreateMentor(ctx, "Lister", "lister@example.com")
	fixtures.CreateTask(ctx, "First", 5, 1, mentor.ID)
	fixtures.CreateTask(ctx, "Second", 5, 1, mentor.ID)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/tasks", testutil.AsTestUser(mentor))
	rec := testutil.NewRecorder()
	h.ServeList(rec, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Tasks []struct {
			Title string `json:"title"`
		} `json:"tasks"`
	}
	rec.DecodeJSON(t, &resp)

	if len(resp.Tasks) != 2 {
		t.Fatalf("tasks: got %d, want 2", len(resp.Tasks))
	}
}

func TestHandleVolunteer(t *testing.T) {
	h, _, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor := fixtures.CreateMentor(ctx, "Owner", "owner@example.com")
	alice := fixtures.CreateStudent(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateStudent(ctx, "Bob", "bob@example.com")
	carol := fixtures.CreateStudent(ctx, "Carol", "carol@example.com")
	task := fixtures.CreateTask(ctx, "Garden duty", 8, 2, mentor.ID)

	volunteer := func(u models.User) *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/tasks/"+task.ID.Hex()+"/volunteer", testutil.AsTestUser(u))
		req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
		rec := testutil.NewRecorder()
		h.HandleVolunteer(rec, req)
		return rec
	}

	rec := volunteer(alice)
	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		Status     string   `json:"status"`
		Volunteers []string `json:"volunteers"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.Status != models.TaskPending || len(resp.Volunteers) != 1 {
		t.Errorf("after first join: got status %q with %d volunteers, want pending with 1", resp.Status, len(resp.Volunteers))
	}

	// The roster fills; the task becomes ready.
	rec = volunteer(bob)
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &resp)
	if resp.Status != models.TaskReady {
		t.Errorf("after roster filled: got status %q, want %q", resp.Status, models.TaskReady)
	}

	// A full roster turns away new hands.
	rec = volunteer(carol)
	rec.AssertStatus(t, http.StatusConflict)

	// Toggling off reopens a slot.
	rec = volunteer(bob)
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &resp)
	if resp.Status != models.TaskPending || len(resp.Volunteers) != 1 {
		t.Errorf("after leaving: got status %q with %d volunteers, want pending with 1", resp.Status, len(resp.Volunteers))
	}
}

func TestHandleVolunteer_NotFound(t *testing.T) {
	h, _, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx, "Lost", "lost@example.com")

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/tasks/bogus/volunteer", testutil.AsTestUser(student))
	req = testutil.WithChiURLParam(req, "id", "not-a-hex-id")
	rec := testutil.NewRecorder()
	h.HandleVolunteer(rec, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleApprove_PaysEachVolunteerOnce(t *testing.T) {
	h, store, users, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor := fixtures.CreateMentor(ctx, "Approver", "approver@example.com")
	alice := fixtures.CreateStudent(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateStudent(ctx, "Bob", "bob@example.com")
	task := fixtures.CreateTask(ctx, "Fence painting", 6, 2, mentor.ID)

	if _, err := store.ToggleVolunteer(ctx, task.ID, alice.ID); err != nil {
		t.Fatalf("ToggleVolunteer(alice): %v", err)
	}
	if _, err := store.ToggleVolunteer(ctx, task.ID, bob.ID); err != nil {
		t.Fatalf("ToggleVolunteer(bob): %v", err)
	}

	approve := func() *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/tasks/"+task.ID.Hex()+"/approve", testutil.AsTestUser(mentor))
		req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
		rec := testutil.NewRecorder()
		h.HandleApprove(rec, req)
		return rec
	}

	rec := approve()
	rec.AssertStatus(t, http.StatusOK)

	for _, u := range []models.User{alice, bob} {
		got, err := users.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetByID(%s): %v", u.Name, err)
		}
		if got.TotalPoints != 6 {
			t.Errorf("%s total: got %d, want 6", u.Name, got.TotalPoints)
		}
		if len(got.Transactions) != 1 {
			t.Errorf("%s transactions: got %d, want 1", u.Name, len(got.Transactions))
		}
	}

	// A replayed approval after a partial failure must not pay twice.
	// Force the status back to ready and approve again; the keyed
	// payouts collapse to no-ops.
	_, err := fixtures.DB().Collection("tasks").UpdateOne(ctx,
		bson.M{"_id": task.ID},
		bson.M{"$set": bson.M{"status": models.TaskReady}})
	if err != nil {
		t.Fatalf("reset task status: %v", err)
	}

	rec = approve()
	rec.AssertStatus(t, http.StatusOK)

	for _, u := range []models.User{alice, bob} {
		got, err := users.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetByID(%s): %v", u.Name, err)
		}
		if got.TotalPoints != 6 {
			t.Errorf("%s total after replay: got %d, want 6", u.Name, got.TotalPoints)
		}
		if len(got.Transactions) != 1 {
			t.Errorf("%s transactions after replay: got %d, want 1", u.Name, len(got.Transactions))
		}
	}
}

func TestHandleApprove_NotReady(t *testing.T) {
	h, _, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor := fixtures.CreateMentor(ctx, "Eager", "eager@example.com")
	task := fixtures.CreateTask(ctx, "Unfilled", 5, 3, mentor.ID)

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/tasks/"+task.ID.Hex()+"/approve", testutil.AsTestUser(mentor))
	req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleApprove(rec, req)

	rec.AssertStatus(t, http.StatusConflict)
}

func TestHandleReject(t *testing.T) {
	h, _, users, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor := fixtures.CreateMentor(ctx, "Decliner", "decliner@example.com")
	alice := fixtures.CreateStudent(ctx, "Alice", "alice@example.com")
	task := fixtures.CreateTask(ctx, "Abandoned", 9, 2, mentor.ID)

	reject := func() *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/tasks/"+task.ID.Hex()+"/reject", testutil.AsTestUser(mentor))
		req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
		rec := testutil.NewRecorder()
		h.HandleReject(rec, req)
		return rec
	}

	// A pending task can be rejected without a full roster.
	rec := reject()
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Status string `json:"status"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.Status != models.TaskRejected {
		t.Errorf("status: got %q, want %q", resp.Status, models.TaskRejected)
	}

	// No points move on rejection.
	got, err := users.GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TotalPoints != 0 {
		t.Errorf("alice total: got %d, want 0", got.TotalPoints)
	}

	// A closed task stays closed.
	rec = reject()
	rec.AssertStatus(t, http.StatusConflict)
}

func TestHandleDelete(t *testing.T) {
	h, _, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentor := fixtures.CreateMentor(ctx, "Remover", "remover@example.com")
	task := fixtures.CreateTask(ctx, "Short-lived", 5, 1, mentor.ID)

	del := func() *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(http.MethodDelete, "/tasks/"+task.ID.Hex(), testutil.AsTestUser(mentor))
		req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
		rec := testutil.NewRecorder()
		h.HandleDelete(rec, req)
		return rec
	}

	rec := del()
	rec.AssertStatus(t, http.StatusOK)

	rec = del()
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestRoutes_RoleGate(t *testing.T) {
	h, _, _, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx, "Gated", "gated@example.com")
	router := tasks.Routes(h)

	body := map[string]any{"title": "Forbidden", "points": 5, "required_volunteers": 1}

	// Anonymous callers are turned away before role checks.
	req := testutil.NewJSONRequest(t, http.MethodPost, "/", body)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusUnauthorized)

	// Students cannot create tasks.
	req = testutil.NewJSONRequest(t, http.MethodPost, "/", body)
	req = testutil.WithUser(req, testutil.AsTestUser(student))
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// But they can read the list.
	req = testutil.NewAuthenticatedRequest(http.MethodGet, "/", testutil.AsTestUser(student))
	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	rec.AssertStatus(t, http.StatusOK)
}
