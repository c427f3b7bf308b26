// internal/app/features/tasks/handler.go
package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gamifystation/pointsboard/internal/app/store/ledger"
	taskstore "github.com/gamifystation/pointsboard/internal/app/store/tasks"
	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/app/system/auditlog"
	"github.com/gamifystation/pointsboard/internal/app/system/authz"
	"github.com/gamifystation/pointsboard/internal/app/system/httpjson"
	"github.com/gamifystation/pointsboard/internal/app/system/timeouts"
	"github.com/gamifystation/pointsboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Tasks    *taskstore.Store
	Ledger   *ledger.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(tasks *taskstore.Store, l *ledger.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Tasks:    tasks,
		Ledger:   l,
		AuditLog: audit,
		Log:      logger,
	}
}

type taskView struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Category           string     `json:"category,omitempty"`
	Points             int        `json:"points"`
	RequiredVolunteers int        `json:"required_volunteers"`
	Volunteers         []string   `json:"volunteers"`
	Status             string     `json:"status"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	CreatedBy          string     `json:"created_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func viewOf(t *models.Task) taskView {
	vols := make([]string, len(t.Volunteers))
	for i, v := range t.Volunteers {
		vols[i] = v.Hex()
	}
	v := taskView{
		ID:                 t.ID.Hex(),
		Title:              t.Title,
		Description:        t.Description,
		Category:           t.Category,
		Points:             t.Points,
		RequiredVolunteers: t.RequiredVolunteers,
		Volunteers:         vols,
		Status:             t.Status,
		Deadline:           t.Deadline,
		CreatedAt:          t.CreatedAt,
	}
	if !t.CreatedBy.IsZero() {
		v.CreatedBy = t.CreatedBy.Hex()
	}
	return v
}

// ServeList handles GET /tasks, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Tasks.List(ctx)
	if err != nil {
		h.Log.Error("list tasks failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load tasks")
		return
	}

	views := make([]taskView, len(list))
	for i := range list {
		views[i] = viewOf(&list[i])
	}
	httpjson.Write(w, http.StatusOK, map[string][]taskView{"tasks": views})
}

type createRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Points             int        `json:"points"`
	RequiredVolunteers int        `json:"required_volunteers"`
	Deadline           *time.Time `json:"deadline"`
}

// HandleCreate handles POST /tasks (mentor/council).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Tasks.Create(ctx, models.Task{
		Title:              req.Title,
		Description:        req.Description,
		Category:           req.Category,
		Points:             req.Points,
		RequiredVolunteers: req.RequiredVolunteers,
		Deadline:           req.Deadline,
		CreatedBy:          actorID,
	})
	if err != nil {
		if errors.Is(err, taskstore.ErrInvalidTask) {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error("create task failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not create task")
		return
	}

	h.AuditLog.TaskCreated(ctx, r, t.ID, actorID, t.Points)
	httpjson.Write(w, http.StatusCreated, viewOf(&t))
}

// HandleVolunteer handles POST /tasks/{id}/volunteer: join, or leave
// when already on the roster.
func (h *Handler) HandleVolunteer(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "id must be a valid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, err := h.Tasks.ToggleVolunteer(ctx, taskID, userID)
	switch {
	case errors.Is(err, taskstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "task not found")
		return
	case errors.Is(err, taskstore.ErrTaskClosed):
		httpjson.Error(w, http.StatusConflict, "task is no longer open")
		return
	case errors.Is(err, taskstore.ErrTaskFull):
		httpjson.Error(w, http.StatusConflict, "task is full")
		return
	case errors.Is(err, taskstore.ErrStatusConflict):
		httpjson.Error(w, http.StatusConflict, "task is busy; retry")
		return
	case err != nil:
		h.Log.Error("toggle volunteer failed", zap.Error(err), zap.String("task_id", taskID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not update task")
		return
	}

	httpjson.Write(w, http.StatusOK, viewOf(t))
}

// HandleApprove handles POST /tasks/{id}/approve (mentor/council).
//
// Every volunteer is paid through the ledger before the status flips.
// Payouts carry the key "task:<taskID>:<volunteerID>", so a retried
// approval after a partial failure pays nobody twice: already-paid
// volunteers collapse to no-ops and only the missing payouts land.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "id must be a valid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "task not found")
			return
		}
		h.Log.Error("load task for approval failed", zap.Error(err), zap.String("task_id", taskID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not load task")
		return
	}
	if t.Status != models.TaskReady {
		httpjson.Error(w, http.StatusConflict, "only a ready task can be approved")
		return
	}

	reason := t.Category
	if reason == "" {
		reason = "Task: " + t.Title
	}

	for _, volunteerID := range t.Volunteers {
		_, err := h.Ledger.Apply(ctx, ledger.ApplyInput{
			UserID:  volunteerID,
			Points:  t.Points,
			Reason:  reason,
			ActorID: actorID,
			Key:     fmt.Sprintf("task:%s:%s", t.ID.Hex(), volunteerID.Hex()),
		})
		if err != nil && !errors.Is(err, userstore.ErrNotFound) {
			h.Log.Error("volunteer payout failed",
				zap.Error(err),
				zap.String("task_id", t.ID.Hex()),
				zap.String("volunteer_id", volunteerID.Hex()))
			httpjson.Error(w, http.StatusInternalServerError, "payout failed; retry the approval")
			return
		}
		// A vanished account forfeits its payout; the approval proceeds.
	}

	approved, err := h.Tasks.SetStatus(ctx, t.ID, models.TaskReady, models.TaskApproved)
	switch {
	case errors.Is(err, taskstore.ErrStatusConflict):
		httpjson.Error(w, http.StatusConflict, "task status changed; approval not applied")
		return
	case errors.Is(err, taskstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "task not found")
		return
	case err != nil:
		h.Log.Error("approve task failed", zap.Error(err), zap.String("task_id", t.ID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not approve task")
		return
	}

	h.AuditLog.TaskApproved(ctx, r, t.ID, actorID, t.Points, len(t.Volunteers))
	httpjson.Write(w, http.StatusOK, viewOf(approved))
}

// HandleReject handles POST /tasks/{id}/reject (mentor/council). Open
// tasks in either state can be rejected; no points move.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "id must be a valid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rejected, err := h.Tasks.SetStatus(ctx, taskID, models.TaskReady, models.TaskRejected)
	if errors.Is(err, taskstore.ErrStatusConflict) {
		rejected, err = h.Tasks.SetStatus(ctx, taskID, models.TaskPending, models.TaskRejected)
	}
	switch {
	case errors.Is(err, taskstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "task not found")
		return
	case errors.Is(err, taskstore.ErrStatusConflict):
		httpjson.Error(w, http.StatusConflict, "task is already closed")
		return
	case err != nil:
		h.Log.Error("reject task failed", zap.Error(err), zap.String("task_id", taskID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not reject task")
		return
	}

	h.AuditLog.TaskRejected(ctx, r, taskID, actorID)
	httpjson.Write(w, http.StatusOK, viewOf(rejected))
}

// HandleDelete handles DELETE /tasks/{id} (mentor/council).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "id must be a valid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "task not found")
			return
		}
		h.Log.Error("delete task failed", zap.Error(err), zap.String("task_id", taskID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not delete task")
		return
	}

	h.AuditLog.TaskDeleted(ctx, r, taskID, actorID)
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}
