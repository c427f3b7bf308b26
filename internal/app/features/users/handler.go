// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gamifystation/pointsboard/internal/app/badges"
	taskstore "github.com/gamifystation/pointsboard/internal/app/store/tasks"
	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/app/system/httpjson"
	"github.com/gamifystation/pointsboard/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Users *userstore.Store
	Tasks *taskstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, tasks *taskstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Users: users,
		Tasks: tasks,
		Log:   logger,
	}
}

type transactionView struct {
	Timestamp time.Time `json:"timestamp"`
	Points    int       `json:"points"`
	Reason    string    `json:"reason"`
	ActorID   string    `json:"actor_id,omitempty"`
}

type transactionsResponse struct {
	UserID       string            `json:"user_id"`
	TotalPoints  int               `json:"total_points"`
	Transactions []transactionView `json:"transactions"`
}

// ServeTransactions handles GET /users/{id}/transactions, newest first.
func (h *Handler) ServeTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "id must be a valid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "account not found")
		return
	case err != nil:
		h.Log.Error("load account for transactions failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not load transactions")
		return
	}

	// Stored oldest-first; the view wants newest-first.
	views := make([]transactionView, 0, len(u.Transactions))
	for i := len(u.Transactions) - 1; i >= 0; i-- {
		t := u.Transactions[i]
		v := transactionView{
			Timestamp: t.Timestamp,
			Points:    t.Points,
			Reason:    t.Reason,
		}
		if !t.ActorID.IsZero() {
			v.ActorID = t.ActorID.Hex()
		}
		views = append(views, v)
	}

	httpjson.Write(w, http.StatusOK, transactionsResponse{
		UserID:       u.ID.Hex(),
		TotalPoints:  u.TotalPoints,
		Transactions: views,
	})
}

type badgesResponse struct {
	UserID            string              `json:"user_id"`
	CompletedTasks    int                 `json:"completed_tasks"`
	CollectionPercent int                 `json:"collection_percent"`
	Badges            []badges.Evaluation `json:"badges"`
}

// ServeBadges handles GET /users/{id}/badges: the catalog evaluated
// against the user's approved-task count.
func (h *Handler) ServeBadges(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "id must be a valid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "account not found")
			return
		}
		h.Log.Error("load account for badges failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not load badges")
		return
	}

	count, err := h.Tasks.CountCompletedFor(ctx, userID)
	if err != nil {
		h.Log.Error("count completed tasks failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not load badges")
		return
	}

	httpjson.Write(w, http.StatusOK, badgesResponse{
		UserID:            userID.Hex(),
		CompletedTasks:    count,
		CollectionPercent: badges.CollectionPercent(count, badges.Catalog),
		Badges:            badges.Evaluate(count, badges.Catalog),
	})
}
