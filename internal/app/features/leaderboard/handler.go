// internal/app/features/leaderboard/handler.go
package leaderboard

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gamifystation/pointsboard/internal/app/ranking"
	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/app/system/httpjson"
	"github.com/gamifystation/pointsboard/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type Handler struct {
	Users    *userstore.Store
	PageSize int
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, pageSize int, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		PageSize: pageSize,
		Log:      logger,
	}
}

// Serve handles GET /leaderboard. The board is recomputed from a fresh
// account snapshot on every request; filters never error, they narrow.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	accounts, err := h.Users.List(ctx)
	if err != nil {
		h.Log.Error("list accounts for leaderboard failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load leaderboard")
		return
	}

	start, _ := strconv.Atoi(query.Get(r, "start"))

	board := ranking.Compute(accounts, ranking.Filters{
		Search:     query.Get(r, "search"),
		Role:       query.Get(r, "role"),
		Department: query.Get(r, "department"),
		Period:     query.Get(r, "period"),
		Start:      start,
		PageSize:   h.PageSize,
	})

	httpjson.Write(w, http.StatusOK, board)
}
