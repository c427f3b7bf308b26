// internal/app/features/points/handler.go
package points

import (
	"context"
	"errors"
	"net/http"

	"github.com/gamifystation/pointsboard/internal/app/store/ledger"
	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/app/system/auditlog"
	"github.com/gamifystation/pointsboard/internal/app/system/authz"
	"github.com/gamifystation/pointsboard/internal/app/system/httpjson"
	"github.com/gamifystation/pointsboard/internal/app/system/timeouts"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Ledger   *ledger.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(l *ledger.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Ledger:   l,
		AuditLog: audit,
		Log:      logger,
	}
}

type awardRequest struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
	Reason string `json:"reason"`
	Key    string `json:"key"`
}

type awardResponse struct {
	UserID      string `json:"user_id"`
	TotalPoints int    `json:"total_points"`
	Key         string `json:"key"`
}

// HandleAward handles POST /points: apply a signed point delta to one
// account. When the client does not supply an idempotency key we mint
// one, so a retried response carries the key that made it safe to
// retry.
func (h *Handler) HandleAward(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req awardRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "user_id must be a valid id")
		return
	}

	key := req.Key
	if key == "" {
		key = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	account, err := h.Ledger.Apply(ctx, ledger.ApplyInput{
		UserID:  userID,
		Points:  req.Points,
		Reason:  req.Reason,
		ActorID: actorID,
		Key:     key,
	})
	switch {
	case errors.Is(err, ledger.ErrInvalidTransaction):
		h.AuditLog.PointsRejected(ctx, r, actorID, req.Points, "invalid transaction")
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, userstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "account not found")
		return
	case errors.Is(err, ledger.ErrVersionConflict):
		h.Log.Warn("award lost version race",
			zap.String("user_id", req.UserID),
			zap.Int("points", req.Points))
		httpjson.Error(w, http.StatusConflict, "account is busy; retry the award")
		return
	case err != nil:
		h.Log.Error("apply transaction failed", zap.Error(err), zap.String("user_id", req.UserID))
		httpjson.Error(w, http.StatusInternalServerError, "could not record transaction")
		return
	}

	h.AuditLog.PointsAwarded(ctx, r, userID, actorID, req.Points, req.Reason)

	httpjson.Write(w, http.StatusOK, awardResponse{
		UserID:      account.ID.Hex(),
		TotalPoints: account.TotalPoints,
		Key:         key,
	})
}

// ServeReasons handles GET /points/reasons: the known award categories
// for the client's award form.
func (h *Handler) ServeReasons(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string][]string{"reasons": ledger.KnownReasons})
}
