// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gamifystation/pointsboard/internal/app/store/ledger"
	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/app/system/authz"
	"github.com/gamifystation/pointsboard/internal/app/system/httpjson"
	"github.com/gamifystation/pointsboard/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Users  *userstore.Store
	Ledger *ledger.Store
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, l *ledger.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  users,
		Ledger: l,
		Log:    logger,
	}
}

type profileResponse struct {
	ID              string                          `json:"id"`
	Name            string                          `json:"name"`
	Email           string                          `json:"email"`
	Role            string                          `json:"role"`
	Department      string                          `json:"department,omitempty"`
	ProfileImageURL string                          `json:"profile_image_url,omitempty"`
	TotalPoints     int                             `json:"total_points"`
	Transactions    int                             `json:"transaction_count"`
	Categories      map[string]ledger.CategoryTotal `json:"categories"`
	CreatedAt       time.Time                       `json:"created_at"`
}

// ServeProfile handles GET /profile: the signed-in user's account with
// the per-category ledger summary.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		// The session outlived the account.
		httpjson.Error(w, http.StatusNotFound, "account not found")
		return
	case err != nil:
		h.Log.Error("load profile failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not load profile")
		return
	}

	httpjson.Write(w, http.StatusOK, profileResponse{
		ID:              u.ID.Hex(),
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		Department:      u.Department,
		ProfileImageURL: u.ProfileImageURL,
		TotalPoints:     u.TotalPoints,
		Transactions:    len(u.Transactions),
		Categories:      ledger.Summarize(u.Transactions),
		CreatedAt:       u.CreatedAt,
	})
}

type imageRequest struct {
	URL string `json:"url"`
}

// HandleSetImage handles PUT /profile/image. An empty url clears the
// image.
func (h *Handler) HandleSetImage(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req imageRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Ledger.SetProfileImage(ctx, userID, req.URL)
	switch {
	case errors.Is(err, ledger.ErrBadImageURL):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, userstore.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "account not found")
		return
	case err != nil:
		h.Log.Error("set profile image failed", zap.Error(err), zap.String("user_id", userID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "could not update profile image")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]string{"profile_image_url": req.URL})
}
