// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/app/system/auditlog"
	"github.com/gamifystation/pointsboard/internal/app/system/auth"
	"github.com/gamifystation/pointsboard/internal/app/system/authutil"
	"github.com/gamifystation/pointsboard/internal/app/system/httpjson"
	"github.com/gamifystation/pointsboard/internal/app/system/sanitize"
	"github.com/gamifystation/pointsboard/internal/app/system/timeouts"
	"github.com/gamifystation/pointsboard/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Log:        logger,
	}
}

type signupRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type signupResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// HandleSignup handles POST /signup: create the account, then sign the
// new user in so the first page load is already authenticated.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !authutil.ValidEmail(req.Email) {
		httpjson.Error(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("hash password failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not create account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Name:         sanitize.Text(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Department:   sanitize.Text(req.Department),
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		httpjson.Error(w, http.StatusConflict, "an account with this email already exists")
		return
	case err != nil:
		h.Log.Error("create user failed", zap.Error(err), zap.String("email", req.Email))
		httpjson.Error(w, http.StatusBadRequest, "could not create account")
		return
	}

	h.AuditLog.UserCreated(ctx, r, u.ID, u.Role)

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:         u.ID.Hex(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
	}); err != nil {
		h.Log.Error("sign-in after signup failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		// The account exists; the client can log in explicitly.
	}

	httpjson.Write(w, http.StatusCreated, signupResponse{
		ID:         u.ID.Hex(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
	})
}
