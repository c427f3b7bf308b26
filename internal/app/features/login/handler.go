// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/app/system/auditlog"
	"github.com/gamifystation/pointsboard/internal/app/system/auth"
	"github.com/gamifystation/pointsboard/internal/app/system/authutil"
	"github.com/gamifystation/pointsboard/internal/app/system/httpjson"
	"github.com/gamifystation/pointsboard/internal/app/system/timeouts"
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

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// HandleLogin handles POST /login. Unknown email and wrong password
// return the same 401 body so the response does not leak which emails
// are registered; the audit trail records the distinction.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.AuditLog.LoginFailedUserNotFound(ctx, r, req.Email)
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	case err != nil:
		h.Log.Error("load user for login failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	if u.PasswordHash == "" || !authutil.CheckPassword(req.Password, u.PasswordHash) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, req.Email)
		httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:         u.ID.Hex(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
	}); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		httpjson.Error(w, http.StatusInternalServerError, "unable to create session")
		return
	}

	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Email)

	httpjson.Write(w, http.StatusOK, loginResponse{
		ID:         u.ID.Hex(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
	})
}
