// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/gamifystation/pointsboard/internal/app/system/auditlog"
	"github.com/gamifystation/pointsboard/internal/app/system/auth"
	"github.com/gamifystation/pointsboard/internal/app/system/authz"
	"github.com/gamifystation/pointsboard/internal/app/system/httpjson"
	"go.uber.org/zap"
)

type Handler struct {
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Log:        logger,
	}
}

// HandleLogout handles POST /logout. Signing out an anonymous caller is
// a no-op success; the session cookie is cleared either way.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if _, _, userID, ok := authz.UserCtx(r); ok {
		h.AuditLog.Logout(r.Context(), r, userID)
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("clear session failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "unable to clear session")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]string{"status": "signed_out"})
}
