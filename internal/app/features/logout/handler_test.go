package logout_test

import (
	"net/http"
	"testing"

	"github.com/gamifystation/pointsboard/internal/app/features/logout"
	"github.com/gamifystation/pointsboard/internal/app/system/auth"
	"github.com/gamifystation/pointsboard/internal/testutil"
	"go.uber.org/zap"
)

func TestHandleLogout(t *testing.T) {
	sessionMgr, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	h := logout.NewHandler(sessionMgr, nil, zap.NewNop())

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/logout", testutil.StudentUser())
	rec := testutil.NewRecorder()
	h.HandleLogout(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "signed_out")

	// The session cookie is expired.
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an expired test-session cookie, got %v", rec.Result().Cookies())
	}
}
