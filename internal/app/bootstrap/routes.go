// internal/app/bootstrap/routes.go
package bootstrap

import (
	"encoding/hex"
	"net/http"

	healthfeature "github.com/gamifystation/pointsboard/internal/app/features/health"
	leaderboardfeature "github.com/gamifystation/pointsboard/internal/app/features/leaderboard"
	loginfeature "github.com/gamifystation/pointsboard/internal/app/features/login"
	logoutfeature "github.com/gamifystation/pointsboard/internal/app/features/logout"
	pointsfeature "github.com/gamifystation/pointsboard/internal/app/features/points"
	profilefeature "github.com/gamifystation/pointsboard/internal/app/features/profile"
	signupfeature "github.com/gamifystation/pointsboard/internal/app/features/signup"
	tasksfeature "github.com/gamifystation/pointsboard/internal/app/features/tasks"
	usersfeature "github.com/gamifystation/pointsboard/internal/app/features/users"
	"github.com/gamifystation/pointsboard/internal/app/store/audit"
	"github.com/gamifystation/pointsboard/internal/app/store/ledger"
	taskstore "github.com/gamifystation/pointsboard/internal/app/store/tasks"
	userstore "github.com/gamifystation/pointsboard/internal/app/store/users"
	"github.com/gamifystation/pointsboard/internal/app/system/auditlog"
	"github.com/gamifystation/pointsboard/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connection, schema setup,
// and the Startup hook have completed. The router is a pure JSON API;
// there is no template or static-file surface.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	sessionKey := appCfg.SessionKey
	if sessionKey == "" && !secure {
		// Dev convenience only: sessions die with the process.
		sessionKey = hex.EncodeToString(securecookie.GenerateRandomKey(32))
		logger.Warn("session_key not set; generated an ephemeral dev key")
	}

	sessionMgr, err := auth.NewSessionManager(sessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Stores share the one database handle; the ledger writes through
	// the user store's collection.
	users := userstore.New(deps.MongoDatabase)
	ledgerStore := ledger.New(users)
	tasks := taskstore.New(deps.MongoDatabase)
	auditStore := audit.New(deps.MongoDatabase)

	auditLog := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:   appCfg.AuditLogAuth,
		Points: appCfg.AuditLogPoints,
		Tasks:  appCfg.AuditLogTasks,
	})

	r := chi.NewRouter()

	// Global auth middleware: loads the SessionUser into context so all
	// handlers can use auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	signupHandler := signupfeature.NewHandler(users, sessionMgr, auditLog, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	loginHandler := loginfeature.NewHandler(users, sessionMgr, auditLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Leaderboard
	leaderboardHandler := leaderboardfeature.NewHandler(users, appCfg.LeaderboardPageSize, logger)
	r.Mount("/leaderboard", leaderboardfeature.Routes(leaderboardHandler))

	// Points ledger
	pointsHandler := pointsfeature.NewHandler(ledgerStore, auditLog, logger)
	r.Mount("/points", pointsfeature.Routes(pointsHandler))

	// Per-user history and badges
	usersHandler := usersfeature.NewHandler(users, tasks, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	// Own profile
	profileHandler := profilefeature.NewHandler(users, ledgerStore, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler))

	// Task board
	tasksHandler := tasksfeature.NewHandler(tasks, ledgerStore, auditLog, logger)
	r.Mount("/tasks", tasksfeature.Routes(tasksHandler))

	return r, nil
}
