// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP/HTTPS
// ports, TLS, logging level, CORS, request limits). AppConfig is
// everything specific to this application: the MongoDB connection,
// session cookies, leaderboard paging, and audit logging levels.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: pointsboard-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Leaderboard paging
	LeaderboardPageSize int // Entries per leaderboard page below the podium

	// Audit logging levels: "all" (db+log), "db", "log", or "off"
	AuditLogAuth   string
	AuditLogPoints string
	AuditLogTasks  string
}
