// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureTasks(ctx, db); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	models := []mongo.IndexModel{
		// Login and duplicate checks
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email").SetUnique(true),
		},
		// Case-insensitive name search in the leaderboard
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_name_ci"),
		},
		// Snapshot reads sort by creation time so ranking ties resolve
		// to the longer-standing account
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_users_created"),
		},
	}
	_, err := db.Collection("users").Indexes().CreateMany(ctx, models)
	return err
}

func ensureTasks(ctx context.Context, db *mongo.Database) error {
	models := []mongo.IndexModel{
		// Dashboard lists newest first, optionally by status
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_tasks_status_created"),
		},
		// Completed-task counts per volunteer feed the badge evaluator
		{
			Keys:    bson.D{{Key: "volunteers", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_tasks_volunteer_status"),
		},
	}
	_, err := db.Collection("tasks").Indexes().CreateMany(ctx, models)
	return err
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_time"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_time"),
		},
	}
	_, err := db.Collection("audit_events").Indexes().CreateMany(ctx, models)
	return err
}
