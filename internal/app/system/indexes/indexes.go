// Package indexes ensures the MongoDB indexes the application relies on.
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll is called at startup. Each ensure* function is idempotent.
// Errors are aggregated so every problem is visible and startup can fail
// fast.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureTeams(ctx, db); err != nil {
		problems = append(problems, "teams: "+err.Error())
	}
	if err := ensureTasks(ctx, db); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}
	if err := ensureAuditLog(ctx, db); err != nil {
		problems = append(problems, "audit_log: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	logger.Info("MongoDB indexes ensured", zap.String("database", db.Name()))
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("users")
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Email must be unique across all users; this is also what keeps
		// duplicate registration atomic.
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Team roster lookups and the reconcile pass.
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}},
			Options: options.Index().SetName("idx_users_team"),
		},
		// Admin user lists sorted by folded name, stable tiebreak.
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_nameci__id"),
		},
	})
	return err
}

func ensureTeams(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("teams")
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Team names are globally unique (case/diacritics folded via name_ci).
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_teams_nameci"),
		},
		// Membership reverse lookups ("which team lists this user").
		{
			Keys:    bson.D{{Key: "members", Value: 1}},
			Options: options.Index().SetName("idx_teams_members"),
		},
	})
	return err
}

func ensureTasks(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("tasks")
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Member task lists.
		{
			Keys:    bson.D{{Key: "assigned_to", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_tasks_assignee__id"),
		},
		// Lead task lists (team-scoped).
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_tasks_team__id"),
		},
	})
	return err
}

func ensureAuditLog(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("audit_log")
	_, err := c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Audit trail reads: newest first, optionally by category.
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_audit_created__id"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_created"),
		},
	})
	return err
}
