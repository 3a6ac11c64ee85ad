// internal/app/store/audit/auditstore.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories.
const (
	CategoryAuth = "auth"
	CategoryTask = "task"
	CategoryTeam = "team"
	CategoryUser = "user"
)

// Event types.
const (
	EventRegistered          = "registered"
	EventLoginSuccess        = "login_success"
	EventLoginFailed         = "login_failed"
	EventLoginRateLimited    = "login_rate_limited"
	EventLogout              = "logout"
	EventTaskCreated         = "task_created"
	EventTaskUpdated         = "task_updated"
	EventTaskDeleted         = "task_deleted"
	EventTeamCreated         = "team_created"
	EventTeamUpdated         = "team_updated"
	EventTeamDeleted         = "team_deleted"
	EventUserUpdated         = "user_updated"
	EventUserDeleted         = "user_deleted"
	EventUserTeamChanged     = "user_team_changed"
)

// Event is a single audit log entry.
type Event struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	Category      string              `bson:"category"`
	EventType     string              `bson:"event_type"`
	ActorID       *primitive.ObjectID `bson:"actor_id,omitempty"`
	TargetID      *primitive.ObjectID `bson:"target_id,omitempty"`
	TeamID        *primitive.ObjectID `bson:"team_id,omitempty"`
	IP            string              `bson:"ip,omitempty"`
	UserAgent     string              `bson:"user_agent,omitempty"`
	Success       bool                `bson:"success"`
	FailureReason string              `bson:"failure_reason,omitempty"`
	Details       map[string]string   `bson:"details,omitempty"`
	CreatedAt     time.Time           `bson:"created_at"`
}

// QueryFilter narrows a Query call. Zero values mean "no constraint".
type QueryFilter struct {
	Category  string
	EventType string
	ActorID   *primitive.ObjectID
	Limit     int64
	Offset    int64
}

// Store persists audit events in the audit_log collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_log")}
}

// Log inserts an event. The timestamp is set here so callers never have to.
func (s *Store) Log(ctx context.Context, e Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// Query returns events matching the filter, newest first.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Event, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.EventType != "" {
		filter["event_type"] = f.EventType
	}
	if f.ActorID != nil {
		filter["actor_id"] = *f.ActorID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	if f.Offset > 0 {
		opts.SetSkip(f.Offset)
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
