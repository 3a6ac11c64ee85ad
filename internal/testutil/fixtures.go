// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given role. Email is derived from
// the name when blank. Returns the created user with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string, role models.Role) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		PasswordHash: "$2a$10$test.hash.not.a.real.credential.padpad",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateUserOnTeam inserts a user whose team reference already points at
// teamID. The team's member list is not touched; use CreateTeam with the
// user listed, or the membership coordinator, when both sides matter.
func (f *Fixtures) CreateUserOnTeam(ctx context.Context, name, email string, role models.Role, teamID primitive.ObjectID) models.User {
	f.t.Helper()

	u := f.CreateUser(ctx, name, email, role)
	_, err := f.db.Collection("users").UpdateByID(ctx, u.ID,
		map[string]any{"$set": map[string]any{"team_id": teamID}})
	if err != nil {
		f.t.Fatalf("failed to set team on test user: %v", err)
	}
	u.TeamID = &teamID
	return u
}

// CreateTeam inserts a team with the given members and sets each
// member's team reference, mirroring what the membership coordinator
// does in production.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, createdBy primitive.ObjectID, members ...primitive.ObjectID) models.Team {
	f.t.Helper()

	now := time.Now().UTC()
	if members == nil {
		members = []primitive.ObjectID{}
	}
	team := models.Team{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Members:   members,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}
	if len(members) > 0 {
		_, err := f.db.Collection("users").UpdateMany(ctx,
			map[string]any{"_id": map[string]any{"$in": members}},
			map[string]any{"$set": map[string]any{"team_id": team.ID}})
		if err != nil {
			f.t.Fatalf("failed to set team refs on test members: %v", err)
		}
	}
	return team
}

// CreateTask inserts a task assigned to assignedTo (NilObjectID leaves
// it unassigned) and created by createdBy.
func (f *Fixtures) CreateTask(ctx context.Context, title string, createdBy, assignedTo primitive.ObjectID) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: "test task",
		Priority:    models.PriorityMedium,
		Status:      models.StatusToDo,
		DueDate:     now.Add(7 * 24 * time.Hour),
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if assignedTo != primitive.NilObjectID {
		task.AssignedTo = &assignedTo
	}

	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// CreateTeamTask inserts a task on the given team.
func (f *Fixtures) CreateTeamTask(ctx context.Context, title string, createdBy, assignedTo, teamID primitive.ObjectID) models.Task {
	f.t.Helper()

	task := f.CreateTask(ctx, title, createdBy, assignedTo)
	_, err := f.db.Collection("tasks").UpdateByID(ctx, task.ID,
		map[string]any{"$set": map[string]any{"team_id": teamID}})
	if err != nil {
		f.t.Fatalf("failed to set team on test task: %v", err)
	}
	task.TeamID = &teamID
	return task
}
