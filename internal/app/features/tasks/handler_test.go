package tasks_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/taskhub/internal/app/features/tasks"
	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := tasks.NewHandler(db, taskpolicy.ScopeGlobal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	member := fx.CreateUser(ctx, "Member", "member@example.com", models.RoleTeamMember)
	team := fx.CreateTeam(ctx, "Eng", admin.ID, member.ID)

	req := testutil.NewJSONRequest(t, "POST", "/tasks", map[string]any{
		"title":       "Write the report",
		"description": "quarterly numbers",
		"assignedTo":  member.ID.Hex(),
		"teamId":      team.ID.Hex(),
		"dueDate":     time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339),
	})
	req = testutil.WithUser(req, testutil.AsTestUser(admin))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp struct {
		Priority models.TaskPriority `json:"priority"`
		Status   models.TaskStatus   `json:"status"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Priority != models.PriorityMedium {
		t.Errorf("priority: got %q, want default %q", resp.Priority, models.PriorityMedium)
	}
	if resp.Status != models.StatusToDo {
		t.Errorf("status: got %q, want default %q", resp.Status, models.StatusToDo)
	}
}

func TestHandleCreate_MissingTitle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := tasks.NewHandler(db, taskpolicy.ScopeGlobal, zap.NewNop())

	req := testutil.NewJSONRequest(t, "POST", "/tasks", map[string]any{
		"description": "no title",
		"dueDate":     time.Now().UTC().Format(time.RFC3339),
	})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleCreate_MissingAssigneeOrTeam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := tasks.NewHandler(db, taskpolicy.ScopeGlobal, zap.NewNop())

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"no assignee", map[string]any{
			"title":       "Orphan",
			"description": "nobody to do it",
			"teamId":      primitive.NewObjectID().Hex(),
			"dueDate":     time.Now().UTC().Format(time.RFC3339),
		}},
		{"no team", map[string]any{
			"title":       "Orphan",
			"description": "nowhere to live",
			"assignedTo":  primitive.NewObjectID().Hex(),
			"dueDate":     time.Now().UTC().Format(time.RFC3339),
		}},
	}
	for _, c := range cases {
		req := testutil.NewJSONRequest(t, "POST", "/tasks", c.payload)
		req = testutil.WithUser(req, testutil.AdminUser())
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status: got %d, want %d", c.name, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestServeList_MemberSeesOnlyAssignedTasks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := tasks.NewHandler(db, taskpolicy.ScopeGlobal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	member := fx.CreateUser(ctx, "Member", "member@example.com", models.RoleTeamMember)
	other := fx.CreateUser(ctx, "Other", "other@example.com", models.RoleTeamMember)

	mine := fx.CreateTask(ctx, "mine", admin.ID, member.ID)
	fx.CreateTask(ctx, "theirs", admin.ID, other.ID)

	req := testutil.WithUser(httptest.NewRequest("GET", "/tasks", nil), testutil.AsTestUser(member))
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	var resp []struct {
		ID         primitive.ObjectID `json:"_id"`
		AssignedTo *struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"assignedTo"`
		CreatedBy *struct {
			Name string `json:"name"`
		} `json:"createdBy"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp) != 1 {
		t.Fatalf("tasks: got %d, want 1", len(resp))
	}
	if resp[0].ID != mine.ID {
		t.Errorf("task: got %s, want %s", resp[0].ID.Hex(), mine.ID.Hex())
	}
	if resp[0].AssignedTo == nil || resp[0].AssignedTo.Name != "Member" {
		t.Error("expected populated assignee summary")
	}
	if resp[0].CreatedBy == nil || resp[0].CreatedBy.Name != "Admin" {
		t.Error("expected populated creator summary")
	}
}

func TestServeList_AdminSeesAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := tasks.NewHandler(db, taskpolicy.ScopeGlobal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	m1 := fx.CreateUser(ctx, "M1", "m1@example.com", models.RoleTeamMember)
	m2 := fx.CreateUser(ctx, "M2", "m2@example.com", models.RoleTeamMember)
	fx.CreateTask(ctx, "one", admin.ID, m1.ID)
	fx.CreateTask(ctx, "two", admin.ID, m2.ID)

	req := testutil.WithUser(httptest.NewRequest("GET", "/tasks", nil), testutil.AsTestUser(admin))
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	var resp []map[string]any
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp) != 2 {
		t.Errorf("tasks: got %d, want 2", len(resp))
	}
}

func TestServeList_LeadWithoutTeamSeesEmptyList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := tasks.NewHandler(db, taskpolicy.ScopeGlobal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	fx.CreateTask(ctx, "stray", admin.ID, primitive.NilObjectID)

	lead := testutil.LeadUser(primitive.NewObjectID())
	lead.TeamID = ""
	req := testutil.WithUser(httptest.NewRequest("GET", "/tasks", nil), lead)
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	var resp []map[string]any
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp) != 0 {
		t.Errorf("tasks: got %d, want 0", len(resp))
	}
}

func TestHandleUpdate_MemberStatusOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := tasks.NewHandler(db, taskpolicy.ScopeGlobal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	member := fx.CreateUser(ctx, "Member", "member@example.com", models.RoleTeamMember)
	task := fx.CreateTask(ctx, "original title", admin.ID, member.ID)

	req := testutil.NewJSONRequest(t, "PUT", "/tasks/"+task.ID.Hex(), map[string]any{
		"title":  "hijacked",
		"status": string(models.StatusCompleted),
	})
	req = testutil.WithUser(req, testutil.AsTestUser(member))
	req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var got models.Task
	if err := db.Collection("tasks").FindOne(ctx, bson.M{"_id": task.ID}).Decode(&got); err != nil {
		t.Fatalf("failed to load task: %v", err)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("status: got %q, want %q", got.Status, models.StatusCompleted)
	}
	if got.Title != "original title" {
		t.Errorf("title: got %q, want unchanged %q", got.Title, "original title")
	}
}

func TestHandleUpdate_MemberNotAssignee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := tasks.NewHandler(db, taskpolicy.ScopeGlobal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	member := fx.CreateUser(ctx, "Member", "member@example.com", models.RoleTeamMember)
	other := fx.CreateUser(ctx, "Other", "other@example.com", models.RoleTeamMember)
	task := fx.CreateTask(ctx, "not yours", admin.ID, other.ID)

	req := testutil.NewJSONRequest(t, "PUT", "/tasks/"+task.ID.Hex(), map[string]any{
		"status": string(models.StatusCompleted),
	})
	req = testutil.WithUser(req, testutil.AsTestUser(member))
	req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestHandleUpdate_TaskNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := tasks.NewHandler(db, taskpolicy.ScopeGlobal, zap.NewNop())

	id := primitive.NewObjectID().Hex()
	req := testutil.NewJSONRequest(t, "PUT", "/tasks/"+id, map[string]any{"title": "x"})
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleUpdate_ScopedLeadCannotSeeCrossTeamTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := tasks.NewHandler(db, taskpolicy.ScopeTeam, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	otherTeam := primitive.NewObjectID()
	task := fx.CreateTeamTask(ctx, "cross-team", admin.ID, primitive.NilObjectID, otherTeam)

	lead := testutil.LeadUser(primitive.NewObjectID())
	req := testutil.NewJSONRequest(t, "PUT", "/tasks/"+task.ID.Hex(), map[string]any{"title": "x"})
	req = testutil.WithUser(req, lead)
	req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := tasks.NewHandler(db, taskpolicy.ScopeGlobal, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	task := fx.CreateTask(ctx, "doomed", admin.ID, primitive.NilObjectID)

	req := testutil.WithUser(httptest.NewRequest("DELETE", "/tasks/"+task.ID.Hex(), nil), testutil.AsTestUser(admin))
	req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	n, err := db.Collection("tasks").CountDocuments(ctx, bson.M{"_id": task.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 0 {
		t.Error("task should be deleted")
	}

	// Deleting again reports not found.
	rec = httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}
