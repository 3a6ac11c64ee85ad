package teams_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/features/teams"
	"github.com/dalemusser/taskhub/internal/app/system/indexes"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := teams.NewHandler(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	u1 := fx.CreateUser(ctx, "U1", "u1@example.com", models.RoleTeamMember)

	req := testutil.NewJSONRequest(t, "POST", "/teams", map[string]any{
		"name":    "Engineering",
		"members": []string{u1.ID.Hex()},
	})
	req = testutil.WithUser(req, testutil.AsTestUser(admin))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp struct {
		Name    string `json:"name"`
		Members []struct {
			Name  string      `json:"name"`
			Email string      `json:"email"`
			Role  models.Role `json:"role"`
		} `json:"members"`
		CreatedBy *struct {
			Name string `json:"name"`
		} `json:"createdBy"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Name != "Engineering" {
		t.Errorf("name: got %q", resp.Name)
	}
	if len(resp.Members) != 1 || resp.Members[0].Name != "U1" {
		t.Errorf("members: got %+v, want populated U1", resp.Members)
	}
	if resp.CreatedBy == nil || resp.CreatedBy.Name != "Admin" {
		t.Error("expected populated creator summary")
	}

	// The member's back-reference points at the new team.
	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u1.ID}).Decode(&u); err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if u.TeamID == nil {
		t.Error("member team ref should be set")
	}
}

func TestHandleCreate_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := teams.NewHandler(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	u1 := fx.CreateUser(ctx, "U1", "u1@example.com", models.RoleTeamMember)
	fx.CreateTeam(ctx, "Platform", admin.ID)

	req := testutil.NewJSONRequest(t, "POST", "/teams", map[string]any{
		"name":    "Platform",
		"members": []string{u1.ID.Hex()},
	})
	req = testutil.WithUser(req, testutil.AsTestUser(admin))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// The duplicate must not have touched the listed member.
	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u1.ID}).Decode(&u); err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if u.TeamID != nil {
		t.Errorf("member team ref should be untouched, got %s", u.TeamID.Hex())
	}
}

func TestHandleCreate_ForbiddenForNonAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := teams.NewHandler(db, zap.NewNop())

	req := testutil.NewJSONRequest(t, "POST", "/teams", map[string]any{"name": "Rogue"})
	req = testutil.WithUser(req, testutil.LeadUser(primitive.NewObjectID()))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestServeList_ForbiddenForMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := teams.NewHandler(db, zap.NewNop())

	req := testutil.WithUser(httptest.NewRequest("GET", "/teams", nil), testutil.MemberUser())
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestHandleUpdate_DroppedMembersLoseTeamRef(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := teams.NewHandler(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	u1 := fx.CreateUser(ctx, "U1", "u1@example.com", models.RoleTeamMember)
	u2 := fx.CreateUser(ctx, "U2", "u2@example.com", models.RoleTeamMember)
	team := fx.CreateTeam(ctx, "Eng", admin.ID, u1.ID, u2.ID)

	req := testutil.NewJSONRequest(t, "PUT", "/teams/"+team.ID.Hex(), map[string]any{
		"members": []string{u1.ID.Hex()},
	})
	req = testutil.WithUser(req, testutil.AsTestUser(admin))
	req = testutil.WithChiURLParam(req, "id", team.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var kept, dropped models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u1.ID}).Decode(&kept); err != nil {
		t.Fatalf("failed to load kept member: %v", err)
	}
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u2.ID}).Decode(&dropped); err != nil {
		t.Fatalf("failed to load dropped member: %v", err)
	}
	if kept.TeamID == nil || *kept.TeamID != team.ID {
		t.Errorf("kept member team ref: got %v, want %s", kept.TeamID, team.ID.Hex())
	}
	if dropped.TeamID != nil {
		t.Errorf("dropped member team ref should be cleared, got %s", dropped.TeamID.Hex())
	}
}

func TestHandleUpdate_TeamNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := teams.NewHandler(db, zap.NewNop())

	id := primitive.NewObjectID().Hex()
	req := testutil.NewJSONRequest(t, "PUT", "/teams/"+id, map[string]any{"name": "Ghost"})
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServeMyTeam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := teams.NewHandler(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	u1 := fx.CreateUser(ctx, "U1", "u1@example.com", models.RoleTeamMember)
	team := fx.CreateTeam(ctx, "Eng", admin.ID, u1.ID)
	u1.TeamID = &team.ID

	req := testutil.WithUser(httptest.NewRequest("GET", "/teams/my", nil), testutil.AsTestUser(u1))
	rec := httptest.NewRecorder()
	h.ServeMyTeam(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp struct {
		Name string `json:"name"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Name != "Eng" {
		t.Errorf("team name: got %q, want %q", resp.Name, "Eng")
	}
}

func TestServeMyTeam_NoTeam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := teams.NewHandler(db, zap.NewNop())

	req := testutil.WithUser(httptest.NewRequest("GET", "/teams/my", nil), testutil.MemberUser())
	rec := httptest.NewRecorder()
	h.ServeMyTeam(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleDelete_ClearsMemberRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h := teams.NewHandler(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	u1 := fx.CreateUser(ctx, "U1", "u1@example.com", models.RoleTeamMember)
	team := fx.CreateTeam(ctx, "Eng", admin.ID, u1.ID)

	req := testutil.WithUser(httptest.NewRequest("DELETE", "/teams/"+team.ID.Hex(), nil), testutil.AsTestUser(admin))
	req = testutil.WithChiURLParam(req, "id", team.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}

	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u1.ID}).Decode(&u); err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if u.TeamID != nil {
		t.Errorf("member team ref should be cleared, got %s", u.TeamID.Hex())
	}
}
