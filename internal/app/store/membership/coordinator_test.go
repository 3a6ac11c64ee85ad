package membership_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/store/membership"
	teamstore "github.com/dalemusser/taskhub/internal/app/store/teams"
	"github.com/dalemusser/taskhub/internal/app/system/indexes"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestCoordinator_CreateTeam_SetsMemberRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	coord := membership.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	u1 := fx.CreateUser(ctx, "U1", "u1@example.com", models.RoleTeamMember)
	u2 := fx.CreateUser(ctx, "U2", "u2@example.com", models.RoleTeamMember)

	team, err := coord.CreateTeam(ctx, "Engineering", []primitive.ObjectID{u1.ID, u2.ID}, admin.ID)
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}

	for _, uid := range []primitive.ObjectID{u1.ID, u2.ID} {
		var u models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": uid}).Decode(&u); err != nil {
			t.Fatalf("failed to load user: %v", err)
		}
		if u.TeamID == nil || *u.TeamID != team.ID {
			t.Errorf("user %s team ref: got %v, want %s", u.Name, u.TeamID, team.ID.Hex())
		}
	}
}

func TestCoordinator_CreateTeam_DuplicateLeavesUsersUntouched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	coord := membership.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	u1 := fx.CreateUser(ctx, "U1", "u1@example.com", models.RoleTeamMember)

	if _, err := coord.CreateTeam(ctx, "Platform", nil, admin.ID); err != nil {
		t.Fatalf("first CreateTeam failed: %v", err)
	}

	_, err := coord.CreateTeam(ctx, "Platform", []primitive.ObjectID{u1.ID}, admin.ID)
	if !errors.Is(err, teamstore.ErrDuplicateTeamName) {
		t.Fatalf("expected ErrDuplicateTeamName, got %v", err)
	}

	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u1.ID}).Decode(&u); err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if u.TeamID != nil {
		t.Errorf("duplicate create mutated user team ref: %v", u.TeamID)
	}
}

func TestCoordinator_UpdateTeam_MemberDiff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	coord := membership.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	u1 := fx.CreateUser(ctx, "U1", "u1@example.com", models.RoleTeamMember)
	u2 := fx.CreateUser(ctx, "U2", "u2@example.com", models.RoleTeamMember)
	u3 := fx.CreateUser(ctx, "U3", "u3@example.com", models.RoleTeamMember)

	team, err := coord.CreateTeam(ctx, "Eng", []primitive.ObjectID{u1.ID, u2.ID}, admin.ID)
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}

	// Keep U1, drop U2, add U3.
	updated, err := coord.UpdateTeam(ctx, team.ID, "", []primitive.ObjectID{u1.ID, u3.ID})
	if err != nil {
		t.Fatalf("UpdateTeam failed: %v", err)
	}
	if len(updated.Members) != 2 {
		t.Errorf("Members: got %d, want 2", len(updated.Members))
	}

	checks := []struct {
		name string
		id   primitive.ObjectID
		want *primitive.ObjectID
	}{
		{"kept member", u1.ID, &team.ID},
		{"removed member", u2.ID, nil},
		{"added member", u3.ID, &team.ID},
	}
	for _, c := range checks {
		var u models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": c.id}).Decode(&u); err != nil {
			t.Fatalf("failed to load %s: %v", c.name, err)
		}
		switch {
		case c.want == nil && u.TeamID != nil:
			t.Errorf("%s: team ref should be cleared, got %s", c.name, u.TeamID.Hex())
		case c.want != nil && (u.TeamID == nil || *u.TeamID != *c.want):
			t.Errorf("%s: team ref got %v, want %s", c.name, u.TeamID, c.want.Hex())
		}
	}
}

func TestCoordinator_UpdateTeam_EmptyListClearsEveryone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	coord := membership.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	u1 := fx.CreateUser(ctx, "U1", "u1@example.com", models.RoleTeamMember)

	team, err := coord.CreateTeam(ctx, "Eng", []primitive.ObjectID{u1.ID}, admin.ID)
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}

	updated, err := coord.UpdateTeam(ctx, team.ID, "", nil)
	if err != nil {
		t.Fatalf("UpdateTeam failed: %v", err)
	}
	if len(updated.Members) != 0 {
		t.Errorf("Members: got %v, want empty", updated.Members)
	}

	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u1.ID}).Decode(&u); err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if u.TeamID != nil {
		t.Errorf("team ref should be cleared, got %s", u.TeamID.Hex())
	}
}

func TestCoordinator_DeleteTeam_ClearsRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	coord := membership.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	u1 := fx.CreateUser(ctx, "U1", "u1@example.com", models.RoleTeamMember)

	team, err := coord.CreateTeam(ctx, "Eng", []primitive.ObjectID{u1.ID}, admin.ID)
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}

	if err := coord.DeleteTeam(ctx, team.ID); err != nil {
		t.Fatalf("DeleteTeam failed: %v", err)
	}

	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u1.ID}).Decode(&u); err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if u.TeamID != nil {
		t.Errorf("team ref should be cleared, got %s", u.TeamID.Hex())
	}

	n, err := db.Collection("teams").CountDocuments(ctx, bson.M{"_id": team.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 0 {
		t.Error("team document should be deleted")
	}
}

func TestCoordinator_AssignUser_MovesBetweenTeams(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	coord := membership.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	u1 := fx.CreateUser(ctx, "U1", "u1@example.com", models.RoleTeamMember)

	alpha, err := coord.CreateTeam(ctx, "Alpha", []primitive.ObjectID{u1.ID}, admin.ID)
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}
	beta, err := coord.CreateTeam(ctx, "Beta", nil, admin.ID)
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}

	if err := coord.AssignUser(ctx, u1.ID, &beta.ID); err != nil {
		t.Fatalf("AssignUser failed: %v", err)
	}

	var a, b models.Team
	if err := db.Collection("teams").FindOne(ctx, bson.M{"_id": alpha.ID}).Decode(&a); err != nil {
		t.Fatalf("failed to load alpha: %v", err)
	}
	if err := db.Collection("teams").FindOne(ctx, bson.M{"_id": beta.ID}).Decode(&b); err != nil {
		t.Fatalf("failed to load beta: %v", err)
	}
	if len(a.Members) != 0 {
		t.Errorf("alpha should not list the user anymore: %v", a.Members)
	}
	if len(b.Members) != 1 || b.Members[0] != u1.ID {
		t.Errorf("beta members: got %v, want [%s]", b.Members, u1.ID.Hex())
	}

	var u models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u1.ID}).Decode(&u); err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if u.TeamID == nil || *u.TeamID != beta.ID {
		t.Errorf("team ref: got %v, want %s", u.TeamID, beta.ID.Hex())
	}

	// Nil team detaches.
	if err := coord.AssignUser(ctx, u1.ID, nil); err != nil {
		t.Fatalf("AssignUser(nil) failed: %v", err)
	}
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u1.ID}).Decode(&u); err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if u.TeamID != nil {
		t.Errorf("team ref should be cleared, got %s", u.TeamID.Hex())
	}
}

func TestCoordinator_Reconcile_RepairsDrift(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	coord := membership.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateUser(ctx, "Admin", "admin@example.com", models.RoleAdmin)
	u1 := fx.CreateUser(ctx, "U1", "u1@example.com", models.RoleTeamMember)
	u2 := fx.CreateUser(ctx, "U2", "u2@example.com", models.RoleTeamMember)

	team, err := coord.CreateTeam(ctx, "Eng", []primitive.ObjectID{u1.ID}, admin.ID)
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}

	// Manufacture drift: u1 lost their back-reference, u2 points at the
	// team without being a member.
	if _, err := db.Collection("users").UpdateByID(ctx, u1.ID, bson.M{"$unset": bson.M{"team_id": ""}}); err != nil {
		t.Fatalf("drift setup failed: %v", err)
	}
	if _, err := db.Collection("users").UpdateByID(ctx, u2.ID, bson.M{"$set": bson.M{"team_id": team.ID}}); err != nil {
		t.Fatalf("drift setup failed: %v", err)
	}

	fixed, err := coord.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if fixed != 2 {
		t.Errorf("fixed: got %d, want 2", fixed)
	}

	var got models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u1.ID}).Decode(&got); err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if got.TeamID == nil || *got.TeamID != team.ID {
		t.Errorf("u1 team ref: got %v, want %s", got.TeamID, team.ID.Hex())
	}
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u2.ID}).Decode(&got); err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if got.TeamID != nil {
		t.Errorf("u2 team ref should be cleared, got %s", got.TeamID.Hex())
	}
}
