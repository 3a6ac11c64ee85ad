package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/indexes"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil"
	"go.uber.org/zap"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{
		Name:         "  Ada Lovelace ",
		Email:        "Ada@Example.COM",
		PasswordHash: "hash",
		Role:         models.RoleTeamMember,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if u.ID.IsZero() {
		t.Error("expected generated ID")
	}
	if u.Name != "Ada Lovelace" {
		t.Errorf("Name: got %q, want trimmed %q", u.Name, "Ada Lovelace")
	}
	if u.Email != "ada@example.com" {
		t.Errorf("Email: got %q, want normalized %q", u.Email, "ada@example.com")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	// Lookup is case-insensitive on email because of the normalization.
	found, err := store.GetByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if found.ID != u.ID {
		t.Errorf("GetByEmail: got %s, want %s", found.ID.Hex(), u.ID.Hex())
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.User{Name: "A", Email: "dup@example.com", Role: models.RoleTeamMember}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Name: "B", Email: "DUP@example.com", Role: models.RoleTeamMember})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_RegistrationSeq(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.RegistrationSeq(ctx)
	if err != nil {
		t.Fatalf("RegistrationSeq failed: %v", err)
	}
	if first != 1 {
		t.Errorf("first sequence: got %d, want 1", first)
	}

	second, err := store.RegistrationSeq(ctx)
	if err != nil {
		t.Fatalf("RegistrationSeq failed: %v", err)
	}
	if second != 2 {
		t.Errorf("second sequence: got %d, want 2", second)
	}
}

func TestStore_UpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Name: "Grace", Email: "grace@example.com", Role: models.RoleTeamMember})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Empty fields keep their stored values.
	if err := store.UpdateProfile(ctx, u.ID, "", "", models.RoleTeamLead); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Grace" {
		t.Errorf("Name: got %q, want unchanged %q", got.Name, "Grace")
	}
	if got.Email != "grace@example.com" {
		t.Errorf("Email: got %q, want unchanged %q", got.Email, "grace@example.com")
	}
	if got.Role != models.RoleTeamLead {
		t.Errorf("Role: got %q, want %q", got.Role, models.RoleTeamLead)
	}
}

func TestStore_UpdateProfile_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Name: "Eve", Email: "eve@example.com", Role: models.RoleTeamMember})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = store.UpdateProfile(ctx, u.ID, "", "", models.Role("Overlord"))
	if !errors.Is(err, userstore.ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}

func TestStore_BumpTokenVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Name: "Tok", Email: "tok@example.com", Role: models.RoleTeamMember})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.BumpTokenVersion(ctx, u.ID); err != nil {
		t.Fatalf("BumpTokenVersion failed: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.TokenVersion != u.TokenVersion+1 {
		t.Errorf("TokenVersion: got %d, want %d", got.TokenVersion, u.TokenVersion+1)
	}
}
