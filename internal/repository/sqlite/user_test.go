package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/teghlab/otp-lab/internal/domain"
	"github.com/teghlab/otp-lab/internal/repository/sqlite"
)

func TestUserRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		Email:        "test@example.com",
		PasswordHash: "hashedpw",
		FirstName:    "Test",
		LastName:     "User",
		IsAdmin:      true,
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == 0 {
		t.Fatal("expected user ID to be set after create")
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestUserRepository_Create_DuplicateEmailAllowed(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	first := &domain.User{Email: "dup@example.com", PasswordHash: "hash1"}
	second := &domain.User{Email: "dup@example.com", PasswordHash: "hash2"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct ids for duplicate emails")
	}

	found, err := repo.GetByEmail(ctx, "dup@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if found.ID != first.ID {
		t.Fatalf("expected earliest record %d, got %d", first.ID, found.ID)
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	user := &domain.User{
		Email:        "byid@example.com",
		PasswordHash: "hash",
		FirstName:    "By",
		LastName:     "ID",
		Phone:        "555-0100",
		Address:      "1 Main St",
		City:         "Springfield",
		ZipCode:      "12345",
		IsAdmin:      true,
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Email != user.Email || found.City != user.City || found.ZipCode != user.ZipCode {
		t.Fatalf("unexpected user %+v", found)
	}
	if !found.IsAdmin {
		t.Fatal("expected IsAdmin to round-trip")
	}
	if found.PasswordHash != "hash" {
		t.Fatalf("expected password hash %q, got %q", "hash", found.PasswordHash)
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 99999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_GetByEmail_CaseSensitive(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.User{Email: "Case@example.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := repo.GetByEmail(ctx, "case@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for different case, got %v", err)
	}
}

func TestUserRepository_ListWithoutPassword(t *testing.T) {
	db := newTestDB(t)
	repo := sqlite.NewUserRepository(db)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if err := repo.Create(ctx, &domain.User{Email: email, PasswordHash: "secret-hash"}); err != nil {
			t.Fatalf("Create %s: %v", email, err)
		}
	}

	users, err := repo.ListWithoutPassword(ctx)
	if err != nil {
		t.Fatalf("ListWithoutPassword: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.PasswordHash != "" {
			t.Fatalf("expected empty password hash for %s", u.Email)
		}
	}
	if users[0].Email != "a@example.com" {
		t.Fatalf("expected insertion order, got %s first", users[0].Email)
	}
}
