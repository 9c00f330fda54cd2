package user

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T, name string) (*gorm.DB, *Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &Address{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:            "test-secret-key-for-unit-tests-only-0000",
			AccessTokenExpiry: time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
	return db, NewService(db, cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	_, svc := setupUserTest(t, "user_register")

	resp, err := svc.Register(&RegisterRequest{
		Email:     "New.User@Example.com",
		Password:  "Vx9!Kmqe#7Lw",
		FirstName: "New",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.User.Email != "new.user@example.com" {
		t.Errorf("expected lowercased email, got %q", resp.User.Email)
	}
	if resp.AccessToken == "" {
		t.Error("expected an access token")
	}

	// Duplicate registration is rejected
	if _, err := svc.Register(&RegisterRequest{
		Email:     "new.user@example.com",
		Password:  "Vx9!Kmqe#7Lw",
		FirstName: "New",
		LastName:  "User",
	}); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected ErrValidation for duplicate email, got %v", err)
	}

	if _, err := svc.Login(&LoginRequest{Email: "new.user@example.com", Password: "Vx9!Kmqe#7Lw"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := svc.Login(&LoginRequest{Email: "new.user@example.com", Password: "wrong"}); err == nil {
		t.Fatal("expected login failure for wrong password")
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	_, svc := setupUserTest(t, "user_weak_pw")

	_, err := svc.Register(&RegisterRequest{
		Email:     "weak@example.com",
		Password:  "short",
		FirstName: "Weak",
		LastName:  "Password",
	})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestFindOrCreateByEmail(t *testing.T) {
	db, svc := setupUserTest(t, "user_find_or_create")

	u, outcome, err := svc.FindOrCreateByEmail(db, "  Walkin@Example.com ", "Karim", "Mia")
	if err != nil {
		t.Fatalf("FindOrCreateByEmail failed: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Errorf("expected OutcomeCreated, got %v", outcome)
	}
	if u.Email != "walkin@example.com" {
		t.Errorf("expected normalized email, got %q", u.Email)
	}
	if u.Password == "" {
		t.Error("expected a generated password hash")
	}
	if !u.IsActive {
		t.Error("expected created user active")
	}

	again, outcome, err := svc.FindOrCreateByEmail(db, "walkin@example.com", "Other", "Name")
	if err != nil {
		t.Fatalf("second FindOrCreateByEmail failed: %v", err)
	}
	if outcome != OutcomeAlreadyExists {
		t.Errorf("expected OutcomeAlreadyExists, got %v", outcome)
	}
	if again.ID != u.ID {
		t.Errorf("expected the same user row, got %d and %d", u.ID, again.ID)
	}
	if again.FirstName != "Karim" {
		t.Errorf("existing user must not be renamed, got %q", again.FirstName)
	}

	var count int64
	db.Model(&User{}).Count(&count)
	if count != 1 {
		t.Errorf("expected a single user row, got %d", count)
	}
}

func TestFindOrCreateByEmailRequiresEmail(t *testing.T) {
	db, svc := setupUserTest(t, "user_empty_email")

	if _, _, err := svc.FindOrCreateByEmail(db, "   ", "A", "B"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
