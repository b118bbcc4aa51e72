package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/giasu/internal/store"
)

func TestRegisterAndLogin(t *testing.T) {
	s := NewService(store.NewMemAdapter())
	ctx := context.Background()

	if err := s.Register(ctx, "an", "mật-khẩu"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Login(ctx, "an", "mật-khẩu"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	user, ok, err := s.CurrentUser(ctx)
	if err != nil || !ok || user != "an" {
		t.Fatalf("CurrentUser = (%q, %v, %v), want an", user, ok, err)
	}
}

func TestRegisterRejectsBlankAndDuplicate(t *testing.T) {
	s := NewService(store.NewMemAdapter())
	ctx := context.Background()

	if err := s.Register(ctx, "", "x"); err == nil {
		t.Error("want error for blank username")
	}
	if err := s.Register(ctx, "an", "  "); err == nil {
		t.Error("want error for blank password")
	}

	if err := s.Register(ctx, "an", "x"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := s.Register(ctx, "an", "y")
	var exists *ErrUserExists
	if !errors.As(err, &exists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
}

func TestLoginFailures(t *testing.T) {
	s := NewService(store.NewMemAdapter())
	ctx := context.Background()

	if err := s.Register(ctx, "an", "đúng"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var notFound *ErrUserNotFound
	if err := s.Login(ctx, "binh", "x"); !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}

	var wrong *ErrWrongPassword
	if err := s.Login(ctx, "an", "sai"); !errors.As(err, &wrong) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}

	if _, ok, _ := s.CurrentUser(ctx); ok {
		t.Error("failed logins must not record a current user")
	}
}

func TestLogoutClearsCurrentUser(t *testing.T) {
	s := NewService(store.NewMemAdapter())
	ctx := context.Background()

	if err := s.Register(ctx, "an", "x"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Login(ctx, "an", "x"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok, _ := s.CurrentUser(ctx); ok {
		t.Error("current user survives logout")
	}
}

func TestDigestsAreSaltedPerUser(t *testing.T) {
	adapter := store.NewMemAdapter()
	s := NewService(adapter)
	ctx := context.Background()

	if err := s.Register(ctx, "an", "chung"); err != nil {
		t.Fatalf("Register an: %v", err)
	}
	if err := s.Register(ctx, "binh", "chung"); err != nil {
		t.Fatalf("Register binh: %v", err)
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		t.Fatalf("loadUsers: %v", err)
	}
	if users["an"].Digest == users["binh"].Digest {
		t.Error("same password produced identical digests across users")
	}
}

func TestExists(t *testing.T) {
	s := NewService(store.NewMemAdapter())
	ctx := context.Background()

	if err := s.Register(ctx, "an", "x"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if ok, _ := s.Exists(ctx, "an"); !ok {
		t.Error("Exists(an) = false")
	}
	if ok, _ := s.Exists(ctx, "binh"); ok {
		t.Error("Exists(binh) = true")
	}
}
