// Package auth tracks who is signed in. It is a boundary collaborator:
// the tutoring core is inert without a current user, and nothing here is
// hardened beyond salted digests.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/giasu/internal/store"
)

const (
	currentUserKey = "appCurrentUser"
	saltBytes      = 16
)

// ErrUserExists is returned by Register for a taken username.
type ErrUserExists struct {
	Username string
}

func (e *ErrUserExists) Error() string { return "Tên đăng nhập đã tồn tại." }

// ErrUserNotFound is returned when the username is unknown.
type ErrUserNotFound struct {
	Username string
}

func (e *ErrUserNotFound) Error() string { return "Tên đăng nhập không tồn tại." }

// ErrWrongPassword is returned on a password mismatch.
type ErrWrongPassword struct{}

func (e *ErrWrongPassword) Error() string { return "Mật khẩu không chính xác." }

type userRecord struct {
	Salt   string `json:"salt"`
	Digest string `json:"digest"`
}

// Service is the store-backed user registry and current-user tracker.
type Service struct {
	adapter store.Adapter
}

// NewService creates an auth service over the given adapter.
func NewService(adapter store.Adapter) *Service {
	return &Service{adapter: adapter}
}

// Register creates a new account. Blank usernames or passwords are
// rejected.
func (s *Service) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("tên đăng nhập và mật khẩu không được để trống")
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}
	if _, exists := users[username]; exists {
		return &ErrUserExists{Username: username}
	}

	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	users[username] = userRecord{
		Salt:   hex.EncodeToString(salt),
		Digest: digest(salt, password),
	}
	return s.saveUsers(ctx, users)
}

// Login verifies credentials and records username as the current user.
func (s *Service) Login(ctx context.Context, username, password string) error {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return err
	}

	rec, ok := users[username]
	if !ok {
		return &ErrUserNotFound{Username: username}
	}

	salt, err := hex.DecodeString(rec.Salt)
	if err != nil {
		return fmt.Errorf("corrupt salt for %q: %w", username, err)
	}
	if subtle.ConstantTimeCompare([]byte(digest(salt, password)), []byte(rec.Digest)) != 1 {
		return &ErrWrongPassword{}
	}

	return s.adapter.Set(ctx, currentUserKey, username)
}

// Logout clears the current user.
func (s *Service) Logout(ctx context.Context) error {
	return s.adapter.Remove(ctx, currentUserKey)
}

// CurrentUser returns the signed-in username, or ok=false when no one is.
func (s *Service) CurrentUser(ctx context.Context) (string, bool, error) {
	return s.adapter.Get(ctx, currentUserKey)
}

// Exists reports whether username is registered. This backs password
// recovery: digests cannot be reversed, so recovery can only confirm the
// account and direct the learner to re-register.
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	users, err := s.loadUsers(ctx)
	if err != nil {
		return false, err
	}
	_, ok := users[username]
	return ok, nil
}

func (s *Service) loadUsers(ctx context.Context) (map[string]userRecord, error) {
	raw, ok, err := s.adapter.Get(ctx, store.UsersKey())
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if !ok {
		return map[string]userRecord{}, nil
	}

	var users map[string]userRecord
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return map[string]userRecord{}, nil
	}
	return users, nil
}

func (s *Service) saveUsers(ctx context.Context, users map[string]userRecord) error {
	blob, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	return s.adapter.Set(ctx, store.UsersKey(), string(blob))
}

func digest(salt []byte, password string) string {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil))
}
