package auth

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vgogokhia/StrelokAI/internal/config"
	"github.com/vgogokhia/StrelokAI/internal/storage/sqlite"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "auth_test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logger.NewNop()
	users, err := sqlite.NewUserStorage(db, log)
	if err != nil {
		t.Fatalf("failed to create user storage: %v", err)
	}

	cfg := &config.AuthConfig{
		SessionTTLHours:   24,
		MinUsernameLength: 3,
		MinPasswordLength: 4,
	}
	return NewService(users, cfg, log)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.Register("shooter", "secret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if session.Token == "" {
		t.Error("expected non-empty session token")
	}
	if session.Username != "shooter" {
		t.Errorf("expected username shooter, got %s", session.Username)
	}

	login, err := svc.Login("shooter", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Token == session.Token {
		t.Error("expected a fresh token per login")
	}
}

func TestUsernameCaseInsensitive(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.Register("Shooter", "secret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if session.Username != "shooter" {
		t.Errorf("expected normalized username shooter, got %s", session.Username)
	}

	login, err := svc.Login("SHOOTER", "secret")
	if err != nil {
		t.Fatalf("Login with different case failed: %v", err)
	}
	if login.Username != "shooter" {
		t.Errorf("expected normalized username shooter, got %s", login.Username)
	}

	if _, err := svc.Register("sHoOtEr", "another"); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists for case variant, got %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register("shooter", "secret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register("shooter", "another"); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestRegisterWeakCredentials(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register("ab", "secret"); !errors.Is(err, ErrWeakCredentials) {
		t.Errorf("short username: expected ErrWeakCredentials, got %v", err)
	}
	if _, err := svc.Register("shooter", "abc"); !errors.Is(err, ErrWeakCredentials) {
		t.Errorf("short password: expected ErrWeakCredentials, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register("shooter", "secret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Login("shooter", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("nobody", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionValidation(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.Register("shooter", "secret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	username, err := svc.ValidateSession(session.Token)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if username != "shooter" {
		t.Errorf("expected username shooter, got %s", username)
	}

	if _, err := svc.ValidateSession("not-a-token"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession, got %v", err)
	}

	svc.Logout(session.Token)
	if _, err := svc.ValidateSession(session.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("after logout: expected ErrInvalidSession, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.Register("shooter", "secret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Backdate the session so it is already expired.
	svc.sessionsMu.Lock()
	svc.sessions[session.Token].ExpiresAt = time.Now().Add(-time.Minute)
	svc.sessionsMu.Unlock()

	if _, err := svc.ValidateSession(session.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession for expired token, got %v", err)
	}

	session2, _ := svc.Register("second", "secret")
	svc.sessionsMu.Lock()
	svc.sessions[session2.Token].ExpiresAt = time.Now().Add(-time.Minute)
	svc.sessionsMu.Unlock()

	if removed := svc.CleanupExpired(); removed != 1 {
		t.Errorf("expected 1 expired session removed, got %d", removed)
	}
}
