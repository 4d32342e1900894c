// Package auth provides user account management and session tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vgogokhia/StrelokAI/internal/config"
	"github.com/vgogokhia/StrelokAI/internal/storage/sqlite"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

var (
	// ErrInvalidCredentials is returned when a login attempt fails
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserExists is returned when registering a username that is taken
	ErrUserExists = errors.New("username already exists")
	// ErrInvalidSession is returned for missing, unknown or expired tokens
	ErrInvalidSession = errors.New("invalid or expired session")
	// ErrWeakCredentials is returned when username or password is too short
	ErrWeakCredentials = errors.New("username or password too short")
)

// Session represents an authenticated session
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service manages user accounts and in-memory session tokens
type Service struct {
	users      *sqlite.UserStorage
	config     *config.AuthConfig
	logger     *logger.Logger
	sessions   map[string]*Session
	sessionsMu sync.RWMutex
}

// NewService creates a new authentication service
func NewService(users *sqlite.UserStorage, cfg *config.AuthConfig, log *logger.Logger) *Service {
	return &Service{
		users:    users,
		config:   cfg,
		logger:   log.Named("auth"),
		sessions: make(map[string]*Session),
	}
}

// Register creates a new user account and returns a fresh session.
// Usernames are case-insensitive: they are lowercased here before
// touching storage, sessions or profiles.
func (s *Service) Register(username, password string) (*Session, error) {
	if len(username) < s.config.MinUsernameLength || len(password) < s.config.MinPasswordLength {
		return nil, ErrWeakCredentials
	}
	username = strings.ToLower(username)

	exists, err := s.users.UserExists(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.users.CreateUser(username, string(hash)); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", logger.String("username", username))
	return s.createSession(username), nil
}

// Login verifies credentials and returns a fresh session
func (s *Service) Login(username, password string) (*Session, error) {
	username = strings.ToLower(username)
	user, err := s.users.GetUser(username)
	if err != nil {
		if errors.Is(err, sqlite.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("User logged in", logger.String("username", username))
	return s.createSession(username), nil
}

// ValidateSession resolves a token to its username, rejecting expired tokens
func (s *Service) ValidateSession(token string) (string, error) {
	s.sessionsMu.RLock()
	session, ok := s.sessions[token]
	s.sessionsMu.RUnlock()

	if !ok {
		return "", ErrInvalidSession
	}
	if time.Now().After(session.ExpiresAt) {
		s.sessionsMu.Lock()
		delete(s.sessions, token)
		s.sessionsMu.Unlock()
		return "", ErrInvalidSession
	}
	return session.Username, nil
}

// Logout invalidates a session token
func (s *Service) Logout(token string) {
	s.sessionsMu.Lock()
	delete(s.sessions, token)
	s.sessionsMu.Unlock()
}

func (s *Service) createSession(username string) *Session {
	now := time.Now()
	session := &Session{
		Token:     uuid.New().String(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(s.config.SessionTTLHours) * time.Hour),
	}

	s.sessionsMu.Lock()
	s.sessions[session.Token] = session
	s.sessionsMu.Unlock()

	return session
}

// CleanupExpired removes expired sessions and returns how many were dropped
func (s *Service) CleanupExpired() int {
	now := time.Now()
	removed := 0

	s.sessionsMu.Lock()
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	s.sessionsMu.Unlock()

	if removed > 0 {
		s.logger.Debug("Cleaned up expired sessions", logger.Int("count", removed))
	}
	return removed
}
