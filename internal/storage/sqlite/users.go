package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

// ErrUserNotFound is returned when a username has no account
var ErrUserNotFound = errors.New("user not found")

// UserRecord represents a user account in the database. The password
// hash is a bcrypt digest and never leaves the storage/auth layers.
type UserRecord struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStorage handles storage of user accounts
type UserStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewUserStorage creates a new SQLite user storage
func NewUserStorage(db *sql.DB, log *logger.Logger) (*UserStorage, error) {
	storage := &UserStorage{
		db:     db,
		logger: log.Named("sqlite-users"),
	}
	if err := storage.initDB(); err != nil {
		return nil, err
	}
	return storage, nil
}

func (s *UserStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`)
	if err != nil {
		return fmt.Errorf("failed to create username index: %w", err)
	}

	return nil
}

// CreateUser inserts a new account and returns its row id. The caller
// owns username normalization; a duplicate insert fails on the UNIQUE
// constraint.
func (s *UserStorage) CreateUser(username, passwordHash string) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username,
		passwordHash,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return id, nil
}

// GetUser returns the account for a username, or ErrUserNotFound
func (s *UserStorage) GetUser(username string) (*UserRecord, error) {
	var record UserRecord
	var createdAt string

	err := s.db.QueryRow(
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&record.ID, &record.Username, &record.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	record.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &record, nil
}

// UserExists reports whether a username already has an account
func (s *UserStorage) UserExists(username string) (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM users WHERE username = ?`, username).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return count > 0, nil
}
