package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/vgogokhia/StrelokAI/pkg/logger"
	_ "modernc.org/sqlite"
)

// Store owns the SQLite database connection shared by the user and
// profile storages.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewStore opens (or creates) the database at dbPath and applies the
// pragmas we rely on.
func NewStore(dbPath string, log *logger.Logger) (*Store, error) {
	storeLogger := log.Named("sqlite")

	storeLogger.Info("Initializing SQLite storage", logger.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Store{db: db, logger: storeLogger}, nil
}

// GetDB returns the database connection
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
