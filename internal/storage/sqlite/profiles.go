package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

// ErrProfileNotFound is returned when a named profile does not exist
var ErrProfileNotFound = errors.New("profile not found")

// RifleProfileRecord represents a saved rifle configuration
type RifleProfileRecord struct {
	ID                int64     `json:"id"`
	Username          string    `json:"-"`
	Name              string    `json:"name"`
	MuzzleVelocityMps float64   `json:"muzzle_velocity_mps"`
	ZeroRangeM        float64   `json:"zero_range_m"`
	SightHeightMm     float64   `json:"sight_height_mm"`
	TwistRateInches   float64   `json:"twist_rate_inches"`
	TwistDirection    string    `json:"twist_direction"`
	Description       string    `json:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CartridgeProfileRecord represents a saved cartridge/bullet configuration
type CartridgeProfileRecord struct {
	ID             int64     `json:"id"`
	Username       string    `json:"-"`
	Name           string    `json:"name"`
	BCFamily       string    `json:"bc_family"`
	BCValue        float64   `json:"bc_value"`
	MassGrains     float64   `json:"mass_grains"`
	DiameterInches float64   `json:"diameter_inches"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProfileStorage handles storage of rifle and cartridge profiles
type ProfileStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewProfileStorage creates a new SQLite profile storage
func NewProfileStorage(db *sql.DB, log *logger.Logger) (*ProfileStorage, error) {
	storage := &ProfileStorage{
		db:     db,
		logger: log.Named("sqlite-profiles"),
	}
	if err := storage.initDB(); err != nil {
		return nil, err
	}
	return storage, nil
}

func (s *ProfileStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS rifle_profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			name TEXT NOT NULL,
			muzzle_velocity_mps REAL NOT NULL,
			zero_range_m REAL NOT NULL,
			sight_height_mm REAL NOT NULL,
			twist_rate_inches REAL NOT NULL,
			twist_direction TEXT NOT NULL,
			description TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE(username, name)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create rifle_profiles table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cartridge_profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			name TEXT NOT NULL,
			bc_family TEXT NOT NULL,
			bc_value REAL NOT NULL,
			mass_grains REAL NOT NULL,
			diameter_inches REAL NOT NULL,
			description TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE(username, name)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create cartridge_profiles table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_rifle_profiles_user ON rifle_profiles(username)`)
	if err != nil {
		return fmt.Errorf("failed to create rifle profile index: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_cartridge_profiles_user ON cartridge_profiles(username)`)
	if err != nil {
		return fmt.Errorf("failed to create cartridge profile index: %w", err)
	}

	return nil
}

// SaveRifleProfile inserts or replaces a rifle profile by (user, name)
func (s *ProfileStorage) SaveRifleProfile(record *RifleProfileRecord) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO rifle_profiles
		(username, name, muzzle_velocity_mps, zero_range_m, sight_height_mm, twist_rate_inches, twist_direction, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username, name) DO UPDATE SET
			muzzle_velocity_mps = excluded.muzzle_velocity_mps,
			zero_range_m = excluded.zero_range_m,
			sight_height_mm = excluded.sight_height_mm,
			twist_rate_inches = excluded.twist_rate_inches,
			twist_direction = excluded.twist_direction,
			description = excluded.description,
			updated_at = excluded.updated_at`,
		record.Username,
		record.Name,
		record.MuzzleVelocityMps,
		record.ZeroRangeM,
		record.SightHeightMm,
		record.TwistRateInches,
		record.TwistDirection,
		record.Description,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save rifle profile: %w", err)
	}
	return nil
}

// GetRifleProfile returns one rifle profile by name, or ErrProfileNotFound
func (s *ProfileStorage) GetRifleProfile(username, name string) (*RifleProfileRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, username, name, muzzle_velocity_mps, zero_range_m, sight_height_mm, twist_rate_inches, twist_direction, description, created_at, updated_at
		FROM rifle_profiles WHERE username = ? AND name = ?`,
		username, name,
	)
	return scanRifleProfile(row)
}

// ListRifleProfiles returns all rifle profiles for a user, newest first
func (s *ProfileStorage) ListRifleProfiles(username string) ([]*RifleProfileRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, username, name, muzzle_velocity_mps, zero_range_m, sight_height_mm, twist_rate_inches, twist_direction, description, created_at, updated_at
		FROM rifle_profiles WHERE username = ? ORDER BY updated_at DESC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rifle profiles: %w", err)
	}
	defer rows.Close()

	var records []*RifleProfileRecord
	for rows.Next() {
		record, err := scanRifleProfile(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// DeleteRifleProfile removes a rifle profile by name
func (s *ProfileStorage) DeleteRifleProfile(username, name string) error {
	result, err := s.db.Exec(`DELETE FROM rifle_profiles WHERE username = ? AND name = ?`, username, name)
	if err != nil {
		return fmt.Errorf("failed to delete rifle profile: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// SaveCartridgeProfile inserts or replaces a cartridge profile by (user, name)
func (s *ProfileStorage) SaveCartridgeProfile(record *CartridgeProfileRecord) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO cartridge_profiles
		(username, name, bc_family, bc_value, mass_grains, diameter_inches, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username, name) DO UPDATE SET
			bc_family = excluded.bc_family,
			bc_value = excluded.bc_value,
			mass_grains = excluded.mass_grains,
			diameter_inches = excluded.diameter_inches,
			description = excluded.description,
			updated_at = excluded.updated_at`,
		record.Username,
		record.Name,
		record.BCFamily,
		record.BCValue,
		record.MassGrains,
		record.DiameterInches,
		record.Description,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save cartridge profile: %w", err)
	}
	return nil
}

// GetCartridgeProfile returns one cartridge profile by name, or ErrProfileNotFound
func (s *ProfileStorage) GetCartridgeProfile(username, name string) (*CartridgeProfileRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, username, name, bc_family, bc_value, mass_grains, diameter_inches, description, created_at, updated_at
		FROM cartridge_profiles WHERE username = ? AND name = ?`,
		username, name,
	)
	return scanCartridgeProfile(row)
}

// ListCartridgeProfiles returns all cartridge profiles for a user, newest first
func (s *ProfileStorage) ListCartridgeProfiles(username string) ([]*CartridgeProfileRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, username, name, bc_family, bc_value, mass_grains, diameter_inches, description, created_at, updated_at
		FROM cartridge_profiles WHERE username = ? ORDER BY updated_at DESC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cartridge profiles: %w", err)
	}
	defer rows.Close()

	var records []*CartridgeProfileRecord
	for rows.Next() {
		record, err := scanCartridgeProfile(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// DeleteCartridgeProfile removes a cartridge profile by name
func (s *ProfileStorage) DeleteCartridgeProfile(username, name string) error {
	result, err := s.db.Exec(`DELETE FROM cartridge_profiles WHERE username = ? AND name = ?`, username, name)
	if err != nil {
		return fmt.Errorf("failed to delete cartridge profile: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRifleProfile(row scanner) (*RifleProfileRecord, error) {
	var record RifleProfileRecord
	var description sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&record.ID,
		&record.Username,
		&record.Name,
		&record.MuzzleVelocityMps,
		&record.ZeroRangeM,
		&record.SightHeightMm,
		&record.TwistRateInches,
		&record.TwistDirection,
		&description,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan rifle profile: %w", err)
	}

	if description.Valid {
		record.Description = description.String
	}
	if record.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if record.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &record, nil
}

func scanCartridgeProfile(row scanner) (*CartridgeProfileRecord, error) {
	var record CartridgeProfileRecord
	var description sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&record.ID,
		&record.Username,
		&record.Name,
		&record.BCFamily,
		&record.BCValue,
		&record.MassGrains,
		&record.DiameterInches,
		&description,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan cartridge profile: %w", err)
	}

	if description.Valid {
		record.Description = description.String
	}
	if record.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if record.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &record, nil
}
