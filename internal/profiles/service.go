// Package profiles manages saved rifle and cartridge configurations.
package profiles

import (
	"errors"
	"fmt"

	"github.com/vgogokhia/StrelokAI/internal/ballistics"
	"github.com/vgogokhia/StrelokAI/internal/storage/sqlite"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

// ErrInvalidProfile is returned when a profile fails validation before save
var ErrInvalidProfile = errors.New("invalid profile")

// Service validates and persists rifle and cartridge profiles
type Service struct {
	storage *sqlite.ProfileStorage
	logger  *logger.Logger
}

// NewService creates a new profile service
func NewService(storage *sqlite.ProfileStorage, log *logger.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  log.Named("profiles"),
	}
}

// SaveRifle validates and stores a rifle profile for a user
func (s *Service) SaveRifle(username string, record *sqlite.RifleProfileRecord) error {
	if record.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}

	rifle := ballistics.Rifle{
		MuzzleVelocityMps: record.MuzzleVelocityMps,
		ZeroRangeM:        record.ZeroRangeM,
		SightHeightMm:     record.SightHeightMm,
		TwistRateInches:   record.TwistRateInches,
		TwistDirection:    ballistics.TwistDirection(record.TwistDirection),
	}
	if err := rifle.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	record.Username = username
	if err := s.storage.SaveRifleProfile(record); err != nil {
		return err
	}
	s.logger.Debug("Saved rifle profile",
		logger.String("username", username),
		logger.String("name", record.Name))
	return nil
}

// GetRifle returns one rifle profile by name
func (s *Service) GetRifle(username, name string) (*sqlite.RifleProfileRecord, error) {
	return s.storage.GetRifleProfile(username, name)
}

// ListRifles returns all rifle profiles for a user
func (s *Service) ListRifles(username string) ([]*sqlite.RifleProfileRecord, error) {
	return s.storage.ListRifleProfiles(username)
}

// DeleteRifle removes a rifle profile by name
func (s *Service) DeleteRifle(username, name string) error {
	return s.storage.DeleteRifleProfile(username, name)
}

// SaveCartridge validates and stores a cartridge profile for a user
func (s *Service) SaveCartridge(username string, record *sqlite.CartridgeProfileRecord) error {
	if record.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}

	bc, err := ballistics.NewBallisticCoefficient(ballistics.DragFamily(record.BCFamily), record.BCValue)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	projectile := ballistics.Projectile{
		MassGrains:     record.MassGrains,
		DiameterInches: record.DiameterInches,
		BC:             bc,
	}
	if err := projectile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	record.Username = username
	if err := s.storage.SaveCartridgeProfile(record); err != nil {
		return err
	}
	s.logger.Debug("Saved cartridge profile",
		logger.String("username", username),
		logger.String("name", record.Name))
	return nil
}

// GetCartridge returns one cartridge profile by name
func (s *Service) GetCartridge(username, name string) (*sqlite.CartridgeProfileRecord, error) {
	return s.storage.GetCartridgeProfile(username, name)
}

// ListCartridges returns all cartridge profiles for a user
func (s *Service) ListCartridges(username string) ([]*sqlite.CartridgeProfileRecord, error) {
	return s.storage.ListCartridgeProfiles(username)
}

// DeleteCartridge removes a cartridge profile by name
func (s *Service) DeleteCartridge(username, name string) error {
	return s.storage.DeleteCartridgeProfile(username, name)
}
