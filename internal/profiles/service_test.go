package profiles

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/vgogokhia/StrelokAI/internal/storage/sqlite"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "profiles_test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := logger.NewNop()
	storage, err := sqlite.NewProfileStorage(db, log)
	if err != nil {
		t.Fatalf("failed to create profile storage: %v", err)
	}
	return NewService(storage, log)
}

func TestRifleProfileRoundTrip(t *testing.T) {
	svc := newTestService(t)

	record := &sqlite.RifleProfileRecord{
		Name:              "precision-308",
		MuzzleVelocityMps: 850,
		ZeroRangeM:        100,
		SightHeightMm:     45,
		TwistRateInches:   10,
		TwistDirection:    "right",
		Description:       "20in barrel",
	}
	if err := svc.SaveRifle("shooter", record); err != nil {
		t.Fatalf("SaveRifle failed: %v", err)
	}

	got, err := svc.GetRifle("shooter", "precision-308")
	if err != nil {
		t.Fatalf("GetRifle failed: %v", err)
	}
	if got.MuzzleVelocityMps != 850 || got.ZeroRangeM != 100 || got.TwistDirection != "right" {
		t.Errorf("rifle profile fields not preserved: %+v", got)
	}

	// Same name overwrites instead of duplicating.
	record.MuzzleVelocityMps = 870
	if err := svc.SaveRifle("shooter", record); err != nil {
		t.Fatalf("SaveRifle update failed: %v", err)
	}
	list, err := svc.ListRifles("shooter")
	if err != nil {
		t.Fatalf("ListRifles failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 rifle profile after update, got %d", len(list))
	}
	if list[0].MuzzleVelocityMps != 870 {
		t.Errorf("expected updated muzzle velocity 870, got %f", list[0].MuzzleVelocityMps)
	}
}

func TestRifleProfileValidation(t *testing.T) {
	svc := newTestService(t)

	err := svc.SaveRifle("shooter", &sqlite.RifleProfileRecord{
		Name:              "bad",
		MuzzleVelocityMps: -10,
		ZeroRangeM:        100,
		SightHeightMm:     45,
		TwistDirection:    "right",
	})
	if !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile for negative velocity, got %v", err)
	}

	err = svc.SaveRifle("shooter", &sqlite.RifleProfileRecord{
		MuzzleVelocityMps: 850,
		ZeroRangeM:        100,
		SightHeightMm:     45,
		TwistDirection:    "right",
	})
	if !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile for missing name, got %v", err)
	}
}

func TestCartridgeProfileRoundTrip(t *testing.T) {
	svc := newTestService(t)

	record := &sqlite.CartridgeProfileRecord{
		Name:           "smk-175",
		BCFamily:       "G7",
		BCValue:        0.243,
		MassGrains:     175,
		DiameterInches: 0.308,
	}
	if err := svc.SaveCartridge("shooter", record); err != nil {
		t.Fatalf("SaveCartridge failed: %v", err)
	}

	got, err := svc.GetCartridge("shooter", "smk-175")
	if err != nil {
		t.Fatalf("GetCartridge failed: %v", err)
	}
	if got.BCFamily != "G7" || got.BCValue != 0.243 || got.MassGrains != 175 {
		t.Errorf("cartridge profile fields not preserved: %+v", got)
	}

	if err := svc.DeleteCartridge("shooter", "smk-175"); err != nil {
		t.Fatalf("DeleteCartridge failed: %v", err)
	}
	if _, err := svc.GetCartridge("shooter", "smk-175"); !errors.Is(err, sqlite.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound after delete, got %v", err)
	}
}

func TestCartridgeProfileValidation(t *testing.T) {
	svc := newTestService(t)

	err := svc.SaveCartridge("shooter", &sqlite.CartridgeProfileRecord{
		Name:           "bad-family",
		BCFamily:       "G9",
		BCValue:        0.4,
		MassGrains:     175,
		DiameterInches: 0.308,
	})
	if !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile for unknown drag family, got %v", err)
	}
}

func TestProfilesIsolatedPerUser(t *testing.T) {
	svc := newTestService(t)

	record := &sqlite.RifleProfileRecord{
		Name:              "precision-308",
		MuzzleVelocityMps: 850,
		ZeroRangeM:        100,
		SightHeightMm:     45,
		TwistDirection:    "right",
	}
	if err := svc.SaveRifle("alice", record); err != nil {
		t.Fatalf("SaveRifle failed: %v", err)
	}

	if _, err := svc.GetRifle("bob", "precision-308"); !errors.Is(err, sqlite.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound for other user, got %v", err)
	}
	if err := svc.DeleteRifle("bob", "precision-308"); !errors.Is(err, sqlite.ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound deleting other user's profile, got %v", err)
	}
}
