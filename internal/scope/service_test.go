package scope

import (
	"context"
	"testing"

	"github.com/vgogokhia/StrelokAI/internal/config"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

func TestParseIdentificationCatalogMatch(t *testing.T) {
	reply := `MANUFACTURER: Vortex
MODEL: Razor HD Gen III
CONFIDENCE: high`

	info := parseIdentification(reply)
	if info.Manufacturer != "Vortex" || info.Model != "Razor HD Gen III" {
		t.Errorf("unexpected identification: %+v", info)
	}
	if info.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9 for high, got %f", info.Confidence)
	}
	if info.MaxElevationMrad != 32.5 {
		t.Errorf("expected catalog elevation 32.5, got %f", info.MaxElevationMrad)
	}
	if len(info.ReticleOptions) == 0 {
		t.Error("expected reticle options from catalog")
	}
}

func TestParseIdentificationPartialModel(t *testing.T) {
	reply := `MANUFACTURER: Nightforce
MODEL: ATACR
CONFIDENCE: medium`

	info := parseIdentification(reply)
	if info.Model != "ATACR 5-25x56" {
		t.Errorf("expected catalog model resolution, got %q", info.Model)
	}
	if info.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7 for medium, got %f", info.Confidence)
	}
}

func TestParseIdentificationUnknown(t *testing.T) {
	reply := `MANUFACTURER: Unknown
MODEL: Unknown
CONFIDENCE: low`

	info := parseIdentification(reply)
	if info.Manufacturer != "Unknown" || info.Model != "Unknown" {
		t.Errorf("unexpected identification: %+v", info)
	}
	if info.Confidence != 0.4 {
		t.Errorf("expected confidence 0.4 for low, got %f", info.Confidence)
	}
	// Unknown scopes still get sane turret defaults.
	if info.ClickValueMrad != 0.1 || info.TurretDirection != "cw_up" {
		t.Errorf("expected default turret settings, got %+v", info)
	}
}

func TestParseIdentificationGarbage(t *testing.T) {
	info := parseIdentification("I cannot see a scope in this image.")
	if info.Manufacturer != "Unknown" || info.Model != "Unknown" {
		t.Errorf("expected Unknown fallback, got %+v", info)
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup("Leupold", "Mark 5HD"); !ok {
		t.Error("expected partial model match for Mark 5HD")
	}
	if _, ok := Lookup("vortex", "razor hd gen iii"); !ok {
		t.Error("expected case-insensitive match")
	}
	if _, ok := Lookup("Bushnell", "Elite"); ok {
		t.Error("expected no match for uncataloged scope")
	}
	if _, ok := Lookup("", ""); ok {
		t.Error("expected no match for empty input")
	}
}

func TestIdentifyDemoModeWithoutKey(t *testing.T) {
	svc := NewService(&config.AIConfig{Model: "gemini-2.0-flash", TimeoutSecs: 5}, logger.NewNop())

	info, err := svc.Identify(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	if err != nil {
		t.Fatalf("Identify failed in demo mode: %v", err)
	}
	if info.Manufacturer != "Demo" {
		t.Errorf("expected demo placeholder, got %+v", info)
	}
	if info.Confidence != 0 {
		t.Errorf("expected zero confidence in demo mode, got %f", info.Confidence)
	}
	if svc.Enabled() {
		t.Error("expected Enabled() false without API key")
	}
}
