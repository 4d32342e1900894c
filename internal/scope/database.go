// Package scope identifies rifle scopes from photos and maps them to
// known turret and reticle settings.
package scope

import "strings"

// Info describes an identified scope and its adjustment characteristics
type Info struct {
	Manufacturer     string   `json:"manufacturer"`
	Model            string   `json:"model"`
	ClickValueMrad   float64  `json:"click_value_mrad"`
	MaxElevationMrad float64  `json:"max_elevation_mrad"`
	TurretDirection  string   `json:"turret_direction"` // "cw_up" = clockwise dials up
	ReticleOptions   []string `json:"reticle_options"`
	Confidence       float64  `json:"confidence"` // 0..1
}

// knownScopes is the built-in catalog of common long-range scopes
var knownScopes = []Info{
	{
		Manufacturer:     "Vortex",
		Model:            "Razor HD Gen III",
		ClickValueMrad:   0.1,
		MaxElevationMrad: 32.5,
		TurretDirection:  "cw_up",
		ReticleOptions:   []string{"EBR-7C", "EBR-7B"},
	},
	{
		Manufacturer:     "Vortex",
		Model:            "Viper PST Gen II",
		ClickValueMrad:   0.1,
		MaxElevationMrad: 27.5,
		TurretDirection:  "cw_up",
		ReticleOptions:   []string{"EBR-7C", "EBR-4"},
	},
	{
		Manufacturer:     "Nightforce",
		Model:            "ATACR 5-25x56",
		ClickValueMrad:   0.1,
		MaxElevationMrad: 35.0,
		TurretDirection:  "cw_up",
		ReticleOptions:   []string{"MIL-R", "MIL-XT", "MOAR-T"},
	},
	{
		Manufacturer:     "Nightforce",
		Model:            "NX8 2.5-20x50",
		ClickValueMrad:   0.1,
		MaxElevationMrad: 31.5,
		TurretDirection:  "cw_up",
		ReticleOptions:   []string{"MIL-C", "MIL-CF2"},
	},
	{
		Manufacturer:     "Leupold",
		Model:            "Mark 5HD 5-25x56",
		ClickValueMrad:   0.1,
		MaxElevationMrad: 29.0,
		TurretDirection:  "cw_up",
		ReticleOptions:   []string{"TMR", "Tremor 3", "H59"},
	},
	{
		Manufacturer:     "Schmidt & Bender",
		Model:            "PM II 5-25x56",
		ClickValueMrad:   0.1,
		MaxElevationMrad: 26.0,
		TurretDirection:  "cw_up",
		ReticleOptions:   []string{"P4FL", "MRAD", "GR²ID"},
	},
	{
		Manufacturer:     "Kahles",
		Model:            "K525i 5-25x56",
		ClickValueMrad:   0.1,
		MaxElevationMrad: 26.0,
		TurretDirection:  "cw_up",
		ReticleOptions:   []string{"SKMR4", "MSR2"},
	},
	{
		Manufacturer:     "Primary Arms",
		Model:            "GLx 4-16x50",
		ClickValueMrad:   0.1,
		MaxElevationMrad: 25.0,
		TurretDirection:  "cw_up",
		ReticleOptions:   []string{"ACSS HUD DMR", "Athena BPR"},
	},
	{
		Manufacturer:     "Athlon",
		Model:            "Ares ETR 4.5-30x56",
		ClickValueMrad:   0.1,
		MaxElevationMrad: 36.0,
		TurretDirection:  "cw_up",
		ReticleOptions:   []string{"APLR", "APRS"},
	},
	{
		Manufacturer:     "Zeiss",
		Model:            "LRP S5 525-56",
		ClickValueMrad:   0.1,
		MaxElevationMrad: 24.0,
		TurretDirection:  "cw_up",
		ReticleOptions:   []string{"ZF-MRi", "MRAD"},
	},
}

// Lookup matches a recognized manufacturer/model pair against the catalog.
// Matching is substring based so partial model names still resolve.
func Lookup(manufacturer, model string) (Info, bool) {
	manufacturer = strings.ToLower(strings.TrimSpace(manufacturer))
	model = strings.ToLower(strings.TrimSpace(model))
	if manufacturer == "" || model == "" {
		return Info{}, false
	}

	for _, entry := range knownScopes {
		entryMfr := strings.ToLower(entry.Manufacturer)
		entryModel := strings.ToLower(entry.Model)
		if !strings.Contains(entryMfr, manufacturer) && !strings.Contains(manufacturer, entryMfr) {
			continue
		}
		if strings.Contains(entryModel, model) || strings.Contains(model, entryModel) {
			return entry, true
		}
	}
	return Info{}, false
}

// Catalog returns the full built-in scope list
func Catalog() []Info {
	result := make([]Info, len(knownScopes))
	copy(result, knownScopes)
	return result
}
