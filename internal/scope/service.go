package scope

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/vgogokhia/StrelokAI/internal/config"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

const identifyPrompt = `Analyze this image of a rifle scope. Identify the manufacturer and model.

Look for:
- Brand name on the scope body or turrets
- Model number or name
- Magnification range on the zoom ring
- Turret style and markings

Known scope brands to look for:
- Vortex (Razor, Viper, Diamondback, Strike Eagle)
- Nightforce (ATACR, NX8, NXS, SHV)
- Leupold (Mark 5HD, VX-5HD, VX-3i)
- Schmidt & Bender (PM II, EXOS)
- Kahles (K525i, K318i)
- Zeiss (LRP S5, Conquest)
- Primary Arms (GLx, SLx)
- Athlon (Ares ETR, Midas TAC)

Respond in this exact format:
MANUFACTURER: [brand name]
MODEL: [full model name]
CONFIDENCE: [high/medium/low]

If you cannot identify the scope, respond with:
MANUFACTURER: Unknown
MODEL: Unknown
CONFIDENCE: low
`

// Service identifies scopes from photos via Gemini vision
type Service struct {
	config *config.AIConfig
	logger *logger.Logger
}

// NewService creates a new scope recognition service
func NewService(cfg *config.AIConfig, log *logger.Logger) *Service {
	return &Service{
		config: cfg,
		logger: log.Named("scope"),
	}
}

// CatalogEntries returns the built-in scope catalog
func (s *Service) CatalogEntries() []Info {
	return Catalog()
}

// Enabled reports whether an API key is configured
func (s *Service) Enabled() bool {
	return s.config.GeminiAPIKey != ""
}

// Identify sends the image to Gemini vision and resolves the answer against
// the catalog. Without an API key it returns a demo placeholder so the
// endpoint stays functional.
func (s *Service) Identify(ctx context.Context, imageData []byte, mimeType string) (*Info, error) {
	if !s.Enabled() {
		return &Info{
			Manufacturer:     "Demo",
			Model:            "Add Gemini API key for real recognition",
			ClickValueMrad:   0.1,
			MaxElevationMrad: 25.0,
			TurretDirection:  "cw_up",
			ReticleOptions:   []string{"MIL-R"},
			Confidence:       0.0,
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.config.TimeoutSecs)*time.Second)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.config.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(identifyPrompt),
			genai.NewPartFromBytes(imageData, mimeType),
		}, genai.RoleUser),
	}

	response, err := client.Models.GenerateContent(ctx, s.config.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini vision request failed: %w", err)
	}

	info := parseIdentification(response.Text())
	s.logger.Info("Scope identified",
		logger.String("manufacturer", info.Manufacturer),
		logger.String("model", info.Model),
		logger.Float64("confidence", info.Confidence))
	return info, nil
}

// parseIdentification turns the MANUFACTURER/MODEL/CONFIDENCE reply into an
// Info, preferring catalog entries when the answer matches one
func parseIdentification(text string) *Info {
	manufacturer := "Unknown"
	model := "Unknown"
	confidenceStr := "low"

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "MANUFACTURER:"):
			manufacturer = strings.TrimSpace(strings.TrimPrefix(line, "MANUFACTURER:"))
		case strings.HasPrefix(line, "MODEL:"):
			model = strings.TrimSpace(strings.TrimPrefix(line, "MODEL:"))
		case strings.HasPrefix(line, "CONFIDENCE:"):
			confidenceStr = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:")))
		}
	}

	confidence := 0.5
	switch confidenceStr {
	case "high":
		confidence = 0.9
	case "medium":
		confidence = 0.7
	case "low":
		confidence = 0.4
	}

	if entry, ok := Lookup(manufacturer, model); ok {
		entry.Confidence = confidence
		return &entry
	}

	return &Info{
		Manufacturer:    manufacturer,
		Model:           model,
		ClickValueMrad:  0.1,
		TurretDirection: "cw_up",
		Confidence:      confidence,
	}
}
