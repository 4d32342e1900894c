package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/vgogokhia/StrelokAI/internal/auth"
	"github.com/vgogokhia/StrelokAI/internal/config"
	"github.com/vgogokhia/StrelokAI/internal/profiles"
	"github.com/vgogokhia/StrelokAI/internal/scope"
	"github.com/vgogokhia/StrelokAI/internal/storage/sqlite"
	"github.com/vgogokhia/StrelokAI/internal/weather"
	"github.com/vgogokhia/StrelokAI/internal/websocket"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

const weatherPayload = `{
	"latitude": 46.05,
	"longitude": 14.51,
	"elevation": 295.0,
	"current": {
		"temperature_2m": 21.4,
		"relative_humidity_2m": 55,
		"surface_pressure": 982.3,
		"wind_speed_10m": 4.2,
		"wind_direction_10m": 270
	}
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	weatherUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(weatherPayload))
	}))
	t.Cleanup(weatherUpstream.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{
			CORSAllowedOrigins: []string{"*"},
		},
		Station: config.StationConfig{Latitude: 46.05, Longitude: 14.51},
		Weather: config.WeatherConfig{
			APIBaseURL:            weatherUpstream.URL,
			RequestTimeoutSeconds: 5,
			MaxRetries:            0,
			CacheExpiryMinutes:    10,
		},
		Solver: config.SolverConfig{
			SampleStepM:  10,
			MaxTargetM:   3000,
			DefaultZeroM: 100,
		},
		AI: config.AIConfig{Model: "gemini-2.0-flash", TimeoutSecs: 5},
		Auth: config.AuthConfig{
			SessionTTLHours:   24,
			MinUsernameLength: 3,
			MinPasswordLength: 4,
		},
	}

	log := logger.NewNop()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "api_test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users, err := sqlite.NewUserStorage(db, log)
	if err != nil {
		t.Fatalf("failed to create user storage: %v", err)
	}
	profileStorage, err := sqlite.NewProfileStorage(db, log)
	if err != nil {
		t.Fatalf("failed to create profile storage: %v", err)
	}

	handler := NewHandler(
		weather.NewService(cfg.Weather, log),
		auth.NewService(users, &cfg.Auth, log),
		profiles.NewService(profileStorage, log),
		scope.NewService(&cfg.AI, log),
		cfg,
		log,
		websocket.NewServer(log),
		nil, // metrics registration is global, keep tests unregistered
	)
	server := httptest.NewServer(NewRouter(handler, cfg).Routes())
	t.Cleanup(server.Close)
	return server
}

func solveBody() []byte {
	return []byte(`{
		"projectile": {"mass_grains": 175, "diameter_inches": 0.308, "bc": {"family": "G7", "value": 0.243}},
		"rifle": {"muzzle_velocity_mps": 850, "zero_range_m": 100, "sight_height_mm": 45, "twist_direction": "right"},
		"atmosphere": {"temperature_c": 15, "pressure_mbar": 1013.25, "humidity_pct": 0},
		"wind": {"speed_mps": 4, "direction_deg": 90},
		"latitude_deg": 45,
		"azimuth_deg": 90,
		"target_range_m": 600
	}`)
}

func TestSolveEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/v1/solve", "application/json", bytes.NewReader(solveBody()))
	if err != nil {
		t.Fatalf("solve request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result SolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Solution == nil || len(result.Solution.Trajectory) == 0 {
		t.Fatal("expected a trajectory in the response")
	}
	if result.AtTarget == nil {
		t.Fatal("expected an at_target sample")
	}
	// 600 m is well past the 100 m zero, the bullet has dropped.
	if result.ElevationMrad <= 0 {
		t.Errorf("expected positive elevation correction at 600 m, got %f", result.ElevationMrad)
	}
	if !result.Solution.ZeroConverged {
		t.Error("expected zero search to converge")
	}
}

func TestSolveRejectsBadRange(t *testing.T) {
	server := newTestServer(t)

	for _, body := range []string{
		`{"target_range_m": 0}`,
		`{"target_range_m": 99999}`,
	} {
		resp, err := http.Post(server.URL+"/api/v1/solve", "application/json", bytes.NewReader([]byte(body)))
		if err != nil {
			t.Fatalf("solve request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 for %s, got %d", body, resp.StatusCode)
		}
	}
}

func TestSolveRejectsInvalidProjectile(t *testing.T) {
	server := newTestServer(t)

	body := []byte(`{
		"projectile": {"mass_grains": -5, "diameter_inches": 0.308, "bc": {"family": "G7", "value": 0.243}},
		"rifle": {"muzzle_velocity_mps": 850, "zero_range_m": 100},
		"target_range_m": 600
	}`)
	resp, err := http.Post(server.URL+"/api/v1/solve", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("solve request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid projectile, got %d", resp.StatusCode)
	}
}

func TestWeatherEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/weather?lat=46.05&lon=14.51")
	if err != nil {
		t.Fatalf("weather request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var conditions weather.Conditions
	if err := json.NewDecoder(resp.Body).Decode(&conditions); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if conditions.TemperatureC != 21.4 || conditions.Source != "open-meteo" {
		t.Errorf("unexpected conditions: %+v", conditions)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthFlowAndProfileAccess(t *testing.T) {
	server := newTestServer(t)

	// Profiles require a session.
	resp, err := http.Get(server.URL + "/api/v1/profiles/rifles")
	if err != nil {
		t.Fatalf("profiles request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	// Register and reuse the returned token.
	resp, err = http.Post(server.URL+"/api/v1/auth/register", "application/json",
		bytes.NewReader([]byte(`{"username": "shooter", "password": "secret"}`)))
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d", resp.StatusCode)
	}
	var session auth.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	resp.Body.Close()

	// Save a rifle profile with the token.
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/v1/profiles/rifles",
		bytes.NewReader([]byte(`{
			"name": "precision-308",
			"muzzle_velocity_mps": 850,
			"zero_range_m": 100,
			"sight_height_mm": 45,
			"twist_direction": "right"
		}`)))
	req.Header.Set("Authorization", "Bearer "+session.Token)
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("save profile request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from profile save, got %d", resp.StatusCode)
	}

	// And read it back.
	req, _ = http.NewRequest(http.MethodGet, server.URL+"/api/v1/profiles/rifles/precision-308", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get profile request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from profile get, got %d", resp.StatusCode)
	}
	var record sqlite.RifleProfileRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if record.MuzzleVelocityMps != 850 {
		t.Errorf("profile fields not preserved: %+v", record)
	}
}

func TestScopeIdentifyDemoMode(t *testing.T) {
	server := newTestServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "scope.jpg")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
	writer.Close()

	resp, err := http.Post(server.URL+"/api/v1/scope/identify", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("identify request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var info scope.Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if info.Manufacturer != "Demo" {
		t.Errorf("expected demo placeholder without API key, got %+v", info)
	}
}

func TestScopeCatalogEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/v1/scopes")
	if err != nil {
		t.Fatalf("scopes request failed: %v", err)
	}
	defer resp.Body.Close()

	var catalog []scope.Info
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(catalog) == 0 {
		t.Error("expected a non-empty scope catalog")
	}
}

func TestRateLimit(t *testing.T) {
	weatherUpstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(weatherPayload))
	}))
	defer weatherUpstream.Close()

	cfg := &config.Config{
		Server: config.ServerConfig{RateLimitPerSec: 1, RateLimitBurst: 1},
		Weather: config.WeatherConfig{
			APIBaseURL:            weatherUpstream.URL,
			RequestTimeoutSeconds: 5,
			CacheExpiryMinutes:    10,
		},
		Solver: config.SolverConfig{SampleStepM: 10, MaxTargetM: 3000, DefaultZeroM: 100},
	}
	log := logger.NewNop()
	handler := NewHandler(weather.NewService(cfg.Weather, log), nil, nil, nil, cfg, log, websocket.NewServer(log), nil)
	server := httptest.NewServer(NewRouter(handler, cfg).Routes())
	defer server.Close()

	var statuses []int
	for i := 0; i < 3; i++ {
		resp, err := http.Get(server.URL + "/api/v1/health")
		if err != nil {
			t.Fatalf("health request failed: %v", err)
		}
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}

	limited := false
	for _, status := range statuses {
		if status == http.StatusTooManyRequests {
			limited = true
		}
	}
	if !limited {
		t.Errorf("expected a 429 among %v", statuses)
	}
	if statuses[0] != http.StatusOK {
		t.Errorf("expected first request to pass, got %d", statuses[0])
	}
}

func ExampleWriteJSON() {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, map[string]string{"status": "ok"})
	fmt.Print(rec.Body.String())
	// Output: {"status":"ok"}
}
