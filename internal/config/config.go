package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server  ServerConfig  `toml:"server"`  // HTTP server settings
	Logging LoggingConfig `toml:"logging"` // Application logging settings
	Storage StorageConfig `toml:"storage"` // Data persistence settings
	Station StationConfig `toml:"station"` // Default shooting location settings
	Weather WeatherConfig `toml:"wx"`      // Weather data fetching and caching settings
	Solver  SolverConfig  `toml:"solver"`  // Ballistic solver defaults
	AI      AIConfig      `toml:"ai"`      // Gemini vision settings for scope recognition
	Auth    AuthConfig    `toml:"auth"`    // User account and session settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Keep-alive idle timeout
	RateLimitPerSec    float64  `toml:"rate_limit_per_sec"`    // Per-IP request rate limit (0 = disabled)
	RateLimitBurst     int      `toml:"rate_limit_burst"`      // Per-IP burst allowance
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// StorageConfig contains data persistence configuration
type StorageConfig struct {
	Type       string `toml:"type"`        // Storage backend type (currently only "sqlite" is supported)
	SQLitePath string `toml:"sqlite_path"` // Path to the SQLite database file
}

// StationConfig contains the default shooting location, used when the
// caller does not supply coordinates
type StationConfig struct {
	Latitude  float64 `toml:"latitude"`   // Latitude in decimal degrees
	Longitude float64 `toml:"longitude"`  // Longitude in decimal degrees
	AltitudeM float64 `toml:"altitude_m"` // Elevation above sea level in meters
}

// WeatherConfig contains weather data fetching and caching configuration
type WeatherConfig struct {
	APIBaseURL            string `toml:"api_base_url"`            // Base URL for the Open-Meteo forecast API
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"` // HTTP request timeout in seconds
	MaxRetries            int    `toml:"max_retries"`             // Maximum number of retry attempts for failed requests
	CacheExpiryMinutes    int    `toml:"cache_expiry_minutes"`    // How long fetched conditions stay fresh
}

// SolverConfig contains ballistic solver defaults
type SolverConfig struct {
	SampleStepM  float64 `toml:"sample_step_m"`  // Downrange sampling interval for trajectory tables
	MaxTargetM   float64 `toml:"max_target_m"`   // Upper bound accepted for target range requests
	DefaultZeroM float64 `toml:"default_zero_m"` // Zero range used when a profile does not specify one
}

// AIConfig contains Gemini vision settings for scope recognition
type AIConfig struct {
	GeminiAPIKey string `toml:"gemini_api_key"` // Gemini API key (empty disables recognition)
	Model        string `toml:"model"`          // Gemini model to use (e.g., "gemini-2.0-flash")
	TimeoutSecs  int    `toml:"timeout_seconds"`
}

// AuthConfig contains user account and session settings
type AuthConfig struct {
	SessionTTLHours   int `toml:"session_ttl_hours"` // Session token lifetime
	MinUsernameLength int `toml:"min_username_length"`
	MinPasswordLength int `toml:"min_password_length"`
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple
// locations in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,
		"configs/config.toml",
		"config.toml",
	}

	var lastErr error
	for _, path := range searchPaths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			lastErr = fmt.Errorf("config file not found: %s", path)
			continue
		}
		config, err := Load(path)
		if err != nil {
			lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
			continue
		}
		return config, nil
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations. Last error: %w", lastErr)
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitPerSec < 0 {
		return fmt.Errorf("rate_limit_per_sec must be >= 0: %f", c.Server.RateLimitPerSec)
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 20
	}

	// Logging
	switch c.Logging.Level {
	case "":
		c.Logging.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "":
		c.Logging.Format = "console"
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	// Storage
	if c.Storage.Type == "" {
		c.Storage.Type = "sqlite"
	}
	if c.Storage.Type != "sqlite" {
		return fmt.Errorf("invalid storage type: %s (only 'sqlite' is supported)", c.Storage.Type)
	}
	if c.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite_path is required when storage type is sqlite")
	}

	// Station
	if c.Station.Latitude < -90 || c.Station.Latitude > 90 {
		return fmt.Errorf("invalid station latitude: %f", c.Station.Latitude)
	}
	if c.Station.Longitude < -180 || c.Station.Longitude > 180 {
		return fmt.Errorf("invalid station longitude: %f", c.Station.Longitude)
	}

	// Weather
	if c.Weather.APIBaseURL == "" {
		c.Weather.APIBaseURL = "https://api.open-meteo.com/v1/forecast"
	}
	if c.Weather.RequestTimeoutSeconds <= 0 {
		c.Weather.RequestTimeoutSeconds = 10
	}
	if c.Weather.MaxRetries < 0 {
		return fmt.Errorf("weather max_retries must be 0 or greater: %d", c.Weather.MaxRetries)
	}
	if c.Weather.CacheExpiryMinutes <= 0 {
		c.Weather.CacheExpiryMinutes = 15
	}

	// Solver
	if c.Solver.SampleStepM <= 0 {
		c.Solver.SampleStepM = 10
	}
	if c.Solver.MaxTargetM <= 0 {
		c.Solver.MaxTargetM = 3000
	}
	if c.Solver.DefaultZeroM <= 0 {
		c.Solver.DefaultZeroM = 100
	}

	// AI
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.0-flash"
	}
	if c.AI.TimeoutSecs <= 0 {
		c.AI.TimeoutSecs = 30
	}

	// Auth
	if c.Auth.SessionTTLHours <= 0 {
		c.Auth.SessionTTLHours = 24
	}
	if c.Auth.MinUsernameLength <= 0 {
		c.Auth.MinUsernameLength = 3
	}
	if c.Auth.MinPasswordLength <= 0 {
		c.Auth.MinPasswordLength = 4
	}

	return nil
}
