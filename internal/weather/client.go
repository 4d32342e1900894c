package weather

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/vgogokhia/StrelokAI/internal/config"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

// Client handles HTTP requests to the Open-Meteo forecast API
type Client struct {
	config     config.WeatherConfig
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new weather API client
func NewClient(cfg config.WeatherConfig, log *logger.Logger) *Client {
	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		},
		logger: log.Named("weather-client"),
	}
}

// FetchCurrent fetches current conditions for a coordinate
func (c *Client) FetchCurrent(lat, lon float64) (*Conditions, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("current", "temperature_2m,relative_humidity_2m,surface_pressure,wind_speed_10m,wind_direction_10m")
	params.Set("wind_speed_unit", "ms")

	requestURL := fmt.Sprintf("%s?%s", c.config.APIBaseURL, params.Encode())

	var response openMeteoResponse
	if err := c.fetchWithRetry(requestURL, lat, lon, &response); err != nil {
		return nil, err
	}

	return &Conditions{
		Latitude:         response.Latitude,
		Longitude:        response.Longitude,
		AltitudeM:        response.Elevation,
		TemperatureC:     response.Current.Temperature2m,
		PressureMbar:     response.Current.SurfacePressure,
		HumidityPct:      response.Current.RelativeHumidity,
		WindSpeedMps:     response.Current.WindSpeed10m,
		WindDirectionDeg: response.Current.WindDirection10m,
		FetchedAt:        time.Now(),
		Source:           "open-meteo",
	}, nil
}

// fetchWithRetry performs HTTP request with retry logic and exponential backoff
func (c *Client) fetchWithRetry(requestURL string, lat, lon float64, target interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoffDuration := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			c.logger.Info("Retrying weather fetch",
				logger.Float64("lat", lat),
				logger.Float64("lon", lon),
				logger.Int("attempt", attempt),
				logger.String("backoff", backoffDuration.String()))
			time.Sleep(backoffDuration)
		}

		resp, err := c.httpClient.Get(requestURL)
		if err != nil {
			lastErr = fmt.Errorf("error making request to weather API: %w", err)
			c.logger.Warn("Weather API request failed, may retry",
				logger.Error(err),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.config.MaxRetries+1))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			c.logger.Warn("Weather API returned non-OK status, may retry",
				logger.Int("status_code", resp.StatusCode),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.config.MaxRetries+1))
			continue
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("error decoding weather data: %w", err)
			c.logger.Warn("Failed to decode weather data, may retry",
				logger.Error(err),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.config.MaxRetries+1))
			continue
		}

		if attempt > 0 {
			c.logger.Info("Successfully fetched weather data after retries",
				logger.Int("attempts_needed", attempt+1))
		}
		return nil
	}

	c.logger.Error("All attempts to fetch weather data failed",
		logger.Error(lastErr),
		logger.Int("max_attempts", c.config.MaxRetries+1))
	return lastErr
}
