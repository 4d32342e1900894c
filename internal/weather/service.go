package weather

import (
	"time"

	"github.com/vgogokhia/StrelokAI/internal/ballistics"
	"github.com/vgogokhia/StrelokAI/internal/config"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

// Service provides current conditions with caching and a standard-atmosphere
// fallback when the API is unreachable
type Service struct {
	client *Client
	cache  *Cache
	logger *logger.Logger
}

// NewService creates a new weather service
func NewService(cfg config.WeatherConfig, log *logger.Logger) *Service {
	return &Service{
		client: NewClient(cfg, log),
		cache:  NewCache(cfg, log),
		logger: log.Named("weather"),
	}
}

// GetConditions returns current conditions for a coordinate, serving from
// cache when fresh; cache hits carry Source "cache". On fetch failure it
// falls back to the ICAO standard atmosphere with zero wind so a firing
// solution is always possible.
func (s *Service) GetConditions(lat, lon float64) *Conditions {
	if cached := s.cache.Get(lat, lon); cached != nil {
		served := *cached
		served.Source = "cache"
		return &served
	}

	conditions, err := s.client.FetchCurrent(lat, lon)
	if err != nil {
		s.logger.Warn("Falling back to standard atmosphere",
			logger.Float64("lat", lat),
			logger.Float64("lon", lon),
			logger.Error(err))
		return StandardConditions(lat, lon)
	}

	s.cache.Set(lat, lon, conditions)
	return conditions
}

// StandardConditions returns sea-level ICAO standard atmosphere with no wind
func StandardConditions(lat, lon float64) *Conditions {
	return &Conditions{
		Latitude:     lat,
		Longitude:    lon,
		TemperatureC: ballistics.StdTemperatureC,
		PressureMbar: ballistics.StdPressureMbar,
		HumidityPct:  0,
		FetchedAt:    time.Now(),
		Source:       "standard",
	}
}

// Atmosphere converts fetched conditions to the solver's atmospheric state
func (c *Conditions) Atmosphere() ballistics.AtmosphericState {
	return ballistics.AtmosphericState{
		TemperatureC: c.TemperatureC,
		PressureMbar: c.PressureMbar,
		HumidityPct:  c.HumidityPct,
		AltitudeM:    c.AltitudeM,
	}
}

// Wind converts fetched conditions to the solver's wind input. Open-Meteo
// reports the direction the wind blows FROM; the solver wants the bearing
// relative to the shot line, which the caller resolves against azimuth.
func (c *Conditions) Wind(shotAzimuthDeg float64) ballistics.Wind {
	relative := c.WindDirectionDeg - shotAzimuthDeg
	for relative < 0 {
		relative += 360
	}
	for relative >= 360 {
		relative -= 360
	}
	return ballistics.Wind{
		SpeedMps:     c.WindSpeedMps,
		DirectionDeg: relative,
	}
}
