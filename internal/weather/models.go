// Package weather fetches current meteorological conditions from the
// Open-Meteo forecast API and caches them for the solver.
package weather

import "time"

// openMeteoResponse mirrors the subset of the Open-Meteo current-weather
// payload we consume
type openMeteoResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	Current   struct {
		Time             string  `json:"time"`
		Temperature2m    float64 `json:"temperature_2m"`
		RelativeHumidity float64 `json:"relative_humidity_2m"`
		SurfacePressure  float64 `json:"surface_pressure"`
		WindSpeed10m     float64 `json:"wind_speed_10m"`
		WindDirection10m float64 `json:"wind_direction_10m"`
	} `json:"current"`
}

// Conditions holds fetched weather normalized to solver units
type Conditions struct {
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	AltitudeM        float64   `json:"altitude_m"`
	TemperatureC     float64   `json:"temperature_c"`
	PressureMbar     float64   `json:"pressure_mbar"`
	HumidityPct      float64   `json:"humidity_pct"`
	WindSpeedMps     float64   `json:"wind_speed_mps"`
	WindDirectionDeg float64   `json:"wind_direction_deg"`
	FetchedAt        time.Time `json:"fetched_at"`
	Source           string    `json:"source"` // "open-meteo", "cache" or "standard"
}
