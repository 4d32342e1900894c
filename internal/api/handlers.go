// Package api exposes the HTTP surface of the solver service.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/vgogokhia/StrelokAI/internal/auth"
	"github.com/vgogokhia/StrelokAI/internal/ballistics"
	"github.com/vgogokhia/StrelokAI/internal/config"
	"github.com/vgogokhia/StrelokAI/internal/geo"
	"github.com/vgogokhia/StrelokAI/internal/metrics"
	"github.com/vgogokhia/StrelokAI/internal/profiles"
	"github.com/vgogokhia/StrelokAI/internal/scope"
	"github.com/vgogokhia/StrelokAI/internal/weather"
	"github.com/vgogokhia/StrelokAI/internal/websocket"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

// Handler contains the API handlers
type Handler struct {
	weatherService *weather.Service
	authService    *auth.Service
	profileService *profiles.Service
	scopeService   *scope.Service
	config         *config.Config
	logger         *logger.Logger
	wsServer       *websocket.Server
	metrics        *metrics.Collector
}

// NewHandler creates a new API handler
func NewHandler(weatherService *weather.Service, authService *auth.Service, profileService *profiles.Service,
	scopeService *scope.Service, cfg *config.Config, log *logger.Logger,
	wsServer *websocket.Server, collector *metrics.Collector) *Handler {
	return &Handler{
		weatherService: weatherService,
		authService:    authService,
		profileService: profileService,
		scopeService:   scopeService,
		config:         cfg,
		logger:         log.Named("api-handler"),
		wsServer:       wsServer,
		metrics:        collector,
	}
}

// SolveRequest is the payload for POST /api/v1/solve
type SolveRequest struct {
	Projectile ballistics.Projectile        `json:"projectile"`
	Rifle      ballistics.Rifle             `json:"rifle"`
	Atmosphere *ballistics.AtmosphericState `json:"atmosphere,omitempty"`
	Wind       *ballistics.Wind             `json:"wind,omitempty"`

	LatitudeDeg  float64 `json:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg"`
	AzimuthDeg   float64 `json:"azimuth_deg"`
	// MagneticAzimuth marks azimuth_deg as a raw compass reading that
	// must be corrected by the local magnetic declination.
	MagneticAzimuth bool    `json:"magnetic_azimuth,omitempty"`
	ElevationDeg    float64 `json:"elevation_deg,omitempty"`

	TargetRangeM float64 `json:"target_range_m"`
	SampleStepM  float64 `json:"sample_step_m,omitempty"`

	// UseCurrentWeather fetches live conditions for the firing point
	// instead of atmosphere/wind from the request body.
	UseCurrentWeather bool `json:"use_current_weather,omitempty"`
}

// SolveResponse is the reply for POST /api/v1/solve
type SolveResponse struct {
	Solution      *ballistics.Solution         `json:"solution"`
	AtTarget      *ballistics.TrajectorySample `json:"at_target,omitempty"`
	ElevationMrad float64                      `json:"elevation_mrad"`
	WindageMrad   float64                      `json:"windage_mrad"`
	ElevationMOA  float64                      `json:"elevation_moa"`
	WindageMOA    float64                      `json:"windage_moa"`
	AzimuthDeg    float64                      `json:"azimuth_deg"`
	WeatherSource string                       `json:"weather_source,omitempty"`
}

// Solve computes a full firing solution
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	response, err := h.solve(&req)
	if err != nil {
		if errors.Is(err, ballistics.ErrInvalidProjectile) || errors.Is(err, ballistics.ErrInvalidRifle) ||
			errors.Is(err, errBadSolveRequest) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, response)
}

var errBadSolveRequest = errors.New("invalid solve request")

// solve runs one firing solution; shared by the REST handler and the
// websocket streamer
func (h *Handler) solve(req *SolveRequest) (*SolveResponse, error) {
	if req.TargetRangeM <= 0 || req.TargetRangeM > h.config.Solver.MaxTargetM {
		return nil, fmt.Errorf("%w: target_range_m must be between 0 and %s",
			errBadSolveRequest, strconv.FormatFloat(h.config.Solver.MaxTargetM, 'f', 0, 64))
	}

	lat, lon := req.LatitudeDeg, req.LongitudeDeg
	if lat == 0 && lon == 0 {
		lat, lon = h.config.Station.Latitude, h.config.Station.Longitude
	}

	atmosphere := ballistics.StandardState()
	wind := ballistics.Wind{}
	weatherSource := ""

	var conditions *weather.Conditions
	if req.UseCurrentWeather {
		conditions = h.weatherService.GetConditions(lat, lon)
		atmosphere = conditions.Atmosphere()
		weatherSource = conditions.Source
		if h.metrics != nil {
			h.metrics.RecordWeatherFetch(conditions.Source)
		}
	} else {
		if req.Atmosphere != nil {
			atmosphere = *req.Atmosphere
		}
		if req.Wind != nil {
			wind = *req.Wind
		}
	}

	azimuth := req.AzimuthDeg
	if req.MagneticAzimuth {
		azimuth = geo.TrueAzimuth(req.AzimuthDeg, lat, lon, atmosphere.AltitudeM, time.Now())
	}
	if conditions != nil {
		wind = conditions.Wind(azimuth)
	}

	rifle := req.Rifle
	if rifle.ZeroRangeM <= 0 {
		rifle.ZeroRangeM = h.config.Solver.DefaultZeroM
	}

	sampleStep := req.SampleStepM
	if sampleStep <= 0 {
		sampleStep = h.config.Solver.SampleStepM
	}

	solver, err := ballistics.NewSolver(ballistics.ShotConditions{
		Projectile:   req.Projectile,
		Rifle:        rifle,
		Atmosphere:   atmosphere,
		Wind:         wind,
		LatitudeDeg:  lat,
		AzimuthDeg:   azimuth,
		ElevationDeg: req.ElevationDeg,
	}, h.logger)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	solution, err := solver.Solve(req.TargetRangeM, sampleStep)
	if h.metrics != nil {
		iterations := 0
		if solution != nil {
			iterations = solution.ZeroIterations
		}
		h.metrics.RecordSolve(string(req.Projectile.BC.Family), time.Since(start), iterations, err)
	}
	if err != nil {
		return nil, err
	}

	response := &SolveResponse{
		Solution:      solution,
		AzimuthDeg:    azimuth,
		WeatherSource: weatherSource,
	}
	if atTarget, ok := solution.AtRange(req.TargetRangeM); ok {
		response.AtTarget = &atTarget
		response.ElevationMrad = -atTarget.DropMrad()
		response.WindageMrad = -atTarget.WindageMrad()
		response.ElevationMOA = -atTarget.DropMOA()
		response.WindageMOA = -atTarget.WindageMOA()
	}
	return response, nil
}

// GetWeather returns current conditions for a coordinate, defaulting to
// the configured station
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	lat := h.config.Station.Latitude
	lon := h.config.Station.Longitude

	if v := r.URL.Query().Get("lat"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid lat parameter")
			return
		}
		lat = parsed
	}
	if v := r.URL.Query().Get("lon"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid lon parameter")
			return
		}
		lon = parsed
	}

	conditions := h.weatherService.GetConditions(lat, lon)
	if h.metrics != nil {
		h.metrics.RecordWeatherFetch(conditions.Source)
	}
	WriteJSON(w, http.StatusOK, conditions)
}

// Health reports service liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
