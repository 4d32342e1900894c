package api

import (
	"encoding/json"
	"fmt"

	"github.com/vgogokhia/StrelokAI/internal/websocket"
	"github.com/vgogokhia/StrelokAI/pkg/logger"
)

// Trajectory samples per streamed websocket message.
const trajectoryBatchSize = 50

// SolveStreamHandler answers solve_request messages by streaming the
// trajectory back to the requesting client in batches
type SolveStreamHandler struct {
	handler *Handler
	logger  *logger.Logger
}

// NewSolveStreamHandler creates the websocket message handler
func NewSolveStreamHandler(handler *Handler, log *logger.Logger) *SolveStreamHandler {
	return &SolveStreamHandler{
		handler: handler,
		logger:  log.Named("ws-solve"),
	}
}

// HandleMessage dispatches one incoming websocket message
func (s *SolveStreamHandler) HandleMessage(client *websocket.Client, messageType string, data map[string]any) error {
	switch messageType {
	case websocket.MessageTypeSolveRequest:
		return s.handleSolveRequest(client, data)
	default:
		s.logger.Debug("Ignoring unsupported message type", logger.String("type", messageType))
		return nil
	}
}

func (s *SolveStreamHandler) handleSolveRequest(client *websocket.Client, data map[string]any) error {
	// Re-marshal the loose map into the typed request used by the REST path.
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal solve request: %w", err)
	}
	var req SolveRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		s.sendError(client, "invalid solve request: "+err.Error())
		return nil
	}

	response, err := s.handler.solve(&req)
	if err != nil {
		s.sendError(client, err.Error())
		return nil
	}

	summary := map[string]any{
		"zero_angle_mrad":       response.Solution.ZeroAngleMrad,
		"zero_converged":        response.Solution.ZeroConverged,
		"elevation_mrad":        response.ElevationMrad,
		"windage_mrad":          response.WindageMrad,
		"elevation_moa":         response.ElevationMOA,
		"windage_moa":           response.WindageMOA,
		"azimuth_deg":           response.AzimuthDeg,
		"spin_drift_m":          response.Solution.SpinDriftM,
		"coriolis_vertical_m":   response.Solution.CoriolisVerticalM,
		"coriolis_horizontal_m": response.Solution.CoriolisHorizontalM,
		"weather_source":        response.WeatherSource,
		"sample_count":          len(response.Solution.Trajectory),
	}
	if !client.SendMessage(&websocket.Message{Type: websocket.MessageTypeSolveSummary, Data: summary}) {
		return nil
	}

	trajectory := response.Solution.Trajectory
	for start := 0; start < len(trajectory); start += trajectoryBatchSize {
		end := start + trajectoryBatchSize
		if end > len(trajectory) {
			end = len(trajectory)
		}
		batch := map[string]any{
			"offset":  start,
			"samples": trajectory[start:end],
		}
		if !client.SendMessage(&websocket.Message{Type: websocket.MessageTypeTrajectoryBatch, Data: batch}) {
			// Client fell behind or disconnected, stop streaming.
			return nil
		}
	}

	client.SendMessage(&websocket.Message{
		Type: websocket.MessageTypeSolveComplete,
		Data: map[string]any{"sample_count": len(trajectory)},
	})
	return nil
}

func (s *SolveStreamHandler) sendError(client *websocket.Client, message string) {
	client.SendMessage(&websocket.Message{
		Type: websocket.MessageTypeError,
		Data: map[string]any{"error": message},
	})
}
