package handlers

import (
	"context"
	"net/http"
)

// AvailabilityProber reports whether a generative backend is reachable
type AvailabilityProber interface {
	IsAvailable(ctx context.Context) bool
}

// BackendStatus describes one configured generative backend. Prober is
// nil when the backend could not be constructed at startup.
type BackendStatus struct {
	Name       string
	Configured bool
	Model      string
	URL        string
	Prober     AvailabilityProber
}

// AIStatusHandler reports the AI provider configuration and liveness
type AIStatusHandler struct {
	configuredProvider string
	backends           []BackendStatus
}

// NewAIStatusHandler creates a new AI status handler
func NewAIStatusHandler(configuredProvider string, backends ...BackendStatus) *AIStatusHandler {
	return &AIStatusHandler{
		configuredProvider: configuredProvider,
		backends:           backends,
	}
}

type backendStatusResponse struct {
	Configured bool   `json:"configured"`
	Available  bool   `json:"available"`
	Model      string `json:"model"`
	URL        string `json:"url,omitempty"`
}

// GetStatus handles GET /api/ai/status. Each backend is probed live, so
// the response reflects whether Ollama is running right now.
func (h *AIStatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	services := make(map[string]backendStatusResponse, len(h.backends))
	for _, backend := range h.backends {
		status := backendStatusResponse{
			Configured: backend.Configured,
			Model:      backend.Model,
			URL:        backend.URL,
		}
		if backend.Prober != nil {
			status.Available = backend.Prober.IsAvailable(r.Context())
		}
		services[backend.Name] = status
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "success",
		"configured_provider": h.configuredProvider,
		"ai_services":         services,
	})
}
