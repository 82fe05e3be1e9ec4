package api

import (
	"encoding/json"
	"net/http"

	"tomoru/internal/logger"
	"tomoru/internal/stats"

	"go.uber.org/zap"
)

type Snapshotter interface {
	Snapshot() ([]stats.IPCount, error)
}

type Handler struct {
	counter Snapshotter
}

func NewHandler(counter Snapshotter) *Handler {
	return &Handler{counter: counter}
}

// HandleStats returns the current ranked snapshot as JSON
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		sendJSONResponse(w, StatsResponse{Error: "Method not allowed"}, http.StatusMethodNotAllowed)
		return
	}

	entries, err := h.counter.Snapshot()
	if err != nil {
		logger.L().Error("API error: failed to read request counts", zap.Error(err))
		sendJSONResponse(w, StatsResponse{
			Error: "Failed to read request counts",
		}, http.StatusInternalServerError)
		return
	}

	var total uint64
	for _, e := range entries {
		total += e.Count
	}

	sendJSONResponse(w, StatsResponse{
		Records: entries,
		Total:   total,
	}, http.StatusOK)
}

func sendJSONResponse(w http.ResponseWriter, response interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.L().Warn("failed to encode response", zap.Error(err))
	}
}
