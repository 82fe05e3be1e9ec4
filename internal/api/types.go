package api

import "tomoru/internal/stats"

// StatsResponse is the body of GET /api/stats
type StatsResponse struct {
	Records []stats.IPCount `json:"records"`
	Total   uint64          `json:"total"`
	Error   string          `json:"error,omitempty"`
}
