package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tomoru/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCounter struct{}

func (brokenCounter) Snapshot() ([]stats.IPCount, error) {
	return nil, stats.ErrPoisoned
}

func TestHandleStats(t *testing.T) {
	c := stats.NewRequestCounter()
	require.NoError(t, c.Increment("127.0.0.1"))
	require.NoError(t, c.Increment("127.0.0.1"))
	require.NoError(t, c.Increment("127.0.0.2"))

	rec := httptest.NewRecorder()
	NewHandler(c).HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []stats.IPCount{
		{IP: "127.0.0.1", Count: 2},
		{IP: "127.0.0.2", Count: 1},
	}, resp.Records)
	assert.Equal(t, uint64(3), resp.Total)
	assert.Empty(t, resp.Error)
}

func TestHandleStatsEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(stats.NewRequestCounter()).HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"records":[],"total":0}`, rec.Body.String())
}

func TestHandleStatsErrors(t *testing.T) {
	tests := []struct {
		name    string
		counter Snapshotter
		method  string
		code    int
	}{
		{name: "method not allowed", counter: stats.NewRequestCounter(), method: http.MethodPost, code: http.StatusMethodNotAllowed},
		{name: "broken counter", counter: brokenCounter{}, method: http.MethodGet, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(tt.counter).HandleStats(rec, httptest.NewRequest(tt.method, "/api/stats", nil))

			assert.Equal(t, tt.code, rec.Code)
			var resp StatsResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}
