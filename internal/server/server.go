package server

import (
	"net/http"

	"tomoru/internal/api"
	"tomoru/internal/stats"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	mux     *http.ServeMux
	handler http.Handler
}

// NewServer registers the routes. /metrics is only served when gatherer is
// not nil.
func NewServer(counter *stats.RequestCounter, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		mux: http.NewServeMux(),
	}

	apiHandler := api.NewHandler(counter)

	s.mux.HandleFunc("GET /ping", HandlePing)
	s.mux.HandleFunc("/api/stats", apiHandler.HandleStats)
	if gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	s.handler = CountRequests(counter, s.mux)
	return s
}

// ServeHTTP runs every route behind the request counting middleware
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// HandlePing answers liveness probes
func HandlePing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("pong"))
}
