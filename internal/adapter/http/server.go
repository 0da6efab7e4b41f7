package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/aloft-etl/internal/domain"
	"github.com/couchcryptid/aloft-etl/internal/windsaloft"
)

// ReportService assembles a winds-aloft report for a point.
type ReportService interface {
	Report(ctx context.Context, lat, lon float64, source domain.Source) (domain.WindsAloftReport, error)
}

// Server exposes health, readiness, metrics, and the winds-aloft read endpoint.
type Server struct {
	httpServer *http.Server
	reports    ReportService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /v1/winds-aloft routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, reports ReportService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		reports: reports,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/winds-aloft", s.handleWindsAloft)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleWindsAloft(w http.ResponseWriter, r *http.Request) {
	q, errs := parseWindsAloftQuery(r)
	if len(errs) > 0 {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	report, err := s.reports.Report(r.Context(), *q.Lat, *q.Lon, domain.Source(q.Source))
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Warn("winds aloft request failed",
				"lat", *q.Lat,
				"lon", *q.Lon,
				"source", q.Source,
				"error", err,
			)
		}
		sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

// statusFor maps assembler errors onto HTTP statuses. Anything not
// recognized is an upstream failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, windsaloft.ErrEmptyReport):
		return http.StatusNotFound
	case errors.Is(err, windsaloft.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func parseFloatParam(r *http.Request, name string) (*float64, *ValidationError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &ValidationError{Code: "ERR_NUMBER", Field: name, Message: name + " must be a number"}
	}
	return &v, nil
}
