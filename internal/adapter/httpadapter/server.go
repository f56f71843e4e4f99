// Package httpadapter exposes the rating and sweep engines over HTTP,
// alongside health, readiness, and metrics endpoints.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/line-rating-service/internal/domain"
	"github.com/couchcryptid/line-rating-service/internal/powerflow"
	"github.com/couchcryptid/line-rating-service/internal/sweep"
)

// ContingencyRunner runs an N-1 sweep. Implemented by sweep.Contingency.
type ContingencyRunner interface {
	Run(ctx context.Context, base *domain.Network, cond domain.Resolved, kinds []domain.ComponentType) (*sweep.Report, error)
}

// SensitivityRunner runs a parametric sweep. Implemented by sweep.Sensitivity.
type SensitivityRunner interface {
	Run(ctx context.Context, base *domain.Network, baseCond domain.Conditions, param sweep.Param, r sweep.Range) (*sweep.SensitivityReport, error)
}

// ReportPublisher forwards a finished contingency report downstream.
// Implemented by the Kafka writer; nil disables publishing.
type ReportPublisher interface {
	PublishReport(ctx context.Context, report *sweep.Report) error
}

// Server wires the engines to HTTP routes.
type Server struct {
	httpServer  *http.Server
	catalog     *domain.Catalog
	base        *domain.Network
	baseCond    domain.Conditions
	contingency ContingencyRunner
	sensitivity SensitivityRunner
	publisher   ReportPublisher
	logger      *slog.Logger
}

// NewServer builds the HTTP server and its routes.
func NewServer(
	addr string,
	catalog *domain.Catalog,
	base *domain.Network,
	baseCond domain.Conditions,
	contingency ContingencyRunner,
	sensitivity SensitivityRunner,
	publisher ReportPublisher,
	logger *slog.Logger,
) *Server {
	s := &Server{
		catalog:     catalog,
		base:        base,
		baseCond:    baseCond,
		contingency: contingency,
		sensitivity: sensitivity,
		publisher:   publisher,
		logger:      logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/ratings", s.handleRating).Methods(http.MethodPost)
	api.HandleFunc("/sweeps/contingency", s.handleContingency).Methods(http.MethodPost)
	api.HandleFunc("/sweeps/sensitivity", s.handleSensitivity).Methods(http.MethodPost)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handlers.RecoveryHandler()(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // sweeps are long-running
		IdleTimeout:  60 * time.Second,
	}
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

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	// Ready once the reference data and base topology are in place, which
	// is a precondition of constructing the server.
	if s.catalog == nil || s.base == nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type ratingRequest struct {
	Conductor   string             `json:"conductor"`
	MOTC        float64            `json:"mot_c"`
	VoltageKV   float64            `json:"voltage_kv"`
	Orientation domain.Orientation `json:"orientation"`
	Conditions  domain.Conditions  `json:"conditions"`
}

type ratingResponse struct {
	Conductor         string  `json:"conductor"`
	Amps              float64 `json:"amps"`
	CapacityMVA       float64 `json:"capacity_mva"`
	SolarGainWFt      float64 `json:"solar_gain_w_ft"`
	ConvectiveLossWFt float64 `json:"convective_loss_w_ft"`
	RadiativeLossWFt  float64 `json:"radiative_loss_w_ft"`
}

func (s *Server) handleRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	spec, err := s.catalog.Spec(req.Conductor)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	cond, err := s.baseCond.Merge(req.Conditions).Resolve()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	orient := req.Orientation
	if orient == "" {
		orient = domain.EastWest
	}

	rating, err := domain.RateConductor(spec, cond, orient, req.MOTC)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, ratingResponse{
		Conductor:         req.Conductor,
		Amps:              rating.Amps,
		CapacityMVA:       rating.MVA(req.VoltageKV),
		SolarGainWFt:      rating.SolarGainWFt,
		ConvectiveLossWFt: rating.ConvectiveLossWFt,
		RadiativeLossWFt:  rating.RadiativeLossWFt,
	})
}

type contingencyRequest struct {
	ComponentTypes []domain.ComponentType `json:"component_types,omitempty"`
	Conditions     domain.Conditions      `json:"conditions"`
	Publish        bool                   `json:"publish,omitempty"`
}

type contingencyResponse struct {
	*sweep.Report
	Summary sweep.Summary `json:"summary"`
}

func (s *Server) handleContingency(w http.ResponseWriter, r *http.Request) {
	var req contingencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	cond, err := s.baseCond.Merge(req.Conditions).Resolve()
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	report, err := s.contingency.Run(r.Context(), s.base, cond, req.ComponentTypes)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	if req.Publish && s.publisher != nil {
		if err := s.publisher.PublishReport(r.Context(), report); err != nil {
			s.logger.Error("publish contingency report failed", "run_id", report.RunID, "error", err)
		}
	}

	s.writeJSON(w, http.StatusOK, contingencyResponse{Report: report, Summary: report.Summarize()})
}

type sensitivityRequest struct {
	Parameter  string            `json:"parameter"`
	Min        float64           `json:"min"`
	Max        float64           `json:"max"`
	Step       float64           `json:"step"`
	Conditions domain.Conditions `json:"conditions"`
}

type sensitivityResponse struct {
	*sweep.SensitivityReport
	Ranking []sweep.Vulnerability `json:"vulnerability_ranking"`
}

func (s *Server) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	var req sensitivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	var param sweep.Param
	switch req.Parameter {
	case sweep.ParamAmbientTemp.Name, "":
		param = sweep.ParamAmbientTemp
	case sweep.ParamWindSpeed.Name:
		param = sweep.ParamWindSpeed
	default:
		s.writeError(w, http.StatusBadRequest,
			errors.New("parameter must be ambient_temp_c or wind_speed_ft_s"))
		return
	}

	rng := sweep.Range{Min: req.Min, Max: req.Max, Step: req.Step}
	if rng == (sweep.Range{}) {
		rng = sweep.DefaultRange(param)
	}

	report, err := s.sensitivity.Run(r.Context(), s.base, s.baseCond.Merge(req.Conditions), param, rng)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, sensitivityResponse{
		SensitivityReport: report,
		Ranking:           report.VulnerabilityRanking(),
	})
}

func statusFor(err error) int {
	var cfgErr *domain.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownConductor), errors.Is(err, domain.ErrNoRating):
		return http.StatusNotFound
	case errors.Is(err, powerflow.ErrNotConverged):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
