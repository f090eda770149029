package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UserHeader carries the caller identity. Authentication happens upstream.
const UserHeader = "X-User-ID"

// Server exposes a ports.Engine over JSON/HTTP.
type Server struct {
	Engine  ports.Engine
	Streams *StreamManager

	logger  *slog.Logger
	metrics http.Handler
	version string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithStreams enables GET /events. The same manager's Hooks must be
// registered on the engine for events to flow.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine ports.Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		logger:  logging.NewNop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/scenarios", s.ListScenarios)
		r.Route("/scenarios/{scenarioID}", func(r chi.Router) {
			r.Get("/", s.GetScenario)
			r.Post("/start", s.StartScenario)
			r.Get("/step/{stepID}", s.GetStep)
			r.Post("/step/{stepID}/answer", s.SubmitAnswer)
			r.Get("/summary", s.GetSummary)
			r.Post("/analysis", s.Analyze)
		})
		r.Get("/progress/{scenarioID}", s.GetProgress)
		if s.Streams != nil {
			r.Get("/events", s.SubscribeEvents)
		}
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+UserHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get(UserHeader)) == "" {
			writeJSON(w, http.StatusUnauthorized, envelope{Message: "missing " + UserHeader + " header"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserHeader))
}

// envelope is the response body shape of every JSON endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    any             `json:"data,omitempty"`
	Summary *domain.Summary `json:"summary,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// fail maps the engine error taxonomy onto HTTP status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	body := envelope{Message: err.Error()}

	var analysisErr *domain.AnalysisError
	if errors.As(err, &analysisErr) {
		body.Summary = analysisErr.Summary
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, body)
}

// StatusFor returns the HTTP status code for an engine error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamAnalysis):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]string{"status": "ok"}})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.ok(w, map[string]string{"app": "gambit-http", "version": strings.TrimSpace(s.version)})
}

// ListScenarios handles GET /scenarios?difficulty=&role=&search=.
func (s *Server) ListScenarios(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ScenarioFilter{
		Difficulty: domain.Difficulty(q.Get("difficulty")),
		Role:       q.Get("role"),
		Search:     q.Get("search"),
	}
	list, err := s.Engine.ListScenarios(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, list)
}

// GetScenario handles GET /scenarios/{scenarioID}.
func (s *Server) GetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := s.Engine.Scenario(r.Context(), chi.URLParam(r, "scenarioID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, sc)
}

// StartScenario handles POST /scenarios/{scenarioID}/start.
func (s *Server) StartScenario(w http.ResponseWriter, r *http.Request) {
	res, err := s.Engine.Start(r.Context(), userID(r), chi.URLParam(r, "scenarioID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, res)
}

// GetStep handles GET /scenarios/{scenarioID}/step/{stepID}.
func (s *Server) GetStep(w http.ResponseWriter, r *http.Request) {
	res, err := s.Engine.GetStep(r.Context(), userID(r), chi.URLParam(r, "scenarioID"), chi.URLParam(r, "stepID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, res)
}

type answerRequest struct {
	OptionID string `json:"optionId"`
}

// SubmitAnswer handles POST /scenarios/{scenarioID}/step/{stepID}/answer.
func (s *Server) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var body answerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, r, &domain.InputError{Field: "body", Reason: fmt.Sprintf("invalid JSON: %v", err)})
		return
	}
	res, err := s.Engine.SubmitAnswer(r.Context(), userID(r),
		chi.URLParam(r, "scenarioID"), chi.URLParam(r, "stepID"), body.OptionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, res)
}

// GetProgress handles GET /progress/{scenarioID}.
func (s *Server) GetProgress(w http.ResponseWriter, r *http.Request) {
	res, err := s.Engine.Progress(r.Context(), userID(r), chi.URLParam(r, "scenarioID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, res)
}

// GetSummary handles GET /scenarios/{scenarioID}/summary.
func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request) {
	res, err := s.Engine.Summary(r.Context(), userID(r), chi.URLParam(r, "scenarioID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, res)
}

// Analyze handles POST /scenarios/{scenarioID}/analysis.
// A narrator failure is reported as 502 with the summary attached.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	res, err := s.Engine.Analyze(r.Context(), userID(r), chi.URLParam(r, "scenarioID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, res)
}
