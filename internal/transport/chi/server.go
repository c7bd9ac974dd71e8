package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
	"github.com/kailas-cloud/searchgate/internal/logger"
	assistantuc "github.com/kailas-cloud/searchgate/internal/usecase/assistant"
	authuc "github.com/kailas-cloud/searchgate/internal/usecase/auth"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
	searchuc "github.com/kailas-cloud/searchgate/internal/usecase/search"
	"github.com/kailas-cloud/searchgate/internal/version"
)

// ServiceName is reported by the liveness endpoint.
const ServiceName = "searchgate"

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeUserNotFound     = "user_not_found"
	CodeSearchFailed     = "search_failed"
	CodeConnectionFailed = "connection_failed"
	CodeInternalError    = "internal_error"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the gateway over HTTP.
type Server struct {
	search          *searchuc.Service
	health          *healthuc.Service
	auth            *authuc.Service
	assistant       *assistantuc.Service
	limits          request.Limits
	exposeDirectory bool
	logger          *zap.Logger
	errorHandlers   []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	health *healthuc.Service,
	auth *authuc.Service,
	assistant *assistantuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		health:    health,
		auth:      auth,
		assistant: assistant,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		unauthorizedHandler,
		sentinelHandler(domain.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, CodeForbidden),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrOperationFailed, http.StatusInternalServerError, CodeSearchFailed),
	}
	return s
}

// WithLimits sets the page size bounds applied to search requests.
func (s *Server) WithLimits(lim request.Limits) *Server {
	s.limits = lim
	return s
}

// WithDirectoryExposed opens GET /api/v1/auth/users to anonymous callers.
// Otherwise the listing requires an admin token.
func (s *Server) WithDirectoryExposed(expose bool) *Server {
	s.exposeDirectory = expose
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.optionalUser).Get("/health/elasticsearch", s.BackendHealth)

		r.Post("/auth/login", s.Login)
		if s.exposeDirectory {
			r.Get("/auth/users", s.ListUsers)
		} else {
			r.With(s.requireUser, s.requireAdmin).Get("/auth/users", s.ListUsers)
		}

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/auth/me", s.Me)
			r.Post("/auth/refresh", s.Refresh)

			r.Post("/search", s.Search)
			r.Get("/search", s.SearchQuery)
			r.Get("/search/test-connection", s.TestConnection)

			r.Post("/llm/summary", s.Summary)
			r.Post("/llm/comprehensive-summary", s.ComprehensiveSummary)
			r.Post("/llm/chat", s.Chat)
		})
	})
}

type healthResponse struct {
	Status  string                          `json:"status"`
	Service string                          `json:"service"`
	Version string                          `json:"version"`
	Checks  map[string]healthuc.CheckResult `json:"checks"`
}

// HealthCheck handles GET /health.
// Only an unreachable search backend makes the gateway unavailable;
// generation failures degrade to fallback text and leave it serving.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := "healthy"
	if report.Status != healthuc.Healthy {
		status = string(report.Status)
	}

	httpStatus := http.StatusOK
	if report.Checks[healthuc.CheckBackendName] == healthuc.CheckError {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  status,
		Service: ServiceName,
		Version: version.Version,
		Checks:  report.Checks,
	})
}

type backendHealthResponse struct {
	Status            string            `json:"status"`
	Details           map[string]string `json:"details,omitempty"`
	Error             string            `json:"error,omitempty"`
	UserAuthenticated bool              `json:"user_authenticated"`
}

// BackendHealth handles GET /api/v1/health/elasticsearch.
// It always answers 200; connectivity problems are reported in the body.
func (s *Server) BackendHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.CheckBackend(r.Context())
	_, authenticated := userFromContext(r.Context())

	resp := backendHealthResponse{
		Status:            string(report.Status),
		UserAuthenticated: authenticated,
	}
	if report.Status == healthuc.Unhealthy {
		resp.Error = report.Error
	} else {
		resp.Details = report.Details
	}
	writeJSON(w, http.StatusOK, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Code: code, Detail: detail})
}

// safeDomainMessage returns the client-facing text for a domain error.
// Search failures carry their cause so clients can tell backend outages apart.
func safeDomainMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var oe *domain.OperationError
	if errors.As(err, &oe) {
		return "Search failed: " + oe.Err.Error()
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "Could not validate credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, domain.ErrForbidden):
		return "Insufficient permissions"
	default:
		return "internal error"
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// unauthorizedHandler answers ErrUnauthorized with a bearer challenge.
func unauthorizedHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrUnauthorized) {
		return false
	}
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, CodeUnauthorized, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// requestLogger prefers the request-scoped logger installed by RequestLogger.
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if l := logger.FromContext(r.Context()); l.Core().Enabled(zap.ErrorLevel) {
		return l
	}
	return s.logger
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}
