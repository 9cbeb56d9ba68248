// Package chi exposes the match engine over HTTP: a thin trigger and review surface.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/foundmatch/internal/domain"
	logpkg "github.com/kailas-cloud/foundmatch/internal/logger"
	"github.com/kailas-cloud/foundmatch/internal/metrics"
	healthuc "github.com/kailas-cloud/foundmatch/internal/usecase/health"
	matchinguc "github.com/kailas-cloud/foundmatch/internal/usecase/matching"
)

// maxBodyBytes caps request bodies; attribute sets are small.
const maxBodyBytes = 1 << 20

// Matcher runs and lists matches.
type Matcher interface {
	Run(ctx context.Context, found domain.FoundItem) ([]matchinguc.Result, error)
	ListForFoundItem(ctx context.Context, foundID string) ([]domain.Match, error)
	Threshold() int
}

// LostReportWriter stores lost reports.
type LostReportWriter interface {
	Save(ctx context.Context, report *domain.LostReport) error
}

// FoundItemStore stores and loads found items.
type FoundItemStore interface {
	Save(ctx context.Context, item *domain.FoundItem) error
	Get(ctx context.Context, id string) (domain.FoundItem, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	matcher       Matcher
	reports       LostReportWriter
	items         FoundItemStore
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	matcher Matcher,
	reports LostReportWriter,
	items FoundItemStore,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		matcher: matcher,
		reports: reports,
		items:   items,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbedderUnavailable, http.StatusServiceUnavailable, codeEmbeddingUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrStorageUnavailable, http.StatusServiceUnavailable, codeStorageUnavailable),
	}
	return s
}

// Router builds the chi router with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r gochi.Router) {
		r.Put("/lost-reports/{id}", s.PutLostReport)
		r.Put("/found-items/{id}", s.PutFoundItem)
		r.Post("/found-items/{id}/match", s.RunMatch)
		r.Get("/found-items/{id}/matches", s.ListMatches)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
	return r
}

// PutLostReport handles PUT /v1/lost-reports/{id}.
func (s *Server) PutLostReport(w http.ResponseWriter, r *http.Request) {
	var req lostReportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report := req.toDomain(gochi.URLParam(r, "id"))
	if err := s.reports.Save(r.Context(), &report); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, lostReportResponse{
		ID:       report.ID,
		Category: report.Category,
		Status:   string(report.Status),
	})
}

// PutFoundItem handles PUT /v1/found-items/{id}: stores the item and runs the match.
func (s *Server) PutFoundItem(w http.ResponseWriter, r *http.Request) {
	var req foundItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item := req.toDomain(gochi.URLParam(r, "id"))
	if err := s.items.Save(r.Context(), &item); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.run(w, r, item)
}

// RunMatch handles POST /v1/found-items/{id}/match.
func (s *Server) RunMatch(w http.ResponseWriter, r *http.Request) {
	item, err := s.items.Get(r.Context(), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.run(w, r, item)
}

// ListMatches handles GET /v1/found-items/{id}/matches.
func (s *Server) ListMatches(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")
	matches, err := s.matcher.ListForFoundItem(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]matchResponse, len(matches))
	for i := range matches {
		items[i] = matchToResponse(&matches[i])
	}
	writeJSON(w, http.StatusOK, matchListResponse{FoundItemID: id, Items: items})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, item domain.FoundItem) {
	results, err := s.matcher.Run(r.Context(), item)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	matches := make([]matchResponse, len(results))
	for i := range results {
		matches[i] = resultToResponse(&results[i])
	}
	writeJSON(w, http.StatusOK, runResponse{
		FoundItemID: item.ID,
		Threshold:   s.matcher.Threshold(),
		Matches:     matches,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelMessage returns a client-safe message. Validation errors name the offending
// field and are returned whole; everything else collapses to the sentinel text.
func sentinelMessage(err, sentinel error) string {
	if errors.Is(sentinel, domain.ErrInvalidInput) {
		return err.Error()
	}
	return sentinel.Error()
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinelMessage(err, sentinel))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
