// Package handler provides the HTTP handlers for the string analysis server.
package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stevemurr/string-analysis-server/engine"
	"github.com/stevemurr/string-analysis-server/errors"
	"github.com/stevemurr/string-analysis-server/metrics"
	"github.com/stevemurr/string-analysis-server/query"
	"github.com/stevemurr/string-analysis-server/schema"
)

// Handler holds the server dependencies and registers routes.
type Handler struct {
	engine         *engine.Engine
	mux            *http.ServeMux
	root           http.Handler
	logger         *zap.SugaredLogger
	metrics        *metrics.Metrics
	gatherer       prometheus.Gatherer
	allowedOrigins []string
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for access and error logs.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithMetrics records request durations in m and serves g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(h *Handler) {
		h.metrics = m
		h.gatherer = g
	}
}

// WithAllowedOrigins sets the CORS origins. "*" allows every origin, which
// is also the default.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) { h.allowedOrigins = origins }
}

// New creates a Handler and wires up all routes.
func New(e *engine.Engine, opts ...Option) *Handler {
	h := &Handler{
		engine:         e,
		mux:            http.NewServeMux(),
		logger:         zap.NewNop().Sugar(),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.routes()
	h.root = requestID(corsMiddleware(h.observe(h.mux), h.allowedOrigins))
	return h
}

// ServeHTTP makes Handler an http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	// Health / status
	h.mux.HandleFunc("GET /", h.index)
	h.mux.HandleFunc("GET /health", h.health)
	if h.gatherer != nil {
		h.mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	// --- Strings ---
	h.mux.HandleFunc("POST /strings", h.createString)
	h.mux.HandleFunc("GET /strings", h.listStrings)
	h.mux.HandleFunc("GET /strings/filter-by-natural-language", h.listByNaturalLanguage)
	h.mux.HandleFunc("GET /strings/{value}", h.getString)
	h.mux.HandleFunc("DELETE /strings/{value}", h.deleteString)
}

// ---------- helpers ----------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// statusFor maps an engine error to a status code and client message.
// invalidStatus is used for plain ErrInvalidInput, whose status depends on
// the endpoint.
func statusFor(err error, invalidStatus int) (int, string) {
	switch {
	case errors.Is(err, errors.ErrMissingValue):
		return http.StatusBadRequest, "Missing value"
	case errors.Is(err, errors.ErrMissingQuery):
		return http.StatusBadRequest, "Missing query"
	case errors.IsInvalidInput(err):
		return invalidStatus, strings.TrimSuffix(err.Error(), ": "+errors.ErrInvalidInput.Error())
	case errors.IsConflict(err):
		return http.StatusConflict, "String already exists"
	case errors.IsNotFound(err):
		return http.StatusNotFound, "String not found"
	case errors.Is(err, errors.ErrNoMatches):
		return http.StatusBadRequest, "No matches"
	case errors.Is(err, errors.ErrUnparsableQuery):
		return http.StatusBadRequest, "Unable to parse query"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, err error, invalidStatus int) {
	status, msg := statusFor(err, invalidStatus)
	if status >= http.StatusInternalServerError {
		h.logger.Errorw("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", w.Header().Get(requestIDHeader),
			"error", err)
	}
	writeError(w, status, msg)
}

// ---------- status endpoints ----------

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	// Only match exact root path
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "String Analysis Server",
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	n, err := h.engine.Count()
	if err != nil {
		h.writeEngineError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "strings": n})
}

// ---------- strings ----------

func (h *Handler) createString(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := readJSON(r, &body); err != nil {
		if err == io.EOF {
			writeError(w, http.StatusBadRequest, "Missing value")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if body == nil {
		writeError(w, http.StatusBadRequest, "Missing value")
		return
	}

	if err := schema.Validate(schema.CreateString, body); err != nil {
		var v *schema.Violation
		if errors.As(err, &v) && (v.Keyword == schema.KeywordRequired || v.Keyword == schema.KeywordMinLength) {
			writeError(w, http.StatusBadRequest, "Missing value")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "Value must be a string")
		return
	}

	rec, err := h.engine.Create(body["value"])
	if err != nil {
		h.writeEngineError(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) getString(w http.ResponseWriter, r *http.Request) {
	rec, err := h.engine.Get(r.PathValue("value"))
	if err != nil {
		h.writeEngineError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) listStrings(w http.ResponseWriter, r *http.Request) {
	c, err := query.ParseParams(r.URL.Query())
	if err != nil {
		h.writeEngineError(w, r, err, http.StatusBadRequest)
		return
	}
	res, err := h.engine.List(c)
	if err != nil {
		h.writeEngineError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) listByNaturalLanguage(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.ListNatural(r.URL.Query().Get("query"))
	if err != nil {
		h.writeEngineError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) deleteString(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Delete(r.PathValue("value")); err != nil {
		h.writeEngineError(w, r, err, http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
