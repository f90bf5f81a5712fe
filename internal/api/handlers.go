package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"ctc-budget-checker/internal/budget"
	apperrors "ctc-budget-checker/internal/common/errors"
	"ctc-budget-checker/internal/common/logger"
	"ctc-budget-checker/internal/common/observability"
	"ctc-budget-checker/pkg/registry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultMaxBodyBytes = 64 << 10
	readyCheckTimeout   = 2 * time.Second
)

// ReadyCheck reports whether a dependency can serve traffic.
type ReadyCheck func(ctx context.Context) error

// HandlerOptions holds the dependencies of Handler. Checker is required.
type HandlerOptions struct {
	Checker       *budget.Checker
	Decoder       *budget.PayloadDecoder
	Registry      *registry.ActivityRegistry
	Observability *observability.Observability
	Logger        logger.Logger
	MaxBodyBytes  int64
	ReadyChecks   map[string]ReadyCheck
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	checker      *budget.Checker
	decoder      *budget.PayloadDecoder
	registry     *registry.ActivityRegistry
	obs          *observability.Observability
	logger       logger.Logger
	maxBodyBytes int64
	readyChecks  map[string]ReadyCheck
}

// NewHandler creates a new Handler.
func NewHandler(opts HandlerOptions) *Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	decoder := opts.Decoder
	if decoder == nil {
		decoder = budget.NewPayloadDecoder(nil)
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Handler{
		checker:      opts.Checker,
		decoder:      decoder,
		registry:     opts.Registry,
		obs:          opts.Observability,
		logger:       log.WithFields(map[string]interface{}{"component": "http"}),
		maxBodyBytes: maxBody,
		readyChecks:  opts.ReadyChecks,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /check-ctc", h.CheckCTC)

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ready", h.Ready)

	mux.HandleFunc("GET /docs", h.Docs)
	mux.HandleFunc("GET /{$}", h.Root)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// CheckCTC answers with 200 and a CheckResponse for every request body,
// including ones that cannot be decoded.
func (h *Handler) CheckCTC(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := h.obs.StartSpan(r.Context(), "budget.check",
		attribute.String("transport", budget.TransportHTTP))
	defer span.End()

	resp := h.answer(w, r)

	span.SetAttributes(attribute.String("budget.result", string(resp.Result)))
	if resp.IsError() {
		span.SetAttributes(attribute.String("budget.error_code", string(resp.Code)))
		if resp.Code == apperrors.ErrCodeServerError {
			span.SetStatus(codes.Error, resp.Message)
		}
	}
	h.obs.RecordCheck(ctx, budget.TransportHTTP, string(resp.Result), string(resp.Code), time.Since(start))

	h.logger.Debug("budget check answered", map[string]interface{}{
		"request_id": RequestIDFromContext(ctx),
		"result":     string(resp.Result),
		"error_code": string(resp.Code),
	})

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) (resp budget.CheckResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = h.checker.Fail(fmt.Errorf("%v", rec))
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		return h.checker.Fail(apperrors.NewMissingParametersError(fmt.Sprintf("read body: %v", err)))
	}

	req, stdErr := h.decoder.Decode(body)
	if stdErr != nil {
		return h.checker.Fail(stdErr)
	}
	return h.checker.Check(req)
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.checker.Health())
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Ready runs every registered ReadyCheck and answers 503 if any fails.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.readyChecks))
	for name := range h.readyChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := readyResponse{Status: "ready"}
	status := http.StatusOK
	for _, name := range names {
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(names))
		}
		if err := h.readyChecks[name](ctx); err != nil {
			h.logger.Warn("readiness check failed", map[string]interface{}{
				"check": name,
				"error": err,
			})
			resp.Checks[name] = err.Error()
			resp.Status = "not ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, status, resp)
}

// Docs serves the activity registry describing request and response schemas.
func (h *Handler) Docs(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.registry)
}

type rootResponse struct {
	Message string `json:"message"`
	Docs    string `json:"docs"`
	Health  string `json:"health"`
}

// Root describes where to find the docs and health endpoints.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Message: "CTC Budget Checker API",
		Docs:    "/docs",
		Health:  "/health",
	})
}
