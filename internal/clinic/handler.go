package clinic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Vovarama1992/clinic-ai-proxy/internal/metrics"
)

const (
	maxBodyBytes = 1 << 20
	auditTimeout = 2 * time.Second
)

type Handler struct {
	svc     Service
	audit   AuditRepo
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewHandler(svc Service, audit AuditRepo, m *metrics.Metrics, log zerolog.Logger) *Handler {
	if audit == nil {
		audit = NopAudit{}
	}
	return &Handler{
		svc:     svc,
		audit:   audit,
		metrics: m,
		log:     log.With().Str("component", "clinic").Logger(),
	}
}

// HandleAction is the single POST entry point: {action, data} in,
// normalized result or {error} out.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	inv := Invocation{RequestID: requestID(r.Context())}

	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error().Interface("panic", rec).Str("request_id", inv.RequestID).Msg("AI function error")
			h.fail(w, &inv, AsError(fmt.Errorf("%v", rec)))
		}
		inv.Latency = time.Since(start)
		h.finish(r.Context(), w, inv)
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, &inv, invalidRequest("Invalid request body", err))
		return
	}

	req, err := ParseRequest(body)
	if err != nil {
		h.fail(w, &inv, AsError(err))
		return
	}
	inv.Action = string(req.Action())

	result, err := h.svc.Handle(r.Context(), req)
	if err != nil {
		h.fail(w, &inv, AsError(err))
		return
	}

	inv.Status = http.StatusOK
	writeRaw(w, http.StatusOK, result)
}

// HandlePreflight answers OPTIONS with no body; CORS headers are set by
// the router middleware.
func (h *Handler) HandlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) fail(w http.ResponseWriter, inv *Invocation, e *Error) {
	if e.Status >= http.StatusInternalServerError {
		h.log.Error().Err(e.Err).Str("kind", string(e.Kind)).Str("action", inv.Action).
			Str("request_id", inv.RequestID).Msg(e.Message)
	}
	inv.Status = e.Status
	inv.ErrorKind = string(e.Kind)
	WriteError(w, e.Status, e.Message)
}

// finish flushes the reply before the audit write.
func (h *Handler) finish(ctx context.Context, w http.ResponseWriter, inv Invocation) {
	h.metrics.ObserveRequest(inv.Action, inv.Status)
	_ = http.NewResponseController(w).Flush()

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := h.audit.Record(actx, inv); err != nil {
		h.log.Warn().Err(err).Str("request_id", inv.RequestID).Msg("audit record failed")
	}
}

// WriteError renders the {"error": msg} envelope.
func WriteError(w http.ResponseWriter, status int, msg string) {
	b, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: msg})
	writeRaw(w, status, b)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
