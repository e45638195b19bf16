package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/engine"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/source"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies for API handlers.
type Handler struct {
	engine   *engine.Engine
	version  string
	checks   []Pinger
	maxBatch int
}

// NewHandler creates a new API handler.
func NewHandler(eng *engine.Engine, version string, maxBatch int, checks ...Pinger) *Handler {
	return &Handler{
		engine:   eng,
		version:  version,
		checks:   checks,
		maxBatch: maxBatch,
	}
}

// BatchRequest is the request body for POST /v1/categorize/batch.
type BatchRequest struct {
	Transactions []source.Record `json:"transactions"`
	TopMerchants int             `json:"top_merchants,omitempty"`
}

// BatchResult is one entry of a batch response, in request order.
type BatchResult struct {
	Match *model.CategoryMatch `json:"match,omitempty"`
	ID    string               `json:"id,omitempty"`
	Error string               `json:"error,omitempty"`
	Index int                  `json:"index"`
}

// BatchResponse is the response for POST /v1/categorize/batch.
type BatchResponse struct {
	Results []BatchResult `json:"results"`
	Stats   engine.Stats  `json:"stats"`
}

// CorrectionRequest is the request body for POST /v1/corrections.
type CorrectionRequest struct {
	CategoryID  string        `json:"category_id"`
	Transaction source.Record `json:"transaction"`
}

// MerchantRequest is the request body for PUT /v1/merchants/{merchant}.
type MerchantRequest struct {
	CategoryID string `json:"category_id"`
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	for _, check := range h.checks {
		if err := check.Ping(r.Context()); err != nil {
			slog.Warn("Health check failed", "error", err)
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"version":   h.version,
		"rules":     len(h.engine.Rules()),
		"merchants": len(h.engine.Merchants()),
	})
}

// Categorize handles POST /v1/categorize.
func (h *Handler) Categorize(w http.ResponseWriter, r *http.Request) {
	var rec source.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	txn, err := rec.Transaction()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	match, err := h.engine.Categorize(r.Context(), txn)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("categorize.category", match.CategoryID),
		attribute.String("categorize.method", string(match.Method)),
		attribute.Float64("categorize.confidence", match.Confidence),
	)

	writeJSON(w, http.StatusOK, match)
}

// CategorizeBatch handles POST /v1/categorize/batch.
func (h *Handler) CategorizeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}
	if len(req.Transactions) > h.maxBatch {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch of %d exceeds the limit of %d", len(req.Transactions), h.maxBatch))
		return
	}

	txns := make([]model.Transaction, len(req.Transactions))
	for i, rec := range req.Transactions {
		txn, err := rec.Transaction()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("transaction %d: %v", i, err))
			return
		}
		txns[i] = txn
	}

	results, err := h.engine.BatchCategorize(r.Context(), txns)
	if err != nil {
		// The client went away; there is nobody to answer.
		slog.Warn("Batch request canceled", "error", err, "request_id", GetRequestID(r.Context()))
		return
	}

	topN := req.TopMerchants
	if topN <= 0 {
		topN = 10
	}

	resp := BatchResponse{
		Results: make([]BatchResult, len(results)),
		Stats:   engine.ComputeStats(results, topN),
	}
	for i, res := range results {
		out := BatchResult{Index: i, ID: res.Transaction.ID}
		if res.Err != nil {
			out.Error = res.Err.Error()
		} else {
			match := res.Match
			out.Match = &match
		}
		resp.Results[i] = out
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.Int("categorize.batch_size", len(txns)),
		attribute.Int("categorize.failed", resp.Stats.Failed),
	)

	writeJSON(w, http.StatusOK, resp)
}

// Correct handles POST /v1/corrections.
func (h *Handler) Correct(w http.ResponseWriter, r *http.Request) {
	var req CorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	txn, err := req.Transaction.Transaction()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.engine.LearnFromCorrection(r.Context(), txn, req.CategoryID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// RefreshRules handles POST /v1/rules/refresh.
func (h *Handler) RefreshRules(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.RefreshRules(r.Context())
	if err != nil {
		slog.Error("Failed to refresh rules", "error", err)
		writeError(w, http.StatusServiceUnavailable, "failed to load rules")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ListMerchants handles GET /v1/merchants.
func (h *Handler) ListMerchants(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"merchants": h.engine.Merchants(),
	})
}

// SetMerchant handles PUT /v1/merchants/{merchant}.
func (h *Handler) SetMerchant(w http.ResponseWriter, r *http.Request) {
	var req MerchantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	outcome, err := h.engine.SetMerchant(r.Context(), chi.URLParam(r, "merchant"), req.CategoryID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// writeEngineError maps engine errors to status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidTransaction), errors.Is(err, common.ErrInvalidCorrection):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}
