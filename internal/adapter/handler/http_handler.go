package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/flashmart/stock-sync/internal/port"
)

// EventSink receives notifications after a successful stock mutation.
// Implemented by the RabbitMQ publisher; nil-safe via NopSink.
type EventSink interface {
	StockUpdated(ctx context.Context, itemID string, stockCount int)
}

// NopSink discards notifications.
type NopSink struct{}

func (NopSink) StockUpdated(context.Context, string, int) {}

// HTTPHandler is the server side of the stock contract: one resource per
// item, absolute writes via PUT, relative writes via POST on the delta
// sub-resource. The storefront client's remote adapter speaks exactly this
// shape.
type HTTPHandler struct {
	backend port.StockService
	events  EventSink
	logger  zerolog.Logger
}

type StockResponse struct {
	ItemID     string `json:"item_id"`
	StockCount int    `json:"stock_count"`
}

type SetStockRequest struct {
	StockCount int `json:"stock_count"`
}

type ApplyDeltaRequest struct {
	Delta int `json:"delta"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func NewHTTPHandler(backend port.StockService, events EventSink, logger zerolog.Logger) *HTTPHandler {
	if events == nil {
		events = NopSink{}
	}
	return &HTTPHandler{backend: backend, events: events, logger: logger}
}

// Register installs the stock routes on the mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stock/{id}", h.GetStock)
	mux.HandleFunc("PUT /api/stock/{id}", h.SetStock)
	mux.HandleFunc("POST /api/stock/{id}/delta", h.ApplyDelta)
	mux.HandleFunc("GET /health", h.HealthCheck)
}

func (h *HTTPHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")
	if itemID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "missing item id"})
		return
	}

	count, err := h.backend.GetStock(r.Context(), itemID)
	if err != nil {
		h.logger.Error().Err(err).Str("item", itemID).Msg("get stock failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "stock backend error"})
		return
	}

	writeJSON(w, http.StatusOK, StockResponse{ItemID: itemID, StockCount: count})
}

func (h *HTTPHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")

	var req SetStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}

	count, err := h.backend.SetStock(r.Context(), itemID, req.StockCount)
	if err != nil {
		h.logger.Error().Err(err).Str("item", itemID).Msg("set stock failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "stock backend error"})
		return
	}

	h.events.StockUpdated(r.Context(), itemID, count)
	writeJSON(w, http.StatusOK, StockResponse{ItemID: itemID, StockCount: count})
}

func (h *HTTPHandler) ApplyDelta(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")

	var req ApplyDeltaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	if req.Delta == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "delta must be non-zero"})
		return
	}

	count, err := h.backend.ApplyDelta(r.Context(), itemID, req.Delta)
	if err != nil {
		h.logger.Error().Err(err).Str("item", itemID).Msg("apply delta failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "stock backend error"})
		return
	}

	h.events.StockUpdated(r.Context(), itemID, count)
	writeJSON(w, http.StatusOK, StockResponse{ItemID: itemID, StockCount: count})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
