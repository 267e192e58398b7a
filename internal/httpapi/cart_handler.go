package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"github.com/MalligaSaravanan93/kioskapp/internal/scanner"
	"github.com/MalligaSaravanan93/kioskapp/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxScanPayloadSize = 1 << 20 // 1MB

// CartService is the slice of the cart synchronizer the handlers use.
type CartService interface {
	Current() service.CartSnapshot
	Subscribe(ctx context.Context) (<-chan service.CartSnapshot, func())
	AddLine(ctx context.Context, line domain.CartLine) error
	SetQuantity(ctx context.Context, id int64, quantity int) error
}

type CartHandler struct {
	cart CartService
	log  *zap.Logger
}

func NewCartHandler(cart CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{cart: cart, log: log.Named("carthandler")}
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the latest synchronized snapshot with its totals.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	snap := h.cart.Current()
	if snap.Err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", snap.Err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// StreamCart pushes one SSE event per synchronizer tick until the client
// disconnects.
func (h *CartHandler) StreamCart(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticks, detach := h.cart.Subscribe(r.Context())
	defer detach()

	for snap := range ticks {
		if snap.Err != nil {
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", jsonError(snap.Err))
			flusher.Flush()
			continue
		}
		payload, err := json.Marshal(snap)
		if err != nil {
			h.log.Warn("failed to marshal cart tick", zap.Error(err))
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
}

// AddItem takes a raw scanned payload, decodes it, and upserts the
// resulting line with quantity zero.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxScanPayloadSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
		return
	}

	product, err := scanner.Decode(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable_code", err.Error())
		return
	}

	line := product.CartLine()
	if err := h.cart.AddLine(r.Context(), line); err != nil {
		respondError(w, http.StatusInternalServerError, "add_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, line)
}

// UpdateQuantity performs a targeted quantity update on one line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not be negative")
		return
	}

	if err := h.cart.SetQuantity(r.Context(), productID, req.Quantity); err != nil {
		respondError(w, http.StatusInternalServerError, "update_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":       productID,
		"quantity": req.Quantity,
	})
}

func jsonError(err error) []byte {
	payload, marshalErr := json.Marshal(ErrorResponse{Error: err.Error()})
	if marshalErr != nil {
		return []byte(`{"error":"` + domain.GeneralErrorMessage + `"}`)
	}
	return payload
}
