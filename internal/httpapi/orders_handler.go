package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"github.com/MalligaSaravanan93/kioskapp/internal/repository"
	"github.com/MalligaSaravanan93/kioskapp/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrderService interface {
	Current() service.OrderSnapshot
	Subscribe(ctx context.Context) (<-chan service.OrderSnapshot, func())
}

type OrderFinder interface {
	Get(ctx context.Context, invoiceNo string) (*domain.Order, error)
}

type OrdersHandler struct {
	orders OrderService
	lookup OrderFinder
	log    *zap.Logger
}

func NewOrdersHandler(orders OrderService, lookup OrderFinder, log *zap.Logger) *OrdersHandler {
	return &OrdersHandler{orders: orders, lookup: lookup, log: log.Named("ordershandler")}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	snap := h.orders.Current()
	if snap.Err != nil {
		respondError(w, http.StatusInternalServerError, "orders_unavailable", snap.Err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *OrdersHandler) StreamOrders(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticks, detach := h.orders.Subscribe(r.Context())
	defer detach()

	for snap := range ticks {
		if snap.Err != nil {
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", jsonError(snap.Err))
			flusher.Flush()
			continue
		}
		payload, err := json.Marshal(snap)
		if err != nil {
			h.log.Warn("failed to marshal orders tick", zap.Error(err))
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	invoiceNo := chi.URLParam(r, "invoice_no")
	if invoiceNo == "" {
		respondError(w, http.StatusBadRequest, "invalid_invoice_no", "invoice number is required")
		return
	}

	order, err := h.lookup.Get(r.Context(), invoiceNo)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "lookup_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, order)
}
