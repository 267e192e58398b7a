package httpapi

import (
	"context"
	"net/http"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"github.com/MalligaSaravanan93/kioskapp/internal/pricing"
	"go.uber.org/zap"
)

type CheckoutService interface {
	Checkout(ctx context.Context, lines []domain.CartLine, totals pricing.Totals) (string, error)
}

type CheckoutHandler struct {
	cart     CartService
	checkout CheckoutService
	log      *zap.Logger
}

func NewCheckoutHandler(cart CartService, checkout CheckoutService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{cart: cart, checkout: checkout, log: log.Named("checkouthandler")}
}

type CheckoutResponseDTO struct {
	InvoiceNo string `json:"invoiceNo"`
}

// Checkout consumes the current cart snapshot plus its computed totals.
// The coordinator itself permits an empty snapshot; this surface is where
// the empty cart is rejected instead.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	snap := h.cart.Current()
	if snap.Err != nil {
		respondError(w, http.StatusInternalServerError, "cart_unavailable", snap.Err.Error())
		return
	}
	if len(snap.Lines) == 0 {
		respondError(w, http.StatusConflict, "empty_cart", "cart is empty, nothing to checkout")
		return
	}

	invoiceNo, err := h.checkout.Checkout(r.Context(), snap.Lines, snap.Totals)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "checkout_failed", err.Error())
		return
	}
	h.log.Info("checkout accepted",
		zap.String("invoiceNo", invoiceNo),
		zap.String("request-id", getRequestID(r.Context())))
	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{InvoiceNo: invoiceNo})
}
