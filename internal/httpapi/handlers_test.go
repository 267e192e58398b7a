package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MalligaSaravanan93/kioskapp/internal/domain"
	"github.com/MalligaSaravanan93/kioskapp/internal/pricing"
	"github.com/MalligaSaravanan93/kioskapp/internal/repository"
	"github.com/MalligaSaravanan93/kioskapp/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCartService struct {
	snap         service.CartSnapshot
	ticks        []service.CartSnapshot
	addErr       error
	addedLines   []domain.CartLine
	setErr       error
	setID        int64
	setQuantity  int
	setCallCount int
}

func (f *fakeCartService) Current() service.CartSnapshot { return f.snap }

func (f *fakeCartService) Subscribe(_ context.Context) (<-chan service.CartSnapshot, func()) {
	ch := make(chan service.CartSnapshot, len(f.ticks))
	for _, tick := range f.ticks {
		ch <- tick
	}
	close(ch)
	return ch, func() {}
}

func (f *fakeCartService) AddLine(_ context.Context, line domain.CartLine) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.addedLines = append(f.addedLines, line)
	return nil
}

func (f *fakeCartService) SetQuantity(_ context.Context, id int64, quantity int) error {
	f.setCallCount++
	if f.setErr != nil {
		return f.setErr
	}
	f.setID = id
	f.setQuantity = quantity
	return nil
}

type fakeOrderService struct {
	snap  service.OrderSnapshot
	ticks []service.OrderSnapshot
}

func (f *fakeOrderService) Current() service.OrderSnapshot { return f.snap }

func (f *fakeOrderService) Subscribe(_ context.Context) (<-chan service.OrderSnapshot, func()) {
	ch := make(chan service.OrderSnapshot, len(f.ticks))
	for _, tick := range f.ticks {
		ch <- tick
	}
	close(ch)
	return ch, func() {}
}

type fakeOrderFinder struct {
	order *domain.Order
	err   error
}

func (f *fakeOrderFinder) Get(_ context.Context, _ string) (*domain.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

type fakeCheckoutService struct {
	invoiceNo string
	err       error
	lines     []domain.CartLine
	totals    pricing.Totals
}

func (f *fakeCheckoutService) Checkout(_ context.Context, lines []domain.CartLine, totals pricing.Totals) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lines = lines
	f.totals = totals
	return f.invoiceNo, nil
}

func newTestRouter(cart *fakeCartService, orders *fakeOrderService, finder *fakeOrderFinder, checkout *fakeCheckoutService) http.Handler {
	log := zap.NewNop()
	return NewRouter(
		NewCartHandler(cart, log),
		NewOrdersHandler(orders, finder, log),
		NewCheckoutHandler(cart, checkout, log),
		time.Second,
	)
}

func performRequest(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetCart(t *testing.T) {
	cart := &fakeCartService{snap: service.CartSnapshot{
		Lines: []domain.CartLine{{ID: 1, Name: "Burger", Price: 9.99, Quantity: 2}},
		Totals: pricing.Totals{
			SubTotal: 19.98,
			Shipping: 2.00,
			Tax:      1.00,
			Total:    22.98,
		},
	}}
	router := newTestRouter(cart, &fakeOrderService{}, &fakeOrderFinder{}, &fakeCheckoutService{})

	rec := performRequest(t, router, http.MethodGet, "/api/v1/cart", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var snap service.CartSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "Burger", snap.Lines[0].Name)
	assert.InDelta(t, 22.98, snap.Totals.Total, 0.001)
}

func TestGetCart_SnapshotError(t *testing.T) {
	cart := &fakeCartService{snap: service.CartSnapshot{
		Err: domain.WrapRemote(errors.New("stream closed"), "Error loading cart"),
	}}
	router := newTestRouter(cart, &fakeOrderService{}, &fakeOrderFinder{}, &fakeCheckoutService{})

	rec := performRequest(t, router, http.MethodGet, "/api/v1/cart", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cart_unavailable", resp.Code)
	assert.Equal(t, "stream closed", resp.Error)
}

func TestAddItem(t *testing.T) {
	cart := &fakeCartService{}
	router := newTestRouter(cart, &fakeOrderService{}, &fakeOrderFinder{}, &fakeCheckoutService{})

	payload := `{"id":42,"name":"Fries","desc":"Large","price":3.49,"image":"fries.png"}`
	rec := performRequest(t, router, http.MethodPost, "/api/v1/cart/items", payload)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, cart.addedLines, 1)
	assert.Equal(t, int64(42), cart.addedLines[0].ID)
	assert.Equal(t, "Fries", cart.addedLines[0].Name)
	assert.Equal(t, 0, cart.addedLines[0].Quantity)
}

func TestAddItem_UnreadableCode(t *testing.T) {
	cart := &fakeCartService{}
	router := newTestRouter(cart, &fakeOrderService{}, &fakeOrderFinder{}, &fakeCheckoutService{})

	rec := performRequest(t, router, http.MethodPost, "/api/v1/cart/items", `{"id":42,`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unreadable_code", resp.Code)
	assert.Equal(t, "Unable to read the product code.", resp.Error)
	assert.Empty(t, cart.addedLines)
}

func TestUpdateQuantity(t *testing.T) {
	cart := &fakeCartService{}
	router := newTestRouter(cart, &fakeOrderService{}, &fakeOrderFinder{}, &fakeCheckoutService{})

	rec := performRequest(t, router, http.MethodPut, "/api/v1/cart/items/42", `{"quantity":3}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), cart.setID)
	assert.Equal(t, 3, cart.setQuantity)
}

func TestUpdateQuantity_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		body     string
		wantCode string
	}{
		{
			name:     "negative quantity",
			target:   "/api/v1/cart/items/42",
			body:     `{"quantity":-1}`,
			wantCode: "invalid_quantity",
		},
		{
			name:     "non-numeric product id",
			target:   "/api/v1/cart/items/abc",
			body:     `{"quantity":1}`,
			wantCode: "invalid_product_id",
		},
		{
			name:     "malformed body",
			target:   "/api/v1/cart/items/42",
			body:     `{"quantity":`,
			wantCode: "invalid_request",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cart := &fakeCartService{}
			router := newTestRouter(cart, &fakeOrderService{}, &fakeOrderFinder{}, &fakeCheckoutService{})

			rec := performRequest(t, router, http.MethodPut, tc.target, tc.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantCode, resp.Code)
			assert.Zero(t, cart.setCallCount)
		})
	}
}

func TestCheckout(t *testing.T) {
	cart := &fakeCartService{snap: service.CartSnapshot{
		Lines:  []domain.CartLine{{ID: 1, Name: "Burger", Price: 9.99, Quantity: 2}},
		Totals: pricing.Totals{SubTotal: 19.98, Shipping: 2.00, Tax: 1.00, Total: 22.98},
	}}
	checkout := &fakeCheckoutService{invoiceNo: "INV-20240101000000-AAAAAA"}
	router := newTestRouter(cart, &fakeOrderService{}, &fakeOrderFinder{}, checkout)

	rec := performRequest(t, router, http.MethodPost, "/api/v1/checkout", "")

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CheckoutResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INV-20240101000000-AAAAAA", resp.InvoiceNo)
	require.Len(t, checkout.lines, 1)
	assert.InDelta(t, 22.98, checkout.totals.Total, 0.001)
}

func TestCheckout_EmptyCart(t *testing.T) {
	checkout := &fakeCheckoutService{invoiceNo: "INV-1"}
	router := newTestRouter(&fakeCartService{}, &fakeOrderService{}, &fakeOrderFinder{}, checkout)

	rec := performRequest(t, router, http.MethodPost, "/api/v1/checkout", "")

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "empty_cart", resp.Code)
	assert.Nil(t, checkout.lines)
}

func TestCheckout_ServiceError(t *testing.T) {
	cart := &fakeCartService{snap: service.CartSnapshot{
		Lines: []domain.CartLine{{ID: 1, Quantity: 1, Price: 1}},
	}}
	checkout := &fakeCheckoutService{err: domain.WrapRemote(errors.New("tx aborted"), "Error creating order")}
	router := newTestRouter(cart, &fakeOrderService{}, &fakeOrderFinder{}, checkout)

	rec := performRequest(t, router, http.MethodPost, "/api/v1/checkout", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "checkout_failed", resp.Code)
	assert.Equal(t, "tx aborted", resp.Error)
}

func TestListOrders(t *testing.T) {
	orders := &fakeOrderService{snap: service.OrderSnapshot{
		Orders: []domain.Order{{InvoiceNo: "INV-1", Total: 22.98}},
	}}
	router := newTestRouter(&fakeCartService{}, orders, &fakeOrderFinder{}, &fakeCheckoutService{})

	rec := performRequest(t, router, http.MethodGet, "/api/v1/orders", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var snap service.OrderSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Orders, 1)
	assert.Equal(t, "INV-1", snap.Orders[0].InvoiceNo)
}

func TestGetOrder(t *testing.T) {
	finder := &fakeOrderFinder{order: &domain.Order{InvoiceNo: "INV-1", Total: 22.98}}
	router := newTestRouter(&fakeCartService{}, &fakeOrderService{}, finder, &fakeCheckoutService{})

	rec := performRequest(t, router, http.MethodGet, "/api/v1/orders/INV-1", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var order domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "INV-1", order.InvoiceNo)
}

func TestGetOrder_NotFound(t *testing.T) {
	finder := &fakeOrderFinder{err: repository.ErrOrderNotFound}
	router := newTestRouter(&fakeCartService{}, &fakeOrderService{}, finder, &fakeCheckoutService{})

	rec := performRequest(t, router, http.MethodGet, "/api/v1/orders/INV-MISSING", "")

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Code)
}

func TestStreamCart(t *testing.T) {
	cart := &fakeCartService{ticks: []service.CartSnapshot{
		{Lines: []domain.CartLine{{ID: 1, Name: "Burger"}}},
		{Err: domain.WrapRemote(errors.New("stream closed"), "Error loading cart")},
	}}
	router := newTestRouter(cart, &fakeOrderService{}, &fakeOrderFinder{}, &fakeCheckoutService{})

	rec := performRequest(t, router, http.MethodGet, "/api/v1/cart/stream", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `data: {"items":[{`)
	assert.Contains(t, body, "event: error\n")
	assert.Contains(t, body, "stream closed")
}

func TestStreamOrders(t *testing.T) {
	orders := &fakeOrderService{ticks: []service.OrderSnapshot{
		{Orders: []domain.Order{{InvoiceNo: "INV-1"}}},
	}}
	router := newTestRouter(&fakeCartService{}, orders, &fakeOrderFinder{}, &fakeCheckoutService{})

	rec := performRequest(t, router, http.MethodGet, "/api/v1/orders/stream", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"invoiceNo":"INV-1"`)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakeCartService{}, &fakeOrderService{}, &fakeOrderFinder{}, &fakeCheckoutService{})

	rec := performRequest(t, router, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
