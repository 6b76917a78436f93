package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rosamendez/emberglow-backend/api/middleware"
	cartsvc "github.com/rosamendez/emberglow-backend/internal/cart"
	pkgerrors "github.com/rosamendez/emberglow-backend/pkg/errors"
)

type stubCart struct {
	items []cartsvc.LineItem
	err   error

	addInput   cartsvc.AddInput
	updatedKey cartsvc.ItemKey
	updatedQty int
	cleared    bool
}

func (s *stubCart) AddItem(ctx context.Context, sessionID string, input cartsvc.AddInput) ([]cartsvc.LineItem, error) {
	s.addInput = input
	return s.items, s.err
}

func (s *stubCart) RemoveItem(ctx context.Context, sessionID string, key cartsvc.ItemKey) ([]cartsvc.LineItem, error) {
	s.updatedKey = key
	return s.items, s.err
}

func (s *stubCart) UpdateQuantity(ctx context.Context, sessionID string, key cartsvc.ItemKey, quantity int) ([]cartsvc.LineItem, error) {
	s.updatedKey = key
	s.updatedQty = quantity
	return s.items, s.err
}

func (s *stubCart) Clear(ctx context.Context, sessionID string) error {
	s.cleared = true
	return s.err
}

func (s *stubCart) Items(ctx context.Context, sessionID string) ([]cartsvc.LineItem, error) {
	return s.items, s.err
}

func (s *stubCart) TotalItemCount(ctx context.Context, sessionID string) (int, error) { return 0, nil }

func (s *stubCart) Subtotal(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubCart) Subscribe(obs cartsvc.Observer) {}

func sessionRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithSessionID(req.Context(), "s1"))
}

func TestCartFetchSuccess(t *testing.T) {
	stub := &stubCart{items: []cartsvc.LineItem{
		{ID: "c1", Name: "Ember Candle", UnitPrice: decimal.NewFromInt(24), Quantity: 2, Size: "8oz"},
	}}
	handler := CartFetch(stub, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ItemCount != 2 {
		t.Fatalf("unexpected item count: %d", envelope.Data.ItemCount)
	}
	if !envelope.Data.Subtotal.Equal(decimal.NewFromInt(48)) {
		t.Fatalf("unexpected subtotal: %s", envelope.Data.Subtotal)
	}
}

func TestCartAddItemValidatesBody(t *testing.T) {
	handler := CartAddItem(&stubCart{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/cart/items", `{"price":12.5}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemRejectsNonPositivePrice(t *testing.T) {
	handler := CartAddItem(&stubCart{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/cart/items", `{"name":"Ember Candle","price":0}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemRejectsOversizedQuantity(t *testing.T) {
	handler := CartAddItem(&stubCart{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/cart/items", `{"name":"Ember Candle","price":24,"quantity":11}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemPassesInputThrough(t *testing.T) {
	stub := &stubCart{}
	handler := CartAddItem(stub, nil)

	body := `{"id":"c1","name":"Ember Candle","price":24,"quantity":2,"size":"8oz","scent":"cedar","category":"candles"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/cart/items", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.addInput.ID != "c1" || stub.addInput.Size != "8oz" || stub.addInput.Quantity != 2 {
		t.Fatalf("unexpected add input: %+v", stub.addInput)
	}
}

func TestCartUpdateQuantityZeroAllowed(t *testing.T) {
	stub := &stubCart{}
	handler := CartUpdateQuantity(stub, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPut, "/api/v1/cart/items", `{"id":"c1","size":"8oz","quantity":0}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.updatedQty != 0 {
		t.Fatalf("expected quantity 0, got %d", stub.updatedQty)
	}
}

func TestCartRemoveItemRequiresID(t *testing.T) {
	handler := CartRemoveItem(&stubCart{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodDelete, "/api/v1/cart/items?size=8oz", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartFetchServiceError(t *testing.T) {
	handler := CartFetch(&stubCart{err: pkgerrors.New(pkgerrors.CodeInternal, "boom")}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodGet, "/api/v1/cart", ""))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
