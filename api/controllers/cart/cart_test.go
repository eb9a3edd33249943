package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ethanhollis/cartwright-backend/api/middleware"
	cartsvc "github.com/ethanhollis/cartwright-backend/internal/cart"
	pkgerrors "github.com/ethanhollis/cartwright-backend/pkg/errors"
)

type stubCartService struct {
	quote     *cartsvc.Quote
	err       error
	lastActor cartsvc.Actor
	lastID    uuid.UUID
	lastQty   int
}

func (s *stubCartService) GetCart(_ context.Context, actor cartsvc.Actor) (*cartsvc.Quote, error) {
	s.lastActor = actor
	return s.quote, s.err
}

func (s *stubCartService) AddItem(_ context.Context, actor cartsvc.Actor, productID uuid.UUID, quantity int) (*cartsvc.Quote, error) {
	s.lastActor = actor
	s.lastID = productID
	s.lastQty = quantity
	return s.quote, s.err
}

func (s *stubCartService) UpdateQuantity(_ context.Context, actor cartsvc.Actor, productID uuid.UUID, quantity int) (*cartsvc.Quote, error) {
	s.lastActor = actor
	s.lastID = productID
	s.lastQty = quantity
	return s.quote, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, actor cartsvc.Actor, productID uuid.UUID) (*cartsvc.Quote, error) {
	s.lastActor = actor
	s.lastID = productID
	return s.quote, s.err
}

func (s *stubCartService) Clear(_ context.Context, actor cartsvc.Actor) (*cartsvc.Quote, error) {
	s.lastActor = actor
	return s.quote, s.err
}

func (s *stubCartService) MergeGuestCart(context.Context, uuid.UUID, string) (*cartsvc.Quote, error) {
	return s.quote, s.err
}

func emptyQuote() *cartsvc.Quote {
	return &cartsvc.Quote{Items: []cartsvc.QuoteItem{}}
}

func TestFetchUsesGuestToken(t *testing.T) {
	svc := &stubCartService{quote: emptyQuote()}
	handler := Fetch(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req = req.WithContext(middleware.WithGuestToken(req.Context(), "tok-99"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastActor.GuestToken != "tok-99" {
		t.Fatalf("expected guest actor, got %+v", svc.lastActor)
	}
}

func TestFetchPrefersUserOverGuest(t *testing.T) {
	svc := &stubCartService{quote: emptyQuote()}
	handler := Fetch(svc, nil)
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithGuestToken(ctx, "tok-stale")
	req = req.WithContext(ctx)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastActor.UserID != userID || svc.lastActor.GuestToken != "" {
		t.Fatalf("expected user actor, got %+v", svc.lastActor)
	}
}

func TestFetchRejectsAnonymous(t *testing.T) {
	handler := Fetch(&stubCartService{quote: emptyQuote()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAddItemDecodesPayload(t *testing.T) {
	svc := &stubCartService{quote: emptyQuote()}
	handler := AddItem(svc, nil)
	productID := uuid.New()

	body := fmt.Sprintf(`{"product_id":%q,"quantity":3}`, productID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req = req.WithContext(middleware.WithGuestToken(req.Context(), "tok-1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastID != productID || svc.lastQty != 3 {
		t.Fatalf("unexpected call: id=%s qty=%d", svc.lastID, svc.lastQty)
	}
}

func TestAddItemRejectsZeroQuantity(t *testing.T) {
	handler := AddItem(&stubCartService{quote: emptyQuote()}, nil)

	body := fmt.Sprintf(`{"product_id":%q,"quantity":0}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req = req.WithContext(middleware.WithGuestToken(req.Context(), "tok-1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAddItemMapsConflict(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeConflict, "out of stock")}
	handler := AddItem(svc, nil)

	body := fmt.Sprintf(`{"product_id":%q,"quantity":1}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req = req.WithContext(middleware.WithGuestToken(req.Context(), "tok-1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Message != "out of stock" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestUpdateItemRoutesQuantity(t *testing.T) {
	svc := &stubCartService{quote: emptyQuote()}
	productID := uuid.New()

	router := chi.NewRouter()
	router.Put("/api/v1/cart/items/{productID}", UpdateItem(svc, nil))

	req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items/"+productID.String(), strings.NewReader(`{"quantity":5}`))
	req = req.WithContext(middleware.WithGuestToken(req.Context(), "tok-1"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastID != productID || svc.lastQty != 5 {
		t.Fatalf("unexpected call: id=%s qty=%d", svc.lastID, svc.lastQty)
	}
}

func TestRemoveItemParsesPath(t *testing.T) {
	svc := &stubCartService{quote: emptyQuote()}
	productID := uuid.New()

	router := chi.NewRouter()
	router.Delete("/api/v1/cart/items/{productID}", RemoveItem(svc, nil))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+productID.String(), nil)
	req = req.WithContext(middleware.WithGuestToken(req.Context(), "tok-1"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastID != productID {
		t.Fatalf("unexpected product id %s", svc.lastID)
	}

	badReq := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/not-a-uuid", nil)
	badReq = badReq.WithContext(middleware.WithGuestToken(badReq.Context(), "tok-1"))
	badResp := httptest.NewRecorder()
	router.ServeHTTP(badResp, badReq)
	if badResp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", badResp.Code)
	}
}

func TestClearReturnsQuote(t *testing.T) {
	svc := &stubCartService{quote: emptyQuote()}
	handler := Clear(svc, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)
	req = req.WithContext(middleware.WithGuestToken(req.Context(), "tok-1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartsvc.Quote `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(envelope.Data.Items))
	}
}
