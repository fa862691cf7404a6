package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-gateway/api/middleware"
	cartsvc "github.com/angelmondragon/storefront-gateway/internal/cart"
	"github.com/angelmondragon/storefront-gateway/pkg/auth"
	"github.com/angelmondragon/storefront-gateway/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
)

type stubCartService struct {
	cartsvc.Service
	snapshot  *cartsvc.Snapshot
	err       error
	lastCred  auth.Credential
	lastQty   int
	lastID    string
	selected  *bool
	unmounted string
}

func (s *stubCartService) Fetch(_ context.Context, cred auth.Credential) (*cartsvc.Snapshot, error) {
	s.lastCred = cred
	return s.snapshot, s.err
}

func (s *stubCartService) UpdateQuantity(_ context.Context, cred auth.Credential, productID string, qty int) (*cartsvc.Snapshot, error) {
	s.lastCred = cred
	s.lastID = productID
	s.lastQty = qty
	return s.snapshot, s.err
}

func (s *stubCartService) SelectAll(_ context.Context, _ auth.Credential, selected bool) (*cartsvc.Snapshot, error) {
	s.selected = &selected
	return s.snapshot, s.err
}

func (s *stubCartService) Unmount(sessionID string) {
	s.unmounted = sessionID
}

var testSession = &session.Session{ID: "sess-1", UserID: "u1", BackendToken: "backend"}

func authed(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithSession(req.Context(), testSession))
}

func withProduct(req *http.Request, productID string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("productID", productID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestCartFetchSuccess(t *testing.T) {
	stub := &stubCartService{snapshot: &cartsvc.Snapshot{TotalFormatted: "230.000 VND", SelectedCount: 1}}
	handler := CartFetch(stub, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authed(httptest.NewRequest(http.MethodGet, "/api/cart", nil)))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.Snapshot `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalFormatted != "230.000 VND" {
		t.Fatalf("unexpected total %q", envelope.Data.TotalFormatted)
	}
	if stub.lastCred.Token != "backend" || stub.lastCred.SessionID != "sess-1" {
		t.Fatalf("credential not passed explicitly: %+v", stub.lastCred)
	}
}

func TestCartFetchKeepsServiceErrorCode(t *testing.T) {
	stub := &stubCartService{err: pkgerrors.New(pkgerrors.CodeUpstreamUnavailable, pkgerrors.ConnectivityMessage)}
	resp := httptest.NewRecorder()
	CartFetch(stub, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodGet, "/api/cart", nil)))

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestCartUpdateQuantityValidatesBody(t *testing.T) {
	stub := &stubCartService{snapshot: &cartsvc.Snapshot{}}
	handler := CartUpdateQuantity(stub, nil)

	req := withProduct(authed(httptest.NewRequest(http.MethodPut, "/api/cart/items/p1", strings.NewReader(`{"quantity":0}`))), "p1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if stub.lastID != "" {
		t.Fatalf("service should not run on invalid quantity")
	}

	req = withProduct(authed(httptest.NewRequest(http.MethodPut, "/api/cart/items/p1", strings.NewReader(`{"quantity":3}`))), "p1")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.lastID != "p1" || stub.lastQty != 3 {
		t.Fatalf("unexpected call id=%s qty=%d", stub.lastID, stub.lastQty)
	}
}

func TestCartSelectAllRequiresFlag(t *testing.T) {
	stub := &stubCartService{snapshot: &cartsvc.Snapshot{}}
	handler := CartSelectAll(stub, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authed(httptest.NewRequest(http.MethodPut, "/api/cart/selection", strings.NewReader(`{}`))))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, authed(httptest.NewRequest(http.MethodPut, "/api/cart/selection", strings.NewReader(`{"selected":false}`))))
	if resp.Code != http.StatusOK || stub.selected == nil || *stub.selected {
		t.Fatalf("expected deselect-all, got %d %v", resp.Code, stub.selected)
	}
}

func TestCartUnmount(t *testing.T) {
	stub := &stubCartService{}
	resp := httptest.NewRecorder()
	CartUnmount(stub, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodDelete, "/api/cart/view", nil)))

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if stub.unmounted != "sess-1" {
		t.Fatalf("expected session view to be dropped, got %q", stub.unmounted)
	}
}
