package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rosamendez/emberglow-backend/internal/admin"
	"github.com/rosamendez/emberglow-backend/pkg/config"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
)

func adminTestService(t *testing.T) admin.Service {
	t.Helper()

	svc, err := admin.NewService(config.AdminConfig{
		AllowedIPs: []string{"203.0.113.10"},
		JWTSecret:  "test-secret",
		JWTIssuer:  "emberglow",
		SessionTTL: time.Hour,
	}, logger.New(logger.Options{ServiceName: "mw-test"}))
	if err != nil {
		t.Fatalf("new admin service: %v", err)
	}
	return svc
}

func TestAdminAuthAllowsValidToken(t *testing.T) {
	svc := adminTestService(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.10")
	session, err := svc.Login(req.Context(), "203.0.113.10")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+session.Token)

	called := false
	handler := AdminAuth(svc, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if !called {
		t.Fatal("expected next handler to run")
	}
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminAuthRejectsMissingToken(t *testing.T) {
	handler := AdminAuth(adminTestService(t), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.10")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAdminAuthRejectsWrongAddress(t *testing.T) {
	svc := adminTestService(t)
	session, err := svc.Login(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "203.0.113.10")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	handler := AdminAuth(svc, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.7")
	req.Header.Set("Authorization", "Bearer "+session.Token)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestSessionMiddlewareMintsAndEchoes(t *testing.T) {
	var got string
	handler := Session(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if got == "" {
		t.Fatal("expected a minted session id")
	}
	if resp.Header().Get("X-Session-Id") != got {
		t.Fatal("expected session id echoed in response header")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Session-Id", "existing")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Header().Get("X-Session-Id") != "existing" {
		t.Fatal("expected existing session id preserved")
	}
}

func TestRemoteIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:4567"

	if got := RemoteIP(req); got != "10.0.0.1" {
		t.Fatalf("expected remote addr host, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.10, 10.0.0.1")
	if got := RemoteIP(req); got != "203.0.113.10" {
		t.Fatalf("expected first forwarded entry, got %q", got)
	}
}
