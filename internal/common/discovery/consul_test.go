package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func fakeCatalog(t *testing.T, body string) *Resolver {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/catalog/service/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Consul-Index", "1")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	r, err := NewResolver(strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestResolve_UsesServiceAddress(t *testing.T) {
	r := fakeCatalog(t, `[{"Node":"n1","Address":"10.0.0.1","ServiceAddress":"10.0.0.9","ServicePort":14000}]`)

	addr, err := r.Resolve(context.Background(), "auth")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if addr != "10.0.0.9:14000" {
		t.Errorf("expected 10.0.0.9:14000, got %s", addr)
	}
}

func TestResolve_FallsBackToNodeAddress(t *testing.T) {
	r := fakeCatalog(t, `[{"Node":"n1","Address":"fd00::1","ServiceAddress":"","ServicePort":14001}]`)

	addr, err := r.Resolve(context.Background(), "user")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if addr != "[fd00::1]:14001" {
		t.Errorf("expected [fd00::1]:14001, got %s", addr)
	}
}

func TestResolve_EmptyCatalog(t *testing.T) {
	r := fakeCatalog(t, `[]`)

	_, err := r.Resolve(context.Background(), "auth")
	if !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestResolveOr_PrefersStatic(t *testing.T) {
	addr, err := ResolveOr(context.Background(), nil, "http://auth:14514", "auth")
	if err != nil || addr != "http://auth:14514" {
		t.Errorf("expected static address, got %q %v", addr, err)
	}

	if _, err := ResolveOr(context.Background(), nil, "", "auth"); err == nil {
		t.Error("expected error without static address or resolver")
	}
}
