package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixlabs/rifamart/internal/domain/model"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type gatewayServer struct {
	*httptest.Server
	tokenRequests int32
	chargeStatus  string
	chargeCode    int
}

func newGatewayServer(t *testing.T) *gatewayServer {
	t.Helper()
	gs := &gatewayServer{chargeStatus: "pending", chargeCode: http.StatusCreated}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&gs.tokenRequests, 1)
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["grant_type"] != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "test-token", "expires_in": 3600})
	})
	mux.HandleFunc("/v1/pix/charges", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["external_reference"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(gs.chargeCode)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "GW-1", "status": gs.chargeStatus, "emv": "pix-emv-code"})
	})
	mux.HandleFunc("/v1/pix/charges/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := r.URL.Path[len("/v1/pix/charges/"):]
		switch id {
		case "GW-1":
			value := 29.70
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "GW-1", "status": gs.chargeStatus, "value": value})
		case "GW-429":
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	gs.Server = httptest.NewServer(mux)
	t.Cleanup(gs.Close)
	return gs
}

func newTestClient(t *testing.T, baseURL string) *HTTPClient {
	t.Helper()
	client, err := NewHTTPClient(baseURL, "client-1", "secret", newTestLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func TestNewHTTPClientValidation(t *testing.T) {
	if _, err := NewHTTPClient("://bad", "id", "secret", newTestLogger()); err == nil {
		t.Fatal("expected error for malformed url")
	}
	if _, err := NewHTTPClient("relative/path", "id", "secret", newTestLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestCreateCharge(t *testing.T) {
	server := newGatewayServer(t)
	client := newTestClient(t, server.URL)

	order := model.Order{Code: "order-1", Amount: 29.70, Buyer: model.Buyer{Name: "Maria", Email: "maria@example.com"}}
	charge, err := client.CreateCharge(context.Background(), order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charge.GatewayID != "GW-1" || charge.EMV != "pix-emv-code" {
		t.Fatalf("unexpected charge: %+v", charge)
	}
}

func TestTokenIsCachedAcrossRequests(t *testing.T) {
	server := newGatewayServer(t)
	client := newTestClient(t, server.URL)

	order := model.Order{Code: "order-1", Amount: 10}
	for i := 0; i < 3; i++ {
		if _, err := client.CreateCharge(context.Background(), order); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&server.tokenRequests); n != 1 {
		t.Fatalf("token requested %d times, want 1", n)
	}
}

func TestGetCharge(t *testing.T) {
	server := newGatewayServer(t)
	server.chargeStatus = "paid"
	client := newTestClient(t, server.URL)

	charge, err := client.GetCharge(context.Background(), "GW-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !charge.Paid() {
		t.Fatalf("expected paid charge, got %+v", charge)
	}
	if charge.Value == nil || *charge.Value != 29.70 {
		t.Fatalf("unexpected value: %v", charge.Value)
	}
}

func TestGetChargeNotFound(t *testing.T) {
	server := newGatewayServer(t)
	client := newTestClient(t, server.URL)

	if _, err := client.GetCharge(context.Background(), "GW-missing"); !errors.Is(err, ErrChargeNotFound) {
		t.Fatalf("err = %v, want ErrChargeNotFound", err)
	}
}

func TestGetChargeRateLimited(t *testing.T) {
	server := newGatewayServer(t)
	client := newTestClient(t, server.URL)

	_, err := client.GetCharge(context.Background(), "GW-429")
	var rateLimited TooManyRequestsError
	if !errors.As(err, &rateLimited) {
		t.Fatalf("err = %v, want TooManyRequestsError", err)
	}
	if rateLimited.RetryAfter != 7*time.Second {
		t.Fatalf("RetryAfter = %v, want 7s", rateLimited.RetryAfter)
	}
}

func TestUnauthorizedInvalidatesToken(t *testing.T) {
	var tokens int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			n := atomic.AddInt32(&tokens, 1)
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "token-" + string(rune('0'+n)), "expires_in": 3600})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	if _, err := client.GetCharge(context.Background(), "GW-1"); err == nil {
		t.Fatal("expected error")
	}

	client.mu.Lock()
	token := client.token
	client.mu.Unlock()
	if token != "" {
		t.Fatalf("token not invalidated after 401: %q", token)
	}
}

func TestAuthenticationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	if _, err := client.GetCharge(context.Background(), "GW-1"); err == nil {
		t.Fatal("expected auth error")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d := parseRetryAfter(""); d != 5*time.Second {
		t.Fatalf("default = %v, want 5s", d)
	}
	if d := parseRetryAfter("12"); d != 12*time.Second {
		t.Fatalf("seconds = %v, want 12s", d)
	}
	if d := parseRetryAfter("garbage"); d != 5*time.Second {
		t.Fatalf("garbage = %v, want 5s", d)
	}
	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	if d := parseRetryAfter(future); d <= 0 || d > time.Minute {
		t.Fatalf("http date = %v, want under a minute", d)
	}
}
