package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pixlabs/rifamart/internal/server/http/handlers"
	testhelpers "github.com/pixlabs/rifamart/internal/test"
)

func TestSetupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine := Setup(testhelpers.RaffleFacadeStub{}, logger)

	body, _ := json.Marshal(map[string]any{"name": "Maria", "quantity": 5})
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201 for order creation, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders/1", nil)
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for order status, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/webhooks/pix", bytes.NewReader([]byte(`{"status":"paid"}`)))
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for webhook, got %d", resp.Code)
	}

	body, _ = json.Marshal(map[string]string{"password": "operator-pass"})
	req = httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for admin login, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/orders/1/conversion", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 for conversion retry, got %d", resp.Code)
	}
}

func TestConversionRetryRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine := Setup(testhelpers.RaffleFacadeStub{
		ParseFn: func(string) (string, error) { return "", http.ErrNoCookie },
	}, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/1/conversion", nil)
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", resp.Code)
	}
}

var _ handlers.RaffleFacade = (*testhelpers.RaffleFacadeStub)(nil)
