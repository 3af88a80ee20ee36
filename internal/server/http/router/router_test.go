package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tgreer/familysite/internal/metrics"
	"github.com/tgreer/familysite/internal/server/http/dto"
	testhelpers "github.com/tgreer/familysite/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type healthStub struct {
	err error
}

func (h healthStub) HealthCheck(context.Context) error { return h.err }

func newTestRouter(facade testhelpers.PaymentsFacadeStub, health healthStub) *gin.Engine {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return Setup(facade, testhelpers.VerifierStub{}, metrics.NewRecorder(), health, logger)
}

func TestRouterHealthz(t *testing.T) {
	engine := newTestRouter(testhelpers.PaymentsFacadeStub{}, healthStub{})
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	engine = newTestRouter(testhelpers.PaymentsFacadeStub{}, healthStub{err: errors.New("db down")})
	resp = httptest.NewRecorder()
	engine.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestRouterMetricsExposed(t *testing.T) {
	engine := newTestRouter(testhelpers.PaymentsFacadeStub{}, healthStub{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "go_goroutines") {
		t.Fatalf("expected prometheus exposition, got %q", resp.Body.String()[:min(200, resp.Body.Len())])
	}
}

func TestRouterWebhookIsPublic(t *testing.T) {
	engine := newTestRouter(testhelpers.PaymentsFacadeStub{}, healthStub{})
	body, _ := json.Marshal(dto.WebhookEvent{Type: "payment.updated"})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/square", bytes.NewReader(body))
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 ack without session, got %d", resp.Code)
	}
}

func TestRouterMemberRoutesRequireSession(t *testing.T) {
	engine := newTestRouter(testhelpers.PaymentsFacadeStub{}, healthStub{})

	for _, target := range []string{"/api/orders", "/api/dues/batches", "/api/admin/dues"} {
		req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader([]byte("{}")))
		resp := httptest.NewRecorder()
		engine.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without session, got %d", target, resp.Code)
		}
	}
}

func TestRouterMemberRouteWithSession(t *testing.T) {
	facade := testhelpers.PaymentsFacadeStub{TokenParserStub: testhelpers.TokenParserStub{ID: 7}}
	engine := newTestRouter(facade, healthStub{})

	body, _ := json.Marshal(dto.CreateOrderRequest{Items: []dto.OrderItemRequest{{VariantID: 1, Quantity: 1}}})
	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterGuestDonation(t *testing.T) {
	engine := newTestRouter(testhelpers.PaymentsFacadeStub{}, healthStub{})

	body, _ := json.Marshal(dto.CreateDonationRequest{DonorName: "Guest", Amount: decimal.NewFromInt(50)})
	req := httptest.NewRequest(http.MethodPost, "/api/donations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for guest donation, got %d: %s", resp.Code, resp.Body.String())
	}
}
