package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/tgreer/familysite/internal/domain/errors"
	"github.com/tgreer/familysite/internal/domain/model"
	"github.com/tgreer/familysite/internal/domain/reference"
	"github.com/tgreer/familysite/internal/server/http/dto"
	"github.com/tgreer/familysite/internal/server/http/middleware"
	testhelpers "github.com/tgreer/familysite/internal/test"
	"github.com/tgreer/familysite/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func performRequest(t *testing.T, method, path, target string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, path, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func asUser(userID int64) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDContextKey, userID)
	}
}

func TestCurrentUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentUserID(c); got != 0 {
		t.Fatalf("expected 0 when not set, got %d", got)
	}

	c.Set(middleware.UserIDContextKey, int64(42))
	if got := CurrentUserID(c); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func webhookBody(t *testing.T, eventType, paymentStatus, referenceID, note string) []byte {
	t.Helper()
	body, err := json.Marshal(dto.WebhookEvent{
		Type:    eventType,
		EventID: "evt-1",
		Data: dto.WebhookData{
			Type: "payment",
			ID:   "pay-1",
			Object: dto.WebhookObject{Payment: dto.WebhookPayment{
				ID:          "pay-1",
				Status:      paymentStatus,
				ReferenceID: referenceID,
				Note:        note,
				ReceiptURL:  "https://r",
			}},
		},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return body
}

func decodeAck(t *testing.T, resp *httptest.ResponseRecorder) {
	t.Helper()
	if resp.Code != http.StatusOK {
		t.Fatalf("webhook must ack with 200, got %d", resp.Code)
	}
	var ack dto.WebhookAck
	if err := json.Unmarshal(resp.Body.Bytes(), &ack); err != nil || !ack.Received {
		t.Fatalf("expected received ack, got %q", resp.Body.String())
	}
}

func TestWebhookCompletedAppliesSuccess(t *testing.T) {
	var gotRef reference.PaymentReference
	var gotPaymentID, gotReceipt string
	facade := testhelpers.ReconcileFacadeStub{SuccessFn: func(_ context.Context, ref reference.PaymentReference, paymentID, receiptURL string) (usecase.Outcome, error) {
		gotRef = ref
		gotPaymentID = paymentID
		gotReceipt = receiptURL
		return usecase.OutcomeApplied, nil
	}}
	metrics := &testhelpers.MetricsRecorderStub{}
	handler := NewWebhookHandler(facade, testhelpers.VerifierStub{}, metrics, discardLogger())

	resp := performRequest(t, http.MethodPost, "/webhooks/square", "/webhooks/square", handler.Receive, nil,
		webhookBody(t, "payment.updated", "COMPLETED", "order:42", ""), nil)
	decodeAck(t, resp)

	if gotRef.Kind != reference.KindOrder || gotRef.OrderID != 42 {
		t.Fatalf("unexpected reference: %+v", gotRef)
	}
	if gotPaymentID != "pay-1" || gotReceipt != "https://r" {
		t.Fatalf("unexpected payment details: %s %s", gotPaymentID, gotReceipt)
	}
	if metrics.Events["payment.updated/processed"] != 1 {
		t.Fatalf("expected processed metric, got %+v", metrics.Events)
	}
}

func TestWebhookFailedAppliesFailure(t *testing.T) {
	var gotRef reference.PaymentReference
	facade := testhelpers.ReconcileFacadeStub{FailureFn: func(_ context.Context, ref reference.PaymentReference) (usecase.Outcome, error) {
		gotRef = ref
		return usecase.OutcomeApplied, nil
	}}
	handler := NewWebhookHandler(facade, testhelpers.VerifierStub{}, &testhelpers.MetricsRecorderStub{}, discardLogger())

	resp := performRequest(t, http.MethodPost, "/webhooks/square", "/webhooks/square", handler.Receive, nil,
		webhookBody(t, "payment.updated", "CANCELED", "db:tok", ""), nil)
	decodeAck(t, resp)

	if gotRef.Kind != reference.KindDuesBatch || gotRef.BatchID != "tok" {
		t.Fatalf("unexpected reference: %+v", gotRef)
	}
}

func TestWebhookReferenceFallsBackToNote(t *testing.T) {
	var gotRef reference.PaymentReference
	facade := testhelpers.ReconcileFacadeStub{SuccessFn: func(_ context.Context, ref reference.PaymentReference, _, _ string) (usecase.Outcome, error) {
		gotRef = ref
		return usecase.OutcomeApplied, nil
	}}
	handler := NewWebhookHandler(facade, testhelpers.VerifierStub{}, &testhelpers.MetricsRecorderStub{}, discardLogger())

	resp := performRequest(t, http.MethodPost, "/webhooks/square", "/webhooks/square", handler.Receive, nil,
		webhookBody(t, "payment.updated", "COMPLETED", "", "donation:9"), nil)
	decodeAck(t, resp)

	if gotRef.Kind != reference.KindDonation || gotRef.DonationID != 9 {
		t.Fatalf("expected note fallback, got %+v", gotRef)
	}
}

func TestWebhookBadSignatureAcksWithoutMutation(t *testing.T) {
	facade := testhelpers.ReconcileFacadeStub{
		SuccessFn: func(context.Context, reference.PaymentReference, string, string) (usecase.Outcome, error) {
			t.Fatal("engine must not run for a tampered delivery")
			return "", nil
		},
		FailureFn: func(context.Context, reference.PaymentReference) (usecase.Outcome, error) {
			t.Fatal("engine must not run for a tampered delivery")
			return "", nil
		},
	}
	metrics := &testhelpers.MetricsRecorderStub{}
	handler := NewWebhookHandler(facade, testhelpers.VerifierStub{Reject: true}, metrics, discardLogger())

	resp := performRequest(t, http.MethodPost, "/webhooks/square", "/webhooks/square", handler.Receive, nil,
		webhookBody(t, "payment.updated", "COMPLETED", "order:1", ""), nil)
	decodeAck(t, resp)

	if metrics.SignatureFailures != 1 {
		t.Fatalf("expected signature failure metric, got %d", metrics.SignatureFailures)
	}
}

func TestWebhookUnknownEventTypeIgnored(t *testing.T) {
	facade := testhelpers.ReconcileFacadeStub{SuccessFn: func(context.Context, reference.PaymentReference, string, string) (usecase.Outcome, error) {
		t.Fatal("engine must not run for unrelated events")
		return "", nil
	}}
	metrics := &testhelpers.MetricsRecorderStub{}
	handler := NewWebhookHandler(facade, testhelpers.VerifierStub{}, metrics, discardLogger())

	resp := performRequest(t, http.MethodPost, "/webhooks/square", "/webhooks/square", handler.Receive, nil,
		webhookBody(t, "invoice.created", "COMPLETED", "order:1", ""), nil)
	decodeAck(t, resp)

	if metrics.Events["invoice.created/ignored"] != 1 {
		t.Fatalf("expected ignored metric, got %+v", metrics.Events)
	}
}

func TestWebhookNonTerminalPaymentStatusIgnored(t *testing.T) {
	facade := testhelpers.ReconcileFacadeStub{SuccessFn: func(context.Context, reference.PaymentReference, string, string) (usecase.Outcome, error) {
		t.Fatal("engine must not run for APPROVED")
		return "", nil
	}}
	handler := NewWebhookHandler(facade, testhelpers.VerifierStub{}, &testhelpers.MetricsRecorderStub{}, discardLogger())

	resp := performRequest(t, http.MethodPost, "/webhooks/square", "/webhooks/square", handler.Receive, nil,
		webhookBody(t, "payment.updated", "APPROVED", "order:1", ""), nil)
	decodeAck(t, resp)
}

func TestWebhookEngineErrorStillAcks(t *testing.T) {
	facade := testhelpers.ReconcileFacadeStub{SuccessFn: func(context.Context, reference.PaymentReference, string, string) (usecase.Outcome, error) {
		return "", errors.New("db down")
	}}
	metrics := &testhelpers.MetricsRecorderStub{}
	handler := NewWebhookHandler(facade, testhelpers.VerifierStub{}, metrics, discardLogger())

	resp := performRequest(t, http.MethodPost, "/webhooks/square", "/webhooks/square", handler.Receive, nil,
		webhookBody(t, "payment.updated", "COMPLETED", "order:1", ""), nil)
	decodeAck(t, resp)

	if metrics.Events["payment.updated/error"] != 1 {
		t.Fatalf("expected error metric, got %+v", metrics.Events)
	}
}

func TestWebhookMalformedBodyAcks(t *testing.T) {
	handler := NewWebhookHandler(testhelpers.ReconcileFacadeStub{}, testhelpers.VerifierStub{}, &testhelpers.MetricsRecorderStub{}, discardLogger())

	resp := performRequest(t, http.MethodPost, "/webhooks/square", "/webhooks/square", handler.Receive, nil,
		[]byte("{not json"), nil)
	decodeAck(t, resp)
}

func TestOrderCreate(t *testing.T) {
	body, _ := json.Marshal(dto.CreateOrderRequest{Items: []dto.OrderItemRequest{{VariantID: 3, Quantity: 2}}})
	handler := NewOrderHandler(OrderFacadeForTest(t, 7))
	resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Create, asUser(7), body, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var out dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Reference != "order:1" || out.Status != string(model.OrderStatusPending) {
		t.Fatalf("unexpected response: %+v", out)
	}
}

// OrderFacadeForTest builds an order stub asserting the caller identity.
func OrderFacadeForTest(t *testing.T, wantUser int64) testhelpers.OrderFacadeStub {
	return testhelpers.OrderFacadeStub{CreateFn: func(_ context.Context, userID int64, items []model.OrderItem) (*model.Order, string, error) {
		if userID != wantUser {
			t.Fatalf("unexpected user passed to facade: %d", userID)
		}
		return &model.Order{ID: 1, UserID: userID, Status: model.OrderStatusPending, Items: items}, "order:1", nil
	}}
}

func TestOrderCreateValidation(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{CreateFn: func(context.Context, int64, []model.OrderItem) (*model.Order, string, error) {
		return nil, "", domainErrors.ErrEmptyOrder
	}})
	body, _ := json.Marshal(dto.CreateOrderRequest{})
	resp := performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Create, asUser(7), body, nil)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodPost, "/api/orders", "/api/orders", handler.Create, asUser(7), []byte("{"), nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.Code)
	}
}

func TestOrderGetErrors(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{GetFn: func(context.Context, int64, int64) (*model.Order, error) {
		return nil, domainErrors.ErrNotFound
	}})
	resp := performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/5", handler.Get, asUser(7), nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	handler = NewOrderHandler(testhelpers.OrderFacadeStub{GetFn: func(context.Context, int64, int64) (*model.Order, error) {
		return nil, domainErrors.ErrForbidden
	}})
	resp = performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/5", handler.Get, asUser(7), nil, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodGet, "/api/orders/:id", "/api/orders/abc", handler.Get, asUser(7), nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", resp.Code)
	}
}

func TestOrderConfirmOutcomes(t *testing.T) {
	body, _ := json.Marshal(dto.ConfirmRequest{PaymentID: "pay-1", ReceiptURL: "https://r"})

	handler := NewOrderHandler(testhelpers.OrderFacadeStub{})
	resp := performRequest(t, http.MethodPost, "/api/orders/:id/confirm", "/api/orders/5/confirm", handler.Confirm, asUser(7), body, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out dto.ConfirmOrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Outcome != string(usecase.OutcomeApplied) {
		t.Fatalf("unexpected outcome: %s", out.Outcome)
	}

	handler = NewOrderHandler(testhelpers.OrderFacadeStub{ConfirmFn: func(_ context.Context, userID, orderID int64, _, _ string) (*model.Order, usecase.Outcome, error) {
		return &model.Order{ID: orderID, UserID: userID, Status: model.OrderStatusCancelled}, usecase.OutcomeConflict, nil
	}})
	resp = performRequest(t, http.MethodPost, "/api/orders/:id/confirm", "/api/orders/5/confirm", handler.Confirm, asUser(7), body, nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for conflict, got %d", resp.Code)
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Error != domainErrors.ErrConflict.Error() {
		t.Fatalf("expected conflict reason in body, got %q", out.Error)
	}

	handler = NewOrderHandler(testhelpers.OrderFacadeStub{ConfirmFn: func(context.Context, int64, int64, string, string) (*model.Order, usecase.Outcome, error) {
		return nil, usecase.OutcomeConflict, domainErrors.ErrForbidden
	}})
	resp = performRequest(t, http.MethodPost, "/api/orders/:id/confirm", "/api/orders/5/confirm", handler.Confirm, asUser(7), body, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}

	handler = NewOrderHandler(testhelpers.OrderFacadeStub{ConfirmFn: func(_ context.Context, userID, orderID int64, _, _ string) (*model.Order, usecase.Outcome, error) {
		return &model.Order{ID: orderID, UserID: userID, Status: model.OrderStatusRequiresRefund}, usecase.OutcomeStockShort, nil
	}})
	resp = performRequest(t, http.MethodPost, "/api/orders/:id/confirm", "/api/orders/5/confirm", handler.Confirm, asUser(7), body, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("stock short is still a recorded payment, expected 200, got %d", resp.Code)
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Outcome != string(usecase.OutcomeStockShort) || out.Order.Status != string(model.OrderStatusRequiresRefund) {
		t.Fatalf("unexpected stock short response: %+v", out)
	}
	if out.Error != domainErrors.ErrStockShort.Error() {
		t.Fatalf("expected stock short reason in body, got %q", out.Error)
	}
}

func TestDuesCreateBatch(t *testing.T) {
	body, _ := json.Marshal(dto.CreateDuesBatchRequest{Year: 2026, Members: []dto.BatchMemberRequest{
		{Name: "Self", Amount: decimal.NewFromInt(25)},
		{Name: "Aunt Ruth", Amount: decimal.NewFromInt(25)},
	}})
	handler := NewDuesHandler(testhelpers.DuesFacadeStub{})
	resp := performRequest(t, http.MethodPost, "/api/dues/batches", "/api/dues/batches", handler.CreateBatch, asUser(7), body, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var out dto.DuesBatchResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Reference != "db:tok" || out.Status != string(model.BatchStatusPending) {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestDuesCreateBatchValidation(t *testing.T) {
	handler := NewDuesHandler(testhelpers.DuesFacadeStub{CreateBatchFn: func(context.Context, int64, int, []usecase.BatchMember) (*model.DuesBatch, string, error) {
		return nil, "", domainErrors.ErrInvalidYear
	}})
	body, _ := json.Marshal(dto.CreateDuesBatchRequest{Year: 1950})
	resp := performRequest(t, http.MethodPost, "/api/dues/batches", "/api/dues/batches", handler.CreateBatch, asUser(7), body, nil)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}

func TestDuesConfirmBatch(t *testing.T) {
	body, _ := json.Marshal(dto.ConfirmRequest{PaymentID: "pay-1"})
	handler := NewDuesHandler(testhelpers.DuesFacadeStub{})
	resp := performRequest(t, http.MethodPost, "/api/dues/batches/:batchID/confirm", "/api/dues/batches/tok/confirm", handler.ConfirmBatch, asUser(7), body, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	handler = NewDuesHandler(testhelpers.DuesFacadeStub{ConfirmBatchFn: func(context.Context, int64, model.BatchID, string, string) (*model.DuesBatch, usecase.Outcome, error) {
		return nil, usecase.OutcomeNotFound, domainErrors.ErrNotFound
	}})
	resp = performRequest(t, http.MethodPost, "/api/dues/batches/:batchID/confirm", "/api/dues/batches/missing/confirm", handler.ConfirmBatch, asUser(7), body, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	handler = NewDuesHandler(testhelpers.DuesFacadeStub{ConfirmBatchFn: func(_ context.Context, userID int64, batchID model.BatchID, _, _ string) (*model.DuesBatch, usecase.Outcome, error) {
		return &model.DuesBatch{ID: batchID, UserID: userID, Status: model.BatchStatusFailed}, usecase.OutcomeConflict, nil
	}})
	resp = performRequest(t, http.MethodPost, "/api/dues/batches/:batchID/confirm", "/api/dues/batches/tok/confirm", handler.ConfirmBatch, asUser(7), body, nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for conflict, got %d", resp.Code)
	}
	var conflictOut dto.ConfirmDuesBatchResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &conflictOut); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if conflictOut.Error != domainErrors.ErrConflict.Error() {
		t.Fatalf("expected conflict reason in body, got %q", conflictOut.Error)
	}
}

func TestDuesListYear(t *testing.T) {
	var gotYear int
	handler := NewDuesHandler(testhelpers.DuesFacadeStub{ListFn: func(_ context.Context, year int) ([]model.DuesPayment, error) {
		gotYear = year
		return []model.DuesPayment{{ID: 1, MemberName: "Member", Year: year, Amount: decimal.NewFromInt(25), Status: model.DuesStatusCompleted, Method: model.PaymentMethodSquare}}, nil
	}})
	resp := performRequest(t, http.MethodGet, "/api/dues", "/api/dues?year=2025", handler.ListYear, asUser(7), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotYear != 2025 {
		t.Fatalf("expected year 2025, got %d", gotYear)
	}

	resp = performRequest(t, http.MethodGet, "/api/dues", "/api/dues?year=abc", handler.ListYear, asUser(7), nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad year, got %d", resp.Code)
	}
}

func TestDuesRecordManual(t *testing.T) {
	body, _ := json.Marshal(dto.ManualDuesRequest{MemberName: "Elder Mae", Year: 2026, Amount: decimal.NewFromInt(25)})
	handler := NewDuesHandler(testhelpers.DuesFacadeStub{})
	resp := performRequest(t, http.MethodPost, "/api/admin/dues", "/api/admin/dues", handler.RecordManual, asUser(7), body, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var out dto.DuesPaymentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Status != string(model.DuesStatusCompleted) || out.Method != string(model.PaymentMethodManual) {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestDonationCreateLinksMember(t *testing.T) {
	var gotUser *int64
	handler := NewDonationHandler(testhelpers.DonationFacadeStub{CreateFn: func(_ context.Context, donation model.Donation) (*model.Donation, string, error) {
		gotUser = donation.UserID
		donation.ID = 11
		donation.Status = model.DonationStatusPending
		return &donation, "donation:11", nil
	}})

	body, _ := json.Marshal(dto.CreateDonationRequest{DonorName: "Member", Amount: decimal.NewFromInt(100)})
	resp := performRequest(t, http.MethodPost, "/api/donations", "/api/donations", handler.Create, asUser(7), body, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if gotUser == nil || *gotUser != 7 {
		t.Fatalf("expected donation linked to member 7, got %v", gotUser)
	}

	gotUser = nil
	resp = performRequest(t, http.MethodPost, "/api/donations", "/api/donations", handler.Create, nil, body, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for guest, got %d", resp.Code)
	}
	if gotUser != nil {
		t.Fatalf("guest donation must not carry a user, got %d", *gotUser)
	}
}

func TestDonationConfirmNotFound(t *testing.T) {
	body, _ := json.Marshal(dto.ConfirmRequest{PaymentID: "pay-1"})
	handler := NewDonationHandler(testhelpers.DonationFacadeStub{ConfirmFn: func(context.Context, int64, string, string) (*model.Donation, usecase.Outcome, error) {
		return nil, usecase.OutcomeNotFound, domainErrors.ErrNotFound
	}})
	resp := performRequest(t, http.MethodPost, "/api/donations/:id/confirm", "/api/donations/404/confirm", handler.Confirm, nil, body, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
