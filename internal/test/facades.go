package test

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tgreer/familysite/internal/domain/model"
	"github.com/tgreer/familysite/internal/domain/reference"
	"github.com/tgreer/familysite/internal/usecase"
)

// ReconcileFacadeStub provides controllable behaviour for the webhook path.
type ReconcileFacadeStub struct {
	SuccessFn func(context.Context, reference.PaymentReference, string, string) (usecase.Outcome, error)
	FailureFn func(context.Context, reference.PaymentReference) (usecase.Outcome, error)
}

// ApplySuccess delegates to the provided function or reports Applied.
func (s ReconcileFacadeStub) ApplySuccess(ctx context.Context, ref reference.PaymentReference, paymentID, receiptURL string) (usecase.Outcome, error) {
	if s.SuccessFn != nil {
		return s.SuccessFn(ctx, ref, paymentID, receiptURL)
	}
	return usecase.OutcomeApplied, nil
}

// ApplyFailure delegates to the provided function or reports Applied.
func (s ReconcileFacadeStub) ApplyFailure(ctx context.Context, ref reference.PaymentReference) (usecase.Outcome, error) {
	if s.FailureFn != nil {
		return s.FailureFn(ctx, ref)
	}
	return usecase.OutcomeApplied, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn  func(context.Context, int64, []model.OrderItem) (*model.Order, string, error)
	GetFn     func(context.Context, int64, int64) (*model.Order, error)
	ConfirmFn func(context.Context, int64, int64, string, string) (*model.Order, usecase.Outcome, error)
}

// CreateOrder delegates or returns a fresh pending order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, userID int64, items []model.OrderItem) (*model.Order, string, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, userID, items)
	}
	return &model.Order{ID: 1, UserID: userID, Status: model.OrderStatusPending, Items: items}, "order:1", nil
}

// Order delegates or returns a paid order owned by the caller.
func (s OrderFacadeStub) Order(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, userID, orderID)
	}
	return &model.Order{ID: orderID, UserID: userID, Status: model.OrderStatusPaid}, nil
}

// ConfirmOrder delegates or reports an applied confirmation.
func (s OrderFacadeStub) ConfirmOrder(ctx context.Context, userID, orderID int64, paymentID, receiptURL string) (*model.Order, usecase.Outcome, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, userID, orderID, paymentID, receiptURL)
	}
	return &model.Order{ID: orderID, UserID: userID, Status: model.OrderStatusPaid}, usecase.OutcomeApplied, nil
}

// DuesFacadeStub provides controllable behaviour for dues endpoints.
type DuesFacadeStub struct {
	CreateBatchFn  func(context.Context, int64, int, []usecase.BatchMember) (*model.DuesBatch, string, error)
	ConfirmBatchFn func(context.Context, int64, model.BatchID, string, string) (*model.DuesBatch, usecase.Outcome, error)
	ListFn         func(context.Context, int) ([]model.DuesPayment, error)
	ManualFn       func(context.Context, model.DuesPayment) (*model.DuesPayment, error)
}

// CreateDuesBatch delegates or returns a pending batch.
func (s DuesFacadeStub) CreateDuesBatch(ctx context.Context, userID int64, year int, members []usecase.BatchMember) (*model.DuesBatch, string, error) {
	if s.CreateBatchFn != nil {
		return s.CreateBatchFn(ctx, userID, year, members)
	}
	batch := &model.DuesBatch{ID: "tok", UserID: userID, Year: year, Status: model.BatchStatusPending}
	return batch, "db:tok", nil
}

// ConfirmDuesBatch delegates or reports an applied confirmation.
func (s DuesFacadeStub) ConfirmDuesBatch(ctx context.Context, userID int64, batchID model.BatchID, paymentID, receiptURL string) (*model.DuesBatch, usecase.Outcome, error) {
	if s.ConfirmBatchFn != nil {
		return s.ConfirmBatchFn(ctx, userID, batchID, paymentID, receiptURL)
	}
	return &model.DuesBatch{ID: batchID, UserID: userID, Status: model.BatchStatusPaid}, usecase.OutcomeApplied, nil
}

// DuesForYear delegates or returns a single completed roster row.
func (s DuesFacadeStub) DuesForYear(ctx context.Context, year int) ([]model.DuesPayment, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, year)
	}
	return []model.DuesPayment{{
		ID: 1, MemberName: "Member", Year: year,
		Amount: decimal.NewFromInt(25),
		Status: model.DuesStatusCompleted, Method: model.PaymentMethodSquare,
	}}, nil
}

// RecordManualDues delegates or echoes the payment as completed manual.
func (s DuesFacadeStub) RecordManualDues(ctx context.Context, payment model.DuesPayment) (*model.DuesPayment, error) {
	if s.ManualFn != nil {
		return s.ManualFn(ctx, payment)
	}
	payment.ID = 1
	payment.Status = model.DuesStatusCompleted
	payment.Method = model.PaymentMethodManual
	return &payment, nil
}

// DonationFacadeStub provides controllable behaviour for donation endpoints.
type DonationFacadeStub struct {
	CreateFn  func(context.Context, model.Donation) (*model.Donation, string, error)
	GetFn     func(context.Context, int64) (*model.Donation, error)
	ConfirmFn func(context.Context, int64, string, string) (*model.Donation, usecase.Outcome, error)
}

// CreateDonation delegates or returns a pending donation.
func (s DonationFacadeStub) CreateDonation(ctx context.Context, donation model.Donation) (*model.Donation, string, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, donation)
	}
	donation.ID = 1
	donation.Status = model.DonationStatusPending
	return &donation, "donation:1", nil
}

// Donation delegates or returns a completed donation.
func (s DonationFacadeStub) Donation(ctx context.Context, donationID int64) (*model.Donation, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, donationID)
	}
	return &model.Donation{ID: donationID, Status: model.DonationStatusCompleted}, nil
}

// ConfirmDonation delegates or reports an applied confirmation.
func (s DonationFacadeStub) ConfirmDonation(ctx context.Context, donationID int64, paymentID, receiptURL string) (*model.Donation, usecase.Outcome, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, donationID, paymentID, receiptURL)
	}
	return &model.Donation{ID: donationID, Status: model.DonationStatusCompleted}, usecase.OutcomeApplied, nil
}

// VerifierStub accepts every signature unless told to reject.
type VerifierStub struct {
	Reject bool
}

// Verify reports the configured decision.
func (s VerifierStub) Verify(string, []byte) bool {
	return !s.Reject
}

// MetricsRecorderStub counts metric calls for assertions.
type MetricsRecorderStub struct {
	mu                sync.Mutex
	Events            map[string]int
	SignatureFailures int
	Outcomes          map[string]int
	StockShorts       int
}

// WebhookEvent records an event/outcome pair.
func (s *MetricsRecorderStub) WebhookEvent(eventType, outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Events == nil {
		s.Events = make(map[string]int)
	}
	s.Events[eventType+"/"+outcome]++
}

// SignatureFailure records a rejected delivery.
func (s *MetricsRecorderStub) SignatureFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SignatureFailures++
}

// ReconcileOutcome records a reconciliation outcome.
func (s *MetricsRecorderStub) ReconcileOutcome(kind, outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Outcomes == nil {
		s.Outcomes = make(map[string]int)
	}
	s.Outcomes[kind+"/"+outcome]++
}

// StockShort records a refund-parked order.
func (s *MetricsRecorderStub) StockShort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StockShorts++
}
