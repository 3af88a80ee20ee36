package app

import (
	"context"
	"time"

	"github.com/tgreer/familysite/internal/domain/model"
	"github.com/tgreer/familysite/internal/domain/reference"
	"github.com/tgreer/familysite/internal/pkg/auth"
	"github.com/tgreer/familysite/internal/usecase"
)

// PaymentsFacade aggregates the payment usecases behind the surface the
// HTTP handlers and the sweeper consume.
type PaymentsFacade struct {
	reconcile *usecase.ReconcileUseCase
	checkout  *usecase.CheckoutUseCase
	sweep     *usecase.SweepUseCase
	sessions  auth.Strategy
}

func NewPaymentsFacade(reconcile *usecase.ReconcileUseCase, checkout *usecase.CheckoutUseCase, sweep *usecase.SweepUseCase, sessions auth.Strategy) *PaymentsFacade {
	return &PaymentsFacade{reconcile: reconcile, checkout: checkout, sweep: sweep, sessions: sessions}
}

func (f *PaymentsFacade) ParseToken(token string) (int64, error) {
	return f.sessions.ParseToken(token)
}

func (f *PaymentsFacade) ApplySuccess(ctx context.Context, ref reference.PaymentReference, paymentID, receiptURL string) (usecase.Outcome, error) {
	return f.reconcile.ApplySuccess(ctx, ref, paymentID, receiptURL)
}

func (f *PaymentsFacade) ApplyFailure(ctx context.Context, ref reference.PaymentReference) (usecase.Outcome, error) {
	return f.reconcile.ApplyFailure(ctx, ref)
}

func (f *PaymentsFacade) CreateOrder(ctx context.Context, userID int64, items []model.OrderItem) (*model.Order, string, error) {
	return f.checkout.CreateOrder(ctx, userID, items)
}

func (f *PaymentsFacade) Order(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	return f.checkout.Order(ctx, userID, orderID)
}

func (f *PaymentsFacade) ConfirmOrder(ctx context.Context, userID, orderID int64, paymentID, receiptURL string) (*model.Order, usecase.Outcome, error) {
	return f.reconcile.ConfirmOrder(ctx, userID, orderID, paymentID, receiptURL)
}

func (f *PaymentsFacade) CreateDuesBatch(ctx context.Context, userID int64, year int, members []usecase.BatchMember) (*model.DuesBatch, string, error) {
	return f.checkout.CreateDuesBatch(ctx, userID, year, members)
}

func (f *PaymentsFacade) ConfirmDuesBatch(ctx context.Context, userID int64, batchID model.BatchID, paymentID, receiptURL string) (*model.DuesBatch, usecase.Outcome, error) {
	return f.reconcile.ConfirmDuesBatch(ctx, userID, batchID, paymentID, receiptURL)
}

func (f *PaymentsFacade) DuesForYear(ctx context.Context, year int) ([]model.DuesPayment, error) {
	return f.checkout.DuesForYear(ctx, year)
}

func (f *PaymentsFacade) RecordManualDues(ctx context.Context, payment model.DuesPayment) (*model.DuesPayment, error) {
	return f.checkout.RecordManualDues(ctx, payment)
}

func (f *PaymentsFacade) CreateDonation(ctx context.Context, donation model.Donation) (*model.Donation, string, error) {
	return f.checkout.CreateDonation(ctx, donation)
}

func (f *PaymentsFacade) Donation(ctx context.Context, donationID int64) (*model.Donation, error) {
	return f.checkout.Donation(ctx, donationID)
}

func (f *PaymentsFacade) ConfirmDonation(ctx context.Context, donationID int64, paymentID, receiptURL string) (*model.Donation, usecase.Outcome, error) {
	return f.reconcile.ConfirmDonation(ctx, donationID, paymentID, receiptURL)
}

func (f *PaymentsFacade) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]reference.PaymentReference, error) {
	return f.sweep.StalePending(ctx, cutoff, limit)
}
