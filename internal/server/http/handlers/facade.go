package handlers

import (
	"context"

	"github.com/tgreer/familysite/internal/domain/model"
	"github.com/tgreer/familysite/internal/domain/reference"
	"github.com/tgreer/familysite/internal/usecase"
)

// AuthFacade describes session capabilities required by handlers and middleware.
type AuthFacade interface {
	ParseToken(token string) (int64, error)
}

// ReconcileFacade applies processor payment outcomes to the ledger.
type ReconcileFacade interface {
	ApplySuccess(ctx context.Context, ref reference.PaymentReference, paymentID, receiptURL string) (usecase.Outcome, error)
	ApplyFailure(ctx context.Context, ref reference.PaymentReference) (usecase.Outcome, error)
}

// OrderFacade encapsulates merch order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID int64, items []model.OrderItem) (*model.Order, string, error)
	Order(ctx context.Context, userID, orderID int64) (*model.Order, error)
	ConfirmOrder(ctx context.Context, userID, orderID int64, paymentID, receiptURL string) (*model.Order, usecase.Outcome, error)
}

// DuesFacade encapsulates dues batch and roster operations.
type DuesFacade interface {
	CreateDuesBatch(ctx context.Context, userID int64, year int, members []usecase.BatchMember) (*model.DuesBatch, string, error)
	ConfirmDuesBatch(ctx context.Context, userID int64, batchID model.BatchID, paymentID, receiptURL string) (*model.DuesBatch, usecase.Outcome, error)
	DuesForYear(ctx context.Context, year int) ([]model.DuesPayment, error)
	RecordManualDues(ctx context.Context, payment model.DuesPayment) (*model.DuesPayment, error)
}

// DonationFacade encapsulates donation operations. Donations can be
// guest-initiated, so no caller identity is required.
type DonationFacade interface {
	CreateDonation(ctx context.Context, donation model.Donation) (*model.Donation, string, error)
	Donation(ctx context.Context, donationID int64) (*model.Donation, error)
	ConfirmDonation(ctx context.Context, donationID int64, paymentID, receiptURL string) (*model.Donation, usecase.Outcome, error)
}

// PaymentsFacade aggregates the full set of operations used across handlers.
type PaymentsFacade interface {
	AuthFacade
	ReconcileFacade
	OrderFacade
	DuesFacade
	DonationFacade
}
