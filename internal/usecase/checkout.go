package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/tgreer/familysite/internal/domain/errors"
	"github.com/tgreer/familysite/internal/domain/model"
	"github.com/tgreer/familysite/internal/domain/reference"
	"github.com/tgreer/familysite/internal/domain/repository"
)

// BatchMember is one person covered by a dues batch. UserID is nil for
// family members without an account (children, elders).
type BatchMember struct {
	UserID *int64
	Name   string
	Amount decimal.Decimal
}

// CheckoutUseCase creates payable entities in PENDING state and hands back
// the reference string the caller must attach to the processor payment link.
// The processor-side link creation itself lives with the frontend collaborator.
type CheckoutUseCase struct {
	orders    repository.OrderRepository
	dues      repository.DuesRepository
	donations repository.DonationRepository
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(orders repository.OrderRepository, dues repository.DuesRepository, donations repository.DonationRepository) *CheckoutUseCase {
	return &CheckoutUseCase{orders: orders, dues: dues, donations: donations}
}

// CreateOrder opens a PENDING order. Unit prices are captured by the
// repository from the current variants; stock is not reserved here — it is
// re-validated when the payment lands.
func (u *CheckoutUseCase) CreateOrder(ctx context.Context, userID int64, items []model.OrderItem) (*model.Order, string, error) {
	if len(items) == 0 {
		return nil, "", domainErrors.ErrEmptyOrder
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, "", domainErrors.ErrInvalidAmount
		}
	}

	order, err := u.orders.Create(ctx, userID, items)
	if err != nil {
		return nil, "", err
	}
	return order, reference.ForOrder(order.ID), nil
}

// Order returns an order owned by userID.
func (u *CheckoutUseCase) Order(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainErrors.ErrForbidden
	}
	return order, nil
}

// CreateDuesBatch mints an opaque batch token and creates the batch together
// with one PENDING dues payment per covered member, atomically.
func (u *CheckoutUseCase) CreateDuesBatch(ctx context.Context, userID int64, year int, members []BatchMember) (*model.DuesBatch, string, error) {
	if len(members) == 0 {
		return nil, "", domainErrors.ErrEmptyBatch
	}
	if year < 2000 || year > time.Now().Year()+1 {
		return nil, "", domainErrors.ErrInvalidYear
	}

	batchID := model.BatchID(uuid.NewString())
	batch := &model.DuesBatch{
		ID:     batchID,
		UserID: userID,
		Year:   year,
		Status: model.BatchStatusPending,
	}

	payments := make([]model.DuesPayment, 0, len(members))
	for _, member := range members {
		if !member.Amount.IsPositive() {
			return nil, "", domainErrors.ErrInvalidAmount
		}
		payments = append(payments, model.DuesPayment{
			BatchID:    &batchID,
			UserID:     member.UserID,
			MemberName: member.Name,
			Year:       year,
			Amount:     member.Amount,
			Status:     model.DuesStatusPending,
			Method:     model.PaymentMethodSquare,
		})
	}

	batch, err := u.dues.CreateBatch(ctx, batch, payments)
	if err != nil {
		return nil, "", err
	}
	return batch, reference.ForBatch(batch.ID), nil
}

// DuesForYear lists all dues payments recorded for a reunion year.
func (u *CheckoutUseCase) DuesForYear(ctx context.Context, year int) ([]model.DuesPayment, error) {
	return u.dues.ListByYear(ctx, year)
}

// RecordManualDues records a cash/check payment collected by an admin. The
// row is created directly in COMPLETED; the reconciliation engine never sees it.
func (u *CheckoutUseCase) RecordManualDues(ctx context.Context, payment model.DuesPayment) (*model.DuesPayment, error) {
	if !payment.Amount.IsPositive() {
		return nil, domainErrors.ErrInvalidAmount
	}
	payment.Status = model.DuesStatusCompleted
	payment.Method = model.PaymentMethodManual
	payment.BatchID = nil
	return u.dues.RecordManual(ctx, payment)
}

// CreateDonation opens a PENDING donation for a member or guest.
func (u *CheckoutUseCase) CreateDonation(ctx context.Context, donation model.Donation) (*model.Donation, string, error) {
	if !donation.Amount.IsPositive() {
		return nil, "", domainErrors.ErrInvalidAmount
	}
	donation.Status = model.DonationStatusPending

	created, err := u.donations.Create(ctx, &donation)
	if err != nil {
		return nil, "", err
	}
	return created, reference.ForDonation(created.ID), nil
}

// Donation returns a donation by id.
func (u *CheckoutUseCase) Donation(ctx context.Context, donationID int64) (*model.Donation, error) {
	return u.donations.GetByID(ctx, donationID)
}
