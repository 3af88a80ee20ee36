package usecase

import (
	"context"
	"errors"
	"log/slog"

	domainErrors "github.com/tgreer/familysite/internal/domain/errors"
	"github.com/tgreer/familysite/internal/domain/model"
	"github.com/tgreer/familysite/internal/domain/reference"
	"github.com/tgreer/familysite/internal/domain/repository"
)

// Outcome is the result of applying a payment event to the ledger. It is a
// value, not an error: every variant except a storage failure is a normal,
// expected reconciliation result.
type Outcome string

const (
	// OutcomeApplied means this caller won the compare-and-set and the
	// transition was durably recorded.
	OutcomeApplied Outcome = "applied"
	// OutcomeAlreadyApplied means the entity already carries the requested
	// terminal state; redundant webhook/confirm deliveries land here.
	OutcomeAlreadyApplied Outcome = "already_applied"
	// OutcomeConflict means the requested outcome contradicts an existing
	// terminal state. The ledger is never overwritten in this case.
	OutcomeConflict Outcome = "conflict"
	// OutcomeNotFound means no ledger row matches the reference.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeStockShort means the order was paid but stock ran out before
	// confirmation; the order is parked in REQUIRES_REFUND for an operator.
	OutcomeStockShort Outcome = "stock_short"
	// OutcomeUnrecognized means the reference string could not be decoded.
	OutcomeUnrecognized Outcome = "unrecognized"
)

// MetricsRecorder counts reconciliation outcomes for alerting.
type MetricsRecorder interface {
	ReconcileOutcome(kind, outcome string)
	StockShort()
}

// ReconcileUseCase applies processor payment outcomes to the ledger exactly
// once. The webhook ingress, the client confirm path, and the pending sweeper
// all converge here; races between them are settled by the repository-level
// compare-and-set, so the engine itself needs no locking.
type ReconcileUseCase struct {
	orders    repository.OrderRepository
	dues      repository.DuesRepository
	donations repository.DonationRepository
	metrics   MetricsRecorder
	logger    *slog.Logger
}

// NewReconcileUseCase constructs ReconcileUseCase.
func NewReconcileUseCase(
	orders repository.OrderRepository,
	dues repository.DuesRepository,
	donations repository.DonationRepository,
	metrics MetricsRecorder,
	logger *slog.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{orders: orders, dues: dues, donations: donations, metrics: metrics, logger: logger}
}

// ApplySuccess records a successful payment for the referenced entity.
// Calling it twice, or concurrently from the webhook and the confirm path,
// yields exactly one entity-level side effect.
func (u *ReconcileUseCase) ApplySuccess(ctx context.Context, ref reference.PaymentReference, paymentID, receiptURL string) (Outcome, error) {
	var (
		outcome Outcome
		err     error
	)

	switch ref.Kind {
	case reference.KindOrder:
		outcome, err = u.orderSuccess(ctx, ref.OrderID, paymentID, receiptURL)
	case reference.KindDuesBatch:
		outcome, err = u.batchSuccess(ctx, ref.BatchID, paymentID, receiptURL)
	case reference.KindDuesSingle:
		outcome, err = u.singleSuccess(ctx, ref.UserID, ref.Year, paymentID, receiptURL)
	case reference.KindDonation:
		outcome, err = u.donationSuccess(ctx, ref.DonationID, paymentID, receiptURL)
	default:
		outcome = OutcomeUnrecognized
	}

	u.record(ctx, ref, "success", outcome, err)
	return outcome, err
}

// ApplyFailure records a failed or cancelled payment. It never touches stock
// and never reverts a recorded success: a failure event arriving after a
// success is a Conflict, because the processor does not un-complete payments.
func (u *ReconcileUseCase) ApplyFailure(ctx context.Context, ref reference.PaymentReference) (Outcome, error) {
	var (
		outcome Outcome
		err     error
	)

	switch ref.Kind {
	case reference.KindOrder:
		outcome, err = u.orderFailure(ctx, ref.OrderID)
	case reference.KindDuesBatch:
		outcome, err = u.batchFailure(ctx, ref.BatchID)
	case reference.KindDuesSingle:
		outcome, err = u.singleFailure(ctx, ref.UserID, ref.Year)
	case reference.KindDonation:
		outcome, err = u.donationFailure(ctx, ref.DonationID)
	default:
		outcome = OutcomeUnrecognized
	}

	u.record(ctx, ref, "failure", outcome, err)
	return outcome, err
}

// ConfirmOrder is the client confirm path for orders. The caller must own
// the order. Returns the post-confirmation order state alongside the outcome.
func (u *ReconcileUseCase) ConfirmOrder(ctx context.Context, userID, orderID int64, paymentID, receiptURL string) (*model.Order, Outcome, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, OutcomeNotFound, err
	}
	if order.UserID != userID {
		return nil, OutcomeConflict, domainErrors.ErrForbidden
	}

	outcome, err := u.ApplySuccess(ctx, reference.Order(orderID), paymentID, receiptURL)
	if err != nil {
		return nil, outcome, err
	}

	order, err = u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, outcome, err
	}
	return order, outcome, nil
}

// ConfirmDuesBatch is the client confirm path for dues batches.
func (u *ReconcileUseCase) ConfirmDuesBatch(ctx context.Context, userID int64, batchID model.BatchID, paymentID, receiptURL string) (*model.DuesBatch, Outcome, error) {
	batch, err := u.dues.GetBatch(ctx, batchID)
	if err != nil {
		return nil, OutcomeNotFound, err
	}
	if batch.UserID != userID {
		return nil, OutcomeConflict, domainErrors.ErrForbidden
	}

	outcome, err := u.ApplySuccess(ctx, reference.DuesBatch(batchID), paymentID, receiptURL)
	if err != nil {
		return nil, outcome, err
	}

	batch, err = u.dues.GetBatch(ctx, batchID)
	if err != nil {
		return nil, outcome, err
	}
	return batch, outcome, nil
}

// ConfirmDonation is the client confirm path for donations. Donations can be
// guest-initiated, so no ownership check applies.
func (u *ReconcileUseCase) ConfirmDonation(ctx context.Context, donationID int64, paymentID, receiptURL string) (*model.Donation, Outcome, error) {
	outcome, err := u.ApplySuccess(ctx, reference.Donation(donationID), paymentID, receiptURL)
	if err != nil {
		return nil, outcome, err
	}
	if outcome == OutcomeNotFound {
		return nil, outcome, domainErrors.ErrNotFound
	}

	donation, err := u.donations.GetByID(ctx, donationID)
	if err != nil {
		return nil, outcome, err
	}
	return donation, outcome, nil
}

func (u *ReconcileUseCase) orderSuccess(ctx context.Context, orderID int64, paymentID, receiptURL string) (Outcome, error) {
	order, applied, err := u.orders.MarkPaid(ctx, orderID, paymentID, receiptURL)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return OutcomeNotFound, nil
		}
		return "", err
	}
	if applied {
		if order.Status == model.OrderStatusRequiresRefund {
			return OutcomeStockShort, nil
		}
		return OutcomeApplied, nil
	}
	switch order.Status {
	case model.OrderStatusPaid, model.OrderStatusFulfilled, model.OrderStatusRequiresRefund:
		// REQUIRES_REFUND is what this same success event produces on a stock
		// shortage, so a redelivery is redundant, not contradictory.
		return OutcomeAlreadyApplied, nil
	default:
		return OutcomeConflict, nil
	}
}

func (u *ReconcileUseCase) orderFailure(ctx context.Context, orderID int64) (Outcome, error) {
	order, applied, err := u.orders.MarkCancelled(ctx, orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return OutcomeNotFound, nil
		}
		return "", err
	}
	if applied {
		return OutcomeApplied, nil
	}
	if order.Status == model.OrderStatusCancelled {
		return OutcomeAlreadyApplied, nil
	}
	return OutcomeConflict, nil
}

func (u *ReconcileUseCase) batchSuccess(ctx context.Context, batchID model.BatchID, paymentID, receiptURL string) (Outcome, error) {
	batch, applied, err := u.dues.MarkBatchPaid(ctx, batchID, paymentID, receiptURL)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return OutcomeNotFound, nil
		}
		return "", err
	}
	if applied {
		return OutcomeApplied, nil
	}
	if batch.Status == model.BatchStatusPaid {
		return OutcomeAlreadyApplied, nil
	}
	return OutcomeConflict, nil
}

func (u *ReconcileUseCase) batchFailure(ctx context.Context, batchID model.BatchID) (Outcome, error) {
	batch, applied, err := u.dues.MarkBatchFailed(ctx, batchID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return OutcomeNotFound, nil
		}
		return "", err
	}
	if applied {
		return OutcomeApplied, nil
	}
	if batch.Status == model.BatchStatusFailed {
		return OutcomeAlreadyApplied, nil
	}
	return OutcomeConflict, nil
}

func (u *ReconcileUseCase) singleSuccess(ctx context.Context, userID int64, year int, paymentID, receiptURL string) (Outcome, error) {
	payment, applied, err := u.dues.CompleteSingle(ctx, userID, year, paymentID, receiptURL)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return OutcomeNotFound, nil
		}
		return "", err
	}
	if applied {
		return OutcomeApplied, nil
	}
	if payment.Status == model.DuesStatusCompleted {
		return OutcomeAlreadyApplied, nil
	}
	return OutcomeConflict, nil
}

func (u *ReconcileUseCase) singleFailure(ctx context.Context, userID int64, year int) (Outcome, error) {
	payment, applied, err := u.dues.FailSingle(ctx, userID, year)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return OutcomeNotFound, nil
		}
		return "", err
	}
	if applied {
		return OutcomeApplied, nil
	}
	if payment.Status == model.DuesStatusFailed {
		return OutcomeAlreadyApplied, nil
	}
	return OutcomeConflict, nil
}

func (u *ReconcileUseCase) donationSuccess(ctx context.Context, donationID int64, paymentID, receiptURL string) (Outcome, error) {
	donation, applied, err := u.donations.Complete(ctx, donationID, paymentID, receiptURL)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return OutcomeNotFound, nil
		}
		return "", err
	}
	if applied {
		return OutcomeApplied, nil
	}
	if donation.Status == model.DonationStatusCompleted {
		return OutcomeAlreadyApplied, nil
	}
	return OutcomeConflict, nil
}

func (u *ReconcileUseCase) donationFailure(ctx context.Context, donationID int64) (Outcome, error) {
	donation, applied, err := u.donations.Fail(ctx, donationID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return OutcomeNotFound, nil
		}
		return "", err
	}
	if applied {
		return OutcomeApplied, nil
	}
	if donation.Status == model.DonationStatusFailed {
		return OutcomeAlreadyApplied, nil
	}
	return OutcomeConflict, nil
}

func (u *ReconcileUseCase) record(ctx context.Context, ref reference.PaymentReference, direction string, outcome Outcome, err error) {
	if err != nil {
		u.logger.ErrorContext(ctx, "reconcile failed",
			slog.String("reference", ref.Raw),
			slog.String("direction", direction),
			slog.String("error", err.Error()),
		)
		return
	}

	if u.metrics != nil {
		u.metrics.ReconcileOutcome(string(ref.Kind), string(outcome))
		if outcome == OutcomeStockShort {
			u.metrics.StockShort()
		}
	}

	attrs := []any{
		slog.String("reference", ref.Raw),
		slog.String("direction", direction),
		slog.String("outcome", string(outcome)),
	}
	switch outcome {
	case OutcomeConflict:
		u.logger.WarnContext(ctx, "reconcile conflict ignored", attrs...)
	case OutcomeStockShort:
		u.logger.WarnContext(ctx, "stock ran short at confirmation, order flagged for refund", attrs...)
	case OutcomeUnrecognized:
		u.logger.WarnContext(ctx, "unrecognized payment reference", attrs...)
	default:
		u.logger.InfoContext(ctx, "reconcile outcome", attrs...)
	}
}
