package repository

import (
	"context"
	"time"

	"github.com/tgreer/familysite/internal/domain/model"
)

// DuesRepository describes persistence operations with dues batches and
// individual dues payments.
type DuesRepository interface {
	// CreateBatch inserts the batch and all constituent payments in one
	// transaction so a batch can never exist without its payments.
	CreateBatch(ctx context.Context, batch *model.DuesBatch, payments []model.DuesPayment) (*model.DuesBatch, error)
	GetBatch(ctx context.Context, batchID model.BatchID) (*model.DuesBatch, error)
	// MarkBatchPaid attempts PENDING->PAID on the batch row and moves every
	// constituent payment to COMPLETED with the same processor identifiers
	// in the same transaction.
	MarkBatchPaid(ctx context.Context, batchID model.BatchID, paymentID, receiptURL string) (*model.DuesBatch, bool, error)
	// MarkBatchFailed attempts PENDING->FAILED on the batch and all
	// constituents in one transaction.
	MarkBatchFailed(ctx context.Context, batchID model.BatchID) (*model.DuesBatch, bool, error)

	// GetSingle finds the self-payment for (userID, year); legacy payment
	// links reference dues rows this way.
	GetSingle(ctx context.Context, userID int64, year int) (*model.DuesPayment, error)
	// CompleteSingle attempts PENDING->COMPLETED on a legacy single payment.
	CompleteSingle(ctx context.Context, userID int64, year int, paymentID, receiptURL string) (*model.DuesPayment, bool, error)
	// FailSingle attempts PENDING->FAILED on a legacy single payment.
	FailSingle(ctx context.Context, userID int64, year int) (*model.DuesPayment, bool, error)

	// RecordManual inserts an admin-recorded payment directly in COMPLETED;
	// the processor is never involved.
	RecordManual(ctx context.Context, payment model.DuesPayment) (*model.DuesPayment, error)
	ListByYear(ctx context.Context, year int) ([]model.DuesPayment, error)
	// StalePendingBatches lists ids of PENDING batches created before cutoff.
	StalePendingBatches(ctx context.Context, cutoff time.Time, limit int) ([]model.BatchID, error)
}
