package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchID is the opaque token identifying a dues batch. It is attached to
// processor payment links, so it must never be a guessable surrogate key.
type BatchID string

func (id BatchID) String() string { return string(id) }

// BatchStatus describes the payment lifecycle of a dues batch.
type BatchStatus string

const (
	BatchStatusPending BatchStatus = "PENDING"
	BatchStatusPaid    BatchStatus = "PAID"
	BatchStatusFailed  BatchStatus = "FAILED"
)

// DuesBatch groups dues payments for several family members paid in one
// processor transaction. Its status is propagated to every constituent
// payment atomically.
type DuesBatch struct {
	ID              BatchID
	UserID          int64
	Year            int
	Status          BatchStatus
	SquarePaymentID string
	ReceiptURL      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DuesStatus describes the lifecycle of an individual dues payment.
type DuesStatus string

const (
	DuesStatusPending   DuesStatus = "PENDING"
	DuesStatusCompleted DuesStatus = "COMPLETED"
	DuesStatusFailed    DuesStatus = "FAILED"
)

// PaymentMethod records how a dues payment was collected.
type PaymentMethod string

const (
	// PaymentMethodSquare marks payments reconciled through the processor.
	PaymentMethodSquare PaymentMethod = "square"
	// PaymentMethodManual marks payments recorded by an admin (cash/check
	// from guests and elders); these bypass the processor entirely.
	PaymentMethodManual PaymentMethod = "manual"
)

// DuesPayment is one person's reunion dues for one year. UserID is nil for
// manually recorded guest payments; BatchID is nil for legacy single
// payments and manual records.
type DuesPayment struct {
	ID              int64
	BatchID         *BatchID
	UserID          *int64
	MemberName      string
	Year            int
	Amount          decimal.Decimal
	Status          DuesStatus
	Method          PaymentMethod
	SquarePaymentID string
	ReceiptURL      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
