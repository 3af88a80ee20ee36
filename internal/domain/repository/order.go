package repository

import (
	"context"
	"time"

	"github.com/tgreer/familysite/internal/domain/model"
)

// OrderRepository describes persistence operations with orders. All status
// mutations are compare-and-set: the transition applies only if the row is
// still PENDING, and the boolean result reports whether this caller won.
type OrderRepository interface {
	// Create inserts a PENDING order, capturing current variant unit prices
	// into the line items.
	Create(ctx context.Context, userID int64, items []model.OrderItem) (*model.Order, error)
	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
	// MarkPaid attempts PENDING->PAID, re-validating stock for every line
	// item inside the same transaction. On insufficient stock the order
	// moves to REQUIRES_REFUND instead and no stock is decremented; the
	// transition still counts as applied. When the CAS is lost the returned
	// order carries the current terminal status.
	MarkPaid(ctx context.Context, orderID int64, paymentID, receiptURL string) (*model.Order, bool, error)
	// MarkCancelled attempts PENDING->CANCELLED. Stock is never touched
	// because it is only decremented on the paid transition.
	MarkCancelled(ctx context.Context, orderID int64) (*model.Order, bool, error)
	// StalePending lists ids of PENDING orders created before cutoff.
	StalePending(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)
}
