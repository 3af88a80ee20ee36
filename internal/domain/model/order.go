package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes the payment lifecycle of a store order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusFulfilled      OrderStatus = "FULFILLED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusRequiresRefund OrderStatus = "REQUIRES_REFUND"
)

// Order describes a merchandise order placed by a member.
type Order struct {
	ID              int64
	UserID          int64
	Status          OrderStatus
	SquarePaymentID string
	ReceiptURL      string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is a line item with the unit price captured at order time.
type OrderItem struct {
	VariantID int64
	Quantity  int32
	UnitPrice decimal.Decimal
}

// Total sums quantity times captured unit price over all items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ProductVariant is a sellable variant with live stock count.
type ProductVariant struct {
	ID        int64
	Product   string
	Label     string
	UnitPrice decimal.Decimal
	Stock     int32
}
