package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest is one line of a checkout request.
type OrderItemRequest struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int32 `json:"quantity"`
}

// CreateOrderRequest describes the checkout payload for merch orders.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// ConfirmRequest carries the processor payment details the client saw after
// the redirect. Shared by order, dues batch, and donation confirm endpoints.
type ConfirmRequest struct {
	PaymentID  string `json:"payment_id"`
	ReceiptURL string `json:"receipt_url"`
}

// OrderItemResponse echoes one order line with the captured unit price.
type OrderItemResponse struct {
	VariantID int64           `json:"variant_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderResponse describes an order for API consumers.
type OrderResponse struct {
	ID         int64               `json:"id"`
	Status     string              `json:"status"`
	Reference  string              `json:"reference,omitempty"`
	Total      decimal.Decimal     `json:"total"`
	Items      []OrderItemResponse `json:"items"`
	ReceiptURL string              `json:"receipt_url,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// ConfirmOrderResponse pairs the reconciliation outcome with the resulting
// order state. Error carries the reason for non-applied outcomes.
type ConfirmOrderResponse struct {
	Outcome string        `json:"outcome"`
	Error   string        `json:"error,omitempty"`
	Order   OrderResponse `json:"order"`
}
