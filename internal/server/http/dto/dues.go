package dto

import "github.com/shopspring/decimal"

// BatchMemberRequest is one covered member in a dues batch. UserID is empty
// for relatives without an account.
type BatchMemberRequest struct {
	UserID *int64          `json:"user_id,omitempty"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateDuesBatchRequest describes a pay-for-many dues checkout.
type CreateDuesBatchRequest struct {
	Year    int                  `json:"year"`
	Members []BatchMemberRequest `json:"members"`
}

// DuesBatchResponse describes a dues batch for API consumers.
type DuesBatchResponse struct {
	BatchID    string `json:"batch_id"`
	Year       int    `json:"year"`
	Status     string `json:"status"`
	Reference  string `json:"reference,omitempty"`
	ReceiptURL string `json:"receipt_url,omitempty"`
}

// ConfirmDuesBatchResponse pairs the reconciliation outcome with the batch.
type ConfirmDuesBatchResponse struct {
	Outcome string            `json:"outcome"`
	Error   string            `json:"error,omitempty"`
	Batch   DuesBatchResponse `json:"batch"`
}

// DuesPaymentResponse is one row of the yearly dues roster.
type DuesPaymentResponse struct {
	ID         int64           `json:"id"`
	UserID     *int64          `json:"user_id,omitempty"`
	MemberName string          `json:"member_name"`
	Year       int             `json:"year"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	Method     string          `json:"method"`
}

// ManualDuesRequest records a cash or check payment collected offline.
type ManualDuesRequest struct {
	UserID     *int64          `json:"user_id,omitempty"`
	MemberName string          `json:"member_name"`
	Year       int             `json:"year"`
	Amount     decimal.Decimal `json:"amount"`
}
