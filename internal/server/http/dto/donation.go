package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDonationRequest describes a member or guest donation.
type CreateDonationRequest struct {
	DonorName  string          `json:"donor_name"`
	DonorEmail string          `json:"donor_email"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
	Year       *int            `json:"year,omitempty"`
}

// DonationResponse describes a donation for API consumers.
type DonationResponse struct {
	ID         int64           `json:"id"`
	DonorName  string          `json:"donor_name"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	Reference  string          `json:"reference,omitempty"`
	ReceiptURL string          `json:"receipt_url,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ConfirmDonationResponse pairs the reconciliation outcome with the donation.
type ConfirmDonationResponse struct {
	Outcome  string           `json:"outcome"`
	Error    string           `json:"error,omitempty"`
	Donation DonationResponse `json:"donation"`
}
