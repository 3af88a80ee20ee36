package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DonationStatus describes the payment lifecycle of a donation.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "PENDING"
	DonationStatusCompleted DonationStatus = "COMPLETED"
	DonationStatusFailed    DonationStatus = "FAILED"
)

// Donation is a one-off contribution from a member or a guest. UserID is nil
// for guest donations, in which case DonorName/DonorEmail identify the donor.
type Donation struct {
	ID              int64
	UserID          *int64
	DonorName       string
	DonorEmail      string
	Amount          decimal.Decimal
	Note            string
	Year            *int
	Status          DonationStatus
	SquarePaymentID string
	ReceiptURL      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
