package repository

import (
	"context"
	"time"

	"github.com/tgreer/familysite/internal/domain/model"
)

// DonationRepository describes persistence operations with donations.
type DonationRepository interface {
	Create(ctx context.Context, donation *model.Donation) (*model.Donation, error)
	GetByID(ctx context.Context, donationID int64) (*model.Donation, error)
	// Complete attempts PENDING->COMPLETED.
	Complete(ctx context.Context, donationID int64, paymentID, receiptURL string) (*model.Donation, bool, error)
	// Fail attempts PENDING->FAILED.
	Fail(ctx context.Context, donationID int64) (*model.Donation, bool, error)
	// StalePending lists ids of PENDING donations created before cutoff.
	StalePending(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)
}
