package usecase

import (
	"context"
	"time"

	"github.com/tgreer/familysite/internal/domain/reference"
	"github.com/tgreer/familysite/internal/domain/repository"
)

// SweepUseCase finds PENDING rows whose checkout was abandoned. The sweeper
// worker feeds the resulting references into ReconcileUseCase.ApplyFailure,
// so expiry rides the same compare-and-set as every other transition and can
// never clobber a payment that completes concurrently.
type SweepUseCase struct {
	orders    repository.OrderRepository
	dues      repository.DuesRepository
	donations repository.DonationRepository
}

// NewSweepUseCase constructs SweepUseCase.
func NewSweepUseCase(orders repository.OrderRepository, dues repository.DuesRepository, donations repository.DonationRepository) *SweepUseCase {
	return &SweepUseCase{orders: orders, dues: dues, donations: donations}
}

// StalePending returns references to PENDING entities created before cutoff,
// at most limit per entity kind.
func (u *SweepUseCase) StalePending(ctx context.Context, cutoff time.Time, limit int) ([]reference.PaymentReference, error) {
	var refs []reference.PaymentReference

	orderIDs, err := u.orders.StalePending(ctx, cutoff, limit)
	if err != nil {
		return nil, err
	}
	for _, id := range orderIDs {
		refs = append(refs, reference.Order(id))
	}

	batchIDs, err := u.dues.StalePendingBatches(ctx, cutoff, limit)
	if err != nil {
		return nil, err
	}
	for _, id := range batchIDs {
		refs = append(refs, reference.DuesBatch(id))
	}

	donationIDs, err := u.donations.StalePending(ctx, cutoff, limit)
	if err != nil {
		return nil, err
	}
	for _, id := range donationIDs {
		refs = append(refs, reference.Donation(id))
	}

	return refs, nil
}
