package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/tgreer/familysite/internal/domain/errors"
	"github.com/tgreer/familysite/internal/domain/model"
)

// OrderRepositoryStub is an in-memory order store with CAS semantics.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	nextID int64
	Orders map[int64]*model.Order
}

func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[int64]*model.Order)}
}

func (s *OrderRepositoryStub) Create(_ context.Context, userID int64, items []model.OrderItem) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	order := &model.Order{ID: s.nextID, UserID: userID, Status: model.OrderStatusPending, Items: items, CreatedAt: time.Now()}
	s.Orders[order.ID] = order
	return cloneOrder(order), nil
}

func (s *OrderRepositoryStub) GetByID(_ context.Context, orderID int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (s *OrderRepositoryStub) MarkPaid(_ context.Context, orderID int64, paymentID, receiptURL string) (*model.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, false, domainErrors.ErrNotFound
	}
	if order.Status != model.OrderStatusPending {
		return cloneOrder(order), false, nil
	}
	order.Status = model.OrderStatusPaid
	order.SquarePaymentID = paymentID
	order.ReceiptURL = receiptURL
	return cloneOrder(order), true, nil
}

func (s *OrderRepositoryStub) MarkCancelled(_ context.Context, orderID int64) (*model.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, false, domainErrors.ErrNotFound
	}
	if order.Status != model.OrderStatusPending {
		return cloneOrder(order), false, nil
	}
	order.Status = model.OrderStatusCancelled
	return cloneOrder(order), true, nil
}

func (s *OrderRepositoryStub) StalePending(_ context.Context, cutoff time.Time, limit int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for id, order := range s.Orders {
		if order.Status == model.OrderStatusPending && order.CreatedAt.Before(cutoff) && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func cloneOrder(order *model.Order) *model.Order {
	clone := *order
	clone.Items = append([]model.OrderItem(nil), order.Items...)
	return &clone
}

// DuesRepositoryStub is an in-memory dues store with CAS semantics and
// batch propagation.
type DuesRepositoryStub struct {
	mu       sync.Mutex
	nextID   int64
	Batches  map[model.BatchID]*model.DuesBatch
	Payments []*model.DuesPayment
}

func NewDuesRepositoryStub() *DuesRepositoryStub {
	return &DuesRepositoryStub{Batches: make(map[model.BatchID]*model.DuesBatch)}
}

func (s *DuesRepositoryStub) CreateBatch(_ context.Context, batch *model.DuesBatch, payments []model.DuesPayment) (*model.DuesBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Batches[batch.ID]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	stored := *batch
	stored.CreatedAt = time.Now()
	s.Batches[batch.ID] = &stored
	for _, payment := range payments {
		s.nextID++
		p := payment
		p.ID = s.nextID
		s.Payments = append(s.Payments, &p)
	}
	result := stored
	return &result, nil
}

func (s *DuesRepositoryStub) GetBatch(_ context.Context, batchID model.BatchID) (*model.DuesBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.Batches[batchID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	result := *batch
	return &result, nil
}

func (s *DuesRepositoryStub) MarkBatchPaid(_ context.Context, batchID model.BatchID, paymentID, receiptURL string) (*model.DuesBatch, bool, error) {
	return s.transition(batchID, model.BatchStatusPaid, model.DuesStatusCompleted, paymentID, receiptURL)
}

func (s *DuesRepositoryStub) MarkBatchFailed(_ context.Context, batchID model.BatchID) (*model.DuesBatch, bool, error) {
	return s.transition(batchID, model.BatchStatusFailed, model.DuesStatusFailed, "", "")
}

func (s *DuesRepositoryStub) transition(batchID model.BatchID, batchStatus model.BatchStatus, duesStatus model.DuesStatus, paymentID, receiptURL string) (*model.DuesBatch, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.Batches[batchID]
	if !ok {
		return nil, false, domainErrors.ErrNotFound
	}
	if batch.Status != model.BatchStatusPending {
		result := *batch
		return &result, false, nil
	}
	batch.Status = batchStatus
	batch.SquarePaymentID = paymentID
	batch.ReceiptURL = receiptURL
	for _, payment := range s.Payments {
		if payment.BatchID != nil && *payment.BatchID == batchID && payment.Status == model.DuesStatusPending {
			payment.Status = duesStatus
			payment.SquarePaymentID = paymentID
			payment.ReceiptURL = receiptURL
		}
	}
	result := *batch
	return &result, true, nil
}

func (s *DuesRepositoryStub) GetSingle(_ context.Context, userID int64, year int) (*model.DuesPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, payment := range s.Payments {
		if payment.UserID != nil && *payment.UserID == userID && payment.Year == year && payment.Method == model.PaymentMethodSquare {
			result := *payment
			return &result, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *DuesRepositoryStub) CompleteSingle(_ context.Context, userID int64, year int, paymentID, receiptURL string) (*model.DuesPayment, bool, error) {
	return s.transitionSingle(userID, year, model.DuesStatusCompleted, paymentID, receiptURL)
}

func (s *DuesRepositoryStub) FailSingle(_ context.Context, userID int64, year int) (*model.DuesPayment, bool, error) {
	return s.transitionSingle(userID, year, model.DuesStatusFailed, "", "")
}

func (s *DuesRepositoryStub) transitionSingle(userID int64, year int, status model.DuesStatus, paymentID, receiptURL string) (*model.DuesPayment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, payment := range s.Payments {
		if payment.UserID == nil || *payment.UserID != userID || payment.Year != year || payment.Method != model.PaymentMethodSquare {
			continue
		}
		if payment.Status != model.DuesStatusPending {
			result := *payment
			return &result, false, nil
		}
		payment.Status = status
		payment.SquarePaymentID = paymentID
		payment.ReceiptURL = receiptURL
		result := *payment
		return &result, true, nil
	}
	return nil, false, domainErrors.ErrNotFound
}

func (s *DuesRepositoryStub) RecordManual(_ context.Context, payment model.DuesPayment) (*model.DuesPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	payment.ID = s.nextID
	stored := payment
	s.Payments = append(s.Payments, &stored)
	return &payment, nil
}

func (s *DuesRepositoryStub) ListByYear(_ context.Context, year int) ([]model.DuesPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.DuesPayment
	for _, payment := range s.Payments {
		if payment.Year == year {
			result = append(result, *payment)
		}
	}
	return result, nil
}

func (s *DuesRepositoryStub) StalePendingBatches(_ context.Context, cutoff time.Time, limit int) ([]model.BatchID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []model.BatchID
	for id, batch := range s.Batches {
		if batch.Status == model.BatchStatusPending && batch.CreatedAt.Before(cutoff) && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// DonationRepositoryStub is an in-memory donation store with CAS semantics.
type DonationRepositoryStub struct {
	mu        sync.Mutex
	nextID    int64
	Donations map[int64]*model.Donation
}

func NewDonationRepositoryStub() *DonationRepositoryStub {
	return &DonationRepositoryStub{Donations: make(map[int64]*model.Donation)}
}

func (s *DonationRepositoryStub) Create(_ context.Context, donation *model.Donation) (*model.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	stored := *donation
	stored.ID = s.nextID
	stored.CreatedAt = time.Now()
	s.Donations[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (s *DonationRepositoryStub) GetByID(_ context.Context, donationID int64) (*model.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	donation, ok := s.Donations[donationID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	result := *donation
	return &result, nil
}

func (s *DonationRepositoryStub) Complete(_ context.Context, donationID int64, paymentID, receiptURL string) (*model.Donation, bool, error) {
	return s.transition(donationID, model.DonationStatusCompleted, paymentID, receiptURL)
}

func (s *DonationRepositoryStub) Fail(_ context.Context, donationID int64) (*model.Donation, bool, error) {
	return s.transition(donationID, model.DonationStatusFailed, "", "")
}

func (s *DonationRepositoryStub) transition(donationID int64, status model.DonationStatus, paymentID, receiptURL string) (*model.Donation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	donation, ok := s.Donations[donationID]
	if !ok {
		return nil, false, domainErrors.ErrNotFound
	}
	if donation.Status != model.DonationStatusPending {
		result := *donation
		return &result, false, nil
	}
	donation.Status = status
	donation.SquarePaymentID = paymentID
	donation.ReceiptURL = receiptURL
	result := *donation
	return &result, true, nil
}

func (s *DonationRepositoryStub) StalePending(_ context.Context, cutoff time.Time, limit int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for id, donation := range s.Donations {
		if donation.Status == model.DonationStatusPending && donation.CreatedAt.Before(cutoff) && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
