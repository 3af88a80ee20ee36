package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tgreer/familysite/internal/domain/reference"
	"github.com/tgreer/familysite/internal/usecase"
)

// PaymentsFacade exposes the subset of application functionality required by the sweeper.
type PaymentsFacade interface {
	StalePending(ctx context.Context, cutoff time.Time, limit int) ([]reference.PaymentReference, error)
	ApplyFailure(ctx context.Context, ref reference.PaymentReference) (usecase.Outcome, error)
}

// PendingSweeper expires abandoned PENDING rows. Clients that never return
// from the payment page leave orders, batches, and donations stranded; the
// sweeper feeds their references through the same engine failure path the
// webhook uses, so a late COMPLETED webhook still loses cleanly via CAS.
type PendingSweeper struct {
	facade     PaymentsFacade
	interval   time.Duration
	pendingTTL time.Duration
	batchSize  int
	workers    int
	logger     *slog.Logger

	jobs   chan reference.PaymentReference
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPendingSweeper constructs the sweeper worker pool.
func NewPendingSweeper(facade PaymentsFacade, interval, pendingTTL time.Duration, batchSize, workers int, logger *slog.Logger) *PendingSweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PendingSweeper{
		facade:     facade,
		interval:   interval,
		pendingTTL: pendingTTL,
		batchSize:  batchSize,
		workers:    workers,
		logger:     logger,
		jobs:       make(chan reference.PaymentReference, batchSize*workers),
	}
}

// Start launches background sweeping.
func (p *PendingSweeper) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *PendingSweeper) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PendingSweeper) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *PendingSweeper) fetchAndDispatch(ctx context.Context) {
	cutoff := time.Now().Add(-p.pendingTTL)
	refs, err := p.facade.StalePending(ctx, cutoff, p.batchSize)
	if err != nil {
		p.logger.Error("fetch stale pending rows failed", slog.String("error", err.Error()))
		return
	}
	for _, ref := range refs {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- ref:
		}
	}
}

func (p *PendingSweeper) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ref, ok := <-p.jobs:
			if !ok {
				return
			}
			p.expire(ctx, ref)
		}
	}
}

func (p *PendingSweeper) expire(ctx context.Context, ref reference.PaymentReference) {
	outcome, err := p.facade.ApplyFailure(ctx, ref)
	if err != nil {
		p.logger.Error("expire pending payment failed",
			slog.String("reference", ref.Raw),
			slog.String("error", err.Error()),
		)
		return
	}
	// A lost CAS here means a success landed between selection and expiry.
	// That is the desired resolution, not an error.
	p.logger.Info("stale pending payment swept",
		slog.String("reference", ref.Raw),
		slog.String("outcome", string(outcome)),
	)
}
