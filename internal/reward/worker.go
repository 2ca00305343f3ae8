package reward

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"

	"blockfunders/internal/logger"
)

// Each job gets this long end to end; the per-call timeouts inside the
// client are tighter.
const jobTimeout = 5 * time.Minute

// Worker runs reward jobs on a bounded goroutine pool so slow or failing
// third-party calls can never stall the funding response path.
type Worker struct {
	pool      *ants.Pool
	generator *Generator
	baseCtx   context.Context
	cancel    context.CancelFunc
}

// NewWorker creates a pool of the given size.
func NewWorker(size int, generator *Generator) (*Worker, error) {
	// Nonblocking: when the pool is saturated the job is dropped with a
	// log line rather than blocking a request goroutine.
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		pool:      pool,
		generator: generator,
		baseCtx:   ctx,
		cancel:    cancel,
	}, nil
}

// Dispatch schedules reward generation for a qualifying donation. It
// returns immediately; failures end in the log, never in the funding
// response.
func (w *Worker) Dispatch(userID, campaignID uint, amount decimal.Decimal) {
	err := w.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(w.baseCtx, jobTimeout)
		defer cancel()

		claim, err := w.generator.GenerateReward(ctx, userID, campaignID, amount)
		if err != nil {
			logger.Error("reward generation for user %d campaign %d failed: %v", userID, campaignID, err)
			return
		}
		logger.Info("reward claim %d created for user %d campaign %d", claim.ID, userID, campaignID)
	})
	if err != nil {
		logger.Warn("reward pool saturated, dropping job for user %d campaign %d: %v", userID, campaignID, err)
	}
}

// Shutdown cancels in-flight jobs and releases the pool.
func (w *Worker) Shutdown() {
	w.cancel()
	w.pool.Release()
}
