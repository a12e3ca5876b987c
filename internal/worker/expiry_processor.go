package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pixlabs/rifamart/internal/adapter/gateway"
	domainErrors "github.com/pixlabs/rifamart/internal/domain/errors"
	"github.com/pixlabs/rifamart/internal/domain/model"
)

// RaffleFacade exposes the subset of application functionality required by the worker.
type RaffleFacade interface {
	StaleOrders(ctx context.Context, limit int) ([]model.Order, error)
	LatestTransaction(ctx context.Context, orderID int64) (*model.Transaction, error)
	CheckCharge(ctx context.Context, gatewayID string) (*model.Charge, error)
	SettleCharge(ctx context.Context, order model.Order, charge *model.Charge) error
	CancelOrder(ctx context.Context, orderID int64) (bool, error)
}

// ExpiryProcessor sweeps stale pending orders concurrently. A charge the
// gateway reports as paid is settled instead of canceled, which heals orders
// whose webhook was lost.
type ExpiryProcessor struct {
	facade       RaffleFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewExpiryProcessor constructs the expiry worker pool.
func NewExpiryProcessor(facade RaffleFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *ExpiryProcessor {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &ExpiryProcessor{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background processing.
func (p *ExpiryProcessor) Start(ctx context.Context) {
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
func (p *ExpiryProcessor) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *ExpiryProcessor) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
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

func (p *ExpiryProcessor) fetchAndDispatch(ctx context.Context) {
	orders, err := p.facade.StaleOrders(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch stale orders failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- order:
		}
	}
}

func (p *ExpiryProcessor) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleOrder(ctx, order)
		}
	}
}

func (p *ExpiryProcessor) handleOrder(ctx context.Context, order model.Order) {
	trx, err := p.facade.LatestTransaction(ctx, order.ID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		p.logger.Error("load transaction failed", slog.String("order", order.Code), slog.String("error", err.Error()))
		return
	}

	if trx != nil {
		if trx.Status == model.TransactionStatusPaid {
			// A webhook beat the sweep; nothing to expire.
			return
		}
		if trx.GatewayID != "" {
			charge, err := p.facade.CheckCharge(ctx, trx.GatewayID)
			if err != nil {
				switch e := err.(type) {
				case gateway.TooManyRequestsError:
					p.logger.Warn("gateway rate limited", slog.Duration("retry_after", e.RetryAfter))
					time.Sleep(e.RetryAfter)
					return
				default:
					if !errors.Is(err, gateway.ErrChargeNotFound) {
						p.logger.Error("charge check failed", slog.String("order", order.Code), slog.String("error", err.Error()))
						return
					}
				}
			}
			if charge != nil && charge.Paid() {
				if err := p.facade.SettleCharge(ctx, order, charge); err != nil {
					p.logger.Error("settle from charge failed", slog.String("order", order.Code), slog.String("error", err.Error()))
				}
				return
			}
		}
	}

	canceled, err := p.facade.CancelOrder(ctx, order.ID)
	if err != nil {
		p.logger.Error("cancel order failed", slog.String("order", order.Code), slog.String("error", err.Error()))
		return
	}
	if canceled {
		p.logger.Info("order expired", slog.String("order", order.Code))
	}
}
