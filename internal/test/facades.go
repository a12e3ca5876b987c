package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pixlabs/rifamart/internal/domain/model"
)

// RaffleFacadeStub provides controllable behaviour for HTTP handler tests.
type RaffleFacadeStub struct {
	CreateFn func(context.Context, model.Buyer, model.Tracking, int) (*model.Order, *model.Charge, error)
	StatusFn func(context.Context, int64) (*model.Order, error)
	HandleFn func(context.Context, []byte)
	AuthFn   func(string) (string, error)
	ParseFn  func(string) (string, error)
	RetryFn  func(context.Context, int64) (model.DispatchOutcome, model.ConversionMeta, error)
}

// CreateOrder delegates to provided function or returns a default order.
func (s RaffleFacadeStub) CreateOrder(ctx context.Context, buyer model.Buyer, tracking model.Tracking, quantity int) (*model.Order, *model.Charge, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, buyer, tracking, quantity)
	}
	order := &model.Order{ID: 1, Code: "order-code", Buyer: buyer, Tracking: tracking, Quantity: quantity, Amount: 29.70, Status: model.OrderStatusPending}
	return order, &model.Charge{GatewayID: "GW-1", EMV: "pix-emv-code", Status: "pending"}, nil
}

// OrderStatus returns the configured order.
func (s RaffleFacadeStub) OrderStatus(ctx context.Context, orderID int64) (*model.Order, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, Code: "order-code", Status: model.OrderStatusPending, CreatedAt: time.Unix(0, 0)}, nil
}

// HandleNotification records or delegates webhook processing.
func (s RaffleFacadeStub) HandleNotification(ctx context.Context, body []byte) {
	if s.HandleFn != nil {
		s.HandleFn(ctx, body)
	}
}

// Authenticate delegates or returns a default token.
func (s RaffleFacadeStub) Authenticate(password string) (string, error) {
	if s.AuthFn != nil {
		return s.AuthFn(password)
	}
	return "operator-token", nil
}

// ParseToken delegates or accepts any token as admin.
func (s RaffleFacadeStub) ParseToken(token string) (string, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return "admin", nil
}

// RetryConversion delegates or reports a successful send.
func (s RaffleFacadeStub) RetryConversion(ctx context.Context, orderID int64) (model.DispatchOutcome, model.ConversionMeta, error) {
	if s.RetryFn != nil {
		return s.RetryFn(ctx, orderID)
	}
	return model.DispatchSent, model.ConversionMeta{Attempts: 1}, nil
}

// WorkerFacadeStub mimics worker interactions with the raffle facade.
type WorkerFacadeStub struct {
	Batches  [][]model.Order
	StaleFn  func(context.Context, int) ([]model.Order, error)
	LatestFn func(context.Context, int64) (*model.Transaction, error)
	CheckFn  func(context.Context, string) (*model.Charge, error)
	SettleFn func(context.Context, model.Order, *model.Charge) error
	CancelFn func(context.Context, int64) (bool, error)

	mu             sync.Mutex
	Canceled       []int64
	Settled        []int64
	staleCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// StaleOrders returns batches from the configured queue.
func (s *WorkerFacadeStub) StaleOrders(ctx context.Context, limit int) ([]model.Order, error) {
	if s.StaleFn != nil {
		return s.StaleFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.staleCallCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// LatestTransaction returns the configured transaction.
func (s *WorkerFacadeStub) LatestTransaction(ctx context.Context, orderID int64) (*model.Transaction, error) {
	if s.LatestFn != nil {
		return s.LatestFn(ctx, orderID)
	}
	return &model.Transaction{ID: 1, OrderID: orderID, Status: model.TransactionStatusPending, GatewayID: "GW-1"}, nil
}

// CheckCharge returns the configured charge state.
func (s *WorkerFacadeStub) CheckCharge(ctx context.Context, gatewayID string) (*model.Charge, error) {
	if s.CheckFn != nil {
		return s.CheckFn(ctx, gatewayID)
	}
	return &model.Charge{GatewayID: gatewayID, Status: "pending"}, nil
}

// SettleCharge records settled orders.
func (s *WorkerFacadeStub) SettleCharge(ctx context.Context, order model.Order, charge *model.Charge) error {
	if s.SettleFn != nil {
		return s.SettleFn(ctx, order, charge)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Settled = append(s.Settled, order.ID)
	return nil
}

// CancelOrder records canceled orders.
func (s *WorkerFacadeStub) CancelOrder(ctx context.Context, orderID int64) (bool, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Canceled = append(s.Canceled, orderID)
	return true, nil
}
