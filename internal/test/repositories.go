package test

import (
	"context"
	"time"

	domainErrors "github.com/pixlabs/rifamart/internal/domain/errors"
	"github.com/pixlabs/rifamart/internal/domain/model"
	"github.com/pixlabs/rifamart/internal/domain/repository"
)

var (
	_ repository.OrderRepository       = (*OrderRepositoryStub)(nil)
	_ repository.TransactionRepository = (*TransactionRepositoryStub)(nil)
)

// OrderRepositoryStub stores orders in-memory for tests.
type OrderRepositoryStub struct {
	Orders map[int64]*model.Order
	ByCode map[string]*model.Order
	Next   int64
	Err    error
}

// NewOrderRepositoryStub constructs stub repository with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		Orders: make(map[int64]*model.Order),
		ByCode: make(map[string]*model.Order),
		Next:   1,
	}
}

// Create registers a new pending order.
func (s *OrderRepositoryStub) Create(ctx context.Context, draft model.OrderDraft) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	order := &model.Order{
		ID:        s.Next,
		Code:      draft.Code,
		Buyer:     draft.Buyer,
		Tracking:  draft.Tracking,
		Amount:    draft.Amount,
		Quantity:  draft.Quantity,
		Status:    model.OrderStatusPending,
		EventID:   draft.EventID,
		CreatedAt: time.Now(),
	}
	s.Next++
	s.Orders[order.ID] = order
	s.ByCode[order.Code] = order
	return order, nil
}

// GetByID fetches order by identifier or returns not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if order, ok := s.Orders[id]; ok {
		return order, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByCode fetches order by code or returns not found.
func (s *OrderRepositoryStub) GetByCode(ctx context.Context, code string) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if order, ok := s.ByCode[code]; ok {
		return order, nil
	}
	return nil, domainErrors.ErrNotFound
}

// SelectStalePending lists pending orders created before the cutoff.
func (s *OrderRepositoryStub) SelectStalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Order
	for _, order := range s.Orders {
		if order.Status == model.OrderStatusPending && order.CreatedAt.Before(olderThan) {
			result = append(result, *order)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// Cancel flips a pending order to canceled.
func (s *OrderRepositoryStub) Cancel(ctx context.Context, orderID int64) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	order, ok := s.Orders[orderID]
	if !ok || order.Status != model.OrderStatusPending {
		return false, nil
	}
	order.Status = model.OrderStatusCanceled
	return true, nil
}

// TransactionRepositoryStub stores transactions in-memory for tests.
type TransactionRepositoryStub struct {
	Transactions map[int64]*model.Transaction
	Next         int64
	Err          error

	SettleFn  func(context.Context, model.Notification) (*model.Settlement, error)
	Settled   []model.Notification
	Recorded  []model.ConversionMeta
	RecordErr error
}

// NewTransactionRepositoryStub constructs stub repository with initialized maps.
func NewTransactionRepositoryStub() *TransactionRepositoryStub {
	return &TransactionRepositoryStub{
		Transactions: make(map[int64]*model.Transaction),
		Next:         1,
	}
}

// Create registers a new pending transaction.
func (s *TransactionRepositoryStub) Create(ctx context.Context, orderID int64, value float64, gatewayID string) (*model.Transaction, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	trx := &model.Transaction{
		ID:        s.Next,
		OrderID:   orderID,
		Value:     value,
		Status:    model.TransactionStatusPending,
		GatewayID: gatewayID,
		CreatedAt: time.Now(),
	}
	s.Next++
	s.Transactions[trx.ID] = trx
	return trx, nil
}

// LatestByOrder returns the most recent transaction of an order.
func (s *TransactionRepositoryStub) LatestByOrder(ctx context.Context, orderID int64) (*model.Transaction, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var latest *model.Transaction
	for _, trx := range s.Transactions {
		if trx.OrderID != orderID {
			continue
		}
		if latest == nil || trx.CreatedAt.After(latest.CreatedAt) || trx.ID > latest.ID {
			latest = trx
		}
	}
	if latest == nil {
		return nil, domainErrors.ErrNotFound
	}
	return latest, nil
}

// PaidByOrder returns the paid transaction of an order.
func (s *TransactionRepositoryStub) PaidByOrder(ctx context.Context, orderID int64) (*model.Transaction, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, trx := range s.Transactions {
		if trx.OrderID == orderID && trx.Status == model.TransactionStatusPaid {
			return trx, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// Settle records the notification and delegates to the configured function.
func (s *TransactionRepositoryStub) Settle(ctx context.Context, n model.Notification) (*model.Settlement, error) {
	s.Settled = append(s.Settled, n)
	if s.SettleFn != nil {
		return s.SettleFn(ctx, n)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return nil, domainErrors.ErrNotFound
}

// RecordConversionAttempt keeps the bookkeeping writes for assertions.
func (s *TransactionRepositoryStub) RecordConversionAttempt(ctx context.Context, transactionID int64, meta model.ConversionMeta) error {
	if s.RecordErr != nil {
		return s.RecordErr
	}
	s.Recorded = append(s.Recorded, meta)
	if trx, ok := s.Transactions[transactionID]; ok && !trx.Conversion.Sent() {
		trx.Conversion = meta
	}
	return nil
}
