package usecase

import (
	"context"
	"time"

	domainErrors "github.com/pixlabs/rifamart/internal/domain/errors"
	"github.com/pixlabs/rifamart/internal/domain/model"
)

type stubOrderRepo struct {
	CreateFn  func(context.Context, model.OrderDraft) (*model.Order, error)
	GetByIDFn func(context.Context, int64) (*model.Order, error)
}

func (s *stubOrderRepo) Create(ctx context.Context, draft model.OrderDraft) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, draft)
	}
	return &model.Order{
		ID:        1,
		Code:      draft.Code,
		Buyer:     draft.Buyer,
		Tracking:  draft.Tracking,
		Amount:    draft.Amount,
		Quantity:  draft.Quantity,
		Status:    model.OrderStatusPending,
		EventID:   draft.EventID,
		CreatedAt: time.Unix(0, 0),
	}, nil
}

func (s *stubOrderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	return &model.Order{ID: id, Code: "order-code", Status: model.OrderStatusPaid, EventID: "evt-1"}, nil
}

func (s *stubOrderRepo) GetByCode(ctx context.Context, code string) (*model.Order, error) {
	return nil, domainErrors.ErrNotFound
}

func (s *stubOrderRepo) SelectStalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error) {
	return nil, nil
}

func (s *stubOrderRepo) Cancel(ctx context.Context, orderID int64) (bool, error) {
	return false, nil
}

type stubTransactionRepo struct {
	CreateFn func(context.Context, int64, float64, string) (*model.Transaction, error)
	PaidFn   func(context.Context, int64) (*model.Transaction, error)
	SettleFn func(context.Context, model.Notification) (*model.Settlement, error)
	RecordFn func(context.Context, int64, model.ConversionMeta) error

	Settled  []model.Notification
	Recorded []model.ConversionMeta
}

func (s *stubTransactionRepo) Create(ctx context.Context, orderID int64, value float64, gatewayID string) (*model.Transaction, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, orderID, value, gatewayID)
	}
	return &model.Transaction{ID: 1, OrderID: orderID, Value: value, Status: model.TransactionStatusPending, GatewayID: gatewayID}, nil
}

func (s *stubTransactionRepo) LatestByOrder(ctx context.Context, orderID int64) (*model.Transaction, error) {
	return nil, domainErrors.ErrNotFound
}

func (s *stubTransactionRepo) PaidByOrder(ctx context.Context, orderID int64) (*model.Transaction, error) {
	if s.PaidFn != nil {
		return s.PaidFn(ctx, orderID)
	}
	return &model.Transaction{ID: 7, OrderID: orderID, Value: 29.70, Status: model.TransactionStatusPaid, GatewayID: "GW-1"}, nil
}

func (s *stubTransactionRepo) Settle(ctx context.Context, n model.Notification) (*model.Settlement, error) {
	s.Settled = append(s.Settled, n)
	if s.SettleFn != nil {
		return s.SettleFn(ctx, n)
	}
	trx := &model.Transaction{ID: 7, OrderID: 1, Value: 29.70, Status: model.TransactionStatusPaid, GatewayID: n.GatewayID}
	order := &model.Order{ID: 1, Code: n.OrderCode, Status: model.OrderStatusPaid, EventID: "evt-1"}
	return &model.Settlement{Transaction: trx, Order: order, FirstTimePaid: true}, nil
}

func (s *stubTransactionRepo) RecordConversionAttempt(ctx context.Context, transactionID int64, meta model.ConversionMeta) error {
	s.Recorded = append(s.Recorded, meta)
	if s.RecordFn != nil {
		return s.RecordFn(ctx, transactionID, meta)
	}
	return nil
}

type stubGateway struct {
	CreateChargeFn func(context.Context, model.Order) (*model.Charge, error)
}

func (s *stubGateway) CreateCharge(ctx context.Context, order model.Order) (*model.Charge, error) {
	if s.CreateChargeFn != nil {
		return s.CreateChargeFn(ctx, order)
	}
	return &model.Charge{GatewayID: "GW-1", EMV: "pix-emv", Status: "pending"}, nil
}

type stubConversionClient struct {
	SendFn func(context.Context, model.ConversionEvent) (*model.ConversionResult, error)
	Events []model.ConversionEvent
}

func (s *stubConversionClient) Send(ctx context.Context, event model.ConversionEvent) (*model.ConversionResult, error) {
	s.Events = append(s.Events, event)
	if s.SendFn != nil {
		return s.SendFn(ctx, event)
	}
	return &model.ConversionResult{StatusCode: 200, Body: `{"events_received":1}`}, nil
}
