package usecase

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/uuid"

	domainErrors "github.com/pixlabs/rifamart/internal/domain/errors"
	"github.com/pixlabs/rifamart/internal/domain/model"
	"github.com/pixlabs/rifamart/internal/domain/repository"
)

// PixGateway creates payment charges for new orders.
type PixGateway interface {
	CreateCharge(ctx context.Context, order model.Order) (*model.Charge, error)
}

// CheckoutUseCase encapsulates order creation and status polling.
type CheckoutUseCase struct {
	orders       repository.OrderRepository
	transactions repository.TransactionRepository
	gateway      PixGateway
	entryPrice   float64
	logger       *slog.Logger
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(orders repository.OrderRepository, transactions repository.TransactionRepository, gateway PixGateway, entryPrice float64, logger *slog.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{orders: orders, transactions: transactions, gateway: gateway, entryPrice: entryPrice, logger: logger}
}

// CreateOrder registers a new order, creates the PIX charge at the gateway
// and records the first payment transaction. A transaction write that fails
// after the charge exists is tolerated: the webhook resolver bootstraps the
// missing transaction when the payment notification arrives.
func (u *CheckoutUseCase) CreateOrder(ctx context.Context, buyer model.Buyer, tracking model.Tracking, quantity int) (*model.Order, *model.Charge, error) {
	if quantity <= 0 {
		return nil, nil, domainErrors.ErrInvalidQuantity
	}

	amount := math.Round(float64(quantity)*u.entryPrice*100) / 100
	if amount <= 0 {
		return nil, nil, domainErrors.ErrInvalidAmount
	}

	draft := model.OrderDraft{
		Code:     uuid.NewString(),
		Buyer:    buyer,
		Tracking: tracking,
		Amount:   amount,
		Quantity: quantity,
		EventID:  uuid.NewString(),
	}

	order, err := u.orders.Create(ctx, draft)
	if err != nil {
		return nil, nil, err
	}

	charge, err := u.gateway.CreateCharge(ctx, *order)
	if err != nil {
		return nil, nil, err
	}

	if _, err := u.transactions.Create(ctx, order.ID, amount, charge.GatewayID); err != nil {
		u.logger.Warn("transaction write failed after charge creation",
			slog.String("order", order.Code),
			slog.String("gateway_id", charge.GatewayID),
			slog.String("error", err.Error()),
		)
	}

	return order, charge, nil
}

// OrderStatus returns the order for customer polling.
func (u *CheckoutUseCase) OrderStatus(ctx context.Context, orderID int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, orderID)
}
