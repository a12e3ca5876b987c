package usecase

import (
	"context"
	"errors"
	"log/slog"

	domainErrors "github.com/pixlabs/rifamart/internal/domain/errors"
	"github.com/pixlabs/rifamart/internal/domain/model"
	"github.com/pixlabs/rifamart/internal/domain/repository"
)

// ReconcileUseCase turns gateway notifications into settled transactions.
type ReconcileUseCase struct {
	transactions repository.TransactionRepository
	logger       *slog.Logger
}

// NewReconcileUseCase constructs ReconcileUseCase.
func NewReconcileUseCase(transactions repository.TransactionRepository, logger *slog.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{transactions: transactions, logger: logger}
}

// ProcessNotification normalizes and settles a raw webhook body. A nil
// settlement with nil error means the notification was a no-op (unparsable,
// not settled, or referencing nothing we know). Errors are persistence
// failures; callers acknowledge the gateway regardless.
func (u *ReconcileUseCase) ProcessNotification(ctx context.Context, body []byte) (*model.Settlement, error) {
	n := NormalizeNotification(body)

	if !n.Identifiable() {
		u.logger.Info("notification carries no usable reference")
		return nil, nil
	}

	if !n.Paid {
		u.logger.Info("notification status not settled, ignoring",
			slog.String("gateway_id", n.GatewayID),
			slog.String("order_code", n.OrderCode),
		)
		return nil, nil
	}

	settlement, err := u.transactions.Settle(ctx, n)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("notification references unknown transaction and order",
				slog.String("gateway_id", n.GatewayID),
				slog.String("order_code", n.OrderCode),
			)
			return nil, nil
		}
		return nil, err
	}

	return settlement, nil
}

// SettleCharge applies a gateway-confirmed charge through the same settlement
// path as a webhook. Used by the expiry sweep when it finds a paid charge for
// a still-pending order.
func (u *ReconcileUseCase) SettleCharge(ctx context.Context, order model.Order, charge *model.Charge) (*model.Settlement, error) {
	n := model.Notification{
		GatewayID: charge.GatewayID,
		OrderCode: order.Code,
		PaidValue: charge.Value,
		Paid:      true,
	}
	return u.transactions.Settle(ctx, n)
}
