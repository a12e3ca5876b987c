package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/pixlabs/rifamart/internal/config"
	"github.com/pixlabs/rifamart/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newCheckoutUseCase,
	NewReconcileUseCase,
	NewConversionUseCase,
)

type checkoutParams struct {
	fx.In

	Orders       repository.OrderRepository
	Transactions repository.TransactionRepository
	Gateway      PixGateway
	Config       *config.Config
	Logger       *slog.Logger
}

func newCheckoutUseCase(p checkoutParams) *CheckoutUseCase {
	return NewCheckoutUseCase(p.Orders, p.Transactions, p.Gateway, p.Config.EntryPrice, p.Logger)
}
