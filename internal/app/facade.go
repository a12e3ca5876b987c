package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/pixlabs/rifamart/internal/adapter/push"
	domainErrors "github.com/pixlabs/rifamart/internal/domain/errors"
	"github.com/pixlabs/rifamart/internal/domain/model"
	"github.com/pixlabs/rifamart/internal/domain/repository"
	pkgAuth "github.com/pixlabs/rifamart/internal/pkg/auth"
	"github.com/pixlabs/rifamart/internal/usecase"
)

// ChargeProvider exposes charge state lookups at the gateway.
type ChargeProvider interface {
	GetCharge(ctx context.Context, gatewayID string) (*model.Charge, error)
}

// operatorSubject is the only operator identity; the admin surface is
// single-tenant.
const operatorSubject = "admin"

// sideEffectTimeout bounds the detached push/conversion work spawned after a
// first-time settlement.
const sideEffectTimeout = 15 * time.Second

// RaffleFacade aggregates the application use cases behind one surface used
// by HTTP handlers and the expiry worker.
type RaffleFacade struct {
	checkout      *usecase.CheckoutUseCase
	reconcile     *usecase.ReconcileUseCase
	conversion    *usecase.ConversionUseCase
	orders        repository.OrderRepository
	transactions  repository.TransactionRepository
	charges       ChargeProvider
	notifier      push.Notifier
	tokens        pkgAuth.Strategy
	passwords     pkgAuth.PasswordHasher
	adminPassHash string
	orderTTL      time.Duration
	logger        *slog.Logger

	// async schedules detached side effects; replaced in tests.
	async func(fn func())
}

// FacadeDeps bundles the collaborators of the facade.
type FacadeDeps struct {
	Checkout      *usecase.CheckoutUseCase
	Reconcile     *usecase.ReconcileUseCase
	Conversion    *usecase.ConversionUseCase
	Orders        repository.OrderRepository
	Transactions  repository.TransactionRepository
	Charges       ChargeProvider
	Notifier      push.Notifier
	Tokens        pkgAuth.Strategy
	Passwords     pkgAuth.PasswordHasher
	AdminPassHash string
	OrderTTL      time.Duration
	Logger        *slog.Logger
}

// NewRaffleFacade constructs the facade.
func NewRaffleFacade(deps FacadeDeps) *RaffleFacade {
	return &RaffleFacade{
		checkout:      deps.Checkout,
		reconcile:     deps.Reconcile,
		conversion:    deps.Conversion,
		orders:        deps.Orders,
		transactions:  deps.Transactions,
		charges:       deps.Charges,
		notifier:      deps.Notifier,
		tokens:        deps.Tokens,
		passwords:     deps.Passwords,
		adminPassHash: deps.AdminPassHash,
		orderTTL:      deps.OrderTTL,
		logger:        deps.Logger,
		async:         func(fn func()) { go fn() },
	}
}

// CreateOrder runs the checkout flow.
func (f *RaffleFacade) CreateOrder(ctx context.Context, buyer model.Buyer, tracking model.Tracking, quantity int) (*model.Order, *model.Charge, error) {
	return f.checkout.CreateOrder(ctx, buyer, tracking, quantity)
}

// OrderStatus returns order state for customer polling.
func (f *RaffleFacade) OrderStatus(ctx context.Context, orderID int64) (*model.Order, error) {
	return f.checkout.OrderStatus(ctx, orderID)
}

// HandleNotification processes a raw gateway webhook body. Internal failures
// are logged and absorbed; the caller acknowledges the gateway no matter what.
func (f *RaffleFacade) HandleNotification(ctx context.Context, body []byte) {
	settlement, err := f.reconcile.ProcessNotification(ctx, body)
	if err != nil {
		f.logger.Error("settlement failed, notification acknowledged anyway",
			slog.String("error", err.Error()),
		)
		return
	}
	if settlement != nil && settlement.FirstTimePaid {
		f.afterPaid(settlement)
	}
}

// afterPaid schedules the downstream side effects of a first-time settlement
// without ever delaying the acknowledgment path.
func (f *RaffleFacade) afterPaid(settlement *model.Settlement) {
	order := *settlement.Order
	trx := settlement.Transaction
	f.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()

		f.notifier.OrderPaid(ctx, order)

		if _, err := f.conversion.Dispatch(ctx, trx, &order); err != nil {
			f.logger.Warn("conversion dispatch failed",
				slog.String("order", order.Code),
				slog.String("error", err.Error()),
			)
		}
	})
}

// Authenticate validates the operator password and issues a token.
func (f *RaffleFacade) Authenticate(password string) (string, error) {
	if f.adminPassHash == "" {
		return "", domainErrors.ErrInvalidCredentials
	}
	if err := f.passwords.Compare(f.adminPassHash, password); err != nil {
		return "", domainErrors.ErrInvalidCredentials
	}
	return f.tokens.IssueToken(operatorSubject)
}

// ParseToken validates an operator token.
func (f *RaffleFacade) ParseToken(token string) (string, error) {
	return f.tokens.ParseToken(token)
}

// RetryConversion re-runs the conversion dispatch for an order. Payment state
// is never touched.
func (f *RaffleFacade) RetryConversion(ctx context.Context, orderID int64) (model.DispatchOutcome, model.ConversionMeta, error) {
	return f.conversion.Retry(ctx, orderID)
}

// StaleOrders returns pending orders past their TTL.
func (f *RaffleFacade) StaleOrders(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.SelectStalePending(ctx, time.Now().Add(-f.orderTTL), limit)
}

// LatestTransaction returns the most recent payment attempt of an order.
func (f *RaffleFacade) LatestTransaction(ctx context.Context, orderID int64) (*model.Transaction, error) {
	return f.transactions.LatestByOrder(ctx, orderID)
}

// CheckCharge queries the gateway for charge state.
func (f *RaffleFacade) CheckCharge(ctx context.Context, gatewayID string) (*model.Charge, error) {
	return f.charges.GetCharge(ctx, gatewayID)
}

// SettleCharge applies a gateway-confirmed payment through the regular
// settlement path, firing the same side effects as a webhook would.
func (f *RaffleFacade) SettleCharge(ctx context.Context, order model.Order, charge *model.Charge) error {
	settlement, err := f.reconcile.SettleCharge(ctx, order, charge)
	if err != nil {
		return err
	}
	if settlement.FirstTimePaid {
		f.afterPaid(settlement)
	}
	return nil
}

// CancelOrder expires a pending order.
func (f *RaffleFacade) CancelOrder(ctx context.Context, orderID int64) (bool, error) {
	return f.orders.Cancel(ctx, orderID)
}
