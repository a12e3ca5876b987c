package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/pixlabs/rifamart/internal/adapter/push"
	"github.com/pixlabs/rifamart/internal/config"
	"github.com/pixlabs/rifamart/internal/domain/repository"
	pkgAuth "github.com/pixlabs/rifamart/internal/pkg/auth"
	"github.com/pixlabs/rifamart/internal/usecase"
	"github.com/pixlabs/rifamart/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newRaffleFacade,
		newHTTPServer,
		newExpiryProcessor,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Checkout     *usecase.CheckoutUseCase
	Reconcile    *usecase.ReconcileUseCase
	Conversion   *usecase.ConversionUseCase
	Orders       repository.OrderRepository
	Transactions repository.TransactionRepository
	Charges      ChargeProvider
	Notifier     push.Notifier
	Tokens       pkgAuth.Strategy
	Passwords    pkgAuth.PasswordHasher
	Config       *config.Config
	Logger       *slog.Logger
}

func newRaffleFacade(p facadeParams) *RaffleFacade {
	return NewRaffleFacade(FacadeDeps{
		Checkout:      p.Checkout,
		Reconcile:     p.Reconcile,
		Conversion:    p.Conversion,
		Orders:        p.Orders,
		Transactions:  p.Transactions,
		Charges:       p.Charges,
		Notifier:      p.Notifier,
		Tokens:        p.Tokens,
		Passwords:     p.Passwords,
		AdminPassHash: p.Config.AdminPasswordHash,
		OrderTTL:      p.Config.OrderTTL,
		Logger:        p.Logger,
	})
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *RaffleFacade
	Config *config.Config
	Logger *slog.Logger
}

func newExpiryProcessor(p workerParams) *worker.ExpiryProcessor {
	return worker.NewExpiryProcessor(
		p.Facade,
		p.Config.ExpirePollInterval,
		p.Config.MaxExpireBatch,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Worker     *worker.ExpiryProcessor
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting rifamart", slog.String("addr", p.Server.Addr))
			p.Worker.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Worker.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("rifamart stopped")
			return nil
		},
	})
}
