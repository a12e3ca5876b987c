package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/pixlabs/rifamart/internal/app"
	"github.com/pixlabs/rifamart/internal/config"
	"github.com/pixlabs/rifamart/internal/domain/repository"
	"github.com/pixlabs/rifamart/internal/storage/postgres"
	testhelpers "github.com/pixlabs/rifamart/internal/test"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:         ":0",
		DatabaseURI:        "postgres://stub",
		GatewayAddress:     "http://localhost",
		AdsAddress:         "http://localhost",
		TokenSecret:        "secret",
		EntryPrice:         2.97,
		OrderTTL:           time.Minute,
		ExpirePollInterval: time.Millisecond,
		WorkerPoolSize:     1,
		MaxExpireBatch:     1,
		ShutdownTimeout:    time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	orderRepo := testhelpers.NewOrderRepositoryStub()
	transactionRepo := testhelpers.NewTransactionRepositoryStub()

	var facade *app.RaffleFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return context.Background() }),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.OrderRepository(orderRepo)),
			fx.Replace(repository.TransactionRepository(transactionRepo)),
		),
		fx.Populate(&facade),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected raffle facade instance")
	}
}
