package di

import (
	"go.uber.org/fx"

	"github.com/pixlabs/rifamart/internal/adapter/ads"
	"github.com/pixlabs/rifamart/internal/adapter/gateway"
	"github.com/pixlabs/rifamart/internal/adapter/push"
	"github.com/pixlabs/rifamart/internal/app"
	"github.com/pixlabs/rifamart/internal/config"
	"github.com/pixlabs/rifamart/internal/logger"
	"github.com/pixlabs/rifamart/internal/pkg/auth"
	"github.com/pixlabs/rifamart/internal/server/http/handlers"
	"github.com/pixlabs/rifamart/internal/server/http/router"
	"github.com/pixlabs/rifamart/internal/storage/postgres"
	"github.com/pixlabs/rifamart/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		gateway.Module,
		ads.Module,
		push.Module,
		usecase.Module,
		fx.Provide(
			func(client gateway.Client) usecase.PixGateway { return client },
			func(client gateway.Client) app.ChargeProvider { return client },
			func(client ads.Client) usecase.ConversionClient { return client },
			func(facade *app.RaffleFacade) handlers.RaffleFacade { return facade },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
