package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/pixlabs/rifamart/internal/config"
)

// Module wires the gateway client for fx.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.GatewayAddress, p.Config.GatewayClientID, p.Config.GatewayClientSecret, p.Logger)
}
