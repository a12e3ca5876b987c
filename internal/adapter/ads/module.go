package ads

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/pixlabs/rifamart/internal/config"
)

// Module wires the conversion API client for fx.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.AdsAddress, p.Config.AdsPixelID, p.Config.AdsAccessToken, p.Logger)
}
