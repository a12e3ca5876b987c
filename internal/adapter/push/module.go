package push

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/pixlabs/rifamart/internal/config"
)

// Module wires the push notifier for fx.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) Notifier {
	return NewWebhookNotifier(p.Config.PushWebhookURL, p.Logger)
}
