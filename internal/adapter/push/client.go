package push

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pixlabs/rifamart/internal/domain/model"
)

// Notifier delivers best-effort operational notifications. Failures are
// logged and never retried.
type Notifier interface {
	OrderPaid(ctx context.Context, order model.Order)
}

// WebhookNotifier posts notifications to a configured URL. An empty URL
// disables delivery entirely.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebhookNotifier creates the notifier with default timeout.
func NewWebhookNotifier(url string, logger *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// OrderPaid announces a settled order to operations staff.
func (n *WebhookNotifier) OrderPaid(ctx context.Context, order model.Order) {
	if n.url == "" {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"event":    "order.paid",
		"order_id": order.ID,
		"code":     order.Code,
		"value":    order.Amount,
		"quantity": order.Quantity,
	})
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		n.logger.Warn("push notification request build failed", slog.String("error", err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("push notification delivery failed",
			slog.String("order", order.Code),
			slog.String("error", err.Error()),
		)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		n.logger.Warn("push notification rejected",
			slog.String("order", order.Code),
			slog.Int("status", resp.StatusCode),
		)
	}
}
