package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pixlabs/rifamart/internal/server/http/dto"
)

// maxNotificationBody bounds how much of a webhook body is read.
const maxNotificationBody = 1 << 20

// WebhookHandler fronts the gateway's payment notifications. Whatever happens
// inside, the gateway gets a success acknowledgment: an error response would
// only make it retry a notification we already processed, and repeated
// failures get integrations disabled.
type WebhookHandler struct {
	facade WebhookFacade
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade) *WebhookHandler {
	return &WebhookHandler{facade: facade}
}

// Notify handles POST /api/webhooks/pix.
func (h *WebhookHandler) Notify(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNotificationBody))
	if err == nil && len(body) > 0 {
		h.facade.HandleNotification(c.Request.Context(), body)
	}

	c.JSON(http.StatusOK, dto.AckResponse{OK: true})
}
