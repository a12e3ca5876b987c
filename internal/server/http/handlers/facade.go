package handlers

import (
	"context"

	"github.com/pixlabs/rifamart/internal/domain/model"
)

// CheckoutFacade encapsulates checkout operations exposed via HTTP.
type CheckoutFacade interface {
	CreateOrder(ctx context.Context, buyer model.Buyer, tracking model.Tracking, quantity int) (*model.Order, *model.Charge, error)
	OrderStatus(ctx context.Context, orderID int64) (*model.Order, error)
}

// WebhookFacade processes raw gateway notification bodies.
type WebhookFacade interface {
	HandleNotification(ctx context.Context, body []byte)
}

// AdminFacade describes the operator capabilities required by handlers.
type AdminFacade interface {
	Authenticate(password string) (string, error)
	ParseToken(token string) (string, error)
	RetryConversion(ctx context.Context, orderID int64) (model.DispatchOutcome, model.ConversionMeta, error)
}

// RaffleFacade aggregates the full set of operations used across handlers.
type RaffleFacade interface {
	CheckoutFacade
	WebhookFacade
	AdminFacade
}
