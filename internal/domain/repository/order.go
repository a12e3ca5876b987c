package repository

import (
	"context"
	"time"

	"github.com/pixlabs/rifamart/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, draft model.OrderDraft) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByCode(ctx context.Context, code string) (*model.Order, error)
	SelectStalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error)
	Cancel(ctx context.Context, orderID int64) (bool, error)
}
