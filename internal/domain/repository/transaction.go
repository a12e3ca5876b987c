package repository

import (
	"context"

	"github.com/pixlabs/rifamart/internal/domain/model"
)

// TransactionRepository describes persistence operations with payment
// transactions, including the atomic settlement of a paid notification.
type TransactionRepository interface {
	Create(ctx context.Context, orderID int64, value float64, gatewayID string) (*model.Transaction, error)
	LatestByOrder(ctx context.Context, orderID int64) (*model.Transaction, error)
	PaidByOrder(ctx context.Context, orderID int64) (*model.Transaction, error)

	// Settle resolves the transaction/order pair referenced by the
	// notification and applies the paid transition in a single transaction.
	// FirstTimePaid is true only for the invocation that performed the
	// pending->paid write.
	Settle(ctx context.Context, n model.Notification) (*model.Settlement, error)

	// RecordConversionAttempt persists conversion-dispatch bookkeeping. The
	// write is skipped once a sent marker is present in storage.
	RecordConversionAttempt(ctx context.Context, transactionID int64, meta model.ConversionMeta) error
}
