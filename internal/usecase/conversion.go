package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	domainErrors "github.com/pixlabs/rifamart/internal/domain/errors"
	"github.com/pixlabs/rifamart/internal/domain/model"
	"github.com/pixlabs/rifamart/internal/domain/repository"
)

// ConversionClient sends purchase events to the ad network.
type ConversionClient interface {
	Send(ctx context.Context, event model.ConversionEvent) (*model.ConversionResult, error)
}

const maxRecordedBody = 512

// ConversionUseCase owns reporting purchase conversions. It is the only
// writer of the sent marker and may be invoked again at any time with the
// same dedup behaviour.
type ConversionUseCase struct {
	orders       repository.OrderRepository
	transactions repository.TransactionRepository
	client       ConversionClient
	logger       *slog.Logger
}

// NewConversionUseCase constructs ConversionUseCase.
func NewConversionUseCase(orders repository.OrderRepository, transactions repository.TransactionRepository, client ConversionClient, logger *slog.Logger) *ConversionUseCase {
	return &ConversionUseCase{orders: orders, transactions: transactions, client: client, logger: logger}
}

// Dispatch reports the paid transaction once. The event identifier is
// deterministic so the browser-side pixel reporting the same purchase
// deduplicates against it on the ad network side.
func (u *ConversionUseCase) Dispatch(ctx context.Context, trx *model.Transaction, order *model.Order) (model.DispatchOutcome, error) {
	if trx.Conversion.Sent() {
		return model.DispatchSkipped, nil
	}

	eventID := order.EventID
	if eventID == "" {
		eventID = "tx-" + strconv.FormatInt(trx.ID, 10)
	}

	event := model.ConversionEvent{
		EventID:   eventID,
		Value:     trx.Value,
		Currency:  "BRL",
		Email:     order.Buyer.Email,
		Phone:     order.Buyer.Phone,
		Document:  order.Buyer.Document,
		FBC:       order.Tracking.FBC,
		FBP:       order.Tracking.FBP,
		UserAgent: order.Tracking.UserAgent,
		ClientIP:  order.Tracking.ClientIP,
	}

	now := time.Now().UTC()
	meta := trx.Conversion
	meta.Attempts++
	meta.LastAttemptAt = &now
	meta.LastEventID = eventID

	result, err := u.client.Send(ctx, event)
	if result != nil {
		meta.LastStatus = result.StatusCode
		meta.LastBody = truncate(result.Body, maxRecordedBody)
	}
	if err != nil {
		meta.LastError = err.Error()
		u.record(ctx, trx.ID, meta)
		trx.Conversion = meta
		return model.DispatchFailed, err
	}

	meta.LastError = ""
	meta.SentAt = &now
	meta.SentEventID = eventID
	u.record(ctx, trx.ID, meta)
	trx.Conversion = meta

	u.logger.Info("conversion dispatched",
		slog.Int64("transaction", trx.ID),
		slog.String("event_id", eventID),
	)
	return model.DispatchSent, nil
}

// Retry re-runs the dispatch for an order's paid transaction and reports the
// resulting bookkeeping. It never touches payment state; an order without a
// paid transaction is an error.
func (u *ConversionUseCase) Retry(ctx context.Context, orderID int64) (model.DispatchOutcome, model.ConversionMeta, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", model.ConversionMeta{}, err
	}

	trx, err := u.transactions.PaidByOrder(ctx, order.ID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return "", model.ConversionMeta{}, domainErrors.ErrOrderNotPaid
		}
		return "", model.ConversionMeta{}, err
	}

	outcome, err := u.Dispatch(ctx, trx, order)
	return outcome, trx.Conversion, err
}

func (u *ConversionUseCase) record(ctx context.Context, transactionID int64, meta model.ConversionMeta) {
	if err := u.transactions.RecordConversionAttempt(ctx, transactionID, meta); err != nil {
		u.logger.Error("conversion bookkeeping write failed",
			slog.Int64("transaction", transactionID),
			slog.String("error", err.Error()),
		)
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
