package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/pixlabs/rifamart/internal/domain/errors"
	"github.com/pixlabs/rifamart/internal/domain/model"
	"github.com/pixlabs/rifamart/internal/domain/repository"
)

// PgxPool is the subset of pgxpool.Pool used by the storage. It allows
// substituting a mock pool in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   PgxPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type transactionRepository struct {
	storage *Storage
}

// newPgxPool is replaced in tests.
var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (PgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Transactions() repository.TransactionRepository {
	return &transactionRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            buyer_name TEXT NOT NULL DEFAULT '',
            buyer_email TEXT NOT NULL DEFAULT '',
            buyer_phone TEXT NOT NULL DEFAULT '',
            buyer_document TEXT NOT NULL DEFAULT '',
            fbc TEXT NOT NULL DEFAULT '',
            fbp TEXT NOT NULL DEFAULT '',
            user_agent TEXT NOT NULL DEFAULT '',
            client_ip TEXT NOT NULL DEFAULT '',
            amount DOUBLE PRECISION NOT NULL,
            quantity INTEGER NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            event_id TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS transactions (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            value DOUBLE PRECISION NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            gateway_id TEXT,
            metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_gateway ON transactions(gateway_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_order ON transactions(order_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_pending ON orders(status, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

const orderColumns = `id, code, buyer_name, buyer_email, buyer_phone, buyer_document,
                      fbc, fbp, user_agent, client_ip,
                      amount, quantity, status, event_id, created_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.Code, &o.Buyer.Name, &o.Buyer.Email, &o.Buyer.Phone, &o.Buyer.Document,
		&o.Tracking.FBC, &o.Tracking.FBP, &o.Tracking.UserAgent, &o.Tracking.ClientIP,
		&o.Amount, &o.Quantity, &o.Status, &o.EventID, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

const transactionColumns = `id, order_id, value, status, gateway_id, metadata, created_at`

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	var gatewayID *string
	err := row.Scan(&t.ID, &t.OrderID, &t.Value, &t.Status, &gatewayID, &t.Conversion, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if gatewayID != nil {
		t.GatewayID = *gatewayID
	}
	return &t, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, draft model.OrderDraft) (*model.Order, error) {
	const query = `INSERT INTO orders (code, buyer_name, buyer_email, buyer_phone, buyer_document,
                       fbc, fbp, user_agent, client_ip, amount, quantity, status, event_id)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
                   RETURNING id, created_at`
	order := model.Order{
		Code:     draft.Code,
		Buyer:    draft.Buyer,
		Tracking: draft.Tracking,
		Amount:   draft.Amount,
		Quantity: draft.Quantity,
		Status:   model.OrderStatusPending,
		EventID:  draft.EventID,
	}
	err := r.storage.pool.QueryRow(ctx, query,
		draft.Code, draft.Buyer.Name, draft.Buyer.Email, draft.Buyer.Phone, draft.Buyer.Document,
		draft.Tracking.FBC, draft.Tracking.FBP, draft.Tracking.UserAgent, draft.Tracking.ClientIP,
		draft.Amount, draft.Quantity, model.OrderStatusPending, draft.EventID,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) GetByCode(ctx context.Context, code string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE code=$1`
	return scanOrder(r.storage.pool.QueryRow(ctx, query, code))
}

func (r *orderRepository) SelectStalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE status='pending' AND created_at < $1
              ORDER BY created_at
              LIMIT $2`
	rows, err := r.storage.pool.Query(ctx, query, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.Code, &o.Buyer.Name, &o.Buyer.Email, &o.Buyer.Phone, &o.Buyer.Document,
			&o.Tracking.FBC, &o.Tracking.FBP, &o.Tracking.UserAgent, &o.Tracking.ClientIP,
			&o.Amount, &o.Quantity, &o.Status, &o.EventID, &o.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Cancel flips a pending order to canceled. Returns false when the order was
// not pending anymore.
func (r *orderRepository) Cancel(ctx context.Context, orderID int64) (bool, error) {
	const query = `UPDATE orders SET status='canceled' WHERE id=$1 AND status='pending'`
	tag, err := r.storage.pool.Exec(ctx, query, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --- TransactionRepository implementation ---

func (r *transactionRepository) Create(ctx context.Context, orderID int64, value float64, gatewayID string) (*model.Transaction, error) {
	const query = `INSERT INTO transactions (order_id, value, status, gateway_id)
                   VALUES ($1, $2, $3, NULLIF($4, ''))
                   RETURNING id, created_at`
	trx := model.Transaction{
		OrderID:   orderID,
		Value:     value,
		Status:    model.TransactionStatusPending,
		GatewayID: gatewayID,
	}
	err := r.storage.pool.QueryRow(ctx, query, orderID, value, model.TransactionStatusPending, gatewayID).
		Scan(&trx.ID, &trx.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &trx, nil
}

func (r *transactionRepository) LatestByOrder(ctx context.Context, orderID int64) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
              WHERE order_id=$1 ORDER BY created_at DESC LIMIT 1`
	return scanTransaction(r.storage.pool.QueryRow(ctx, query, orderID))
}

func (r *transactionRepository) PaidByOrder(ctx context.Context, orderID int64) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
              WHERE order_id=$1 AND status='paid' ORDER BY created_at DESC LIMIT 1`
	return scanTransaction(r.storage.pool.QueryRow(ctx, query, orderID))
}

// Settle resolves the transaction/order pair for a paid notification and
// applies the pending->paid transition inside a single database transaction.
// Row locks serialize concurrent notifications for the same pair; the
// conditional status update decides which invocation was first.
func (r *transactionRepository) Settle(ctx context.Context, n model.Notification) (*model.Settlement, error) {
	var result *model.Settlement
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		settlement, err := r.settleInTx(ctx, tx, n)
		if err != nil {
			return err
		}
		result = settlement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *transactionRepository) settleInTx(ctx context.Context, tx pgx.Tx, n model.Notification) (*model.Settlement, error) {
	var (
		trx   *model.Transaction
		order *model.Order
	)

	if n.GatewayID != "" {
		query := `SELECT ` + transactionColumns + ` FROM transactions
                  WHERE gateway_id=$1 ORDER BY created_at DESC LIMIT 1 FOR UPDATE`
		found, err := scanTransaction(tx.QueryRow(ctx, query, n.GatewayID))
		if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
			return nil, err
		}
		trx = found
	}

	if trx == nil {
		if n.OrderCode == "" {
			return nil, domainErrors.ErrNotFound
		}

		lockOrder := `SELECT ` + orderColumns + ` FROM orders WHERE code=$1 FOR UPDATE`
		locked, err := scanOrder(tx.QueryRow(ctx, lockOrder, n.OrderCode))
		if err != nil {
			return nil, err
		}
		order = locked

		paidQuery := `SELECT ` + transactionColumns + ` FROM transactions
                      WHERE order_id=$1 AND status='paid' ORDER BY created_at DESC LIMIT 1`
		paid, err := scanTransaction(tx.QueryRow(ctx, paidQuery, order.ID))
		if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
			return nil, err
		}
		if paid != nil {
			// Already settled by an earlier notification.
			return &model.Settlement{Transaction: paid, Order: order, FirstTimePaid: false}, nil
		}

		latestQuery := `SELECT ` + transactionColumns + ` FROM transactions
                        WHERE order_id=$1 ORDER BY created_at DESC LIMIT 1 FOR UPDATE`
		latest, err := scanTransaction(tx.QueryRow(ctx, latestQuery, order.ID))
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				// Notification won the race against the checkout flow's own
				// transaction write: create the transaction already paid.
				return r.bootstrapInTx(ctx, tx, order, n)
			}
			return nil, err
		}
		trx = latest
	}

	if order == nil {
		lockByID := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1 FOR UPDATE`
		locked, err := scanOrder(tx.QueryRow(ctx, lockByID, trx.OrderID))
		if err != nil {
			return nil, err
		}
		order = locked
	}

	firstTime := false
	if trx.Status == model.TransactionStatusPaid {
		if trx.GatewayID == "" && n.GatewayID != "" {
			const backfill = `UPDATE transactions SET gateway_id=$1
                              WHERE id=$2 AND (gateway_id IS NULL OR gateway_id='')`
			if _, err := tx.Exec(ctx, backfill, n.GatewayID, trx.ID); err != nil {
				return nil, err
			}
			trx.GatewayID = n.GatewayID
		}
	} else {
		const transition = `UPDATE transactions
                            SET status='paid',
                                value=GREATEST(value, COALESCE($2, 0)),
                                gateway_id=COALESCE(NULLIF($3, ''), gateway_id)
                            WHERE id=$1 AND status='pending'`
		tag, err := tx.Exec(ctx, transition, trx.ID, n.PaidValue, n.GatewayID)
		if err != nil {
			return nil, err
		}
		firstTime = tag.RowsAffected() > 0
		if firstTime {
			trx.Status = model.TransactionStatusPaid
			if n.PaidValue != nil && *n.PaidValue > trx.Value {
				trx.Value = *n.PaidValue
			}
			if trx.GatewayID == "" {
				trx.GatewayID = n.GatewayID
			}
		}
	}

	if err := markOrderPaid(ctx, tx, order); err != nil {
		return nil, err
	}

	return &model.Settlement{Transaction: trx, Order: order, FirstTimePaid: firstTime}, nil
}

func (r *transactionRepository) bootstrapInTx(ctx context.Context, tx pgx.Tx, order *model.Order, n model.Notification) (*model.Settlement, error) {
	value := order.Amount
	if n.PaidValue != nil && *n.PaidValue > 0 {
		value = *n.PaidValue
	}

	const insert = `INSERT INTO transactions (order_id, value, status, gateway_id)
                    VALUES ($1, $2, 'paid', NULLIF($3, ''))
                    RETURNING id, created_at`
	trx := model.Transaction{
		OrderID:   order.ID,
		Value:     value,
		Status:    model.TransactionStatusPaid,
		GatewayID: n.GatewayID,
	}
	if err := tx.QueryRow(ctx, insert, order.ID, value, n.GatewayID).Scan(&trx.ID, &trx.CreatedAt); err != nil {
		return nil, err
	}

	if err := markOrderPaid(ctx, tx, order); err != nil {
		return nil, err
	}

	return &model.Settlement{Transaction: &trx, Order: order, FirstTimePaid: true, Bootstrapped: true}, nil
}

func markOrderPaid(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	const query = `UPDATE orders SET status='paid' WHERE id=$1 AND status<>'paid'`
	if _, err := tx.Exec(ctx, query, order.ID); err != nil {
		return err
	}
	order.Status = model.OrderStatusPaid
	return nil
}

// RecordConversionAttempt persists conversion bookkeeping. The guard keeps an
// already written sent marker immutable.
func (r *transactionRepository) RecordConversionAttempt(ctx context.Context, transactionID int64, meta model.ConversionMeta) error {
	const query = `UPDATE transactions SET metadata=$2
                   WHERE id=$1 AND (metadata->>'sent_at') IS NULL`
	_, err := r.storage.pool.Exec(ctx, query, transactionID, meta)
	return err
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
