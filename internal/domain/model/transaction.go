package model

import "time"

// TransactionStatus describes a payment attempt lifecycle.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusPaid    TransactionStatus = "paid"
)

// ConversionMeta is the conversion-dispatch bookkeeping embedded in a
// transaction. Additional diagnostic fields may be added without migration;
// the column is stored as JSONB.
type ConversionMeta struct {
	Attempts      int        `json:"attempts,omitempty"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	LastEventID   string     `json:"last_event_id,omitempty"`
	LastStatus    int        `json:"last_status,omitempty"`
	LastBody      string     `json:"last_body,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	SentEventID   string     `json:"sent_event_id,omitempty"`
}

// Sent reports whether the conversion was already delivered for this
// transaction. Once true it stays true.
func (m ConversionMeta) Sent() bool {
	return m.SentAt != nil
}

// Transaction describes one payment attempt against an order.
type Transaction struct {
	ID         int64
	OrderID    int64
	Value      float64
	Status     TransactionStatus
	GatewayID  string
	Conversion ConversionMeta
	CreatedAt  time.Time
}
