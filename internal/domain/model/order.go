package model

import "time"

// OrderStatus describes the purchase lifecycle.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusCanceled OrderStatus = "canceled"
)

// Buyer holds contact data collected at checkout. Identity fields are hashed
// before ever leaving the system.
type Buyer struct {
	Name     string
	Email    string
	Phone    string
	Document string
}

// Tracking carries browser signals captured at order creation and forwarded
// with the conversion report when present.
type Tracking struct {
	FBC       string
	FBP       string
	UserAgent string
	ClientIP  string
}

// Order describes one purchase intent for raffle entries.
type Order struct {
	ID        int64
	Code      string
	Buyer     Buyer
	Tracking  Tracking
	Amount    float64
	Quantity  int
	Status    OrderStatus
	EventID   string
	CreatedAt time.Time
}

// OrderDraft is the input required to register a new order.
type OrderDraft struct {
	Code     string
	Buyer    Buyer
	Tracking Tracking
	Amount   float64
	Quantity int
	EventID  string
}
