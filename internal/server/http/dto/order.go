package dto

import "time"

// CreateOrderRequest describes the checkout payload.
type CreateOrderRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
	Quantity int    `json:"quantity"`
	FBC      string `json:"fbc,omitempty"`
	FBP      string `json:"fbp,omitempty"`
}

// OrderResponse represents order state for customer polling.
type OrderResponse struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	Amount    float64   `json:"amount"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateOrderResponse is returned after checkout with the PIX payment code.
type CreateOrderResponse struct {
	OrderResponse
	PixCode string `json:"pix_code"`
}
