package errors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrOrderNotPaid       = errors.New("order not paid")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
