package errors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflicting terminal state")
	ErrStockShort    = errors.New("insufficient stock")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyOrder    = errors.New("order has no items")
	ErrEmptyBatch    = errors.New("batch has no payments")
	ErrInvalidYear   = errors.New("invalid reunion year")
)
