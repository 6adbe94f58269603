package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCartNotFound indicates the referenced cart does not exist (or was merged away).
	ErrCartNotFound = errors.New("cart not found")
	// ErrProductNotFound indicates the referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrItemNotFound indicates the cart has no line for the referenced product.
	ErrItemNotFound = errors.New("item not found in cart")
	// ErrOrderNotFound indicates the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrCartEmpty indicates a checkout was attempted against a cart with no lines.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrInvalidStatus indicates an unrecognized order status string.
	ErrInvalidStatus = errors.New("invalid order status")

	// Payment verification failures. Distinct kinds so callers can present
	// different remediation.
	ErrPaymentNotComplete   = errors.New("payment not complete")
	ErrInvalidSession       = errors.New("payment session does not match order")
	ErrSessionNotFound      = errors.New("payment session not found")
	ErrPaymentNotConfigured = errors.New("payment gateway not configured")
)

// TransitionError reports an illegal order status transition. Carries both
// endpoints for diagnosability.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

// AmountMismatchError reports that the amount captured by a payment session
// does not match the order total. Treated as a tamper signal, not retryable.
type AmountMismatchError struct {
	ExpectedCents int64
	GotCents      int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("payment amount mismatch: expected %d cents, got %d", e.ExpectedCents, e.GotCents)
}
