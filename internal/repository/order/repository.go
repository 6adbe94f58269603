package order

import (
	"context"

	"tshirtshop/internal/domain"
)

type CreateOrderInput struct {
	ID            string
	UserID        *string
	Shipping      domain.ShippingAddress
	SubtotalCents int64
	ShippingCents int64
	TotalCents    int64
	Lines         []CreateOrderLine
}

type CreateOrderLine struct {
	ID                 string
	ProductID          string
	Quantity           int
	PriceCentsAtOrder  int64
	ProductNameAtOrder string
}

// TransitionFunc decides the next status given the order's current status,
// observed under a row lock. Returning next == current commits no write.
// A non-nil payment ref is recorded alongside the status.
type TransitionFunc func(current domain.OrderStatus) (next domain.OrderStatus, paymentRef *string, err error)

type Repository interface {
	// Create writes the order and all its lines in one transaction.
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)

	// UpdateStatusLocked serializes status transitions on one order: it locks
	// the order row, calls decide with the current status, and persists the
	// result before releasing the lock. Concurrent callers observe each
	// other's committed transitions, never a stale from-state.
	UpdateStatusLocked(ctx context.Context, orderID string, decide TransitionFunc) (*domain.Order, error)
}
