package cart

import (
	"context"

	"tshirtshop/internal/domain"
)

// Repository persists carts and their lines. Reads return carts enriched with
// live product name, price and primary image.
type Repository interface {
	Create(ctx context.Context, userID *string) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)

	// UpsertLine adds delta to the line's quantity, creating the line when
	// absent. Atomic against concurrent adds for the same (cart, product).
	UpsertLine(ctx context.Context, cartID, productID string, delta int) error
	// SetLineQuantity overwrites a line's quantity. ErrItemNotFound when no
	// line exists for the product.
	SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error
	DeleteLine(ctx context.Context, cartID, productID string) error

	// AdoptGuest reassigns a guest cart to the given user.
	AdoptGuest(ctx context.Context, cartID, userID string) error
	// MergeInto folds the guest cart's lines into the user cart, incrementing
	// quantities line by line, then deletes the guest cart. One transaction.
	MergeInto(ctx context.Context, userCartID, guestCartID string) error

	Clear(ctx context.Context, cartID string) error
}
