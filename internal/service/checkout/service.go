package checkout

import (
	"context"
	"errors"

	"tshirtshop/internal/domain"
	orderrepo "tshirtshop/internal/repository/order"

	"github.com/google/uuid"
)

// Free shipping kicks in at $75; below that a flat rate applies.
const (
	FreeShippingThresholdCents int64 = 7500
	DefaultShippingCents       int64 = 599
)

type Service struct {
	orders    orderRepo
	carts     cartService
	clearCart bool
}

type orderRepo interface {
	Create(ctx context.Context, in orderrepo.CreateOrderInput) (*domain.Order, error)
}

type cartService interface {
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

// New builds the checkout service. clearCartAfterCheckout controls whether
// the source cart is emptied once an order is created; when false the cart
// survives and a revisit of checkout can produce a second order.
func New(orders orderrepo.Repository, carts cartService, clearCartAfterCheckout bool) *Service {
	return &Service{orders: orders, carts: carts, clearCart: clearCartAfterCheckout}
}

// Summary is the checkout quote for a cart at current prices.
type Summary struct {
	SubtotalCents              int64 `json:"subtotalCents"`
	ShippingCents              int64 `json:"shippingCents"`
	TotalCents                 int64 `json:"totalCents"`
	ItemCount                  int   `json:"itemCount"`
	FreeShippingThresholdCents int64 `json:"freeShippingThresholdCents"`
}

// ShippingFor applies the shipping rule to a subtotal.
func ShippingFor(subtotalCents int64) int64 {
	if subtotalCents >= FreeShippingThresholdCents {
		return 0
	}
	return DefaultShippingCents
}

// Summary computes the order summary for the cart. Returns nil (no error)
// when the cart is missing or empty: an empty cart cannot be summarized.
func (s *Service) Summary(ctx context.Context, cartID string) (*Summary, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, nil
	}

	subtotal := cart.TotalCents()
	shipping := ShippingFor(subtotal)
	return &Summary{
		SubtotalCents:              subtotal,
		ShippingCents:              shipping,
		TotalCents:                 subtotal + shipping,
		ItemCount:                  cart.ItemCount(),
		FreeShippingThresholdCents: FreeShippingThresholdCents,
	}, nil
}

// CreateOrderFromCart materializes the cart into a pending order, snapshotting
// each line's current product name and unit price. The cart is left intact
// unless the service was configured to clear it.
func (s *Service) CreateOrderFromCart(ctx context.Context, cartID string, addr domain.ShippingAddress, userID *string) (*domain.Order, error) {
	if errs := ValidateShippingAddress(addr); len(errs) > 0 {
		return nil, &AddressValidationError{Fields: errs}
	}

	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, domain.ErrCartEmpty
	}

	subtotal := cart.TotalCents()
	shipping := ShippingFor(subtotal)

	in := orderrepo.CreateOrderInput{
		ID:            uuid.NewString(),
		UserID:        userID,
		Shipping:      normalizeAddress(addr),
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TotalCents:    subtotal + shipping,
	}
	for _, line := range cart.Lines {
		in.Lines = append(in.Lines, orderrepo.CreateOrderLine{
			ID:                 uuid.NewString(),
			ProductID:          line.ProductID,
			Quantity:           line.Quantity,
			PriceCentsAtOrder:  line.PriceCents,
			ProductNameAtOrder: line.ProductName,
		})
	}

	ord, err := s.orders.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	if s.clearCart {
		if err := s.carts.Clear(ctx, cartID); err != nil {
			return nil, err
		}
	}
	return ord, nil
}
