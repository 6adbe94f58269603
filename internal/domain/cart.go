package domain

import "time"

// Cart is a mutable collection of product lines owned by either a guest
// (UserID nil, identified by the opaque cart id) or an authenticated user.
type Cart struct {
	ID        string     `json:"id"`
	UserID    *string    `json:"userId,omitempty"`
	Lines     []CartLine `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartLine is one product entry in a cart. ProductName, PriceCents and
// ImageURL are joined from the live product at read time, so cart totals
// always reflect current catalog prices (unlike order line snapshots).
type CartLine struct {
	ID          string  `json:"id"`
	CartID      string  `json:"-"`
	ProductID   string  `json:"productId"`
	Quantity    int     `json:"quantity"`
	ProductName string  `json:"productName"`
	PriceCents  int64   `json:"priceCents"`
	ImageURL    *string `json:"imageUrl"`
}

// ItemCount is the sum of line quantities. Derived, never stored.
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// TotalCents is the cart subtotal at current prices. Derived, never stored.
func (c Cart) TotalCents() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.PriceCents * int64(l.Quantity)
	}
	return total
}
