package domain

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
	StatusRefunded  OrderStatus = "refunded"
)

// statusTransitions is the full set of legal (from, to) pairs. cancelled and
// refunded are terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusCancelled, StatusRefunded},
	StatusShipped:   {StatusCompleted, StatusRefunded},
	StatusCompleted: {StatusRefunded},
	StatusCancelled: {},
	StatusRefunded:  {},
}

// ParseOrderStatus validates a status string from the wire. Returns
// ErrInvalidStatus for anything outside the lifecycle vocabulary.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := statusTransitions[status]; !ok {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// CanTransitionTo reports whether the transition table allows moving from s
// to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s OrderStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// ShippingAddress is the flattened shipping destination stored on an order.
type ShippingAddress struct {
	FullName        string  `json:"fullName"`
	Line1           string  `json:"line1"`
	Line2           *string `json:"line2,omitempty"`
	City            string  `json:"city"`
	StateOrProvince string  `json:"stateOrProvince"`
	PostalCode      string  `json:"postalCode"`
	Country         string  `json:"country"`
	Phone           *string `json:"phone,omitempty"`
}

// Order is an immutable-at-creation snapshot of a cart at checkout time.
// Only Status and PaymentRef mutate after creation; money fields satisfy
// TotalCents == SubtotalCents + ShippingCents for the order's lifetime.
type Order struct {
	ID            string          `json:"id"`
	UserID        *string         `json:"userId,omitempty"`
	Status        OrderStatus     `json:"status"`
	Shipping      ShippingAddress `json:"shippingAddress"`
	SubtotalCents int64           `json:"subtotalCents"`
	ShippingCents int64           `json:"shippingCents"`
	TotalCents    int64           `json:"totalCents"`
	PaymentRef    *string         `json:"paymentRef,omitempty"`
	Lines         []OrderLine     `json:"items"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// OrderLine freezes the product name and unit price at order-creation time.
// Later catalog changes never affect existing orders.
type OrderLine struct {
	ID                 string `json:"id"`
	OrderID            string `json:"-"`
	ProductID          string `json:"productId"`
	Quantity           int    `json:"quantity"`
	PriceCentsAtOrder  int64  `json:"priceCentsAtOrder"`
	ProductNameAtOrder string `json:"productNameAtOrder"`
}
