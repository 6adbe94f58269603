package payment

import "context"

// Gateway is the contract the order core expects from the payment provider.
// The core's only obligation after a successful verification is confirming
// the order as paid; it never assumes the webhook and the user-initiated
// verification cannot race.
type Gateway interface {
	// Configured reports whether a provider is wired up. When false,
	// CreateCheckoutSession returns an empty URL and orders stay pending.
	Configured() bool

	// CreateCheckoutSession opens a hosted payment session for the order
	// total and returns its redirect URL. Empty URL when not configured.
	CreateCheckoutSession(ctx context.Context, orderID string, totalCents int64, currency string) (string, error)

	// VerifySession confirms the session was paid and belongs to the expected
	// order for the expected amount, returning the correlated order id.
	// expectedOrderID "" or expectedTotalCents < 0 skip that check. Fails with
	// ErrPaymentNotComplete, ErrInvalidSession, ErrSessionNotFound or
	// AmountMismatchError from the domain package.
	VerifySession(ctx context.Context, sessionID, expectedOrderID string, expectedTotalCents int64) (string, error)

	// HandleWebhookEvent verifies the provider's signature over a raw webhook
	// payload. Returns the paid order's id and the session id for completed
	// checkouts, empty strings for events the core does not care about.
	HandleWebhookEvent(payload []byte, signature string) (orderID, sessionID string, err error)
}
