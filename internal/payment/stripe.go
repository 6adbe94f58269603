package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"tshirtshop/internal/domain"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeGateway implements Gateway over Stripe Checkout. A gateway built
// without a secret key is a no-op: Configured() is false and session creation
// returns an empty URL.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	uiURL         string
	logger        *log.Logger
}

func NewStripe(secretKey, webhookSecret, uiURL string, logger *log.Logger) *StripeGateway {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	g := &StripeGateway{
		webhookSecret: webhookSecret,
		uiURL:         strings.TrimRight(uiURL, "/"),
		logger:        logger,
	}
	if key := strings.TrimSpace(secretKey); strings.HasPrefix(key, "sk_") {
		g.api = &client.API{}
		g.api.Init(key, nil)
	}
	return g
}

func (g *StripeGateway) Configured() bool {
	return g.api != nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, orderID string, totalCents int64, currency string) (string, error) {
	if g.api == nil {
		return "", nil
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(totalCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Order " + orderID),
						Description: stripe.String("T-shirt shop order"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/checkout/confirmation?orderId=%s&session_id={CHECKOUT_SESSION_ID}", g.uiURL, orderID)),
		CancelURL:  stripe.String(g.uiURL + "/checkout"),
	}
	params.Context = ctx
	params.AddMetadata("orderId", orderID)

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		g.logger.Printf("stripe: create session order_id=%s error=%v", orderID, err)
		return "", err
	}
	g.logger.Printf("stripe: created session id=%s order_id=%s amount=%d", sess.ID, orderID, totalCents)
	return sess.URL, nil
}

func (g *StripeGateway) VerifySession(ctx context.Context, sessionID, expectedOrderID string, expectedTotalCents int64) (string, error) {
	if g.api == nil {
		return "", domain.ErrPaymentNotConfigured
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return "", domain.ErrSessionNotFound
		}
		return "", err
	}

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		g.logger.Printf("stripe: verify session id=%s payment_status=%s", sessionID, sess.PaymentStatus)
		return "", domain.ErrPaymentNotComplete
	}

	orderID := strings.TrimSpace(sess.Metadata["orderId"])
	if orderID == "" {
		return "", domain.ErrInvalidSession
	}
	if expectedOrderID != "" && orderID != strings.TrimSpace(expectedOrderID) {
		return "", domain.ErrInvalidSession
	}
	if expectedTotalCents >= 0 && sess.AmountTotal != expectedTotalCents {
		return "", &domain.AmountMismatchError{ExpectedCents: expectedTotalCents, GotCents: sess.AmountTotal}
	}

	return orderID, nil
}

func (g *StripeGateway) HandleWebhookEvent(payload []byte, signature string) (string, string, error) {
	if g.api == nil {
		return "", "", domain.ErrPaymentNotConfigured
	}
	if g.webhookSecret == "" {
		return "", "", errors.New("stripe webhook secret not configured")
	}

	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return "", "", fmt.Errorf("verify webhook signature: %w", err)
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return "", "", nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return "", "", fmt.Errorf("decode checkout session: %w", err)
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return "", "", nil
	}
	orderID := strings.TrimSpace(sess.Metadata["orderId"])
	if orderID == "" {
		return "", "", nil
	}
	g.logger.Printf("stripe: webhook checkout completed session=%s order_id=%s", sess.ID, orderID)
	return orderID, sess.ID, nil
}
