package httpserver

import (
	"io"
	"log"
	"net/http"
	"strings"

	"tshirtshop/internal/domain"
	"tshirtshop/internal/payment"
	checkoutsvc "tshirtshop/internal/service/checkout"
	ordersvc "tshirtshop/internal/service/order"

	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	ShippingAddress *domain.ShippingAddress `json:"shippingAddress"`
}

type createOrderResponse struct {
	Order       *domain.Order `json:"order"`
	CheckoutURL string        `json:"checkoutUrl,omitempty"`
}

type confirmPaymentRequest struct {
	SessionID string `json:"sessionId"`
	OrderID   string `json:"orderId"`
}

func checkoutSummaryHandler(svc *checkoutsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID := cartIDHeader(c)
		if cartID == "" {
			respond(c, http.StatusOK, nil, "No cart ID provided. Use "+headerCartID+" header.")
			return
		}
		summary, err := svc.Summary(c.Request.Context(), cartID)
		if err != nil {
			respondError(c, err)
			return
		}
		message := "Summary retrieved"
		if summary == nil {
			message = "Cart empty or not found"
		}
		respond(c, http.StatusOK, summary, message)
	}
}

// createOrderHandler materializes the cart into a pending order and, when a
// payment gateway is configured, opens a hosted checkout session for it.
func createOrderHandler(svc *checkoutsvc.Service, payments payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID := cartIDHeader(c)
		if cartID == "" {
			respondBadRequest(c, "CART_ID_REQUIRED", headerCartID+" header is required")
			return
		}
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ShippingAddress == nil {
			respondBadRequest(c, "VALIDATION_ERROR", "shippingAddress is required")
			return
		}

		ord, err := svc.CreateOrderFromCart(c.Request.Context(), cartID, *req.ShippingAddress, currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}

		resp := createOrderResponse{Order: ord}
		if payments != nil && payments.Configured() {
			url, err := payments.CreateCheckoutSession(c.Request.Context(), ord.ID, ord.TotalCents, "usd")
			if err != nil {
				respondError(c, err)
				return
			}
			resp.CheckoutURL = url
		}
		respond(c, http.StatusCreated, resp, "Order created successfully")
	}
}

// confirmPaymentHandler is the user-initiated verification path: the browser
// lands back from the hosted checkout with a session id, we verify it against
// the order and confirm payment. Races freely with the webhook; confirmation
// is idempotent.
func confirmPaymentHandler(orders *ordersvc.Service, payments payment.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req confirmPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.OrderID) == "" {
			respondBadRequest(c, "VALIDATION_ERROR", "sessionId and orderId are required")
			return
		}
		if payments == nil || !payments.Configured() {
			respondError(c, domain.ErrPaymentNotConfigured)
			return
		}

		ord, err := orders.Get(c.Request.Context(), strings.TrimSpace(req.OrderID))
		if err != nil {
			respondError(c, err)
			return
		}

		orderID, err := payments.VerifySession(c.Request.Context(), strings.TrimSpace(req.SessionID), ord.ID, ord.TotalCents)
		if err != nil {
			respondError(c, err)
			return
		}

		ord, err = orders.MarkPaidIfPending(c.Request.Context(), orderID, strings.TrimSpace(req.SessionID))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, ord, "Payment confirmed")
	}
}

// stripeWebhookHandler handles provider-initiated confirmation. Signature
// verification happens in the gateway; unknown events are acknowledged and
// dropped.
func stripeWebhookHandler(orders *ordersvc.Service, payments payment.Gateway, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if payments == nil || !payments.Configured() {
			respondError(c, domain.ErrPaymentNotConfigured)
			return
		}
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondBadRequest(c, "VALIDATION_ERROR", "unreadable payload")
			return
		}

		orderID, sessionID, err := payments.HandleWebhookEvent(payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			respondBadRequest(c, "INVALID_SIGNATURE", "webhook verification failed")
			return
		}
		if orderID == "" {
			respond(c, http.StatusOK, nil, "Event ignored")
			return
		}

		if _, err := orders.MarkPaidIfPending(c.Request.Context(), orderID, sessionID); err != nil {
			logger.Printf("webhook: confirm order_id=%s error=%v", orderID, err)
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, nil, "Payment confirmed")
	}
}
