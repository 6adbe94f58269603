package httpserver

import (
	"errors"
	"net/http"

	"tshirtshop/internal/domain"
	"tshirtshop/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

// envelope is the response shape shared by every endpoint.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
	CartID  string      `json:"cartId,omitempty"`
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

func respondBadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
	})
}

// respondError maps domain error kinds onto HTTP statuses and stable error
// codes the storefront can branch on.
func respondError(c *gin.Context, err error) {
	var transitionErr *domain.TransitionError
	var addressErr *checkout.AddressValidationError
	var amountErr *domain.AmountMismatchError

	switch {
	case errors.Is(err, domain.ErrCartNotFound):
		fail(c, http.StatusNotFound, "CART_NOT_FOUND", "Cart not found or expired", nil)
	case errors.Is(err, domain.ErrProductNotFound):
		fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	case errors.Is(err, domain.ErrItemNotFound):
		fail(c, http.StatusNotFound, "ITEM_NOT_FOUND", "Item not found in cart", nil)
	case errors.Is(err, domain.ErrOrderNotFound):
		fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	case errors.Is(err, domain.ErrCartEmpty):
		fail(c, http.StatusBadRequest, "CART_EMPTY", "Cannot checkout with an empty cart", nil)
	case errors.Is(err, domain.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unrecognized order status", nil)
	case errors.As(err, &transitionErr):
		fail(c, http.StatusBadRequest, "INVALID_TRANSITION", transitionErr.Error(), gin.H{
			"from": transitionErr.From,
			"to":   transitionErr.To,
		})
	case errors.As(err, &addressErr):
		fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", addressErr.Fields)
	case errors.As(err, &amountErr):
		fail(c, http.StatusBadRequest, "AMOUNT_MISMATCH", amountErr.Error(), gin.H{
			"expectedCents": amountErr.ExpectedCents,
			"gotCents":      amountErr.GotCents,
		})
	case errors.Is(err, domain.ErrPaymentNotComplete):
		fail(c, http.StatusBadRequest, "PAYMENT_NOT_COMPLETE", "Payment has not completed", nil)
	case errors.Is(err, domain.ErrInvalidSession):
		fail(c, http.StatusBadRequest, "INVALID_SESSION", "Payment session does not match order", nil)
	case errors.Is(err, domain.ErrSessionNotFound):
		fail(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Payment session not found", nil)
	case errors.Is(err, domain.ErrPaymentNotConfigured):
		fail(c, http.StatusServiceUnavailable, "PAYMENT_NOT_CONFIGURED", "Payment gateway not configured", nil)
	default:
		fail(c, http.StatusInternalServerError, "INTERNAL", "Internal server error", nil)
	}
}

func fail(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, envelope{
		Success: false,
		Error:   &apiError{Code: code, Message: message, Details: details},
	})
}
