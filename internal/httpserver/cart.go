package httpserver

import (
	"net/http"
	"strings"

	cartsvc "tshirtshop/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity"`
}

// getCartHandler resolves the caller's cart, creating one when none exists.
// The effective cart id travels back in the envelope so guests can persist it.
func getCartHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.GetOrCreate(c.Request.Context(), cartIDHeader(c), currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header(headerCartID, cart.ID)
		c.JSON(http.StatusOK, envelope{
			Success: true,
			Data:    cart,
			Message: "Cart retrieved successfully",
			CartID:  cart.ID,
		})
	}
}

func addCartItemHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "VALIDATION_ERROR", "invalid request body")
			return
		}
		productID := strings.TrimSpace(req.ProductID)
		if productID == "" {
			respondBadRequest(c, "VALIDATION_ERROR", "productId is required")
			return
		}
		quantity := 1
		if req.Quantity != nil {
			if *req.Quantity < 1 {
				respondBadRequest(c, "VALIDATION_ERROR", "quantity must be at least 1")
				return
			}
			quantity = *req.Quantity
		}

		cart, err := svc.GetOrCreate(c.Request.Context(), cartIDHeader(c), currentUserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		cart, err = svc.AddItem(c.Request.Context(), cart.ID, productID, quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header(headerCartID, cart.ID)
		c.JSON(http.StatusOK, envelope{
			Success: true,
			Data:    cart,
			Message: "Item added to cart",
			CartID:  cart.ID,
		})
	}
}

func updateCartItemHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID := cartIDHeader(c)
		if cartID == "" {
			respondBadRequest(c, "CART_ID_REQUIRED", headerCartID+" header is required")
			return
		}
		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			respondBadRequest(c, "VALIDATION_ERROR", "quantity is required")
			return
		}
		if *req.Quantity < 0 {
			respondBadRequest(c, "VALIDATION_ERROR", "quantity must not be negative")
			return
		}

		cart, err := svc.UpdateQuantity(c.Request.Context(), cartID, strings.TrimSpace(c.Param("productId")), *req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		message := "Quantity updated"
		if *req.Quantity == 0 {
			message = "Item removed from cart"
		}
		respond(c, http.StatusOK, cart, message)
	}
}

func removeCartItemHandler(svc *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID := cartIDHeader(c)
		if cartID == "" {
			respondBadRequest(c, "CART_ID_REQUIRED", headerCartID+" header is required")
			return
		}
		cart, err := svc.RemoveItem(c.Request.Context(), cartID, strings.TrimSpace(c.Param("productId")))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, cart, "Item removed from cart")
	}
}
