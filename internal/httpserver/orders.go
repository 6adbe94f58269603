package httpserver

import (
	"net/http"
	"strings"

	ordersvc "tshirtshop/internal/service/order"

	"github.com/gin-gonic/gin"
)

type updateStatusRequest struct {
	Status string `json:"status"`
}

// getOrderHandler fetches an order by raw id. Guest orders are reachable this
// way on purpose: the unguessable UUID acts as the capability for the
// confirmation page.
func getOrderHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ord, err := svc.Get(c.Request.Context(), strings.TrimSpace(c.Param("orderId")))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, ord, "Order retrieved")
	}
}

// listOrdersHandler returns the authenticated user's order history.
func listOrdersHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		if userID == nil {
			c.JSON(http.StatusUnauthorized, envelope{
				Success: false,
				Error:   &apiError{Code: "UNAUTHORIZED", Message: "authentication required"},
			})
			return
		}
		orders, err := svc.ListByUser(c.Request.Context(), *userID)
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, orders, "Orders retrieved")
	}
}

func updateOrderStatusHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
			respondBadRequest(c, "STATUS_REQUIRED", "status is required")
			return
		}
		ord, err := svc.UpdateStatus(c.Request.Context(), strings.TrimSpace(c.Param("orderId")), strings.TrimSpace(req.Status))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, ord, "Order status updated")
	}
}

func cancelOrderHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ord, err := svc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("orderId")))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, ord, "Order cancelled")
	}
}

func refundOrderHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ord, err := svc.Refund(c.Request.Context(), strings.TrimSpace(c.Param("orderId")))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, ord, "Order refunded")
	}
}

func adminListOrdersHandler(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.ListAll(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, orders, "Orders retrieved")
	}
}
