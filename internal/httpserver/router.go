package httpserver

import (
	"log"
	"time"

	"tshirtshop/internal/payment"
	productrepo "tshirtshop/internal/repository/product"
	cartsvc "tshirtshop/internal/service/cart"
	checkoutsvc "tshirtshop/internal/service/checkout"
	ordersvc "tshirtshop/internal/service/order"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps carries the services the handlers are built on.
type Deps struct {
	CartSvc     *cartsvc.Service
	CheckoutSvc *checkoutsvc.Service
	OrderSvc    *ordersvc.Service
	ProductRepo productrepo.Repository
	Payments    payment.Gateway
}

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, uiURL string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{uiURL},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", headerCartID, headerUserID, headerUserRole},
		ExposeHeaders:    []string{headerCartID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api/v1")
	api.Use(identityMiddleware())

	api.GET("/products", listProductsHandler(deps.ProductRepo))
	api.GET("/products/:productId", getProductHandler(deps.ProductRepo))

	api.GET("/cart", getCartHandler(deps.CartSvc))
	api.POST("/cart/items", addCartItemHandler(deps.CartSvc))
	api.PATCH("/cart/items/:productId", updateCartItemHandler(deps.CartSvc))
	api.DELETE("/cart/items/:productId", removeCartItemHandler(deps.CartSvc))

	api.GET("/checkout/summary", checkoutSummaryHandler(deps.CheckoutSvc))
	api.POST("/checkout", createOrderHandler(deps.CheckoutSvc, deps.Payments))
	api.POST("/checkout/confirm", confirmPaymentHandler(deps.OrderSvc, deps.Payments))

	api.POST("/webhooks/stripe", stripeWebhookHandler(deps.OrderSvc, deps.Payments, logger))

	api.GET("/orders", listOrdersHandler(deps.OrderSvc))
	api.GET("/orders/:orderId", getOrderHandler(deps.OrderSvc))
	api.PATCH("/orders/:orderId/status", updateOrderStatusHandler(deps.OrderSvc))
	api.POST("/orders/:orderId/cancel", cancelOrderHandler(deps.OrderSvc))

	admin := api.Group("/admin")
	admin.Use(adminMiddleware())
	admin.GET("/orders", adminListOrdersHandler(deps.OrderSvc))
	admin.PATCH("/orders/:orderId/status", updateOrderStatusHandler(deps.OrderSvc))
	admin.POST("/orders/:orderId/refund", refundOrderHandler(deps.OrderSvc))
	admin.POST("/products", createProductHandler(deps.ProductRepo))
	admin.PATCH("/products/:productId", updateProductHandler(deps.ProductRepo))

	return router
}
