package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tshirtshop/internal/config"
	"tshirtshop/internal/db"
	"tshirtshop/internal/httpserver"
	"tshirtshop/internal/payment"
	cartrepo "tshirtshop/internal/repository/cart"
	orderrepo "tshirtshop/internal/repository/order"
	productrepo "tshirtshop/internal/repository/product"
	cartsvc "tshirtshop/internal/service/cart"
	checkoutsvc "tshirtshop/internal/service/checkout"
	ordersvc "tshirtshop/internal/service/order"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	cartService := cartsvc.New(cartRepo, productRepo)
	checkoutService := checkoutsvc.New(orderRepo, cartService, cfg.ClearCartAfterCheckout)
	orderService := ordersvc.New(orderRepo)
	gateway := payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.UIURL, logger)
	if !gateway.Configured() {
		logger.Printf("stripe not configured, orders will stay pending")
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:     cartService,
		CheckoutSvc: checkoutService,
		OrderSvc:    orderService,
		ProductRepo: productRepo,
		Payments:    gateway,
	}, cfg.UIURL)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
