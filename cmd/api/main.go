package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/gueststore"
	"storefront/internal/httpserver"
	"storefront/internal/identity"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	offerrepo "storefront/internal/repository/offer"
	productrepo "storefront/internal/repository/product"
	wholesalerepo "storefront/internal/repository/wholesale"
	catalogsvc "storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	sessionsvc "storefront/internal/service/session"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	guestStore := buildGuestStore(cfg, logger)
	feed := buildFeed(cfg, logger)
	if closer, ok := feed.(io.Closer); ok {
		defer closer.Close()
	}

	cartRepo := cartrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool)
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	offerRepo := offerrepo.NewPostgres(dbpool)
	wholesaleRepo := wholesalerepo.NewPostgres(dbpool)

	catalogService := catalogsvc.New(productRepo, categoryRepo, offerRepo, logger)
	checkoutService := checkoutsvc.New(productRepo, shippingMethods(), cfg.VATRate)
	cartManager := cart.NewManager(cartRepo, guestStore, feed, logger)
	defer cartManager.Close()

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Catalog:     catalogService,
		Checkout:    checkoutService,
		Carts:       cartManager,
		RemoteCarts: cartRepo,
		Wholesale:   wholesaleRepo,
		Feed:        feed,
		Sessions:    sessionsvc.NewManager(cfg.GuestCartTTL),
		Verifier:    identity.NewVerifier(cfg.JWTSecret),
	})
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// buildGuestStore uses redis when configured, falling back to the in-memory
// store for single-instance deployments.
func buildGuestStore(cfg config.Config, logger *log.Logger) gueststore.Store {
	if cfg.RedisAddr == "" {
		logger.Printf("REDIS_ADDR not set, guest carts held in memory")
		return gueststore.NewMemory()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return gueststore.NewRedis(client, cfg.GuestCartTTL)
}

// buildFeed uses rabbitmq when configured, falling back to the in-process
// feed for single-instance deployments.
func buildFeed(cfg config.Config, logger *log.Logger) events.Feed {
	if cfg.AMQPURL == "" {
		logger.Printf("AMQP_URL not set, cart change feed held in process")
		return events.NewMemory()
	}
	feed, err := events.DialRabbit(cfg.AMQPURL, logger)
	if err != nil {
		logger.Fatalf("connect to rabbitmq: %v", err)
	}
	return feed
}

func shippingMethods() []domain.ShippingMethod {
	return []domain.ShippingMethod{
		{Key: "standard", Name: "Standard (3-5 days)", Cost: decimal.RequireFromString("4.90")},
		{Key: "express", Name: "Express (1-2 days)", Cost: decimal.RequireFromString("9.90")},
		{Key: "pickup", Name: "Local pickup", Cost: decimal.Zero},
	}
}
