package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antonminaichev/storefront/internal/address"
	"github.com/antonminaichev/storefront/internal/cart"
	"github.com/antonminaichev/storefront/internal/events"
	"github.com/antonminaichev/storefront/internal/logger"
	"github.com/antonminaichev/storefront/internal/order"
	"github.com/antonminaichev/storefront/internal/product"
	"github.com/antonminaichev/storefront/internal/router"
	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/storage/mongo"
	"github.com/antonminaichev/storefront/internal/storage/postgres"
	"github.com/antonminaichev/storefront/internal/user"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logger.Log.Fatal("storefront stopped", zap.Error(err))
	}
}

func openStorage(ctx context.Context, cfg *Config) (storage.Storage, error) {
	if cfg.UsesMongo() {
		return mongo.New(ctx, cfg.DatabaseURI, cfg.DatabaseName)
	}
	return postgres.NewPostgresStorage(ctx, cfg.DatabaseURI)
}

func run(args []string) error {
	// config errors must reach stderr before LOG_LEVEL is known
	if err := logger.Initialize("info"); err != nil {
		return err
	}

	// .env is optional
	_ = godotenv.Load()

	cfg, err := NewConfig(args)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store, err := openStorage(connectCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Log.Warn("failed to close storage", zap.Error(err))
		}
	}()

	var sink order.EventSink
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		pub := events.NewKafkaPublisher(brokers, cfg.KafkaOrdersTopic)
		defer pub.Close()
		dispatcher := events.NewDispatcher(pub, cfg.EventWorkers, 256)
		go dispatcher.Run(ctx)
		sink = dispatcher
		logger.Log.Info("order events enabled",
			zap.Strings("brokers", brokers),
			zap.String("topic", cfg.KafkaOrdersTopic),
		)
	}

	userSvc := user.NewService(store, []byte(cfg.JWTSecret), cfg.JWTTTL)
	productSvc := product.NewService(store)
	handlers := router.Handlers{
		User:    user.NewHandler(userSvc, cfg.Production()),
		Product: product.NewHandler(productSvc),
		Cart:    cart.NewHandler(cart.NewService(store, store)),
		Order:   order.NewHandler(order.NewService(store, store, store, store, sink)),
		Address: address.NewHandler(address.NewService(store)),
	}
	r := router.NewRouter(handlers, router.Config{
		JWTSecret:      []byte(cfg.JWTSecret),
		Users:          store,
		AllowedOrigins: cfg.Origins(),
	})

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("starting server", zap.String("address", srv.Addr), zap.Bool("mongo", cfg.UsesMongo()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		return err
	}
	logger.Log.Info("server stopped gracefully")
	return nil
}
