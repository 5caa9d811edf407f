package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	_ "github.com/sweetshop/sweet-inventory/docs" // swagger docs

	"github.com/sweetshop/sweet-inventory/internal/api"
	"github.com/sweetshop/sweet-inventory/internal/api/handler"
	"github.com/sweetshop/sweet-inventory/internal/core/ports"
	"github.com/sweetshop/sweet-inventory/internal/core/service"
	"github.com/sweetshop/sweet-inventory/internal/infrastructure/db/memory"
	"github.com/sweetshop/sweet-inventory/internal/infrastructure/db/mongo"
	"github.com/sweetshop/sweet-inventory/internal/infrastructure/db/mysql"
	"github.com/sweetshop/sweet-inventory/internal/infrastructure/db/redis"
	"github.com/sweetshop/sweet-inventory/internal/pkg/config"
	"github.com/sweetshop/sweet-inventory/pkg/logger"
)

// @title Sweet Shop Inventory API
// @version 1.0
// @description Catalog, stock and session management for a sweet shop.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey CookieAuth
// @in header
// @name Cookie
// @description Session cookie auth-token set by /auth/register and /auth/login.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sweet-inventory: %v\n", err)
		os.Exit(1)
	}
}

// catalogStore is what every store driver provides to the services.
type catalogStore struct {
	users      ports.UserRepository
	categories ports.CategoryRepository
	sweets     ports.SweetRepository
	pinger     handler.Pinger
	close      func(context.Context) error
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "sweet-inventory",
	})

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("store close failed")
		}
	}()

	readiness := map[string]handler.Pinger{cfg.StoreDriver: store.pinger}

	var replay ports.PurchaseReplayStore
	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, idempotency keys disabled")
		} else {
			defer client.Close()
			replayStore := redis.NewPurchaseReplayStore(client)
			replay = replayStore
			readiness["redis"] = replayStore
		}
	}

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(store.users, tokens, logger.Component("auth"))
	sweetService := service.NewSweetService(store.sweets, store.categories, replay, logger.Component("sweets"))
	categoryService := service.NewCategoryService(store.categories, logger.Component("categories"))

	e := api.NewRouter(api.Deps{
		Auth:       authService,
		Sweets:     sweetService,
		Categories: categoryService,
		Readiness:  readiness,
		Cookie: handler.CookieOptions{
			TTL:    cfg.TokenTTL,
			Secure: cfg.IsProduction(),
		},
		LoginRatePerMinute: cfg.LoginRatePerMin,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("store", cfg.StoreDriver).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*catalogStore, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		store := mongo.NewStore(client, db)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")
		return &catalogStore{
			users:      store.Users(),
			categories: store.Categories(),
			sweets:     store.Sweets(),
			pinger:     store,
			close:      store.Close,
		}, nil

	case config.DriverMySQL:
		db, err := mysql.Open(cfg.MySQL.DSN)
		if err != nil {
			return nil, err
		}
		store := mysql.NewStore(db)
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		log.Info().Msg("mysql store ready")
		return &catalogStore{
			users:      store.Users(),
			categories: store.Categories(),
			sweets:     store.Sweets(),
			pinger:     store,
			close:      store.Close,
		}, nil

	default:
		store := memory.New()
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return &catalogStore{
			users:      store.Users(),
			categories: store.Categories(),
			sweets:     store.Sweets(),
			pinger:     store,
			close:      func(context.Context) error { return nil },
		}, nil
	}
}
