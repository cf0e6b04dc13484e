package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/vipauth/internal/auth"
	"github.com/ayush/vipauth/internal/config"
	"github.com/ayush/vipauth/internal/logging"
	"github.com/ayush/vipauth/internal/server"
	"github.com/ayush/vipauth/internal/store"
	"github.com/ayush/vipauth/internal/views"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server.exit", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logging.New(os.Stdout, cfg.LogLevel)
	ctx := context.Background()

	// ── User store ───────────────────────────────────────────
	users, closeUsers, err := openUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeUsers()

	// ── Sessions ─────────────────────────────────────────────
	backend, closeSessions, err := openSessionBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()
	sessions := auth.NewSessionStore(backend, cfg.SessionTTL, cfg.CookieSecure)

	// ── Handlers ─────────────────────────────────────────────
	renderer, err := views.New()
	if err != nil {
		return err
	}
	authHandler := auth.NewHandler(users, sessions, auth.NewBcryptHasher(cfg.BcryptCost), renderer, log)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: server.NewRouter(server.Deps{
			Auth:        authHandler,
			Sessions:    sessions,
			Log:         log,
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server.listening", "addr", srv.Addr, "user_store", cfg.UserStore, "session_store", cfg.SessionStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	log.Info("server.shutdown")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func openUserStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (auth.UserStore, func(), error) {
	switch cfg.UserStore {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return pg, pool.Close, nil

	case config.StoreMemory:
		log.Warn("store.memory", "msg", "users are kept in memory and lost on restart")
		return store.NewMemoryStore(), func() {}, nil

	default:
		client, err := store.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		mg := store.NewMongoStore(client.Database(cfg.MongoDB))
		if err := mg.Migrate(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mongo migrate: %w", err)
		}
		return mg, closeFn, nil
	}
}

func openSessionBackend(ctx context.Context, cfg *config.Config) (auth.SessionBackend, func(), error) {
	if cfg.SessionStore == config.StoreMemory {
		return auth.NewMemorySessions(), func() {}, nil
	}
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewRedisSessions(rdb), func() { _ = rdb.Close() }, nil
}
