package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kitforge/backend/internal/client"
	"github.com/kitforge/backend/internal/config"
	"github.com/kitforge/backend/internal/db"
	"github.com/kitforge/backend/internal/db/sqlite"
	"github.com/kitforge/backend/internal/handler"
	"github.com/kitforge/backend/internal/logging"
	"github.com/kitforge/backend/internal/ratelimit"
	"github.com/kitforge/backend/internal/service"
	"github.com/kitforge/backend/internal/token"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

// @title kitforge API
// @version 1.0
// @description Authentication backend: registration, login, token rotation, email verification and password reset.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "kitforge",
		Short:        "kitforge authentication backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd.Context())
			},
		},
		newCreateAdminCmd(),
	)
	return root
}

// bootstrap loads config and opens the store (migrated) for every subcommand.
func bootstrap(ctx context.Context) (config.Config, *slog.Logger, service.CredentialStore, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, nil, err
	}
	log := logging.New(cfg.Log)
	slog.SetDefault(log)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		return config.Config{}, nil, nil, nil, err
	}
	return cfg, log, store, closeStore, nil
}

func openStore(ctx context.Context, cfg config.Config) (service.CredentialStore, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return db.New(pool), pool.Close, nil
	}
}

func runMigrate(ctx context.Context) error {
	_, log, _, closeStore, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("migrations applied")
	return nil
}

func newIssuer(cfg config.AuthConfig) (*token.Issuer, error) {
	return token.NewIssuer(token.Config{
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		PurposeSecret: cfg.PurposeSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		Issuer:        "kitforge",
	})
}

func newAuthService(cfg config.Config, log *slog.Logger, store service.CredentialStore) (*service.AuthService, error) {
	issuer, err := newIssuer(cfg.Auth)
	if err != nil {
		return nil, err
	}

	var mailer service.Mailer
	switch cfg.Mail.Provider {
	case client.MailProviderHTTP:
		mailer = client.NewHTTPMailer(cfg.Mail)
	default:
		mailer = client.NewLogMailer(log)
	}

	return service.NewAuthService(store, issuer, mailer, log, service.AuthOptions{
		BcryptCost: cfg.Auth.BcryptCost,
		AppName:    cfg.App.Name,
		BaseURL:    cfg.App.BaseURL,
	})
}

func newLimiter(ctx context.Context, cfg config.Config, log *slog.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.Redis.URL == "" {
		log.Info("rate limiting in memory; set REDIS_URL to share limits across instances")
		return ratelimit.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window), func() {}, nil
	}
	rdb, err := ratelimit.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	limiter := ratelimit.NewRedisLimiter(rdb, cfg.App.Name+":ratelimit", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	return limiter, func() { _ = rdb.Close() }, nil
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, store, closeStore, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	authSvc, err := newAuthService(cfg, log, store)
	if err != nil {
		log.Error("failed to build auth service", "error", err)
		return err
	}

	if cfg.Auth.AdminEmail != "" {
		created, err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			log.Error("failed to seed admin account", "error", err)
			return err
		}
		if created {
			log.Info("admin account seeded", "email", cfg.Auth.AdminEmail)
		}
	}

	limiter, closeLimiter, err := newLimiter(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		return err
	}
	defer closeLimiter()

	var presigner service.Presigner
	if cfg.Storage.Enabled() {
		p, err := client.NewS3Presigner(ctx, cfg.Storage)
		if err != nil {
			log.Error("failed to configure avatar storage", "error", err)
			return err
		}
		presigner = p
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.RouterConfig{
		Auth:           authSvc,
		Users:          service.NewUserService(store, log),
		Avatars:        service.NewAvatarService(presigner, log),
		DB:             store,
		Limiter:        limiter,
		Log:            log,
		AllowedOrigins: cfg.App.AllowedOrigins,
		Production:     cfg.App.IsProduction(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.App.Env, "db", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := authSvc.Wait(shutdownCtx); err != nil {
		log.Warn("pending emails were not sent before shutdown", "error", err)
	}
	return nil
}
