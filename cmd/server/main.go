package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spa-directory/internal/auth"
	"spa-directory/internal/catalog"
	"spa-directory/internal/config"
	"spa-directory/internal/logging"
	"spa-directory/internal/notify"
	"spa-directory/internal/web"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"catalog_path", cfg.Catalog.Path,
		"mail_enabled", cfg.Mail.Enabled,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Load the catalog before serving; a bad dataset is fatal at startup.
	store := catalog.NewStore()
	if err := store.Load(cfg.Catalog.Path); err != nil {
		slog.Error("failed to load catalog", "path", cfg.Catalog.Path, "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "path", cfg.Catalog.Path, "spas", store.Snapshot().Len())

	// Connect the user/session store.
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to database")

	authSvc := auth.NewService(auth.NewStore(pool), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)

	var mailer notify.Mailer
	if cfg.Mail.Enabled {
		sesMailer, err := notify.NewSESMailer(ctx, cfg.Mail.Region, cfg.Mail.Sender)
		if err != nil {
			slog.Error("failed to configure mailer", "error", err)
			os.Exit(1)
		}
		mailer = sesMailer
	}
	notifier := notify.NewNotifier(mailer, cfg.Mail.SendTimeout)

	server := web.NewServer(cfg, store, authSvc, notifier)

	// Background session purge.
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go purgeSessions(jobCtx, authSvc)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Let in-flight confirmation emails drain.
		notifier.Wait()
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// purgeSessions periodically removes expired session rows.
func purgeSessions(ctx context.Context, authSvc *auth.Service) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := authSvc.PurgeExpiredSessions(ctx)
			if err != nil {
				slog.Warn("session purge failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("expired sessions purged", "count", removed)
			}
		}
	}
}
