package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bossops/opsdeck/internal/auth"
	"github.com/bossops/opsdeck/internal/config"
	"github.com/bossops/opsdeck/internal/credit"
	"github.com/bossops/opsdeck/internal/httpapi"
	"github.com/bossops/opsdeck/internal/storage"
	"github.com/bossops/opsdeck/internal/storage/memory"
	"github.com/bossops/opsdeck/internal/storage/postgrest"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	// Backend selection happens exactly once; a failed startup probe is
	// logged but never switches backends or aborts the process. Individual
	// requests fail on their own if the remote stays unreachable.
	var store storage.Store
	if cfg.UseSupabase() {
		remote, err := postgrest.New(postgrest.Config{
			ProjectURL: cfg.SupabaseURL,
			APIKey:     cfg.SupabaseServiceKey,
		})
		if err != nil {
			logger.Error("invalid supabase config", "err", err)
			os.Exit(1)
		}
		pingCtx, cancel := context.WithTimeout(ctx, postgrest.DefaultTimeout)
		if err := remote.Ping(pingCtx); err != nil {
			logger.Warn("supabase connectivity probe failed; requests will be attempted anyway", "err", err)
		} else {
			logger.Info("supabase connected")
		}
		cancel()
		store = remote
	} else {
		mem := memory.New()
		seedFixtures(mem)
		store = mem
		logger.Warn("supabase not configured, using in-memory storage")
	}
	logger.Info("storage backend selected", "backend", store.Backend())

	users := auth.NewUsers(store)
	if err := users.EnsureDefaultAdmin(ctx); err != nil {
		logger.Warn("could not ensure default admin account", "err", err)
	}

	creditSvc := credit.New(store)
	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	api := httpapi.New(store, creditSvc, users, jwtSvc, cfg.CORSAllowedOrigins, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("opsdeck service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
}

// seedFixtures loads the development roster the frontend expects when no
// remote backend is configured.
func seedFixtures(mem *memory.Store) {
	mem.Seed(storage.CollectionMembers,
		storage.Row{"id": "m1", "name": "Summer Zhang", "avatar": "https://picsum.photos/seed/m1/100", "role": "Gold Operator", "contact": "13800138001", "creditScore": 120},
		storage.Row{"id": "m2", "name": "Leo Li", "avatar": "https://picsum.photos/seed/m2/100", "role": "Senior Store Manager", "contact": "13800138002", "creditScore": 95},
		storage.Row{"id": "m3", "name": "Vivian Wang", "avatar": "https://picsum.photos/seed/m3/100", "role": "Junior Operator", "contact": "13800138003", "creditScore": 55},
		storage.Row{"id": "m4", "name": "Ray Zhao", "avatar": "https://picsum.photos/seed/m4/100", "role": "Visual Designer", "contact": "13800138004", "creditScore": 160},
	)
}

func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg config.Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
