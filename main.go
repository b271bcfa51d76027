package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teghlab/otp-lab/internal/config"
	"github.com/teghlab/otp-lab/internal/domain"
	"github.com/teghlab/otp-lab/internal/handler"
	"github.com/teghlab/otp-lab/internal/repository/redis"
	"github.com/teghlab/otp-lab/internal/repository/sqlite"
	"github.com/teghlab/otp-lab/internal/service"
	"github.com/teghlab/otp-lab/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied", "path", cfg.DatabasePath)

	var otps domain.OTPRepository = db.OTPs()
	var rdb *redis.Client
	if cfg.UseRedis() {
		rdb, err = redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		otps = rdb.OTPs()
		slog.Info("otp store: redis", "addr", cfg.RedisAddr)
	} else {
		go db.OTPs().RunSweeper(ctx, cfg.OTPSweepInterval)
		slog.Info("otp store: sqlite", "sweep_interval", cfg.OTPSweepInterval)
	}

	var sessions domain.SessionStore
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		sessions = rdb.Sessions(cfg.SessionIdleTimeout)
	case config.SessionStoreMemory:
		mem := session.NewMemoryStore(cfg.SessionIdleTimeout)
		defer mem.Close()
		sessions = mem
	default:
		go db.Sessions().RunSweeper(ctx, cfg.SessionSweepInterval, cfg.SessionIdleTimeout)
		sessions = db.Sessions()
	}
	slog.Info("session store", "backend", cfg.SessionStore)

	authService := service.NewAuthService(db.Users(), otps, service.LogSender{}, cfg.BcryptCost)
	userService := service.NewUserService(db.Users())
	sessionManager := session.NewManager(sessions, cfg.SessionSecret, cfg.CookieSecure)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, userService, sessionManager)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(handler.CORS(cfg.CORSAllowedOrigins)(handler.SecurityHeaders(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
