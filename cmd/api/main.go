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

	"identity-platform/internal/accounts"
	"identity-platform/internal/applications"
	"identity-platform/internal/audit"
	"identity-platform/internal/auth"
	"identity-platform/internal/config"
	"identity-platform/internal/httpapi"
	"identity-platform/internal/keys"
	"identity-platform/internal/ratelimit"
	"identity-platform/internal/refresh"
	"identity-platform/internal/security"
	"identity-platform/internal/users"
	"identity-platform/pkg/logger"
	"identity-platform/pkg/password"
	"identity-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Signing keys: repair or generate on boot, then load.
	if err := keys.Ensure(cfg.Auth.KeysDir, log); err != nil {
		log.Error("key setup failed", "err", err)
		os.Exit(1)
	}
	pair, err := keys.Load(cfg.Auth.KeysDir)
	if err != nil {
		log.Error("key load failed", "err", err)
		os.Exit(1)
	}
	tokens, err := auth.NewManager(pair, cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Stores and services
	userStore := users.NewPostgresStore(db)
	hasher := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	refreshSvc := refresh.NewService(refresh.NewPostgresStore(db), cfg.Auth.RefreshTTL)
	authSvc := auth.NewService(userStore, hasher, tokens, refreshSvc)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	throttle := ratelimit.NewLoginLimiter(rdb, cfg.Throttle.MaxAttempts, cfg.Throttle.Window)

	registry := security.NewRegistry(log).
		Register(security.UserVoter{}).
		Register(security.AccountVoter{}).
		Register(security.ApplicationVoter{})
	enforcer := security.NewEnforcer(registry, auditSvc)

	handlers := httpapi.Handlers{
		Auth:         authSvc,
		Users:        users.NewService(userStore, hasher),
		Accounts:     accounts.NewService(accounts.NewPostgresStore(db)),
		Applications: applications.NewService(applications.NewPostgresStore(db)),
		Audit:        auditSvc,
		Throttle:     throttle,
	}
	guard := auth.NewAuthenticator(tokens, userStore)

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, handlers, guard, enforcer, db, rdb)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
