package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/BradenHooton/lumina/internal/auth"
	"github.com/BradenHooton/lumina/internal/config"
	"github.com/BradenHooton/lumina/internal/credentials"
	"github.com/BradenHooton/lumina/internal/database"
	"github.com/BradenHooton/lumina/internal/handlers"
	middlewareCustom "github.com/BradenHooton/lumina/internal/middleware"
	"github.com/BradenHooton/lumina/internal/routes"
	"github.com/BradenHooton/lumina/internal/search"
	"github.com/BradenHooton/lumina/internal/services"
	"github.com/BradenHooton/lumina/internal/store"
	pkghttp "github.com/BradenHooton/lumina/pkg/http"
	pkglogger "github.com/BradenHooton/lumina/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Server.SlogLevel()}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("store", cfg.Store.Backend),
	)

	// Initialize persistence
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	st, err := openStore(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.Close()

	auditLogger := pkglogger.NewAuditLogger(logger)

	registry := credentials.DefaultRegistry()
	if !slices.Contains(registry.Identifiers(), cfg.Auth.DistinguishedPrincipal) {
		logger.Warn("distinguished principal is not registered; system reset is unreachable",
			slog.String("principal", pkglogger.MaskIdentifier(cfg.Auth.DistinguishedPrincipal)))
	}

	// Initialize services
	lockoutService := services.NewLockoutService(st, time.Now, logger, auditLogger)
	lockoutService.OnUnlock(func() {
		logger.Info("system unlocked")
	})
	defer lockoutService.Close()

	firewallService := services.NewFirewallService(st, time.Now, logger, auditLogger)
	historyService := services.NewHistoryService(st, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenExpiry)

	authService := services.NewAuthService(
		registry,
		lockoutService,
		firewallService,
		historyService,
		st,
		tokenManager,
		services.AuthConfig{
			LoginLatency:           auth.Latency{Base: cfg.Auth.LoginLatency},
			ResetLatency:           auth.Latency{Base: cfg.Auth.ResetLatency},
			DistinguishedPrincipal: cfg.Auth.DistinguishedPrincipal,
		},
		logger,
		auditLogger,
	)

	pipeline := search.NewPipeline(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())))
	searchService := services.NewSearchService(
		pipeline,
		firewallService,
		historyService,
		auth.Latency{Base: cfg.Search.Latency},
		logger,
		auditLogger,
	)

	// Restore persisted state
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	firewallService.Load(ctx)
	historyService.Load(ctx)
	authService.RestoreSession(ctx)
	cancel()

	// Initialize handlers
	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Search:   handlers.NewSearchHandler(searchService),
		Firewall: handlers.NewFirewallHandler(firewallService),
		Admin:    handlers.NewAdminHandler(authService),
		Health:   handlers.NewHealthHandler(st, cfg.Store.Backend),
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.ClientIP(&pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}))
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, h, tokenManager, authService, middlewareCustom.RateLimitConfig{
		RequestsPerMinute: cfg.Auth.RateLimitPerMinute,
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", slog.Any("error", err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		return
	}

	logger.Info("server stopped gracefully")
}

// openStore connects the configured persistence backend
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, state, err := database.Open(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if state.Entries == 0 {
			logger.Info("kv store is empty; defaults will be seeded")
		}
		return store.NewPostgresStore(db), nil
	case config.StoreBackendRedis:
		rs, err := store.NewRedisStore(ctx, cfg.Store.RedisURL)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case config.StoreBackendMemory:
		logger.Warn("using in-memory store; state is lost on restart")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
