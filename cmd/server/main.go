package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/coffee-delivery/internal"
	"github.com/dukerupert/coffee-delivery/internal/address"
	"github.com/dukerupert/coffee-delivery/internal/cookie"
	"github.com/dukerupert/coffee-delivery/internal/domain"
	"github.com/dukerupert/coffee-delivery/internal/events"
	"github.com/dukerupert/coffee-delivery/internal/handler"
	"github.com/dukerupert/coffee-delivery/internal/handler/storefront"
	"github.com/dukerupert/coffee-delivery/internal/jobs"
	"github.com/dukerupert/coffee-delivery/internal/memory"
	"github.com/dukerupert/coffee-delivery/internal/middleware"
	"github.com/dukerupert/coffee-delivery/internal/postgres"
	"github.com/dukerupert/coffee-delivery/internal/router"
	"github.com/dukerupert/coffee-delivery/internal/routes"
	"github.com/dukerupert/coffee-delivery/internal/service"
	"github.com/dukerupert/coffee-delivery/internal/session"
	"github.com/dukerupert/coffee-delivery/internal/shipping"
	"github.com/dukerupert/coffee-delivery/internal/telemetry"
	"github.com/dukerupert/coffee-delivery/internal/theme"
	"github.com/dukerupert/coffee-delivery/web"
)

const metricsNamespace = "coffee_delivery"

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Error tracking
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	telemetry.InitCheckoutMetrics(metricsNamespace)

	// Theme
	storeTheme := theme.Default()
	if cfg.ThemeFile != "" {
		storeTheme, err = theme.Load(cfg.ThemeFile, storeTheme)
		if err != nil {
			return fmt.Errorf("failed to load theme: %w", err)
		}
		logger.Info("Theme loaded", "file", cfg.ThemeFile, "name", storeTheme.Name)
	}

	// Order storage
	var (
		orders domain.OrderRepository
		pool   *pgxpool.Pool
	)
	if cfg.DatabaseUrl != "" {
		logger.Info("Connecting to database...")
		pool, err = pgxpool.New(ctx, cfg.DatabaseUrl)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		logger.Info("Database connection established")

		// Migrations run over database/sql on top of the same pool
		logger.Info("Running database migrations...")
		sqlDB := stdlib.OpenDBFromPool(pool)
		if err := internal.RunMigrations(sqlDB); err != nil {
			sqlDB.Close()
			return fmt.Errorf("migration failed: %w", err)
		}
		sqlDB.Close()
		logger.Info("Database migrations completed successfully")

		orders = postgres.NewOrderRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, orders are kept in memory")
		orders = memory.NewOrderRepository()
	}

	// Order events
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		logger.Info("Connecting to NATS...", "url", cfg.NATS.URL)
		nc, err := events.Connect(cfg.NATS.URL, logger)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer nc.Drain()
		publisher = events.NewNATSPublisher(nc, cfg.NATS.Subject)
		logger.Info("Order events enabled", "subject", cfg.NATS.Subject)
	}

	// Postal-code directory
	directory := address.NewViaCEPClient(address.ViaCEPConfig{
		BaseURL: cfg.Lookup.BaseURL,
		Timeout: cfg.Lookup.Timeout,
	})

	// Delivery fee
	shippingProvider := shipping.NewFlatRateProvider([]shipping.FlatRate{
		{
			ServiceName: "Entrega",
			ServiceCode: "flat",
			CostCents:   cfg.Delivery.FeeCents,
			DaysMin:     cfg.Delivery.DaysMin,
			DaysMax:     cfg.Delivery.DaysMax,
		},
	})

	// Services
	catalog := service.NewStaticCatalog(service.DefaultProducts())
	cartService := service.NewCartService(catalog, shippingProvider)
	orderService := service.NewOrderService(orders, address.NewBasicValidator(), shippingProvider, publisher, logger)

	// Sessions
	sessions := session.NewStore(directory, cfg.Session.TTL, logger)
	defer sessions.Close()
	cookies := cookie.NewConfig(cfg.Session.CookieDomain, cfg.Session.CookieSecure)

	// Load templates with renderer
	renderer, err := handler.NewRenderer(web.Templates, handler.TemplateFuncs(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	metrics := middleware.NewMetrics(metricsNamespace, prometheus.DefaultRegisterer)

	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env == "dev" {
		securityConfig.HSTS = 0 // no TLS locally
	}

	lookupLimiter := middleware.NewRateLimiter(middleware.LookupRateLimiterConfig(), logger)

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithClientIP(cfg.TrustProxy),
		middleware.WithRequestLogger(logger),
		telemetry.SentryMiddleware(middleware.GetRequestID),
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		middleware.MaxBodySize(),
		router.Logger(logger),
		middleware.WithSession(sessions, cookies, cfg.Session.TTL),
		middleware.CSRF,
	)

	routes.RegisterStorefrontRoutes(r, routes.StorefrontDeps{
		HomeHandler:              storefront.NewHomeHandler(catalog, cartService, renderer),
		CartHandler:              storefront.NewCartHandler(cartService),
		CheckoutHandler:          storefront.NewCheckoutHandler(renderer, cartService, orderService, sessions, directory, cfg.Lookup.Timeout),
		OrderConfirmationHandler: storefront.NewOrderConfirmationHandler(renderer, orderService),
		StylesheetHandler:        storefront.StylesheetHandler(storeTheme),
		LookupLimiter:            lookupLimiter.Middleware,
	})

	// Infrastructure routes skip sessions and CSRF
	infra := router.New(router.Recovery(logger), middleware.RequestID)
	infra.StaticFS("/static/", web.Static)
	infra.Get("/metrics", metrics.Handler().ServeHTTP)
	infra.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if pool != nil {
			pingCtx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(pingCtx); err != nil {
				logger.Error("health check failed", "error", err)
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux := http.NewServeMux()
	mux.Handle("/static/", infra)
	mux.Handle("GET /static/theme.css", r)
	mux.Handle("GET /metrics", infra)
	mux.Handle("GET /healthz", infra)
	mux.Handle("/", r)
	r.NotFound(handler.NotFoundResponse)

	// ==========================================================================
	// Background workers
	// ==========================================================================

	cleanupWorkers := jobs.NewCleanupWorkers(sessions, lookupLimiter, jobs.CleanupConfig{
		SessionInterval:   cfg.Session.SweepInterval,
		RateLimitInterval: time.Minute,
		Timeout:           30 * time.Second,
	}, logger)

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, w := range cleanupWorkers {
		g.Go(func() error {
			return ignoreCanceled(w.Start(gctx))
		})
	}
	g.Go(func() error {
		logger.Info("Starting server", "address", srv.Addr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
