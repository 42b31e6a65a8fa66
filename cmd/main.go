package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/suteetoe/inventory-service/internal/audit"
	"github.com/suteetoe/inventory-service/internal/handler"
	mid "github.com/suteetoe/inventory-service/internal/middleware"
	"github.com/suteetoe/inventory-service/internal/model"
	"github.com/suteetoe/inventory-service/internal/service"
	"github.com/suteetoe/inventory-service/internal/uow"
	"github.com/suteetoe/inventory-service/pkg/config"
	"github.com/suteetoe/inventory-service/pkg/database"
	"github.com/suteetoe/inventory-service/pkg/logger"
	"github.com/suteetoe/inventory-service/pkg/metrics"
	"github.com/suteetoe/inventory-service/pkg/password"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "inventory-service"

func main() {
	// Load configuration
	appConfig, err := config.Load(serviceName)
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.InitLogger(appConfig)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("Starting "+serviceName, appConfig.LogConfig()...)

	// Initialize Prometheus metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(appConfig.Metrics.Prefix, registry)
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.Open(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established", zap.String("adapter", appConfig.DB.Adapter))

	// Core: audit store on its own handle, interceptors around every unit of work
	auditStore := audit.NewStore(db)
	manager := uow.NewManager(db,
		uow.Metrics(appMetrics),
		audit.Interceptor(auditStore, log, appMetrics),
		uow.Logging(log),
	)
	policy := model.NewPolicy(appConfig.Inventory.AllowedRates(), appConfig.Inventory.DefaultCurrency)
	inventory := service.New(manager, policy, password.NewBcrypt(0), log, appMetrics, service.Options{
		RedirectSubcategories: appConfig.Inventory.RedirectSubcategories,
	})

	e := newServer(handler.New(inventory, auditStore), appMetrics, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		port := appConfig.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	cleaner := audit.NewCleaner(auditStore, appConfig.Audit.LogLimit, appConfig.Audit.LogInterval, log, appMetrics)
	group.Go(func() error {
		return cleaner.Run(ctx)
	})

	group.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("Server error", zap.Error(err))
		return
	}
	log.Info("Server stopped")
}

func newServer(h *handler.Handler, appMetrics *metrics.Metrics, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestID)
	e.Use(logger.Middleware(log))
	e.Use(appMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(appMetrics.Handler()))

	h.Register(e)
	return e
}
