package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/odyssey-erp/masterdesk/internal/app"
	"github.com/odyssey-erp/masterdesk/internal/auth"
	"github.com/odyssey-erp/masterdesk/internal/backend"
	"github.com/odyssey-erp/masterdesk/internal/collection"
	"github.com/odyssey-erp/masterdesk/internal/dashboard"
	"github.com/odyssey-erp/masterdesk/internal/export"
	"github.com/odyssey-erp/masterdesk/internal/masterdata"
	"github.com/odyssey-erp/masterdesk/internal/masterdata/customers"
	"github.com/odyssey-erp/masterdesk/internal/masterdata/inventory"
	"github.com/odyssey-erp/masterdesk/internal/masterdata/units"
	"github.com/odyssey-erp/masterdesk/internal/observability"
	"github.com/odyssey-erp/masterdesk/internal/platform/cache"
	"github.com/odyssey-erp/masterdesk/internal/platform/db"
	"github.com/odyssey-erp/masterdesk/internal/shared"
	"github.com/odyssey-erp/masterdesk/internal/view"
	"github.com/odyssey-erp/masterdesk/jobs"
)

func main() {
	_ = godotenv.Load()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var auditDB *pgxpool.Pool
	if cfg.PGDSN != "" {
		auditDB, err = db.New(ctx, cfg.PGDSN, 4)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer auditDB.Close()
	}
	auditLogger := newAuditLogger(ctx, auditDB, logger)

	metrics := observability.NewMetrics()

	client := backend.NewClient(backend.Config{
		BaseURL:  cfg.BackendBaseURL,
		Locale:   cfg.BackendLocale,
		Timeout:  cfg.BackendTimeout,
		Logger:   logger,
		Recorder: metrics,
	})

	templates, err := view.NewEngine(view.WithDefaultLanguage(cfg.Language()))
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	sessionManager := shared.NewSessionManager(redisClient, "masterdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	collections := collection.NewStore(redisClient, cfg.SessionTTL)
	states := masterdata.NewStateStore(redisClient, cfg.SessionTTL, masterdata.WithSaveTimeout(2*cfg.BackendTimeout))

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	queue := jobs.NewClient(redisOpts)
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	links := export.NewLinks(redisClient, cfg.DownloadTTL, "/downloads/")
	exporter := export.NewExporter(export.Config{
		Dir:         cfg.ExportDir,
		Links:       links,
		Revoker:     queue,
		RevokeAfter: cfg.DownloadRevokeAfter,
		Logger:      logger,
		Recorder:    metrics,
	})

	deps := masterdata.Deps{
		Logger:      logger,
		Templates:   templates,
		CSRF:        csrfManager,
		Sessions:    sessionManager,
		Collections: collections,
		States:      states,
		Exporter:    exporter,
		Audit:       auditLogger,
	}
	unitPage := masterdata.NewHandler(deps, units.Entity(units.NewRepository(client)))
	customerPage := masterdata.NewHandler(deps, customers.Entity(customers.NewRepository(client)))
	inventoryPage := masterdata.NewHandler(deps, inventory.Entity(inventory.NewRepository(client)))

	authService := auth.NewService(client, logger, collections, states)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)
	dashboardHandler := dashboard.NewHandler(logger, templates, csrfManager, sessionManager, authService,
		unitPage, customerPage, inventoryPage)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		DashboardHandler: dashboardHandler,
		Pages:            []app.RouteMounter{unitPage, customerPage, inventoryPage},
		Exporter:         exporter,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("backend", cfg.BackendBaseURL))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// newAuditLogger returns a recording audit logger when a database is
// configured and a no-op one otherwise.
func newAuditLogger(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) *shared.AuditLogger {
	if pool == nil {
		logger.Info("audit trail disabled, PG_DSN not set")
		return shared.NewAuditLogger(nil)
	}
	auditLogger := shared.NewAuditLogger(pool)
	if err := auditLogger.EnsureSchema(ctx); err != nil {
		logger.Error("audit schema", slog.Any("error", err))
		os.Exit(1)
	}
	return auditLogger
}
