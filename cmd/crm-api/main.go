package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/edu-crm-api/api/swagger"
	"github.com/noah-isme/edu-crm-api/internal/handler"
	"github.com/noah-isme/edu-crm-api/internal/repository"
	"github.com/noah-isme/edu-crm-api/internal/router"
	"github.com/noah-isme/edu-crm-api/internal/service"
	"github.com/noah-isme/edu-crm-api/pkg/cache"
	"github.com/noah-isme/edu-crm-api/pkg/config"
	"github.com/noah-isme/edu-crm-api/pkg/database"
	"github.com/noah-isme/edu-crm-api/pkg/jobs"
	"github.com/noah-isme/edu-crm-api/pkg/logger"
	"github.com/noah-isme/edu-crm-api/pkg/middleware/ratelimit"
	"github.com/noah-isme/edu-crm-api/pkg/storage"
)

// @title Edu CRM Metrics API
// @version 1.0.0
// @description Dashboard aggregation, one-shot metrics and report exports for the education-consulting CRM.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Dashboard.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()
	loc := cfg.Dashboard.Location()

	authSvc := service.NewAuthService(repository.NewUserRepository(db), validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	datasets := service.NewDatasetService(service.DatasetServiceParams{
		Applications: repository.NewApplicationRepository(db),
		Leads:        repository.NewLeadRepository(db),
		Commissions:  repository.NewCommissionRepository(db),
		Directory:    repository.NewDirectoryRepository(db),
		Metrics:      metrics,
		Logger:       logr,
	})
	dashboards := service.NewDashboardService(service.DashboardServiceParams{
		Datasets: datasets,
		Cache:    service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil),
		Metrics:  metrics,
		Logger:   logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:    cfg.Dashboard.CacheTTL,
			TrendMonths: cfg.Dashboard.TrendMonths,
			TopLimit:    cfg.Dashboard.TopLimit,
			RiskLimit:   cfg.Dashboard.RiskLimit,
			Location:    loc,
		},
	})

	deps := router.Deps{
		Auth:        authSvc,
		Audit:       repository.NewAuditRepository(db),
		Metrics:     metrics,
		Logger:      logr,
		AuthHandler: handler.NewAuthHandler(authSvc),
		MetricsHandler: handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
			"postgres": db.PingContext,
			"cache":    cacheRepo.Ping,
		}, logr),
	}
	if cfg.Dashboard.Enabled {
		deps.DashboardHandler = handler.NewDashboardHandler(dashboards, loc)
	}
	if cfg.Compute.Enabled {
		deps.ComputeHandler = handler.NewComputeHandler(service.NewComputeService(validate, metrics, logr, service.ComputeServiceConfig{
			MaxRecords: cfg.Compute.MaxRecords,
			RiskLimit:  cfg.Dashboard.RiskLimit,
			Location:   loc,
		}))
		deps.ComputeLimiter = ratelimit.NewLimiter(cfg.Compute.RateLimit, cfg.Compute.RateWindow)
	}

	var queue *jobs.Queue
	if cfg.Reports.Enabled {
		queue, err = startReports(ctx, cfg, db, dashboards, validate, metrics, logr, &deps)
		if err != nil {
			logr.Fatal("failed to start report pipeline", zap.Error(err))
		}
		defer queue.Stop()
	}

	engine := router.New(deps, router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		EnableSystem:   cfg.Analytics.Enabled,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// startReports wires export storage, the job queue and the report worker, and
// registers the report handler on deps.
func startReports(ctx context.Context, cfg *config.Config, db *sqlx.DB, views *service.DashboardService, validate *validator.Validate, metrics *service.MetricsService, logr *zap.Logger, deps *router.Deps) (*jobs.Queue, error) {
	store, err := exportStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exports := service.NewExportService(service.ExportServiceParams{
		Views:   views,
		Storage: store,
		Signer:  signer,
		Logger:  logr,
		Config:  service.ExportConfig{APIPrefix: cfg.APIPrefix, Location: cfg.Dashboard.Location()},
	})

	reportRepo := repository.NewReportRepository(db)
	worker := service.NewReportWorker(reportRepo, exports, metrics, logr)

	var reports *service.ReportService
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
		DeadLetter: func(ctx context.Context, job jobs.Job, cause error) {
			reports.MarkDeadLettered(ctx, job, cause)
		},
	})
	reports = service.NewReportService(service.ReportServiceParams{
		Repo:      reportRepo,
		Queue:     queue,
		Exports:   exports,
		Validator: validate,
		Metrics:   metrics,
		Logger:    logr,
		Config: service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			Location:        cfg.Dashboard.Location(),
		},
	})

	queue.Start(ctx)
	reports.RecoverPendingJobs(ctx)
	reports.StartCleanup(ctx)

	deps.ReportHandler = handler.NewReportHandler(reports, logr)
	return queue, nil
}

func exportStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMinio:
		store, err := storage.NewMinioStorage(cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageDriverLocal, "":
		return storage.NewLocalStorage(cfg.Reports.StorageDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
