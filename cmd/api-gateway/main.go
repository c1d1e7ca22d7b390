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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sonarsarthak/EDUManager/api/swagger"
	"github.com/sonarsarthak/EDUManager/internal/handler"
	internalmiddleware "github.com/sonarsarthak/EDUManager/internal/middleware"
	"github.com/sonarsarthak/EDUManager/internal/models"
	"github.com/sonarsarthak/EDUManager/internal/repository"
	"github.com/sonarsarthak/EDUManager/internal/service"
	"github.com/sonarsarthak/EDUManager/internal/timetable"
	"github.com/sonarsarthak/EDUManager/pkg/cache"
	"github.com/sonarsarthak/EDUManager/pkg/config"
	"github.com/sonarsarthak/EDUManager/pkg/database"
	"github.com/sonarsarthak/EDUManager/pkg/jobs"
	"github.com/sonarsarthak/EDUManager/pkg/logger"
	corsmiddleware "github.com/sonarsarthak/EDUManager/pkg/middleware/cors"
	reqidmiddleware "github.com/sonarsarthak/EDUManager/pkg/middleware/requestid"
	"github.com/sonarsarthak/EDUManager/pkg/storage"
)

// @title EDUManager Timetable API
// @version 1.0.0
// @description Conflict-free weekly timetable generation from course sheets
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const cacheNamespace = "edumanager"

type runStore interface {
	Create(ctx context.Context, run *models.TimetableRun, sessions []models.TimetableSession) error
	FindByID(ctx context.Context, id string) (*models.TimetableRun, error)
	ListByFaculty(ctx context.Context, runID, name string) ([]models.TimetableSession, error)
	ListByClass(ctx context.Context, runID, branch, semester string) ([]models.TimetableSession, error)
}

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	grid, err := timetable.ParseGrid(cfg.Timetable.Days, cfg.Timetable.Periods)
	if err != nil {
		logr.Sugar().Fatalw("invalid timetable grid", "error", err)
	}

	metrics := service.NewMetricsService()

	runs, closeRuns, err := openRunStore(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open run store", "error", err)
	}
	defer closeRuns()

	redisClient := openRedis(ctx, cfg, logr)
	cacheRepo := repository.NewCacheRepository(redisClient, cacheNamespace, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Redis.CacheTTL, logr, redisClient != nil)
	if !cfg.Database.Enabled {
		// cached summaries must not outlive the in-memory runs they describe
		_ = cacheSvc.Purge(ctx)
	}

	files, err := storage.NewLocalStorage(cfg.Exports.OutputDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare output directory", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(files, signer, service.ExportConfig{
		APIPrefix:       cfg.APIPrefix,
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	}, metrics, logr)

	queue := jobs.NewQueue("timetable-exports", exportSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Exports.Workers,
		MaxRetries: cfg.Exports.Retries,
		OnGiveUp:   exportSvc.Abandon,
		Logger:     logr,
	})
	metrics.TrackQueueDepth("timetable-exports", queue.Pending)
	queue.Start(ctx)
	defer queue.Stop()
	exportSvc.StartCleanup(ctx)

	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	timetableSvc := service.NewTimetableService(runs, cacheSvc, queue, exportSvc, metrics, validator.New(), service.TimetableServiceConfig{
		Grid: grid,
		Seed: cfg.Timetable.Seed,
	}, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Timetable.UploadMaxBytes
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics", "/health"))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	timetableHandler := handler.NewTimetableHandler(timetableSvc, exportSvc, cfg.Timetable.UploadMaxBytes)
	api := r.Group(cfg.APIPrefix)
	api.GET("/timetables/download/:token", timetableHandler.Download)

	secured := api.Group("/timetables", internalmiddleware.JWT(tokenSvc))
	secured.POST("", internalmiddleware.RequireRoles(models.RoleAdmin), timetableHandler.Generate)
	secured.GET("/template", timetableHandler.Template)
	secured.GET("/:id", timetableHandler.GetRun)
	secured.GET("/:id/faculty", timetableHandler.Faculty)
	secured.GET("/:id/classes", timetableHandler.Classes)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "grid_slots", grid.Size())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openRunStore connects to Postgres when persistence is enabled and falls
// back to process memory otherwise.
func openRunStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (runStore, func(), error) {
	if !cfg.Database.Enabled {
		logr.Info("persistence disabled, keeping timetable runs in memory")
		return repository.NewMemoryRunStore(), func() {}, nil
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repository.NewRunRepository(db), func() { _ = db.Close() }, nil
}

func openRedis(ctx context.Context, cfg *config.Config, logr *zap.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		return nil
	}
	return client
}
