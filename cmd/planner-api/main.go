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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/cronograma-api/api/swagger"
	"github.com/noah-isme/cronograma-api/internal/handler"
	internalmiddleware "github.com/noah-isme/cronograma-api/internal/middleware"
	"github.com/noah-isme/cronograma-api/internal/repository"
	"github.com/noah-isme/cronograma-api/internal/scheduler"
	"github.com/noah-isme/cronograma-api/internal/service"
	"github.com/noah-isme/cronograma-api/pkg/cache"
	"github.com/noah-isme/cronograma-api/pkg/config"
	"github.com/noah-isme/cronograma-api/pkg/database"
	"github.com/noah-isme/cronograma-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/cronograma-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/cronograma-api/pkg/middleware/requestid"
)

// @title Cronograma Planner API
// @version 1.0.0
// @description Feasibility checks and weighted topic distribution for exam study plans.
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 10 * time.Second

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Warn("postgres unavailable, stored plan endpoints disabled", zap.Error(err))
		db = nil
	} else {
		defer db.Close()
	}

	var redisClient *redis.Client
	if cfg.Planner.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, planner cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Planner.CacheTTL, logr, cfg.Planner.CacheEnabled && redisClient != nil)

	plannerCfg := service.PlannerConfig{
		DefaultSessionMinutes: cfg.Planner.DefaultSessionMinutes,
		Distribution: scheduler.DistributionOptions{
			ShuffleStrength: cfg.Planner.ShuffleStrength,
			SwapRadius:      cfg.Planner.SwapRadius,
			MaxWeight:       cfg.Planner.MaxSubjectWeight,
			MaxRun:          cfg.Planner.MaxRun,
		},
		Location: cfg.Planner.Location(),
		CacheTTL: cfg.Planner.CacheTTL,
	}
	validate := validator.New()
	var plannerSvc *service.PlannerService
	if db != nil {
		plannerSvc = service.NewPlannerService(repository.NewStudyPlanRepository(db), repository.NewTopicRepository(db), cacheSvc, metricsSvc, validate, logr, plannerCfg)
	} else {
		plannerSvc = service.NewPlannerService(nil, nil, cacheSvc, metricsSvc, validate, logr, plannerCfg)
	}
	exportSvc := service.NewExportService(logr, nil, nil)

	plannerHandler := handler.NewPlannerHandler(plannerSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readinessChecks(db, cacheRepo))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	plannerGroup := api.Group("/planner")
	plannerGroup.POST("/feasibility", plannerHandler.CheckFeasibility)
	plannerGroup.POST("/distribution", plannerHandler.Distribute)
	plannerGroup.POST("/preview", plannerHandler.Preview)

	plans := api.Group("/plans")
	plans.GET("/:id/feasibility", plannerHandler.PlanFeasibility)
	plans.GET("/:id/preview", plannerHandler.PlanPreview)
	plans.GET("/:id/preview/export", plannerHandler.ExportPlanPreview)

	if metricsSvc != nil {
		api.GET("/metrics/summary", metricsHandler.Snapshot)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func readinessChecks(db *sqlx.DB, cacheRepo *repository.CacheRepository) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"redis": cacheRepo.Ping,
	}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	return checks
}
