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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/perm-tracker-api/api/swagger"
	"github.com/noah-isme/perm-tracker-api/internal/handler"
	internalmiddleware "github.com/noah-isme/perm-tracker-api/internal/middleware"
	"github.com/noah-isme/perm-tracker-api/internal/repository"
	"github.com/noah-isme/perm-tracker-api/internal/search"
	"github.com/noah-isme/perm-tracker-api/internal/service"
	"github.com/noah-isme/perm-tracker-api/pkg/cache"
	"github.com/noah-isme/perm-tracker-api/pkg/config"
	"github.com/noah-isme/perm-tracker-api/pkg/database"
	"github.com/noah-isme/perm-tracker-api/pkg/export"
	"github.com/noah-isme/perm-tracker-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/perm-tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/perm-tracker-api/pkg/middleware/requestid"
)

// @title PERM Tracker API
// @version 1.0.0
// @description Deadline and ranking engine for PERM labor certification cases
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.CaseCache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, case cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			cacheRepo = repository.NewCacheRepository(client)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.CaseCache.TTL, logr, cfg.CaseCache.Enabled)

	thresholds, err := search.ParseThresholds(cfg.Search.FuzzyThresholds)
	if err != nil {
		logr.Warn("invalid fuzzy thresholds, using defaults", zap.Error(err))
		thresholds = search.DefaultThresholds()
	}

	validate := validator.New()
	loc := cfg.Deadlines.Location()

	userRepo := repository.NewUserRepository(db)
	caseRepo := repository.NewCaseRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	caseSvc := service.NewCaseService(caseRepo, cacheSvc, metrics, validate, logr, service.CaseServiceConfig{
		Location:   loc,
		CacheTTL:   cfg.CaseCache.TTL,
		Thresholds: thresholds,
	})
	deadlineSvc := service.NewDeadlineService(caseRepo, metrics, logr, service.DeadlineServiceConfig{
		Location:        loc,
		WindowDays:      cfg.Deadlines.UpcomingWindowDays,
		ReminderOffsets: cfg.Deadlines.ReminderOffsets,
	})
	exportSvc := service.NewExportService(caseSvc, validate, logr, export.NewCSVExporter(), export.NewPDFExporter())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reminders *service.ReminderService
	if cfg.Reminders.Enabled {
		reminders = service.NewReminderService(caseRepo, service.LogNotifier{Logger: logr}, metrics, logr, service.ReminderServiceConfig{
			Location: loc,
			Offsets:  cfg.Deadlines.ReminderOffsets,
			Interval: cfg.Reminders.Interval,
			Workers:  cfg.Reminders.Workers,
			Retries:  cfg.Reminders.Retries,
			Sent:     cacheSvc,
		})
		reminders.Start(ctx)
		reminders.StartScheduler(ctx)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), authSvc, routeHandlers{
		auth:      handler.NewAuthHandler(authSvc),
		cases:     handler.NewCaseHandler(caseSvc),
		deadlines: handler.NewDeadlineHandler(deadlineSvc),
		exports:   handler.NewExportHandler(exportSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

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
		logr.Error("server shutdown failed", zap.Error(err))
	}
	if reminders != nil {
		reminders.Stop()
	}
	logr.Info("server stopped")
}

type routeHandlers struct {
	auth      *handler.AuthHandler
	cases     *handler.CaseHandler
	deadlines *handler.DeadlineHandler
	exports   *handler.ExportHandler
}

func registerRoutes(api *gin.RouterGroup, tokens internalmiddleware.TokenValidator, h routeHandlers) {
	api.POST("/auth/login", h.auth.Login)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(tokens))

	secured.GET("/auth/me", h.auth.Me)

	cases := secured.Group("/cases")
	cases.GET("", h.cases.List)
	cases.POST("", h.cases.Create)
	cases.GET("/:id", h.cases.Get)
	cases.PUT("/:id", h.cases.Update)
	cases.DELETE("/:id", h.cases.Delete)
	cases.POST("/:id/restore", h.cases.Restore)
	cases.PUT("/:id/favorite", h.cases.SetFavorite)
	cases.POST("/:id/requests", h.cases.AddRequest)
	cases.PUT("/:id/requests/:requestId/response", h.cases.RespondRequest)

	deadlines := secured.Group("/deadlines")
	deadlines.GET("/upcoming", h.deadlines.Upcoming)
	deadlines.GET("/calendar.ics", h.deadlines.Calendar)

	secured.GET("/exports/cases", h.exports.Cases)
}
