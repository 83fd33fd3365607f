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
	"github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/revision-planner-api/api/swagger"
	"github.com/noah-isme/revision-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/revision-planner-api/internal/middleware"
	"github.com/noah-isme/revision-planner-api/internal/models"
	"github.com/noah-isme/revision-planner-api/internal/repository"
	"github.com/noah-isme/revision-planner-api/internal/service"
	"github.com/noah-isme/revision-planner-api/pkg/cache"
	"github.com/noah-isme/revision-planner-api/pkg/config"
	"github.com/noah-isme/revision-planner-api/pkg/database"
	"github.com/noah-isme/revision-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/revision-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/revision-planner-api/pkg/middleware/requestid"
)

// @title Revision Planner API
// @version 1.0.0
// @description Weekly revision session planning for students
// @BasePath /api/v1
// @schemes http

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metricsSvc := service.NewMetricsService()

	var (
		cacheRepo service.CacheRepository
		lockStore service.RunLockStore
	)
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		lockStore = repository.NewRunLockRepository(redisClient)
	} else {
		logr.Warn("redis disabled, planner locks are process local and caching is off")
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Planner.CacheTTL, logr, cfg.Planner.CacheEnabled)

	subjectRepo := repository.NewSubjectRepository(db)
	eventRepo := repository.NewBlockingEventRepository(db)
	sessionRepo := repository.NewRevisionSessionRepository(db)
	inviteRepo := repository.NewSessionInviteRepository(db)
	preferenceRepo := repository.NewPlanningPreferenceRepository(db)
	runRepo := repository.NewPlanningRunRepository(db)

	committer := service.NewPlanCommitter(sessionRepo, runRepo, db, logr)
	locker := service.NewRunLocker(lockStore, cfg.Planner.LockTTL, metricsSvc, logr)
	plannerSvc := service.NewPlannerService(
		subjectRepo, eventRepo, sessionRepo, inviteRepo, preferenceRepo,
		committer, locker, cacheSvc, metricsSvc, logr,
		service.PlannerConfig{
			DefaultPreference:   defaultPreference(cfg.Planner.Defaults),
			Timezone:            cfg.Planner.Timezone,
			TopUpCeilingMinutes: cfg.Planner.TopUpCeilingMinute,
			CacheTTL:            cfg.Planner.CacheTTL,
		},
	)
	verifier := service.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	} else {
		checks["redis"] = nil
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	plannerHandler := handler.NewPlannerHandler(plannerSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	planner := api.Group("/planner")
	planner.Use(internalmiddleware.JWT(verifier), internalmiddleware.WithResponseMeta())
	planner.POST("/regenerate", plannerHandler.Regenerate)
	planner.POST("/adjust", plannerHandler.Adjust)
	planner.POST("/subjects/:id/top-up", plannerHandler.TopUp)
	planner.GET("/weeks/:weekStart/sessions", plannerHandler.WeekSessions)
	planner.GET("/weeks/:weekStart/export", plannerHandler.Export)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("failed to shutdown server", zap.Error(err))
		}
	}()

	logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func defaultPreference(d config.PreferenceDefaults) models.PlanningPreference {
	days := make(pq.Int64Array, 0, len(d.PreferredDays))
	for _, day := range d.PreferredDays {
		days = append(days, int64(day))
	}
	return models.PlanningPreference{
		PreferredDays:          days,
		DailyStartTime:         d.DailyStartTime,
		DailyEndTime:           d.DailyEndTime,
		MaxHoursPerDay:         d.MaxHoursPerDay,
		SessionDurationMinutes: d.SessionDurationMinutes,
		AvoidEarlyMorning:      d.AvoidEarlyMorning,
		AvoidLateEvening:       d.AvoidLateEvening,
	}
}
