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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/bestsecurity/meeting-scheduler/api/swagger"
	"github.com/bestsecurity/meeting-scheduler/internal/calendar"
	"github.com/bestsecurity/meeting-scheduler/internal/handler"
	"github.com/bestsecurity/meeting-scheduler/internal/interval"
	"github.com/bestsecurity/meeting-scheduler/internal/middleware"
	"github.com/bestsecurity/meeting-scheduler/internal/models"
	"github.com/bestsecurity/meeting-scheduler/internal/repository"
	"github.com/bestsecurity/meeting-scheduler/internal/service"
	"github.com/bestsecurity/meeting-scheduler/migrations"
	"github.com/bestsecurity/meeting-scheduler/pkg/cache"
	"github.com/bestsecurity/meeting-scheduler/pkg/config"
	"github.com/bestsecurity/meeting-scheduler/pkg/database"
	"github.com/bestsecurity/meeting-scheduler/pkg/logger"
	corsmiddleware "github.com/bestsecurity/meeting-scheduler/pkg/middleware/cors"
	reqidmiddleware "github.com/bestsecurity/meeting-scheduler/pkg/middleware/requestid"
)

// @title Meeting Scheduler API
// @version 1.0.0
// @description Resource availability and booking mutation engine
// @BasePath /api/v1
// @schemes http

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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.Migrate {
		if err := database.Migrate(db, migrations.FS); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, availability cache disabled", zap.Error(err))
		redisClient = nil
	}

	userRepo := repository.NewUserRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	blockedRepo := repository.NewBlockedIntervalRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	permissionSvc := service.NewPermissionService(logr)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	resourceSvc := service.NewResourceService(resourceRepo, logr)
	availabilitySvc := service.NewAvailabilityService(
		resourceRepo, blockedRepo, bookingRepo, cacheRepo, metricsSvc, logr,
		availabilityConfig(cfg, logr),
	)
	teamSvc := service.NewTeamService(availabilitySvc, logr, teamConfig(cfg, logr))
	notificationSvc := service.NewNotificationService(cfg.Notifications, logr)
	bookingSvc := service.NewBookingService(
		bookingRepo, resourceRepo, permissionSvc, availabilitySvc, notificationSvc,
		nil, logr,
		service.WithBookingMetrics(metricsSvc),
		service.WithBookingAvailability(availabilitySvc),
	)
	blockedSvc := service.NewBlockedIntervalService(blockedRepo, resourceRepo, permissionSvc, availabilitySvc, nil, logr)
	exportSvc := service.NewExportService(resourceRepo, bookingRepo, blockedRepo, logr, cfg.Exports.Enabled)
	adapter := calendar.NewAdapter(nil, permissionSvc, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	notificationSvc.Start(rootCtx)
	defer notificationSvc.Stop()

	authHandler := handler.NewAuthHandler(authSvc, resourceSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	teamHandler := handler.NewTeamHandler(teamSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, authSvc)
	blockedHandler := handler.NewBlockedHandler(blockedSvc, authSvc)
	resourceHandler := handler.NewResourceHandler(resourceSvc)
	calendarHandler := handler.NewCalendarHandler(adapter, resourceSvc, bookingSvc, availabilitySvc, authSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.GET("/me/context", authHandler.Me)

		protected.GET("/resources", resourceHandler.List)
		protected.GET("/resources/:id", resourceHandler.Get)
		protected.GET("/resources/:id/working-hours", resourceHandler.WorkingHours)

		protected.GET("/availability/:resourceId", availabilityHandler.ForDate)

		team := protected.Group("")
		team.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleTeamLead))
		team.GET("/team/slots", teamHandler.Slots)
		team.GET("/team/available-dates", teamHandler.AvailableDates)

		protected.GET("/bookings", bookingHandler.List)
		protected.POST("/bookings", bookingHandler.Create)
		protected.POST("/bookings/team", bookingHandler.CreateTeam)
		protected.GET("/bookings/:id", bookingHandler.Get)
		protected.PATCH("/bookings/:id/reschedule", bookingHandler.Reschedule)
		protected.PATCH("/bookings/:id/reassign", bookingHandler.Reassign)
		protected.PATCH("/bookings/:id/reassign-reschedule", bookingHandler.ReassignReschedule)
		protected.PATCH("/bookings/:id/extend", bookingHandler.Extend)
		protected.POST("/bookings/:id/cancel", bookingHandler.Cancel)

		protected.GET("/blocked-intervals", blockedHandler.List)
		protected.POST("/blocked-intervals", blockedHandler.Create)
		protected.PATCH("/blocked-intervals/:id", blockedHandler.Update)
		protected.DELETE("/blocked-intervals/:id", blockedHandler.Delete)

		protected.GET("/calendar/resources", calendarHandler.Resources)
		protected.GET("/calendar/events", calendarHandler.Events)
		protected.POST("/calendar/gestures", calendarHandler.Gesture)

		exports := protected.Group("")
		exports.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleTeamLead))
		exports.GET("/exports/day-sheet", exportHandler.DaySheet)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("forced shutdown", zap.Error(err))
	}
}

// availabilityConfig converts the clock strings from configuration into
// minute offsets, falling back to defaults on parse errors.
func availabilityConfig(cfg *config.Config, logr *zap.Logger) service.AvailabilityConfig {
	out := service.DefaultAvailabilityConfig()
	out.CacheTTL = cfg.Availability.CacheTTL
	if cfg.Availability.MaxRangeDays > 0 {
		out.MaxRangeDays = cfg.Availability.MaxRangeDays
	}
	if start, err := interval.MinuteOfDay(cfg.Calendar.DayStart); err == nil {
		out.DayStart = start
	} else {
		logr.Warn("invalid CALENDAR_DAY_START", zap.String("value", cfg.Calendar.DayStart))
	}
	if end, err := interval.MinuteOfDay(cfg.Calendar.DayEnd); err == nil {
		out.DayEnd = end
	} else {
		logr.Warn("invalid CALENDAR_DAY_END", zap.String("value", cfg.Calendar.DayEnd))
	}
	return out
}

func teamConfig(cfg *config.Config, logr *zap.Logger) service.TeamConfig {
	out := service.DefaultTeamConfig()
	out.SlotStep = cfg.Calendar.SlotStep
	out.Buffer = cfg.Availability.BookingBuffer
	if start, err := interval.MinuteOfDay(cfg.Calendar.TeamSlotStart); err == nil {
		out.SlotStart = start
	} else {
		logr.Warn("invalid CALENDAR_TEAM_SLOT_START", zap.String("value", cfg.Calendar.TeamSlotStart))
	}
	if end, err := interval.MinuteOfDay(cfg.Calendar.TeamSlotEnd); err == nil {
		out.SlotEnd = end
	} else {
		logr.Warn("invalid CALENDAR_TEAM_SLOT_END", zap.String("value", cfg.Calendar.TeamSlotEnd))
	}
	return out
}
