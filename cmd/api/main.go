package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/telecare/scheduler/internal/config"
	appointmentHandler "github.com/telecare/scheduler/internal/handler/appointment"
	availabilityHandler "github.com/telecare/scheduler/internal/handler/availability"
	calendarHandler "github.com/telecare/scheduler/internal/handler/calendar"
	healthHandler "github.com/telecare/scheduler/internal/handler/health"
	"github.com/telecare/scheduler/internal/middleware"
	"github.com/telecare/scheduler/internal/repository/postgres"
	"github.com/telecare/scheduler/internal/router"
	appointmentService "github.com/telecare/scheduler/internal/service/appointment"
	availabilityService "github.com/telecare/scheduler/internal/service/availability"
	calendarService "github.com/telecare/scheduler/internal/service/calendar"
	"github.com/telecare/scheduler/internal/service/notification"
	"github.com/telecare/scheduler/pkg/logger"
	redisbroker "github.com/telecare/scheduler/pkg/messaging/redis"
	"github.com/telecare/scheduler/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &appLogger.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)

	m := metrics.NewMetrics("telecare", "scheduler")
	notifier := notification.NewService(broker, appLogger)

	appointmentSvc := appointmentService.NewService(appointmentRepo, availabilityRepo, notifier, m)
	availabilitySvc := availabilityService.NewService(availabilityRepo)
	calendarSvc := calendarService.NewService(appointmentRepo)

	r := router.NewRouter(
		healthHandler.NewHandler(db),
		appointmentHandler.NewHandler(appointmentSvc),
		availabilityHandler.NewHandler(availabilitySvc),
		calendarHandler.NewHandler(calendarSvc),
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:     cfg.RateLimit.Burst,
			Timeout:       cfg.Server.RequestTimeout,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "scheduler",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	appLogger.Info("server started", "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info("server exited properly")
}
