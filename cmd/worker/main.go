package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/telecare/scheduler/internal/config"
	"github.com/telecare/scheduler/internal/email"
	"github.com/telecare/scheduler/internal/repository/postgres"
	"github.com/telecare/scheduler/internal/service/notification"
	"github.com/telecare/scheduler/internal/worker"
	"github.com/telecare/scheduler/pkg/logger"
	redisbroker "github.com/telecare/scheduler/pkg/messaging/redis"
	"github.com/telecare/scheduler/pkg/metrics"
)

// WorkerConfig is read from the environment so the reminder worker can
// run standalone, without the API's config file.
type WorkerConfig struct {
	DatabaseHost     string        `envconfig:"DB_HOST" default:"localhost"`
	DatabasePort     int           `envconfig:"DB_PORT" default:"5432"`
	DatabaseUser     string        `envconfig:"DB_USER" default:"postgres"`
	DatabasePassword string        `envconfig:"DB_PASSWORD"`
	DatabaseName     string        `envconfig:"DB_NAME" default:"scheduler"`
	DatabaseSSLMode  string        `envconfig:"DB_SSLMODE" default:"disable"`
	RedisURL         string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	SMTPHost         string        `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort         int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername     string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword     string        `envconfig:"SMTP_PASSWORD"`
	SMTPFrom         string        `envconfig:"SMTP_FROM" default:"noreply@telecare.example"`
	ReminderLead     time.Duration `envconfig:"REMINDER_LEAD" default:"24h"`
	ReminderEvery    time.Duration `envconfig:"REMINDER_EVERY" default:"15m"`
	HealthPort       string        `envconfig:"HEALTH_PORT" default:"8081"`
}

func main() {
	var cfg WorkerConfig
	if err := envconfig.Process("scheduler", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Name:     cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     5,
		MinIdleConns: 1,
	}, &appLogger.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	emails := email.NewSMTPService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	reminderWorker := worker.NewReminderWorker(
		postgres.NewAppointmentRepository(db),
		notification.NewService(broker, appLogger),
		emails,
		appLogger,
		metrics.NewMetrics("telecare", "reminder_worker"),
		cfg.ReminderLead,
		cfg.ReminderEvery,
	)

	setupHealthCheck(appLogger, cfg.HealthPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		appLogger.Info("shutting down reminder worker")
		cancel()
	}()

	appLogger.Info("reminder worker started", "lead", cfg.ReminderLead.String(), "interval", cfg.ReminderEvery.String())
	reminderWorker.Start(ctx)
}

func setupHealthCheck(appLogger *logger.Logger, port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			appLogger.ZL.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}
