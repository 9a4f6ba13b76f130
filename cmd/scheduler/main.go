package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/lendfast/loan-engine/internal/config"
	"github.com/lendfast/loan-engine/internal/repository"
	"github.com/lendfast/loan-engine/internal/service"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)
	logger.Info("Starting loan scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	accountRepo := repository.NewAccountRepository(db)
	scanner := service.NewArrearsScanner(accountRepo, redisClient, cfg.Business.DelinquencyThreshold, logger)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Warnf("Unknown timezone %q, falling back to UTC", cfg.Scheduler.Timezone)
		location = time.UTC
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	setupCronJobs(c, scanner, logger)

	// Start the scheduler
	c.Start()
	logger.Info("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

func setupCronJobs(c *cron.Cron, scanner *service.ArrearsScanner, logger *logrus.Logger) {
	// Daily job to flag accounts behind schedule (runs at midnight)
	_, err := c.AddFunc("0 0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		flagged, err := scanner.ScanBehindSchedule(ctx, time.Now())
		if err != nil {
			logger.WithError(err).Error("arrears scan failed")
			return
		}
		logger.WithField("flagged", flagged).Info("arrears scan complete")
	})
	if err != nil {
		logger.WithError(err).Error("failed to schedule arrears scan")
	}

	// Weekly job to surface upcoming installments (runs on Sundays at 9 AM)
	_, err = c.AddFunc("0 0 9 * * SUN", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		upcoming, err := scanner.ScanUpcoming(ctx, time.Now())
		if err != nil {
			logger.WithError(err).Error("reminder scan failed")
			return
		}
		logger.WithField("upcoming", upcoming).Info("reminder scan complete")
	})
	if err != nil {
		logger.WithError(err).Error("failed to schedule reminder scan")
	}

	logger.Info("Cron jobs scheduled successfully")
}
