package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lendfast/loan-engine/internal/config"
	"github.com/lendfast/loan-engine/internal/handler"
	"github.com/lendfast/loan-engine/internal/repository"
	"github.com/lendfast/loan-engine/internal/service"
	"github.com/lendfast/loan-engine/pkg/response"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	applicationRepo := repository.NewApplicationRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	productRepo := repository.NewProductRepository(db, redisClient, cfg.GetProductCacheTTL(), logger)

	// Initialize services
	applicationService := service.NewApplicationService(applicationRepo, accountRepo, productRepo, logger)
	ledgerService := service.NewLedgerService(accountRepo, paymentRepo, logger)
	evaluator := service.NewEligibilityEvaluator(cfg.GetMinMonthlyIncome(), cfg.GetDebtServiceCeiling())

	applicationHandler := handler.NewApplicationHandler(applicationService, evaluator)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	productHandler := handler.NewProductHandler(productRepo)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(applicationHandler, ledgerHandler, productHandler, healthHandler, logger)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
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

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	applicationHandler *handler.ApplicationHandler,
	ledgerHandler *handler.LedgerHandler,
	productHandler *handler.ProductHandler,
	healthHandler *handler.HealthHandler,
	logger *logrus.Logger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/applications", applicationHandler.Submit).Methods("POST")
	api.HandleFunc("/applications/{id}", applicationHandler.Get).Methods("GET")
	api.HandleFunc("/applications/{id}/review", applicationHandler.MarkInReview).Methods("POST")
	api.HandleFunc("/applications/{id}/approve", applicationHandler.Approve).Methods("POST")
	api.HandleFunc("/applications/{id}/reject", applicationHandler.Reject).Methods("POST")

	api.HandleFunc("/accounts/{id}", ledgerHandler.GetAccount).Methods("GET")
	api.HandleFunc("/accounts/{id}/payments", ledgerHandler.RecordPayment).Methods("POST")
	api.HandleFunc("/accounts/{id}/payments", ledgerHandler.ListPayments).Methods("GET")
	api.HandleFunc("/accounts/{id}/payoff", ledgerHandler.EarlyPayoff).Methods("POST")

	api.HandleFunc("/eligibility", applicationHandler.Eligibility).Methods("POST")

	api.HandleFunc("/products", productHandler.List).Methods("GET")
	api.HandleFunc("/products/{name}", productHandler.Get).Methods("GET")
	api.HandleFunc("/products/{name}", productHandler.Upsert).Methods("PUT")

	return router
}
