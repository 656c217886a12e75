package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/config"
	"spendwise/internal/database"
	"spendwise/internal/events"
	"spendwise/internal/logger"
	"spendwise/internal/scheduler"
	"spendwise/internal/server"
	"spendwise/internal/services"
	"spendwise/internal/validator"
)

// @title           Spendwise API
// @version         1.0
// @description     Spendwise tracks personal expenses by category and turns them into summaries, monthly trends, month-over-month comparisons and reports.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

const shutdownTimeout = 15 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Amounts are rendered as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
	validator.Register()

	dbConfig, err := database.NewConfig(appConfig)
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	publisher, err := newPublisher(appConfig)
	if err != nil {
		return err
	}
	defer publisher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := events.NewDispatcher(publisher, events.DefaultBuffer)
	dispatcherDone := make(chan struct{})
	go func() {
		dispatcher.Run(ctx)
		close(dispatcherDone)
	}()

	notifier := services.NewChangeNotifier()
	notifier.Subscribe(dispatcher)
	svc := server.NewServices(dbManager.DB(), appConfig, notifier, dispatcher, time.Now)

	jobs := scheduler.New(appConfig.Location)
	if _, err := jobs.ScheduleDigest(appConfig.DigestSchedule, svc.Digests); err != nil {
		return err
	}
	jobs.Start()
	defer jobs.Stop()

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           server.NewRouter(appConfig, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting Spendwise backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Server shutdown did not complete", "error", err)
	}

	stop()
	<-dispatcherDone
	return nil
}

// newPublisher connects to RabbitMQ when AMQP_URL is set and falls back to a
// publisher that drops every event otherwise.
func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Get().Info("AMQP_URL not set, events are disabled")
		return events.NopPublisher{}, nil
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, err
	}
	logger.Get().Infow("Publishing events", "exchange", cfg.AMQPExchange)
	return publisher, nil
}
