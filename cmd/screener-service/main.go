package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-screener/internal/screener/config"
	"golang-stock-screener/internal/screener/delivery/consumer"
	delivery "golang-stock-screener/internal/screener/delivery/http"
	"golang-stock-screener/internal/screener/repository"
	"golang-stock-screener/internal/screener/service"
	"golang-stock-screener/pkg/common"
	"golang-stock-screener/pkg/logger"
	"golang-stock-screener/pkg/postgres"
	"golang-stock-screener/pkg/redis"
	"golang-stock-screener/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the screener service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Screener Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Create the consumer group if it doesn't exist
	if err := redisClient.XGroupCreateMkStream(context.Background(), common.RedisStreamScanRequest, common.RedisStreamGroup, "0").Err(); err != nil {
		if err.Error() != "BUSYGROUP Consumer Group name already exists" {
			appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
		}
	}

	// Initialize Telegram notifier
	var notifier telegram.Notifier
	if cfg.Telegram.Enabled {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	// Initialize repositories
	stocksRepo := repository.NewStocksRepository(db.DB)
	signalRepo := repository.NewSignalRepository(db.DB)
	trackingRepo := repository.NewTrackingRepository(db.DB)
	weightRepo := repository.NewWeightConfigRepository(db.DB)
	runStatsRepo := repository.NewRunStatsRepository(db.DB)
	weeklyRepo := repository.NewWeeklyAnalysisRepository(db.DB)
	summaryRepo := repository.NewDailySummaryRepository(db.DB)
	marketDataRepo := repository.NewYahooFinanceRepository(cfg, appLogger)

	// Initialize services
	screeningSvc := service.NewScreeningService(cfg, appLogger, redisClient.Client, stocksRepo, marketDataRepo, signalRepo, runStatsRepo, weightRepo, notifier)
	trackingSvc := service.NewTrackingService(cfg, appLogger, trackingRepo, marketDataRepo)
	optimizerSvc := service.NewOptimizerService(cfg, appLogger, signalRepo, trackingRepo, weightRepo, weeklyRepo, notifier)
	reportSvc := service.NewReportService(cfg, appLogger, signalRepo, summaryRepo, notifier)
	scanConsumerSvc := service.NewScanConsumerService(redisClient.Client, screeningSvc, appLogger)

	// Start the stream consumer
	redisConsumer := consumer.NewRedisConsumer(cfg, scanConsumerSvc, appLogger)
	redisConsumer.Start(ctx)
	defer redisConsumer.Stop()

	// Start the scheduler
	if cfg.Scheduler.Enabled {
		schedulerSvc := service.NewSchedulerService(cfg, appLogger, redisClient.Client, trackingSvc, reportSvc, optimizerSvc)
		if err := schedulerSvc.Start(ctx); err != nil {
			appLogger.Fatal("Failed to start scheduler", logger.ErrorField(err))
		}
		defer schedulerSvc.Stop()
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")

	signalHandler := delivery.NewSignalHandler(signalRepo, appLogger)
	signalHandler.RegisterRoutes(apiV1.Group("/signals"))

	scanHandler := delivery.NewScanHandler(cfg, redisClient.Client, appLogger)
	scanHandler.RegisterRoutes(apiV1.Group("/scans"))

	analysisHandler := delivery.NewAnalysisHandler(runStatsRepo, weightRepo, weeklyRepo, appLogger)
	analysisHandler.RegisterRoutes(apiV1.Group("/analysis"))

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "screener-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-screener.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing screener-service CLI: %s\n", err)
		os.Exit(1)
	}
}
