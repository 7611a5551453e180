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

	"twse-announcements/internal/bootstrap"
	"twse-announcements/internal/config"
	delivery "twse-announcements/internal/delivery/http"
	_ "twse-announcements/internal/docs"
	"twse-announcements/internal/dedup"
	"twse-announcements/internal/service"
	"twse-announcements/pkg/logger"
	"twse-announcements/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the scheduling service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
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
	utils.SetPanicLogger(appLogger)

	appLogger.Info("Starting Scheduling Service", logger.Field("name", cfg.App.Name), logger.StringField("storage", cfg.Storage.Driver))

	storage, err := bootstrap.OpenStorage(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize storage", logger.ErrorField(err))
	}
	defer func() { _ = storage.Close() }()

	redisClient, err := bootstrap.OpenRedis(cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	mode, err := dedup.ParseMode(cfg.Scraper.DuplicateMode)
	if err != nil {
		appLogger.Fatal("Invalid duplicate mode", logger.ErrorField(err))
	}
	pollingInterval, err := time.ParseDuration(cfg.Scheduler.PollingInterval)
	if err != nil {
		appLogger.Fatal("Invalid polling interval", logger.ErrorField(err))
	}

	services := bootstrap.NewServices(cfg, storage, appLogger)
	if seeded, err := services.ClauseCodes.EnsureSeeded(ctx); err != nil {
		appLogger.Warn("Failed to seed clause codes", logger.ErrorField(err))
	} else if seeded {
		appLogger.Info("Clause codes seeded")
	}
	if err := services.ClauseCodes.Load(ctx); err != nil {
		appLogger.Warn("Failed to load clause codes", logger.ErrorField(err))
	}

	schedulerSvc, err := service.NewSchedulerService(redisClient.Client, service.SchedulerConfig{
		CronExpressions: cfg.Scheduler.CronExpressions,
		PollingInterval: pollingInterval,
		LookbackDays:    cfg.Scheduler.LookbackDays,
		Mode:            mode,
		Company:         cfg.Scraper.Company,
		StreamMaxLen:    cfg.Redis.StreamMaxLen,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize scheduler", logger.ErrorField(err))
	}

	if cfg.Scheduler.Enabled {
		utils.GoSafe(func() { schedulerSvc.Start(ctx) })
	} else {
		appLogger.Info("Cron scheduling disabled, serving API only")
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")
	delivery.NewAnnouncementHandler(services.Announcements, appLogger).RegisterRoutes(apiV1)
	delivery.NewClauseCodeHandler(services.ClauseCodes, appLogger).RegisterRoutes(apiV1.Group("/clause-codes"))
	delivery.NewScrapeHandler(schedulerSvc, services.Scrapes, mode, appLogger).RegisterRoutes(apiV1.Group("/scrapes"))

	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title TWSE Announcements API
// @version 1.0
// @description Query stored TWSE material-information announcements and enqueue scrapes.
// @BasePath /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	rootCmd := &cobra.Command{Use: "scheduling-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-scheduler.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing scheduling-service CLI: %s\n", err)
		os.Exit(1)
	}
}
