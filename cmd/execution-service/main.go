package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"twse-announcements/internal/bootstrap"
	"twse-announcements/internal/config"
	"twse-announcements/internal/dedup"
	"twse-announcements/internal/delivery/consumer"
	"twse-announcements/internal/service"
	"twse-announcements/pkg/common"
	"twse-announcements/pkg/logger"
	"twse-announcements/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the execution service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	appLogger.Info("Starting Execution Service", logger.Field("name", cfg.App.Name), logger.StringField("storage", cfg.Storage.Driver))

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

	// MKSTREAM creates the stream if it doesn't exist
	if err := redisClient.EnsureGroup(ctx, common.RedisStreamScrapeTask, common.RedisStreamGroup); err != nil {
		appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
	}

	mode, err := dedup.ParseMode(cfg.Scraper.DuplicateMode)
	if err != nil {
		appLogger.Fatal("Invalid duplicate mode", logger.ErrorField(err))
	}

	services := bootstrap.NewServices(cfg, storage, appLogger)
	if err := services.ClauseCodes.Load(ctx); err != nil {
		appLogger.Warn("Failed to load clause codes", logger.ErrorField(err))
	}

	executorSvc := service.NewExecutorService(redisClient.Client, services.Scrapes, service.ExecutorConfig{
		ConsumerName: cfg.Executor.ConsumerName,
		ReadBlock:    cfg.Executor.ReadBlock,
		TaskTimeout:  cfg.Executor.TaskTimeout,
		DefaultMode:  mode,
	}, appLogger)

	// one cycle covers the blocking read plus the task itself
	redisConsumer := consumer.NewRedisConsumer(executorSvc, cfg.Executor.ReadBlock+cfg.Executor.TaskTimeout, appLogger)
	redisConsumer.Start(ctx)

	appLogger.Info("Execution service started. Waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down execution service...")
	cancel()
	redisConsumer.Stop()
	appLogger.Info("Execution service stopped.")
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	rootCmd := &cobra.Command{Use: "execution-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-executor.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing execution-service CLI: %s\n", err)
		os.Exit(1)
	}
}
