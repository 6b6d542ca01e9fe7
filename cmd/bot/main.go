package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm/logger"

	"taskmanager/internal/bot"
	"taskmanager/internal/config"
	"taskmanager/internal/database"
	"taskmanager/internal/dispatch"
	"taskmanager/internal/monitoring"
	"taskmanager/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Telegram.BotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	poolConfig := database.DefaultPoolConfig()
	poolConfig.DSN = cfg.GetDatabaseDSN()
	poolConfig.ConnectRetries = cfg.Database.ConnectRetries
	poolConfig.ConnectBackoff = cfg.Database.ConnectBackoff
	if cfg.IsProduction() {
		poolConfig.LogLevel = logger.Warn
	}

	pool, err := database.NewDatabasePool(poolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	taskMetrics := monitoring.NewTaskRecorder()
	reminderService := services.NewReminderService()
	telegramService := services.NewTelegramService()

	telegramBot, err := bot.New(cfg.Telegram.BotToken, pool.DB, telegramService, taskMetrics, cfg.Telegram.PollTimeout, cfg.Telegram.SendTimeout)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	dispatcher := dispatch.NewDispatcher(
		pool.DB, reminderService, telegramService,
		telegramBot, taskMetrics, bot.FormatReminderMessage,
		cfg.Dispatch.Interval, cfg.Dispatch.Window,
	)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete")
}
