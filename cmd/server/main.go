package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"taskmanager/internal/cache"
	"taskmanager/internal/config"
	"taskmanager/internal/database"
	"taskmanager/internal/handlers"
	"taskmanager/internal/monitoring"
	"taskmanager/internal/scheduler"
	"taskmanager/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	poolConfig := database.DefaultPoolConfig()
	poolConfig.DSN = cfg.GetDatabaseDSN()
	poolConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	poolConfig.MaxIdleConns = cfg.Database.MaxIdleConns
	poolConfig.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime
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

	if err := database.Migrate(pool.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisCache := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	defer redisCache.Close()

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		return pool.HealthCheck()
	})
	monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
		return redisCache.Ping()
	})

	taskMetrics := monitoring.NewTaskRecorder()

	authService := services.NewAuthService(cfg.Auth)
	registerService := services.NewRegisterService(cfg.Auth.BCryptCost)
	taskService := services.NewCachedTaskService(services.NewTaskService(taskMetrics), redisCache)
	timeTrackService := services.NewTimeTrackService()
	reminderService := services.NewReminderService()
	telegramService := services.NewTelegramService()

	router := handlers.NewRouter(handlers.RouterDeps{
		DB:              pool.DB,
		Config:          cfg,
		AuthService:     authService,
		RegisterService: registerService,
		TaskService:     taskService,
		TimeTracks:      timeTrackService,
		Reminders:       reminderService,
		Telegram:        telegramService,
	})

	jobs := scheduler.New(time.UTC)
	if _, err := jobs.ScheduleInterval(time.Hour, func() {
		purged, err := authService.PurgeExpiredTokens(pool.DB)
		if err != nil {
			log.Printf("Failed to purge expired tokens: %v", err)
			return
		}
		if purged > 0 {
			log.Printf("Purged %d expired refresh token(s)", purged)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule token purge: %v", err)
	}
	jobs.Start()
	defer jobs.Stop()

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Shutdown complete")
}
