package handlers

import (
	"taskmanager/internal/config"
	"taskmanager/internal/middleware"
	"taskmanager/internal/monitoring"
	"taskmanager/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RouterDeps struct {
	DB              *gorm.DB
	Config          *config.Config
	AuthService     services.AuthService
	RegisterService services.RegisterService
	TaskService     services.TaskService
	TimeTracks      services.TimeTrackService
	Reminders       services.ReminderService
	Telegram        services.TelegramService
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.Use(monitoring.MetricsMiddleware())
	router.Use(cors.Default())

	if deps.Config.RateLimit.Enabled {
		router.Use(middleware.NewRateLimiter(deps.Config.RateLimit).Middleware())
	}

	router.GET("/metrics", monitoring.MetricsHandler())
	router.GET("/healthz", monitoring.HealthHandler())
	router.GET("/readyz", monitoring.ReadinessHandler())
	router.GET("/livez", monitoring.LivenessHandler())

	authHandler := NewAuthHandler(deps.DB, deps.AuthService, deps.Config.Auth.AccessTokenTTL)
	registerHandler := NewRegisterHandler(deps.DB, deps.RegisterService)
	refreshHandler := NewRefreshHandler(deps.DB, deps.AuthService)
	logoutHandler := NewLogoutHandler(deps.DB, deps.AuthService)
	taskHandler := NewTaskHandler(deps.DB, deps.TaskService)
	timeTrackHandler := NewTimeTrackHandler(deps.DB, deps.TimeTracks)
	reminderHandler := NewReminderHandler(deps.DB, deps.Reminders)
	telegramHandler := NewTelegramHandler(deps.DB, deps.Telegram)

	authRequired := middleware.AuthMiddleware(deps.Config.Auth.JWTSecret)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", registerHandler.Registration)
			auth.POST("/token", authHandler.Token)
			auth.POST("/refresh", refreshHandler.Refresh)
			auth.POST("/logout", logoutHandler.Logout)
			auth.GET("/me", authRequired, authHandler.Me)
		}

		tasks := api.Group("/tasks", authRequired)
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("", taskHandler.GetTasks)
			tasks.GET("/:id", taskHandler.GetTaskByID)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)

			tasks.POST("/:id/recurring", taskHandler.CreateRecurring)
			tasks.GET("/:id/recurring", taskHandler.GetRecurring)
			tasks.PUT("/:id/recurring", taskHandler.UpdateRecurring)
			tasks.DELETE("/:id/recurring", taskHandler.DeleteRecurring)

			tasks.POST("/:id/time", timeTrackHandler.CreateEntry)
			tasks.GET("/:id/time", timeTrackHandler.ListEntries)
			tasks.POST("/:id/time/start", timeTrackHandler.StartTracking)
			tasks.POST("/:id/time/stop", timeTrackHandler.StopTracking)

			tasks.POST("/:id/reminders", reminderHandler.CreateReminder)
			tasks.GET("/:id/reminders", reminderHandler.ListReminders)
		}

		timeTracks := api.Group("/time", authRequired)
		{
			timeTracks.GET("/:id", timeTrackHandler.GetEntry)
			timeTracks.PUT("/:id", timeTrackHandler.UpdateEntry)
			timeTracks.DELETE("/:id", timeTrackHandler.DeleteEntry)
		}

		reminders := api.Group("/reminders", authRequired)
		{
			reminders.GET("/:id", reminderHandler.GetReminder)
			reminders.PUT("/:id", reminderHandler.UpdateReminder)
			reminders.DELETE("/:id", reminderHandler.DeleteReminder)
		}

		telegram := api.Group("/telegram", authRequired)
		{
			telegram.POST("/connect", telegramHandler.Connect)
			telegram.GET("/connection", telegramHandler.GetConnection)
			telegram.PUT("/connection", telegramHandler.UpdateConnection)
			telegram.DELETE("/connection", telegramHandler.DeleteConnection)
		}
	}

	return router
}
