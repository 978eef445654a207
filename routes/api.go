package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/andersoncassiani/chatsuite/environments"
	"github.com/andersoncassiani/chatsuite/handlers"
	"github.com/andersoncassiani/chatsuite/internal/middlewares"
)

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	conversationHandler *handlers.ConversationHandler,
	notificationHandler *handlers.NotificationHandler,
	broadcastHandler *handlers.BroadcastHandler,
	schedulerHandler *handlers.SchedulerHandler,
	cfg *environments.Config,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 base group
	v1 := e.Group("/api/v1")

	// Dashboard routes share one API key
	dashboardAuth := middlewares.APIKeyAuth(cfg.Auth.MessagesAPIKey)

	conversations := v1.Group("/conversations", dashboardAuth)

	conversations.GET("", conversationHandler.ListConversations)
	conversations.GET("/:contact", conversationHandler.GetThread)
	conversations.POST("/:contact/reply", conversationHandler.SendReply)

	notifications := v1.Group("/notifications", dashboardAuth)

	notifications.GET("", notificationHandler.GetAllNotifications)
	notifications.POST("", notificationHandler.CreateManualNotification)
	notifications.GET("/stats", notificationHandler.GetStats)
	notifications.GET("/peek", notificationHandler.PeekTasks)
	notifications.GET("/cached", notificationHandler.GetCachedNotifications)
	notifications.POST("/run", notificationHandler.RunBatch)
	notifications.POST("/:id/resend", notificationHandler.ResendNotification)
	notifications.DELETE("/:id", notificationHandler.DeleteNotification)

	v1.POST("/broadcast", broadcastHandler.Broadcast, dashboardAuth)

	// Scheduler routes with their own API key
	schedulerGroup := v1.Group("/scheduler", middlewares.APIKeyAuth(cfg.Auth.SchedulerAPIKey))

	schedulerGroup.POST("/start", schedulerHandler.StartScheduler)
	schedulerGroup.POST("/stop", schedulerHandler.StopScheduler)
	schedulerGroup.GET("/status", schedulerHandler.GetSchedulerStatus)
}
