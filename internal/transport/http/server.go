package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"chatlog/internal/bootstrap"
	"chatlog/internal/transport/http/handler"
	"chatlog/internal/transport/http/middleware"
)

// NewRouter wires the HTTP surface. Cross-origin access is granted to the
// single configured origin with credentials enabled.
func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{app.Config.CORS.AllowOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userHandler := handler.NewUserHandler(app.UserService)
	chatHandler := handler.NewChatHandler(app.ChatService)

	router.POST("/users/", userHandler.Register)
	router.POST("/login/", userHandler.Login)
	router.GET("/users/", userHandler.List)
	router.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), userHandler.Me)

	eventHandler := handler.NewEventHandler(app.Events)
	router.GET("/events", middleware.AuthJWT(app.Config.Auth.JWTSecret), eventHandler.List)

	router.POST("/sessions/", chatHandler.CreateSession)
	router.POST("/chats/", chatHandler.CreateChat)
	router.GET("/users/:user_id/chats", chatHandler.ListUserChats)
	router.DELETE("/session/:session_id", chatHandler.DeleteSession)

	return router
}
