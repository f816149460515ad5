package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "taskhub/internal/app"
	"taskhub/internal/bootstrap"
	"taskhub/internal/cache"
	"taskhub/internal/repository"
	"taskhub/internal/transport/http/handler"
	"taskhub/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), gin.Logger(), gin.Recovery())

	userRepo := repository.NewUserRepository(app.DB)
	taskRepo := repository.NewTaskRepository(app.DB)

	var taskCache appsvc.TaskCache
	if app.Redis != nil {
		taskCache = cache.NewTaskCache(app.Redis, time.Duration(app.Config.Redis.TaskTTLSeconds)*time.Second)
	}
	var taskEvents appsvc.TaskEventPublisher
	if app.TaskEvents != nil {
		taskEvents = app.TaskEvents
	}

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		app.Config.App.Name,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	taskService := appsvc.NewTaskService(taskRepo, taskCache, taskEvents)

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)
	requireUser := middleware.AuthJWT(authService)

	router.GET("/healthz", healthHandler.Check)

	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)
	router.GET("/user", requireUser, authHandler.Me)

	tasks := router.Group("/tasks")
	tasks.Use(requireUser)
	tasks.POST("", taskHandler.Create)
	tasks.POST("/", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	return router
}
