package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"email-assistant/internal/ai"
	appsvc "email-assistant/internal/app"
	"email-assistant/internal/bootstrap"
	"email-assistant/internal/cache"
	"email-assistant/internal/platform/rabbitmq"
	"email-assistant/internal/repository"
	"email-assistant/internal/transport/http/handler"
	"email-assistant/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	logRepo := repository.NewEmailLogRepository(app.MySQL)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.LoginTokenMinute)*time.Minute,
	)

	logCache := cache.NewLogCache(
		app.Redis,
		time.Duration(app.Config.Redis.LogTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.LogDirtyTTLSeconds)*time.Second,
	)
	usagePublisher := rabbitmq.NewUsagePublisher(app.MQConn, app.Config.RabbitMQ.UsageEventQueue)
	draftService := appsvc.NewDraftService(
		logRepo,
		ai.NewOpenAICompatibleClient(),
		ai.ChatConfig{
			BaseURL: app.Config.LLM.BaseURL,
			APIKey:  app.Config.LLM.APIKey,
			Model:   app.Config.LLM.Model,
		},
		usagePublisher,
		logCache,
	)

	userHandler := handler.NewUserHandler(authService)
	emailHandler := handler.NewEmailHandler(draftService)
	logHandler := handler.NewLogHandler(draftService)

	authRequired := middleware.AuthUser(app.Config.Auth.JWTSecret, userRepo)

	users := router.Group("/users")
	users.POST("/register", userHandler.Register)
	users.POST("/login", userHandler.Login)

	generate := router.Group("/generate")
	generate.Use(authRequired)
	generate.POST("/", emailHandler.Generate)

	logs := router.Group("/logs")
	logs.Use(authRequired)
	logs.GET("/", logHandler.List)
	logs.GET("/:id", logHandler.Get)

	return router
}
