package server

import (
	"time"

	"social-service/internal/chat"
	"social-service/internal/middleware"
	"social-service/internal/notification"
	"social-service/internal/post"
	"social-service/internal/realtime"
	"social-service/internal/services"
	"social-service/internal/story"
	"social-service/internal/upload"
	"social-service/internal/user"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router wires handlers, middleware and the websocket endpoint onto one
// gin engine
type Router struct {
	engine *gin.Engine

	hub          *realtime.Hub
	redisService *services.RedisService
	jwtSecret    string

	userHandler         *user.UserHandler
	chatHandler         *chat.ChatHandler
	postHandler         *post.PostHandler
	storyHandler        *story.StoryHandler
	notificationHandler *notification.NotificationHandler
	uploadHandler       *upload.UploadHandler
}

func NewRouter(
	hub *realtime.Hub,
	redisService *services.RedisService,
	jwtSecret string,
	userHandler *user.UserHandler,
	chatHandler *chat.ChatHandler,
	postHandler *post.PostHandler,
	storyHandler *story.StoryHandler,
	notificationHandler *notification.NotificationHandler,
	uploadHandler *upload.UploadHandler,
) *Router {
	return &Router{
		engine:              gin.New(),
		hub:                 hub,
		redisService:        redisService,
		jwtSecret:           jwtSecret,
		userHandler:         userHandler,
		chatHandler:         chatHandler,
		postHandler:         postHandler,
		storyHandler:        storyHandler,
		notificationHandler: notificationHandler,
		uploadHandler:       uploadHandler,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.LogAPI())
	r.engine.Use(middleware.CORS())

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Real-time channel; clients authenticate in-band with a register event
	r.engine.GET("/ws", func(c *gin.Context) {
		realtime.ServeWS(r.hub, c.Writer, c.Request)
	})

	auth := middleware.NewAuthMiddleware(r.jwtSecret)
	rateLimit := middleware.NewRateLimitMiddleware(r.redisService)

	v1 := r.engine.Group("/api/v1")

	public := v1.Group("")
	public.Use(rateLimit.RateLimitIP(30, time.Minute))
	r.userHandler.RegisterAuthRoutes(public)

	protected := v1.Group("")
	protected.Use(auth.RequireAuth())
	protected.Use(rateLimit.RateLimit(300, time.Minute))

	r.userHandler.RegisterRoutes(protected)
	r.chatHandler.RegisterRoutes(protected)
	r.postHandler.RegisterRoutes(protected)
	r.storyHandler.RegisterRoutes(protected)
	r.notificationHandler.RegisterRoutes(protected)
	r.uploadHandler.RegisterRoutes(protected)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
