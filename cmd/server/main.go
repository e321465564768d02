package main

// @title           Social Service API
// @version         1.0
// @description     A RESTful API and real-time messaging service for a social network
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-service/internal/chat"
	"social-service/internal/config"
	"social-service/internal/database"
	"social-service/internal/mailer"
	"social-service/internal/notification"
	"social-service/internal/post"
	"social-service/internal/realtime"
	"social-service/internal/server"
	"social-service/internal/services"
	"social-service/internal/story"
	"social-service/internal/upload"
	"social-service/internal/user"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting social server")

	// Initialize Redis connection
	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Initialize MongoDB connection
	mongoDB, err := database.NewMongoConnection(&cfg.Mongo)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer mongoDB.Close(context.Background())

	// Initialize MinIO connection
	minioClient, err := database.NewMinIOClient(&cfg.Minio)
	if err != nil {
		slog.Error("Failed to connect to MinIO", "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := user.NewUserRepository(mongoDB.DB)
	messageRepo := chat.NewMessageRepository(mongoDB.DB)
	roomRepo := chat.NewChatRoomRepository(mongoDB.DB)
	postRepo := post.NewPostRepository(mongoDB.DB)
	storyRepo := story.NewStoryRepository(mongoDB.DB)
	notificationRepo := notification.NewNotificationRepository(mongoDB.DB)

	// Notification event fan-out is optional; the stored notification is
	// the source of truth either way
	var publisher notification.EventPublisher
	if cfg.Kafka.Enabled {
		publisher, err = notification.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)
		if err != nil {
			slog.Error("Failed to connect to Kafka", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
	}

	// Services
	redisService := services.NewRedisService(redisClient)
	notificationService := notification.NewNotificationService(notificationRepo, userRepo, publisher)
	smtpMailer := mailer.NewSMTPMailer(&cfg.SMTP)
	userService := user.NewUserService(userRepo, notificationService, smtpMailer, cfg.JWT.Secret)
	chatService := chat.NewChatService(messageRepo, roomRepo)
	postService := post.NewPostService(postRepo, userRepo, notificationService)
	storyService := story.NewStoryService(storyRepo, userRepo)

	// Real-time hub
	directory := realtime.NewDirectory()
	hub := realtime.NewHub(directory, messageRepo, roomRepo, notificationService, redisService)
	defer hub.Stop()

	// Handlers
	userHandler := user.NewUserHandler(userService, redisService)
	chatHandler := chat.NewChatHandler(chatService)
	postHandler := post.NewPostHandler(postService)
	storyHandler := story.NewStoryHandler(storyService)
	notificationHandler := notification.NewNotificationHandler(notificationService)
	uploadHandler := upload.NewUploadHandler(minioClient)

	// Router
	router := server.NewRouter(
		hub,
		redisService,
		cfg.JWT.Secret,
		userHandler,
		chatHandler,
		postHandler,
		storyHandler,
		notificationHandler,
		uploadHandler,
	)
	router.SetupRoutes()

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
