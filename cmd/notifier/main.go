package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"social-service/internal/config"
	"social-service/internal/database"
	"social-service/internal/mailer"
	"social-service/internal/models"
	"social-service/internal/user"

	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The notifier consumes notification events from Kafka and delivers them
// by email. It runs as a separate binary so slow SMTP round-trips never
// sit on the API serving path.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting notification dispatcher")

	mongoDB, err := database.NewMongoConnection(&cfg.Mongo)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer mongoDB.Close(context.Background())

	userRepo := user.NewUserRepository(mongoDB.DB)
	smtpMailer := mailer.NewSMTPMailer(&cfg.SMTP)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.ConsumerGroup,
		Topic:   cfg.Kafka.NotificationTopic,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("Shutting down dispatcher...")
		cancel()
	}()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			slog.Error("Failed to read message", "error", err)
			continue
		}

		var event models.NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Warn("Skipping malformed event", "offset", msg.Offset, "error", err)
			continue
		}

		if err := dispatch(ctx, userRepo, smtpMailer, &event); err != nil {
			slog.Error("Failed to dispatch notification", "notificationID", event.NotificationID, "error", err)
		}
	}

	slog.Info("Dispatcher exited")
}

func dispatch(ctx context.Context, users user.UserRepository, m mailer.Mailer, event *models.NotificationEvent) error {
	recipient, err := primitive.ObjectIDFromHex(event.RecipientID)
	if err != nil {
		return fmt.Errorf("invalid recipient id %q: %w", event.RecipientID, err)
	}

	u, err := users.FindByID(ctx, recipient)
	if err != nil {
		return err
	}

	subject := "New activity on your account"
	body := event.Content
	if body == "" {
		body = "You have new activity. Open the app to see it."
	}

	slog.Debug("Dispatching notification email", "recipient", u.Email, "type", event.Type)
	return m.SendNotificationDigest(ctx, u.Email, subject, body)
}
