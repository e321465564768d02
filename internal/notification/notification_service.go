package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"social-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidID = errors.New("invalid id")

const messagePreviewLength = 80

// UserLookup resolves display names for notification content
type UserLookup interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type NotificationService interface {
	NotifyMessage(ctx context.Context, recipient primitive.ObjectID, msg *models.Message) error
	Notify(ctx context.Context, n *models.Notification) error
	GetNotifications(ctx context.Context, userID string, limit int64) ([]*models.Notification, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, userID, notificationID string) error
}

type notificationService struct {
	notifications NotificationRepository
	users         UserLookup
	publisher     EventPublisher
}

func NewNotificationService(notifications NotificationRepository, users UserLookup, publisher EventPublisher) NotificationService {
	return &notificationService{
		notifications: notifications,
		users:         users,
		publisher:     publisher,
	}
}

// NotifyMessage records an unread-message notification for the recipient.
// Content degrades gracefully when the sender lookup fails; only the
// insert itself can fail the call.
func (s *notificationService) NotifyMessage(ctx context.Context, recipient primitive.ObjectID, msg *models.Message) error {
	content := "You have a new message"
	if sender, err := s.users.FindByID(ctx, msg.SenderID); err == nil {
		content = fmt.Sprintf("%s sent you a message", sender.Username)
	}

	return s.Notify(ctx, &models.Notification{
		Recipient: recipient,
		Sender:    msg.SenderID,
		Type:      models.NotificationTypeMessage,
		Content:   content,
		Reference: models.NotificationRef{
			Type:    "Message",
			ID:      msg.ID,
			Preview: truncate(msg.Content, messagePreviewLength),
		},
	})
}

// Notify persists the notification and, when a publisher is wired,
// emits the event for downstream consumers. Publish failures are logged
// and swallowed; the stored notification is the source of truth.
func (s *notificationService) Notify(ctx context.Context, n *models.Notification) error {
	created, err := s.notifications.Create(ctx, n)
	if err != nil {
		return err
	}

	if s.publisher != nil {
		event := &models.NotificationEvent{
			NotificationID: created.ID.Hex(),
			RecipientID:    created.Recipient.Hex(),
			SenderID:       created.Sender.Hex(),
			Type:           created.Type,
			Content:        created.Content,
			CreatedAt:      created.CreatedAt,
		}
		if err := s.publisher.Publish(event); err != nil {
			slog.Warn("Failed to publish notification event", "notificationID", event.NotificationID, "error", err)
		}
	}

	return nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID string, limit int64) ([]*models.Notification, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notifications.FindByRecipient(ctx, me, limit)
}

func (s *notificationService) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, ErrInvalidID
	}
	return s.notifications.CountUnread(ctx, me)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	nid, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return ErrInvalidID
	}
	return s.notifications.MarkRead(ctx, nid, me)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	return s.notifications.MarkAllRead(ctx, me)
}

func (s *notificationService) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	nid, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return ErrInvalidID
	}
	return s.notifications.Delete(ctx, nid, me)
}

// truncate shortens s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
