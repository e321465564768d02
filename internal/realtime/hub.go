package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"social-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// persistTimeout bounds the message-store round-trip; a store that never
// resolves would otherwise hang this connection's event processing forever.
const persistTimeout = 5 * time.Second

// MessageStore is the durable record of chat messages. The relay only
// appends; history retrieval is owned by the REST layer.
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
}

// RoomDirectory resolves room participants for room-addressed messages
type RoomDirectory interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ChatRoom, error)
}

// Notifier creates a notification record for a delivered message. Failures
// are the caller's to log and swallow; they never block delivery.
type Notifier interface {
	NotifyMessage(ctx context.Context, recipient primitive.ObjectID, msg *models.Message) error
}

// StatusTracker mirrors presence transitions into an external store
type StatusTracker interface {
	SetUserOnline(ctx context.Context, userID string) error
	SetUserOffline(ctx context.Context, userID string) error
}

// Hub mediates the send/receive protocol over the real-time channel. All
// handlers run in the calling connection's goroutine; shared state lives in
// the Directory, which synchronizes internally.
type Hub struct {
	directory *Directory
	messages  MessageStore
	rooms     RoomDirectory
	notifier  Notifier
	status    StatusTracker

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(directory *Directory, messages MessageStore, rooms RoomDirectory, notifier Notifier, status StatusTracker) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		directory: directory,
		messages:  messages,
		rooms:     rooms,
		notifier:  notifier,
		status:    status,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (h *Hub) Directory() *Directory {
	return h.directory
}

func (h *Hub) Stop() {
	h.cancel()
}

// HandleEvent dispatches one inbound event for a connection
func (h *Hub) HandleEvent(c *Client, event *Event) {
	switch event.Type {
	case EventRegister:
		h.handleRegister(c, event.Data)
	case EventSendMessage:
		h.HandleSendMessage(c, event.Data)
	default:
		c.sendError(ErrCodeInvalidEvent, "unknown event type: "+string(event.Type))
	}
}

func (h *Hub) handleRegister(c *Client, raw json.RawMessage) {
	var data RegisterData
	if err := json.Unmarshal(raw, &data); err != nil || data.UserID == "" {
		c.sendError(ErrCodeInvalidPayload, "register requires a userId")
		return
	}

	c.setUserID(data.UserID)
	h.directory.Register(data.UserID, c)
	slog.Info("Client registered", "clientID", c.ID(), "userID", data.UserID)

	if h.status != nil {
		if err := h.status.SetUserOnline(h.ctx, data.UserID); err != nil {
			slog.Error("Failed to set user online", "userID", data.UserID, "error", err)
		}
	}
}

// HandleDisconnect removes the connection from the presence directory. The
// directory is the sole authority on reachability; unknown connections are
// a no-op.
func (h *Hub) HandleDisconnect(c *Client) {
	c.close()

	userID, remaining := h.directory.Unregister(c)
	if userID == "" {
		return
	}
	slog.Info("Client disconnected", "clientID", c.ID(), "userID", userID, "remaining", remaining)

	if remaining == 0 && h.status != nil {
		if err := h.status.SetUserOffline(h.ctx, userID); err != nil {
			slog.Error("Failed to set user offline", "userID", userID, "error", err)
		}
	}
}

// HandleSendMessage persists and relays one message. Persistence is the
// authoritative durability point: a message that fails to persist is
// neither delivered nor acknowledged, and the sender alone is told.
func (h *Hub) HandleSendMessage(c *Client, raw json.RawMessage) {
	var data SendMessageData
	if err := json.Unmarshal(raw, &data); err != nil {
		c.sendError(ErrCodeInvalidPayload, "invalid sendMessage payload")
		return
	}
	if err := data.Validate(); err != nil {
		c.sendError(ErrCodeInvalidPayload, err.Error())
		return
	}

	msg, err := buildMessage(&data)
	if err != nil {
		c.sendError(ErrCodeInvalidPayload, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(h.ctx, persistTimeout)
	defer cancel()

	persisted, err := h.messages.Create(ctx, msg)
	if err != nil {
		slog.Error("Failed to persist message", "clientID", c.ID(), "sender", data.Sender, "error", err)
		c.sendError(ErrCodeDeliveryFailure, "message could not be delivered")
		return
	}

	recipients := h.resolveRecipients(ctx, persisted)

	// Zero live connections is not an error; the message stays durably
	// stored for later history retrieval.
	for _, recipient := range recipients {
		for _, conn := range h.directory.ConnectionsFor(recipient.Hex()) {
			if err := conn.SendEvent(EventReceiveMessage, persisted); err != nil {
				slog.Debug("Skipped push to dropped connection", "clientID", conn.ID(), "error", err)
			}
		}
	}

	// Best-effort: notification failure never reverses persistence or
	// blocks delivery.
	for _, recipient := range recipients {
		if err := h.notifier.NotifyMessage(h.ctx, recipient, persisted); err != nil {
			slog.Warn("Failed to create message notification", "recipient", recipient.Hex(), "error", err)
		}
	}
}

// resolveRecipients expands the message target into user ids: the receiver
// for a direct message, every participant except the sender for a room.
func (h *Hub) resolveRecipients(ctx context.Context, msg *models.Message) []primitive.ObjectID {
	if msg.Receiver != nil {
		return []primitive.ObjectID{*msg.Receiver}
	}

	room, err := h.rooms.FindByID(ctx, *msg.Room)
	if err != nil {
		slog.Warn("Failed to resolve room participants", "roomID", msg.Room.Hex(), "error", err)
		return nil
	}

	recipients := make([]primitive.ObjectID, 0, len(room.Participants))
	for _, p := range room.Participants {
		if p.UserID != msg.SenderID {
			recipients = append(recipients, p.UserID)
		}
	}
	return recipients
}

func buildMessage(data *SendMessageData) (*models.Message, error) {
	sender, err := primitive.ObjectIDFromHex(data.Sender)
	if err != nil {
		return nil, err
	}

	msgType := data.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	now := time.Now().UTC()
	msg := &models.Message{
		SenderID:  sender,
		Content:   data.Content,
		Type:      msgType,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if data.Receiver != "" {
		receiver, err := primitive.ObjectIDFromHex(data.Receiver)
		if err != nil {
			return nil, err
		}
		msg.Receiver = &receiver
	} else {
		room, err := primitive.ObjectIDFromHex(data.Room)
		if err != nil {
			return nil, err
		}
		msg.Room = &room
	}

	return msg, nil
}
