package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationTypeMessage        = "message"
	NotificationTypeLike           = "like"
	NotificationTypeComment        = "comment"
	NotificationTypeFollow         = "follow"
	NotificationTypeFollowRequest  = "follow_request"
	NotificationTypeFollowAccepted = "follow_accepted"
)

// Notifications are kept for 30 days, then expire via TTL index
const NotificationTTL = 30 * 24 * time.Hour

/** --------------------ENTITIES-------------------- */

// NotificationRef points at the entity the notification is about
type NotificationRef struct {
	Type    string             `bson:"type,omitempty" json:"type,omitempty"` // Message, Post, User
	ID      primitive.ObjectID `bson:"id,omitempty" json:"id,omitempty"`
	Preview string             `bson:"preview,omitempty" json:"preview,omitempty"`
}

// Notification represents the notification document
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Recipient primitive.ObjectID `bson:"recipient" json:"recipientId"`
	Sender    primitive.ObjectID `bson:"sender" json:"senderId"`
	Type      string             `bson:"type" json:"type"`
	Content   string             `bson:"content,omitempty" json:"content,omitempty"`
	Reference NotificationRef    `bson:"reference,omitempty" json:"reference,omitempty"`
	IsRead    bool               `bson:"isRead" json:"isRead"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

/** -------------------- EVENTS -------------------- */

// NotificationEvent is the payload published to Kafka for downstream
// consumers (mail dispatch, analytics)
type NotificationEvent struct {
	NotificationID string    `json:"notificationId"`
	RecipientID    string    `json:"recipientId"`
	SenderID       string    `json:"senderId"`
	Type           string    `json:"type"`
	Content        string    `json:"content,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
