package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message content types
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
)

/** --------------------ENTITIES-------------------- */

// Reaction is an embedded emoji reaction on a message
type Reaction struct {
	UserID primitive.ObjectID `bson:"user" json:"userId"`
	Emoji  string             `bson:"emoji" json:"emoji"`
}

// ReadReceipt records when a user read a message
type ReadReceipt struct {
	UserID primitive.ObjectID `bson:"user" json:"userId"`
	ReadAt time.Time          `bson:"readAt" json:"readAt"`
}

// Message represents the chat message document. Exactly one of Receiver
// (direct message) or Room (room message) is set.
type Message struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SenderID primitive.ObjectID  `bson:"sender" json:"senderId"`
	Receiver *primitive.ObjectID `bson:"receiver,omitempty" json:"receiverId,omitempty"`
	Room     *primitive.ObjectID `bson:"chatRoom,omitempty" json:"roomId,omitempty"`

	Content string `bson:"content" json:"content"`
	Type    string `bson:"type" json:"type"`

	Reactions []Reaction    `bson:"reactions,omitempty" json:"reactions,omitempty"`
	ReadBy    []ReadReceipt `bson:"readBy,omitempty" json:"readBy,omitempty"`

	IsEdited  bool `bson:"isEdited" json:"isEdited"`
	IsDeleted bool `bson:"isDeleted" json:"isDeleted"`

	ExpiresAt *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// ReadByUser reports whether userID already has a read receipt
func (m *Message) ReadByUser(userID primitive.ObjectID) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
