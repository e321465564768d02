package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Room types
const (
	RoomTypeDirect  = "direct"
	RoomTypeGroup   = "group"
	RoomTypeChannel = "channel"
)

// Participant roles
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleMember    = "member"
)

/** --------------------ENTITIES-------------------- */

// Participant is an embedded chat room membership
type Participant struct {
	UserID     primitive.ObjectID `bson:"user" json:"userId"`
	Role       string             `bson:"role" json:"role"`
	JoinedAt   time.Time          `bson:"joinedAt" json:"joinedAt"`
	LastReadAt time.Time          `bson:"lastReadAt" json:"lastReadAt"`
	IsMuted    bool               `bson:"isMuted" json:"isMuted"`
	IsPinned   bool               `bson:"isPinned" json:"isPinned"`
}

// RoomSettings holds per-room toggles
type RoomSettings struct {
	IsPublic     bool `bson:"isPublic" json:"isPublic"`
	AllowInvites bool `bson:"allowInvites" json:"allowInvites"`
}

// ChatRoom represents a multi-participant chat context
type ChatRoom struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name,omitempty" json:"name,omitempty"`
	Type         string              `bson:"type" json:"type"`
	Description  string              `bson:"description,omitempty" json:"description,omitempty"`
	Participants []Participant       `bson:"participants" json:"participants"`
	CreatedBy    primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	Settings     RoomSettings        `bson:"settings" json:"settings"`
	LastMessage  *primitive.ObjectID `bson:"lastMessage,omitempty" json:"lastMessageId,omitempty"`
	IsArchived   bool                `bson:"isArchived" json:"isArchived"`
	IsDeleted    bool                `bson:"isDeleted" json:"isDeleted"`

	// DirectMessageKey prevents DM room duplication: sorted pair of user ids
	DirectMessageKey string `bson:"directMessageKey,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether userID is a member of the room
func (r *ChatRoom) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the user ids of all room members
func (r *ChatRoom) ParticipantIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(r.Participants))
	for _, p := range r.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// DirectKey builds the deduplication key for a DM room between two users
func DirectKey(a, b primitive.ObjectID) string {
	pair := []string{a.Hex(), b.Hex()}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}
