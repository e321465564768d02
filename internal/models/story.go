package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stories disappear 24 hours after creation
const StoryTTL = 24 * time.Hour

/** --------------------ENTITIES-------------------- */

// StoryView records a viewer of a story
type StoryView struct {
	UserID   primitive.ObjectID `bson:"user" json:"userId"`
	ViewedAt time.Time          `bson:"viewedAt" json:"viewedAt"`
}

// StoryReply is an embedded text reply to a story
type StoryReply struct {
	UserID    primitive.ObjectID `bson:"user" json:"userId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Story represents the ephemeral story document
type Story struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"userId"`
	Media     []PostMedia        `bson:"media" json:"media"`
	Viewers   []StoryView        `bson:"viewers,omitempty" json:"viewers,omitempty"`
	Replies   []StoryReply       `bson:"replies,omitempty" json:"replies,omitempty"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// ViewedBy reports whether userID already viewed the story
func (s *Story) ViewedBy(userID primitive.ObjectID) bool {
	for _, v := range s.Viewers {
		if v.UserID == userID {
			return true
		}
	}
	return false
}

/** -------------------- DTOs -------------------- */
// Request
type CreateStoryRequest struct {
	Media []PostMedia `json:"media" binding:"required,min=1"`
}

type StoryReplyRequest struct {
	Text string `json:"text" binding:"required,max=500"`
}
