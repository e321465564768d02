package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audience values for a post
const (
	AudiencePublic    = "public"
	AudienceFollowers = "followers"
	AudiencePrivate   = "private"
)

/** --------------------ENTITIES-------------------- */

// PostMedia is one media attachment on a post
type PostMedia struct {
	URL       string `bson:"url" json:"url"`
	ObjectKey string `bson:"objectKey,omitempty" json:"-"`
	MediaType string `bson:"mediaType" json:"mediaType"` // image or video
}

// Comment is an embedded post comment
type Comment struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"user" json:"userId"`
	Text      string               `bson:"text" json:"text"`
	Likes     []primitive.ObjectID `bson:"likes,omitempty" json:"likes,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

// Report is an embedded abuse report; one per reporting user
type Report struct {
	UserID    primitive.ObjectID `bson:"user" json:"userId"`
	Reason    string             `bson:"reason" json:"reason"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Post represents the post document
type Post struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"user" json:"userId"`
	Content  string             `bson:"content,omitempty" json:"content,omitempty"`
	Hashtags []string           `bson:"hashtags,omitempty" json:"hashtags,omitempty"`
	Media    []PostMedia        `bson:"media,omitempty" json:"media,omitempty"`

	Likes    []primitive.ObjectID `bson:"likes,omitempty" json:"likes,omitempty"`
	Comments []Comment            `bson:"comments,omitempty" json:"comments,omitempty"`
	SavedBy  []primitive.ObjectID `bson:"savedBy,omitempty" json:"-"`
	Reports  []Report             `bson:"reports,omitempty" json:"-"`

	Audience   string    `bson:"audience" json:"audience"`
	IsArchived bool      `bson:"isArchived" json:"isArchived"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// LikedBy reports whether userID already likes the post
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// SavedByUser reports whether userID already saved the post
func (p *Post) SavedByUser(userID primitive.ObjectID) bool {
	for _, id := range p.SavedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// ReportedBy reports whether userID already reported the post
func (p *Post) ReportedBy(userID primitive.ObjectID) bool {
	for _, r := range p.Reports {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

/** -------------------- DTOs -------------------- */
// Request
type CreatePostRequest struct {
	Content  string      `json:"content" binding:"required,max=2200"`
	Media    []PostMedia `json:"media"`
	Audience string      `json:"audience" binding:"omitempty,oneof=public followers private"`
}

type UpdatePostRequest struct {
	Content string `json:"content" binding:"required,max=2200"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required,max=500"`
}

type ReportRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}
