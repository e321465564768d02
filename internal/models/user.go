package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

/** --------------------ENTITIES-------------------- */

// MediaRef points at an uploaded object (MinIO) used for avatars and covers
type MediaRef struct {
	URL       string `bson:"url,omitempty" json:"url,omitempty"`
	ObjectKey string `bson:"objectKey,omitempty" json:"-"`
}

// User represents the user document
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Username string             `bson:"username" json:"username"`
	FullName string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Bio      string             `bson:"bio,omitempty" json:"bio,omitempty"`
	Password string             `bson:"password" json:"-"`

	ProfilePicture MediaRef `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	CoverPhoto     MediaRef `bson:"coverPhoto,omitempty" json:"coverPhoto,omitempty"`

	IsPrivate bool `bson:"isPrivate" json:"isPrivate"`

	Followers      []primitive.ObjectID `bson:"followers,omitempty" json:"followers,omitempty"`
	Following      []primitive.ObjectID `bson:"following,omitempty" json:"following,omitempty"`
	FollowRequests []primitive.ObjectID `bson:"followRequests,omitempty" json:"followRequests,omitempty"`
	BlockedUsers   []primitive.ObjectID `bson:"blockedUsers,omitempty" json:"-"`

	EmailVerified          bool      `bson:"emailVerified" json:"emailVerified"`
	EmailVerificationToken string    `bson:"emailVerificationToken,omitempty" json:"-"`
	PasswordResetToken     string    `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires   time.Time `bson:"passwordResetExpires,omitempty" json:"-"`

	Active    bool      `bson:"active" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsFollowedBy reports whether userID is in the followers list
func (u *User) IsFollowedBy(userID primitive.ObjectID) bool {
	for _, id := range u.Followers {
		if id == userID {
			return true
		}
	}
	return false
}

// HasFollowRequestFrom reports whether userID has a pending follow request
func (u *User) HasFollowRequestFrom(userID primitive.ObjectID) bool {
	for _, id := range u.FollowRequests {
		if id == userID {
			return true
		}
	}
	return false
}

/** -------------------- DTOs -------------------- */
// Request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=30"`
	FullName string `json:"fullName"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username       string    `json:"username"`
	FullName       string    `json:"fullName"`
	Bio            string    `json:"bio" binding:"max=150"`
	ProfilePicture *MediaRef `json:"profilePicture"`
	CoverPhoto     *MediaRef `json:"coverPhoto"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// Response
type UserResponse struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	Username       string   `json:"username"`
	FullName       string   `json:"fullName,omitempty"`
	Bio            string   `json:"bio,omitempty"`
	ProfilePicture MediaRef `json:"profilePicture,omitempty"`
	CoverPhoto     MediaRef `json:"coverPhoto,omitempty"`
	IsPrivate      bool     `json:"isPrivate"`
	FollowerCount  int      `json:"followerCount"`
	FollowingCount int      `json:"followingCount"`
}

// NewUserResponse maps a user document to its public representation
func NewUserResponse(u *User) *UserResponse {
	return &UserResponse{
		ID:             u.ID.Hex(),
		Email:          u.Email,
		Username:       u.Username,
		FullName:       u.FullName,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		CoverPhoto:     u.CoverPhoto,
		IsPrivate:      u.IsPrivate,
		FollowerCount:  len(u.Followers),
		FollowingCount: len(u.Following),
	}
}
