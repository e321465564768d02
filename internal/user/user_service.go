package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"social-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrSelfFollow         = errors.New("cannot follow yourself")
	ErrNoFollowRequest    = errors.New("no pending follow request")
)

const (
	tokenTTL      = 24 * time.Hour
	resetTokenTTL = 10 * time.Minute
)

// Notifier creates social-graph notifications. Failures are logged and
// swallowed; the graph mutation is the source of truth.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

// Mailer delivers the password-reset email out of band
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, string, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.UserResponse, string, error)
	GetProfile(ctx context.Context, username string) (*models.UserResponse, error)
	GetByID(ctx context.Context, userID string) (*models.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.UserResponse, error)
	UpdatePassword(ctx context.Context, userID string, req *models.UpdatePasswordRequest) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Deactivate(ctx context.Context, userID string) error
	SetPrivacy(ctx context.Context, userID string, private bool) error
	Search(ctx context.Context, query string) ([]*models.UserResponse, error)

	Follow(ctx context.Context, userID, targetID string) (requested bool, err error)
	Unfollow(ctx context.Context, userID, targetID string) error
	AcceptFollowRequest(ctx context.Context, userID, requesterID string) error
	RejectFollowRequest(ctx context.Context, userID, requesterID string) error
	GetFollowers(ctx context.Context, userID string) ([]*models.UserResponse, error)
	GetFollowing(ctx context.Context, userID string) ([]*models.UserResponse, error)
}

type userService struct {
	users     UserRepository
	notifier  Notifier
	mailer    Mailer
	jwtSecret string
}

func NewUserService(users UserRepository, notifier Notifier, mailer Mailer, jwtSecret string) UserService {
	return &userService{
		users:     users,
		notifier:  notifier,
		mailer:    mailer,
		jwtSecret: jwtSecret,
	}
}

/** -------------------- AUTH -------------------- */

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, string, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, "", ErrEmailTaken
	}
	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, "", ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	created, err := s.users.Create(ctx, &models.User{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: string(hashed),
	})
	if err != nil {
		// The unique indexes on email/username close the check-then-insert race
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.generateToken(created)
	if err != nil {
		return nil, "", err
	}

	slog.Info("User registered", "userID", created.ID.Hex(), "username", created.Username)
	return models.NewUserResponse(created), token, nil
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.UserResponse, string, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(u)
	if err != nil {
		return nil, "", err
	}

	return models.NewUserResponse(u), token, nil
}

func (s *userService) generateToken(u *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": u.ID.Hex(),
		"email":   u.Email,
		"exp":     time.Now().Add(tokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

/** -------------------- PROFILE -------------------- */

func (s *userService) GetProfile(ctx context.Context, username string) (*models.UserResponse, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return models.NewUserResponse(u), nil
}

func (s *userService) GetByID(ctx context.Context, userID string) (*models.UserResponse, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.NewUserResponse(u), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.UserResponse, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}

	fields := bson.M{}
	if req.Username != "" {
		if existing, err := s.users.FindByUsername(ctx, req.Username); err == nil && existing.ID != id {
			return nil, ErrUsernameTaken
		}
		fields["username"] = req.Username
	}
	if req.FullName != "" {
		fields["fullName"] = req.FullName
	}
	if req.Bio != "" {
		fields["bio"] = req.Bio
	}
	if req.ProfilePicture != nil {
		fields["profilePicture"] = req.ProfilePicture
	}
	if req.CoverPhoto != nil {
		fields["coverPhoto"] = req.CoverPhoto
	}

	if len(fields) > 0 {
		if err := s.users.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.NewUserResponse(u), nil
}

func (s *userService) UpdatePassword(ctx context.Context, userID string, req *models.UpdatePasswordRequest) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdateFields(ctx, id, bson.M{"password": string(hashed)})
}

// ForgotPassword stores a hashed reset token and mails the plaintext one.
// It reports success for unknown emails so the endpoint cannot be used to
// probe which addresses are registered.
func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := hex.EncodeToString(raw)

	if err := s.users.UpdateFields(ctx, u.ID, bson.M{
		"passwordResetToken":   hashToken(token),
		"passwordResetExpires": time.Now().UTC().Add(resetTokenTTL),
	}); err != nil {
		return err
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, u.Email, token); err != nil {
			slog.Error("Failed to send password reset email", "userID", u.ID.Hex(), "error", err)
			return err
		}
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, token, newPassword string) error {
	u, err := s.users.FindByResetToken(ctx, hashToken(token))
	if err != nil {
		return ErrInvalidResetToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.users.UpdateFields(ctx, u.ID, bson.M{
		"password":             string(hashed),
		"passwordResetToken":   "",
		"passwordResetExpires": time.Time{},
	})
}

func (s *userService) Deactivate(ctx context.Context, userID string) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	return s.users.UpdateFields(ctx, id, bson.M{"active": false})
}

func (s *userService) SetPrivacy(ctx context.Context, userID string, private bool) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	return s.users.UpdateFields(ctx, id, bson.M{"isPrivate": private})
}

func (s *userService) Search(ctx context.Context, query string) ([]*models.UserResponse, error) {
	if query == "" {
		return nil, nil
	}
	users, err := s.users.Search(ctx, query, 20)
	if err != nil {
		return nil, err
	}
	return toResponses(users), nil
}

/** -------------------- SOCIAL GRAPH -------------------- */

// Follow either follows immediately (public target) or files a follow
// request (private target). The returned flag distinguishes the two.
func (s *userService) Follow(ctx context.Context, userID, targetID string) (bool, error) {
	me, target, err := parsePair(userID, targetID)
	if err != nil {
		return false, err
	}
	if me == target {
		return false, ErrSelfFollow
	}

	targetUser, err := s.users.FindByID(ctx, target)
	if err != nil {
		return false, err
	}
	if targetUser.IsFollowedBy(me) {
		return false, nil
	}

	if targetUser.IsPrivate {
		if err := s.users.AddFollowRequest(ctx, target, me); err != nil {
			return false, err
		}
		s.notifySocial(ctx, target, me, models.NotificationTypeFollowRequest, "requested to follow you")
		return true, nil
	}

	if err := s.users.AddFollower(ctx, target, me); err != nil {
		return false, err
	}
	s.notifySocial(ctx, target, me, models.NotificationTypeFollow, "started following you")
	return false, nil
}

func (s *userService) Unfollow(ctx context.Context, userID, targetID string) error {
	me, target, err := parsePair(userID, targetID)
	if err != nil {
		return err
	}

	// Also withdraw a pending request, in case the target is private
	if err := s.users.RemoveFollowRequest(ctx, target, me); err != nil {
		return err
	}
	return s.users.RemoveFollower(ctx, target, me)
}

func (s *userService) AcceptFollowRequest(ctx context.Context, userID, requesterID string) error {
	me, requester, err := parsePair(userID, requesterID)
	if err != nil {
		return err
	}

	u, err := s.users.FindByID(ctx, me)
	if err != nil {
		return err
	}
	if !u.HasFollowRequestFrom(requester) {
		return ErrNoFollowRequest
	}

	if err := s.users.RemoveFollowRequest(ctx, me, requester); err != nil {
		return err
	}
	if err := s.users.AddFollower(ctx, me, requester); err != nil {
		return err
	}

	s.notifySocial(ctx, requester, me, models.NotificationTypeFollowAccepted, "accepted your follow request")
	return nil
}

func (s *userService) RejectFollowRequest(ctx context.Context, userID, requesterID string) error {
	me, requester, err := parsePair(userID, requesterID)
	if err != nil {
		return err
	}
	return s.users.RemoveFollowRequest(ctx, me, requester)
}

func (s *userService) GetFollowers(ctx context.Context, userID string) ([]*models.UserResponse, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindMany(ctx, u.Followers)
	if err != nil {
		return nil, err
	}
	return toResponses(users), nil
}

func (s *userService) GetFollowing(ctx context.Context, userID string) ([]*models.UserResponse, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindMany(ctx, u.Following)
	if err != nil {
		return nil, err
	}
	return toResponses(users), nil
}

func (s *userService) notifySocial(ctx context.Context, recipient, sender primitive.ObjectID, notifType, action string) {
	if s.notifier == nil {
		return
	}

	content := action
	if u, err := s.users.FindByID(ctx, sender); err == nil {
		content = fmt.Sprintf("%s %s", u.Username, action)
	}

	err := s.notifier.Notify(ctx, &models.Notification{
		Recipient: recipient,
		Sender:    sender,
		Type:      notifType,
		Content:   content,
		Reference: models.NotificationRef{Type: "User", ID: sender},
	})
	if err != nil {
		slog.Warn("Failed to create follow notification", "recipient", recipient.Hex(), "type", notifType, "error", err)
	}
}

func parsePair(a, b string) (primitive.ObjectID, primitive.ObjectID, error) {
	idA, err := primitive.ObjectIDFromHex(a)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, ErrInvalidID
	}
	idB, err := primitive.ObjectIDFromHex(b)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, ErrInvalidID
	}
	return idA, idB, nil
}

func toResponses(users []*models.User) []*models.UserResponse {
	out := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, models.NewUserResponse(u))
	}
	return out
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
