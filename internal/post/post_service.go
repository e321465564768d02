package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"social-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrNotPostOwner    = errors.New("not the post owner")
	ErrAlreadyReported = errors.New("post already reported")
)

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

const defaultFeedLimit = 20

// FollowGraph resolves whose posts belong in a user's feed
type FollowGraph interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Notifier creates like/comment notifications. Failures are logged and
// swallowed.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

type PostService interface {
	CreatePost(ctx context.Context, userID string, req *models.CreatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	GetFeed(ctx context.Context, userID string, before time.Time, limit int64) ([]*models.Post, error)
	GetUserPosts(ctx context.Context, userID string, before time.Time, limit int64) ([]*models.Post, error)
	GetByHashtag(ctx context.Context, tag string) ([]*models.Post, error)
	GetSavedPosts(ctx context.Context, userID string) ([]*models.Post, error)
	UpdatePost(ctx context.Context, userID, postID string, req *models.UpdatePostRequest) error
	DeletePost(ctx context.Context, userID, postID string) error

	LikePost(ctx context.Context, userID, postID string) error
	UnlikePost(ctx context.Context, userID, postID string) error
	AddComment(ctx context.Context, userID, postID string, req *models.CommentRequest) error
	DeleteComment(ctx context.Context, userID, postID, commentID string) error
	LikeComment(ctx context.Context, userID, postID, commentID string) error
	SavePost(ctx context.Context, userID, postID string) error
	UnsavePost(ctx context.Context, userID, postID string) error
	ReportPost(ctx context.Context, userID, postID string, req *models.ReportRequest) error
}

type postService struct {
	posts    PostRepository
	users    FollowGraph
	notifier Notifier
}

func NewPostService(posts PostRepository, users FollowGraph, notifier Notifier) PostService {
	return &postService{
		posts:    posts,
		users:    users,
		notifier: notifier,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID string, req *models.CreatePostRequest) (*models.Post, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}

	return s.posts.Create(ctx, &models.Post{
		UserID:   me,
		Content:  req.Content,
		Hashtags: extractHashtags(req.Content),
		Media:    req.Media,
		Audience: req.Audience,
	})
}

func (s *postService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	id, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.posts.FindByID(ctx, id)
}

// GetFeed returns posts from the user and everyone they follow,
// newest first.
func (s *postService) GetFeed(ctx context.Context, userID string, before time.Time, limit int64) ([]*models.Post, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}

	u, err := s.users.FindByID(ctx, me)
	if err != nil {
		return nil, err
	}

	authors := append([]primitive.ObjectID{me}, u.Following...)
	if limit <= 0 || limit > 100 {
		limit = defaultFeedLimit
	}
	return s.posts.FindFeed(ctx, authors, before, limit)
}

func (s *postService) GetUserPosts(ctx context.Context, userID string, before time.Time, limit int64) ([]*models.Post, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	if limit <= 0 || limit > 100 {
		limit = defaultFeedLimit
	}
	return s.posts.FindByUser(ctx, id, before, limit)
}

func (s *postService) GetByHashtag(ctx context.Context, tag string) ([]*models.Post, error) {
	tag = strings.ToLower(strings.TrimPrefix(tag, "#"))
	if tag == "" {
		return nil, nil
	}
	return s.posts.FindByHashtag(ctx, tag, 50)
}

func (s *postService) GetSavedPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.posts.FindSavedBy(ctx, me, 50)
}

func (s *postService) UpdatePost(ctx context.Context, userID, postID string, req *models.UpdatePostRequest) error {
	me, id, err := parsePair(userID, postID)
	if err != nil {
		return err
	}
	return s.posts.UpdateContent(ctx, id, me, req.Content, extractHashtags(req.Content))
}

func (s *postService) DeletePost(ctx context.Context, userID, postID string) error {
	me, id, err := parsePair(userID, postID)
	if err != nil {
		return err
	}
	return s.posts.Delete(ctx, id, me)
}

/** -------------------- ENGAGEMENT -------------------- */

func (s *postService) LikePost(ctx context.Context, userID, postID string) error {
	me, id, err := parsePair(userID, postID)
	if err != nil {
		return err
	}

	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p.LikedBy(me) {
		return nil
	}

	if err := s.posts.AddLike(ctx, id, me); err != nil {
		return err
	}

	if p.UserID != me {
		s.notifyEngagement(ctx, p, me, models.NotificationTypeLike, "liked your post")
	}
	return nil
}

func (s *postService) UnlikePost(ctx context.Context, userID, postID string) error {
	me, id, err := parsePair(userID, postID)
	if err != nil {
		return err
	}
	return s.posts.RemoveLike(ctx, id, me)
}

func (s *postService) AddComment(ctx context.Context, userID, postID string, req *models.CommentRequest) error {
	me, id, err := parsePair(userID, postID)
	if err != nil {
		return err
	}

	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.posts.AddComment(ctx, id, &models.Comment{UserID: me, Text: req.Text}); err != nil {
		return err
	}

	if p.UserID != me {
		s.notifyEngagement(ctx, p, me, models.NotificationTypeComment, "commented on your post")
	}
	return nil
}

func (s *postService) DeleteComment(ctx context.Context, userID, postID, commentID string) error {
	me, id, err := parsePair(userID, postID)
	if err != nil {
		return err
	}
	cid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return ErrInvalidID
	}
	return s.posts.RemoveComment(ctx, id, cid, me)
}

func (s *postService) LikeComment(ctx context.Context, userID, postID, commentID string) error {
	me, id, err := parsePair(userID, postID)
	if err != nil {
		return err
	}
	cid, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return ErrInvalidID
	}
	return s.posts.LikeComment(ctx, id, cid, me)
}

func (s *postService) SavePost(ctx context.Context, userID, postID string) error {
	me, id, err := parsePair(userID, postID)
	if err != nil {
		return err
	}
	return s.posts.AddSave(ctx, id, me)
}

func (s *postService) UnsavePost(ctx context.Context, userID, postID string) error {
	me, id, err := parsePair(userID, postID)
	if err != nil {
		return err
	}
	return s.posts.RemoveSave(ctx, id, me)
}

func (s *postService) ReportPost(ctx context.Context, userID, postID string, req *models.ReportRequest) error {
	me, id, err := parsePair(userID, postID)
	if err != nil {
		return err
	}

	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p.ReportedBy(me) {
		return ErrAlreadyReported
	}

	return s.posts.AddReport(ctx, id, &models.Report{UserID: me, Reason: req.Reason})
}

func (s *postService) notifyEngagement(ctx context.Context, p *models.Post, sender primitive.ObjectID, notifType, action string) {
	if s.notifier == nil {
		return
	}

	content := action
	if u, err := s.users.FindByID(ctx, sender); err == nil {
		content = fmt.Sprintf("%s %s", u.Username, action)
	}

	err := s.notifier.Notify(ctx, &models.Notification{
		Recipient: p.UserID,
		Sender:    sender,
		Type:      notifType,
		Content:   content,
		Reference: models.NotificationRef{Type: "Post", ID: p.ID, Preview: truncate(p.Content, 80)},
	})
	if err != nil {
		slog.Warn("Failed to create engagement notification", "postID", p.ID.Hex(), "type", notifType, "error", err)
	}
}

// extractHashtags pulls lowercased #tags out of post content
func extractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

func parsePair(userID, postID string) (primitive.ObjectID, primitive.ObjectID, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, ErrInvalidID
	}
	id, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, ErrInvalidID
	}
	return me, id, nil
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
