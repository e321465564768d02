package story

import (
	"context"
	"errors"
	"time"

	"social-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidID = errors.New("invalid id")

// FollowGraph resolves whose stories a user can see
type FollowGraph interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type StoryService interface {
	CreateStory(ctx context.Context, userID string, req *models.CreateStoryRequest) (*models.Story, error)
	GetStory(ctx context.Context, storyID string) (*models.Story, error)
	GetActiveStories(ctx context.Context, userID string) ([]*models.Story, error)
	ViewStory(ctx context.Context, userID, storyID string) (*models.Story, error)
	ReplyToStory(ctx context.Context, userID, storyID string, req *models.StoryReplyRequest) error
	DeleteStory(ctx context.Context, userID, storyID string) error
}

type storyService struct {
	stories StoryRepository
	users   FollowGraph
}

func NewStoryService(stories StoryRepository, users FollowGraph) StoryService {
	return &storyService{
		stories: stories,
		users:   users,
	}
}

func (s *storyService) CreateStory(ctx context.Context, userID string, req *models.CreateStoryRequest) (*models.Story, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}

	return s.stories.Create(ctx, &models.Story{
		UserID: me,
		Media:  req.Media,
	})
}

func (s *storyService) GetStory(ctx context.Context, storyID string) (*models.Story, error) {
	id, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.stories.FindByID(ctx, id)
}

// GetActiveStories returns the unexpired stories of the user and everyone
// they follow.
func (s *storyService) GetActiveStories(ctx context.Context, userID string) ([]*models.Story, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}

	u, err := s.users.FindByID(ctx, me)
	if err != nil {
		return nil, err
	}

	authors := append([]primitive.ObjectID{me}, u.Following...)
	return s.stories.FindActiveByUsers(ctx, authors)
}

// ViewStory records the view and returns the story. Repeat views do not
// add duplicate viewer entries.
func (s *storyService) ViewStory(ctx context.Context, userID, storyID string) (*models.Story, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	id, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return nil, ErrInvalidID
	}

	story, err := s.stories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if story.UserID != me && !story.ViewedBy(me) {
		view := &models.StoryView{UserID: me, ViewedAt: time.Now().UTC()}
		if err := s.stories.AddView(ctx, id, view); err != nil {
			return nil, err
		}
		story.Viewers = append(story.Viewers, *view)
	}

	return story, nil
}

func (s *storyService) ReplyToStory(ctx context.Context, userID, storyID string, req *models.StoryReplyRequest) error {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	id, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return ErrInvalidID
	}

	if _, err := s.stories.FindByID(ctx, id); err != nil {
		return err
	}

	return s.stories.AddReply(ctx, id, &models.StoryReply{
		UserID:    me,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *storyService) DeleteStory(ctx context.Context, userID, storyID string) error {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	id, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return ErrInvalidID
	}
	return s.stories.Delete(ctx, id, me)
}
