package post

import (
	"context"
	"testing"
	"time"

	"social-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryPostRepo struct {
	posts map[primitive.ObjectID]*models.Post
}

func newMemoryPostRepo() *memoryPostRepo {
	return &memoryPostRepo{posts: make(map[primitive.ObjectID]*models.Post)}
}

func (m *memoryPostRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	p.ID = primitive.NewObjectID()
	if p.Audience == "" {
		p.Audience = models.AudiencePublic
	}
	m.posts[p.ID] = p
	return p, nil
}

func (m *memoryPostRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	if p, ok := m.posts[id]; ok {
		return p, nil
	}
	return nil, ErrPostNotFound
}

func (m *memoryPostRepo) FindFeed(ctx context.Context, authors []primitive.ObjectID, before time.Time, limit int64) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range m.posts {
		for _, a := range authors {
			if p.UserID == a && p.Audience != models.AudiencePrivate {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (m *memoryPostRepo) FindByUser(ctx context.Context, userID primitive.ObjectID, before time.Time, limit int64) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range m.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryPostRepo) FindByHashtag(ctx context.Context, tag string, limit int64) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range m.posts {
		for _, h := range p.Hashtags {
			if h == tag {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (m *memoryPostRepo) FindSavedBy(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range m.posts {
		if p.SavedByUser(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryPostRepo) UpdateContent(ctx context.Context, id, userID primitive.ObjectID, content string, hashtags []string) error {
	p, ok := m.posts[id]
	if !ok || p.UserID != userID {
		return ErrPostNotFound
	}
	p.Content = content
	p.Hashtags = hashtags
	return nil
}

func (m *memoryPostRepo) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	p, ok := m.posts[id]
	if !ok || p.UserID != userID {
		return ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *memoryPostRepo) RemoveComment(ctx context.Context, id, commentID, userID primitive.ObjectID) error {
	p, ok := m.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	out := p.Comments[:0]
	removed := false
	for _, c := range p.Comments {
		if c.ID == commentID && c.UserID == userID {
			removed = true
			continue
		}
		out = append(out, c)
	}
	p.Comments = out
	if !removed {
		return ErrCommentNotFound
	}
	return nil
}

func (m *memoryPostRepo) LikeComment(ctx context.Context, id, commentID, userID primitive.ObjectID) error {
	p, ok := m.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			p.Comments[i].Likes = append(p.Comments[i].Likes, userID)
			return nil
		}
	}
	return ErrCommentNotFound
}

func (m *memoryPostRepo) AddSave(ctx context.Context, id, userID primitive.ObjectID) error {
	p, ok := m.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	if !p.SavedByUser(userID) {
		p.SavedBy = append(p.SavedBy, userID)
	}
	return nil
}

func (m *memoryPostRepo) RemoveSave(ctx context.Context, id, userID primitive.ObjectID) error {
	p, ok := m.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	out := p.SavedBy[:0]
	for _, v := range p.SavedBy {
		if v != userID {
			out = append(out, v)
		}
	}
	p.SavedBy = out
	return nil
}

func (m *memoryPostRepo) AddReport(ctx context.Context, id primitive.ObjectID, report *models.Report) error {
	p, ok := m.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	p.Reports = append(p.Reports, *report)
	return nil
}

func (m *memoryPostRepo) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	p, ok := m.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	if !p.LikedBy(userID) {
		p.Likes = append(p.Likes, userID)
	}
	return nil
}

func (m *memoryPostRepo) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	p, ok := m.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	out := p.Likes[:0]
	for _, v := range p.Likes {
		if v != userID {
			out = append(out, v)
		}
	}
	p.Likes = out
	return nil
}

func (m *memoryPostRepo) AddComment(ctx context.Context, id primitive.ObjectID, comment *models.Comment) error {
	p, ok := m.posts[id]
	if !ok {
		return ErrPostNotFound
	}
	comment.ID = primitive.NewObjectID()
	p.Comments = append(p.Comments, *comment)
	return nil
}

type fakeGraph struct {
	users map[primitive.ObjectID]*models.User
}

func (f *fakeGraph) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, ErrInvalidID
}

type recordingNotifier struct {
	notifications []*models.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n *models.Notification) error {
	r.notifications = append(r.notifications, n)
	return nil
}

func TestExtractHashtags(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    []string
	}{
		{"None", "just a plain post", nil},
		{"Single", "sunset vibes #photography", []string{"photography"}},
		{"Multiple", "#GoLang and #backend and #golang again", []string{"golang", "backend"}},
		{"Adjacent", "#one#two", []string{"one", "two"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractHashtags(tc.content))
		})
	}
}

func TestCreatePost(t *testing.T) {
	repo := newMemoryPostRepo()
	owner := primitive.NewObjectID()
	svc := NewPostService(repo, &fakeGraph{}, nil)

	p, err := svc.CreatePost(context.Background(), owner.Hex(), &models.CreatePostRequest{
		Content: "hello #world from #gopher",
	})
	require.NoError(t, err)

	assert.Equal(t, owner, p.UserID)
	assert.Equal(t, []string{"world", "gopher"}, p.Hashtags)
	assert.Equal(t, models.AudiencePublic, p.Audience)

	t.Run("InvalidOwner", func(t *testing.T) {
		_, err := svc.CreatePost(context.Background(), "nope", &models.CreatePostRequest{Content: "x"})
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestLikePost(t *testing.T) {
	repo := newMemoryPostRepo()
	owner := primitive.NewObjectID()
	liker := primitive.NewObjectID()
	graph := &fakeGraph{users: map[primitive.ObjectID]*models.User{
		liker: {ID: liker, Username: "bob"},
	}}
	notifier := &recordingNotifier{}
	svc := NewPostService(repo, graph, notifier)
	ctx := context.Background()

	p, err := repo.Create(ctx, &models.Post{UserID: owner, Content: "pic"})
	require.NoError(t, err)

	require.NoError(t, svc.LikePost(ctx, liker.Hex(), p.ID.Hex()))
	assert.True(t, repo.posts[p.ID].LikedBy(liker))

	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, models.NotificationTypeLike, notifier.notifications[0].Type)
	assert.Equal(t, owner, notifier.notifications[0].Recipient)
	assert.Contains(t, notifier.notifications[0].Content, "bob")

	t.Run("RepeatLikeIsIdempotent", func(t *testing.T) {
		require.NoError(t, svc.LikePost(ctx, liker.Hex(), p.ID.Hex()))
		assert.Len(t, repo.posts[p.ID].Likes, 1)
		assert.Len(t, notifier.notifications, 1)
	})

	t.Run("OwnPostNoNotification", func(t *testing.T) {
		own, err := repo.Create(ctx, &models.Post{UserID: liker, Content: "mine"})
		require.NoError(t, err)

		require.NoError(t, svc.LikePost(ctx, liker.Hex(), own.ID.Hex()))
		assert.Len(t, notifier.notifications, 1)
	})

	t.Run("Unlike", func(t *testing.T) {
		require.NoError(t, svc.UnlikePost(ctx, liker.Hex(), p.ID.Hex()))
		assert.False(t, repo.posts[p.ID].LikedBy(liker))
	})
}

func TestAddComment(t *testing.T) {
	repo := newMemoryPostRepo()
	owner := primitive.NewObjectID()
	commenter := primitive.NewObjectID()
	graph := &fakeGraph{users: map[primitive.ObjectID]*models.User{
		commenter: {ID: commenter, Username: "carol"},
	}}
	notifier := &recordingNotifier{}
	svc := NewPostService(repo, graph, notifier)
	ctx := context.Background()

	p, err := repo.Create(ctx, &models.Post{UserID: owner, Content: "thoughts?"})
	require.NoError(t, err)

	require.NoError(t, svc.AddComment(ctx, commenter.Hex(), p.ID.Hex(), &models.CommentRequest{Text: "nice"}))

	require.Len(t, repo.posts[p.ID].Comments, 1)
	assert.Equal(t, "nice", repo.posts[p.ID].Comments[0].Text)

	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, models.NotificationTypeComment, notifier.notifications[0].Type)

	t.Run("MissingPost", func(t *testing.T) {
		err := svc.AddComment(ctx, commenter.Hex(), primitive.NewObjectID().Hex(), &models.CommentRequest{Text: "x"})
		assert.ErrorIs(t, err, ErrPostNotFound)
	})
}
