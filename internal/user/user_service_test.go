package user

import (
	"context"
	"testing"

	"social-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *memoryUserRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Active = true
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := m.users[id]; ok && u.Active {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (m *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email && u.Active {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryUserRepo) FindByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	for _, u := range m.users {
		if u.PasswordResetToken == tokenHash {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryUserRepo) FindMany(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memoryUserRepo) Search(ctx context.Context, query string, limit int64) ([]*models.User, error) {
	return nil, nil
}

func (m *memoryUserRepo) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if v, ok := fields["password"]; ok {
		u.Password = v.(string)
	}
	if v, ok := fields["passwordResetToken"]; ok {
		u.PasswordResetToken = v.(string)
	}
	if v, ok := fields["isPrivate"]; ok {
		u.IsPrivate = v.(bool)
	}
	if v, ok := fields["active"]; ok {
		u.Active = v.(bool)
	}
	return nil
}

func (m *memoryUserRepo) AddFollower(ctx context.Context, target, follower primitive.ObjectID) error {
	m.users[target].Followers = append(m.users[target].Followers, follower)
	m.users[follower].Following = append(m.users[follower].Following, target)
	return nil
}

func (m *memoryUserRepo) RemoveFollower(ctx context.Context, target, follower primitive.ObjectID) error {
	m.users[target].Followers = removeID(m.users[target].Followers, follower)
	m.users[follower].Following = removeID(m.users[follower].Following, target)
	return nil
}

func (m *memoryUserRepo) AddFollowRequest(ctx context.Context, target, requester primitive.ObjectID) error {
	m.users[target].FollowRequests = append(m.users[target].FollowRequests, requester)
	return nil
}

func (m *memoryUserRepo) RemoveFollowRequest(ctx context.Context, target, requester primitive.ObjectID) error {
	m.users[target].FollowRequests = removeID(m.users[target].FollowRequests, requester)
	return nil
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type recordingNotifier struct {
	notifications []*models.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n *models.Notification) error {
	r.notifications = append(r.notifications, n)
	return nil
}

func newTestService(repo *memoryUserRepo, notifier *recordingNotifier) UserService {
	return NewUserService(repo, notifier, nil, "test-secret")
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestService(repo, &recordingNotifier{})
	ctx := context.Background()

	resp, token, err := svc.Register(ctx, &models.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", resp.Username)

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, _, err := svc.Register(ctx, &models.RegisterRequest{
			Email:    "alice@example.com",
			Username: "alice2",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, _, err := svc.Register(ctx, &models.RegisterRequest{
			Email:    "other@example.com",
			Username: "alice",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("LoginSuccess", func(t *testing.T) {
		resp, token, err := svc.Login(ctx, &models.LoginRequest{
			Email:    "alice@example.com",
			Password: "secret123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "alice", resp.Username)
	})

	t.Run("LoginWrongPassword", func(t *testing.T) {
		_, _, err := svc.Login(ctx, &models.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("LoginUnknownEmail", func(t *testing.T) {
		_, _, err := svc.Login(ctx, &models.LoginRequest{
			Email:    "ghost@example.com",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func seedUser(t *testing.T, repo *memoryUserRepo, username string, private bool) *models.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &models.User{
		Email:     username + "@example.com",
		Username:  username,
		IsPrivate: private,
	})
	require.NoError(t, err)
	return u
}

func TestFollowPublicAccount(t *testing.T) {
	repo := newMemoryUserRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	alice := seedUser(t, repo, "alice", false)
	bob := seedUser(t, repo, "bob", false)

	requested, err := svc.Follow(ctx, alice.ID.Hex(), bob.ID.Hex())
	require.NoError(t, err)
	assert.False(t, requested)

	assert.True(t, repo.users[bob.ID].IsFollowedBy(alice.ID))

	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, models.NotificationTypeFollow, notifier.notifications[0].Type)
	assert.Equal(t, bob.ID, notifier.notifications[0].Recipient)

	t.Run("RepeatFollowIsNoOp", func(t *testing.T) {
		_, err := svc.Follow(ctx, alice.ID.Hex(), bob.ID.Hex())
		require.NoError(t, err)
		assert.Len(t, repo.users[bob.ID].Followers, 1)
		assert.Len(t, notifier.notifications, 1)
	})
}

func TestFollowPrivateAccount(t *testing.T) {
	repo := newMemoryUserRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, notifier)
	ctx := context.Background()

	alice := seedUser(t, repo, "alice", false)
	carol := seedUser(t, repo, "carol", true)

	requested, err := svc.Follow(ctx, alice.ID.Hex(), carol.ID.Hex())
	require.NoError(t, err)
	assert.True(t, requested)

	// A request is filed, not a follow edge
	assert.False(t, repo.users[carol.ID].IsFollowedBy(alice.ID))
	assert.True(t, repo.users[carol.ID].HasFollowRequestFrom(alice.ID))

	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, models.NotificationTypeFollowRequest, notifier.notifications[0].Type)

	t.Run("Accept", func(t *testing.T) {
		err := svc.AcceptFollowRequest(ctx, carol.ID.Hex(), alice.ID.Hex())
		require.NoError(t, err)

		assert.True(t, repo.users[carol.ID].IsFollowedBy(alice.ID))
		assert.False(t, repo.users[carol.ID].HasFollowRequestFrom(alice.ID))

		require.Len(t, notifier.notifications, 2)
		assert.Equal(t, models.NotificationTypeFollowAccepted, notifier.notifications[1].Type)
		assert.Equal(t, alice.ID, notifier.notifications[1].Recipient)
	})

	t.Run("AcceptWithoutRequest", func(t *testing.T) {
		err := svc.AcceptFollowRequest(ctx, carol.ID.Hex(), primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrNoFollowRequest)
	})
}

func TestFollowSelf(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestService(repo, &recordingNotifier{})

	alice := seedUser(t, repo, "alice", false)

	_, err := svc.Follow(context.Background(), alice.ID.Hex(), alice.ID.Hex())
	assert.ErrorIs(t, err, ErrSelfFollow)
}

func TestUnfollow(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestService(repo, &recordingNotifier{})
	ctx := context.Background()

	alice := seedUser(t, repo, "alice", false)
	bob := seedUser(t, repo, "bob", false)

	_, err := svc.Follow(ctx, alice.ID.Hex(), bob.ID.Hex())
	require.NoError(t, err)

	require.NoError(t, svc.Unfollow(ctx, alice.ID.Hex(), bob.ID.Hex()))
	assert.False(t, repo.users[bob.ID].IsFollowedBy(alice.ID))
	assert.Empty(t, repo.users[alice.ID].Following)
}

func TestResetPasswordRoundTrip(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newTestService(repo, &recordingNotifier{})
	ctx := context.Background()

	_, _, err := svc.Register(ctx, &models.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "original1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))

	u, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, u.PasswordResetToken)

	t.Run("UnknownEmailIsSilent", func(t *testing.T) {
		assert.NoError(t, svc.ForgotPassword(ctx, "ghost@example.com"))
	})

	t.Run("BogusToken", func(t *testing.T) {
		err := svc.ResetPassword(ctx, "not-a-real-token", "newpassword1")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})
}
