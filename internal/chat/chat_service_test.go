package chat

import (
	"context"
	"testing"
	"time"

	"social-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryMessageRepo struct {
	messages map[primitive.ObjectID]*models.Message
}

func newMemoryMessageRepo() *memoryMessageRepo {
	return &memoryMessageRepo{messages: make(map[primitive.ObjectID]*models.Message)}
}

func (m *memoryMessageRepo) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	msg.ID = primitive.NewObjectID()
	m.messages[msg.ID] = msg
	return msg, nil
}

func (m *memoryMessageRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, ErrMessageNotFound
}

func (m *memoryMessageRepo) FindConversation(ctx context.Context, userA, userB primitive.ObjectID, before time.Time, limit int64) ([]*models.Message, error) {
	var out []*models.Message
	for _, msg := range m.messages {
		if msg.Receiver == nil || msg.IsDeleted {
			continue
		}
		direct := msg.SenderID == userA && *msg.Receiver == userB
		reverse := msg.SenderID == userB && *msg.Receiver == userA
		if direct || reverse {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memoryMessageRepo) FindRoomMessages(ctx context.Context, roomID primitive.ObjectID, before time.Time, limit int64) ([]*models.Message, error) {
	var out []*models.Message
	for _, msg := range m.messages {
		if msg.Room != nil && *msg.Room == roomID && !msg.IsDeleted {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memoryMessageRepo) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	msg, ok := m.messages[id]
	if !ok {
		return nil
	}
	if !msg.ReadByUser(userID) {
		msg.ReadBy = append(msg.ReadBy, models.ReadReceipt{UserID: userID, ReadAt: time.Now()})
	}
	return nil
}

func (m *memoryMessageRepo) SoftDelete(ctx context.Context, id, senderID primitive.ObjectID) error {
	msg, ok := m.messages[id]
	if !ok || msg.SenderID != senderID {
		return ErrMessageNotFound
	}
	msg.IsDeleted = true
	return nil
}

type memoryRoomRepo struct {
	rooms map[primitive.ObjectID]*models.ChatRoom
}

func newMemoryRoomRepo() *memoryRoomRepo {
	return &memoryRoomRepo{rooms: make(map[primitive.ObjectID]*models.ChatRoom)}
}

func (m *memoryRoomRepo) Create(ctx context.Context, room *models.ChatRoom) (*models.ChatRoom, error) {
	room.ID = primitive.NewObjectID()
	m.rooms[room.ID] = room
	return room, nil
}

func (m *memoryRoomRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ChatRoom, error) {
	if room, ok := m.rooms[id]; ok {
		return room, nil
	}
	return nil, ErrRoomNotFound
}

func (m *memoryRoomRepo) FindUserRooms(ctx context.Context, userID primitive.ObjectID) ([]*models.ChatRoom, error) {
	var out []*models.ChatRoom
	for _, room := range m.rooms {
		if room.HasParticipant(userID) {
			out = append(out, room)
		}
	}
	return out, nil
}

func (m *memoryRoomRepo) FindOrCreateDM(ctx context.Context, userA, userB primitive.ObjectID) (*models.ChatRoom, error) {
	key := models.DirectKey(userA, userB)
	for _, room := range m.rooms {
		if room.DirectMessageKey == key {
			return room, nil
		}
	}
	return m.Create(ctx, &models.ChatRoom{
		Type: models.RoomTypeDirect,
		Participants: []models.Participant{
			{UserID: userA},
			{UserID: userB},
		},
		DirectMessageKey: key,
	})
}

func (m *memoryRoomRepo) SetLastMessage(ctx context.Context, roomID, messageID primitive.ObjectID) error {
	return nil
}

func TestGetRoomMessagesAuthorization(t *testing.T) {
	messages := newMemoryMessageRepo()
	rooms := newMemoryRoomRepo()
	svc := NewChatService(messages, rooms)
	ctx := context.Background()

	member := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	room, err := rooms.Create(ctx, &models.ChatRoom{
		Participants: []models.Participant{{UserID: member}},
	})
	require.NoError(t, err)

	roomID := room.ID
	_, err = messages.Create(ctx, &models.Message{SenderID: member, Room: &roomID, Content: "hi"})
	require.NoError(t, err)

	t.Run("Member", func(t *testing.T) {
		msgs, err := svc.GetRoomMessages(ctx, member.Hex(), room.ID.Hex(), time.Time{}, 0)
		require.NoError(t, err)
		assert.Len(t, msgs, 1)
	})

	t.Run("Outsider", func(t *testing.T) {
		_, err := svc.GetRoomMessages(ctx, outsider.Hex(), room.ID.Hex(), time.Time{}, 0)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("UnknownRoom", func(t *testing.T) {
		_, err := svc.GetRoomMessages(ctx, member.Hex(), primitive.NewObjectID().Hex(), time.Time{}, 0)
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestOpenDirectRoom(t *testing.T) {
	rooms := newMemoryRoomRepo()
	svc := NewChatService(newMemoryMessageRepo(), rooms)
	ctx := context.Background()

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	room, err := svc.OpenDirectRoom(ctx, alice.Hex(), bob.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.RoomTypeDirect, room.Type)

	t.Run("SamePairSameRoom", func(t *testing.T) {
		// Order of the pair must not matter
		again, err := svc.OpenDirectRoom(ctx, bob.Hex(), alice.Hex())
		require.NoError(t, err)
		assert.Equal(t, room.ID, again.ID)
	})

	t.Run("SelfDM", func(t *testing.T) {
		_, err := svc.OpenDirectRoom(ctx, alice.Hex(), alice.Hex())
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestDeleteMessageOwnership(t *testing.T) {
	messages := newMemoryMessageRepo()
	svc := NewChatService(messages, newMemoryRoomRepo())
	ctx := context.Background()

	sender := primitive.NewObjectID()
	other := primitive.NewObjectID()
	receiver := primitive.NewObjectID()

	msg, err := messages.Create(ctx, &models.Message{SenderID: sender, Receiver: &receiver, Content: "oops"})
	require.NoError(t, err)

	t.Run("NotSender", func(t *testing.T) {
		err := svc.DeleteMessage(ctx, other.Hex(), msg.ID.Hex())
		assert.ErrorIs(t, err, ErrMessageNotFound)
	})

	t.Run("Sender", func(t *testing.T) {
		require.NoError(t, svc.DeleteMessage(ctx, sender.Hex(), msg.ID.Hex()))
		assert.True(t, messages.messages[msg.ID].IsDeleted)
	})
}
