package chat

import (
	"context"
	"errors"
	"time"

	"social-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotAuthorized = errors.New("not authorized")
	ErrInvalidID     = errors.New("invalid id")
)

const defaultHistoryLimit = 50

type ChatService interface {
	GetConversation(ctx context.Context, userID, otherID string, before time.Time, limit int64) ([]*models.Message, error)
	GetRoomMessages(ctx context.Context, userID, roomID string, before time.Time, limit int64) ([]*models.Message, error)
	GetUserRooms(ctx context.Context, userID string) ([]*models.ChatRoom, error)
	OpenDirectRoom(ctx context.Context, userID, otherID string) (*models.ChatRoom, error)
	MarkMessageRead(ctx context.Context, userID, messageID string) error
	DeleteMessage(ctx context.Context, userID, messageID string) error
}

type chatService struct {
	messages MessageRepository
	rooms    ChatRoomRepository
}

func NewChatService(messages MessageRepository, rooms ChatRoomRepository) ChatService {
	return &chatService{
		messages: messages,
		rooms:    rooms,
	}
}

func (s *chatService) GetConversation(ctx context.Context, userID, otherID string, before time.Time, limit int64) ([]*models.Message, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	other, err := primitive.ObjectIDFromHex(otherID)
	if err != nil {
		return nil, ErrInvalidID
	}

	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}
	return s.messages.FindConversation(ctx, me, other, before, limit)
}

func (s *chatService) GetRoomMessages(ctx context.Context, userID, roomID string, before time.Time, limit int64) ([]*models.Message, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	rid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return nil, ErrInvalidID
	}

	room, err := s.rooms.FindByID(ctx, rid)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(me) {
		return nil, ErrNotAuthorized
	}

	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}
	return s.messages.FindRoomMessages(ctx, rid, before, limit)
}

func (s *chatService) GetUserRooms(ctx context.Context, userID string) ([]*models.ChatRoom, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	return s.rooms.FindUserRooms(ctx, me)
}

func (s *chatService) OpenDirectRoom(ctx context.Context, userID, otherID string) (*models.ChatRoom, error) {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}
	other, err := primitive.ObjectIDFromHex(otherID)
	if err != nil {
		return nil, ErrInvalidID
	}
	if me == other {
		return nil, ErrNotAuthorized
	}
	return s.rooms.FindOrCreateDM(ctx, me, other)
}

func (s *chatService) MarkMessageRead(ctx context.Context, userID, messageID string) error {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	mid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return ErrInvalidID
	}
	return s.messages.MarkRead(ctx, mid, me)
}

func (s *chatService) DeleteMessage(ctx context.Context, userID, messageID string) error {
	me, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}
	mid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return ErrInvalidID
	}
	return s.messages.SoftDelete(ctx, mid, me)
}
