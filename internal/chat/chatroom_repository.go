package chat

import (
	"context"
	"errors"
	"time"

	"social-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrRoomNotFound = errors.New("chat room not found")

type ChatRoomRepository interface {
	Create(ctx context.Context, room *models.ChatRoom) (*models.ChatRoom, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ChatRoom, error)
	FindUserRooms(ctx context.Context, userID primitive.ObjectID) ([]*models.ChatRoom, error)
	FindOrCreateDM(ctx context.Context, userA, userB primitive.ObjectID) (*models.ChatRoom, error)
	SetLastMessage(ctx context.Context, roomID, messageID primitive.ObjectID) error
}

type chatRoomRepository struct {
	coll *mongo.Collection
}

func NewChatRoomRepository(db *mongo.Database) ChatRoomRepository {
	return &chatRoomRepository{coll: db.Collection("chatrooms")}
}

func (r *chatRoomRepository) Create(ctx context.Context, room *models.ChatRoom) (*models.ChatRoom, error) {
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, room)
	if err != nil {
		return nil, err
	}
	room.ID = res.InsertedID.(primitive.ObjectID)
	return room, nil
}

func (r *chatRoomRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "isDeleted": false}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatRoomRepository) FindUserRooms(ctx context.Context, userID primitive.ObjectID) ([]*models.ChatRoom, error) {
	filter := bson.M{"participants.user": userID, "isDeleted": false}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rooms []*models.ChatRoom
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// FindOrCreateDM atomically upserts the direct room for a user pair. The
// unique sparse index on directMessageKey prevents duplicates under
// concurrent creation.
func (r *chatRoomRepository) FindOrCreateDM(ctx context.Context, userA, userB primitive.ObjectID) (*models.ChatRoom, error) {
	key := models.DirectKey(userA, userB)
	now := time.Now().UTC()

	filter := bson.M{"directMessageKey": key}
	update := bson.M{"$setOnInsert": models.ChatRoom{
		Type: models.RoomTypeDirect,
		Participants: []models.Participant{
			{UserID: userA, Role: models.RoleMember, JoinedAt: now, LastReadAt: now},
			{UserID: userB, Role: models.RoleMember, JoinedAt: now, LastReadAt: now},
		},
		CreatedBy:        userA,
		DirectMessageKey: key,
		CreatedAt:        now,
		UpdatedAt:        now,
	}}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var room models.ChatRoom
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatRoomRepository) SetLastMessage(ctx context.Context, roomID, messageID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"lastMessage": messageID, "updatedAt": time.Now().UTC()}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": roomID}, update)
	return err
}
