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

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	FindConversation(ctx context.Context, userA, userB primitive.ObjectID, before time.Time, limit int64) ([]*models.Message, error)
	FindRoomMessages(ctx context.Context, roomID primitive.ObjectID, before time.Time, limit int64) ([]*models.Message, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
	SoftDelete(ctx context.Context, id, senderID primitive.ObjectID) error
}

type messageRepository struct {
	coll *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{coll: db.Collection("messages")}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
		msg.UpdatedAt = msg.CreatedAt
	}

	res, err := r.coll.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return msg, nil
}

func (r *messageRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) FindConversation(ctx context.Context, userA, userB primitive.ObjectID, before time.Time, limit int64) ([]*models.Message, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"sender": userA, "receiver": userB},
			bson.M{"sender": userB, "receiver": userA},
		},
		"isDeleted": false,
	}
	return r.find(ctx, filter, before, limit)
}

func (r *messageRepository) FindRoomMessages(ctx context.Context, roomID primitive.ObjectID, before time.Time, limit int64) ([]*models.Message, error) {
	filter := bson.M{"chatRoom": roomID, "isDeleted": false}
	return r.find(ctx, filter, before, limit)
}

// find returns messages newest-first, optionally constrained to those
// created before a given instant
func (r *messageRepository) find(ctx context.Context, filter bson.M, before time.Time, limit int64) ([]*models.Message, error) {
	if !before.IsZero() {
		filter["createdAt"] = bson.M{"$lt": before}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	// The readBy.user guard keeps the operation idempotent
	filter := bson.M{"_id": id, "readBy.user": bson.M{"$ne": userID}}
	update := bson.M{"$push": bson.M{"readBy": models.ReadReceipt{
		UserID: userID,
		ReadAt: time.Now().UTC(),
	}}}

	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *messageRepository) SoftDelete(ctx context.Context, id, senderID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "sender": senderID}
	update := bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": time.Now().UTC()}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMessageNotFound
	}
	return nil
}
