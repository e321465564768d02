package story

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

var ErrStoryNotFound = errors.New("story not found")

type StoryRepository interface {
	Create(ctx context.Context, s *models.Story) (*models.Story, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error)
	FindActiveByUsers(ctx context.Context, userIDs []primitive.ObjectID) ([]*models.Story, error)
	AddView(ctx context.Context, id primitive.ObjectID, view *models.StoryView) error
	AddReply(ctx context.Context, id primitive.ObjectID, reply *models.StoryReply) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

type storyRepository struct {
	coll *mongo.Collection
}

func NewStoryRepository(db *mongo.Database) StoryRepository {
	return &storyRepository{coll: db.Collection("stories")}
}

func (r *storyRepository) Create(ctx context.Context, s *models.Story) (*models.Story, error) {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.ExpiresAt = now.Add(models.StoryTTL)

	res, err := r.coll.InsertOne(ctx, s)
	if err != nil {
		return nil, err
	}
	s.ID = res.InsertedID.(primitive.ObjectID)
	return s, nil
}

// FindByID only returns stories that have not yet expired. The TTL index
// lags expiry by up to a minute, so the filter is authoritative.
func (r *storyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	filter := bson.M{"_id": id, "expiresAt": bson.M{"$gt": time.Now().UTC()}}

	var s models.Story
	err := r.coll.FindOne(ctx, filter).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrStoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *storyRepository) FindActiveByUsers(ctx context.Context, userIDs []primitive.ObjectID) ([]*models.Story, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"user":      bson.M{"$in": userIDs},
		"expiresAt": bson.M{"$gt": time.Now().UTC()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stories []*models.Story
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *storyRepository) AddView(ctx context.Context, id primitive.ObjectID, view *models.StoryView) error {
	// The viewers.user guard keeps repeat views idempotent
	filter := bson.M{"_id": id, "viewers.user": bson.M{"$ne": view.UserID}}
	update := bson.M{"$push": bson.M{"viewers": view}}

	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *storyRepository) AddReply(ctx context.Context, id primitive.ObjectID, reply *models.StoryReply) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"replies": reply}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStoryNotFound
	}
	return nil
}

func (r *storyRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrStoryNotFound
	}
	return nil
}
