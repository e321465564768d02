package post

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

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

type PostRepository interface {
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindFeed(ctx context.Context, authors []primitive.ObjectID, before time.Time, limit int64) ([]*models.Post, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID, before time.Time, limit int64) ([]*models.Post, error)
	FindByHashtag(ctx context.Context, tag string, limit int64) ([]*models.Post, error)
	FindSavedBy(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*models.Post, error)
	UpdateContent(ctx context.Context, id, userID primitive.ObjectID, content string, hashtags []string) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error

	AddLike(ctx context.Context, id, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error
	AddComment(ctx context.Context, id primitive.ObjectID, comment *models.Comment) error
	RemoveComment(ctx context.Context, id, commentID, userID primitive.ObjectID) error
	LikeComment(ctx context.Context, id, commentID, userID primitive.ObjectID) error
	AddSave(ctx context.Context, id, userID primitive.ObjectID) error
	RemoveSave(ctx context.Context, id, userID primitive.ObjectID) error
	AddReport(ctx context.Context, id primitive.ObjectID, report *models.Report) error
}

type postRepository struct {
	coll *mongo.Collection
}

func NewPostRepository(db *mongo.Database) PostRepository {
	return &postRepository{coll: db.Collection("posts")}
}

func (r *postRepository) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Audience == "" {
		p.Audience = models.AudiencePublic
	}

	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return p, nil
}

func (r *postRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "isArchived": false}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) FindFeed(ctx context.Context, authors []primitive.ObjectID, before time.Time, limit int64) ([]*models.Post, error) {
	if len(authors) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"user":       bson.M{"$in": authors},
		"audience":   bson.M{"$ne": models.AudiencePrivate},
		"isArchived": false,
	}
	return r.find(ctx, filter, before, limit)
}

func (r *postRepository) FindByUser(ctx context.Context, userID primitive.ObjectID, before time.Time, limit int64) ([]*models.Post, error) {
	return r.find(ctx, bson.M{"user": userID, "isArchived": false}, before, limit)
}

func (r *postRepository) FindByHashtag(ctx context.Context, tag string, limit int64) ([]*models.Post, error) {
	filter := bson.M{
		"hashtags":   tag,
		"audience":   models.AudiencePublic,
		"isArchived": false,
	}
	return r.find(ctx, filter, time.Time{}, limit)
}

func (r *postRepository) FindSavedBy(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*models.Post, error) {
	return r.find(ctx, bson.M{"savedBy": userID, "isArchived": false}, time.Time{}, limit)
}

func (r *postRepository) find(ctx context.Context, filter bson.M, before time.Time, limit int64) ([]*models.Post, error) {
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

	var posts []*models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) UpdateContent(ctx context.Context, id, userID primitive.ObjectID, content string, hashtags []string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "user": userID},
		bson.M{"$set": bson.M{
			"content":   content,
			"hashtags":  hashtags,
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *postRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$addToSet": bson.M{"likes": userID}})
}

func (r *postRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *postRepository) AddComment(ctx context.Context, id primitive.ObjectID, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()
	return r.updateByID(ctx, id, bson.M{"$push": bson.M{"comments": comment}})
}

func (r *postRepository) RemoveComment(ctx context.Context, id, commentID, userID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID, "user": userID}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	if res.ModifiedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *postRepository) LikeComment(ctx context.Context, id, commentID, userID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "comments._id": commentID},
		bson.M{"$addToSet": bson.M{"comments.$.likes": userID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *postRepository) AddSave(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$addToSet": bson.M{"savedBy": userID}})
}

func (r *postRepository) RemoveSave(ctx context.Context, id, userID primitive.ObjectID) error {
	return r.updateByID(ctx, id, bson.M{"$pull": bson.M{"savedBy": userID}})
}

func (r *postRepository) AddReport(ctx context.Context, id primitive.ObjectID, report *models.Report) error {
	report.CreatedAt = time.Now().UTC()
	return r.updateByID(ctx, id, bson.M{"$push": bson.M{"reports": report}})
}

func (r *postRepository) updateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}
