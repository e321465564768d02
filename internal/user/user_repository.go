package user

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

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	FindMany(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	Search(ctx context.Context, query string, limit int64) ([]*models.User, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	AddFollower(ctx context.Context, target, follower primitive.ObjectID) error
	RemoveFollower(ctx context.Context, target, follower primitive.ObjectID) error
	AddFollowRequest(ctx context.Context, target, requester primitive.ObjectID) error
	RemoveFollowRequest(ctx context.Context, target, requester primitive.ObjectID) error
}

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection("users")}
}

func (r *userRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	u.Active = true
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return u, nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	filter["active"] = true

	var u models.User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *userRepository) FindByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return r.findOne(ctx, bson.M{
		"passwordResetToken":   tokenHash,
		"passwordResetExpires": bson.M{"$gt": time.Now().UTC()},
	})
}

func (r *userRepository) FindMany(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit int64) ([]*models.User, error) {
	pattern := primitive.Regex{Pattern: query, Options: "i"}
	filter := bson.M{
		"active": true,
		"$or": bson.A{
			bson.M{"username": pattern},
			bson.M{"fullName": pattern},
		},
	}

	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "username", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AddFollower records the edge on both documents. $addToSet keeps the
// operation idempotent under retries.
func (r *userRepository) AddFollower(ctx context.Context, target, follower primitive.ObjectID) error {
	if _, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": target},
		bson.M{"$addToSet": bson.M{"followers": follower}},
	); err != nil {
		return err
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": follower},
		bson.M{"$addToSet": bson.M{"following": target}},
	)
	return err
}

func (r *userRepository) RemoveFollower(ctx context.Context, target, follower primitive.ObjectID) error {
	if _, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": target},
		bson.M{"$pull": bson.M{"followers": follower}},
	); err != nil {
		return err
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": follower},
		bson.M{"$pull": bson.M{"following": target}},
	)
	return err
}

func (r *userRepository) AddFollowRequest(ctx context.Context, target, requester primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": target},
		bson.M{"$addToSet": bson.M{"followRequests": requester}},
	)
	return err
}

func (r *userRepository) RemoveFollowRequest(ctx context.Context, target, requester primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": target},
		bson.M{"$pull": bson.M{"followRequests": requester}},
	)
	return err
}
