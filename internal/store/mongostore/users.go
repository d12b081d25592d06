// users.go

package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop-backend/internal/apperr"
	"shop-backend/internal/models"
)

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(collUsers)}
}

func (s *UserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt, u.UpdatedAt = now, now
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, apperr.Conflict("email already registered")
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *UserStore) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id}, id.Hex())
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": email}, email)
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	list := []models.User{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return list, nil
}

func (s *UserStore) Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = *patch.LastName
	}
	if patch.Age != nil {
		set["age"] = *patch.Age
	}
	if patch.Password != nil {
		set["password"] = *patch.Password
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	var u models.User
	found, err := findOneAndUpdate(ctx, s.coll, bson.M{"_id": id}, bson.M{"$set": set}, &u)
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	if !found {
		return models.User{}, apperr.NotFound("user", id)
	}
	return u, nil
}

func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, apperr.NotFound("user", id)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("delete user: %w", err)
	}
	return u, nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M, key string) (models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, apperr.NotFoundRaw("user", key)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
