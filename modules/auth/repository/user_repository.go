package repository

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"go-event-cms/core/database"
	"go-event-cms/core/logger"
	"go-event-cms/modules/auth/entity"
)

type UserRepositoryInterface interface {
	Insert(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id bson.ObjectID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db database.IDatabase) UserRepositoryInterface {
	return &UserRepository{coll: db.Collection("users")}
}

func (r *UserRepository) Insert(ctx context.Context, user *entity.User) error {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		logger.Error("UserRepository:Insert", err, "email", user.Email)
		return err
	}
	return nil
}

// GetByID returns (nil, nil) when no user matches.
func (r *UserRepository) GetByID(ctx context.Context, id bson.ObjectID) (*entity.User, error) {
	var user entity.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		logger.Error("UserRepository:GetByID", err, "user_id", id.Hex())
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns (nil, nil) when no user matches.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.coll.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		logger.Error("UserRepository:GetByEmail", err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user); err != nil {
		logger.Error("UserRepository:Update", err, "user_id", user.ID.Hex())
		return err
	}
	return nil
}
