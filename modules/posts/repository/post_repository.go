package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go-event-cms/core/database"
	"go-event-cms/core/logger"
	"go-event-cms/core/params"
	"go-event-cms/modules/posts/entity"
)

type PostRepositoryInterface interface {
	Insert(ctx context.Context, post *entity.Post) error
	GetByID(ctx context.Context, id bson.ObjectID) (*entity.Post, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Post, error)
	Update(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, id bson.ObjectID) error
	ListPublished(ctx context.Context, p params.QueryParams) ([]*entity.Post, int64, error)
	ListAll(ctx context.Context, p params.QueryParams) ([]*entity.Post, int64, error)
}

type PostRepository struct {
	coll *mongo.Collection
}

func NewPostRepository(db database.IDatabase) PostRepositoryInterface {
	return &PostRepository{coll: db.Collection("posts")}
}

func (r *PostRepository) Insert(ctx context.Context, post *entity.Post) error {
	if post.ID.IsZero() {
		post.ID = bson.NewObjectID()
	}
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		logger.Error("PostRepository:Insert", err, "slug", post.Slug)
		return err
	}
	return nil
}

// GetByID returns (nil, nil) when no post matches.
func (r *PostRepository) GetByID(ctx context.Context, id bson.ObjectID) (*entity.Post, error) {
	var post entity.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		logger.Error("PostRepository:GetByID", err, "post_id", id.Hex())
		return nil, err
	}
	return &post, nil
}

// GetBySlug returns (nil, nil) when no post matches.
func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*entity.Post, error) {
	var post entity.Post
	err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		logger.Error("PostRepository:GetBySlug", err, "slug", slug)
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) Update(ctx context.Context, post *entity.Post) error {
	post.UpdatedAt = time.Now()
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": post.ID}, post); err != nil {
		logger.Error("PostRepository:Update", err, "post_id", post.ID.Hex())
		return err
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		logger.Error("PostRepository:Delete", err, "post_id", id.Hex())
		return err
	}
	return nil
}

// ListPublished pages through published posts, newest first.
func (r *PostRepository) ListPublished(ctx context.Context, p params.QueryParams) ([]*entity.Post, int64, error) {
	return r.list(ctx, bson.M{"published": true}, p)
}

// ListAll pages through every post for the editor view.
func (r *PostRepository) ListAll(ctx context.Context, p params.QueryParams) ([]*entity.Post, int64, error) {
	return r.list(ctx, bson.M{}, p)
}

func (r *PostRepository) list(ctx context.Context, filter bson.M, p params.QueryParams) ([]*entity.Post, int64, error) {
	if p.Search != "" {
		filter["title"] = bson.M{"$regex": p.Search, "$options": "i"}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		logger.Error("PostRepository:List", err)
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date_published", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.PageSize))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		logger.Error("PostRepository:List", err)
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var posts []*entity.Post
	if err := cursor.All(ctx, &posts); err != nil {
		logger.Error("PostRepository:List", err)
		return nil, 0, err
	}
	return posts, total, nil
}
