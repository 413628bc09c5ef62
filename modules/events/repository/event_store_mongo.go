package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"go-event-cms/core/logger"
	"go-event-cms/modules/events/entity"
)

// mongoEventStore persists Event documents in the "events" collection.
type mongoEventStore struct {
	coll *mongo.Collection
}

func NewMongoEventStore(coll *mongo.Collection) EventStore {
	return &mongoEventStore{coll: coll}
}

func (s *mongoEventStore) Insert(ctx context.Context, ev *entity.Event) error {
	if ev.ID.IsZero() {
		ev.ID = bson.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, ev); err != nil {
		logger.Error("EventStore:Insert", err)
		return err
	}
	return nil
}

func (s *mongoEventStore) Get(ctx context.Context, id bson.ObjectID) (*entity.Event, error) {
	var ev entity.Event
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ev)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.Error("EventStore:Get", err)
		return nil, err
	}
	return &ev, nil
}

func (s *mongoEventStore) GetBySlug(ctx context.Context, slug string) (*entity.Event, error) {
	var ev entity.Event
	err := s.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&ev)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.Error("EventStore:GetBySlug", err)
		return nil, err
	}
	return &ev, nil
}

func (s *mongoEventStore) Update(ctx context.Context, ev *entity.Event) error {
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": ev.ID}, ev); err != nil {
		logger.Error("EventStore:Update", err)
		return err
	}
	return nil
}

func (s *mongoEventStore) Delete(ctx context.Context, id bson.ObjectID) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		logger.Error("EventStore:Delete", err)
		return err
	}
	return nil
}

func (s *mongoEventStore) Upcoming(ctx context.Context, from time.Time, limit int64) ([]*entity.Event, error) {
	filter := bson.M{
		"published": true,
		"end_date":  bson.M{"$gte": from},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}}).
		SetLimit(limit)

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		logger.Error("EventStore:Upcoming", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*entity.Event
	if err := cursor.All(ctx, &events); err != nil {
		logger.Error("EventStore:Upcoming:Decode", err)
		return nil, err
	}
	return events, nil
}
