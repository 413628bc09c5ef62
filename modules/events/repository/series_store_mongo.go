package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"go-event-cms/core/logger"
	"go-event-cms/modules/events/entity"
)

// mongoSeriesStore persists EventSeries documents in the "event_series"
// collection.
type mongoSeriesStore struct {
	coll *mongo.Collection
}

func NewMongoSeriesStore(coll *mongo.Collection) SeriesStore {
	return &mongoSeriesStore{coll: coll}
}

func (s *mongoSeriesStore) Insert(ctx context.Context, series *entity.EventSeries) error {
	if series.ID.IsZero() {
		series.ID = bson.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, series); err != nil {
		logger.Error("SeriesStore:Insert", err)
		return err
	}
	return nil
}

func (s *mongoSeriesStore) Get(ctx context.Context, id bson.ObjectID) (*entity.EventSeries, error) {
	var series entity.EventSeries
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&series)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.Error("SeriesStore:Get", err)
		return nil, err
	}
	return &series, nil
}

func (s *mongoSeriesStore) Update(ctx context.Context, series *entity.EventSeries) error {
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": series.ID}, series); err != nil {
		logger.Error("SeriesStore:Update", err)
		return err
	}
	return nil
}

func (s *mongoSeriesStore) Delete(ctx context.Context, id bson.ObjectID) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		logger.Error("SeriesStore:Delete", err)
		return err
	}
	return nil
}
