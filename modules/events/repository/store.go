package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"go-event-cms/modules/events/entity"
)

// EventStore is the document-store surface for Event documents. Lookups
// return (nil, nil) when the document does not exist.
type EventStore interface {
	Insert(ctx context.Context, ev *entity.Event) error
	Get(ctx context.Context, id bson.ObjectID) (*entity.Event, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Event, error)
	Update(ctx context.Context, ev *entity.Event) error
	Delete(ctx context.Context, id bson.ObjectID) error
	Upcoming(ctx context.Context, from time.Time, limit int64) ([]*entity.Event, error)
}

// SeriesStore is the document-store surface for EventSeries documents.
type SeriesStore interface {
	Insert(ctx context.Context, s *entity.EventSeries) error
	Get(ctx context.Context, id bson.ObjectID) (*entity.EventSeries, error)
	Update(ctx context.Context, s *entity.EventSeries) error
	Delete(ctx context.Context, id bson.ObjectID) error
}
