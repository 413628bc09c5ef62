package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"go-event-cms/core/errors"
	"go-event-cms/core/logger"
	"go-event-cms/modules/events/entity"
	"go-event-cms/modules/events/recurrence"
)

// EventRepository owns persistence of Event and EventSeries entities and
// their relationships: creation, in-place updates, series regeneration and
// the cascade rules between a series and its members. It knows nothing about
// calendar sync or HTTP.
type EventRepository struct {
	events EventStore
	series SeriesStore
}

type EventRepositoryInterface interface {
	GetEvent(ctx context.Context, id bson.ObjectID) (*entity.Event, *errors.AppError)
	GetEventBySlug(ctx context.Context, slug string) (*entity.Event, *errors.AppError)
	UpcomingEvents(ctx context.Context, from time.Time, limit int64) ([]*entity.Event, *errors.AppError)
	GetSeries(ctx context.Context, id bson.ObjectID) (*entity.EventSeries, *errors.AppError)
	SeriesMembers(ctx context.Context, series *entity.EventSeries) ([]*entity.Event, *errors.AppError)

	CreateSingleEvent(ctx context.Context, ev *entity.Event) (*entity.Event, *errors.AppError)
	CreateSeries(ctx context.Context, template *entity.Event, rule recurrence.Rule) (*entity.EventSeries, []*entity.Event, *errors.AppError)
	UpdateSingleEvent(ctx context.Context, ev *entity.Event) (*entity.Event, *errors.AppError)
	UpdateSeries(ctx context.Context, series *entity.EventSeries, template *entity.Event, rule recurrence.Rule) (*entity.EventSeries, []*entity.Event, recurrence.Change, *errors.AppError)

	DeleteSingleEvent(ctx context.Context, ev *entity.Event) *errors.AppError
	DeleteOne(ctx context.Context, series *entity.EventSeries, ev *entity.Event) *errors.AppError
	DeleteFollowing(ctx context.Context, series *entity.EventSeries, ev *entity.Event) *errors.AppError
	DeleteAll(ctx context.Context, series *entity.EventSeries) *errors.AppError

	ConvertSeriesToSingle(ctx context.Context, series *entity.EventSeries, ev *entity.Event) (*entity.Event, *errors.AppError)
	ConvertSingleToSeries(ctx context.Context, ev *entity.Event, rule recurrence.Rule) (*entity.EventSeries, []*entity.Event, *errors.AppError)

	UpdateRemoteState(ctx context.Context, ev *entity.Event) error
	UpdateSeriesRemoteID(ctx context.Context, series *entity.EventSeries) error
}

func NewEventRepository(events EventStore, series SeriesStore) EventRepositoryInterface {
	return &EventRepository{events: events, series: series}
}

// ===================== Lookups =====================

func (r *EventRepository) GetEvent(ctx context.Context, id bson.ObjectID) (*entity.Event, *errors.AppError) {
	ev, err := r.events.Get(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load event", err)
	}
	if ev == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	return ev, nil
}

func (r *EventRepository) GetEventBySlug(ctx context.Context, slug string) (*entity.Event, *errors.AppError) {
	ev, err := r.events.GetBySlug(ctx, slug)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load event", err)
	}
	if ev == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event not found", nil)
	}
	return ev, nil
}

func (r *EventRepository) UpcomingEvents(ctx context.Context, from time.Time, limit int64) ([]*entity.Event, *errors.AppError) {
	events, err := r.events.Upcoming(ctx, from, limit)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list events", err)
	}
	return events, nil
}

func (r *EventRepository) GetSeries(ctx context.Context, id bson.ObjectID) (*entity.EventSeries, *errors.AppError) {
	series, err := r.series.Get(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load event series", err)
	}
	if series == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Event series not found", nil)
	}
	return series, nil
}

// SeriesMembers loads member events in the series' chronological order.
// Members missing from the store are skipped rather than failing the whole
// load.
func (r *EventRepository) SeriesMembers(ctx context.Context, series *entity.EventSeries) ([]*entity.Event, *errors.AppError) {
	members := make([]*entity.Event, 0, len(series.EventIDs))
	for _, id := range series.EventIDs {
		ev, err := r.events.Get(ctx, id)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to load series member", err)
		}
		if ev == nil {
			logger.Warn("EventRepository:SeriesMembers:MissingMember",
				"series_id", series.ID.Hex(), "event_id", id.Hex())
			continue
		}
		members = append(members, ev)
	}
	return members, nil
}

// ===================== Create =====================

func (r *EventRepository) CreateSingleEvent(ctx context.Context, ev *entity.Event) (*entity.Event, *errors.AppError) {
	ev.IsRecurring = false
	ev.ParentSeriesID = nil
	now := time.Now()
	ev.CreatedAt = now
	ev.UpdatedAt = now

	if appErr := ev.Validate(); appErr != nil {
		return nil, appErr
	}

	if err := r.events.Insert(ctx, ev); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create event", err)
	}
	return ev, nil
}

// CreateSeries expands the recurrence rule from the template's date range and
// creates one event per occurrence sharing the template's fields. Member
// events are persisted first; the series document is written last, fully
// populated. The template's remote-sync state, when present, lands on the
// first occurrence only.
func (r *EventRepository) CreateSeries(ctx context.Context, template *entity.Event, rule recurrence.Rule) (*entity.EventSeries, []*entity.Event, *errors.AppError) {
	if template.StartDate == nil || template.EndDate == nil {
		return nil, nil, errors.NewAppError(errors.ErrInvalidInput,
			"Recurring events require start and end dates", nil)
	}

	seq, appErr := recurrence.Expand(*template.StartDate, *template.EndDate, rule)
	if appErr != nil {
		return nil, nil, appErr
	}

	now := time.Now()
	seriesID := bson.NewObjectID()
	series := &entity.EventSeries{
		ID:                seriesID,
		Frequency:         string(rule.Frequency),
		Every:             rule.Every,
		EndsAfter:         rule.EndsAfter,
		EndsOn:            rule.EndsOn,
		NumOccurrences:    rule.NumOccurrences,
		RecurrenceEndDate: rule.EndDate,
		RecurrenceSummary: recurrence.Summary(rule),
		GCalID:            template.GCalID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var members []*entity.Event
	first := true
	for occ := range seq {
		ev := template.Clone()
		ev.ID = bson.NewObjectID()
		start, end := occ.Start, occ.End
		ev.StartDate = &start
		ev.EndDate = &end
		ev.IsRecurring = true
		ev.ParentSeriesID = &seriesID
		ev.CreatedAt = now
		ev.UpdatedAt = now
		if !first {
			ev.GCalID = nil
			ev.GCalSequence = 0
		}
		first = false

		if appErr := ev.Validate(); appErr != nil {
			return nil, nil, appErr
		}
		if err := r.events.Insert(ctx, ev); err != nil {
			return nil, nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create series event", err)
		}

		members = append(members, ev)
		series.EventIDs = append(series.EventIDs, ev.ID)
	}

	if err := r.series.Insert(ctx, series); err != nil {
		return nil, nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create event series", err)
	}
	return series, members, nil
}

// ===================== Update =====================

func (r *EventRepository) UpdateSingleEvent(ctx context.Context, ev *entity.Event) (*entity.Event, *errors.AppError) {
	if appErr := ev.Validate(); appErr != nil {
		return nil, appErr
	}
	ev.UpdatedAt = time.Now()
	if err := r.events.Update(ctx, ev); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update event", err)
	}
	return ev, nil
}

// UpdateSeries applies a series edit. A Simple change (unchanged recurrence
// parameters and date window) is applied in place to every member; a
// Structural change deletes the whole series and regenerates it from the
// merged configuration, carrying the remote id and creator forward so the
// remote calendar entry can be reused.
func (r *EventRepository) UpdateSeries(ctx context.Context, series *entity.EventSeries, template *entity.Event, rule recurrence.Rule) (*entity.EventSeries, []*entity.Event, recurrence.Change, *errors.AppError) {
	if appErr := rule.Validate(); appErr != nil {
		return nil, nil, 0, appErr
	}

	members, appErr := r.SeriesMembers(ctx, series)
	if appErr != nil {
		return nil, nil, 0, appErr
	}
	if len(members) == 0 {
		return nil, nil, 0, errors.NewAppError(errors.ErrInvalidOperation,
			"Cannot update a series with no member events", nil)
	}

	change := recurrence.Classify(series.Rule(), rule, members[0].Window(), template.Window())

	if change == recurrence.ChangeSimple {
		now := time.Now()
		for _, member := range members {
			applySharedFields(member, template)
			member.UpdatedAt = now
			if appErr := member.Validate(); appErr != nil {
				return nil, nil, 0, appErr
			}
			if err := r.events.Update(ctx, member); err != nil {
				return nil, nil, 0, errors.NewAppError(errors.ErrUpdateFailed,
					"Failed to update series member", err)
			}
		}
		series.UpdatedAt = now
		if err := r.series.Update(ctx, series); err != nil {
			return nil, nil, 0, errors.NewAppError(errors.ErrUpdateFailed,
				"Failed to update event series", err)
		}
		return series, members, change, nil
	}

	// Structural: regenerate. Remote identity and creator survive the
	// regeneration via the new first occurrence.
	regen := template.Clone()
	regen.ID = bson.ObjectID{}
	regen.IsRecurring = false
	regen.ParentSeriesID = nil
	regen.GCalID = members[0].GCalID
	regen.GCalSequence = members[0].GCalSequence
	if regen.GCalID == nil {
		regen.GCalID = series.GCalID
	}
	regen.CreatorID = members[0].CreatorID

	for _, member := range members {
		if err := r.events.Delete(ctx, member.ID); err != nil {
			return nil, nil, 0, errors.NewAppError(errors.ErrDeleteFailed,
				"Failed to delete series member", err)
		}
	}
	if err := r.series.Delete(ctx, series.ID); err != nil {
		return nil, nil, 0, errors.NewAppError(errors.ErrDeleteFailed,
			"Failed to delete event series", err)
	}

	newSeries, newMembers, appErr := r.CreateSeries(ctx, regen, rule)
	if appErr != nil {
		return nil, nil, 0, appErr
	}
	return newSeries, newMembers, change, nil
}

// applySharedFields copies the fields every member shares; dates, recurrence
// and remote-sync state stay untouched.
func applySharedFields(dst, src *entity.Event) {
	dst.Title = src.Title
	dst.Slug = src.Slug
	dst.Location = src.Location
	dst.ShortDescriptionMarkdown = src.ShortDescriptionMarkdown
	dst.ShortDescription = src.ShortDescription
	dst.LongDescriptionMarkdown = src.LongDescriptionMarkdown
	dst.LongDescription = src.LongDescription
	dst.Published = src.Published
	dst.DatePublished = src.DatePublished
	dst.FacebookURL = src.FacebookURL
	dst.ImageID = src.ImageID
}

// ===================== Delete =====================

func (r *EventRepository) DeleteSingleEvent(ctx context.Context, ev *entity.Event) *errors.AppError {
	if ev.IsRecurring {
		return errors.NewAppError(errors.ErrInvalidOperation,
			"Recurring events must be deleted through their series", nil)
	}
	if err := r.events.Delete(ctx, ev.ID); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete event", err)
	}
	return nil
}

// DeleteOne removes a single member from its series. An emptied series is
// deleted with it.
func (r *EventRepository) DeleteOne(ctx context.Context, series *entity.EventSeries, ev *entity.Event) *errors.AppError {
	if appErr := requireMembership(series, ev); appErr != nil {
		return appErr
	}

	series.RemoveEvent(ev.ID)
	if err := r.events.Delete(ctx, ev.ID); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete event", err)
	}

	return r.commitMembership(ctx, series)
}

// DeleteFollowing deletes the given member and every member starting at or
// after it, leaving earlier members intact.
func (r *EventRepository) DeleteFollowing(ctx context.Context, series *entity.EventSeries, ev *entity.Event) *errors.AppError {
	if appErr := requireMembership(series, ev); appErr != nil {
		return appErr
	}

	pivot := ev.StartDatetime()
	if pivot == nil {
		return errors.NewAppError(errors.ErrInvalidOperation,
			"Cannot delete following events from an undated event", nil)
	}

	members, appErr := r.SeriesMembers(ctx, series)
	if appErr != nil {
		return appErr
	}

	for _, member := range members {
		start := member.StartDatetime()
		if start == nil || start.Before(*pivot) {
			continue
		}
		series.RemoveEvent(member.ID)
		if err := r.events.Delete(ctx, member.ID); err != nil {
			return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete event", err)
		}
	}

	return r.commitMembership(ctx, series)
}

// DeleteAll deletes every member event, then the series.
func (r *EventRepository) DeleteAll(ctx context.Context, series *entity.EventSeries) *errors.AppError {
	members, appErr := r.SeriesMembers(ctx, series)
	if appErr != nil {
		return appErr
	}
	for _, member := range members {
		if err := r.events.Delete(ctx, member.ID); err != nil {
			return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete event", err)
		}
	}
	if err := r.series.Delete(ctx, series.ID); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete event series", err)
	}
	return nil
}

// commitMembership persists the series membership list, deleting the series
// once it has no members left.
func (r *EventRepository) commitMembership(ctx context.Context, series *entity.EventSeries) *errors.AppError {
	if len(series.EventIDs) == 0 {
		if err := r.series.Delete(ctx, series.ID); err != nil {
			return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete event series", err)
		}
		return nil
	}
	series.UpdatedAt = time.Now()
	if err := r.series.Update(ctx, series); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "Failed to update event series", err)
	}
	return nil
}

func requireMembership(series *entity.EventSeries, ev *entity.Event) *errors.AppError {
	if !ev.IsRecurring || ev.ParentSeriesID == nil || *ev.ParentSeriesID != series.ID {
		return errors.NewAppError(errors.ErrInvalidOperation,
			"Event is not a member of this series", nil)
	}
	return nil
}

// ===================== Conversions =====================

// ConvertSeriesToSingle deletes every member except the given event, clears
// its series back-reference and deletes the now-empty series. The remote
// calendar identity moves to the surviving event so the sync client keeps
// addressing the same resource.
func (r *EventRepository) ConvertSeriesToSingle(ctx context.Context, series *entity.EventSeries, ev *entity.Event) (*entity.Event, *errors.AppError) {
	if appErr := requireMembership(series, ev); appErr != nil {
		return nil, appErr
	}

	members, appErr := r.SeriesMembers(ctx, series)
	if appErr != nil {
		return nil, appErr
	}
	for _, member := range members {
		if member.ID == ev.ID {
			continue
		}
		if ev.GCalID == nil && member.GCalID != nil {
			ev.GCalID = member.GCalID
			ev.GCalSequence = member.GCalSequence
		}
		if err := r.events.Delete(ctx, member.ID); err != nil {
			return nil, errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete event", err)
		}
	}
	if ev.GCalID == nil {
		ev.GCalID = series.GCalID
	}

	ev.IsRecurring = false
	ev.ParentSeriesID = nil
	ev.UpdatedAt = time.Now()
	if err := r.events.Update(ctx, ev); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update event", err)
	}

	if err := r.series.Delete(ctx, series.ID); err != nil {
		return nil, errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete event series", err)
	}
	return ev, nil
}

// ConvertSingleToSeries builds a new series seeded with the event as its
// first member, keeping the event's identity and remote-sync state, then
// appends the remaining occurrences.
func (r *EventRepository) ConvertSingleToSeries(ctx context.Context, ev *entity.Event, rule recurrence.Rule) (*entity.EventSeries, []*entity.Event, *errors.AppError) {
	if ev.IsRecurring {
		return nil, nil, errors.NewAppError(errors.ErrInvalidOperation,
			"Event is already part of a series", nil)
	}
	if ev.StartDate == nil || ev.EndDate == nil {
		return nil, nil, errors.NewAppError(errors.ErrInvalidInput,
			"Recurring events require start and end dates", nil)
	}

	seq, appErr := recurrence.Expand(*ev.StartDate, *ev.EndDate, rule)
	if appErr != nil {
		return nil, nil, appErr
	}

	now := time.Now()
	seriesID := bson.NewObjectID()
	series := &entity.EventSeries{
		ID:                seriesID,
		Frequency:         string(rule.Frequency),
		Every:             rule.Every,
		EndsAfter:         rule.EndsAfter,
		EndsOn:            rule.EndsOn,
		NumOccurrences:    rule.NumOccurrences,
		RecurrenceEndDate: rule.EndDate,
		RecurrenceSummary: recurrence.Summary(rule),
		GCalID:            ev.GCalID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var members []*entity.Event
	first := true
	for occ := range seq {
		if first {
			first = false
			ev.IsRecurring = true
			ev.ParentSeriesID = &seriesID
			ev.UpdatedAt = now
			if err := r.events.Update(ctx, ev); err != nil {
				return nil, nil, errors.NewAppError(errors.ErrUpdateFailed,
					"Failed to update event", err)
			}
			members = append(members, ev)
			series.EventIDs = append(series.EventIDs, ev.ID)
			continue
		}

		sibling := ev.Clone()
		sibling.ID = bson.NewObjectID()
		start, end := occ.Start, occ.End
		sibling.StartDate = &start
		sibling.EndDate = &end
		sibling.GCalID = nil
		sibling.GCalSequence = 0
		sibling.CreatedAt = now
		sibling.UpdatedAt = now
		if err := r.events.Insert(ctx, sibling); err != nil {
			return nil, nil, errors.NewAppError(errors.ErrCreateFailed,
				"Failed to create series event", err)
		}
		members = append(members, sibling)
		series.EventIDs = append(series.EventIDs, sibling.ID)
	}

	if err := r.series.Insert(ctx, series); err != nil {
		return nil, nil, errors.NewAppError(errors.ErrCreateFailed,
			"Failed to create event series", err)
	}
	return series, members, nil
}

// ===================== Remote sync state =====================

// UpdateRemoteState persists an event's gcal_id/gcal_sequence after a
// successful remote call. Called only by the sync client.
func (r *EventRepository) UpdateRemoteState(ctx context.Context, ev *entity.Event) error {
	return r.events.Update(ctx, ev)
}

func (r *EventRepository) UpdateSeriesRemoteID(ctx context.Context, series *entity.EventSeries) error {
	return r.series.Update(ctx, series)
}
