package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"go-event-cms/core/errors"
	"go-event-cms/modules/events/recurrence"
)

// Event is one occurrence of something happening. A recurring event belongs
// to an EventSeries via ParentSeriesID; the series owns the membership list,
// the back-reference here is lookup-only.
type Event struct {
	ID       bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Title    string        `bson:"title" json:"title"`
	Slug     string        `bson:"slug" json:"slug"`
	Location *string       `bson:"location,omitempty" json:"location,omitempty"`

	// Date and time components are stored separately; times are optional.
	StartDate *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	StartTime *time.Time `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndDate   *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`
	EndTime   *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`

	ShortDescriptionMarkdown string `bson:"short_description_markdown" json:"short_description_markdown"`
	ShortDescription         string `bson:"short_description" json:"short_description"`
	LongDescriptionMarkdown  string `bson:"long_description_markdown" json:"long_description_markdown"`
	LongDescription          string `bson:"long_description" json:"long_description"`

	Published     bool       `bson:"published" json:"published"`
	DatePublished *time.Time `bson:"date_published,omitempty" json:"date_published,omitempty"`
	FacebookURL   *string    `bson:"facebook_url,omitempty" json:"facebook_url,omitempty"`

	CreatorID bson.ObjectID  `bson:"creator" json:"creator"`
	ImageID   *bson.ObjectID `bson:"image,omitempty" json:"image,omitempty"`

	// Remote sync state. GCalID is nil until the event has been created on
	// the external calendar at least once. GCalSequence is the version
	// counter the remote service requires; it only ever moves forward, by
	// exactly one per remote update. Both are written only by the sync
	// client after a successful remote call.
	GCalID       *string `bson:"gcal_id,omitempty" json:"gcal_id,omitempty"`
	GCalSequence int64   `bson:"gcal_sequence" json:"gcal_sequence"`

	IsRecurring    bool           `bson:"is_recurring" json:"is_recurring"`
	ParentSeriesID *bson.ObjectID `bson:"parent_series,omitempty" json:"parent_series,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// StartDatetime combines the start date and time-of-day. Nil when the event
// has no start date.
func (e *Event) StartDatetime() *time.Time {
	return combine(e.StartDate, e.StartTime)
}

func (e *Event) EndDatetime() *time.Time {
	return combine(e.EndDate, e.EndTime)
}

func combine(date, timeOfDay *time.Time) *time.Time {
	if date == nil {
		return nil
	}
	if timeOfDay == nil {
		d := *date
		return &d
	}
	combined := time.Date(date.Year(), date.Month(), date.Day(),
		timeOfDay.Hour(), timeOfDay.Minute(), timeOfDay.Second(), 0, date.Location())
	return &combined
}

// Validate enforces the entity invariants: the start must not come after the
// end (checked only when both sides of each pair are present), and
// is_recurring must agree with the parent series back-reference.
func (e *Event) Validate() *errors.AppError {
	if e.Title == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "Event title is required", nil)
	}

	if e.StartDate != nil && e.EndDate != nil {
		if e.StartDate.After(*e.EndDate) {
			return errors.NewAppError(errors.ErrInvalidInput,
				"Event start date must not be after end date", nil)
		}
		if e.StartTime != nil && e.EndTime != nil {
			start, end := e.StartDatetime(), e.EndDatetime()
			if start.After(*end) {
				return errors.NewAppError(errors.ErrInvalidInput,
					"Event start time must not be after end time", nil)
			}
		}
	}

	if e.IsRecurring != (e.ParentSeriesID != nil) {
		return errors.NewAppError(errors.ErrInvalidInput,
			"Recurring flag must match the parent series reference", nil)
	}

	return nil
}

// Window is the event's date/time range as the recurrence engine sees it.
func (e *Event) Window() recurrence.Window {
	return recurrence.Window{
		StartDate: e.StartDate,
		StartTime: e.StartTime,
		EndDate:   e.EndDate,
		EndTime:   e.EndTime,
	}
}

// Clone returns a deep copy; pointer fields are duplicated so mutating the
// copy never leaks into the original.
func (e *Event) Clone() *Event {
	c := *e
	c.Location = clonePtr(e.Location)
	c.StartDate = clonePtr(e.StartDate)
	c.StartTime = clonePtr(e.StartTime)
	c.EndDate = clonePtr(e.EndDate)
	c.EndTime = clonePtr(e.EndTime)
	c.DatePublished = clonePtr(e.DatePublished)
	c.FacebookURL = clonePtr(e.FacebookURL)
	c.ImageID = clonePtr(e.ImageID)
	c.GCalID = clonePtr(e.GCalID)
	c.ParentSeriesID = clonePtr(e.ParentSeriesID)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
