package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"go-event-cms/core/errors"
	"go-event-cms/modules/events/recurrence"
)

// EventSeries is the recurrence contract shared by a group of events. It
// exclusively owns the ordered membership list; EventIDs follows
// chronological occurrence order.
type EventSeries struct {
	ID bson.ObjectID `bson:"_id,omitempty" json:"id"`

	Frequency         string     `bson:"frequency" json:"frequency"`
	Every             int        `bson:"every" json:"every"`
	EndsAfter         bool       `bson:"ends_after" json:"ends_after"`
	EndsOn            bool       `bson:"ends_on" json:"ends_on"`
	NumOccurrences    int        `bson:"num_occurrences" json:"num_occurrences"`
	RecurrenceEndDate *time.Time `bson:"recurrence_end_date,omitempty" json:"recurrence_end_date,omitempty"`
	RecurrenceSummary string     `bson:"recurrence_summary" json:"recurrence_summary"`

	// GCalID mirrors the first member's remote id; the whole series is one
	// remote resource.
	GCalID *string `bson:"gcal_id,omitempty" json:"gcal_id,omitempty"`

	EventIDs []bson.ObjectID `bson:"events" json:"events"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Rule returns the series' recurrence parameters as an engine rule.
func (s *EventSeries) Rule() recurrence.Rule {
	return recurrence.Rule{
		Frequency:      recurrence.Frequency(s.Frequency),
		Every:          s.Every,
		EndsAfter:      s.EndsAfter,
		EndsOn:         s.EndsOn,
		NumOccurrences: s.NumOccurrences,
		EndDate:        s.RecurrenceEndDate,
	}
}

func (s *EventSeries) Validate() *errors.AppError {
	if err := s.Rule().Validate(); err != nil {
		return err
	}
	return nil
}

// RemoveEvent pulls an event id from the membership list. Returns true when
// the id was a member.
func (s *EventSeries) RemoveEvent(id bson.ObjectID) bool {
	for i, memberID := range s.EventIDs {
		if memberID == id {
			s.EventIDs = append(s.EventIDs[:i], s.EventIDs[i+1:]...)
			return true
		}
	}
	return false
}
