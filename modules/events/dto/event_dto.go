package dto

import (
	"time"

	"go-event-cms/modules/events/entity"
	"go-event-cms/modules/events/recurrence"
)

// EventRequest is the wire-level payload for creating or updating an event.
// Dates are "2006-01-02", times "15:04".
type EventRequest struct {
	Title                    string             `json:"title"`
	Location                 string             `json:"location"`
	StartDate                string             `json:"start_date"`
	StartTime                string             `json:"start_time"`
	EndDate                  string             `json:"end_date"`
	EndTime                  string             `json:"end_time"`
	ShortDescriptionMarkdown string             `json:"short_description_markdown"`
	LongDescriptionMarkdown  string             `json:"long_description_markdown"`
	Published                bool               `json:"published"`
	FacebookURL              string             `json:"facebook_url"`
	IsRecurring              bool               `json:"is_recurring"`
	Recurrence               *RecurrenceRequest `json:"recurrence,omitempty"`
	EditScope                string             `json:"edit_scope,omitempty"`
}

type RecurrenceRequest struct {
	Frequency      string `json:"frequency"`
	Every          int    `json:"every"`
	EndsAfter      bool   `json:"ends_after"`
	EndsOn         bool   `json:"ends_on"`
	NumOccurrences int    `json:"num_occurrences"`
	EndDate        string `json:"recurrence_end_date"`
}

// Edit/delete scopes for recurring events.
const (
	ScopeOne       = "one"
	ScopeFollowing = "following"
	ScopeAll       = "all"
)

// EventForm is the typed, validated form the service layer consumes.
type EventForm struct {
	Title                    string
	Location                 *string
	StartDate                *time.Time
	StartTime                *time.Time
	EndDate                  *time.Time
	EndTime                  *time.Time
	ShortDescriptionMarkdown string
	LongDescriptionMarkdown  string
	Published                bool
	FacebookURL              *string
	IsRecurring              bool
	Recurrence               *recurrence.Rule
	EditScope                string
}

type EventResponse struct {
	ID                       string     `json:"id"`
	Title                    string     `json:"title"`
	Slug                     string     `json:"slug"`
	Location                 *string    `json:"location,omitempty"`
	StartDate                *time.Time `json:"start_date,omitempty"`
	StartTime                *time.Time `json:"start_time,omitempty"`
	EndDate                  *time.Time `json:"end_date,omitempty"`
	EndTime                  *time.Time `json:"end_time,omitempty"`
	ShortDescriptionMarkdown string     `json:"short_description_markdown"`
	ShortDescription         string     `json:"short_description"`
	LongDescriptionMarkdown  string     `json:"long_description_markdown"`
	LongDescription          string     `json:"long_description"`
	Published                bool       `json:"published"`
	DatePublished            *time.Time `json:"date_published,omitempty"`
	FacebookURL              *string    `json:"facebook_url,omitempty"`
	IsRecurring              bool       `json:"is_recurring"`
	SeriesID                 *string    `json:"series_id,omitempty"`
	RecurrenceSummary        string     `json:"recurrence_summary,omitempty"`
	GCalID                   *string    `json:"gcal_id,omitempty"`

	// SyncNote carries informational sync signals, e.g. when the remote
	// resource had vanished and was recreated.
	SyncNote string `json:"sync_note,omitempty"`
}

func ToEventResponse(ev *entity.Event, series *entity.EventSeries) *EventResponse {
	resp := &EventResponse{
		ID:                       ev.ID.Hex(),
		Title:                    ev.Title,
		Slug:                     ev.Slug,
		Location:                 ev.Location,
		StartDate:                ev.StartDate,
		StartTime:                ev.StartTime,
		EndDate:                  ev.EndDate,
		EndTime:                  ev.EndTime,
		ShortDescriptionMarkdown: ev.ShortDescriptionMarkdown,
		ShortDescription:         ev.ShortDescription,
		LongDescriptionMarkdown:  ev.LongDescriptionMarkdown,
		LongDescription:          ev.LongDescription,
		Published:                ev.Published,
		DatePublished:            ev.DatePublished,
		FacebookURL:              ev.FacebookURL,
		IsRecurring:              ev.IsRecurring,
		GCalID:                   ev.GCalID,
	}
	if ev.ParentSeriesID != nil {
		id := ev.ParentSeriesID.Hex()
		resp.SeriesID = &id
	}
	if series != nil {
		resp.RecurrenceSummary = series.RecurrenceSummary
	}
	return resp
}

func ToEventResponses(events []*entity.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, *ToEventResponse(ev, nil))
	}
	return out
}
