// Package gcal keeps each event's representation on Google Calendar in sync
// with local state. It tolerates partial failure of the remote service:
// transient errors are retried once, vanished resources are recreated.
package gcal

import (
	"context"
	"fmt"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarAPI is the remote calendar surface the client needs. The
// production implementation wraps the Google Calendar API service; tests
// substitute a fake.
type CalendarAPI interface {
	Insert(ctx context.Context, calendarID string, ev *calendar.Event) (*calendar.Event, error)
	Update(ctx context.Context, calendarID string, eventID string, ev *calendar.Event) (*calendar.Event, error)
	Move(ctx context.Context, calendarID string, eventID string, destinationID string) (*calendar.Event, error)
	Delete(ctx context.Context, calendarID string, eventID string) error
	Instances(ctx context.Context, calendarID string, eventID string, pageToken string) (*calendar.Events, error)
}

type googleCalendarAPI struct {
	svc *calendar.Service
}

// NewCalendarAPI builds the production API from a service-account
// credentials file.
func NewCalendarAPI(ctx context.Context, credentialsFile string) (CalendarAPI, error) {
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &googleCalendarAPI{svc: svc}, nil
}

func (g *googleCalendarAPI) Insert(ctx context.Context, calendarID string, ev *calendar.Event) (*calendar.Event, error) {
	return g.svc.Events.Insert(calendarID, ev).Context(ctx).Do()
}

func (g *googleCalendarAPI) Update(ctx context.Context, calendarID string, eventID string, ev *calendar.Event) (*calendar.Event, error) {
	return g.svc.Events.Update(calendarID, eventID, ev).Context(ctx).Do()
}

func (g *googleCalendarAPI) Move(ctx context.Context, calendarID string, eventID string, destinationID string) (*calendar.Event, error) {
	return g.svc.Events.Move(calendarID, eventID, destinationID).Context(ctx).Do()
}

func (g *googleCalendarAPI) Delete(ctx context.Context, calendarID string, eventID string) error {
	return g.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
}

func (g *googleCalendarAPI) Instances(ctx context.Context, calendarID string, eventID string, pageToken string) (*calendar.Events, error) {
	call := g.svc.Events.Instances(calendarID, eventID)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Context(ctx).Do()
}
