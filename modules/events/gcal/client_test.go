package gcal

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"go-event-cms/core/config"
	apperrors "go-event-cms/core/errors"
	"go-event-cms/modules/events/entity"
	"go-event-cms/modules/events/recurrence"
)

// ===================== Fakes =====================

type fakeAPI struct {
	insertCalls  int
	updateCalls  int
	moveCalls    int
	deleteCalls  int
	lastCalID    string
	lastEventID  string
	lastMoveFrom string
	lastMoveTo   string
	lastResource *calendar.Event

	insertErrs []error
	insertRes  *calendar.Event
	updateErr  error
	updateRes  *calendar.Event
	moveErr    error
	moveRes    *calendar.Event
	deleteErr  error

	instancePages []*calendar.Events
	instancesErr  error
}

func (f *fakeAPI) Insert(_ context.Context, calendarID string, ev *calendar.Event) (*calendar.Event, error) {
	f.insertCalls++
	f.lastCalID = calendarID
	f.lastResource = ev
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if f.insertRes != nil {
		return f.insertRes, nil
	}
	return &calendar.Event{Id: "created-id", Sequence: 0}, nil
}

func (f *fakeAPI) Update(_ context.Context, calendarID string, eventID string, ev *calendar.Event) (*calendar.Event, error) {
	f.updateCalls++
	f.lastCalID = calendarID
	f.lastEventID = eventID
	f.lastResource = ev
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateRes != nil {
		return f.updateRes, nil
	}
	return &calendar.Event{Id: eventID, Sequence: ev.Sequence}, nil
}

func (f *fakeAPI) Move(_ context.Context, calendarID string, eventID string, destinationID string) (*calendar.Event, error) {
	f.moveCalls++
	f.lastMoveFrom = calendarID
	f.lastEventID = eventID
	f.lastMoveTo = destinationID
	if f.moveErr != nil {
		return nil, f.moveErr
	}
	if f.moveRes != nil {
		return f.moveRes, nil
	}
	return &calendar.Event{Id: eventID}, nil
}

func (f *fakeAPI) Delete(_ context.Context, calendarID string, eventID string) error {
	f.deleteCalls++
	f.lastCalID = calendarID
	f.lastEventID = eventID
	return f.deleteErr
}

func (f *fakeAPI) Instances(_ context.Context, _ string, _ string, pageToken string) (*calendar.Events, error) {
	if f.instancesErr != nil {
		return nil, f.instancesErr
	}
	idx := 0
	if pageToken != "" {
		for i, page := range f.instancePages {
			if page.NextPageToken == pageToken {
				idx = i + 1
				break
			}
		}
	}
	if idx >= len(f.instancePages) {
		return &calendar.Events{}, nil
	}
	return f.instancePages[idx], nil
}

type fakeStore struct {
	savedEvents []*entity.Event
	savedSeries []*entity.EventSeries
	err         error
}

func (f *fakeStore) UpdateRemoteState(_ context.Context, ev *entity.Event) error {
	if f.err != nil {
		return f.err
	}
	f.savedEvents = append(f.savedEvents, ev)
	return nil
}

func (f *fakeStore) UpdateSeriesRemoteID(_ context.Context, series *entity.EventSeries) error {
	if f.err != nil {
		return f.err
	}
	f.savedSeries = append(f.savedSeries, series)
	return nil
}

// ===================== Helpers =====================

func testClient(t *testing.T, api *fakeAPI, store *fakeStore) *Client {
	t.Helper()
	cfg := config.GoogleCalendarConfig{
		PublicCalendarID:  "public-cal",
		PrivateCalendarID: "private-cal",
		Timezone:          "UTC",
	}
	client, err := NewClient(api, cfg, store)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func testEvent(published bool) *entity.Event {
	start := time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)
	startTime := time.Date(0, 1, 1, 19, 0, 0, 0, time.UTC)
	return &entity.Event{
		ID:                      bson.NewObjectID(),
		Title:                   "Board Games Night",
		StartDate:               &start,
		StartTime:               &startTime,
		EndDate:                 &start,
		Published:               published,
		LongDescriptionMarkdown: "Bring **games**.",
	}
}

func withRemoteID(ev *entity.Event, id string, seq int64) *entity.Event {
	ev.GCalID = &id
	ev.GCalSequence = seq
	return ev
}

func notFoundErr() error {
	return &googleapi.Error{Code: 404}
}

// ===================== Tests =====================

func TestCreatePropagatesRemoteState(t *testing.T) {
	api := &fakeAPI{insertRes: &calendar.Event{Id: "r1", Sequence: 2}}
	store := &fakeStore{}
	client := testClient(t, api, store)

	ev := testEvent(false)
	sibling := testEvent(false)
	series := &entity.EventSeries{ID: bson.NewObjectID(), Frequency: string(recurrence.FrequencyWeekly), Every: 1, EndsAfter: true, NumOccurrences: 2}

	outcome, appErr := client.Create(context.Background(), ev, series, []*entity.Event{sibling})
	if appErr != nil {
		t.Fatalf("Create: %v", appErr)
	}
	if outcome != OutcomeSynced {
		t.Fatalf("outcome = %v", outcome)
	}
	if api.lastCalID != "private-cal" {
		t.Errorf("draft created on %q, want the private calendar", api.lastCalID)
	}
	for _, got := range []*entity.Event{ev, sibling} {
		if got.GCalID == nil || *got.GCalID != "r1" || got.GCalSequence != 2 {
			t.Error("remote state not propagated to every member")
		}
	}
	if series.GCalID == nil || *series.GCalID != "r1" {
		t.Error("series did not record the remote id")
	}
	if len(store.savedEvents) != 2 || len(store.savedSeries) != 1 {
		t.Errorf("persisted %d events and %d series", len(store.savedEvents), len(store.savedSeries))
	}
	if len(api.lastResource.Recurrence) != 1 || !strings.HasPrefix(api.lastResource.Recurrence[0], "RRULE:") {
		t.Errorf("recurring resource missing RRULE, got %v", api.lastResource.Recurrence)
	}
}

func TestCreatePublishedUsesPublicCalendar(t *testing.T) {
	api := &fakeAPI{}
	client := testClient(t, api, &fakeStore{})

	if _, appErr := client.Create(context.Background(), testEvent(true), nil, nil); appErr != nil {
		t.Fatalf("Create: %v", appErr)
	}
	if api.lastCalID != "public-cal" {
		t.Errorf("published event created on %q", api.lastCalID)
	}
}

func TestCreateRetriesTransientError(t *testing.T) {
	api := &fakeAPI{insertErrs: []error{&url.Error{Op: "Post", Err: errors.New("timeout")}}}
	client := testClient(t, api, &fakeStore{})

	if _, appErr := client.Create(context.Background(), testEvent(false), nil, nil); appErr != nil {
		t.Fatalf("Create after transient error: %v", appErr)
	}
	if api.insertCalls != 2 {
		t.Errorf("insert called %d times, want 2", api.insertCalls)
	}
}

func TestCreateDoesNotRetryClientError(t *testing.T) {
	api := &fakeAPI{insertErrs: []error{&googleapi.Error{Code: 400}, nil}}
	client := testClient(t, api, &fakeStore{})

	_, appErr := client.Create(context.Background(), testEvent(false), nil, nil)
	if appErr == nil || appErr.Code != apperrors.ErrRemoteUnavailable {
		t.Fatalf("expected ErrRemoteUnavailable, got %v", appErr)
	}
	if api.insertCalls != 1 {
		t.Errorf("insert called %d times, want 1", api.insertCalls)
	}
}

func TestUpdateIncrementsSequence(t *testing.T) {
	api := &fakeAPI{}
	store := &fakeStore{}
	client := testClient(t, api, store)

	ev := withRemoteID(testEvent(false), "r1", 5)
	outcome, appErr := client.Update(context.Background(), ev, nil, nil, false)
	if appErr != nil {
		t.Fatalf("Update: %v", appErr)
	}
	if outcome != OutcomeSynced {
		t.Fatalf("outcome = %v", outcome)
	}
	if api.lastResource.Sequence != 6 {
		t.Errorf("sent sequence %d, want 6", api.lastResource.Sequence)
	}
	if ev.GCalSequence != 6 {
		t.Errorf("stored sequence %d, want 6", ev.GCalSequence)
	}
}

func TestUpdateWithoutRemoteIDFallsBackToCreate(t *testing.T) {
	api := &fakeAPI{}
	client := testClient(t, api, &fakeStore{})

	outcome, appErr := client.Update(context.Background(), testEvent(false), nil, nil, false)
	if appErr != nil {
		t.Fatalf("Update: %v", appErr)
	}
	if outcome != OutcomeFellBackToCreate {
		t.Fatalf("outcome = %v, want fallback", outcome)
	}
	if api.insertCalls != 1 || api.updateCalls != 0 {
		t.Errorf("insert=%d update=%d", api.insertCalls, api.updateCalls)
	}
}

func TestUpdateVanishedResourceFallsBackToCreate(t *testing.T) {
	api := &fakeAPI{updateErr: notFoundErr()}
	client := testClient(t, api, &fakeStore{})

	ev := withRemoteID(testEvent(false), "gone", 1)
	outcome, appErr := client.Update(context.Background(), ev, nil, nil, false)
	if appErr != nil {
		t.Fatalf("Update: %v", appErr)
	}
	if outcome != OutcomeFellBackToCreate {
		t.Fatalf("outcome = %v, want fallback", outcome)
	}
	if *ev.GCalID != "created-id" {
		t.Errorf("event still points at the vanished resource %q", *ev.GCalID)
	}
}

func TestExceptionUpdateTargetsInstanceAcrossPages(t *testing.T) {
	api := &fakeAPI{
		instancePages: []*calendar.Events{
			{
				Items: []*calendar.Event{
					{Id: "inst-1", Start: &calendar.EventDateTime{DateTime: "2024-01-07T19:00:00Z"}},
				},
				NextPageToken: "page2",
			},
			{
				Items: []*calendar.Event{
					{Id: "inst-2", Start: &calendar.EventDateTime{DateTime: "2024-01-14T19:00:00Z"}},
				},
			},
		},
	}
	client := testClient(t, api, &fakeStore{})

	ev := withRemoteID(testEvent(false), "series-res", 0)
	second := ev.StartDate.AddDate(0, 0, 7)
	ev.StartDate = &second

	if _, appErr := client.Update(context.Background(), ev, nil, nil, true); appErr != nil {
		t.Fatalf("Update: %v", appErr)
	}
	if api.lastEventID != "inst-2" {
		t.Errorf("updated %q, want the matching instance on the second page", api.lastEventID)
	}
	if len(api.lastResource.Recurrence) != 0 {
		t.Error("exception update must not carry a recurrence rule")
	}
}

func TestExceptionDeleteCancelsInstance(t *testing.T) {
	api := &fakeAPI{
		instancePages: []*calendar.Events{
			{Items: []*calendar.Event{
				{Id: "inst-1", Start: &calendar.EventDateTime{DateTime: "2024-01-07T19:00:00Z"}},
			}},
		},
	}
	client := testClient(t, api, &fakeStore{})

	ev := withRemoteID(testEvent(false), "series-res", 0)
	outcome, appErr := client.Delete(context.Background(), ev, true)
	if appErr != nil {
		t.Fatalf("Delete: %v", appErr)
	}
	if outcome != OutcomeSynced {
		t.Fatalf("outcome = %v", outcome)
	}
	if api.deleteCalls != 0 {
		t.Error("exception delete must cancel, not remove the series resource")
	}
	if api.lastResource == nil || api.lastResource.Status != "cancelled" {
		t.Error("instance was not marked cancelled")
	}
}

func TestExceptionDeleteMissingInstanceIsAlreadyDeleted(t *testing.T) {
	api := &fakeAPI{instancePages: []*calendar.Events{{}}}
	client := testClient(t, api, &fakeStore{})

	ev := withRemoteID(testEvent(false), "series-res", 0)
	outcome, appErr := client.Delete(context.Background(), ev, true)
	if appErr != nil {
		t.Fatalf("Delete: %v", appErr)
	}
	if outcome != OutcomeAlreadyDeleted {
		t.Fatalf("outcome = %v, want already deleted", outcome)
	}
}

func TestDeleteGoneResourceIsAlreadyDeleted(t *testing.T) {
	api := &fakeAPI{deleteErr: &googleapi.Error{Code: 410}}
	client := testClient(t, api, &fakeStore{})

	ev := withRemoteID(testEvent(false), "r1", 0)
	outcome, appErr := client.Delete(context.Background(), ev, false)
	if appErr != nil {
		t.Fatalf("Delete: %v", appErr)
	}
	if outcome != OutcomeAlreadyDeleted {
		t.Fatalf("outcome = %v, want already deleted", outcome)
	}
}

func TestDeleteWithoutRemoteID(t *testing.T) {
	client := testClient(t, &fakeAPI{}, &fakeStore{})

	_, appErr := client.Delete(context.Background(), testEvent(false), false)
	if appErr == nil || appErr.Code != apperrors.ErrMissingRemoteID {
		t.Fatalf("expected ErrMissingRemoteID, got %v", appErr)
	}
}

func TestPublishMovesToPublicCalendar(t *testing.T) {
	api := &fakeAPI{}
	client := testClient(t, api, &fakeStore{})

	ev := withRemoteID(testEvent(true), "r1", 3)
	outcome, appErr := client.Publish(context.Background(), ev, nil, nil)
	if appErr != nil {
		t.Fatalf("Publish: %v", appErr)
	}
	if outcome != OutcomeSynced {
		t.Fatalf("outcome = %v", outcome)
	}
	if api.lastMoveFrom != "private-cal" || api.lastMoveTo != "public-cal" {
		t.Errorf("moved %q -> %q", api.lastMoveFrom, api.lastMoveTo)
	}
}

func TestPublishRequiresLocalFlag(t *testing.T) {
	client := testClient(t, &fakeAPI{}, &fakeStore{})

	ev := withRemoteID(testEvent(false), "r1", 0)
	_, appErr := client.Publish(context.Background(), ev, nil, nil)
	if appErr == nil || appErr.Code != apperrors.ErrPublishState {
		t.Fatalf("expected ErrPublishState, got %v", appErr)
	}
}

func TestUnpublishMovesToPrivateCalendar(t *testing.T) {
	api := &fakeAPI{}
	client := testClient(t, api, &fakeStore{})

	ev := withRemoteID(testEvent(false), "r1", 0)
	if _, appErr := client.Unpublish(context.Background(), ev, nil, nil); appErr != nil {
		t.Fatalf("Unpublish: %v", appErr)
	}
	if api.lastMoveFrom != "public-cal" || api.lastMoveTo != "private-cal" {
		t.Errorf("moved %q -> %q", api.lastMoveFrom, api.lastMoveTo)
	}
}

func TestRecurrenceRuleContent(t *testing.T) {
	end := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		series *entity.EventSeries
		want   []string
	}{
		{
			name:   "count",
			series: &entity.EventSeries{Frequency: string(recurrence.FrequencyWeekly), Every: 1, EndsAfter: true, NumOccurrences: 5},
			want:   []string{"FREQ=WEEKLY", "COUNT=5"},
		},
		{
			name:   "interval and until",
			series: &entity.EventSeries{Frequency: string(recurrence.FrequencyWeekly), Every: 2, EndsOn: true, RecurrenceEndDate: &end},
			want:   []string{"FREQ=WEEKLY", "INTERVAL=2", "UNTIL=20240301"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := recurrenceRule(tt.series)
			if err != nil {
				t.Fatalf("recurrenceRule: %v", err)
			}
			if !strings.HasPrefix(rule, "RRULE:") {
				t.Fatalf("rule %q missing prefix", rule)
			}
			for _, part := range tt.want {
				if !strings.Contains(rule, part) {
					t.Errorf("rule %q missing %q", rule, part)
				}
			}
		})
	}
}
