package gcal

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"go-event-cms/core/config"
	"go-event-cms/core/errors"
	"go-event-cms/core/logger"
	"go-event-cms/modules/events/entity"
)

// Outcome reports how a sync operation completed. FellBackToCreate and
// AlreadyDeleted are recoverable signals, not failures.
type Outcome int

const (
	OutcomeSynced Outcome = iota
	OutcomeFellBackToCreate
	OutcomeAlreadyDeleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFellBackToCreate:
		return "fell_back_to_create"
	case OutcomeAlreadyDeleted:
		return "already_deleted"
	default:
		return "synced"
	}
}

// RemoteStateStore persists gcal_id/gcal_sequence after successful remote
// calls. The event repository implements it.
type RemoteStateStore interface {
	UpdateRemoteState(ctx context.Context, ev *entity.Event) error
	UpdateSeriesRemoteID(ctx context.Context, series *entity.EventSeries) error
}

type ClientInterface interface {
	Create(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event) (Outcome, *errors.AppError)
	Update(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event, asException bool) (Outcome, *errors.AppError)
	Publish(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event) (Outcome, *errors.AppError)
	Unpublish(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event) (Outcome, *errors.AppError)
	Delete(ctx context.Context, ev *entity.Event, asException bool) (Outcome, *errors.AppError)
}

// Client maps local event state onto the remote calendar. Published events
// live on the public calendar, drafts on the private one.
type Client struct {
	api   CalendarAPI
	cfg   config.GoogleCalendarConfig
	store RemoteStateStore
	loc   *time.Location
}

func NewClient(api CalendarAPI, cfg config.GoogleCalendarConfig, store RemoteStateStore) (*Client, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar timezone %q: %w", cfg.Timezone, err)
	}
	return &Client{api: api, cfg: cfg, store: store, loc: loc}, nil
}

func (c *Client) calendarID(ev *entity.Event) string {
	if ev.Published {
		return c.cfg.PublicCalendarID
	}
	return c.cfg.PrivateCalendarID
}

// Create inserts the event's resource (with the series recurrence rule when
// recurring) and records the returned id and sequence on the event and every
// sibling, since a series shares one remote resource.
func (c *Client) Create(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event) (Outcome, *errors.AppError) {
	res, appErr := buildResource(ev, series, c.loc)
	if appErr != nil {
		return OutcomeSynced, appErr
	}

	calID := c.calendarID(ev)
	var created *calendar.Event
	err := withRetry("Create", func() error {
		var apiErr error
		created, apiErr = c.api.Insert(ctx, calID, res)
		return apiErr
	})
	if err != nil {
		logger.Error("GCalClient:Create", err, "event_id", ev.ID.Hex())
		return OutcomeSynced, errors.NewAppError(errors.ErrRemoteUnavailable,
			"Calendar create did not complete", err)
	}
	if created == nil || created.Id == "" {
		return OutcomeSynced, errors.NewAppError(errors.ErrMissingRemoteID,
			"Calendar response carried no resource id", nil)
	}

	if appErr := c.applyRemoteState(ctx, ev, series, siblings, created.Id, created.Sequence); appErr != nil {
		return OutcomeSynced, appErr
	}
	return OutcomeSynced, nil
}

// Update pushes the event's current fields to the remote resource with the
// next sequence number. When asException is set, only the remote instance
// matching this event's start time is updated. A missing remote id or a
// vanished resource falls back to Create.
func (c *Client) Update(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event, asException bool) (Outcome, *errors.AppError) {
	if ev.GCalID == nil {
		logger.Info("GCalClient:Update:FallbackToCreate",
			"event_id", ev.ID.Hex(), "reason", "never created remotely")
		return c.fallbackCreate(ctx, ev, series, siblings, asException)
	}

	resSeries := series
	if asException {
		resSeries = nil
	}
	res, appErr := buildResource(ev, resSeries, c.loc)
	if appErr != nil {
		return OutcomeSynced, appErr
	}
	res.Sequence = ev.GCalSequence + 1

	calID := c.calendarID(ev)
	targetID := *ev.GCalID
	if asException {
		inst, appErr := c.findInstance(ctx, calID, *ev.GCalID, ev)
		if appErr != nil {
			if appErr.Code == errors.ErrNotFound {
				logger.Info("GCalClient:Update:FallbackToCreate",
					"event_id", ev.ID.Hex(), "reason", "instance not found remotely")
				return c.fallbackCreate(ctx, ev, series, siblings, asException)
			}
			return OutcomeSynced, appErr
		}
		targetID = inst.Id
	}

	var updated *calendar.Event
	err := withRetry("Update", func() error {
		var apiErr error
		updated, apiErr = c.api.Update(ctx, calID, targetID, res)
		return apiErr
	})
	if err != nil {
		if isNotFound(err) {
			logger.Info("GCalClient:Update:FallbackToCreate",
				"event_id", ev.ID.Hex(), "reason", "resource not found remotely")
			return c.fallbackCreate(ctx, ev, series, siblings, asException)
		}
		logger.Error("GCalClient:Update", err, "event_id", ev.ID.Hex())
		return OutcomeSynced, errors.NewAppError(errors.ErrRemoteUnavailable,
			"Calendar update did not complete", err)
	}

	seq := res.Sequence
	if updated != nil && updated.Sequence > seq {
		seq = updated.Sequence
	}

	if asException {
		ev.GCalSequence = seq
		if err := c.store.UpdateRemoteState(ctx, ev); err != nil {
			return OutcomeSynced, errors.NewAppError(errors.ErrUpdateFailed,
				"Failed to persist remote sync state", err)
		}
		return OutcomeSynced, nil
	}

	if appErr := c.applyRemoteState(ctx, ev, series, siblings, *ev.GCalID, seq); appErr != nil {
		return OutcomeSynced, appErr
	}
	return OutcomeSynced, nil
}

// Publish moves the event's resource from the private to the public
// calendar. The local published flag must already be set: the move is a
// consequence of the publish decision, not its cause.
func (c *Client) Publish(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event) (Outcome, *errors.AppError) {
	if !ev.Published {
		return OutcomeSynced, errors.NewAppError(errors.ErrPublishState,
			"Event is not marked published locally", nil)
	}
	return c.move(ctx, ev, series, siblings, c.cfg.PrivateCalendarID, c.cfg.PublicCalendarID)
}

// Unpublish moves the resource back to the private calendar; the local flag
// must already be cleared.
func (c *Client) Unpublish(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event) (Outcome, *errors.AppError) {
	if ev.Published {
		return OutcomeSynced, errors.NewAppError(errors.ErrPublishState,
			"Event is still marked published locally", nil)
	}
	return c.move(ctx, ev, series, siblings, c.cfg.PublicCalendarID, c.cfg.PrivateCalendarID)
}

func (c *Client) move(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event, from, to string) (Outcome, *errors.AppError) {
	if ev.GCalID == nil {
		logger.Info("GCalClient:Move:FallbackToCreate",
			"event_id", ev.ID.Hex(), "reason", "never created remotely")
		return c.fallbackCreate(ctx, ev, series, siblings, false)
	}

	var moved *calendar.Event
	err := withRetry("Move", func() error {
		var apiErr error
		moved, apiErr = c.api.Move(ctx, from, *ev.GCalID, to)
		return apiErr
	})
	if err != nil {
		if isNotFound(err) {
			logger.Info("GCalClient:Move:FallbackToCreate",
				"event_id", ev.ID.Hex(), "reason", "resource not found remotely")
			return c.fallbackCreate(ctx, ev, series, siblings, false)
		}
		logger.Error("GCalClient:Move", err, "event_id", ev.ID.Hex())
		return OutcomeSynced, errors.NewAppError(errors.ErrRemoteUnavailable,
			"Calendar move did not complete", err)
	}

	seq := ev.GCalSequence
	if moved != nil && moved.Sequence > seq {
		seq = moved.Sequence
	}
	if appErr := c.applyRemoteState(ctx, ev, series, siblings, *ev.GCalID, seq); appErr != nil {
		return OutcomeSynced, appErr
	}
	return OutcomeSynced, nil
}

// Delete removes the event's remote resource. An exception delete cancels
// the single matching instance instead of removing the series. A resource
// already gone remotely counts as success.
func (c *Client) Delete(ctx context.Context, ev *entity.Event, asException bool) (Outcome, *errors.AppError) {
	if ev.GCalID == nil {
		return OutcomeSynced, errors.NewAppError(errors.ErrMissingRemoteID,
			"Event has no remote calendar id", nil)
	}

	calID := c.calendarID(ev)

	if asException {
		inst, appErr := c.findInstance(ctx, calID, *ev.GCalID, ev)
		if appErr != nil {
			if appErr.Code == errors.ErrNotFound {
				return OutcomeAlreadyDeleted, nil
			}
			return OutcomeSynced, appErr
		}

		inst.Status = statusCancelled
		err := withRetry("CancelInstance", func() error {
			_, apiErr := c.api.Update(ctx, calID, inst.Id, inst)
			return apiErr
		})
		if err != nil {
			if isNotFound(err) {
				return OutcomeAlreadyDeleted, nil
			}
			logger.Error("GCalClient:CancelInstance", err, "event_id", ev.ID.Hex())
			return OutcomeSynced, errors.NewAppError(errors.ErrRemoteUnavailable,
				"Calendar cancel did not complete", err)
		}
		return OutcomeSynced, nil
	}

	err := withRetry("Delete", func() error {
		return c.api.Delete(ctx, calID, *ev.GCalID)
	})
	if err != nil {
		if isNotFound(err) {
			return OutcomeAlreadyDeleted, nil
		}
		logger.Error("GCalClient:Delete", err, "event_id", ev.ID.Hex())
		return OutcomeSynced, errors.NewAppError(errors.ErrRemoteUnavailable,
			"Calendar delete did not complete", err)
	}
	return OutcomeSynced, nil
}

// fallbackCreate recreates the remote resource when an update or move finds
// nothing to act on. For an exception edit the recreated resource is a
// standalone copy of just this occurrence.
func (c *Client) fallbackCreate(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event, asException bool) (Outcome, *errors.AppError) {
	if asException {
		series = nil
		siblings = nil
	}
	if _, appErr := c.Create(ctx, ev, series, siblings); appErr != nil {
		return OutcomeSynced, appErr
	}
	return OutcomeFellBackToCreate, nil
}

// findInstance scans the paginated instance listing of a recurring resource
// for the instance whose start matches this event's start.
func (c *Client) findInstance(ctx context.Context, calendarID, remoteID string, ev *entity.Event) (*calendar.Event, *errors.AppError) {
	if ev.StartDate == nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput,
			"Event needs a start date to resolve its calendar instance", nil)
	}

	want := eventDateTime(ev.StartDate, ev.StartTime, c.loc)
	wantTime, err := time.Parse(time.RFC3339, want.DateTime)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer,
			"Failed to compute instance start time", err)
	}

	pageToken := ""
	for {
		var page *calendar.Events
		err := withRetry("Instances", func() error {
			var apiErr error
			page, apiErr = c.api.Instances(ctx, calendarID, remoteID, pageToken)
			return apiErr
		})
		if err != nil {
			if isNotFound(err) {
				return nil, errors.NewAppError(errors.ErrNotFound,
					"Recurring resource not found remotely", err)
			}
			return nil, errors.NewAppError(errors.ErrRemoteUnavailable,
				"Calendar instance listing did not complete", err)
		}

		for _, inst := range page.Items {
			if inst.Start == nil {
				continue
			}
			if inst.Start.DateTime != "" {
				t, parseErr := time.Parse(time.RFC3339, inst.Start.DateTime)
				if parseErr == nil && t.Equal(wantTime) {
					return inst, nil
				}
				continue
			}
			if inst.Start.Date == ev.StartDate.Format("2006-01-02") {
				return inst, nil
			}
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return nil, errors.NewAppError(errors.ErrNotFound,
		"No calendar instance matches the event start time", nil)
}

// applyRemoteState records the shared remote id and sequence on the event,
// its siblings and the series, and persists them.
func (c *Client) applyRemoteState(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event, remoteID string, sequence int64) *errors.AppError {
	ev.GCalID = &remoteID
	ev.GCalSequence = sequence
	if err := c.store.UpdateRemoteState(ctx, ev); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed,
			"Failed to persist remote sync state", err)
	}

	for _, sibling := range siblings {
		if sibling.ID == ev.ID {
			continue
		}
		id := remoteID
		sibling.GCalID = &id
		sibling.GCalSequence = sequence
		if err := c.store.UpdateRemoteState(ctx, sibling); err != nil {
			return errors.NewAppError(errors.ErrUpdateFailed,
				"Failed to persist remote sync state", err)
		}
	}

	if series != nil {
		id := remoteID
		series.GCalID = &id
		if err := c.store.UpdateSeriesRemoteID(ctx, series); err != nil {
			return errors.NewAppError(errors.ErrUpdateFailed,
				"Failed to persist series remote id", err)
		}
	}
	return nil
}
