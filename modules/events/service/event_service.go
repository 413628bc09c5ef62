package service

import (
	"context"
	"time"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/v2/bson"

	"go-event-cms/core/constants"
	"go-event-cms/core/errors"
	"go-event-cms/core/logger"
	"go-event-cms/core/utils"
	"go-event-cms/modules/events/dto"
	"go-event-cms/modules/events/entity"
	"go-event-cms/modules/events/gcal"
	"go-event-cms/modules/events/repository"
)

// Authorizer answers capability checks. The auth module implements it.
type Authorizer interface {
	Can(ctx context.Context, userID, privilege string) (bool, error)
}

type EventServiceInterface interface {
	CreateEvent(ctx context.Context, userID string, form *dto.EventForm) (*dto.EventResponse, *errors.AppError)
	UpdateEvent(ctx context.Context, userID, eventID string, form *dto.EventForm) (*dto.EventResponse, *errors.AppError)
	DeleteEvent(ctx context.Context, userID, eventID, scope string) *errors.AppError
	GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, *errors.AppError)
	GetEventBySlug(ctx context.Context, slugValue string) (*dto.EventResponse, *errors.AppError)
	ListUpcoming(ctx context.Context, limit int64) ([]dto.EventResponse, *errors.AppError)
}

// EventService coordinates local persistence and calendar sync. Writes go to
// the repository first; the calendar follows. A failed sync after a create or
// update leaves local state ahead of remote, which the next sync heals through
// the fallback-to-create path. Deletes run remote-first so a remote failure
// never orphans a live calendar entry.
type EventService struct {
	repo       repository.EventRepositoryInterface
	sync       gcal.ClientInterface
	authorizer Authorizer
}

func NewEventService(repo repository.EventRepositoryInterface, sync gcal.ClientInterface, authorizer Authorizer) *EventService {
	return &EventService{repo: repo, sync: sync, authorizer: authorizer}
}

func (s *EventService) CreateEvent(ctx context.Context, userID string, form *dto.EventForm) (*dto.EventResponse, *errors.AppError) {
	if appErr := s.requirePrivilege(ctx, userID, constants.PrivilegeEdit); appErr != nil {
		return nil, appErr
	}
	if form.Published {
		if appErr := s.requirePrivilege(ctx, userID, constants.PrivilegePublish); appErr != nil {
			return nil, appErr
		}
	}

	creatorID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid user id", err)
	}

	now := time.Now()
	ev := &entity.Event{
		Title:     form.Title,
		Slug:      s.uniqueSlug(ctx, form.Title),
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyForm(ev, form, now)

	if !form.IsRecurring {
		ev, appErr := s.repo.CreateSingleEvent(ctx, ev)
		if appErr != nil {
			return nil, appErr
		}
		resp := dto.ToEventResponse(ev, nil)
		s.pushCreate(ctx, ev, nil, nil, resp)
		return resp, nil
	}

	if form.Recurrence == nil {
		return nil, errors.NewAppError(errors.ErrInvalidRecurrence,
			"Recurring events require recurrence parameters", nil)
	}
	series, members, appErr := s.repo.CreateSeries(ctx, ev, *form.Recurrence)
	if appErr != nil {
		return nil, appErr
	}
	resp := dto.ToEventResponse(members[0], series)
	s.pushCreate(ctx, members[0], series, members[1:], resp)
	return resp, nil
}

// UpdateEvent dispatches on the event's current recurrence state, the
// requested one and the edit scope. A scope of "one" on a recurring event
// becomes a remote exception edit; everything else rewrites the whole series
// or the standalone event.
func (s *EventService) UpdateEvent(ctx context.Context, userID, eventID string, form *dto.EventForm) (*dto.EventResponse, *errors.AppError) {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	if appErr := s.requirePrivilege(ctx, userID, constants.PrivilegeEdit); appErr != nil {
		return nil, appErr
	}

	publishChanged := ev.Published != form.Published
	if publishChanged {
		if appErr := s.requirePrivilege(ctx, userID, constants.PrivilegePublish); appErr != nil {
			return nil, appErr
		}
	}

	scope := form.EditScope
	if scope == "" {
		scope = dto.ScopeAll
	}
	if scope == dto.ScopeFollowing {
		return nil, errors.NewAppError(errors.ErrInvalidOperation,
			"Scope 'following' applies to deletes, not edits", nil)
	}

	wasRecurring := ev.IsRecurring
	switch {
	case !wasRecurring && !form.IsRecurring:
		return s.updateSingle(ctx, ev, form, publishChanged)
	case !wasRecurring && form.IsRecurring:
		return s.convertToSeries(ctx, ev, form, publishChanged)
	case wasRecurring && !form.IsRecurring:
		return s.convertToSingle(ctx, ev, form, publishChanged)
	default:
		if scope == dto.ScopeOne {
			return s.updateException(ctx, ev, form, publishChanged)
		}
		return s.updateSeries(ctx, ev, form, publishChanged)
	}
}

func (s *EventService) updateSingle(ctx context.Context, ev *entity.Event, form *dto.EventForm, publishChanged bool) (*dto.EventResponse, *errors.AppError) {
	applyForm(ev, form, time.Now())
	ev, appErr := s.repo.UpdateSingleEvent(ctx, ev)
	if appErr != nil {
		return nil, appErr
	}

	resp := dto.ToEventResponse(ev, nil)
	s.pushUpdate(ctx, ev, nil, nil, false, publishChanged, resp)
	return resp, nil
}

func (s *EventService) convertToSeries(ctx context.Context, ev *entity.Event, form *dto.EventForm, publishChanged bool) (*dto.EventResponse, *errors.AppError) {
	if form.Recurrence == nil {
		return nil, errors.NewAppError(errors.ErrInvalidRecurrence,
			"Recurring events require recurrence parameters", nil)
	}

	applyForm(ev, form, time.Now())
	series, members, appErr := s.repo.ConvertSingleToSeries(ctx, ev, *form.Recurrence)
	if appErr != nil {
		return nil, appErr
	}

	resp := dto.ToEventResponse(members[0], series)
	s.pushUpdate(ctx, members[0], series, members[1:], false, publishChanged, resp)
	return resp, nil
}

func (s *EventService) convertToSingle(ctx context.Context, ev *entity.Event, form *dto.EventForm, publishChanged bool) (*dto.EventResponse, *errors.AppError) {
	series, appErr := s.repo.GetSeries(ctx, *ev.ParentSeriesID)
	if appErr != nil {
		return nil, appErr
	}
	ev, appErr = s.repo.ConvertSeriesToSingle(ctx, series, ev)
	if appErr != nil {
		return nil, appErr
	}

	applyForm(ev, form, time.Now())
	ev, appErr = s.repo.UpdateSingleEvent(ctx, ev)
	if appErr != nil {
		return nil, appErr
	}

	resp := dto.ToEventResponse(ev, nil)
	s.pushUpdate(ctx, ev, nil, nil, false, publishChanged, resp)
	return resp, nil
}

func (s *EventService) updateException(ctx context.Context, ev *entity.Event, form *dto.EventForm, publishChanged bool) (*dto.EventResponse, *errors.AppError) {
	if publishChanged {
		return nil, errors.NewAppError(errors.ErrPublishState,
			"Publish state is managed for the whole series, not single occurrences", nil)
	}

	series, appErr := s.repo.GetSeries(ctx, *ev.ParentSeriesID)
	if appErr != nil {
		return nil, appErr
	}

	applyForm(ev, form, time.Now())
	ev, appErr = s.repo.UpdateSingleEvent(ctx, ev)
	if appErr != nil {
		return nil, appErr
	}

	resp := dto.ToEventResponse(ev, series)
	s.pushUpdate(ctx, ev, nil, nil, true, false, resp)
	return resp, nil
}

func (s *EventService) updateSeries(ctx context.Context, ev *entity.Event, form *dto.EventForm, publishChanged bool) (*dto.EventResponse, *errors.AppError) {
	if form.Recurrence == nil {
		return nil, errors.NewAppError(errors.ErrInvalidRecurrence,
			"Recurring events require recurrence parameters", nil)
	}

	series, appErr := s.repo.GetSeries(ctx, *ev.ParentSeriesID)
	if appErr != nil {
		return nil, appErr
	}

	applyForm(ev, form, time.Now())
	series, members, change, appErr := s.repo.UpdateSeries(ctx, series, ev, *form.Recurrence)
	if appErr != nil {
		return nil, appErr
	}
	if len(members) == 0 {
		return nil, errors.NewAppError(errors.ErrInternalServer,
			"Series update produced no occurrences", nil)
	}
	logger.Info("EventService:UpdateSeries",
		"series_id", series.ID.Hex(), "change", change.String(), "members", len(members))

	resp := dto.ToEventResponse(members[0], series)
	s.pushUpdate(ctx, members[0], series, members[1:], false, publishChanged, resp)
	return resp, nil
}

// DeleteEvent removes the event remotely first, then locally. Remote failures
// other than "already gone" abort before any local state is touched.
func (s *EventService) DeleteEvent(ctx context.Context, userID, eventID, scope string) *errors.AppError {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return appErr
	}
	if appErr := s.requirePrivilege(ctx, userID, constants.PrivilegeEdit); appErr != nil {
		return appErr
	}

	if !ev.IsRecurring {
		if appErr := s.pushDelete(ctx, ev, false); appErr != nil {
			return appErr
		}
		return s.repo.DeleteSingleEvent(ctx, ev)
	}

	series, appErr := s.repo.GetSeries(ctx, *ev.ParentSeriesID)
	if appErr != nil {
		return appErr
	}

	switch scope {
	case dto.ScopeOne:
		if appErr := s.pushDelete(ctx, ev, true); appErr != nil {
			return appErr
		}
		return s.repo.DeleteOne(ctx, series, ev)

	case dto.ScopeFollowing:
		members, appErr := s.repo.SeriesMembers(ctx, series)
		if appErr != nil {
			return appErr
		}
		pivot := ev.StartDatetime()
		if pivot == nil {
			return errors.NewAppError(errors.ErrInvalidOperation,
				"Cannot delete following events from an undated event", nil)
		}
		for _, member := range members {
			start := member.StartDatetime()
			if start == nil || start.Before(*pivot) {
				continue
			}
			if appErr := s.pushDelete(ctx, member, true); appErr != nil {
				return appErr
			}
		}
		return s.repo.DeleteFollowing(ctx, series, ev)

	case dto.ScopeAll, "":
		if appErr := s.pushDelete(ctx, ev, false); appErr != nil {
			return appErr
		}
		return s.repo.DeleteAll(ctx, series)

	default:
		return errors.NewAppError(errors.ErrInvalidInput, "Unknown delete scope", nil)
	}
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, *errors.AppError) {
	ev, appErr := s.loadEvent(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	return s.withSeries(ctx, ev)
}

func (s *EventService) GetEventBySlug(ctx context.Context, slugValue string) (*dto.EventResponse, *errors.AppError) {
	ev, appErr := s.repo.GetEventBySlug(ctx, slugValue)
	if appErr != nil {
		return nil, appErr
	}
	return s.withSeries(ctx, ev)
}

func (s *EventService) ListUpcoming(ctx context.Context, limit int64) ([]dto.EventResponse, *errors.AppError) {
	if limit <= 0 || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	events, appErr := s.repo.UpcomingEvents(ctx, time.Now(), limit)
	if appErr != nil {
		return nil, appErr
	}
	return dto.ToEventResponses(events), nil
}

// ===================== Sync plumbing =====================

// pushCreate syncs a freshly created event. Sync failures do not undo the
// local write; they surface as a note on the response.
func (s *EventService) pushCreate(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event, resp *dto.EventResponse) {
	outcome, appErr := s.sync.Create(ctx, ev, series, siblings)
	noteSync(resp, ev, outcome, appErr)
}

// pushUpdate moves the resource between calendars when the publish flag
// flipped, then pushes the current fields. Exception edits never move.
func (s *EventService) pushUpdate(ctx context.Context, ev *entity.Event, series *entity.EventSeries, siblings []*entity.Event, asException, publishChanged bool, resp *dto.EventResponse) {
	if publishChanged {
		var outcome gcal.Outcome
		var appErr *errors.AppError
		if ev.Published {
			outcome, appErr = s.sync.Publish(ctx, ev, series, siblings)
		} else {
			outcome, appErr = s.sync.Unpublish(ctx, ev, series, siblings)
		}
		noteSync(resp, ev, outcome, appErr)
		if appErr != nil {
			return
		}
		if outcome == gcal.OutcomeFellBackToCreate {
			// The fallback already wrote the current fields.
			return
		}
	}

	outcome, appErr := s.sync.Update(ctx, ev, series, siblings, asException)
	noteSync(resp, ev, outcome, appErr)
}

// pushDelete removes the remote resource ahead of the local delete. A
// resource that was never created or is already gone counts as done.
func (s *EventService) pushDelete(ctx context.Context, ev *entity.Event, asException bool) *errors.AppError {
	if ev.GCalID == nil {
		return nil
	}
	outcome, appErr := s.sync.Delete(ctx, ev, asException)
	if appErr != nil {
		logger.Error("EventService:Delete", appErr, "event_id", ev.ID.Hex())
		return appErr
	}
	if outcome == gcal.OutcomeAlreadyDeleted {
		logger.Info("EventService:Delete:AlreadyGone", "event_id", ev.ID.Hex())
	}
	return nil
}

func noteSync(resp *dto.EventResponse, ev *entity.Event, outcome gcal.Outcome, appErr *errors.AppError) {
	if appErr != nil {
		logger.Warn("EventService:SyncIncomplete",
			"event_id", ev.ID.Hex(), "error", appErr.Error())
		resp.SyncNote = "calendar sync incomplete: " + appErr.Message
		return
	}
	resp.GCalID = ev.GCalID
	if outcome == gcal.OutcomeFellBackToCreate {
		resp.SyncNote = "calendar entry was missing and has been recreated"
	}
}

// ===================== Helpers =====================

func (s *EventService) loadEvent(ctx context.Context, eventID string) (*entity.Event, *errors.AppError) {
	id, err := bson.ObjectIDFromHex(eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid event id", err)
	}
	return s.repo.GetEvent(ctx, id)
}

func (s *EventService) withSeries(ctx context.Context, ev *entity.Event) (*dto.EventResponse, *errors.AppError) {
	var series *entity.EventSeries
	if ev.ParentSeriesID != nil {
		loaded, appErr := s.repo.GetSeries(ctx, *ev.ParentSeriesID)
		if appErr != nil {
			return nil, appErr
		}
		series = loaded
	}
	return dto.ToEventResponse(ev, series), nil
}

func (s *EventService) requirePrivilege(ctx context.Context, userID, privilege string) *errors.AppError {
	ok, err := s.authorizer.Can(ctx, userID, privilege)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Privilege check failed", err)
	}
	if !ok {
		return errors.NewAppError(errors.ErrForbidden,
			"Missing '"+privilege+"' privilege", nil)
	}
	return nil
}

// uniqueSlug derives a slug from the title, adding a short random suffix when
// the plain slug is taken.
func (s *EventService) uniqueSlug(ctx context.Context, title string) string {
	base := slug.Make(title)
	if _, appErr := s.repo.GetEventBySlug(ctx, base); appErr != nil && appErr.Code == errors.ErrNotFound {
		return base
	}
	return base + "-" + utils.GenerateID()
}

// applyForm writes the form's content fields onto the event. Slug, recurrence
// membership and remote sync state stay untouched.
func applyForm(ev *entity.Event, form *dto.EventForm, now time.Time) {
	ev.Title = form.Title
	ev.Location = form.Location
	ev.StartDate = form.StartDate
	ev.StartTime = form.StartTime
	ev.EndDate = form.EndDate
	ev.EndTime = form.EndTime
	ev.ShortDescriptionMarkdown = form.ShortDescriptionMarkdown
	ev.ShortDescription = utils.RenderMarkdown(form.ShortDescriptionMarkdown)
	ev.LongDescriptionMarkdown = form.LongDescriptionMarkdown
	ev.LongDescription = utils.RenderMarkdown(form.LongDescriptionMarkdown)
	ev.FacebookURL = form.FacebookURL
	if form.Published && !ev.Published {
		ev.DatePublished = &now
	}
	ev.Published = form.Published
	ev.UpdatedAt = now
}
