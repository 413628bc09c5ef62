package gcal

import (
	"time"

	"github.com/teambition/rrule-go"
	"google.golang.org/api/calendar/v3"

	"go-event-cms/core/errors"
	"go-event-cms/core/utils"
	"go-event-cms/modules/events/entity"
	"go-event-cms/modules/events/recurrence"
)

const (
	statusConfirmed = "confirmed"
	statusTentative = "tentative"
	statusCancelled = "cancelled"
)

// buildResource maps a local event (and, for a whole-series resource, its
// series) onto the remote representation. Descriptions are stripped of
// markup; the status follows the published flag.
func buildResource(ev *entity.Event, series *entity.EventSeries, loc *time.Location) (*calendar.Event, *errors.AppError) {
	if ev.StartDate == nil || ev.EndDate == nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput,
			"Event needs start and end dates to sync to the calendar", nil)
	}

	status := statusTentative
	if ev.Published {
		status = statusConfirmed
	}

	res := &calendar.Event{
		Summary:     ev.Title,
		Description: utils.StripMarkup(ev.LongDescriptionMarkdown),
		Status:      status,
		Start:       eventDateTime(ev.StartDate, ev.StartTime, loc),
		End:         eventDateTime(ev.EndDate, ev.EndTime, loc),
	}
	if ev.Location != nil {
		res.Location = *ev.Location
	}

	if series != nil {
		rule, appErr := recurrenceRule(series)
		if appErr != nil {
			return nil, appErr
		}
		res.Recurrence = []string{rule}
	}

	return res, nil
}

func eventDateTime(date, timeOfDay *time.Time, loc *time.Location) *calendar.EventDateTime {
	h, m, s := 0, 0, 0
	if timeOfDay != nil {
		h, m, s = timeOfDay.Hour(), timeOfDay.Minute(), timeOfDay.Second()
	}
	dt := time.Date(date.Year(), date.Month(), date.Day(), h, m, s, 0, loc)
	return &calendar.EventDateTime{
		DateTime: dt.Format(time.RFC3339),
		TimeZone: loc.String(),
	}
}

// recurrenceRule renders the series' RRULE string: FREQ, INTERVAL when the
// step exceeds one, and exactly one of COUNT/UNTIL.
func recurrenceRule(series *entity.EventSeries) (string, *errors.AppError) {
	if recurrence.Frequency(series.Frequency) != recurrence.FrequencyWeekly {
		return "", errors.NewAppError(errors.ErrInvalidRecurrence,
			"Unsupported recurrence frequency: "+series.Frequency, nil)
	}

	opt := rrule.ROption{Freq: rrule.WEEKLY}
	if series.Every > 1 {
		opt.Interval = series.Every
	}

	switch {
	case series.EndsAfter:
		opt.Count = series.NumOccurrences
	case series.EndsOn && series.RecurrenceEndDate != nil:
		opt.Until = series.RecurrenceEndDate.UTC()
	default:
		return "", errors.NewAppError(errors.ErrInvalidRecurrence,
			"Series has no valid termination", nil)
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInvalidRecurrence,
			"Failed to build recurrence rule", err)
	}
	return "RRULE:" + r.OrigOptions.RRuleString(), nil
}
