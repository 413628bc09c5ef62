// Package recurrence expands recurrence rules into concrete occurrence dates
// and classifies series edits. It performs no I/O.
package recurrence

import (
	"fmt"
	"iter"
	"time"

	"go-event-cms/core/errors"
)

type Frequency string

const (
	FrequencyWeekly Frequency = "weekly"
)

// Rule is the recurrence contract of an event series: how often it repeats
// and how it terminates. Exactly one of EndsAfter/EndsOn must be set.
type Rule struct {
	Frequency      Frequency
	Every          int
	EndsAfter      bool
	EndsOn         bool
	NumOccurrences int
	EndDate        *time.Time
}

func (r Rule) Validate() *errors.AppError {
	if r.Frequency != FrequencyWeekly {
		return errors.NewAppError(errors.ErrInvalidRecurrence,
			fmt.Sprintf("Unsupported recurrence frequency: %q", r.Frequency), nil)
	}
	if r.Every < 1 {
		return errors.NewAppError(errors.ErrInvalidRecurrence,
			"Recurrence interval must be at least 1", nil)
	}
	if r.EndsAfter == r.EndsOn {
		return errors.NewAppError(errors.ErrInvalidRecurrence,
			"Exactly one of ends_after and ends_on must be set", nil)
	}
	if r.EndsAfter && r.NumOccurrences < 1 {
		return errors.NewAppError(errors.ErrInvalidRecurrence,
			"ends_after requires a positive occurrence count", nil)
	}
	if r.EndsOn && r.EndDate == nil {
		return errors.NewAppError(errors.ErrInvalidRecurrence,
			"ends_on requires a recurrence end date", nil)
	}
	return nil
}

// DateRange is the start/end date pair of one occurrence.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Expand returns the finite sequence of occurrence date pairs for the rule,
// starting at startDate/endDate. The sequence is lazy and restartable:
// ranging over it again yields the occurrences from the beginning.
//
// The step between occurrences is Every*7 days added to both dates. An
// ends_on boundary is inclusive: an occurrence starting exactly on the end
// date is yielded, the one after it is not.
func Expand(startDate, endDate time.Time, rule Rule) (iter.Seq[DateRange], *errors.AppError) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	step := rule.Every * 7

	seq := func(yield func(DateRange) bool) {
		start, end := startDate, endDate
		if rule.EndsAfter {
			for i := 0; i < rule.NumOccurrences; i++ {
				if !yield(DateRange{Start: start, End: end}) {
					return
				}
				start = start.AddDate(0, 0, step)
				end = end.AddDate(0, 0, step)
			}
			return
		}
		for !start.After(*rule.EndDate) {
			if !yield(DateRange{Start: start, End: end}) {
				return
			}
			start = start.AddDate(0, 0, step)
			end = end.AddDate(0, 0, step)
		}
	}

	return seq, nil
}

// Window is an event's own date/time range, as far as it affects whether a
// series edit can be applied in place.
type Window struct {
	StartDate *time.Time
	StartTime *time.Time
	EndDate   *time.Time
	EndTime   *time.Time
}

type Change int

const (
	// ChangeSimple edits apply in place to every existing member event.
	ChangeSimple Change = iota
	// ChangeStructural edits invalidate the materialized occurrence list and
	// require regenerating the whole series.
	ChangeStructural
)

func (c Change) String() string {
	if c == ChangeSimple {
		return "simple"
	}
	return "structural"
}

// Classify reports whether a series edit is Simple or Structural. A change is
// Simple iff every recurrence parameter and the event's own date/time window
// are unchanged; any other difference is Structural.
func Classify(oldRule, newRule Rule, oldWindow, newWindow Window) Change {
	if !rulesEqual(oldRule, newRule) {
		return ChangeStructural
	}
	if !windowsEqual(oldWindow, newWindow) {
		return ChangeStructural
	}
	return ChangeSimple
}

func rulesEqual(a, b Rule) bool {
	return a.Frequency == b.Frequency &&
		a.Every == b.Every &&
		a.EndsAfter == b.EndsAfter &&
		a.EndsOn == b.EndsOn &&
		a.NumOccurrences == b.NumOccurrences &&
		timesEqual(a.EndDate, b.EndDate)
}

func windowsEqual(a, b Window) bool {
	return timesEqual(a.StartDate, b.StartDate) &&
		timesEqual(a.StartTime, b.StartTime) &&
		timesEqual(a.EndDate, b.EndDate) &&
		timesEqual(a.EndTime, b.EndTime)
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Summary renders the human-readable recurrence description stored on the
// series, e.g. "Every 2 weeks, 5 times" or "Every week until Jan 21, 2024".
func Summary(rule Rule) string {
	var s string
	if rule.Every == 1 {
		s = "Every week"
	} else {
		s = fmt.Sprintf("Every %d weeks", rule.Every)
	}

	switch {
	case rule.EndsAfter && rule.NumOccurrences == 1:
		s += ", once"
	case rule.EndsAfter:
		s += fmt.Sprintf(", %d times", rule.NumOccurrences)
	case rule.EndsOn && rule.EndDate != nil:
		s += " until " + rule.EndDate.Format("Jan 2, 2006")
	}

	return s
}
