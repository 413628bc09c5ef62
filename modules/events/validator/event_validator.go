package validator

import (
	"strings"
	"time"

	"go-event-cms/modules/events/dto"
	"go-event-cms/modules/events/recurrence"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Errors []ValidationError `json:"errors"`
}

func (r *ValidationResult) HasError() bool {
	return len(r.Errors) > 0
}

func (r *ValidationResult) Add(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

func (r *ValidationResult) Message() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// ValidateEventRequest parses and validates a wire request into a typed form.
// The returned form is only meaningful when the result has no errors.
func ValidateEventRequest(req *dto.EventRequest) (*dto.EventForm, *ValidationResult) {
	result := &ValidationResult{}
	form := &dto.EventForm{
		Title:                    strings.TrimSpace(req.Title),
		ShortDescriptionMarkdown: req.ShortDescriptionMarkdown,
		LongDescriptionMarkdown:  req.LongDescriptionMarkdown,
		Published:                req.Published,
		IsRecurring:              req.IsRecurring,
		EditScope:                req.EditScope,
	}

	if form.Title == "" {
		result.Add("title", "title is required")
	}
	if loc := strings.TrimSpace(req.Location); loc != "" {
		form.Location = &loc
	}
	if fb := strings.TrimSpace(req.FacebookURL); fb != "" {
		form.FacebookURL = &fb
	}

	form.StartDate = parseOptional(dateLayout, req.StartDate, "start_date", result)
	form.EndDate = parseOptional(dateLayout, req.EndDate, "end_date", result)
	form.StartTime = parseOptional(timeLayout, req.StartTime, "start_time", result)
	form.EndTime = parseOptional(timeLayout, req.EndTime, "end_time", result)

	if form.StartDate != nil && form.EndDate != nil {
		if form.EndDate.Before(*form.StartDate) {
			result.Add("end_date", "end date precedes start date")
		} else if form.EndDate.Equal(*form.StartDate) &&
			form.StartTime != nil && form.EndTime != nil && form.EndTime.Before(*form.StartTime) {
			result.Add("end_time", "end time precedes start time on the same date")
		}
	}

	switch req.EditScope {
	case "", dto.ScopeOne, dto.ScopeFollowing, dto.ScopeAll:
	default:
		result.Add("edit_scope", "unknown edit scope")
	}

	if req.IsRecurring {
		if req.Recurrence == nil {
			result.Add("recurrence", "recurrence parameters are required for a recurring event")
		} else {
			rule := recurrence.Rule{
				Frequency:      recurrence.Frequency(req.Recurrence.Frequency),
				Every:          req.Recurrence.Every,
				EndsAfter:      req.Recurrence.EndsAfter,
				EndsOn:         req.Recurrence.EndsOn,
				NumOccurrences: req.Recurrence.NumOccurrences,
			}
			if req.Recurrence.EndDate != "" {
				end := parseOptional(dateLayout, req.Recurrence.EndDate, "recurrence_end_date", result)
				rule.EndDate = end
			}
			if err := rule.Validate(); err != nil {
				result.Add("recurrence", err.Message)
			}
			form.Recurrence = &rule
		}
	}

	return form, result
}

func parseOptional(layout, value, field string, result *ValidationResult) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		result.Add(field, "invalid value "+value)
		return nil
	}
	return &t
}
