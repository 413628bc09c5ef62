package validator

import (
	"testing"
	"time"

	"go-event-cms/modules/events/dto"
)

func validRequest() *dto.EventRequest {
	return &dto.EventRequest{
		Title:     "Board Games Night",
		StartDate: "2024-01-07",
		StartTime: "19:00",
		EndDate:   "2024-01-07",
		EndTime:   "22:00",
	}
}

func TestValidateEventRequest(t *testing.T) {
	form, result := ValidateEventRequest(validRequest())
	if result.HasError() {
		t.Fatalf("unexpected errors: %s", result.Message())
	}
	if form.Title != "Board Games Night" {
		t.Errorf("title = %q", form.Title)
	}
	want := time.Date(2024, time.January, 7, 0, 0, 0, 0, time.UTC)
	if form.StartDate == nil || !form.StartDate.Equal(want) {
		t.Errorf("start date = %v", form.StartDate)
	}
	if form.StartTime == nil || form.StartTime.Hour() != 19 {
		t.Errorf("start time = %v", form.StartTime)
	}
}

func TestValidateEventRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.EventRequest)
		field  string
	}{
		{"missing title", func(r *dto.EventRequest) { r.Title = "  " }, "title"},
		{"bad date format", func(r *dto.EventRequest) { r.StartDate = "07/01/2024" }, "start_date"},
		{"end before start", func(r *dto.EventRequest) { r.EndDate = "2024-01-01" }, "end_date"},
		{"end time before start time", func(r *dto.EventRequest) { r.EndTime = "18:00" }, "end_time"},
		{"unknown scope", func(r *dto.EventRequest) { r.EditScope = "some" }, "edit_scope"},
		{"recurring without parameters", func(r *dto.EventRequest) { r.IsRecurring = true }, "recurrence"},
		{
			"recurring with contradictory ends",
			func(r *dto.EventRequest) {
				r.IsRecurring = true
				r.Recurrence = &dto.RecurrenceRequest{Frequency: "weekly", Every: 1, EndsAfter: true, EndsOn: true, NumOccurrences: 3}
			},
			"recurrence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			_, result := ValidateEventRequest(req)
			if !result.HasError() {
				t.Fatal("expected a validation error")
			}
			found := false
			for _, e := range result.Errors {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error on field %q, got %s", tt.field, result.Message())
			}
		})
	}
}

func TestValidateEventRequestRecurrence(t *testing.T) {
	req := validRequest()
	req.IsRecurring = true
	req.Recurrence = &dto.RecurrenceRequest{
		Frequency: "weekly",
		Every:     2,
		EndsOn:    true,
		EndDate:   "2024-02-04",
	}

	form, result := ValidateEventRequest(req)
	if result.HasError() {
		t.Fatalf("unexpected errors: %s", result.Message())
	}
	if form.Recurrence == nil || form.Recurrence.Every != 2 || !form.Recurrence.EndsOn {
		t.Fatalf("recurrence not carried over: %+v", form.Recurrence)
	}
	if form.Recurrence.EndDate == nil {
		t.Fatal("recurrence end date missing")
	}
}
