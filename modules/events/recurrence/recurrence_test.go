package recurrence

import (
	"testing"
	"time"

	"go-event-cms/core/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func collect(t *testing.T, start, end time.Time, rule Rule) []DateRange {
	t.Helper()
	seq, err := Expand(start, end, rule)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	var out []DateRange
	for r := range seq {
		out = append(out, r)
	}
	return out
}

func TestExpandEndsAfter(t *testing.T) {
	start := date(2024, time.January, 7) // a Sunday
	rule := Rule{Frequency: FrequencyWeekly, Every: 1, EndsAfter: true, NumOccurrences: 3}

	got := collect(t, start, start, rule)
	want := []time.Time{
		date(2024, time.January, 7),
		date(2024, time.January, 14),
		date(2024, time.January, 21),
	}

	if len(got) != len(want) {
		t.Fatalf("got %d occurrences, want %d", len(got), len(want))
	}
	for i, r := range got {
		if !r.Start.Equal(want[i]) {
			t.Errorf("occurrence %d start = %v, want %v", i, r.Start, want[i])
		}
		if !r.End.Equal(want[i]) {
			t.Errorf("occurrence %d end = %v, want %v", i, r.End, want[i])
		}
	}
}

func TestExpandSpacing(t *testing.T) {
	start := date(2024, time.March, 4)
	end := date(2024, time.March, 5)
	rule := Rule{Frequency: FrequencyWeekly, Every: 3, EndsAfter: true, NumOccurrences: 4}

	got := collect(t, start, end, rule)
	if len(got) != 4 {
		t.Fatalf("got %d occurrences, want 4", len(got))
	}
	for i := 1; i < len(got); i++ {
		gap := got[i].Start.Sub(got[i-1].Start)
		if gap != 21*24*time.Hour {
			t.Errorf("gap between occurrence %d and %d = %v, want 21 days", i-1, i, gap)
		}
	}
	// Each occurrence keeps the one-day start/end span.
	for i, r := range got {
		if r.End.Sub(r.Start) != 24*time.Hour {
			t.Errorf("occurrence %d span = %v, want 24h", i, r.End.Sub(r.Start))
		}
	}
}

func TestExpandEndsOnBoundary(t *testing.T) {
	start := date(2024, time.January, 7)

	tests := []struct {
		name    string
		endDate time.Time
		want    int
	}{
		{"boundary inclusive", date(2024, time.January, 21), 3},
		{"one day before boundary", date(2024, time.January, 20), 2},
		{"end equals start", date(2024, time.January, 7), 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rule := Rule{Frequency: FrequencyWeekly, Every: 1, EndsOn: true, EndDate: &tc.endDate}
			got := collect(t, start, start, rule)
			if len(got) != tc.want {
				t.Errorf("got %d occurrences, want %d", len(got), tc.want)
			}
		})
	}
}

func TestExpandRestartable(t *testing.T) {
	start := date(2024, time.January, 7)
	rule := Rule{Frequency: FrequencyWeekly, Every: 1, EndsAfter: true, NumOccurrences: 3}

	seq, appErr := Expand(start, start, rule)
	if appErr != nil {
		t.Fatalf("Expand returned error: %v", appErr)
	}

	first, second := 0, 0
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	if first != 3 || second != 3 {
		t.Errorf("sequence not restartable: first pass %d, second pass %d", first, second)
	}
}

func TestExpandInvalidRules(t *testing.T) {
	start := date(2024, time.January, 7)

	tests := []struct {
		name string
		rule Rule
	}{
		{"unknown frequency", Rule{Frequency: "daily", Every: 1, EndsAfter: true, NumOccurrences: 2}},
		{"neither termination", Rule{Frequency: FrequencyWeekly, Every: 1}},
		{"both terminations", Rule{Frequency: FrequencyWeekly, Every: 1, EndsAfter: true, EndsOn: true, NumOccurrences: 2, EndDate: datePtr(2024, time.February, 1)}},
		{"ends_on without end date", Rule{Frequency: FrequencyWeekly, Every: 1, EndsOn: true}},
		{"ends_after without count", Rule{Frequency: FrequencyWeekly, Every: 1, EndsAfter: true}},
		{"zero interval", Rule{Frequency: FrequencyWeekly, Every: 0, EndsAfter: true, NumOccurrences: 2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Expand(start, start, tc.rule)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if err.Code != errors.ErrInvalidRecurrence {
				t.Errorf("error code = %s, want %s", err.Code, errors.ErrInvalidRecurrence)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	baseRule := Rule{Frequency: FrequencyWeekly, Every: 1, EndsAfter: true, NumOccurrences: 3}
	baseWindow := Window{
		StartDate: datePtr(2024, time.January, 7),
		EndDate:   datePtr(2024, time.January, 7),
	}

	tests := []struct {
		name      string
		newRule   Rule
		newWindow Window
		want      Change
	}{
		{"no changes", baseRule, baseWindow, ChangeSimple},
		{"interval changed", Rule{Frequency: FrequencyWeekly, Every: 2, EndsAfter: true, NumOccurrences: 3}, baseWindow, ChangeStructural},
		{"count changed", Rule{Frequency: FrequencyWeekly, Every: 1, EndsAfter: true, NumOccurrences: 5}, baseWindow, ChangeStructural},
		{"termination mode changed", Rule{Frequency: FrequencyWeekly, Every: 1, EndsOn: true, EndDate: datePtr(2024, time.January, 21)}, baseWindow, ChangeStructural},
		{"start date changed", baseRule, Window{StartDate: datePtr(2024, time.January, 8), EndDate: baseWindow.EndDate}, ChangeStructural},
		{"start time added", baseRule, Window{
			StartDate: baseWindow.StartDate,
			StartTime: datePtr(2024, time.January, 7),
			EndDate:   baseWindow.EndDate,
		}, ChangeStructural},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(baseRule, tc.newRule, baseWindow, tc.newWindow)
			if got != tc.want {
				t.Errorf("Classify = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want string
	}{
		{"weekly count", Rule{Frequency: FrequencyWeekly, Every: 1, EndsAfter: true, NumOccurrences: 5}, "Every week, 5 times"},
		{"biweekly once", Rule{Frequency: FrequencyWeekly, Every: 2, EndsAfter: true, NumOccurrences: 1}, "Every 2 weeks, once"},
		{"until date", Rule{Frequency: FrequencyWeekly, Every: 1, EndsOn: true, EndDate: datePtr(2024, time.January, 21)}, "Every week until Jan 21, 2024"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Summary(tc.rule); got != tc.want {
				t.Errorf("Summary = %q, want %q", got, tc.want)
			}
		})
	}
}
