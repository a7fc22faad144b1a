package domain

import (
	"errors"
	"testing"
	"time"
)

func TestFireSpecNext(t *testing.T) {
	// 2026-10-12 is a Monday.
	monday10 := time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		spec  FireSpec
		after time.Time
		want  time.Time
	}{
		{
			name:  "time of day later today",
			spec:  FireSpec{Kind: FireTimeOfDay, Hour: 18, Minute: 30},
			after: monday10,
			want:  time.Date(2026, 10, 12, 18, 30, 0, 0, time.UTC),
		},
		{
			name:  "time of day already passed rolls to tomorrow",
			spec:  FireSpec{Kind: FireTimeOfDay, Hour: 9, Minute: 0},
			after: monday10,
			want:  time.Date(2026, 10, 13, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "exactly now is not in the future",
			spec:  FireSpec{Kind: FireTimeOfDay, Hour: 10, Minute: 0},
			after: monday10,
			want:  time.Date(2026, 10, 13, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "weekday later this week",
			spec:  FireSpec{Kind: FireWeekday, Weekday: Thursday, Hour: 9},
			after: monday10,
			want:  time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "same weekday later today",
			spec:  FireSpec{Kind: FireWeekday, Weekday: Monday, Hour: 11},
			after: monday10,
			want:  time.Date(2026, 10, 12, 11, 0, 0, 0, time.UTC),
		},
		{
			name:  "same weekday already passed waits a week",
			spec:  FireSpec{Kind: FireWeekday, Weekday: Monday, Hour: 9},
			after: monday10,
			want:  time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "sunday maps to the end of the iso week",
			spec:  FireSpec{Kind: FireWeekday, Weekday: Sunday, Hour: 8},
			after: monday10,
			want:  time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "absolute instant is returned unchanged",
			spec:  FireSpec{Kind: FireAt, At: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
			after: monday10,
			want:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.spec.Next(tt.after, time.UTC)
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFireSpecNext_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 2026-10-12 23:30 UTC is Tuesday 08:30 in Tokyo.
	after := time.Date(2026, 10, 12, 23, 30, 0, 0, time.UTC)

	got := FireSpec{Kind: FireTimeOfDay, Hour: 9}.Next(after, tokyo)
	want := time.Date(2026, 10, 13, 9, 0, 0, 0, tokyo)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFireSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    FireSpec
		wantErr bool
	}{
		{name: "time of day", spec: FireSpec{Kind: FireTimeOfDay, Hour: 23, Minute: 59}},
		{name: "weekday", spec: FireSpec{Kind: FireWeekday, Weekday: Friday, Hour: 7}},
		{name: "absolute", spec: FireSpec{Kind: FireAt, At: time.Now()}},
		{name: "absolute without time", spec: FireSpec{Kind: FireAt}, wantErr: true},
		{name: "weekday zero", spec: FireSpec{Kind: FireWeekday, Weekday: 0}, wantErr: true},
		{name: "hour out of range", spec: FireSpec{Kind: FireTimeOfDay, Hour: 24}, wantErr: true},
		{name: "unknown kind", spec: FireSpec{Kind: "cron"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTrigger) {
					t.Errorf("got %v, want ErrInvalidTrigger", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestTriggerReminderID(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]string
		wantID  string
		wantOK  bool
	}{
		{name: "present", payload: map[string]string{PayloadReminderIDKey: "r-1"}, wantID: "r-1", wantOK: true},
		{name: "nil payload", payload: nil},
		{name: "empty id", payload: map[string]string{PayloadReminderIDKey: ""}},
		{name: "other keys only", payload: map[string]string{"x": "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Trigger{Content: Content{Payload: tt.payload}}
			id, ok := tr.ReminderID()
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("got (%q, %v), want (%q, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}
