package config_test

import (
	"strings"
	"testing"

	"proctrack/internal/config"
)

func u64(v uint64) *uint64 { return &v }

func TestDefaultIntervalsValid(t *testing.T) {
	def := config.DefaultIntervals()
	if def.PollInterval != 15 || def.DurationUpdateInterval != 5 || def.AutosaveInterval != 300 {
		t.Fatalf("unexpected defaults: %+v", def)
	}
	if err := def.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestIntervalsValidateMinimums(t *testing.T) {
	tests := []struct {
		name  string
		value config.Intervals
		field string
	}{
		{"poll", config.Intervals{PollInterval: 9, DurationUpdateInterval: 1, AutosaveInterval: 60}, "poll_interval"},
		{"duration", config.Intervals{PollInterval: 10, DurationUpdateInterval: 0, AutosaveInterval: 60}, "duration_update_interval"},
		{"autosave", config.Intervals{PollInterval: 10, DurationUpdateInterval: 1, AutosaveInterval: 59}, "autosave_interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.value.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.field) {
				t.Fatalf("expected %s error, got %v", tt.field, err)
			}
		})
	}
	minimal := config.Intervals{PollInterval: 10, DurationUpdateInterval: 1, AutosaveInterval: 60}
	if err := minimal.Validate(); err != nil {
		t.Fatalf("minimums should validate: %v", err)
	}
}

func TestIntervalsApply(t *testing.T) {
	base := config.DefaultIntervals()

	next, err := base.Apply(config.IntervalUpdate{PollInterval: u64(20)})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if next.PollInterval != 20 || next.DurationUpdateInterval != 5 || next.AutosaveInterval != 300 {
		t.Fatalf("unexpected result: %+v", next)
	}

	same, err := base.Apply(config.IntervalUpdate{PollInterval: u64(30), AutosaveInterval: u64(1)})
	if err == nil {
		t.Fatal("expected invalid autosave to fail")
	}
	if same != base {
		t.Fatalf("failed apply must not change values, got %+v", same)
	}
}

func TestDecodeIntervals(t *testing.T) {
	got, err := config.DecodeIntervals(strings.NewReader(`{"poll_interval":20,"duration_update_interval":2,"autosave_interval":120}`))
	if err != nil {
		t.Fatalf("DecodeIntervals: %v", err)
	}
	if got.PollInterval != 20 || got.DurationUpdateInterval != 2 || got.AutosaveInterval != 120 {
		t.Fatalf("unexpected intervals: %+v", got)
	}

	for _, input := range []string{
		`{"poll_interval":20`,
		`{"poll_interval":20,"duration_update_interval":2}`,
		`{"poll_interval":5,"duration_update_interval":2,"autosave_interval":120}`,
		`{"poll_interval":-1,"duration_update_interval":2,"autosave_interval":120}`,
	} {
		if _, err := config.DecodeIntervals(strings.NewReader(input)); err == nil {
			t.Fatalf("expected %s to fail", input)
		}
	}
}

func TestIntervalDurations(t *testing.T) {
	i := config.DefaultIntervals()
	if i.Poll().Seconds() != 15 || i.DurationUpdate().Seconds() != 5 || i.Autosave().Seconds() != 300 {
		t.Fatalf("unexpected durations: %v %v %v", i.Poll(), i.DurationUpdate(), i.Autosave())
	}
}
