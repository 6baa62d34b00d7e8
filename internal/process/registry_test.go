package process_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"proctrack/internal/process"
)

func registryOf(names ...string) *process.Registry {
	items := make([]process.Process, 0, len(names))
	for _, name := range names {
		items = append(items, process.New(name))
	}
	return process.NewRegistry(items)
}

func names(r *process.Registry) string {
	out := make([]string, 0, r.Len())
	for _, p := range r.Processes() {
		out = append(out, p.Name)
	}
	return strings.Join(out, ",")
}

func TestAddRejectsDuplicateName(t *testing.T) {
	reg := registryOf("firefox", "vim")
	err := reg.Add(process.New("vim"))
	if !errors.Is(err, process.ErrAlreadyTracked) {
		t.Fatalf("expected ErrAlreadyTracked, got %v", err)
	}
	if err.Error() != "process vim is already tracked" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if got := names(reg); got != "firefox,vim" {
		t.Fatalf("registry changed after failed add: %s", got)
	}
}

func TestRemove(t *testing.T) {
	empty := process.NewRegistry(nil)
	if _, err := empty.Remove(0); !errors.Is(err, process.ErrEmptyRegistry) {
		t.Fatalf("expected ErrEmptyRegistry, got %v", err)
	}

	reg := registryOf("a", "b", "c")
	if _, err := reg.Remove(3); err == nil || err.Error() != "no process with id 3" {
		t.Fatalf("unexpected error: %v", err)
	}
	removed, err := reg.Remove(1)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed.Name != "b" {
		t.Fatalf("removed %q, want b", removed.Name)
	}
	if got := names(reg); got != "a,c" {
		t.Fatalf("after remove: %s", got)
	}
}

func TestMove(t *testing.T) {
	cases := []struct {
		id   int
		dir  process.Direction
		want string
	}{
		{2, process.DirectionUp, "a,c,b,d"},
		{1, process.DirectionDown, "a,c,b,d"},
		{3, process.DirectionTop, "d,a,b,c"},
		{0, process.DirectionBottom, "b,c,d,a"},
		{2, process.DirectionTop, "c,a,b,d"},
		{1, process.DirectionBottom, "a,c,d,b"},
	}
	for _, tc := range cases {
		reg := registryOf("a", "b", "c", "d")
		moved := reg.Processes()[tc.id].Name
		name, err := reg.Move(tc.id, tc.dir)
		if err != nil {
			t.Fatalf("Move(%d, %s): %v", tc.id, tc.dir, err)
		}
		if name != moved {
			t.Fatalf("Move(%d, %s) reported %q, want %q", tc.id, tc.dir, name, moved)
		}
		if got := names(reg); got != tc.want {
			t.Fatalf("Move(%d, %s) = %s, want %s", tc.id, tc.dir, got, tc.want)
		}
	}
}

func TestMoveRejectsExtremes(t *testing.T) {
	reg := registryOf("a", "b", "c")
	if _, err := reg.Move(0, process.DirectionUp); !errors.Is(err, process.ErrAtExtreme) || err.Error() != "a already at top" {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := reg.Move(0, process.DirectionTop); !errors.Is(err, process.ErrAtExtreme) {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := reg.Move(2, process.DirectionDown); !errors.Is(err, process.ErrAtExtreme) || err.Error() != "c already at bottom" {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := reg.Move(5, process.DirectionDown); !errors.Is(err, process.ErrNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := names(reg); got != "a,b,c" {
		t.Fatalf("order changed: %s", got)
	}

	if _, err := registryOf("solo").Move(0, process.DirectionDown); !errors.Is(err, process.ErrSingleEntry) {
		t.Fatalf("expected ErrSingleEntry, got %v", err)
	}
	if _, err := process.NewRegistry(nil).Move(0, process.DirectionDown); !errors.Is(err, process.ErrEmptyRegistry) {
		t.Fatalf("expected ErrEmptyRegistry, got %v", err)
	}
}

func TestAccrue(t *testing.T) {
	reg := process.NewRegistry([]process.Process{
		{Name: "a", IsRunning: true, IsTracked: true, Duration: 10},
		{Name: "b", IsRunning: true, IsTracked: false, Duration: 10},
		{Name: "c", IsRunning: false, IsTracked: true, Duration: 10},
		{Name: "d", IsRunning: true, IsTracked: true, Duration: ^uint64(0) - 2},
	})
	if n := reg.Accrue(5); n != 2 {
		t.Fatalf("Accrue updated %d entries, want 2", n)
	}
	got := reg.Processes()
	if got[0].Duration != 15 {
		t.Fatalf("running tracked duration = %d, want 15", got[0].Duration)
	}
	if got[1].Duration != 10 || got[2].Duration != 10 {
		t.Fatalf("untracked or stopped entries changed: %d %d", got[1].Duration, got[2].Duration)
	}
	if got[3].Duration != ^uint64(0) {
		t.Fatalf("expected saturation, got %d", got[3].Duration)
	}
}

func TestSubtractDurationSaturates(t *testing.T) {
	p := process.New("x")
	p.Duration = 5
	p.SubtractDuration(10)
	if p.Duration != 0 {
		t.Fatalf("expected 0, got %d", p.Duration)
	}
	p.Duration = ^uint64(0) - 1
	p.AddDuration(100)
	if p.Duration != ^uint64(0) {
		t.Fatalf("expected saturation, got %d", p.Duration)
	}
}

func TestRefreshLiveness(t *testing.T) {
	reg := process.NewRegistry([]process.Process{
		{Name: "a", IsTracked: true, LastSeenDate: process.Epoch()},
		{Name: "b", IsTracked: false, IsRunning: true},
		{Name: "c", IsTracked: true, IsRunning: true},
	})
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
	running := map[string]struct{}{"a": {}, "b": {}}
	if n := reg.RefreshLiveness(running, now); n != 1 {
		t.Fatalf("RefreshLiveness reported %d running, want 1", n)
	}
	got := reg.Processes()
	if !got[0].IsRunning || !got[0].LastSeenDate.Equal(now) {
		t.Fatalf("tracked present entry not refreshed: %+v", got[0])
	}
	if got[1].IsRunning {
		t.Fatal("untracked entry must not be running")
	}
	if got[2].IsRunning {
		t.Fatal("absent entry must not be running")
	}
}

func TestSelect(t *testing.T) {
	reg := registryOf("a", "b", "c")
	set, err := process.ParseIDSet("1-5")
	if err != nil {
		t.Fatalf("ParseIDSet: %v", err)
	}
	entries := reg.Select(set)
	if len(entries) != 2 || entries[0].ID != 1 || entries[1].ID != 2 || entries[1].Name != "c" {
		t.Fatalf("unexpected selection: %+v", entries)
	}
}

func TestRegistryJSON(t *testing.T) {
	added, _ := process.ParseDate("2023/05/01 12:00:00")
	reg := process.NewRegistry([]process.Process{{
		IsTracked:    true,
		Name:         "steam",
		Duration:     42,
		LastSeenDate: process.Epoch(),
		AddedDate:    added,
	}})
	data, err := json.Marshal(reg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `"added_date":"2023-05-01T12:00:00"`) {
		t.Fatalf("unexpected added_date encoding: %s", text)
	}
	if !strings.Contains(text, `"last_seen_date":"1970-01-01T00:00:00"`) {
		t.Fatalf("unexpected last_seen_date encoding: %s", text)
	}

	var decoded process.Registry
	if err := json.Unmarshal([]byte(`[{"is_running":true,"is_tracked":true,"icon":"","name":"x","duration":1,"notes":"","last_seen_date":"2023-05-01T12:00:00.123456","added_date":"2023-05-01T12:00:00"}]`), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Len() != 1 || decoded.Processes()[0].LastSeenDate.Nanosecond() != 123456000 {
		t.Fatalf("unexpected decode: %+v", decoded.Processes())
	}

	empty, _ := json.Marshal(process.NewRegistry(nil))
	if string(empty) != "[]" {
		t.Fatalf("empty registry encoded as %s", empty)
	}
}
