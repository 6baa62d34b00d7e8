package process_test

import (
	"errors"
	"reflect"
	"testing"

	"proctrack/internal/process"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"01:00:00", 3600},
		{"00:00:00", 0},
		{"34:17:36", 123456},
		{"100:59:59", 363599},
	}
	for _, tc := range cases {
		got, err := process.ParseDuration(tc.in)
		if err != nil {
			t.Fatalf("ParseDuration(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDuration(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseDurationRejectsMalformed(t *testing.T) {
	for _, in := range []string{"abc", "0", "", "1:2", "01:60:00", "01:00:60", "-1:00:00", "a:b:c", "01:00:00:00", "99999999999999999:00:00"} {
		if _, err := process.ParseDuration(in); err == nil {
			t.Fatalf("ParseDuration(%q) expected error", in)
		} else if !errors.Is(err, process.ErrInvalidInput) {
			t.Fatalf("ParseDuration(%q) error %v does not match ErrInvalidInput", in, err)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[uint64]string{
		0:      "00:00:00",
		59:     "00:00:59",
		3600:   "01:00:00",
		123456: "34:17:36",
	}
	for in, want := range cases {
		if got := process.FormatDuration(in); got != want {
			t.Fatalf("FormatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestDurationRoundTrip(t *testing.T) {
	for _, in := range []string{"00:00:00", "01:00:00", "12:34:56", "34:17:36", "123:45:01"} {
		secs, err := process.ParseDuration(in)
		if err != nil {
			t.Fatalf("ParseDuration(%q): %v", in, err)
		}
		if got := process.FormatDuration(secs); got != in {
			t.Fatalf("round trip %q -> %d -> %q", in, secs, got)
		}
	}
	if got := process.FormatDuration(^uint64(0)); got == "" {
		t.Fatal("expected max duration to format")
	}
}

func TestParseDate(t *testing.T) {
	ts, err := process.ParseDate("2024/02/29 13:05:09")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got := process.FormatDate(ts); got != "2024/02/29 13:05:09" {
		t.Fatalf("FormatDate = %q", got)
	}
	for _, bad := range []string{"", "2024-02-29 13:05:09", "2024/13/01 00:00:00", "yesterday"} {
		if _, err := process.ParseDate(bad); err == nil {
			t.Fatalf("ParseDate(%q) expected error", bad)
		}
	}
}

func TestParseIDSet(t *testing.T) {
	cases := []struct {
		in   string
		want []int
	}{
		{"0-3,5,7", []int{0, 1, 2, 3, 5, 7}},
		{"7,5,0-3", []int{0, 1, 2, 3, 5, 7}},
		{"0-3,2-5,3", []int{0, 1, 2, 3, 4, 5}},
		{" 4 , 1 ", []int{1, 4}},
		{"2-2", []int{2}},
	}
	for _, tc := range cases {
		set, err := process.ParseIDSet(tc.in)
		if err != nil {
			t.Fatalf("ParseIDSet(%q): %v", tc.in, err)
		}
		if got := set.IDs(); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseIDSet(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseIDSetRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", ",", "a", "1,,2", "3-1", "-1", "1-", "1-2-3", "0x10"} {
		if _, err := process.ParseIDSet(in); err == nil {
			t.Fatalf("ParseIDSet(%q) expected error", in)
		}
	}
}

func TestQuoteNames(t *testing.T) {
	cases := []struct {
		names []string
		want  string
	}{
		{nil, "[]"},
		{[]string{"firefox"}, `["firefox"]`},
		{[]string{"a", `b"c`}, `["a", "b\"c"]`},
	}
	for _, tc := range cases {
		if got := process.QuoteNames(tc.names); got != tc.want {
			t.Errorf("QuoteNames(%q) = %s, want %s", tc.names, got, tc.want)
		}
	}
}
