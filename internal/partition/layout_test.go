package partition

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDayPath(t *testing.T) {
	day := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	got := DayPath("/data/bars", "aapl", day)
	want := filepath.Join("/data/bars", "symbol=AAPL", "year=2024", "month=06", "day=03.parquet")
	if got != want {
		t.Errorf("DayPath = %q, want %q", got, want)
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{name: "valid", input: "year=2024", want: 2024, ok: true},
		{name: "missing prefix", input: "2024", ok: false},
		{name: "not a number", input: "year=20x4", ok: false},
		{name: "negative", input: "year=-1", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseYear(tc.input)
			if ok != tc.ok || got != tc.want {
				t.Errorf("ParseYear(%q) = (%d, %v), want (%d, %v)", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Month
		ok    bool
	}{
		{name: "valid", input: "month=06", want: time.June, ok: true},
		{name: "single digit", input: "month=6", want: time.June, ok: true},
		{name: "zero", input: "month=00", ok: false},
		{name: "out of range", input: "month=13", ok: false},
		{name: "missing prefix", input: "06", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseMonth(tc.input)
			if ok != tc.ok || got != tc.want {
				t.Errorf("ParseMonth(%q) = (%d, %v), want (%d, %v)", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{name: "valid", input: "day=03.parquet", want: 3, ok: true},
		{name: "end of month", input: "day=31.parquet", want: 31, ok: true},
		{name: "wrong extension", input: "day=03.csv", ok: false},
		{name: "zero", input: "day=00.parquet", ok: false},
		{name: "out of range", input: "day=32.parquet", ok: false},
		{name: "stray file", input: "_SUCCESS", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseDay(tc.input)
			if ok != tc.ok || got != tc.want {
				t.Errorf("ParseDay(%q) = (%d, %v), want (%d, %v)", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	day := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)
	bars := sampleBars("AAPL", day, 5)

	if err := WriteDay(root, "AAPL", day, bars); err != nil {
		t.Fatalf("WriteDay failed: %v", err)
	}

	n, err := CountRows(DayPath(root, "AAPL", day))
	if err != nil {
		t.Fatalf("CountRows failed: %v", err)
	}
	if n != 5 {
		t.Errorf("CountRows = %d, want 5", n)
	}

	got, err := ReadDay(root, "AAPL", day)
	if err != nil {
		t.Fatalf("ReadDay failed: %v", err)
	}
	if len(got) != len(bars) {
		t.Fatalf("ReadDay returned %d bars, want %d", len(got), len(bars))
	}
	if got[0].Symbol != "AAPL" || got[0].Timestamp != bars[0].Timestamp {
		t.Errorf("first bar = %+v, want %+v", got[0], bars[0])
	}
}

func TestWriteDayOverwritesAtomically(t *testing.T) {
	root := t.TempDir()
	day := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)

	if err := WriteDay(root, "AAPL", day, sampleBars("AAPL", day, 3)); err != nil {
		t.Fatalf("first WriteDay failed: %v", err)
	}
	if err := WriteDay(root, "AAPL", day, sampleBars("AAPL", day, 7)); err != nil {
		t.Fatalf("second WriteDay failed: %v", err)
	}

	n, err := CountRows(DayPath(root, "AAPL", day))
	if err != nil {
		t.Fatalf("CountRows failed: %v", err)
	}
	if n != 7 {
		t.Errorf("CountRows after rewrite = %d, want 7", n)
	}
}

func TestListDays(t *testing.T) {
	root := t.TempDir()
	days := []time.Time{
		time.Date(2023, time.December, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range days {
		if err := WriteDay(root, "MSFT", d, sampleBars("MSFT", d, 1)); err != nil {
			t.Fatalf("WriteDay failed: %v", err)
		}
	}

	got, err := ListDays(root, "MSFT")
	if err != nil {
		t.Fatalf("ListDays failed: %v", err)
	}
	if len(got) != len(days) {
		t.Fatalf("ListDays returned %d days, want %d", len(got), len(days))
	}

	// Missing symbol is not an error
	none, err := ListDays(root, "TSLA")
	if err != nil {
		t.Fatalf("ListDays for missing symbol failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no days for missing symbol, got %d", len(none))
	}
}
