package gaps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quentin/tickvault/internal/partition"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// touchPartition creates an empty partition file; gap detection only
// reads the tree layout, never file contents.
func touchPartition(t *testing.T, root, symbol string, d time.Time) {
	t.Helper()
	path := partition.DayPath(root, symbol, d)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindMissingDays(t *testing.T) {
	root := t.TempDir()
	det := New(root, nil)

	touchPartition(t, root, "AAPL", day(2024, time.June, 20))
	touchPartition(t, root, "AAPL", day(2024, time.June, 22))

	missing, err := det.FindMissingDays(context.Background(), "aapl", day(2024, time.June, 19), day(2024, time.June, 23))
	if err != nil {
		t.Fatalf("FindMissingDays failed: %v", err)
	}

	want := []time.Time{
		day(2024, time.June, 19),
		day(2024, time.June, 21),
		day(2024, time.June, 23),
	}
	if len(missing) != len(want) {
		t.Fatalf("got %d missing days %v, want %d", len(missing), missing, len(want))
	}
	for i := range want {
		if !missing[i].Equal(want[i]) {
			t.Errorf("missing[%d] = %s, want %s", i, missing[i], want[i])
		}
	}
}

func TestFindMissingDaysNoPartitions(t *testing.T) {
	det := New(t.TempDir(), nil)

	missing, err := det.FindMissingDays(context.Background(), "TSLA", day(2024, time.June, 1), day(2024, time.June, 3))
	if err != nil {
		t.Fatalf("FindMissingDays failed: %v", err)
	}
	if len(missing) != 3 {
		t.Errorf("expected all 3 days missing, got %d: %v", len(missing), missing)
	}
}

func TestFindMissingDaysFullCoverage(t *testing.T) {
	root := t.TempDir()
	det := New(root, nil)

	start, end := day(2024, time.May, 30), day(2024, time.June, 2)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		touchPartition(t, root, "AAPL", d)
	}

	missing, err := det.FindMissingDays(context.Background(), "AAPL", start, end)
	if err != nil {
		t.Fatalf("FindMissingDays failed: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing days, got %v", missing)
	}
}

func TestFindMissingDaysIgnoresOutOfRangeAndMalformed(t *testing.T) {
	root := t.TempDir()
	det := New(root, nil)

	// Partitions well outside the window, plus junk names in the tree
	touchPartition(t, root, "AAPL", day(2020, time.January, 15))
	touchPartition(t, root, "AAPL", day(2024, time.June, 20))
	monthDir := partition.MonthDir(root, "AAPL", 2024, time.June)
	if err := os.WriteFile(filepath.Join(monthDir, "_SUCCESS"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(partition.SymbolDir(root, "AAPL"), "scratch"), 0o755); err != nil {
		t.Fatal(err)
	}

	missing, err := det.FindMissingDays(context.Background(), "AAPL", day(2024, time.June, 20), day(2024, time.June, 21))
	if err != nil {
		t.Fatalf("FindMissingDays failed: %v", err)
	}
	if len(missing) != 1 || !missing[0].Equal(day(2024, time.June, 21)) {
		t.Errorf("missing = %v, want [2024-06-21]", missing)
	}
}

func TestFindMissingDaysCancelled(t *testing.T) {
	root := t.TempDir()
	det := New(root, nil)
	touchPartition(t, root, "AAPL", day(2024, time.June, 20))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := det.FindMissingDays(ctx, "AAPL", day(2024, time.June, 1), day(2024, time.June, 30)); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestGo(t *testing.T) {
	root := t.TempDir()
	det := New(root, nil)
	touchPartition(t, root, "AAPL", day(2024, time.June, 20))

	res := <-det.Go(context.Background(), "AAPL", day(2024, time.June, 20), day(2024, time.June, 21))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Missing) != 1 || !res.Missing[0].Equal(day(2024, time.June, 21)) {
		t.Errorf("missing = %v, want [2024-06-21]", res.Missing)
	}
}
