package service

import (
	"context"
	"testing"
	"time"

	"github.com/quentin/tickvault/internal/domain"
	"github.com/quentin/tickvault/internal/partition"
	"github.com/quentin/tickvault/internal/provider"
)

// canned returns fixed bars regardless of the requested window.
type canned struct {
	bars []domain.Bar
}

func (c *canned) FetchBars(context.Context, string, provider.TimeRange) ([]domain.Bar, error) {
	return c.bars, nil
}

func TestFetchAndWritePartitionsByBarDate(t *testing.T) {
	root := t.TempDir()
	requested := day(2024, time.June, 20)
	other := day(2024, time.June, 21)

	// Vendor hands back bars spanning two calendar days
	p := &canned{bars: []domain.Bar{
		{Timestamp: requested.Add(14 * time.Hour).Unix(), Symbol: "AAPL", Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
		{Timestamp: requested.Add(15 * time.Hour).Unix(), Symbol: "AAPL", Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
		{Timestamp: other.Add(14 * time.Hour).Unix(), Symbol: "AAPL", Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
	}}

	f := NewProviderFetcher(p, root)
	written, err := f.FetchAndWrite(context.Background(), "AAPL", requested)
	if err != nil {
		t.Fatalf("FetchAndWrite failed: %v", err)
	}
	if written != 3 {
		t.Errorf("written = %d, want 3", written)
	}

	n, err := partition.CountRows(partition.DayPath(root, "AAPL", requested))
	if err != nil {
		t.Fatalf("CountRows for requested day failed: %v", err)
	}
	if n != 2 {
		t.Errorf("requested day holds %d bars, want 2", n)
	}

	n, err = partition.CountRows(partition.DayPath(root, "AAPL", other))
	if err != nil {
		t.Fatalf("CountRows for spillover day failed: %v", err)
	}
	if n != 1 {
		t.Errorf("spillover day holds %d bars, want 1", n)
	}
}
