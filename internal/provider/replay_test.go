package provider

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quentin/tickvault/internal/domain"
)

func writeDropFile(t *testing.T, dir, symbol string, bars []domain.Bar) {
	t.Helper()
	data, err := json.Marshal(bars)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, symbol+".json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReplayProviderFetchBars(t *testing.T) {
	dir := t.TempDir()
	inDay := time.Date(2024, time.June, 20, 14, 30, 0, 0, time.UTC)
	outDay := time.Date(2024, time.June, 25, 14, 30, 0, 0, time.UTC)
	writeDropFile(t, dir, "AAPL", []domain.Bar{
		{Timestamp: inDay.Unix(), Symbol: "AAPL", Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
		{Timestamp: inDay.Add(time.Minute).Unix(), Symbol: "AAPL", Open: 100.5, High: 102, Low: 100, Close: 101, Volume: 900},
		{Timestamp: outDay.Unix(), Symbol: "AAPL", Open: 105, High: 106, Low: 104, Close: 105.5, Volume: 800},
	})

	p := NewReplayProvider(dir)
	d := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)
	bars, err := p.FetchBars(context.Background(), "aapl", TimeRange{Start: d, End: d})
	if err != nil {
		t.Fatalf("FetchBars failed: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2 (window must exclude 2024-06-25)", len(bars))
	}
}

func TestReplayProviderUnknownSymbol(t *testing.T) {
	p := NewReplayProvider(t.TempDir())
	d := time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC)

	_, err := p.FetchBars(context.Background(), "ZZZZ", TimeRange{Start: d, End: d})
	var invalid *InvalidSymbolError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidSymbolError, got %v", err)
	}
	if invalid.Symbol != "ZZZZ" {
		t.Errorf("error names %q, want ZZZZ", invalid.Symbol)
	}
}

func TestReplayProviderEmptyWindow(t *testing.T) {
	dir := t.TempDir()
	writeDropFile(t, dir, "AAPL", []domain.Bar{
		{Timestamp: time.Date(2024, time.June, 20, 14, 30, 0, 0, time.UTC).Unix(), Symbol: "AAPL"},
	})

	p := NewReplayProvider(dir)
	d := time.Date(2023, time.January, 3, 0, 0, 0, 0, time.UTC)
	_, err := p.FetchBars(context.Background(), "AAPL", TimeRange{Start: d, End: d})
	var unavailable *DataUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected *DataUnavailableError, got %v", err)
	}
}
