package service

import (
	"context"
	"time"

	"github.com/quentin/tickvault/internal/domain"
	"github.com/quentin/tickvault/internal/partition"
	"github.com/quentin/tickvault/internal/provider"
)

// ProviderFetcher is the default fetch-and-write collaborator: it pulls
// one day of bars from a MarketDataProvider and writes them into the
// partition tree. Vendor timeouts and rate limiting belong to the
// provider implementation, not here.
type ProviderFetcher struct {
	provider  provider.MarketDataProvider
	storeRoot string
}

// NewProviderFetcher creates a fetcher over a vendor client.
func NewProviderFetcher(p provider.MarketDataProvider, storeRoot string) *ProviderFetcher {
	return &ProviderFetcher{provider: p, storeRoot: storeRoot}
}

// FetchAndWrite fetches bars for exactly one (symbol, day) and writes
// them to partitions keyed by each bar's own timestamp date. Partitioning
// by actual bar dates (not the requested day) is what lets verification
// see where a vendor's data really landed: a silently substituted window
// produces partitions far from the requested day, not a mislabeled one.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - symbol: uppercase symbol.
//   - day: trading day to fetch.
// Returns:
//   - int64: number of bars written.
//   - error: the vendor error or the partition write error.
func (f *ProviderFetcher) FetchAndWrite(ctx context.Context, symbol string, day time.Time) (int64, error) {
	bars, err := f.provider.FetchBars(ctx, symbol, provider.TimeRange{Start: day, End: day})
	if err != nil {
		return 0, err
	}

	byDay := make(map[time.Time][]domain.Bar)
	for _, b := range bars {
		t := time.Unix(b.Timestamp, 0).UTC()
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		byDay[d] = append(byDay[d], b)
	}

	var written int64
	for d, dayBars := range byDay {
		if err := partition.WriteDay(f.storeRoot, symbol, d, dayBars); err != nil {
			return written, err
		}
		written += int64(len(dayBars))
	}
	return written, nil
}
