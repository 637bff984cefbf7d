package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/quentin/tickvault/internal/domain"
)

// TimeRange is an inclusive date window for a bar fetch.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// MarketDataProvider is the vendor-facing fetch capability. Concrete HTTP
// clients live outside this core; the coordinator treats any error from
// FetchBars as a job failure, never as a crash.
type MarketDataProvider interface {
	FetchBars(ctx context.Context, symbol string, tr TimeRange) ([]domain.Bar, error)
}

// InvalidSymbolError reports a symbol the vendor does not recognize.
type InvalidSymbolError struct {
	Symbol string
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol %q", e.Symbol)
}

// DataUnavailableError reports a vendor that could not serve the
// requested window.
type DataUnavailableError struct {
	Vendor string
	Reason string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable from %s: %s", e.Vendor, e.Reason)
}
