package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quentin/tickvault/internal/domain"
)

// ReplayProvider serves bars from a local drop directory of per-symbol
// JSON files (<dir>/<SYMBOL>.json, an array of bars). It exists for
// operational replay and testing; live vendor clients are separate
// programs that implement the same interface.
type ReplayProvider struct {
	dir string
}

// NewReplayProvider creates a provider over a local drop directory.
func NewReplayProvider(dir string) *ReplayProvider {
	return &ReplayProvider{dir: dir}
}

// FetchBars returns the bars for symbol whose timestamps fall inside the
// requested range (inclusive of both boundary days).
// Parameters:
//   - ctx: unused; the read is local.
//   - symbol: uppercase symbol.
//   - tr: inclusive date window.
// Returns:
//   - []domain.Bar: bars within the window.
//   - error: *InvalidSymbolError if no drop file exists,
//     *DataUnavailableError if the window has no bars.
func (p *ReplayProvider) FetchBars(_ context.Context, symbol string, tr TimeRange) ([]domain.Bar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	path := filepath.Join(p.dir, symbol+".json")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &InvalidSymbolError{Symbol: symbol}
	}
	if err != nil {
		return nil, err
	}

	var all []domain.Bar
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("malformed drop file for %s: %w", symbol, err)
	}

	lo := tr.Start.Unix()
	hi := tr.End.Add(24 * time.Hour).Unix()
	var bars []domain.Bar
	for _, b := range all {
		if b.Timestamp >= lo && b.Timestamp < hi {
			bars = append(bars, b)
		}
	}

	if len(bars) == 0 {
		return nil, &DataUnavailableError{
			Vendor: "replay",
			Reason: fmt.Sprintf("no bars for %s between %s and %s", symbol, tr.Start.Format(domain.DayFormat), tr.End.Format(domain.DayFormat)),
		}
	}
	return bars, nil
}
