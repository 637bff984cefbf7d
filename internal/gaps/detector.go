package gaps

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/quentin/tickvault/internal/logger"
	"github.com/quentin/tickvault/internal/partition"
)

// Detector finds trading days in a requested range that have no on-disk
// partition for a symbol. Granularity is whole days; "no trading that
// day" and "data missing" are deliberately indistinguishable here.
type Detector struct {
	root   string
	logger *logger.Logger
}

// New creates a Detector over the given partition store root.
func New(root string, log *logger.Logger) *Detector {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Detector{root: root, logger: log}
}

// Result carries the outcome of an off-thread scan.
type Result struct {
	Missing []time.Time
	Err     error
}

// FindMissingDays returns every calendar date in [start, end] (inclusive)
// with no partition file for the symbol, sorted ascending. The walk prunes
// whole year and month directories outside the requested range before
// touching day entries, so cost tracks the partitions near the window,
// not the dataset size. Malformed directory names are skipped silently.
// Parameters:
//   - ctx: context for cancellation.
//   - symbol: symbol, normalized to uppercase.
//   - start: first day of the range (inclusive).
//   - end: last day of the range (inclusive).
// Returns:
//   - []time.Time: missing days at UTC midnight, ascending.
//   - error: non-nil on I/O failure or cancellation.
func (d *Detector) FindMissingDays(ctx context.Context, symbol string, start, end time.Time) ([]time.Time, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	start = midnight(start)
	end = midnight(end)

	existing, err := d.scanExisting(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	var missing []time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if !existing[day] {
			missing = append(missing, day)
		}
	}

	d.logger.WithFields(logger.Fields{
		"symbol":   symbol,
		"start":    start.Format("2006-01-02"),
		"end":      end.Format("2006-01-02"),
		"existing": len(existing),
		"missing":  len(missing),
	}).Debug("Gap scan completed")

	return missing, nil
}

// Go runs FindMissingDays off the calling goroutine and delivers the
// result on the returned channel, so an event-loop style caller is never
// stalled by filesystem I/O.
// Parameters:
//   - ctx: context for cancellation.
//   - symbol: symbol, normalized to uppercase.
//   - start: first day of the range (inclusive).
//   - end: last day of the range (inclusive).
// Returns:
//   - <-chan Result: receives exactly one Result.
func (d *Detector) Go(ctx context.Context, symbol string, start, end time.Time) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		missing, err := d.FindMissingDays(ctx, symbol, start, end)
		out <- Result{Missing: missing, Err: err}
		close(out)
	}()
	return out
}

// scanExisting collects the partition days present within [start, end],
// pruning year and month directories wholly outside the range.
func (d *Detector) scanExisting(ctx context.Context, symbol string, start, end time.Time) (map[time.Time]bool, error) {
	existing := make(map[time.Time]bool)

	years, err := os.ReadDir(partition.SymbolDir(d.root, symbol))
	if os.IsNotExist(err) {
		// No partitions at all: every day in range is missing
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	for _, ye := range years {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !ye.IsDir() {
			continue
		}
		year, ok := partition.ParseYear(ye.Name())
		if !ok || year < start.Year() || year > end.Year() {
			continue
		}

		months, err := os.ReadDir(partition.YearDir(d.root, symbol, year))
		if err != nil {
			return nil, err
		}
		for _, me := range months {
			if !me.IsDir() {
				continue
			}
			month, ok := partition.ParseMonth(me.Name())
			if !ok {
				continue
			}
			monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
			monthEnd := monthStart.AddDate(0, 1, -1)
			if monthEnd.Before(start) || monthStart.After(end) {
				continue
			}

			files, err := os.ReadDir(partition.MonthDir(d.root, symbol, year, month))
			if err != nil {
				return nil, err
			}
			for _, fe := range files {
				dayNum, ok := partition.ParseDay(fe.Name())
				if !ok {
					continue
				}
				day := time.Date(year, month, dayNum, 0, 0, 0, 0, time.UTC)
				if day.Before(start) || day.After(end) {
					continue
				}
				existing[day] = true
			}
		}
	}
	return existing, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
