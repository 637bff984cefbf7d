package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quentin/tickvault/internal/domain"
	"github.com/quentin/tickvault/internal/logger"
	"github.com/quentin/tickvault/internal/partition"
	"github.com/quentin/tickvault/internal/provider"
)

// DefaultToleranceDays absorbs weekends and holidays at the window
// boundary when comparing requested vs. actual ranges.
const DefaultToleranceDays = 1

// Service checks that the data actually written for each symbol covers
// the originally requested window, and ranks substitute vendors when it
// does not. One symbol's failure never aborts verification of the rest.
type Service struct {
	matrix        *provider.FeatureMatrix
	toleranceDays int
	logger        *logger.Logger
}

// New creates a verification service.
// Parameters:
//   - matrix: vendor capability table for substitute ranking.
//   - toleranceDays: boundary slack in days; <= 0 uses DefaultToleranceDays.
//   - log: logger; nil uses the default.
// Returns:
//   - *Service: configured service.
func New(matrix *provider.FeatureMatrix, toleranceDays int, log *logger.Logger) *Service {
	if matrix == nil {
		matrix = provider.DefaultMatrix()
	}
	if toleranceDays <= 0 {
		toleranceDays = DefaultToleranceDays
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Service{matrix: matrix, toleranceDays: toleranceDays, logger: log}
}

// Verify checks every symbol's actually-written date bounds and row count
// under storeRoot against the requested window.
// Parameters:
//   - ctx: context for cancellation.
//   - symbols: symbols to verify.
//   - requestedStart: first requested day (inclusive).
//   - requestedEnd: last requested day (inclusive).
//   - vendor: vendor whose fetch is being verified.
//   - storeRoot: partition store root holding the written data.
// Returns:
//   - *domain.VerificationSummary: immutable aggregate of per-symbol results.
//   - error: always nil today; reserved for future batch-level failures.
func (s *Service) Verify(ctx context.Context, symbols []string, requestedStart, requestedEnd time.Time, vendor, storeRoot string) (*domain.VerificationSummary, error) {
	summary := &domain.VerificationSummary{AllPassed: true}

	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		result := s.verifySymbol(ctx, symbol, requestedStart, requestedEnd, vendor, storeRoot)

		summary.Results = append(summary.Results, result)
		summary.TotalBars += result.TotalBars
		if !result.Passed {
			summary.AllPassed = false
			summary.FailedSymbols = append(summary.FailedSymbols, symbol)
		}
	}

	return summary, nil
}

// VerifyDay checks that a single backfilled day actually landed in that
// day's partition with at least one row. Unlike Verify, it does not look
// at the symbol's other partitions: a live store holds history from
// earlier runs, and judging one day by store-wide bounds would fail every
// symbol that already has data. A vendor that substituted an unrelated
// window still fails here, because its bars were partitioned by their own
// dates and the requested day stayed empty.
// Parameters:
//   - ctx: context for cancellation.
//   - symbol: uppercase symbol.
//   - day: the backfilled trading day.
//   - storeRoot: partition store root holding the written data.
// Returns:
//   - domain.VerificationResult: pass/fail with row count for that day.
func (s *Service) VerifyDay(ctx context.Context, symbol string, day time.Time, storeRoot string) domain.VerificationResult {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	result := domain.VerificationResult{
		Symbol:         symbol,
		RequestedStart: day,
		RequestedEnd:   day,
	}
	if err := ctx.Err(); err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	rows, err := partition.CountRows(partition.DayPath(storeRoot, symbol, day))
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("no data found for %s", symbol)
		return result
	}
	result.TotalBars = rows
	if rows == 0 {
		result.ErrorMessage = fmt.Sprintf("no data found for %s", symbol)
		return result
	}
	result.ActualStart = &day
	result.ActualEnd = &day
	result.Passed = true
	return result
}

// verifySymbol produces one symbol's result. Internal failures (an
// unreadable store, a corrupt partition) become a failed result carrying
// the error text; they are never propagated to crash the batch.
func (s *Service) verifySymbol(ctx context.Context, symbol string, requestedStart, requestedEnd time.Time, vendor, storeRoot string) domain.VerificationResult {
	result := domain.VerificationResult{
		Symbol:         symbol,
		RequestedStart: requestedStart,
		RequestedEnd:   requestedEnd,
	}

	actualStart, actualEnd, totalBars, err := s.scanActual(ctx, symbol, storeRoot)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	result.TotalBars = totalBars
	if totalBars == 0 || actualStart == nil {
		result.ErrorMessage = fmt.Sprintf("no data found for %s", symbol)
		return result
	}
	result.ActualStart = actualStart
	result.ActualEnd = actualEnd

	if s.checkDateBoundaries(requestedStart, requestedEnd, *actualStart, *actualEnd) {
		result.Passed = true
		return result
	}

	// Vendor substituted an unrelated window; suggest alternates
	result.SuggestedProviders = s.matrix.SuggestAlternatives(vendor, requestedStart, requestedEnd, nil)
	result.ErrorMessage = s.mismatchMessage(vendor, requestedStart, requestedEnd, *actualStart, *actualEnd, result.SuggestedProviders)

	s.logger.WithFields(logger.Fields{
		"symbol":       symbol,
		"vendor":       vendor,
		"actual_start": actualStart.Format(domain.DayFormat),
		"actual_end":   actualEnd.Format(domain.DayFormat),
	}).Warn("Verification failed: written range outside requested window")

	return result
}

// scanActual reads the minimum/maximum partition day and total row count
// for the symbol under storeRoot.
func (s *Service) scanActual(ctx context.Context, symbol, storeRoot string) (*time.Time, *time.Time, int64, error) {
	days, err := partition.ListDays(storeRoot, symbol)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to scan partitions for %s: %w", symbol, err)
	}
	if len(days) == 0 {
		return nil, nil, 0, nil
	}

	var total int64
	minDay, maxDay := days[0], days[0]
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, nil, 0, err
		}
		if day.Before(minDay) {
			minDay = day
		}
		if day.After(maxDay) {
			maxDay = day
		}
		n, err := partition.CountRows(partition.DayPath(storeRoot, symbol, day))
		if err != nil {
			return nil, nil, 0, fmt.Errorf("failed to count rows for %s/%s: %w", symbol, day.Format(domain.DayFormat), err)
		}
		total += n
	}
	return &minDay, &maxDay, total, nil
}

// checkDateBoundaries requires both actual boundaries to fall within the
// requested window widened by the tolerance. A shifted or too-narrow
// actual range fails even when it overlaps the request: the point is
// catching vendors that silently substituted an unrelated historical
// window.
func (s *Service) checkDateBoundaries(requestedStart, requestedEnd, actualStart, actualEnd time.Time) bool {
	tol := time.Duration(s.toleranceDays) * 24 * time.Hour
	lo := requestedStart.Add(-tol)
	hi := requestedEnd.Add(tol)

	if actualStart.Before(lo) || actualStart.After(hi) {
		return false
	}
	if actualEnd.Before(lo) || actualEnd.After(hi) {
		return false
	}
	return true
}

// mismatchMessage composes the operator-facing failure text, including up
// to two ranked substitute vendors.
func (s *Service) mismatchMessage(vendor string, requestedStart, requestedEnd, actualStart, actualEnd time.Time, suggested []string) string {
	msg := fmt.Sprintf("%s returned data from %s to %s, which is outside the requested range %s to %s.",
		vendor,
		actualStart.Format(domain.DayFormat),
		actualEnd.Format(domain.DayFormat),
		requestedStart.Format(domain.DayFormat),
		requestedEnd.Format(domain.DayFormat),
	)
	switch {
	case len(suggested) >= 2:
		msg += fmt.Sprintf(" Try provider=%s or provider=%s.", suggested[0], suggested[1])
	case len(suggested) == 1:
		msg += fmt.Sprintf(" Try provider=%s.", suggested[0])
	}
	return msg
}
