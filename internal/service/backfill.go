package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quentin/tickvault/internal/domain"
	"github.com/quentin/tickvault/internal/events"
	"github.com/quentin/tickvault/internal/gaps"
	"github.com/quentin/tickvault/internal/logger"
	"github.com/quentin/tickvault/internal/metrics"
	"github.com/quentin/tickvault/internal/repository"
	"github.com/quentin/tickvault/internal/verify"
)

// Fetcher is the external fetch-and-write collaborator: it pulls bars for
// exactly one (symbol, day) from a vendor and writes the partition file.
// Any error it returns is recorded as a job failure, never raised out of
// the backfill loop.
type Fetcher interface {
	FetchAndWrite(ctx context.Context, symbol string, day time.Time) (int64, error)
}

// BackfillService orchestrates gap-driven ingestion: discover missing
// days, drive one durable job per day through its state machine, invoke
// the fetch collaborator, verify the written window and fan out outcome
// events. The unit of idempotent work is one day — identical to the unit
// of storage partition — so a crash mid-backfill loses at most one day's
// job, not the whole run.
type BackfillService struct {
	jobs      *repository.JobRepository
	detector  *gaps.Detector
	verifier  *verify.Service
	fetcher   Fetcher
	publisher *events.Publisher
	metrics   *metrics.Metrics
	logger    *logger.Logger

	storeRoot    string
	feed         string
	retryCount   int
	retryBackoff time.Duration
}

// BackfillConfig holds configuration for the backfill service.
type BackfillConfig struct {
	StoreRoot    string
	Feed         string
	RetryCount   int
	RetryBackoff time.Duration
}

// NewBackfillService creates a backfill service.
func NewBackfillService(
	jobs *repository.JobRepository,
	detector *gaps.Detector,
	verifier *verify.Service,
	fetcher Fetcher,
	publisher *events.Publisher,
	m *metrics.Metrics,
	log *logger.Logger,
	cfg *BackfillConfig,
) *BackfillService {
	if log == nil {
		log = logger.GetDefault()
	}
	return &BackfillService{
		jobs:         jobs,
		detector:     detector,
		verifier:     verifier,
		fetcher:      fetcher,
		publisher:    publisher,
		metrics:      m,
		logger:       log,
		storeRoot:    cfg.StoreRoot,
		feed:         cfg.Feed,
		retryCount:   cfg.RetryCount,
		retryBackoff: cfg.RetryBackoff,
	}
}

// log returns a logger from context if available, otherwise the default
func (s *BackfillService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// DayOutcome records the result of one gap day.
type DayOutcome struct {
	Symbol   string        `json:"symbol"`
	Day      string        `json:"day"`
	JobID    string        `json:"job_id"`
	Bars     int64         `json:"bars"`
	Duration time.Duration `json:"duration"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
}

// BackfillSummary aggregates a whole run. A run always completes and
// reports per-day outcomes; no single partition's failure aborts it.
type BackfillSummary struct {
	Symbols   int          `json:"symbols"`
	GapsFound int          `json:"gaps_found"`
	Completed int          `json:"completed"`
	Failed    int          `json:"failed"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Days      []DayOutcome `json:"days"`
}

// RunBackfill ingests every missing day in [start, end] for each symbol.
// A failure on one day does not stop remaining days or symbols; a
// symbol whose gap scan fails is skipped with a logged error.
// Parameters:
//   - ctx: context for cancellation.
//   - symbols: symbols to backfill.
//   - start: first day of the range (inclusive).
//   - end: last day of the range (inclusive).
//   - vendor: vendor recorded on jobs and handed to verification.
// Returns:
//   - *BackfillSummary: per-day outcomes for the whole run.
//   - error: only for cancellation; vendor and data errors live in the summary.
func (s *BackfillService) RunBackfill(ctx context.Context, symbols []string, start, end time.Time, vendor string) (*BackfillSummary, error) {
	summary := &BackfillSummary{
		Symbols:   len(symbols),
		StartTime: time.Now(),
	}

	s.log(ctx).WithFields(logger.Fields{
		"symbols": len(symbols),
		"start":   start.Format(domain.DayFormat),
		"end":     end.Format(domain.DayFormat),
		"vendor":  vendor,
	}).Info("Starting backfill")

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			summary.EndTime = time.Now()
			return summary, err
		}

		missing, err := s.detector.FindMissingDays(ctx, symbol, start, end)
		if err != nil {
			s.log(ctx).WithField("symbol", symbol).WithError(err).Error("Gap scan failed; skipping symbol")
			continue
		}
		if s.metrics != nil {
			s.metrics.GapsFound.WithLabelValues(symbol).Add(float64(len(missing)))
		}
		summary.GapsFound += len(missing)

		for _, day := range missing {
			if err := ctx.Err(); err != nil {
				summary.EndTime = time.Now()
				return summary, err
			}
			outcome := s.processDay(ctx, symbol, day, vendor, start, end)
			summary.Days = append(summary.Days, outcome)
			if outcome.Success {
				summary.Completed++
			} else {
				summary.Failed++
			}
		}
	}

	summary.EndTime = time.Now()
	s.log(ctx).WithFields(logger.Fields{
		"gaps":      summary.GapsFound,
		"completed": summary.Completed,
		"failed":    summary.Failed,
		"duration":  summary.EndTime.Sub(summary.StartTime).String(),
	}).Info("Backfill completed")

	return summary, nil
}

// processDay drives one gap day through its job lifecycle. Each state
// transition is durably committed before the next step runs, and no
// store connection is held across the external fetch call.
func (s *BackfillService) processDay(ctx context.Context, symbol string, day time.Time, vendor string, reqStart, reqEnd time.Time) DayOutcome {
	dayStr := day.Format(domain.DayFormat)
	outcome := DayOutcome{Symbol: symbol, Day: dayStr}

	payload := domain.JobPayload{
		SchemaVersion:  domain.PayloadSchemaVersion,
		RequestedStart: reqStart.Format(domain.DayFormat),
		RequestedEnd:   reqEnd.Format(domain.DayFormat),
		Vendor:         vendor,
		Feed:           s.feed,
	}

	jobID, err := s.jobs.Upsert(ctx, symbol, day, string(domain.StatePending), payload)
	if err != nil {
		outcome.Error = fmt.Sprintf("failed to create job: %v", err)
		s.log(ctx).WithFields(logger.Fields{"symbol": symbol, "trading_day": dayStr}).WithError(err).Error("Failed to create job")
		return outcome
	}
	outcome.JobID = jobID

	if _, err := s.jobs.Advance(ctx, jobID, domain.EventStart, ""); err != nil {
		outcome.Error = fmt.Sprintf("failed to start job: %v", err)
		s.log(ctx).WithField("job_id", jobID).WithError(err).Error("Failed to start job")
		return outcome
	}

	startedAt := time.Now()
	bars, fetchErr := s.fetcher.FetchAndWrite(ctx, symbol, day)
	if fetchErr == nil {
		fetchErr = s.verifyDay(ctx, symbol, day)
	}
	elapsed := time.Since(startedAt)
	if s.metrics != nil {
		s.metrics.GapLatency.WithLabelValues(symbol).Observe(elapsed.Seconds())
	}

	outcome.Bars = bars
	outcome.Duration = elapsed

	if fetchErr != nil {
		outcome.Error = fetchErr.Error()
		s.failDay(ctx, jobID, symbol, dayStr, bars, fetchErr)
		return outcome
	}

	if _, err := s.jobs.Advance(ctx, jobID, domain.EventComplete, ""); err != nil {
		outcome.Error = fmt.Sprintf("failed to complete job: %v", err)
		s.log(ctx).WithField("job_id", jobID).WithError(err).Error("Failed to complete job")
		return outcome
	}

	outcome.Success = true
	s.publisher.Publish(domain.IngestionJobCompleted{
		JobID:         jobID,
		Symbol:        symbol,
		TradingDate:   dayStr,
		BarsProcessed: bars,
		Success:       true,
	})
	s.publisher.Publish(domain.BackfillJobCompleted{
		Symbol:   symbol,
		Day:      dayStr,
		Duration: elapsed.Seconds(),
	})
	return outcome
}

// verifyDay checks that the fetched day actually landed in its own
// partition. Substituted vendor windows leave the requested day empty
// because bars are partitioned by their real dates.
func (s *BackfillService) verifyDay(ctx context.Context, symbol string, day time.Time) error {
	r := s.verifier.VerifyDay(ctx, symbol, day, s.storeRoot)
	if !r.Passed {
		return errors.New(r.ErrorMessage)
	}
	return nil
}

// failDay records a day failure on the job and publishes the failure
// events. Jobs under the retry budget get retry bookkeeping.
func (s *BackfillService) failDay(ctx context.Context, jobID, symbol, dayStr string, bars int64, cause error) {
	job, err := s.jobs.Advance(ctx, jobID, domain.EventFail, cause.Error())
	if err != nil {
		s.log(ctx).WithField("job_id", jobID).WithError(err).Error("Failed to record job failure")
	}

	if job != nil && job.RetryCount < s.retryCount {
		if err := s.jobs.MarkForRetry(ctx, jobID, time.Now().Add(s.retryBackoff)); err != nil {
			s.log(ctx).WithField("job_id", jobID).WithError(err).Warn("Failed to record retry")
		}
	}

	s.log(ctx).WithFields(logger.Fields{
		"job_id":      jobID,
		"symbol":      symbol,
		"trading_day": dayStr,
	}).WithError(cause).Error("Backfill day failed")

	s.publisher.Publish(domain.IngestionJobCompleted{
		JobID:         jobID,
		Symbol:        symbol,
		TradingDate:   dayStr,
		BarsProcessed: bars,
		Success:       false,
		ErrorMessage:  cause.Error(),
	})
	s.publisher.Publish(domain.BackfillJobFailed{
		Symbol: symbol,
		Day:    dayStr,
		Error:  cause.Error(),
	})
}
