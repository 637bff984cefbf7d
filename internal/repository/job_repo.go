package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quentin/tickvault/internal/domain"
)

// JobRepository handles ingestion job persistence and state transitions.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Upsert creates or supersedes the job slot for (symbol, trading day).
// The status string is accepted case-insensitively and normalized before
// validation. If a row already exists for the key it is updated in place:
// the unique index on (symbol, trading_day) means one logical job slot
// per partition, superseded rather than duplicated on retry.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - symbol: uppercase symbol.
//   - day: trading day.
//   - status: initial or superseding state, case-insensitive.
//   - payload: structured request metadata.
// Returns:
//   - string: job ID (existing ID when the slot was superseded).
//   - error: *domain.InvalidStatusError for a bad status, or the store error.
func (r *JobRepository) Upsert(ctx context.Context, symbol string, day time.Time, status string, payload domain.JobPayload) (string, error) {
	state, err := domain.ParseState(status)
	if err != nil {
		return "", err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	tradingDay := day.Format(domain.DayFormat)
	if payload.SchemaVersion == 0 {
		payload.SchemaVersion = domain.PayloadSchemaVersion
	}

	var jobID string
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.IngestionJob
		err := tx.First(&existing, "symbol = ? AND trading_day = ?", symbol, tradingDay).Error
		switch {
		case err == nil:
			jobID = existing.ID
			updates := map[string]interface{}{
				"state":                   state,
				"payload_schema_version":  payload.SchemaVersion,
				"payload_requested_start": payload.RequestedStart,
				"payload_requested_end":   payload.RequestedEnd,
				"payload_vendor":          payload.Vendor,
				"payload_feed":            payload.Feed,
				"error_message":           "",
				"started_at":              nil,
				"completed_at":            nil,
				"updated_at":              time.Now(),
			}
			return tx.Model(&domain.IngestionJob{}).Where("id = ?", existing.ID).Updates(updates).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			job := &domain.IngestionJob{
				ID:         uuid.New().String(),
				Symbol:     symbol,
				TradingDay: tradingDay,
				State:      state,
				Payload:    payload,
			}
			if err := tx.Create(job).Error; err != nil {
				return err
			}
			jobID = job.ID
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return "", fmt.Errorf("failed to upsert job for %s/%s: %w", symbol, tradingDay, err)
	}
	return jobID, nil
}

// Advance applies a guarded state transition to a job and stamps the
// lifecycle timestamps: started_at on start, completed_at on reaching a
// terminal state. An illegal transition returns
// *domain.IllegalTransitionError with no mutation.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: job to advance.
//   - event: requested transition.
//   - errMsg: error text recorded on failure transitions; ignored otherwise.
// Returns:
//   - *domain.IngestionJob: the job after the transition.
//   - error: non-nil if the job is missing, the transition is illegal, or
//     the write fails.
func (r *JobRepository) Advance(ctx context.Context, jobID string, event domain.TransitionEvent, errMsg string) (*domain.IngestionJob, error) {
	var job domain.IngestionJob
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&job, "id = ?", jobID).Error; err != nil {
			return err
		}

		next, err := job.State.Apply(event)
		if err != nil {
			return err
		}

		now := time.Now()
		job.State = next
		job.UpdatedAt = now
		if event == domain.EventStart {
			job.StartedAt = &now
		}
		if next.IsTerminal() {
			job.CompletedAt = &now
		}
		if event == domain.EventFail {
			job.ErrorMessage = errMsg
		}

		return tx.Save(&job).Error
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkForRetry records a retry decision made by the caller: the retry
// count is incremented and retry_after set. The store itself is
// retry-policy-agnostic.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: job to mark.
//   - after: earliest time the next attempt should run.
// Returns:
//   - error: non-nil if the write fails.
func (r *JobRepository) MarkForRetry(ctx context.Context, jobID string, after time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.IngestionJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"retry_after": after,
			"updated_at":  time.Now(),
		}).Error
}

// GetByID retrieves a job by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job ID.
// Returns:
//   - *domain.IngestionJob: job record if found.
//   - error: non-nil if lookup fails.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.IngestionJob, error) {
	var job domain.IngestionJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetBySymbolDay retrieves the job slot for one (symbol, trading day).
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - symbol: uppercase symbol.
//   - day: trading day.
// Returns:
//   - *domain.IngestionJob: job record if found.
//   - error: non-nil if lookup fails.
func (r *JobRepository) GetBySymbolDay(ctx context.Context, symbol string, day time.Time) (*domain.IngestionJob, error) {
	var job domain.IngestionJob
	err := r.db.WithContext(ctx).
		First(&job, "symbol = ? AND trading_day = ?", strings.ToUpper(symbol), day.Format(domain.DayFormat)).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ListByState retrieves jobs in the given state, oldest first. The status
// string is accepted case-insensitively.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: state to filter by, case-insensitive.
// Returns:
//   - []domain.IngestionJob: matching job records.
//   - error: *domain.InvalidStatusError for a bad status, or the query error.
func (r *JobRepository) ListByState(ctx context.Context, status string) ([]domain.IngestionJob, error) {
	state, err := domain.ParseState(status)
	if err != nil {
		return nil, err
	}
	var jobs []domain.IngestionJob
	if err := r.db.WithContext(ctx).
		Where("state = ?", state).
		Order("created_at ASC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// History retrieves job records newest first, optionally filtered by
// symbol. An empty symbol returns the full history.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - symbol: symbol filter; empty means all.
// Returns:
//   - []domain.IngestionJob: matching job records.
//   - error: non-nil if the query fails.
func (r *JobRepository) History(ctx context.Context, symbol string) ([]domain.IngestionJob, error) {
	query := r.db.WithContext(ctx)
	if symbol != "" {
		query = query.Where("symbol = ?", strings.ToUpper(symbol))
	}
	var jobs []domain.IngestionJob
	if err := query.Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// CountByState counts jobs in the given state.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - state: state to count.
// Returns:
//   - int64: number of matching records.
//   - error: non-nil if the query fails.
func (r *JobRepository) CountByState(ctx context.Context, state domain.ProcessingState) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.IngestionJob{}).Where("state = ?", state).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
