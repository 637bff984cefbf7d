package domain

import "time"

// DayFormat is the canonical encoding for trading days.
const DayFormat = "2006-01-02"

// PayloadSchemaVersion is the current JobPayload schema version. Bump when
// adding fields downstream consumers must distinguish.
const PayloadSchemaVersion = 1

// JobPayload is the structured request metadata carried by an ingestion
// job. It is a versioned record, not a free-form map, so consumers get
// compile-time shape guarantees.
type JobPayload struct {
	SchemaVersion  int    `gorm:"default:1" json:"schema_version"`
	RequestedStart string `json:"requested_start"`
	RequestedEnd   string `json:"requested_end"`
	Vendor         string `json:"vendor"`
	Feed           string `json:"feed,omitempty"`
}

// IngestionJob represents one durable fetch attempt for a single
// (symbol, trading day) partition. The composite unique index on
// (symbol, trading_day) is the one-job-slot-per-partition invariant:
// a retried day supersedes the existing row, it never duplicates it.
type IngestionJob struct {
	ID           string          `gorm:"type:text;primaryKey" json:"id"`
	Symbol       string          `gorm:"type:text;not null;uniqueIndex:idx_jobs_symbol_day,priority:1" json:"symbol"`
	TradingDay   string          `gorm:"type:text;not null;uniqueIndex:idx_jobs_symbol_day,priority:2" json:"trading_day"`
	State        ProcessingState `gorm:"type:text;not null;index;default:pending" json:"state"`
	Payload      JobPayload      `gorm:"embedded;embeddedPrefix:payload_" json:"payload"`
	RetryCount   int             `gorm:"default:0" json:"retry_count"`
	RetryAfter   *time.Time      `json:"retry_after,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName returns the database table name for IngestionJob.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (IngestionJob) TableName() string {
	return "ingestion_jobs"
}

// Day returns the trading day as a time.Time at UTC midnight. Rows written
// through the repository always hold a valid DayFormat value; a zero time
// is returned for anything else.
func (j *IngestionJob) Day() time.Time {
	t, err := time.Parse(DayFormat, j.TradingDay)
	if err != nil {
		return time.Time{}
	}
	return t
}
