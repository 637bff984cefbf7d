package domain

// Domain events published once per job outcome. Field names and presence
// are the wire contract with the downstream validation and aggregation
// contexts; error_message is only populated on failure.

// IngestionJobCompleted reports the final outcome of one ingestion job.
type IngestionJobCompleted struct {
	JobID         string `json:"job_id"`
	Symbol        string `json:"symbol"`
	TradingDate   string `json:"trading_date"`
	BarsProcessed int64  `json:"bars_processed"`
	Success       bool   `json:"success"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// BackfillJobCompleted reports a successfully backfilled day, with the
// wall-clock duration of the fetch+verify cycle in seconds.
type BackfillJobCompleted struct {
	Symbol   string  `json:"symbol"`
	Day      string  `json:"day"`
	Duration float64 `json:"duration"`
}

// BackfillJobFailed reports a day that could not be backfilled.
type BackfillJobFailed struct {
	Symbol string `json:"symbol"`
	Day    string `json:"day"`
	Error  string `json:"error"`
}
