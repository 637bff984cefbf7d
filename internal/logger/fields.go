package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldJobID is the ingestion job ID (UUID)
	FieldJobID = "job_id"

	// FieldSymbol is the uppercase ticker symbol being processed
	FieldSymbol = "symbol"

	// FieldTradingDay is the trading day of the partition being processed
	FieldTradingDay = "trading_day"

	// FieldVendor is the market data vendor name
	FieldVendor = "vendor"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
