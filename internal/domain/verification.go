package domain

import "time"

// VerificationResult is the immutable per-symbol outcome of one
// verification pass. Actual bounds are nil when no data was found.
type VerificationResult struct {
	Symbol             string     `json:"symbol"`
	RequestedStart     time.Time  `json:"requested_start"`
	RequestedEnd       time.Time  `json:"requested_end"`
	ActualStart        *time.Time `json:"actual_start,omitempty"`
	ActualEnd          *time.Time `json:"actual_end,omitempty"`
	TotalBars          int64      `json:"total_bars"`
	Passed             bool       `json:"passed"`
	ErrorMessage       string     `json:"error_message,omitempty"`
	SuggestedProviders []string   `json:"suggested_providers,omitempty"`
}

// VerificationSummary aggregates the results of one verification call.
// Produced once, never mutated afterward.
type VerificationSummary struct {
	Results       []VerificationResult `json:"results"`
	AllPassed     bool                 `json:"all_passed"`
	FailedSymbols []string             `json:"failed_symbols,omitempty"`
	TotalBars     int64                `json:"total_bars"`
}
