package domain

import (
	"encoding/json"
	"testing"
)

// Downstream consumers match on these field names; they are a wire
// contract, not an implementation detail.
func TestEventWireFieldNames(t *testing.T) {
	tests := []struct {
		name  string
		event interface{}
		want  []string
		omit  []string
	}{
		{
			name: "ingestion job completed",
			event: IngestionJobCompleted{
				JobID: "j1", Symbol: "AAPL", TradingDate: "2024-06-20",
				BarsProcessed: 390, Success: true,
			},
			want: []string{"job_id", "symbol", "trading_date", "bars_processed", "success"},
			omit: []string{"error_message"},
		},
		{
			name:  "backfill job completed",
			event: BackfillJobCompleted{Symbol: "AAPL", Day: "2024-06-20", Duration: 1.5},
			want:  []string{"symbol", "day", "duration"},
		},
		{
			name:  "backfill job failed",
			event: BackfillJobFailed{Symbol: "AAPL", Day: "2024-06-20", Error: "vendor timeout"},
			want:  []string{"symbol", "day", "error"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.event)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			var fields map[string]interface{}
			if err := json.Unmarshal(data, &fields); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			for _, key := range tc.want {
				if _, ok := fields[key]; !ok {
					t.Errorf("missing wire field %q in %s", key, data)
				}
			}
			for _, key := range tc.omit {
				if _, ok := fields[key]; ok {
					t.Errorf("field %q must be omitted when empty in %s", key, data)
				}
			}
		})
	}
}
