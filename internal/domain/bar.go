package domain

// Bar is one OHLCV market bar as written into a day partition. The parquet
// tags define the on-disk column layout that the verifier reads back.
type Bar struct {
	Timestamp int64   `parquet:"timestamp,timestamp" json:"timestamp"`
	Symbol    string  `parquet:"symbol,dict" json:"symbol"`
	Open      float64 `parquet:"open" json:"open"`
	High      float64 `parquet:"high" json:"high"`
	Low       float64 `parquet:"low" json:"low"`
	Close     float64 `parquet:"close" json:"close"`
	Volume    int64   `parquet:"volume" json:"volume"`
}

// GapWindow is a requested ingestion range for one symbol. The gap
// detector resolves it into the sorted set of missing trading days, each
// the unit of work for one job.
type GapWindow struct {
	Symbol string `json:"symbol"`
	Start  string `json:"start"`
	End    string `json:"end"`
}
