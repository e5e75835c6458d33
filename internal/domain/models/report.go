package models

import (
	"math"
	"time"
)

// SymbolFailure records why one symbol's fetch failed.
type SymbolFailure struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// FetchReport is the per-run ingestion audit record, written alongside the
// raw candle payload. Immutable once built.
type FetchReport struct {
	SymbolsRequested   int             `json:"total_symbols_requested"`
	SymbolsSucceeded   []string        `json:"successful_symbols"`
	SymbolsFailed      []SymbolFailure `json:"failed_symbols"`
	SuccessRatePercent float64         `json:"success_rate_percent"`
	Resolution         string          `json:"resolution"`
	BreakerState       string          `json:"circuit_breaker_state"`
	Timestamp          time.Time       `json:"ingestion_timestamp"`
}

// NewFetchReport computes the success rate (two decimals) and stamps the run.
func NewFetchReport(requested int, succeeded []string, failed []SymbolFailure, resolution, breakerState string, ts time.Time) FetchReport {
	rate := 0.0
	if requested > 0 {
		rate = float64(len(succeeded)) / float64(requested) * 100
	}
	return FetchReport{
		SymbolsRequested:   requested,
		SymbolsSucceeded:   succeeded,
		SymbolsFailed:      failed,
		SuccessRatePercent: math.Round(rate*100) / 100,
		Resolution:         resolution,
		BreakerState:       breakerState,
		Timestamp:          ts.UTC(),
	}
}

// SymbolBatch is one symbol's successfully fetched candles.
type SymbolBatch struct {
	Symbol     string    `json:"symbol"`
	Resolution string    `json:"resolution"`
	Candles    []Candle  `json:"candles"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// IngestRun is the raw-zone payload of one ingestion run: every fetched
// batch plus the report.
type IngestRun struct {
	Data   map[string]SymbolBatch `json:"data"`
	Report FetchReport            `json:"metadata"`
}
