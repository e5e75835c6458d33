package repository

import (
	"context"
	"time"

	"CandleVault/internal/domain/models"
)

// QuoteProvider is the upstream market-data API surface consumed by the
// fetcher. Implementations carry a mutable access credential that the
// fetcher swaps after a refresh.
type QuoteProvider interface {
	History(ctx context.Context, symbol, resolution string, from, to time.Time) ([]models.Candle, error)
	SetAccessToken(token string)
}

// TokenRefresher exchanges the long-lived refresh credential for a new
// access token and persists it.
type TokenRefresher interface {
	Refresh(ctx context.Context) (string, error)
}

// CredentialStore is a key-value secret store with overwrite semantics.
type CredentialStore interface {
	GetSecret(ctx context.Context, name string) (string, error)
	PutSecret(ctx context.Context, name, value string) error
}

// PartitionStore reads and writes candle partitions keyed by symbol and
// calendar date. Ingestion is the sole writer; query code is read-only.
// A missing partition is not an error: reads yield zero candles.
type PartitionStore interface {
	Write(ctx context.Context, symbol string, date time.Time, candles []models.Candle) error
	Read(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)
	ListSymbols(ctx context.Context, date time.Time) ([]string, error)
}

// RawStore persists the raw ingestion run payload (candle batches plus
// report) as a run-scoped audit object.
type RawStore interface {
	WriteRun(ctx context.Context, run *models.IngestRun) (string, error)
}

// CandleSink mirrors normalized candles into an analytics backend for
// ad-hoc SQL. Optional; ingestion tolerates a nil sink.
type CandleSink interface {
	InsertCandles(ctx context.Context, symbol string, candles []models.Candle) error
}

// RunNotifier publishes the per-run report to interested consumers.
type RunNotifier interface {
	NotifyRun(ctx context.Context, report *models.FetchReport) error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordFetch(symbol, outcome string)
	RecordBreakerState(state string)
	RecordSuccessRate(pct float64)
	RecordStorageLatency(op string, seconds float64)
	RecordQuery(op, status string)
}
