package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CandleVault/internal/domain/models"
	applogger "CandleVault/pkg/logger"
)

// ClickHouseCandleSink implements CandleSink. The analytics mirror is a
// flat candles table for ad-hoc SQL; object storage stays the source of
// truth. ReplacingMergeTree absorbs re-ingested duplicates.
type ClickHouseCandleSink struct {
	db            *sql.DB
	table         string
	logger        *applogger.Logger
	insertTimeout time.Duration
}

// SinkOption configures ClickHouseCandleSink.
type SinkOption func(*ClickHouseCandleSink)

// WithInsertTimeout bounds each insert chunk.
func WithInsertTimeout(d time.Duration) SinkOption {
	return func(s *ClickHouseCandleSink) {
		s.insertTimeout = d
	}
}

// NewClickHouseCandleSink creates an analytics mirror sink.
func NewClickHouseCandleSink(db *sql.DB, table string, log *applogger.Logger, opts ...SinkOption) *ClickHouseCandleSink {
	if log == nil {
		log = applogger.Nop()
	}
	s := &ClickHouseCandleSink{db: db, table: table, logger: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init ensures the candles table exists (idempotent).
func (s *ClickHouseCandleSink) Init(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			symbol LowCardinality(String),
			ts     DateTime('UTC'),
			open   Float64,
			high   Float64,
			low    Float64,
			close  Float64,
			volume Int64
		) ENGINE = ReplacingMergeTree
		PARTITION BY toYYYYMM(ts)
		ORDER BY (symbol, ts)
	`, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("init candles table: %w", err)
	}
	return nil
}

// InsertCandles mirrors one symbol's candles in chunked multi-row inserts.
func (s *ClickHouseCandleSink) InsertCandles(ctx context.Context, symbol string, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	const chunkSize = 2000
	for start := 0; start < len(candles); start += chunkSize {
		end := start + chunkSize
		if end > len(candles) {
			end = len(candles)
		}
		if err := s.insertChunk(ctx, symbol, candles[start:end]); err != nil {
			return err
		}
	}

	s.logger.Debug("candles mirrored",
		applogger.String("symbol", symbol),
		applogger.Int("count", len(candles)),
	)
	return nil
}

func (s *ClickHouseCandleSink) insertChunk(ctx context.Context, symbol string, candles []models.Candle) error {
	if s.insertTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.insertTimeout)
		defer cancel()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("INSERT INTO %s (symbol, ts, open, high, low, close, volume) VALUES ", s.table))

	args := make([]interface{}, 0, len(candles)*7)
	for i, c := range candles {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, symbol, time.Unix(c.Timestamp, 0).UTC(), c.Open, c.High, c.Low, c.Close, c.Volume)
	}

	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert candles %s: %w", symbol, err)
	}
	return nil
}
