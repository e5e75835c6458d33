package models

import (
	"fmt"
	"sort"
	"time"
)

// Candle is one OHLCV observation for a fixed time bucket.
// Immutable once constructed; NewCandle enforces the price/volume invariants.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}

// NewCandle validates and builds a candle.
func NewCandle(ts int64, open, high, low, close float64, volume int64) (Candle, error) {
	if volume < 0 {
		return Candle{}, &ValidationError{Field: "volume", Reason: fmt.Sprintf("must be >= 0, got %d", volume)}
	}
	if high < open || high < close {
		return Candle{}, &ValidationError{Field: "high", Reason: fmt.Sprintf("%.4f below open/close", high)}
	}
	if low > open || low > close {
		return Candle{}, &ValidationError{Field: "low", Reason: fmt.Sprintf("%.4f above open/close", low)}
	}
	return Candle{Timestamp: ts, Open: open, High: high, Low: low, Close: close, Volume: volume}, nil
}

// CandleFromRow parses the provider's positional row
// [timestamp, open, high, low, close, volume].
func CandleFromRow(row []float64) (Candle, error) {
	if len(row) < 6 {
		return Candle{}, &ValidationError{Field: "candles", Reason: fmt.Sprintf("row has %d fields, want 6", len(row))}
	}
	return NewCandle(int64(row[0]), row[1], row[2], row[3], row[4], int64(row[5]))
}

// Time returns the candle timestamp as UTC time.
func (c Candle) Time() time.Time {
	return time.Unix(c.Timestamp, 0).UTC()
}

// Day returns the UTC calendar date the candle belongs to.
func (c Candle) Day() time.Time {
	t := c.Time()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeCandles sorts candles ascending by timestamp and drops duplicate
// timestamps, keeping the last occurrence (last write wins within a run).
func NormalizeCandles(candles []Candle) []Candle {
	if len(candles) == 0 {
		return nil
	}
	byTS := make(map[int64]Candle, len(candles))
	for _, c := range candles {
		byTS[c.Timestamp] = c
	}
	out := make([]Candle, 0, len(byTS))
	for _, c := range byTS {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}
