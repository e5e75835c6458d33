package usecase

import (
	"sort"

	"CandleVault/internal/domain/models"
)

// Resample aggregates minute-resolution candles into epoch-aligned buckets
// of intervalSec seconds. Within a bucket the open is the earliest candle's
// open, the close the latest candle's close, high/low the extrema, and
// volume the sum. Buckets with no input produce no output.
func Resample(candles []models.Candle, intervalSec int64) ([]models.Candle, error) {
	if intervalSec <= 0 {
		return nil, &models.ValidationError{Field: "interval", Reason: "must be positive"}
	}
	if len(candles) == 0 {
		return nil, nil
	}

	in := models.NormalizeCandles(candles)

	buckets := make(map[int64]*models.Candle)
	order := make([]int64, 0)

	for _, c := range in {
		bucket := c.Timestamp - (c.Timestamp % intervalSec)
		agg, ok := buckets[bucket]
		if !ok {
			cc := c
			cc.Timestamp = bucket
			buckets[bucket] = &cc
			order = append(order, bucket)
			continue
		}
		// Input is time-ordered, so the stored open stays and close tracks
		// the latest candle.
		agg.Close = c.Close
		if c.High > agg.High {
			agg.High = c.High
		}
		if c.Low < agg.Low {
			agg.Low = c.Low
		}
		agg.Volume += c.Volume
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]models.Candle, 0, len(order))
	for _, bucket := range order {
		out = append(out, *buckets[bucket])
	}
	return out, nil
}
