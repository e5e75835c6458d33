package usecase

import (
	"testing"

	"CandleVault/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minuteCandles(start int64, n int) []models.Candle {
	out := make([]models.Candle, 0, n)
	for i := 0; i < n; i++ {
		price := float64(100 + i)
		out = append(out, models.Candle{
			Timestamp: start + int64(i)*60,
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price + 0.5,
			Volume:    10,
		})
	}
	return out
}

func TestResampleAggregates(t *testing.T) {
	// 10 one-minute candles into 5-minute buckets
	in := minuteCandles(1700000400, 10) // bucket-aligned start
	out, err := Resample(in, 300)
	require.NoError(t, err)
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, int64(1700000400), first.Timestamp)
	assert.Equal(t, 100.0, first.Open)
	assert.Equal(t, 104.5, first.Close)
	assert.Equal(t, 105.0, first.High)
	assert.Equal(t, 99.0, first.Low)
	assert.Equal(t, int64(50), first.Volume)

	second := out[1]
	assert.Equal(t, int64(1700000700), second.Timestamp)
	assert.Equal(t, 105.0, second.Open)
	assert.Equal(t, 109.5, second.Close)
}

func TestResampleBucketAlignment(t *testing.T) {
	// candle mid-bucket lands in the floor-aligned bucket
	in := []models.Candle{{Timestamp: 1700000520, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 7}}
	out, err := Resample(in, 300)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1700000400), out[0].Timestamp)
}

func TestResampleVolumeConserved(t *testing.T) {
	in := minuteCandles(1700000400, 23)
	var wantVolume int64
	for _, c := range in {
		wantVolume += c.Volume
	}

	out, err := Resample(in, 900)
	require.NoError(t, err)

	var gotVolume int64
	for _, c := range out {
		gotVolume += c.Volume
	}
	assert.Equal(t, wantVolume, gotVolume)
}

func TestResampleOutputSortedUnique(t *testing.T) {
	// unsorted input with a duplicate
	in := []models.Candle{
		{Timestamp: 1700000700, Open: 2, High: 3, Low: 1, Close: 2, Volume: 1},
		{Timestamp: 1700000400, Open: 1, High: 2, Low: 0.5, Close: 1, Volume: 1},
		{Timestamp: 1700000400, Open: 1.1, High: 2, Low: 0.5, Close: 1.1, Volume: 2},
	}
	out, err := Resample(in, 300)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Less(t, out[0].Timestamp, out[1].Timestamp)
	// duplicate timestamp resolved before bucketing: last occurrence wins
	assert.Equal(t, int64(2), out[0].Volume)
}

func TestResampleIdentityInterval(t *testing.T) {
	in := minuteCandles(1700000400, 5)
	out, err := Resample(in, 60)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestResampleEmpty(t *testing.T) {
	out, err := Resample(nil, 300)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestResampleInvalidInterval(t *testing.T) {
	for _, interval := range []int64{0, -60} {
		_, err := Resample(minuteCandles(0, 2), interval)
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "interval", verr.Field)
	}
}
