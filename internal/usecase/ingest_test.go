package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CandleVault/internal/domain/models"
	"CandleVault/internal/repository"
	"CandleVault/pkg/objstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRawStore struct {
	runs []*models.IngestRun
	err  error
}

func (s *fakeRawStore) WriteRun(_ context.Context, run *models.IngestRun) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.runs = append(s.runs, run)
	return "raw/key.json", nil
}

type fakeSink struct {
	inserted map[string]int
	err      error
}

func (s *fakeSink) InsertCandles(_ context.Context, symbol string, candles []models.Candle) error {
	if s.err != nil {
		return s.err
	}
	if s.inserted == nil {
		s.inserted = map[string]int{}
	}
	s.inserted[symbol] += len(candles)
	return nil
}

type fakeNotifier struct {
	reports []*models.FetchReport
	err     error
}

func (n *fakeNotifier) NotifyRun(_ context.Context, report *models.FetchReport) error {
	if n.err != nil {
		return n.err
	}
	n.reports = append(n.reports, report)
	return nil
}

func ingestFixture(history func(p *fakeProvider, symbol string) ([]models.Candle, error)) (*IngestRunner, *fakeRawStore, *repository.ObjectPartitionStore, *fakeSink, *fakeNotifier) {
	provider := &fakeProvider{history: history}
	fetcher := newTestFetcher(provider, &fakeRefresher{}, nil)
	raw := &fakeRawStore{}
	partitions := repository.NewObjectPartitionStore(objstore.NewMemoryStore(), "analytics/csv", nil)
	sink := &fakeSink{}
	notifier := &fakeNotifier{}
	return NewIngestRunner(fetcher, raw, partitions, sink, notifier, nil), raw, partitions, sink, notifier
}

func TestIngestRunEndToEnd(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	runner, raw, partitions, sink, notifier := ingestFixture(func(*fakeProvider, string) ([]models.Candle, error) {
		return []models.Candle{
			{Timestamp: day.Unix(), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		}, nil
	})

	report, err := runner.Run(context.Background(), []string{"NSE:RELIANCE-EQ"})
	require.NoError(t, err)

	assert.Equal(t, 100.0, report.SuccessRatePercent)
	require.Len(t, raw.runs, 1)

	candles, err := partitions.Read(context.Background(), "RELIANCE", day, day)
	require.NoError(t, err)
	assert.Len(t, candles, 1)

	assert.Equal(t, 1, sink.inserted["RELIANCE"])
	require.Len(t, notifier.reports, 1)
	assert.Equal(t, report, notifier.reports[0])
}

func TestIngestRunSplitsPartitionsByDay(t *testing.T) {
	day1 := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	runner, _, partitions, _, _ := ingestFixture(func(*fakeProvider, string) ([]models.Candle, error) {
		return []models.Candle{
			{Timestamp: day1.Unix(), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
			{Timestamp: day2.Unix(), Open: 10.5, High: 12, Low: 10, Close: 11, Volume: 150},
		}, nil
	})

	_, err := runner.Run(context.Background(), []string{"NSE:TCS-EQ"})
	require.NoError(t, err)

	first, err := partitions.Read(context.Background(), "TCS", day1, day1)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := partitions.Read(context.Background(), "TCS", day2, day2)
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestIngestRunRawArchiveFailureAborts(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	runner, raw, partitions, _, notifier := ingestFixture(func(*fakeProvider, string) ([]models.Candle, error) {
		return []models.Candle{
			{Timestamp: day.Unix(), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		}, nil
	})
	raw.err = errors.New("bucket gone")

	_, err := runner.Run(context.Background(), []string{"NSE:RELIANCE-EQ"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw archive")

	candles, rerr := partitions.Read(context.Background(), "RELIANCE", day, day)
	require.NoError(t, rerr)
	assert.Empty(t, candles)
	assert.Empty(t, notifier.reports)
}

func TestIngestRunSinkFailureNotFatal(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	runner, _, _, sink, notifier := ingestFixture(func(*fakeProvider, string) ([]models.Candle, error) {
		return []models.Candle{
			{Timestamp: day.Unix(), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		}, nil
	})
	sink.err = errors.New("clickhouse down")
	notifier.err = errors.New("broker down")

	report, err := runner.Run(context.Background(), []string{"NSE:RELIANCE-EQ"})
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.SuccessRatePercent)
}

func TestIngestRunTolerantOfNilSinkAndNotifier(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	provider := &fakeProvider{history: func(*fakeProvider, string) ([]models.Candle, error) {
		return []models.Candle{
			{Timestamp: day.Unix(), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		}, nil
	}}
	fetcher := newTestFetcher(provider, &fakeRefresher{}, nil)
	partitions := repository.NewObjectPartitionStore(objstore.NewMemoryStore(), "analytics/csv", nil)
	runner := NewIngestRunner(fetcher, &fakeRawStore{}, partitions, nil, nil, nil)

	_, err := runner.Run(context.Background(), []string{"NSE:RELIANCE-EQ"})
	require.NoError(t, err)
}
