package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CandleVault/internal/domain/models"
	"CandleVault/pkg/breaker"
	"CandleVault/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	token   string
	calls   int
	symbols []string
	history func(p *fakeProvider, symbol string) ([]models.Candle, error)
}

func (p *fakeProvider) History(_ context.Context, symbol, _ string, _, _ time.Time) ([]models.Candle, error) {
	p.calls++
	p.symbols = append(p.symbols, symbol)
	return p.history(p, symbol)
}

func (p *fakeProvider) SetAccessToken(token string) { p.token = token }

type fakeRefresher struct {
	token string
	err   error
	calls int
}

func (r *fakeRefresher) Refresh(context.Context) (string, error) {
	r.calls++
	return r.token, r.err
}

func testCandles() []models.Candle {
	return []models.Candle{
		{Timestamp: 1700000400, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
	}
}

func newTestFetcher(p *fakeProvider, r *fakeRefresher, brk *breaker.Breaker) *Fetcher {
	if brk == nil {
		brk = breaker.New(5, time.Minute)
	}
	policy := retry.Policy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	return NewFetcher(p, r, brk, policy, nil, nil, FetcherConfig{Resolution: "1"})
}

func TestFetchAllSuccess(t *testing.T) {
	provider := &fakeProvider{history: func(*fakeProvider, string) ([]models.Candle, error) {
		return testCandles(), nil
	}}
	fetcher := newTestFetcher(provider, &fakeRefresher{}, nil)

	run, err := fetcher.FetchAll(context.Background(), []string{"NSE:RELIANCE-EQ", "NSE:TCS-EQ"})
	require.NoError(t, err)

	assert.Equal(t, 100.0, run.Report.SuccessRatePercent)
	assert.Equal(t, 2, run.Report.SymbolsRequested)
	assert.Empty(t, run.Report.SymbolsFailed)
	assert.Equal(t, "CLOSED", run.Report.BreakerState)

	// batches key on the cleaned symbol but keep the provider form
	batch, ok := run.Data["RELIANCE"]
	require.True(t, ok)
	assert.Equal(t, "NSE:RELIANCE-EQ", batch.Symbol)
	assert.Len(t, batch.Candles, 1)
}

func TestFetchAllRetriesTransient(t *testing.T) {
	provider := &fakeProvider{history: func(p *fakeProvider, _ string) ([]models.Candle, error) {
		if p.calls < 3 {
			return nil, &models.TransientError{Err: errors.New("upstream 503")}
		}
		return testCandles(), nil
	}}
	fetcher := newTestFetcher(provider, &fakeRefresher{}, nil)

	run, err := fetcher.FetchAll(context.Background(), []string{"NSE:INFY-EQ"})
	require.NoError(t, err)

	assert.Equal(t, 3, provider.calls)
	assert.Equal(t, []string{"NSE:INFY-EQ"}, run.Report.SymbolsSucceeded)
}

func TestFetchAllNonTransientNotRetried(t *testing.T) {
	provider := &fakeProvider{history: func(*fakeProvider, string) ([]models.Candle, error) {
		return nil, errors.New("invalid symbol")
	}}
	fetcher := newTestFetcher(provider, &fakeRefresher{}, nil)

	run, err := fetcher.FetchAll(context.Background(), []string{"NSE:BOGUS-EQ"})
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	require.Len(t, run.Report.SymbolsFailed, 1)
	assert.Equal(t, "NSE:BOGUS-EQ", run.Report.SymbolsFailed[0].Symbol)
	assert.Contains(t, run.Report.SymbolsFailed[0].Reason, "invalid symbol")
	assert.Zero(t, run.Report.SuccessRatePercent)
}

func TestFetchAllRefreshesOnceOnAuthError(t *testing.T) {
	provider := &fakeProvider{history: func(p *fakeProvider, _ string) ([]models.Candle, error) {
		if p.token != "fresh" {
			return nil, &models.AuthError{Status: 401, Message: "token expired"}
		}
		return testCandles(), nil
	}}
	refresher := &fakeRefresher{token: "fresh"}
	fetcher := newTestFetcher(provider, refresher, nil)

	run, err := fetcher.FetchAll(context.Background(), []string{"NSE:RELIANCE-EQ", "NSE:TCS-EQ"})
	require.NoError(t, err)

	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, "fresh", provider.token)
	assert.Equal(t, 100.0, run.Report.SuccessRatePercent)
}

func TestFetchAllRefreshFailureAborts(t *testing.T) {
	provider := &fakeProvider{history: func(*fakeProvider, string) ([]models.Candle, error) {
		return nil, &models.AuthError{Status: 401, Message: "token expired"}
	}}
	refresher := &fakeRefresher{err: errors.New("connection refused")}
	fetcher := newTestFetcher(provider, refresher, nil)

	_, err := fetcher.FetchAll(context.Background(), []string{"NSE:RELIANCE-EQ"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token refresh failed")
}

func TestFetchAllSecondAuthFailureNotRefreshed(t *testing.T) {
	provider := &fakeProvider{history: func(*fakeProvider, string) ([]models.Candle, error) {
		return nil, &models.AuthError{Status: 401, Message: "token expired"}
	}}
	refresher := &fakeRefresher{token: "still-bad"}
	fetcher := newTestFetcher(provider, refresher, nil)

	run, err := fetcher.FetchAll(context.Background(), []string{"NSE:RELIANCE-EQ", "NSE:TCS-EQ"})
	require.NoError(t, err)

	assert.Equal(t, 1, refresher.calls)
	assert.Len(t, run.Report.SymbolsFailed, 2)
}

func TestFetchAllBreakerOpenFailsFast(t *testing.T) {
	provider := &fakeProvider{history: func(*fakeProvider, string) ([]models.Candle, error) {
		return nil, &models.TransientError{Err: errors.New("timeout")}
	}}
	fetcher := newTestFetcher(provider, &fakeRefresher{}, breaker.New(1, time.Minute))

	run, err := fetcher.FetchAll(context.Background(), []string{"NSE:A-EQ", "NSE:B-EQ", "NSE:C-EQ"})
	require.NoError(t, err)

	// one real attempt opens the breaker; everything after fails without
	// touching the provider
	assert.Equal(t, 1, provider.calls)
	assert.Len(t, run.Report.SymbolsFailed, 3)
	assert.Equal(t, "OPEN", run.Report.BreakerState)
}

func TestFetchAllCompletesBareSymbols(t *testing.T) {
	provider := &fakeProvider{history: func(*fakeProvider, string) ([]models.Candle, error) {
		return testCandles(), nil
	}}
	fetcher := newTestFetcher(provider, &fakeRefresher{}, nil)

	run, err := fetcher.FetchAll(context.Background(), []string{"RELIANCE", "NSE:TCS-EQ"})
	require.NoError(t, err)

	// bare symbols are completed with the exchange and series before the
	// provider sees them; already-qualified symbols pass through
	assert.Equal(t, []string{"NSE:RELIANCE-EQ", "NSE:TCS-EQ"}, provider.symbols)
	assert.Equal(t, []string{"NSE:RELIANCE-EQ", "NSE:TCS-EQ"}, run.Report.SymbolsSucceeded)
	_, ok := run.Data["RELIANCE"]
	assert.True(t, ok)
}

func TestFetchAllPermanentRejectionsDoNotOpenBreaker(t *testing.T) {
	provider := &fakeProvider{history: func(_ *fakeProvider, symbol string) ([]models.Candle, error) {
		if symbol != "NSE:GOOD-EQ" {
			return nil, errors.New("invalid symbol")
		}
		return testCandles(), nil
	}}
	brk := breaker.New(3, time.Minute, breaker.WithClassifier(func(err error) bool {
		var authErr *models.AuthError
		return models.IsTransient(err) || errors.As(err, &authErr)
	}))
	fetcher := newTestFetcher(provider, &fakeRefresher{}, brk)

	run, err := fetcher.FetchAll(context.Background(),
		[]string{"NSE:BAD1-EQ", "NSE:BAD2-EQ", "NSE:BAD3-EQ", "NSE:GOOD-EQ"})
	require.NoError(t, err)

	// three rejected symbols must not fail-fast the healthy one
	assert.Equal(t, []string{"NSE:GOOD-EQ"}, run.Report.SymbolsSucceeded)
	assert.Equal(t, "CLOSED", run.Report.BreakerState)
	assert.Contains(t, provider.symbols, "NSE:GOOD-EQ")
}

func TestFetchAllCanceledContext(t *testing.T) {
	provider := &fakeProvider{history: func(*fakeProvider, string) ([]models.Candle, error) {
		return nil, &models.TransientError{Err: errors.New("timeout")}
	}}
	fetcher := newTestFetcher(provider, &fakeRefresher{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.FetchAll(ctx, []string{"NSE:RELIANCE-EQ"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchAllPartialSuccessRate(t *testing.T) {
	provider := &fakeProvider{history: func(_ *fakeProvider, symbol string) ([]models.Candle, error) {
		if symbol == "NSE:TCS-EQ" {
			return nil, errors.New("bad symbol")
		}
		return testCandles(), nil
	}}
	fetcher := newTestFetcher(provider, &fakeRefresher{}, nil)

	run, err := fetcher.FetchAll(context.Background(), []string{"NSE:RELIANCE-EQ", "NSE:TCS-EQ", "NSE:INFY-EQ"})
	require.NoError(t, err)

	assert.Equal(t, 66.67, run.Report.SuccessRatePercent)
	assert.Len(t, run.Report.SymbolsSucceeded, 2)
	assert.Len(t, run.Report.SymbolsFailed, 1)
}
