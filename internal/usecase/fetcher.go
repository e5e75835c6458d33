package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CandleVault/internal/domain/models"
	drepo "CandleVault/internal/domain/repository"
	"CandleVault/pkg/breaker"
	applogger "CandleVault/pkg/logger"
	"CandleVault/pkg/retry"
)

// FetcherConfig tunes batching and the candle window.
type FetcherConfig struct {
	Resolution string
	BatchSize  int
	BatchDelay time.Duration
	// LookbackDays widens the fetch window backwards from today.
	// Zero fetches the current day only.
	LookbackDays int
	// Exchange and Series complete bare symbols into the provider request
	// form, e.g. "RELIANCE" -> "NSE:RELIANCE-EQ".
	Exchange string
	Series   string
}

// Fetcher pulls candles for a symbol universe from the upstream provider.
// One breaker guards the provider across the whole run; an auth failure
// triggers at most one token refresh per run.
type Fetcher struct {
	provider  drepo.QuoteProvider
	refresher drepo.TokenRefresher
	breaker   *breaker.Breaker
	policy    retry.Policy
	metrics   drepo.Metrics
	logger    *applogger.Logger
	cfg       FetcherConfig
	now       func() time.Time
}

// NewFetcher creates a fetcher.
func NewFetcher(
	provider drepo.QuoteProvider,
	refresher drepo.TokenRefresher,
	brk *breaker.Breaker,
	policy retry.Policy,
	metrics drepo.Metrics,
	log *applogger.Logger,
	cfg FetcherConfig,
) *Fetcher {
	if log == nil {
		log = applogger.Nop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.Resolution == "" {
		cfg.Resolution = string(drepo.DefaultResolution())
	}
	if cfg.Exchange == "" {
		cfg.Exchange = "NSE"
	}
	if cfg.Series == "" {
		cfg.Series = "EQ"
	}
	return &Fetcher{
		provider:  provider,
		refresher: refresher,
		breaker:   brk,
		policy:    policy,
		metrics:   metrics,
		logger:    log,
		cfg:       cfg,
		now:       time.Now,
	}
}

// FetchAll runs one ingestion fetch across all symbols and reports the
// outcome. Partial failure is normal: failed symbols land in the report,
// not in the returned error. The error is non-nil only when the whole run
// cannot proceed, e.g. a failed token refresh.
func (f *Fetcher) FetchAll(ctx context.Context, symbols []string) (*models.IngestRun, error) {
	at := f.now().UTC()
	from := at.AddDate(0, 0, -f.cfg.LookbackDays)

	data := make(map[string]models.SymbolBatch, len(symbols))
	succeeded := make([]string, 0, len(symbols))
	failed := make([]models.SymbolFailure, 0)
	refreshed := false

	for start := 0; start < len(symbols); start += f.cfg.BatchSize {
		end := start + f.cfg.BatchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := symbols[start:end]

		f.logger.Info("fetching batch",
			applogger.Int("from", start+1),
			applogger.Int("to", end),
			applogger.Int("total", len(symbols)),
		)

		for _, raw := range batch {
			symbol := models.ProviderSymbol(raw, f.cfg.Exchange, f.cfg.Series)
			candles, err := f.fetchSymbol(ctx, symbol, from, at)

			var authErr *models.AuthError
			if errors.As(err, &authErr) && !refreshed {
				refreshed = true
				token, rerr := f.refresher.Refresh(ctx)
				if rerr != nil {
					return nil, fmt.Errorf("token refresh failed: %w", rerr)
				}
				f.provider.SetAccessToken(token)
				candles, err = f.fetchSymbol(ctx, symbol, from, at)
			}

			f.reportBreakerState()

			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				f.recordFetch(symbol, "failure")
				failed = append(failed, models.SymbolFailure{Symbol: symbol, Reason: err.Error()})
				f.logger.Warn("symbol fetch failed",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
				continue
			}

			f.recordFetch(symbol, "success")
			clean := models.CleanSymbol(symbol)
			succeeded = append(succeeded, symbol)
			data[clean] = models.SymbolBatch{
				Symbol:     symbol,
				Resolution: f.cfg.Resolution,
				Candles:    models.NormalizeCandles(candles),
				FetchedAt:  f.now().UTC(),
			}
		}

		if end < len(symbols) && f.cfg.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.cfg.BatchDelay):
			}
		}
	}

	report := models.NewFetchReport(len(symbols), succeeded, failed,
		f.cfg.Resolution, f.breaker.State().String(), at)
	if f.metrics != nil {
		f.metrics.RecordSuccessRate(report.SuccessRatePercent)
	}

	return &models.IngestRun{Data: data, Report: report}, nil
}

// fetchSymbol retries transient failures with backoff; the breaker wraps
// every attempt so a run against a dead upstream fails fast.
func (f *Fetcher) fetchSymbol(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	var candles []models.Candle

	err := f.policy.Do(ctx, func() error {
		err := f.breaker.Execute(func() error {
			var herr error
			candles, herr = f.provider.History(ctx, symbol, f.cfg.Resolution, from, to)
			return herr
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, breaker.ErrOpen) || !models.IsTransient(err) {
			return retry.Permanent(err)
		}
		return err
	})

	return candles, err
}

func (f *Fetcher) recordFetch(symbol, outcome string) {
	if f.metrics != nil {
		f.metrics.RecordFetch(models.CleanSymbol(symbol), outcome)
	}
}

func (f *Fetcher) reportBreakerState() {
	if f.metrics != nil {
		f.metrics.RecordBreakerState(f.breaker.State().String())
	}
}
