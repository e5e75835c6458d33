package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"CandleVault/internal/domain/models"
	drepo "CandleVault/internal/domain/repository"
	applogger "CandleVault/pkg/logger"
	"CandleVault/pkg/util"
)

// QueryConfig bounds query cost.
type QueryConfig struct {
	MaxRangeDays int
	MoversLimit  int
}

// QueryEngine answers analytics queries over stored partitions. It never
// writes; daily stats are recomputed from candles on every call.
type QueryEngine struct {
	store   drepo.PartitionStore
	metrics drepo.Metrics
	logger  *applogger.Logger
	cfg     QueryConfig
}

// NewQueryEngine creates a query engine.
func NewQueryEngine(store drepo.PartitionStore, metrics drepo.Metrics, log *applogger.Logger, cfg QueryConfig) *QueryEngine {
	if log == nil {
		log = applogger.Nop()
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 31
	}
	if cfg.MoversLimit <= 0 {
		cfg.MoversLimit = 10
	}
	return &QueryEngine{store: store, metrics: metrics, logger: log, cfg: cfg}
}

// SymbolStats computes one symbol's statistics for one day.
func (q *QueryEngine) SymbolStats(ctx context.Context, symbol string, date time.Time) (*models.SymbolStatsResult, error) {
	candles, err := q.store.Read(ctx, symbol, date, date)
	if err != nil {
		q.recordQuery("symbol_stats", "error")
		return nil, err
	}
	if len(candles) == 0 {
		q.recordQuery("symbol_stats", "not_found")
		return nil, models.ErrNoData
	}

	q.recordQuery("symbol_stats", "ok")
	return &models.SymbolStatsResult{
		Symbol: symbol,
		Date:   util.FormatDate(date),
		Stats:  models.ComputeDayStats(candles),
	}, nil
}

// DailySummary computes stats for every symbol with data on the given day,
// sorted by percent change descending.
func (q *QueryEngine) DailySummary(ctx context.Context, date time.Time) (*models.DailySummaryResult, error) {
	symbols, err := q.store.ListSymbols(ctx, date)
	if err != nil {
		q.recordQuery("daily_summary", "error")
		return nil, err
	}

	entries := make([]models.SummaryEntry, 0, len(symbols))
	for _, symbol := range symbols {
		candles, err := q.store.Read(ctx, symbol, date, date)
		if err != nil {
			q.recordQuery("daily_summary", "error")
			return nil, err
		}
		if len(candles) == 0 {
			continue
		}
		entries = append(entries, models.SummaryEntry{
			Symbol:   symbol,
			DayStats: models.ComputeDayStats(candles),
		})
	}

	if len(entries) == 0 {
		q.recordQuery("daily_summary", "not_found")
		return nil, models.ErrNoData
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PriceChangePct > entries[j].PriceChangePct
	})

	q.recordQuery("daily_summary", "ok")
	return &models.DailySummaryResult{
		Date:         util.FormatDate(date),
		Summary:      entries,
		TotalSymbols: len(entries),
	}, nil
}

// DateRange computes per-day stats for one symbol across a capped range of
// days. Days without data are skipped.
func (q *QueryEngine) DateRange(ctx context.Context, symbol string, start, end time.Time) (*models.DateRangeResult, error) {
	if end.Before(start) {
		q.recordQuery("date_range", "invalid")
		return nil, &models.ValidationError{Field: "end", Reason: "precedes start"}
	}
	if days := util.DaysBetween(start, end); days > q.cfg.MaxRangeDays {
		q.recordQuery("date_range", "invalid")
		return nil, &models.ValidationError{
			Field:  "range",
			Reason: fmt.Sprintf("%d days exceeds the %d day maximum", days, q.cfg.MaxRangeDays),
		}
	}

	data := make([]models.DayEntry, 0)
	for _, day := range util.DaysInRange(start, end) {
		candles, err := q.store.Read(ctx, symbol, day, day)
		if err != nil {
			q.recordQuery("date_range", "error")
			return nil, err
		}
		if len(candles) == 0 {
			continue
		}
		data = append(data, models.DayEntry{
			Date:     util.FormatDate(day),
			DayStats: models.ComputeDayStats(candles),
		})
	}

	if len(data) == 0 {
		q.recordQuery("date_range", "not_found")
		return nil, models.ErrNoData
	}

	q.recordQuery("date_range", "ok")
	return &models.DateRangeResult{
		Symbol:  symbol,
		Start:   util.FormatDate(start),
		End:     util.FormatDate(end),
		Data:    data,
		NumDays: len(data),
	}, nil
}

// TopMovers ranks the day's gainers and losers by percent change. Both
// rankings use stable ordering so symbols tied on percent change keep
// their summary order.
func (q *QueryEngine) TopMovers(ctx context.Context, date time.Time, limit int) (*models.TopMoversResult, error) {
	if limit < 0 {
		q.recordQuery("top_movers", "invalid")
		return nil, &models.ValidationError{Field: "limit", Reason: "must not be negative"}
	}
	if limit == 0 {
		limit = q.cfg.MoversLimit
	}

	summary, err := q.DailySummary(ctx, date)
	if err != nil {
		return nil, err
	}

	// Summary arrives sorted descending: gainers are a prefix.
	gainers := make([]models.Mover, 0, limit)
	for _, e := range summary.Summary {
		if len(gainers) == limit {
			break
		}
		gainers = append(gainers, toMover(e))
	}

	ascending := make([]models.SummaryEntry, len(summary.Summary))
	copy(ascending, summary.Summary)
	sort.SliceStable(ascending, func(i, j int) bool {
		return ascending[i].PriceChangePct < ascending[j].PriceChangePct
	})

	losers := make([]models.Mover, 0, limit)
	for _, e := range ascending {
		if len(losers) == limit {
			break
		}
		losers = append(losers, toMover(e))
	}

	q.recordQuery("top_movers", "ok")
	return &models.TopMoversResult{
		Date:    summary.Date,
		Gainers: gainers,
		Losers:  losers,
	}, nil
}

// ListSymbols reports the symbols with data on the given day.
func (q *QueryEngine) ListSymbols(ctx context.Context, date time.Time) ([]string, error) {
	symbols, err := q.store.ListSymbols(ctx, date)
	if err != nil {
		q.recordQuery("list_symbols", "error")
		return nil, err
	}
	q.recordQuery("list_symbols", "ok")
	return symbols, nil
}

// CandleSeries returns one symbol's day of candles resampled to the given
// interval. A non-positive limit means unlimited; otherwise only the most
// recent limit buckets are kept.
func (q *QueryEngine) CandleSeries(ctx context.Context, symbol string, date time.Time, intervalSec int64, limit int) (*models.CandleSeriesResult, error) {
	candles, err := q.store.Read(ctx, symbol, date, date)
	if err != nil {
		q.recordQuery("candles", "error")
		return nil, err
	}
	if len(candles) == 0 {
		q.recordQuery("candles", "not_found")
		return nil, models.ErrNoData
	}

	series, err := Resample(candles, intervalSec)
	if err != nil {
		q.recordQuery("candles", "invalid")
		return nil, err
	}
	if limit > 0 && len(series) > limit {
		series = series[len(series)-limit:]
	}

	q.recordQuery("candles", "ok")
	return &models.CandleSeriesResult{
		Symbol:          symbol,
		IntervalSeconds: intervalSec,
		Candles:         series,
		Count:           len(series),
	}, nil
}

func toMover(e models.SummaryEntry) models.Mover {
	return models.Mover{
		Symbol:         e.Symbol,
		PriceChangePct: e.PriceChangePct,
		Close:          e.Close,
		Volume:         e.Volume,
	}
}

func (q *QueryEngine) recordQuery(op, status string) {
	if q.metrics != nil {
		q.metrics.RecordQuery(op, status)
	}
}
