package usecase

import (
	"context"
	"fmt"
	"time"

	"CandleVault/internal/domain/models"
	drepo "CandleVault/internal/domain/repository"
	applogger "CandleVault/pkg/logger"
)

// IngestRunner executes one end-to-end ingestion run: fetch, archive the
// raw payload, write partitions, then best-effort mirroring and
// notification. The raw archive is the durability floor: if it fails the
// run aborts before any partition is touched.
type IngestRunner struct {
	fetcher  *Fetcher
	raw      drepo.RawStore
	store    drepo.PartitionStore
	sink     drepo.CandleSink
	notifier drepo.RunNotifier
	logger   *applogger.Logger
}

// NewIngestRunner creates an ingest runner. Sink and notifier may be nil.
func NewIngestRunner(
	fetcher *Fetcher,
	raw drepo.RawStore,
	store drepo.PartitionStore,
	sink drepo.CandleSink,
	notifier drepo.RunNotifier,
	log *applogger.Logger,
) *IngestRunner {
	if log == nil {
		log = applogger.Nop()
	}
	return &IngestRunner{
		fetcher:  fetcher,
		raw:      raw,
		store:    store,
		sink:     sink,
		notifier: notifier,
		logger:   log,
	}
}

// Run ingests the symbol universe and returns the run report.
func (r *IngestRunner) Run(ctx context.Context, symbols []string) (*models.FetchReport, error) {
	run, err := r.fetcher.FetchAll(ctx, symbols)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	r.logger.Info("fetch complete",
		applogger.Int("requested", run.Report.SymbolsRequested),
		applogger.Int("succeeded", len(run.Report.SymbolsSucceeded)),
		applogger.Float64("success_rate", run.Report.SuccessRatePercent),
		applogger.String("breaker", run.Report.BreakerState),
	)

	key, err := r.raw.WriteRun(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("raw archive: %w", err)
	}
	r.logger.Info("raw archive written", applogger.String("key", key))

	if err := r.writePartitions(ctx, run); err != nil {
		return nil, err
	}

	r.mirror(ctx, run)
	r.notify(ctx, &run.Report)

	return &run.Report, nil
}

// writePartitions splits each symbol's candles by calendar day and writes
// one partition per day. A failed symbol does not stop the rest; the run
// errors only if every write failed.
func (r *IngestRunner) writePartitions(ctx context.Context, run *models.IngestRun) error {
	var wrote, failed int

	for symbol, batch := range run.Data {
		byDay := make(map[time.Time][]models.Candle)
		for _, c := range batch.Candles {
			byDay[c.Day()] = append(byDay[c.Day()], c)
		}

		for date, candles := range byDay {
			if err := r.store.Write(ctx, symbol, date, candles); err != nil {
				failed++
				r.logger.Error("partition write failed",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
				continue
			}
			wrote++
		}
	}

	r.logger.Info("partitions written",
		applogger.Int("wrote", wrote),
		applogger.Int("failed", failed),
	)

	if wrote == 0 && failed > 0 {
		return fmt.Errorf("all %d partition writes failed", failed)
	}
	return nil
}

// mirror pushes candles into the analytics sink. Failures are logged, not
// fatal: the mirror is derived data.
func (r *IngestRunner) mirror(ctx context.Context, run *models.IngestRun) {
	if r.sink == nil {
		return
	}
	for symbol, batch := range run.Data {
		if err := r.sink.InsertCandles(ctx, symbol, batch.Candles); err != nil {
			r.logger.Warn("analytics mirror failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
	}
}

func (r *IngestRunner) notify(ctx context.Context, report *models.FetchReport) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.NotifyRun(ctx, report); err != nil {
		r.logger.Warn("run notification failed", applogger.Error(err))
	}
}
