//go:build wireinject
// +build wireinject

package di

import (
	"CandleVault/internal/usecase"
	"CandleVault/pkg/config"
	"CandleVault/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires the query server. Wire generates the implementation.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideObjectStore,
		ProvidePartitionStore,
		ProvideQueryEngine,
		ProvideQueryHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeIngestRunner wires the one-shot ingestion pipeline. The cleanup
// function closes infrastructure clients.
func InitializeIngestRunner(cfg *config.Config) (*usecase.IngestRunner, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideObjectStore,
		ProvidePartitionStore,
		ProvideSecretStore,
		ProvideFyersClient,
		ProvideQuoteProvider,
		ProvideRefresher,
		ProvideBreaker,
		ProvideRetryPolicy,
		ProvideFetcher,
		ProvideRawStore,
		ProvideCandleSink,
		ProvideRunNotifier,
		ProvideIngestRunner,
	)
	return nil, nil, nil
}
