//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"YieldDesk/pkg/config"
	"YieldDesk/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegisterer,
		ProvideMetrics,
		ProvideCatalog,

		// Caches
		ProvideRedisCache,
		ProvideMemoStore,
		ProvideMemo,
		ProvideNewsCache,

		// Providers
		ProvideMacroProvider,
		ProvideNewsProvider,

		// Archive
		ProvideClickHouseClient,
		ProvideObservationStorage,
		ProvideKafkaProducer,
		ProvideObservationPublisher,
		ProvideKafkaConsumer,
		ProvideKafkaObservationsHandler,
		ProvideObservationProcessor,
		ProvideArchivePipeline,

		// Use cases
		ProvideSeriesFetcher,
		ProvideCurveUseCase,
		ProvideHistoricalUseCase,
		ProvideNewsUseCase,

		// HTTP
		ProvideRateLimiter,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
