//go:build wireinject
// +build wireinject

package di

import (
	"AgriPulse/pkg/config"
	"AgriPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,
		ProvideLayeredCache,

		// Repositories
		ProvideArtifactStore,
		ProvideObservationStore,
		ProvidePricePublisher,
		ProvidePriceFeed,

		// Domain services
		ProvideSeriesStore,
		ProvideAnalyzer,
		ProvideForecaster,
		ProvideEstimator,
		ProvidePolicy,

		// Use cases
		ProvideMarketAdvisor,
		ProvidePriceProcessor,
		ProvideFeedCollector,
		ProvideKafkaPricesHandler,

		// Delivery
		ProvideMarketHandler,
		ProvideQueue,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
