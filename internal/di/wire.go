//go:build wireinject
// +build wireinject

package di

import (
	"SignalFusion/pkg/config"
	"SignalFusion/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,
		ProvideRateLimiter,
		ProvidePredictionClient,

		// Repositories
		ProvideBarStore,
		ProvideSignalStorage,
		ProvideBundlePublisher,

		// Use cases
		ProvideEngine,
		ProvideAnalysisUseCase,
		ProvideMultiTickerUseCase,
		ProvideAnalysisRequestHandler,

		// Transport
		ProvideAnalysisHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
