//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"SignalFusion/pkg/config"
	"SignalFusion/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application. The
// provider order follows the set declared in wire.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	engine := ProvideEngine(cfg)
	client, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	barStore, err := ProvideBarStore(client, cfg, logger)
	if err != nil {
		return nil, err
	}
	httpPredictionClient := ProvidePredictionClient(cfg)
	signalStorage, err := ProvideSignalStorage(client, cfg, logger)
	if err != nil {
		return nil, err
	}
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	bundlePublisher := ProvideBundlePublisher(producer, cfg)
	metrics := ProvideMetrics()
	analysisUseCase := ProvideAnalysisUseCase(cfg, engine, barStore, httpPredictionClient, signalStorage, bundlePublisher, metrics, logger)
	multiTickerUseCase := ProvideMultiTickerUseCase(cfg, analysisUseCase, logger)
	bytesCache := ProvideCache(cfg)
	limiter := ProvideRateLimiter(cfg)
	analysisHandler := ProvideAnalysisHandler(cfg, analysisUseCase, multiTickerUseCase, bytesCache, limiter, client, httpPredictionClient, logger)
	consumer, err := ProvideKafkaConsumer(cfg, logger)
	if err != nil {
		return nil, err
	}
	analysisRequestHandler := ProvideAnalysisRequestHandler(cfg, analysisUseCase, metrics, logger)
	app := ProvideApp(cfg, logger, analysisHandler, consumer, analysisRequestHandler, bundlePublisher, signalStorage, bytesCache, client)
	return app, nil
}
