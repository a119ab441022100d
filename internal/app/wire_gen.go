//go:build !wireinject
// +build !wireinject

package app

import (
	"time"

	"points-service/internal/config"
	"points-service/internal/logging"
	"points-service/internal/storage"
)

func InitializeApp() (*App, error) {
	ctx := provideRootContext()
	config, err := provideConfig()
	if err != nil {
		return nil, err
	}
	logger, err := provideLogger(config)
	if err != nil {
		return nil, err
	}
	metrics := provideMetrics()
	shutdownManager := provideShutdownManager(logger)
	repository, err := storage.ProvideRepository(ctx, config, logger)
	if err != nil {
		return nil, err
	}
	sink, err := provideAuditSink(ctx, config, logger, metrics)
	if err != nil {
		return nil, err
	}
	points := provideService(repository, sink, metrics)
	httpServer := provideHTTPServer(points, logger, sink, metrics)
	grpcServer, err := provideGRPCServer(config, logger, points, metrics)
	if err != nil {
		return nil, err
	}
	app := New(config, logger, shutdownManager, httpServer, grpcServer, sink, repository)
	return app, nil
}

func provideConfig() (*config.Config, error) { return config.Load() }

func provideLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(cfg.LogLevel)
}

func provideShutdownManager(l *logging.Logger) *ShutdownManager {
	const shutdownTimeout = 30 * time.Second
	return NewShutdownManager(shutdownTimeout, l)
}
