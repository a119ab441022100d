//go:build wireinject
// +build wireinject

package app

import (
	"time"

	"github.com/google/wire"

	"points-service/internal/config"
	"points-service/internal/logging"
	"points-service/internal/storage"
)

func InitializeApp() (*App, error) {
	panic(wire.Build(
		provideRootContext,
		provideConfig,
		provideLogger,
		provideMetrics,
		provideShutdownManager,
		storage.ProviderSet,
		provideAuditSink,
		provideService,
		provideHTTPServer,
		provideGRPCServer,
		New,
	))
}

func provideConfig() (*config.Config, error) { return config.Load() }

func provideLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(cfg.LogLevel)
}

func provideShutdownManager(l *logging.Logger) *ShutdownManager {
	const shutdownTimeout = 30 * time.Second
	return NewShutdownManager(shutdownTimeout, l)
}
