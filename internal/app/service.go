package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	grpcapi "points-service/internal/api/grpc"
	httpapi "points-service/internal/api/http"
	"points-service/internal/auditlog"
	"points-service/internal/config"
	"points-service/internal/logging"
	"points-service/internal/storage"
)

const (
	httpReadHeaderTimeout = 5 * time.Second
	httpReadTimeout       = 15 * time.Second
	httpWriteTimeout      = 30 * time.Second
	httpIdleTimeout       = 60 * time.Second
)

// App представляет приложение сервиса точек измерений.
type App struct {
	config          *config.Config
	logger          *logging.Logger
	shutdownManager *ShutdownManager
	httpServer      *httpapi.Server
	grpcServer      *grpcapi.Server
	sink            auditlog.Sink
	repository      storage.Repository
}

// New создаёт новый экземпляр App.
func New(
	cfg *config.Config,
	logger *logging.Logger,
	shutdownManager *ShutdownManager,
	httpServer *httpapi.Server,
	grpcServer *grpcapi.Server,
	sink auditlog.Sink,
	repository storage.Repository,
) *App {
	return &App{
		config:          cfg,
		logger:          logger,
		shutdownManager: shutdownManager,
		httpServer:      httpServer,
		grpcServer:      grpcServer,
		sink:            sink,
		repository:      repository,
	}
}

// Run запускает жизненный цикл приложения: оба транспорта, затем корректное
// завершение по сигналу ОС.
func (a *App) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("starting points service",
			"httpPort", a.config.HttpPort,
			"grpcPort", a.config.GrpcPort,
			"dbDriver", a.config.DbDriver,
			"auditDriver", a.config.Audit.Driver,
		)
	}

	runCtx, cancel := a.shutdownManager.WithContext(ctx)
	defer cancel()
	defer a.shutdownManager.Close()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.HttpPort),
		Handler:           a.httpServer,
		ReadHeaderTimeout: httpReadHeaderTimeout,
		ReadTimeout:       httpReadTimeout,
		WriteTimeout:      httpWriteTimeout,
		IdleTimeout:       httpIdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		if a.logger != nil {
			a.logger.Info("HTTP server started", "address", httpServer.Addr)
		}
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	grpcDone := make(chan struct{})
	go func() {
		defer close(grpcDone)
		if err := a.grpcServer.Serve(runCtx); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-runCtx.Done():
	case runErr = <-errCh:
		cancel()
	}

	if a.logger != nil {
		a.logger.Info("shutdown initiated")
	}

	cleanupCtx, cleanupCancel := a.shutdownManager.CleanupContext()
	defer cleanupCancel()

	if err := httpServer.Shutdown(cleanupCtx); err != nil && a.logger != nil {
		a.logger.Warn("HTTP server shutdown", "error", err.Error())
	}

	// gRPC обработчики пишут в audit sink; дожидаемся их завершения до Close.
	select {
	case <-grpcDone:
	case <-cleanupCtx.Done():
		if a.logger != nil {
			a.logger.Warn("gRPC server did not stop before cleanup deadline")
		}
	}

	if closer, ok := a.sink.(auditlog.Closer); ok {
		if err := closer.Close(cleanupCtx); err != nil && a.logger != nil {
			a.logger.Warn("audit sink close", "error", err.Error())
		}
	}

	if closer, ok := a.repository.(storage.Closer); ok {
		if err := closer.Close(); err != nil && a.logger != nil {
			a.logger.Warn("repository close", "error", err.Error())
		}
	}

	if a.logger != nil {
		if errors.Is(cleanupCtx.Err(), context.DeadlineExceeded) {
			a.logger.Warn("shutdown deadline exceeded", "timeout", a.shutdownManager.timeout.String())
		} else {
			a.logger.Info("shutdown completed")
		}
	}

	return runErr
}
