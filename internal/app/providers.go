package app

import (
	"context"
	"fmt"
	"time"

	clickhousedb "github.com/ClickHouse/clickhouse-go/v2"

	grpcapi "points-service/internal/api/grpc"
	httpapi "points-service/internal/api/http"
	"points-service/internal/auditlog"
	chsink "points-service/internal/auditlog/clickhouse"
	"points-service/internal/config"
	"points-service/internal/logging"
	"points-service/internal/metrics"
	"points-service/internal/service"
	"points-service/internal/storage"
)

func provideRootContext() context.Context { return context.Background() }

func provideMetrics() *metrics.Metrics { return metrics.New() }

// provideAuditSink выбирает реализацию audit sink по настройкам окружения.
func provideAuditSink(ctx context.Context, cfg *config.Config, logger *logging.Logger, m *metrics.Metrics) (auditlog.Sink, error) {
	switch cfg.Audit.Driver {
	case "clickhouse":
		if cfg.Audit.ClickHouseDsn == "" {
			return nil, fmt.Errorf("clickhouse DSN is empty")
		}

		options, err := clickhousedb.ParseDSN(cfg.Audit.ClickHouseDsn)
		if err != nil {
			return nil, fmt.Errorf("parse clickhouse DSN: %w", err)
		}
		options.DialTimeout = 5 * time.Second

		conn, err := clickhousedb.Open(options)
		if err != nil {
			return nil, fmt.Errorf("open clickhouse connection: %w", err)
		}

		sink, err := chsink.NewSink(ctx, chsink.NewConn(conn), logger, m,
			chsink.WithBatchSize(cfg.Audit.BatchSize),
			chsink.WithFlushInterval(cfg.Audit.FlushInterval),
		)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return sink, nil
	case "memory":
		if logger != nil {
			logger.Warn("используется in-memory audit sink, история запросов не переживёт рестарт")
		}
		return auditlog.NewMemorySink(), nil
	default:
		return nil, fmt.Errorf("unsupported audit sink driver: %s", cfg.Audit.Driver)
	}
}

func provideService(repo storage.Repository, sink auditlog.Sink, m *metrics.Metrics) *service.Points {
	return service.New(repo, sink, m)
}

func provideHTTPServer(svc *service.Points, logger *logging.Logger, sink auditlog.Sink, m *metrics.Metrics) *httpapi.Server {
	return httpapi.NewServer(svc, logger, sink, m)
}

func provideGRPCServer(cfg *config.Config, logger *logging.Logger, svc *service.Points, m *metrics.Metrics) (*grpcapi.Server, error) {
	return grpcapi.NewServer(logger, grpcapi.NewHandler(svc), grpcapi.Options{
		Address:    fmt.Sprintf(":%d", cfg.GrpcPort),
		Registerer: m.Registry(),
	})
}
