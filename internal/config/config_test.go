package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvHTTPPort, "")
	t.Setenv(EnvGRPCPort, "")
	t.Setenv(EnvDbDriver, "")
	t.Setenv(EnvAuditDriver, "")
	t.Setenv(EnvAuditBatchSize, "")
	t.Setenv(EnvAuditFlushInterval, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	assert.Equal(t, DefaultHTTPPort, cfg.HttpPort)
	assert.Equal(t, DefaultGRPCPort, cfg.GrpcPort)
	assert.Equal(t, DefaultDbDriver, cfg.DbDriver)
	assert.Equal(t, DefaultAuditDriver, cfg.Audit.Driver)
	assert.Equal(t, DefaultAuditBatchSize, cfg.Audit.BatchSize)
	assert.Equal(t, DefaultAuditFlushInterval, cfg.Audit.FlushInterval)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv(EnvHTTPPort, "9000")
	t.Setenv(EnvGRPCPort, "50052")
	t.Setenv(EnvDbDriver, "memory")
	t.Setenv(EnvDbDsn, "postgres://test")
	t.Setenv(EnvAuditDriver, "memory")
	t.Setenv(EnvClickHouseDsn, "clickhouse://test:9000/audit")
	t.Setenv(EnvAuditBatchSize, "64")
	t.Setenv(EnvAuditFlushInterval, "2s")
	t.Setenv(EnvLogLevel, "warning")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	assert.Equal(t, 9000, cfg.HttpPort)
	assert.Equal(t, 50052, cfg.GrpcPort)
	assert.Equal(t, "memory", cfg.DbDriver)
	assert.Equal(t, "postgres://test", cfg.DbDsn)
	assert.Equal(t, "memory", cfg.Audit.Driver)
	assert.Equal(t, "clickhouse://test:9000/audit", cfg.Audit.ClickHouseDsn)
	assert.Equal(t, 64, cfg.Audit.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.Audit.FlushInterval)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv(EnvHTTPPort, "not-a-port")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid HTTP_PORT")
	}
}
