package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Audit contains configuration for the audit log sink.
type Audit struct {
	Driver        string
	ClickHouseDsn string
	BatchSize     int
	FlushInterval time.Duration
}

// Config содержит параметры конфигурации приложения, загружаемые из переменных окружения.
type Config struct {
	HttpPort int
	GrpcPort int
	DbDriver string
	DbDsn    string
	Audit    Audit
	LogLevel string
}

// Load считывает значения конфигурации из переменных окружения и подставляет значения по умолчанию при их отсутствии.
func Load() (*Config, error) {
	httpPort, err := getEnvInt(EnvHTTPPort, DefaultHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvHTTPPort, err)
	}

	grpcPort, err := getEnvInt(EnvGRPCPort, DefaultGRPCPort)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvGRPCPort, err)
	}

	batchSize, err := getEnvInt(EnvAuditBatchSize, DefaultAuditBatchSize)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvAuditBatchSize, err)
	}

	flushInterval, err := getEnvDuration(EnvAuditFlushInterval, DefaultAuditFlushInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvAuditFlushInterval, err)
	}

	cfg := &Config{
		HttpPort: httpPort,
		GrpcPort: grpcPort,
		DbDriver: getEnvString(EnvDbDriver, DefaultDbDriver),
		DbDsn:    getEnvString(EnvDbDsn, DefaultDbDsn),
		Audit: Audit{
			Driver:        getEnvString(EnvAuditDriver, DefaultAuditDriver),
			ClickHouseDsn: getEnvString(EnvClickHouseDsn, DefaultClickHouseDsn),
			BatchSize:     batchSize,
			FlushInterval: flushInterval,
		},
		LogLevel: normalizeLogLevel(getEnvString(EnvLogLevel, DefaultLogLevel)),
	}

	return cfg, nil
}

// getEnvString возвращает строковое значение переменной окружения или значение по умолчанию.
func getEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return parsed, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}

	return parsed, nil
}

// normalizeLogLevel приводит текстовый уровень логирования к поддерживаемому значению.
func normalizeLogLevel(level string) string {
	switch level {
	case "debug", "info", "warn", "error":
		return level
	case "warning":
		return "warn"
	default:
		return DefaultLogLevel
	}
}
