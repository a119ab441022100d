// Package clickhouse persists audit entries into a ClickHouse MergeTree table
// with batched asynchronous inserts.
package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"points-service/internal/auditlog"
	"points-service/internal/logging"
	"points-service/internal/metrics"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = 250 * time.Millisecond

	createTableStatement = `
CREATE TABLE IF NOT EXISTS api_logs
(
    timestamp DateTime64(3),
    level String,
    service String,
    endpoint String,
    method String,
    status_code Int32,
    client_ip String,
    user_agent String,
    request_duration_ms Float64,
    request_body String,
    error_message String,
    params String
)
ENGINE = MergeTree()
ORDER BY (timestamp, service, level)
PARTITION BY toYYYYMM(timestamp)
TTL toDateTime(timestamp) + INTERVAL 30 DAY
SETTINGS index_granularity = 8192`

	insertStatement = `INSERT INTO api_logs
(timestamp, level, service, endpoint, method, status_code, client_ip, user_agent,
 request_duration_ms, request_body, error_message, params)`

	selectColumns = `timestamp, level, service, endpoint, method, status_code,
client_ip, user_agent, request_duration_ms, request_body, error_message, params`
)

// Conn is the slice of the ClickHouse driver the sink needs; the narrow seam
// keeps the batch loop testable with a fake connection.
type Conn interface {
	Exec(ctx context.Context, query string, args ...any) error
	PrepareBatch(ctx context.Context, query string) (Batch, error)
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Close() error
}

// Batch appends rows to one INSERT and ships them in a single round trip.
type Batch interface {
	Append(v ...any) error
	Abort() error
	Send() error
}

// Rows iterates a query result.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// NewConn adapts a real driver connection to the sink's Conn seam.
func NewConn(conn driver.Conn) Conn {
	return driverConn{conn: conn}
}

type driverConn struct {
	conn driver.Conn
}

func (c driverConn) Exec(ctx context.Context, query string, args ...any) error {
	return c.conn.Exec(ctx, query, args...)
}

func (c driverConn) PrepareBatch(ctx context.Context, query string) (Batch, error) {
	batch, err := c.conn.PrepareBatch(ctx, query)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (c driverConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c driverConn) Close() error {
	return c.conn.Close()
}

type tickerFactory func(time.Duration) *time.Ticker

// Sink buffers entries in a queue and flushes them by batch size or ticker.
type Sink struct {
	conn          Conn
	logger        *logging.Logger
	metrics       *metrics.Metrics
	batchSize     int
	flushInterval time.Duration
	queue         chan auditlog.Entry
	stop          chan struct{}
	done          chan struct{}
	stopOnce      sync.Once
	connCloseOnce sync.Once
	closing       uint32
	makeTicker    tickerFactory
}

type Option func(*options)

type options struct {
	batchSize     int
	flushInterval time.Duration
	queueSize     int
	tickerFn      tickerFactory
}

func WithBatchSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.batchSize = size
		}
	}
}

func WithFlushInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.flushInterval = interval
		}
	}
}

func WithQueueSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.queueSize = size
		}
	}
}

// NewSink creates the api_logs table if it does not exist and starts the
// flush loop.
func NewSink(ctx context.Context, conn Conn, logger *logging.Logger, m *metrics.Metrics, opts ...Option) (*Sink, error) {
	if conn == nil {
		return nil, errors.New("clickhouse sink requires a connection")
	}

	if err := conn.Exec(ctx, createTableStatement); err != nil {
		return nil, fmt.Errorf("clickhouse sink: ensure schema: %w", err)
	}

	options := options{
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		tickerFn: func(d time.Duration) *time.Ticker {
			return time.NewTicker(d)
		},
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.queueSize < options.batchSize {
		options.queueSize = options.batchSize * 4
	}

	sink := &Sink{
		conn:          conn,
		logger:        logger,
		metrics:       m,
		batchSize:     options.batchSize,
		flushInterval: options.flushInterval,
		queue:         make(chan auditlog.Entry, options.queueSize),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		makeTicker:    options.tickerFn,
	}

	go sink.run()

	return sink, nil
}

// Log enqueues the entry without blocking; entries are dropped when the sink
// is closing or the queue is full.
func (s *Sink) Log(entry auditlog.Entry) {
	if atomic.LoadUint32(&s.closing) == 1 {
		s.drop()
		return
	}

	select {
	case s.queue <- entry:
		if s.metrics != nil {
			s.metrics.AuditQueueDepth.Set(float64(len(s.queue)))
		}
	default:
		s.drop()
	}
}

func (s *Sink) drop() {
	if s.metrics != nil {
		s.metrics.AuditEntriesDropped.Inc()
	}
	if s.logger != nil {
		s.logger.Warn("audit entry dropped")
	}
}

func (s *Sink) run() {
	defer close(s.done)

	buffer := make([]auditlog.Entry, 0, s.batchSize)

	var tickerCh <-chan time.Time
	if s.flushInterval > 0 {
		ticker := s.makeTicker(s.flushInterval)
		tickerCh = ticker.C
		defer ticker.Stop()
	}

	for {
		select {
		case entry := <-s.queue:
			buffer = append(buffer, entry)
			if len(buffer) >= s.batchSize {
				s.flushAndReset(&buffer)
			}
		case <-tickerCh:
			s.flushAndReset(&buffer)
		case <-s.stop:
			s.drain(&buffer)
			return
		}
	}
}

// drain вычерпывает очередь после сигнала остановки и сбрасывает остаток.
func (s *Sink) drain(buffer *[]auditlog.Entry) {
	for {
		select {
		case entry := <-s.queue:
			*buffer = append(*buffer, entry)
			if len(*buffer) >= s.batchSize {
				s.flushAndReset(buffer)
			}
		default:
			s.flushAndReset(buffer)
			return
		}
	}
}

func (s *Sink) flushAndReset(buffer *[]auditlog.Entry) {
	if len(*buffer) == 0 {
		return
	}
	if err := s.flush(*buffer); err != nil && s.logger != nil {
		s.logger.Error("audit batch flush failed", "error", err.Error())
	}
	*buffer = (*buffer)[:0]
	if s.metrics != nil {
		s.metrics.AuditQueueDepth.Set(float64(len(s.queue)))
	}
}

func (s *Sink) flush(batch []auditlog.Entry) error {
	ctx := context.Background()

	prepared, err := s.conn.PrepareBatch(ctx, insertStatement)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, entry := range batch {
		if err := prepared.Append(
			entry.Timestamp,
			entry.Level,
			entry.Service,
			entry.Endpoint,
			entry.Method,
			entry.StatusCode,
			entry.ClientIP,
			entry.UserAgent,
			entry.DurationMs,
			entry.RequestBody,
			entry.ErrorMessage,
			entry.Params,
		); err != nil {
			_ = prepared.Abort()
			return fmt.Errorf("append entry: %w", err)
		}
	}

	if err := prepared.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AuditBatchFlushTotal.Inc()
	}
	return nil
}

// Query reads entries back, newest first.
func (s *Sink) Query(ctx context.Context, filter auditlog.Filter) ([]auditlog.Entry, error) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns)
	sb.WriteString(" FROM api_logs WHERE 1=1")

	args := make([]any, 0, 4)
	if filter.Level != "" {
		sb.WriteString(" AND level = ?")
		args = append(args, filter.Level)
	}
	if filter.Endpoint != "" {
		sb.WriteString(" AND endpoint LIKE ?")
		args = append(args, "%"+filter.Endpoint+"%")
	}
	if !filter.Start.IsZero() {
		sb.WriteString(" AND timestamp >= ?")
		args = append(args, filter.Start)
	}
	if !filter.End.IsZero() {
		sb.WriteString(" AND timestamp <= ?")
		args = append(args, filter.End)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = auditlog.DefaultQueryLimit
	}
	sb.WriteString(" ORDER BY timestamp DESC LIMIT ?")
	args = append(args, limit)

	rows, err := s.conn.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("clickhouse sink: query: %w", err)
	}
	defer rows.Close()

	var entries []auditlog.Entry
	for rows.Next() {
		var entry auditlog.Entry
		if err := rows.Scan(
			&entry.Timestamp,
			&entry.Level,
			&entry.Service,
			&entry.Endpoint,
			&entry.Method,
			&entry.StatusCode,
			&entry.ClientIP,
			&entry.UserAgent,
			&entry.DurationMs,
			&entry.RequestBody,
			&entry.ErrorMessage,
			&entry.Params,
		); err != nil {
			return nil, fmt.Errorf("clickhouse sink: scan: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clickhouse sink: rows: %w", err)
	}

	return entries, nil
}

// Close drains the queue, flushes the remainder and closes the connection.
// The queue channel is never closed: a Log racing Close enqueues into a live
// channel and is either drained by the run loop or dropped, never a panic.
func (s *Sink) Close(ctx context.Context) error {
	atomic.StoreUint32(&s.closing, 1)
	s.stopOnce.Do(func() {
		close(s.stop)
	})

	select {
	case <-s.done:
		return s.closeConn()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sink) closeConn() error {
	var err error
	s.connCloseOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}

var _ auditlog.Sink = (*Sink)(nil)
var _ auditlog.Closer = (*Sink)(nil)
