// Package auditlog mirrors API requests and repository operations into an
// analytics store so they can be queried independently of the service logs.
package auditlog

import (
	"context"
	"time"
)

const (
	LevelInfo  = "INFO"
	LevelError = "ERROR"

	// DefaultQueryLimit bounds /logs responses when no limit is supplied.
	DefaultQueryLimit = 100

	// MaxBodyBytes caps the captured request body per entry.
	MaxBodyBytes = 1000
)

// Entry is one audit record. Endpoint is either an HTTP path or a
// db.<table> pseudo-endpoint for repository operations.
type Entry struct {
	Timestamp    time.Time
	Level        string
	Service      string
	Endpoint     string
	Method       string
	StatusCode   int32
	ClientIP     string
	UserAgent    string
	DurationMs   float64
	RequestBody  string
	ErrorMessage string
	Params       string
}

// Filter narrows a Query call. Zero values mean "no constraint".
type Filter struct {
	Level    string
	Endpoint string // substring match
	Start    time.Time
	End      time.Time
	Limit    int
}

// Sink accepts entries without blocking the caller and serves queries over
// the stored history.
type Sink interface {
	// Log enqueues the entry. A full or disconnected sink drops entries
	// instead of failing the request being audited.
	Log(entry Entry)
	Query(ctx context.Context, filter Filter) ([]Entry, error)
}

// Closer описывает sink, который сбрасывает буферы при завершении работы.
type Closer interface {
	Close(ctx context.Context) error
}
