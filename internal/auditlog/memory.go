package auditlog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemorySink keeps entries in memory. It backs tests and the "memory" audit
// driver when no ClickHouse instance is available.
type MemorySink struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Log(entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *MemorySink) Query(_ context.Context, filter Filter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	matched := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if filter.Level != "" && entry.Level != filter.Level {
			continue
		}
		if filter.Endpoint != "" && !strings.Contains(entry.Endpoint, filter.Endpoint) {
			continue
		}
		if !filter.Start.IsZero() && entry.Timestamp.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && entry.Timestamp.After(filter.End) {
			continue
		}
		matched = append(matched, entry)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemorySink) Close(_ context.Context) error {
	return nil
}
