package auditlog

import (
	"context"
	"testing"
	"time"
)

func TestMemorySinkQueryFilters(t *testing.T) {
	t.Parallel()

	sink := NewMemorySink()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sink.Log(Entry{Timestamp: base, Level: LevelInfo, Endpoint: "/points", Method: "GET"})
	sink.Log(Entry{Timestamp: base.Add(time.Minute), Level: LevelError, Endpoint: "/points", Method: "POST"})
	sink.Log(Entry{Timestamp: base.Add(2 * time.Minute), Level: LevelInfo, Endpoint: "/paradox", Method: "GET"})

	entries, err := sink.Query(context.Background(), Filter{Level: LevelError})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 1 || entries[0].Method != "POST" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	entries, err = sink.Query(context.Background(), Filter{Endpoint: "point"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for endpoint substring, got %d", len(entries))
	}
	// Newest first.
	if !entries[0].Timestamp.After(entries[1].Timestamp) {
		t.Fatalf("expected newest-first ordering: %+v", entries)
	}

	entries, err = sink.Query(context.Background(), Filter{
		Start: base.Add(30 * time.Second),
		End:   base.Add(90 * time.Second),
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 1 || entries[0].Level != LevelError {
		t.Fatalf("unexpected entries for time range: %+v", entries)
	}
}

func TestMemorySinkQueryLimit(t *testing.T) {
	t.Parallel()

	sink := NewMemorySink()
	for i := 0; i < DefaultQueryLimit+20; i++ {
		sink.Log(Entry{Timestamp: time.Now(), Level: LevelInfo, Endpoint: "/points"})
	}

	entries, err := sink.Query(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != DefaultQueryLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultQueryLimit, len(entries))
	}

	entries, err = sink.Query(context.Background(), Filter{Limit: 5})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
}
