// Package service orchestrates the points repository, the paradox analyzer
// and the audit sink. Every repository operation is mirrored into the audit
// sink under the db.points pseudo-endpoint.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"points-service/internal/analysis"
	"points-service/internal/auditlog"
	"points-service/internal/domain"
	"points-service/internal/metrics"
	"points-service/internal/storage"
)

const auditService = "database"

// Points is the application service behind the HTTP and gRPC transports.
type Points struct {
	repo    storage.Repository
	audit   auditlog.Sink
	metrics *metrics.Metrics
}

func New(repo storage.Repository, audit auditlog.Sink, m *metrics.Metrics) *Points {
	return &Points{repo: repo, audit: audit, metrics: m}
}

// List returns every point ordered by position along the line.
func (s *Points) List(ctx context.Context) ([]domain.Point, error) {
	points, err := s.repo.List(ctx)
	s.auditOperation("SELECT", map[string]any{"count": len(points)}, err)
	if err != nil {
		return nil, err
	}
	return points, nil
}

// Create stores one point.
func (s *Points) Create(ctx context.Context, input domain.PointInput) (domain.Point, error) {
	point, err := s.repo.Create(ctx, input)
	s.auditOperation("INSERT", map[string]any{"home_num": input.HomeNum}, err)
	if err != nil {
		return domain.Point{}, err
	}
	return point, nil
}

// CreateBatch stores a parsed bulk upload and returns the created count.
func (s *Points) CreateBatch(ctx context.Context, inputs []domain.PointInput) (int, error) {
	created, err := s.repo.CreateBatch(ctx, inputs)
	s.auditOperation("BULK_INSERT", map[string]any{"count": created}, err)
	if err != nil {
		return 0, err
	}
	return created, nil
}

// GetByID returns the point with the given identifier.
func (s *Points) GetByID(ctx context.Context, homeID int64) (domain.Point, error) {
	point, err := s.repo.GetByID(ctx, homeID)
	s.auditOperation("SELECT", map[string]any{"home_id": homeID}, err)
	return point, err
}

// GetByNum returns the point at the given line position.
func (s *Points) GetByNum(ctx context.Context, homeNum int64) (domain.Point, error) {
	point, err := s.repo.GetByNum(ctx, homeNum)
	s.auditOperation("SELECT", map[string]any{"home_num": homeNum}, err)
	return point, err
}

// Update applies a partial update to the point with the given identifier.
func (s *Points) Update(ctx context.Context, homeID int64, patch domain.PointPatch) (domain.Point, error) {
	point, err := s.repo.Update(ctx, homeID, patch)
	s.auditOperation("UPDATE", map[string]any{"home_id": homeID}, err)
	return point, err
}

// DeleteAll removes every point and returns how many were deleted.
func (s *Points) DeleteAll(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx)
	s.auditOperation("DELETE", map[string]any{"count": deleted}, err)
	return deleted, err
}

// FindParadox runs the analyzer over the ordered snapshot of points.
func (s *Points) FindParadox(ctx context.Context) (domain.Paradox, error) {
	points, err := s.repo.List(ctx)
	if err != nil {
		s.auditOperation("ANALYZE", map[string]any{"analysis_type": "paradox"}, err)
		return domain.Paradox{}, fmt.Errorf("load points: %w", err)
	}

	result, err := analysis.FindParadox(points)
	s.auditOperation("ANALYZE", map[string]any{
		"analysis_type": "paradox",
		"points_count":  len(points),
	}, err)
	if err != nil {
		return domain.Paradox{}, err
	}

	return result, nil
}

// QueryLogs reads audit history back from the sink.
func (s *Points) QueryLogs(ctx context.Context, filter auditlog.Filter) ([]auditlog.Entry, error) {
	return s.audit.Query(ctx, filter)
}

func (s *Points) auditOperation(operation string, params map[string]any, err error) {
	if s.audit == nil {
		return
	}

	entry := auditlog.Entry{
		Timestamp:  time.Now().UTC(),
		Level:      auditlog.LevelInfo,
		Service:    auditService,
		Endpoint:   "db.points",
		Method:     operation,
		StatusCode: 200,
	}
	if err != nil {
		entry.Level = auditlog.LevelError
		entry.StatusCode = 500
		entry.ErrorMessage = err.Error()
	}
	if params != nil {
		if encoded, marshalErr := json.Marshal(params); marshalErr == nil {
			entry.Params = string(encoded)
		}
	}

	s.audit.Log(entry)

	if s.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.metrics.StorageOperationsTotal.WithLabelValues(operation, outcome).Inc()
	}
}
