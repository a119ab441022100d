package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"points-service/internal/auditlog"
	"points-service/internal/domain"
	"points-service/pkg/api"
)

// Service is the slice of application behaviour exposed over gRPC.
type Service interface {
	List(ctx context.Context) ([]domain.Point, error)
	FindParadox(ctx context.Context) (domain.Paradox, error)
	QueryLogs(ctx context.Context, filter auditlog.Filter) ([]auditlog.Entry, error)
}

// Handler реализует gRPC интерфейс PointsServiceServer поверх сервиса точек.
type Handler struct {
	api.UnimplementedPointsServiceServer

	service Service
}

// NewHandler создаёт новый экземпляр Handler с указанным сервисом.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetParadox запускает анализатор и возвращает точку с максимальной дельтой.
func (h *Handler) GetParadox(ctx context.Context, req *api.GetParadoxRequest) (*api.GetParadoxResponse, error) {
	if req == nil {
		return nil, status.Errorf(codes.InvalidArgument, "request is required")
	}
	if h == nil || h.service == nil {
		return nil, status.Errorf(codes.Internal, "service is not configured")
	}

	result, err := h.service.FindParadox(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			return nil, status.Errorf(codes.FailedPrecondition, "%v", err)
		}
		return nil, status.Errorf(codes.Internal, "find paradox: %v", err)
	}

	return &api.GetParadoxResponse{HomeId: result.HomeID, Delta: result.Delta}, nil
}

// ListPoints возвращает все точки, упорядоченные по позиции на линии.
func (h *Handler) ListPoints(ctx context.Context, req *api.ListPointsRequest) (*api.ListPointsResponse, error) {
	if req == nil {
		return nil, status.Errorf(codes.InvalidArgument, "request is required")
	}
	if h == nil || h.service == nil {
		return nil, status.Errorf(codes.Internal, "service is not configured")
	}

	points, err := h.service.List(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "list points: %v", err)
	}

	response := &api.ListPointsResponse{Points: make([]*api.Point, 0, len(points))}
	for i := range points {
		response.Points = append(response.Points, convertPoint(&points[i]))
	}

	return response, nil
}

// QueryLogs возвращает записи аудита, удовлетворяющие фильтру.
func (h *Handler) QueryLogs(ctx context.Context, req *api.QueryLogsRequest) (*api.QueryLogsResponse, error) {
	if req == nil {
		return nil, status.Errorf(codes.InvalidArgument, "request is required")
	}
	if h == nil || h.service == nil {
		return nil, status.Errorf(codes.Internal, "service is not configured")
	}

	filter := auditlog.Filter{
		Level:    req.GetLevel(),
		Endpoint: req.GetEndpoint(),
		Limit:    int(req.GetLimit()),
	}
	if from := req.GetFrom(); from != nil {
		if !from.IsValid() {
			return nil, status.Errorf(codes.InvalidArgument, "invalid from timestamp")
		}
		filter.Start = from.AsTime()
	}
	if to := req.GetTo(); to != nil {
		if !to.IsValid() {
			return nil, status.Errorf(codes.InvalidArgument, "invalid to timestamp")
		}
		filter.End = to.AsTime()
	}
	if filter.Limit < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "limit must not be negative")
	}

	entries, err := h.service.QueryLogs(ctx, filter)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "query logs: %v", err)
	}

	response := &api.QueryLogsResponse{Logs: make([]*api.LogEntry, 0, len(entries))}
	for i := range entries {
		response.Logs = append(response.Logs, convertEntry(&entries[i]))
	}

	return response, nil
}

func convertPoint(point *domain.Point) *api.Point {
	if point == nil {
		return nil
	}
	return &api.Point{
		HomeId:     point.HomeID,
		HomeNum:    point.HomeNum,
		Volts:      point.Volts,
		Ampers:     point.Ampers,
		Power:      point.Power,
		Resistance: point.Resistance,
	}
}

func convertEntry(entry *auditlog.Entry) *api.LogEntry {
	if entry == nil {
		return nil
	}
	return &api.LogEntry{
		Timestamp:    timestamppb.New(entry.Timestamp),
		Level:        entry.Level,
		Service:      entry.Service,
		Endpoint:     entry.Endpoint,
		Method:       entry.Method,
		StatusCode:   entry.StatusCode,
		DurationMs:   entry.DurationMs,
		ErrorMessage: entry.ErrorMessage,
		Params:       entry.Params,
	}
}
