package api

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// PointsServiceClient defines the gRPC client interface for the points service.
type PointsServiceClient interface {
	GetParadox(ctx context.Context, in *GetParadoxRequest, opts ...grpc.CallOption) (*GetParadoxResponse, error)
	ListPoints(ctx context.Context, in *ListPointsRequest, opts ...grpc.CallOption) (*ListPointsResponse, error)
	QueryLogs(ctx context.Context, in *QueryLogsRequest, opts ...grpc.CallOption) (*QueryLogsResponse, error)
}

type pointsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPointsServiceClient creates a new PointsService client. Calls are made
// with the JSON codec of this package; the server must force the same codec.
func NewPointsServiceClient(cc grpc.ClientConnInterface) PointsServiceClient {
	return &pointsServiceClient{cc: cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.ForceCodec(JSONCodec{})}, opts...)
}

func (c *pointsServiceClient) GetParadox(ctx context.Context, in *GetParadoxRequest, opts ...grpc.CallOption) (*GetParadoxResponse, error) {
	out := new(GetParadoxResponse)
	if err := c.cc.Invoke(ctx, "/points.PointsService/GetParadox", in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pointsServiceClient) ListPoints(ctx context.Context, in *ListPointsRequest, opts ...grpc.CallOption) (*ListPointsResponse, error) {
	out := new(ListPointsResponse)
	if err := c.cc.Invoke(ctx, "/points.PointsService/ListPoints", in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pointsServiceClient) QueryLogs(ctx context.Context, in *QueryLogsRequest, opts ...grpc.CallOption) (*QueryLogsResponse, error) {
	out := new(QueryLogsResponse)
	if err := c.cc.Invoke(ctx, "/points.PointsService/QueryLogs", in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// PointsServiceServer defines the gRPC interface for the points service.
type PointsServiceServer interface {
	GetParadox(context.Context, *GetParadoxRequest) (*GetParadoxResponse, error)
	ListPoints(context.Context, *ListPointsRequest) (*ListPointsResponse, error)
	QueryLogs(context.Context, *QueryLogsRequest) (*QueryLogsResponse, error)
}

// UnimplementedPointsServiceServer can be embedded to provide default unimplemented behaviour.
type UnimplementedPointsServiceServer struct{}

// GetParadox returns an unimplemented error by default.
func (UnimplementedPointsServiceServer) GetParadox(context.Context, *GetParadoxRequest) (*GetParadoxResponse, error) {
	return nil, errors.New("method GetParadox not implemented")
}

// ListPoints returns an unimplemented error by default.
func (UnimplementedPointsServiceServer) ListPoints(context.Context, *ListPointsRequest) (*ListPointsResponse, error) {
	return nil, errors.New("method ListPoints not implemented")
}

// QueryLogs returns an unimplemented error by default.
func (UnimplementedPointsServiceServer) QueryLogs(context.Context, *QueryLogsRequest) (*QueryLogsResponse, error) {
	return nil, errors.New("method QueryLogs not implemented")
}

// RegisterPointsServiceServer registers the service implementation with the provided registrar.
func RegisterPointsServiceServer(s grpc.ServiceRegistrar, srv PointsServiceServer) {
	s.RegisterService(&PointsService_ServiceDesc, srv)
}

// PointsService_ServiceDesc describes the points service for the gRPC server.
var PointsService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "points.PointsService",
	HandlerType: (*PointsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetParadox",
			Handler:    _PointsService_GetParadox_Handler,
		},
		{
			MethodName: "ListPoints",
			Handler:    _PointsService_ListPoints_Handler,
		},
		{
			MethodName: "QueryLogs",
			Handler:    _PointsService_QueryLogs_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proto/points.proto",
}

func _PointsService_GetParadox_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetParadoxRequest)
	if dec != nil {
		if err := dec(in); err != nil {
			return nil, err
		}
	}
	if interceptor == nil {
		return srv.(PointsServiceServer).GetParadox(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/points.PointsService/GetParadox",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PointsServiceServer).GetParadox(ctx, req.(*GetParadoxRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PointsService_ListPoints_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListPointsRequest)
	if dec != nil {
		if err := dec(in); err != nil {
			return nil, err
		}
	}
	if interceptor == nil {
		return srv.(PointsServiceServer).ListPoints(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/points.PointsService/ListPoints",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PointsServiceServer).ListPoints(ctx, req.(*ListPointsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _PointsService_QueryLogs_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QueryLogsRequest)
	if dec != nil {
		if err := dec(in); err != nil {
			return nil, err
		}
	}
	if interceptor == nil {
		return srv.(PointsServiceServer).QueryLogs(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/points.PointsService/QueryLogs",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PointsServiceServer).QueryLogs(ctx, req.(*QueryLogsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// GetParadoxRequest triggers the analyzer over the current set of points.
type GetParadoxRequest struct{}

// GetParadoxResponse carries the analyzer verdict.
type GetParadoxResponse struct {
	HomeId int64
	Delta  float64
}

// GetHomeId returns the winning home identifier.
func (x *GetParadoxResponse) GetHomeId() int64 {
	if x == nil {
		return 0
	}
	return x.HomeId
}

// GetDelta returns the paradox delta of the winning home.
func (x *GetParadoxResponse) GetDelta() float64 {
	if x == nil {
		return 0
	}
	return x.Delta
}

// ListPointsRequest asks for every point ordered by line position.
type ListPointsRequest struct{}

// Point describes one measurement point on the line.
type Point struct {
	HomeId     int64
	HomeNum    int64
	Volts      float64
	Ampers     float64
	Power      float64
	Resistance float64
}

// GetHomeId returns the point identifier.
func (x *Point) GetHomeId() int64 {
	if x == nil {
		return 0
	}
	return x.HomeId
}

// GetHomeNum returns the line position of the point.
func (x *Point) GetHomeNum() int64 {
	if x == nil {
		return 0
	}
	return x.HomeNum
}

// ListPointsResponse contains the ordered list of points.
type ListPointsResponse struct {
	Points []*Point
}

// GetPoints returns the slice of points.
func (x *ListPointsResponse) GetPoints() []*Point {
	if x == nil {
		return nil
	}
	return x.Points
}

// QueryLogsRequest filters the audit history.
type QueryLogsRequest struct {
	Level    string
	Endpoint string
	From     *timestamppb.Timestamp
	To       *timestamppb.Timestamp
	Limit    int32
}

// GetLevel returns the requested severity filter.
func (x *QueryLogsRequest) GetLevel() string {
	if x == nil {
		return ""
	}
	return x.Level
}

// GetEndpoint returns the requested endpoint filter.
func (x *QueryLogsRequest) GetEndpoint() string {
	if x == nil {
		return ""
	}
	return x.Endpoint
}

// GetFrom returns the start of the range.
func (x *QueryLogsRequest) GetFrom() *timestamppb.Timestamp {
	if x == nil {
		return nil
	}
	return x.From
}

// GetTo returns the end of the range.
func (x *QueryLogsRequest) GetTo() *timestamppb.Timestamp {
	if x == nil {
		return nil
	}
	return x.To
}

// GetLimit returns the maximum number of entries to return.
func (x *QueryLogsRequest) GetLimit() int32 {
	if x == nil {
		return 0
	}
	return x.Limit
}

// LogEntry mirrors one audit record.
type LogEntry struct {
	Timestamp    *timestamppb.Timestamp
	Level        string
	Service      string
	Endpoint     string
	Method       string
	StatusCode   int32
	DurationMs   float64
	ErrorMessage string
	Params       string
}

// GetTimestamp returns the record timestamp.
func (x *LogEntry) GetTimestamp() *timestamppb.Timestamp {
	if x == nil {
		return nil
	}
	return x.Timestamp
}

// QueryLogsResponse contains the audit records matching the filter.
type QueryLogsResponse struct {
	Logs []*LogEntry
}

// GetLogs returns the slice of audit records.
func (x *QueryLogsResponse) GetLogs() []*LogEntry {
	if x == nil {
		return nil
	}
	return x.Logs
}
