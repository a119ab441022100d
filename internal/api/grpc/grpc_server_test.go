package grpc_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	grpcapi "points-service/internal/api/grpc"
	"points-service/internal/auditlog"
	"points-service/internal/logging"
	"points-service/internal/metrics"
	"points-service/internal/service"
	"points-service/internal/storage/memory"
	"points-service/pkg/api"
)

// newTestClient поднимает реальный gRPC сервер поверх bufconn и возвращает
// клиента, проверяя сериализацию сообщений через весь стек.
func newTestClient(t *testing.T, svc grpcapi.Service) (api.PointsServiceClient, func()) {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	logger, _ := logging.New("error", logging.WithWriter(io.Discard))

	server, err := grpcapi.NewServer(logger, grpcapi.NewHandler(svc), grpcapi.Options{
		Listener:   listener,
		Registerer: prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- server.Serve(ctx)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		cancel()
		t.Fatalf("failed to dial bufconn: %v", err)
	}

	cleanup := func() {
		_ = conn.Close()
		cancel()
		select {
		case err := <-served:
			if err != nil {
				t.Errorf("serve: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("server did not stop in time")
		}
	}

	return api.NewPointsServiceClient(conn), cleanup
}

func newSeededService() (*service.Points, *auditlog.MemorySink) {
	repo := memory.NewRepository()
	seedLine(repo)
	sink := auditlog.NewMemorySink()
	return service.New(repo, sink, metrics.New()), sink
}

func TestServerRoundTripGetParadox(t *testing.T) {
	svc, _ := newSeededService()
	client, cleanup := newTestClient(t, svc)
	defer cleanup()

	response, err := client.GetParadox(context.Background(), &api.GetParadoxRequest{})
	if err != nil {
		t.Fatalf("get paradox: %v", err)
	}
	if response.GetHomeId() == 0 {
		t.Fatalf("expected a winning point, got %+v", response)
	}
}

func TestServerRoundTripListPoints(t *testing.T) {
	svc, _ := newSeededService()
	client, cleanup := newTestClient(t, svc)
	defer cleanup()

	response, err := client.ListPoints(context.Background(), &api.ListPointsRequest{})
	if err != nil {
		t.Fatalf("list points: %v", err)
	}
	points := response.GetPoints()
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}
	if points[0].GetHomeNum() != 1 || points[3].GetHomeNum() != 4 {
		t.Fatalf("points must be ordered by home_num, got %+v", points)
	}
}

func TestServerRoundTripQueryLogs(t *testing.T) {
	svc, _ := newSeededService()
	client, cleanup := newTestClient(t, svc)
	defer cleanup()

	if _, err := client.ListPoints(context.Background(), &api.ListPointsRequest{}); err != nil {
		t.Fatalf("list points: %v", err)
	}

	response, err := client.QueryLogs(context.Background(), &api.QueryLogsRequest{})
	if err != nil {
		t.Fatalf("query logs: %v", err)
	}
	logs := response.GetLogs()
	if len(logs) == 0 {
		t.Fatal("expected audit entries for the SELECT operation")
	}
	if logs[0].GetTimestamp() == nil {
		t.Fatalf("timestamp must survive the round trip, got %+v", logs[0])
	}
}

func TestServerRoundTripStatusCodes(t *testing.T) {
	repo := memory.NewRepository()
	svc := service.New(repo, auditlog.NewMemorySink(), metrics.New())
	client, cleanup := newTestClient(t, svc)
	defer cleanup()

	_, err := client.GetParadox(context.Background(), &api.GetParadoxRequest{})
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition over the wire, got %v", err)
	}
}
