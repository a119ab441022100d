package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"points-service/internal/logging"
	"points-service/pkg/api"
)

const defaultShutdownTimeout = 10 * time.Second

// Options описывает параметры запуска gRPC сервера.
type Options struct {
	// Address — адрес, по которому должен слушать сервер (например, ":50051").
	Address string
	// Listener подменяет TCP listener; используется в тестах (bufconn).
	Listener net.Listener
	// ShutdownTimeout задаёт максимальное время корректного завершения активных соединений.
	ShutdownTimeout time.Duration
	// Registerer позволяет зарегистрировать метрики в пользовательском реестре Prometheus.
	// Если не задан, используется prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Server инкапсулирует gRPC сервер точек и управляет его жизненным циклом.
type Server struct {
	address         string
	logger          *logging.Logger
	grpcServer      *grpc.Server
	listener        net.Listener
	shutdownTimeout time.Duration
}

// NewServer создаёт gRPC сервер с интерцепторами логирования и метрик.
func NewServer(logger *logging.Logger, service api.PointsServiceServer, opts Options) (*Server, error) {
	if service == nil {
		return nil, errors.New("points service is required")
	}

	listener := opts.Listener
	address := opts.Address
	if listener == nil {
		if address == "" {
			return nil, errors.New("address is required")
		}
		var err error
		listener, err = net.Listen("tcp", address)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", address, err)
		}
	}

	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	metrics := grpc_prometheus.NewServerMetrics()
	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if registerer != nil {
		if err := registerer.Register(metrics); err != nil {
			if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := alreadyRegistered.ExistingCollector.(*grpc_prometheus.ServerMetrics); ok {
					metrics = existing
				} else {
					return nil, fmt.Errorf("register metrics: %w", err)
				}
			} else {
				return nil, fmt.Errorf("register metrics: %w", err)
			}
		}
	}

	// Сообщения pkg/api собраны вручную и не являются proto.Message,
	// поэтому стандартный proto-кодек заменяется JSON-кодеком.
	server := grpc.NewServer(
		grpc.ForceServerCodec(api.JSONCodec{}),
		grpc.ChainUnaryInterceptor(
			loggingUnaryInterceptor(logger),
			metrics.UnaryServerInterceptor(),
		),
	)

	api.RegisterPointsServiceServer(server, service)
	metrics.InitializeMetrics(server)

	return &Server{
		address:         address,
		logger:          logger,
		grpcServer:      server,
		listener:        listener,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

// Serve запускает gRPC сервер и останавливает его при завершении контекста.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.listener.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpcServer.Serve(s.listener)
	}()

	if s.logger != nil {
		s.logger.Info("gRPC server started", "address", s.listener.Addr().String())
	}

	select {
	case <-ctx.Done():
		if s.logger != nil {
			s.logger.Info("gRPC server shutdown initiated")
		}
		shutdownErr := s.shutdown()
		serveErr := <-errCh
		if errors.Is(serveErr, grpc.ErrServerStopped) {
			serveErr = nil
		}
		if serveErr != nil && shutdownErr == nil {
			shutdownErr = serveErr
		}
		return shutdownErr
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

func (s *Server) shutdown() error {
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		if s.logger != nil {
			s.logger.Info("gRPC server stopped gracefully")
		}
		return nil
	case <-time.After(s.shutdownTimeout):
		if s.logger != nil {
			s.logger.Warn("gRPC server graceful shutdown timed out, forcing stop", "timeout", s.shutdownTimeout.String())
		}
		s.grpcServer.Stop()
		return fmt.Errorf("graceful shutdown exceeded %s", s.shutdownTimeout)
	}
}

func loggingUnaryInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		if logger != nil {
			ctx = logger.WithContext(ctx)
		}

		resp, err := handler(ctx, req)

		if logger != nil {
			fields := []any{"method", info.FullMethod, "duration", time.Since(start)}
			if err != nil {
				fields = logging.AttachError(err, fields...)
				logger.Error("gRPC unary call completed", fields...)
			} else {
				logger.Info("gRPC unary call completed", fields...)
			}
		}

		return resp, err
	}
}
