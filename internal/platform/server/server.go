package server

import (
	"context"
	"net"
	"time"

	"github.com/go-faster/errors"
	"github.com/ogurasousui/employee-directory/internal/adapters/grpc/handler"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
	health     *health.Server
	logger     *logrus.Entry
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築します。
// 社員サービスとヘルスチェックを登録し、ログ出力のインターセプターを先頭に挟みます。
func New(listenAddr string, svc employee.UseCase, logger *logrus.Entry, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryLoggingInterceptor(logger))}, opts...)
	srv := grpc.NewServer(opts...)
	handler.RegisterEmployeeServiceServer(srv, handler.NewEmployeeGrpcHandler(svc))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(handler.EmployeeServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
		health:     hs,
		logger:     logger,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.listenAddr)
	}
	return s.Serve(ctx, lis)
}

// Serve は lis で待ち受けます。テストでは bufconn のリスナーを渡します。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
			s.GracefulStop()
		case <-stopped:
		}
	}()

	s.logger.WithField("addr", lis.Addr().String()).Info("gRPC server listening")
	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return errors.Wrap(err, "serve gRPC")
	}

	return nil
}

// GracefulStop はヘルスチェックを NOT_SERVING にしてからサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// UnaryLoggingInterceptor はメソッド名、ステータスコード、処理時間を記録します。
func UnaryLoggingInterceptor(logger *logrus.Entry) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		code := status.Code(err)
		entry := logger.WithFields(logrus.Fields{
			"method":   info.FullMethod,
			"code":     code.String(),
			"duration": time.Since(start),
		})
		if err != nil {
			entry.WithError(err).Warn("gRPC request failed")
		} else {
			entry.Debug("gRPC request handled")
		}
		return resp, err
	}
}
