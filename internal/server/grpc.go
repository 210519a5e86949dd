package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"fixgw/internal/rpc"
)

const defaultStopTimeout = 5 * time.Second

// GRPCServer 承载 OrderGateway 与健康检查服务。
type GRPCServer struct {
	server      *grpc.Server
	health      *health.Server
	service     *Service
	logger      *zap.Logger
	stopTimeout time.Duration
}

// NewGRPCServer 创建 gRPC 服务端并注册服务。
func NewGRPCServer(svc *Service, logger *zap.Logger) *GRPCServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("grpc")

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryUnary(logger), loggingUnary(logger)),
		grpc.ChainStreamInterceptor(recoveryStream(logger), loggingStream(logger)),
	)
	rpc.RegisterOrderGatewayServer(srv, svc)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &GRPCServer{
		server:      srv,
		health:      hs,
		service:     svc,
		logger:      logger,
		stopTimeout: defaultStopTimeout,
	}
}

// Serve 在 lis 上提供服务，ctx 取消后优雅退出并返回 nil。
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gRPC 服务启动", zap.String("addr", lis.Addr().String()))
		errCh <- s.server.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		<-errCh
		return nil
	case err := <-errCh:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("server: gRPC 服务异常退出: %w", err)
	}
}

// Stop 先结束推送流，再优雅停止；超时后强制关闭。
func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.service.Close()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("gRPC 服务已停止")
	case <-time.After(s.stopTimeout):
		s.logger.Warn("优雅停止超时，强制关闭")
		s.server.Stop()
	}
}

func loggingUnary(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(logger, info.FullMethod, start, err)
		return resp, err
	}
}

func loggingStream(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		logCall(logger, info.FullMethod, start, err)
		return err
	}
}

func logCall(logger *zap.Logger, method string, start time.Time, err error) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
		zap.String("code", status.Code(err).String()),
	}
	if err != nil {
		logger.Warn("RPC 调用失败", append(fields, zap.Error(err))...)
		return
	}
	logger.Debug("RPC 调用完成", fields...)
}

func recoveryUnary(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = panicError(logger, info.FullMethod, r)
			}
		}()
		return handler(ctx, req)
	}
}

func recoveryStream(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = panicError(logger, info.FullMethod, r)
			}
		}()
		return handler(srv, ss)
	}
}

func panicError(logger *zap.Logger, method string, r interface{}) error {
	logger.Error("RPC 处理发生 panic",
		zap.String("method", method),
		zap.Any("panic", r),
		zap.ByteString("stack", debug.Stack()),
	)
	return status.Error(codes.Internal, "内部错误")
}
