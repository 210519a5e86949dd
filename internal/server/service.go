// Package server 实现 OrderGateway 的四个 RPC：提交订单走去重后入队，推送流按游标轮询事件缓存。
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"fixgw/internal/cache"
	"fixgw/internal/config"
	"fixgw/internal/dedup"
	"fixgw/internal/forward"
	"fixgw/internal/metrics"
	"fixgw/internal/rpc"
)

const duplicateMessage = "Duplicate order number"

var errClosing = status.Error(codes.Unavailable, "服务正在关闭")

// Recorder 记录受理与去重结果。
type Recorder interface {
	RecordOrderAccepted(ctx context.Context, key, clOrdID string)
	RecordOrderDuplicate(ctx context.Context, key string)
}

// Options 为前端的可选参数。
type Options struct {
	DedupKey       string
	StreamInterval time.Duration
	StreamBuffer   int
	Recorder       Recorder
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
}

// Service 为 OrderGatewayServer 的实现。
type Service struct {
	guard *dedup.Guard
	queue *forward.Queue
	cache *cache.Cache

	dedupKey string
	interval time.Duration
	buffer   int
	recorder Recorder
	metrics  *metrics.Metrics
	logger   *zap.Logger

	closeOnce sync.Once
	done      chan struct{}
}

var _ rpc.OrderGatewayServer = (*Service)(nil)

// NewService 创建 RPC 前端。
func NewService(guard *dedup.Guard, queue *forward.Queue, c *cache.Cache, opts Options) *Service {
	if opts.DedupKey == "" {
		opts.DedupKey = config.DedupKeyMessage
	}
	if opts.StreamInterval <= 0 {
		opts.StreamInterval = 500 * time.Millisecond
	}
	if opts.StreamBuffer <= 0 {
		opts.StreamBuffer = 4000
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Service{
		guard:    guard,
		queue:    queue,
		cache:    c,
		dedupKey: opts.DedupKey,
		interval: opts.StreamInterval,
		buffer:   opts.StreamBuffer,
		recorder: opts.Recorder,
		metrics:  opts.Metrics,
		logger:   opts.Logger.Named("rpc"),
		done:     make(chan struct{}),
	}
}

// Close 结束所有推送流，须在 GracefulStop 之前调用。
func (s *Service) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Service) closing() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Service) keyOf(req *rpc.OrderRequest) string {
	if s.dedupKey == config.DedupKeyClOrdID {
		if id := strings.TrimSpace(req.ClOrdID); id != "" {
			return id
		}
	}
	return req.Message
}

// submit 为所有提交路径共用：去重、入队、立即应答，不等待实际发送。
func (s *Service) submit(ctx context.Context, req *rpc.OrderRequest) (*rpc.OrderResponse, error) {
	key := s.keyOf(req)
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, "去重键为空：message 不能为空")
	}

	if s.guard.CheckAndInsert(key) {
		s.metrics.OrderDuplicate()
		if s.recorder != nil {
			s.recorder.RecordOrderDuplicate(ctx, key)
		}
		s.logger.Info("拒绝重复订单", zap.String("key", key))
		return &rpc.OrderResponse{Message: duplicateMessage, Status: rpc.StatusDuplicate}, nil
	}

	if err := s.queue.Enqueue(forward.NewOrder(key, req)); err != nil {
		s.guard.Remove(key)
		s.logger.Error("订单入队失败", zap.String("key", key), zap.Error(err))
		return nil, status.Error(codes.Unavailable, err.Error())
	}

	s.metrics.OrderAccepted()
	if s.recorder != nil {
		s.recorder.RecordOrderAccepted(ctx, key, req.ClOrdID)
	}
	return &rpc.OrderResponse{Message: "Order accepted: " + key, Status: rpc.StatusAccepted}, nil
}

// notice 将流接收错误作为带外通知送入管道。
func (s *Service) notice(method string, err error) {
	msg := fmt.Sprintf("%s 接收失败: %v", method, err)
	s.logger.Warn("流式调用中断", zap.String("method", method), zap.Error(err))
	if qErr := s.queue.Enqueue(forward.NewErrorNotice(msg)); qErr != nil {
		s.logger.Error("错误通知入队失败", zap.Error(qErr))
	}
}

func (s *Service) UnaryCall(ctx context.Context, req *rpc.OrderRequest) (*rpc.OrderResponse, error) {
	return s.submit(ctx, req)
}

// ServerStream 从 req.Cursor 起（0 视为 1）按周期推送缓存条目，直到客户端断开或服务关闭。
func (s *Service) ServerStream(req *rpc.OrderRequest, stream grpc.ServerStreamingServer[rpc.OrderResponse]) error {
	cursor := req.Cursor
	if cursor == 0 {
		cursor = 1
	}

	defer s.metrics.StreamOpened()()
	ctx, cancel := context.WithCancel(stream.Context())
	defer cancel()

	entries := make(chan cache.Entry, s.buffer)
	go s.pollCache(ctx, cursor, entries)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return errClosing
		case e, ok := <-entries:
			if !ok {
				if s.closing() {
					return errClosing
				}
				return nil
			}
			n := e.Notification
			resp := &rpc.OrderResponse{
				Message:      fmt.Sprintf("Server Stream push: %d %s %s", e.Sequence, n.MsgType, n.OrderID),
				Status:       rpc.StatusNotification,
				Sequence:     e.Sequence,
				Notification: &n,
			}
			if err := stream.Send(resp); err != nil {
				return err
			}
		}
	}
}

// pollCache 是单个流的读者，游标只在条目进入缓冲区后前移。
func (s *Service) pollCache(ctx context.Context, cursor uint64, out chan<- cache.Entry) {
	defer close(out)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
		}

		for _, e := range s.cache.ReadFrom(cursor) {
			select {
			case out <- e:
				cursor = e.Sequence + 1
			case <-ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}
}

// ClientStream 逐条提交，客户端关闭后返回汇总。
func (s *Service) ClientStream(stream grpc.ClientStreamingServer[rpc.OrderRequest, rpc.OrderResponse]) error {
	var (
		summary  = &rpc.OrderResponse{Status: rpc.StatusSummary}
		messages []string
	)

	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			summary.Message = fmt.Sprintf("Received: %q", messages)
			return stream.SendAndClose(summary)
		}
		if err != nil {
			s.notice("ClientStream", err)
			return err
		}

		summary.Received++
		messages = append(messages, req.Message)

		resp, err := s.submit(stream.Context(), req)
		switch {
		case status.Code(err) == codes.InvalidArgument:
			summary.Rejected++
		case err != nil:
			return err
		case resp.Status == rpc.StatusDuplicate:
			summary.Duplicates++
		default:
			summary.Accepted++
		}
	}
}

// BidiStream 对每条请求立即回显受理结果，直到客户端关闭。
func (s *Service) BidiStream(stream grpc.BidiStreamingServer[rpc.OrderRequest, rpc.OrderResponse]) error {
	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			s.notice("BidiStream", err)
			return err
		}

		resp, err := s.submit(stream.Context(), req)
		switch {
		case status.Code(err) == codes.InvalidArgument:
			resp = &rpc.OrderResponse{Status: rpc.StatusRejected}
		case err != nil:
			return err
		}
		resp.Message = "Echo: " + req.Message

		if err := stream.Send(resp); err != nil {
			return err
		}
	}
}
