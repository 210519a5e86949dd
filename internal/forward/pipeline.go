package forward

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fixgw/internal/fix"
	"fixgw/internal/metrics"
	"fixgw/internal/translator"
)

// Sender 将订单提交到会话，通常为阻塞调用。
type Sender interface {
	Send(order fix.Order) error
}

// StateReader 报告会话是否已登录。
type StateReader interface {
	IsUp() bool
}

// Recorder 记录管道处理结果，实现需自行吞掉写入错误。
type Recorder interface {
	RecordOrderSent(ctx context.Context, key string, order fix.Order)
	RecordSendFailed(ctx context.Context, key string, order fix.Order, err error)
	RecordTranslationFailed(ctx context.Context, key string, err error)
	RecordErrorNotice(ctx context.Context, notice string)
}

// Options 为管道的可选依赖。
type Options struct {
	PollInterval time.Duration
	Recorder     Recorder
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
}

const defaultPollInterval = 200 * time.Millisecond

// Pipeline 为队列的唯一消费者：按 FIFO 出队、翻译并发送。
type Pipeline struct {
	queue      *Queue
	conn       StateReader
	translator translator.Translator
	sender     Sender

	poll     time.Duration
	recorder Recorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewPipeline 创建转发管道。
func NewPipeline(queue *Queue, conn StateReader, tr translator.Translator, sender Sender, opts Options) (*Pipeline, error) {
	if queue == nil || conn == nil || tr == nil || sender == nil {
		return nil, errors.New("forward: queue/conn/translator/sender 不能为空")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Pipeline{
		queue:      queue,
		conn:       conn,
		translator: tr,
		sender:     sender,
		poll:       opts.PollInterval,
		recorder:   opts.Recorder,
		metrics:    opts.Metrics,
		logger:     opts.Logger.Named("pipeline"),
		now:        time.Now,
	}, nil
}

// Run 持续排空队列直到 ctx 取消。会话断开时不出队，只按轮询间隔等待。
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("转发管道启动",
		zap.String("translator", p.translator.Name()),
		zap.Duration("poll_interval", p.poll),
	)
	defer p.logger.Info("转发管道停止", zap.Int("pending", p.queue.Len()))

	timer := time.NewTimer(p.poll)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		if p.queue.Len() == 0 || !p.conn.IsUp() {
			timer.Reset(p.poll)
			select {
			case <-ctx.Done():
				return nil
			case <-timer.C:
			}
			continue
		}

		req, ok := p.queue.TryDequeue()
		if !ok {
			continue
		}
		p.process(ctx, req)
	}
}

func (p *Pipeline) process(ctx context.Context, req Request) {
	switch req.Kind {
	case KindErrorNotice:
		p.logger.Warn("收到错误通知", zap.String("notice", req.Notice))
		p.metrics.ErrorNotice()
		p.recorder.RecordErrorNotice(ctx, req.Notice)
	case KindOrder:
		p.forward(ctx, req)
	default:
		p.logger.Error("未知的转发请求类型", zap.Int("kind", int(req.Kind)))
	}
}

func (p *Pipeline) forward(ctx context.Context, req Request) {
	logger := p.logger.With(zap.String("key", req.Key))

	if req.Order == nil {
		p.translationFailed(ctx, logger, req, fmt.Errorf("forward: 订单请求为空: %w", translator.ErrMissingValue))
		return
	}

	order, err := p.translator.Translate(req.Order)
	if err != nil {
		p.translationFailed(ctx, logger, req, err)
		return
	}

	// 出队后会话可能已断开，放回队首等待下次登录。
	if !p.conn.IsUp() {
		p.queue.PushFront(req)
		logger.Info("会话已断开，订单延后发送")
		return
	}

	if err := p.sender.Send(order); err != nil {
		logger.Error("发送订单失败",
			zap.String("cl_ord_id", order.ClientOrderID()),
			zap.String("msg_type", order.MsgType()),
			zap.Error(err),
		)
		p.metrics.SendFailed()
		p.recorder.RecordSendFailed(ctx, req.Key, order, err)
		return
	}

	logger.Debug("订单已发送",
		zap.String("cl_ord_id", order.ClientOrderID()),
		zap.String("msg_type", order.MsgType()),
	)
	p.metrics.OrderSent(order.MsgType(), p.now().Sub(req.EnqueuedAt))
	p.recorder.RecordOrderSent(ctx, req.Key, order)
}

func (p *Pipeline) translationFailed(ctx context.Context, logger *zap.Logger, req Request, err error) {
	field := "unknown"
	var te *translator.TranslationError
	if errors.As(err, &te) {
		field = te.Field
	}
	logger.Warn("订单翻译失败，丢弃该请求", zap.String("field", field), zap.Error(err))
	p.metrics.TranslationFailed(field)
	p.recorder.RecordTranslationFailed(ctx, req.Key, err)
}

type nopRecorder struct{}

func (nopRecorder) RecordOrderSent(context.Context, string, fix.Order) {}
func (nopRecorder) RecordSendFailed(context.Context, string, fix.Order, error) {}
func (nopRecorder) RecordTranslationFailed(context.Context, string, error) {}
func (nopRecorder) RecordErrorNotice(context.Context, string) {}
