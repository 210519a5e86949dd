// Package fixsession 适配 quickfix 会话引擎：回调驱动连接状态、解码入站消息写入事件缓存，并负责发起端的生命周期。
package fixsession

import (
	"context"
	"errors"
	"time"

	"github.com/quickfixgo/quickfix"
	"go.uber.org/zap"

	"fixgw/internal/cache"
	"fixgw/internal/connection"
	"fixgw/internal/fix"
	"fixgw/internal/metrics"
)

// Recorder 记录会话层事件。
type Recorder interface {
	RecordSession(ctx context.Context, sessionID string, up bool)
	RecordNotification(ctx context.Context, sequence uint64, n cache.Notification)
}

// Application 实现 quickfix.Application，所有回调运行在引擎自身的 goroutine 中。
type Application struct {
	conn     *connection.Monitor
	cache    *cache.Cache
	recorder Recorder
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewApplication 创建回调实现，recorder 与 m 可为空。
func NewApplication(conn *connection.Monitor, c *cache.Cache, recorder Recorder, m *metrics.Metrics, logger *zap.Logger) *Application {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Application{
		conn:     conn,
		cache:    c,
		recorder: recorder,
		metrics:  m,
		logger:   logger.Named("session"),
		now:      time.Now,
	}
}

func (a *Application) OnCreate(sessionID quickfix.SessionID) {
	a.logger.Info("会话已创建", zap.String("session", sessionID.String()))
}

func (a *Application) OnLogon(sessionID quickfix.SessionID) {
	a.conn.SetUp()
	a.metrics.SessionState(true)
	a.logger.Info("会话已登录", zap.String("session", sessionID.String()))
	a.recorder.RecordSession(context.Background(), sessionID.String(), true)
}

func (a *Application) OnLogout(sessionID quickfix.SessionID) {
	a.conn.SetDown()
	a.metrics.SessionState(false)
	a.logger.Info("会话已登出", zap.String("session", sessionID.String()))
	a.recorder.RecordSession(context.Background(), sessionID.String(), false)
}

func (a *Application) ToAdmin(*quickfix.Message, quickfix.SessionID) {}

func (a *Application) ToApp(*quickfix.Message, quickfix.SessionID) error {
	return nil
}

func (a *Application) FromAdmin(*quickfix.Message, quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}

// FromApp 解码执行报告等应用消息并追加到事件缓存，解码失败只记录日志。
func (a *Application) FromApp(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	n, err := fix.DecodeNotification(msg, a.now().UTC())
	if err != nil {
		if errors.Is(err, fix.ErrUnsupportedMsgType) {
			a.logger.Info("忽略应用消息", zap.Error(err))
		} else {
			a.logger.Warn("无法解码应用消息", zap.String("session", sessionID.String()), zap.Error(err))
		}
		return nil
	}

	seq := a.cache.Append(n)
	a.metrics.Notification(n.MsgType)
	a.logger.Info("收到会话通知",
		zap.Uint64("sequence", seq),
		zap.String("msg_type", n.MsgType),
		zap.String("order_id", n.OrderID),
		zap.String("cl_ord_id", n.ClOrdID),
	)
	a.recorder.RecordNotification(context.Background(), seq, n)
	return nil
}

type nopRecorder struct{}

func (nopRecorder) RecordSession(context.Context, string, bool) {}
func (nopRecorder) RecordNotification(context.Context, uint64, cache.Notification) {}
