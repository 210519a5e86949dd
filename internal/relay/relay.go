// Package relay 作为事件缓存的独立读者，把每条通知按序发布到 NATS。
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"fixgw/internal/cache"
	"fixgw/internal/config"
)

const defaultPollInterval = 200 * time.Millisecond

// Publisher 为 *nats.Conn 的发布子集。
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Source 为按游标读取的事件缓存。
type Source interface {
	ReadFrom(cursor uint64) []cache.Entry
}

// Relay 维护自己的游标，发布失败时不前移，下一轮从失败条目重试。
type Relay struct {
	source   Source
	pub      Publisher
	subject  string
	interval time.Duration
	logger   *zap.Logger

	cursor uint64
}

// New 创建中继。
func New(source Source, pub Publisher, subject string, interval time.Duration, logger *zap.Logger) *Relay {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		source:   source,
		pub:      pub,
		subject:  subject,
		interval: interval,
		logger:   logger.Named("relay"),
		cursor:   1,
	}
}

// Connect 按配置连接 NATS，断线后无限重连。
func Connect(cfg config.NATSConfig, logger *zap.Logger) (*nats.Conn, error) {
	if cfg.URL == "" {
		return nil, errors.New("relay: nats.url 为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name("fixgw"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS 连接断开", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS 已重连", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("relay: 连接 NATS 失败: %w", err)
	}
	return nc, nil
}

// Subject 返回条目的发布主题：<subject>.<MsgType>。
func (r *Relay) Subject(e cache.Entry) string {
	return r.subject + "." + e.Notification.MsgType
}

// Run 周期性读取新条目并发布，ctx 取消后返回 nil。
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("NATS 中继启动", zap.String("subject", r.subject))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.flush()
		}
	}
}

func (r *Relay) flush() {
	for _, e := range r.source.ReadFrom(r.cursor) {
		data, err := json.Marshal(e)
		if err != nil {
			r.logger.Error("序列化条目失败，跳过", zap.Uint64("sequence", e.Sequence), zap.Error(err))
			r.cursor = e.Sequence + 1
			continue
		}
		if err := r.pub.Publish(r.Subject(e), data); err != nil {
			r.logger.Warn("发布失败，稍后重试", zap.Uint64("sequence", e.Sequence), zap.Error(err))
			return
		}
		r.cursor = e.Sequence + 1
	}
}
