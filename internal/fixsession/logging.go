package fixsession

import (
	"fmt"
	"strings"

	"github.com/quickfixgo/quickfix"
	"go.uber.org/zap"
)

const soh = "\x01"

// LogFactory 将引擎日志桥接到 zap，报文中的 SOH 显示为 |。
type LogFactory struct {
	logger *zap.Logger
}

// NewLogFactory 创建日志工厂。
func NewLogFactory(logger *zap.Logger) *LogFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogFactory{logger: logger.Named("fix")}
}

func (f *LogFactory) Create() (quickfix.Log, error) {
	return &engineLog{logger: f.logger}, nil
}

func (f *LogFactory) CreateSessionLog(sessionID quickfix.SessionID) (quickfix.Log, error) {
	return &engineLog{logger: f.logger.With(zap.String("session", sessionID.String()))}, nil
}

type engineLog struct {
	logger *zap.Logger
}

func readable(b []byte) string {
	return strings.ReplaceAll(string(b), soh, "|")
}

func (l *engineLog) OnIncoming(b []byte) {
	l.logger.Debug("FIX incoming", zap.String("raw", readable(b)))
}

func (l *engineLog) OnOutgoing(b []byte) {
	l.logger.Debug("FIX outgoing", zap.String("raw", readable(b)))
}

func (l *engineLog) OnEvent(s string) {
	l.logger.Info("FIX event", zap.String("event", s))
}

func (l *engineLog) OnEventf(format string, a ...interface{}) {
	l.OnEvent(fmt.Sprintf(format, a...))
}
