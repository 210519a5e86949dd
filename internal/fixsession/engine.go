package fixsession

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/quickfixgo/quickfix"
	"go.uber.org/zap"

	"fixgw/internal/config"
	"fixgw/internal/connection"
)

const logonPollInterval = 250 * time.Millisecond

// EngineConfig 为发起端所需的配置。
type EngineConfig struct {
	SettingsPath string
	SessionID    quickfix.SessionID
	// Store 为 file 或 memory。
	Store        string
	LogonTimeout time.Duration
}

// EngineConfigFrom 从网关配置提取引擎配置。
func EngineConfigFrom(cfg *config.Config) (EngineConfig, error) {
	id, err := NewSessionID(cfg.BeginString, cfg.SenderCompID, cfg.TargetCompID)
	if err != nil {
		return EngineConfig{}, err
	}
	return EngineConfig{
		SettingsPath: cfg.FixCfg,
		SessionID:    id,
		Store:        cfg.Session.Store,
		LogonTimeout: cfg.Session.LogonTimeout,
	}, nil
}

// Engine 持有 quickfix 发起端。
type Engine struct {
	initiator    *quickfix.Initiator
	sessionID    quickfix.SessionID
	conn         *connection.Monitor
	logonTimeout time.Duration
	logger       *zap.Logger
}

// NewEngine 解析引擎配置文件并创建发起端，会话标识必须在配置文件中声明。
func NewEngine(cfg EngineConfig, app quickfix.Application, conn *connection.Monitor, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("fixsession: 打开引擎配置 %s 失败: %w", cfg.SettingsPath, err)
	}
	defer f.Close()

	settings, err := quickfix.ParseSettings(f)
	if err != nil {
		return nil, fmt.Errorf("fixsession: 解析引擎配置失败: %w", err)
	}
	if _, ok := settings.SessionSettings()[cfg.SessionID]; !ok {
		return nil, fmt.Errorf("%w: %s 未在 %s 中声明", ErrInvalidSessionID, cfg.SessionID, cfg.SettingsPath)
	}

	var storeFactory quickfix.MessageStoreFactory
	switch cfg.Store {
	case config.SessionStoreMemory:
		storeFactory = quickfix.NewMemoryStoreFactory()
	case config.SessionStoreFile, "":
		storeFactory = quickfix.NewFileStoreFactory(settings)
	default:
		return nil, fmt.Errorf("fixsession: 不支持的消息存储 %q", cfg.Store)
	}

	initiator, err := quickfix.NewInitiator(app, storeFactory, settings, NewLogFactory(logger))
	if err != nil {
		return nil, fmt.Errorf("fixsession: 创建发起端失败: %w", err)
	}

	return &Engine{
		initiator:    initiator,
		sessionID:    cfg.SessionID,
		conn:         conn,
		logonTimeout: cfg.LogonTimeout,
		logger:       logger.Named("engine"),
	}, nil
}

// SessionID 返回发送目标。
func (e *Engine) SessionID() quickfix.SessionID {
	return e.sessionID
}

// Start 启动发起端；配置了 logon_timeout 时等待首次登录。
func (e *Engine) Start(ctx context.Context) error {
	if err := e.initiator.Start(); err != nil {
		return fmt.Errorf("fixsession: 启动发起端失败: %w", err)
	}
	e.logger.Info("FIX 发起端已启动", zap.String("session", e.sessionID.String()))

	if e.logonTimeout <= 0 {
		return nil
	}
	if err := e.waitLogon(ctx); err != nil {
		e.initiator.Stop()
		return err
	}
	return nil
}

func (e *Engine) waitLogon(ctx context.Context) error {
	deadline := time.NewTimer(e.logonTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(logonPollInterval)
	defer ticker.Stop()

	for !e.conn.IsUp() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: 等待 %s 后仍未登录", ErrNotLoggedOn, e.logonTimeout)
		case <-ticker.C:
		}
	}
	return nil
}

// Stop 登出并释放会话，须在转发管道停止之后调用。
func (e *Engine) Stop() {
	e.initiator.Stop()
	e.logger.Info("FIX 发起端已停止")
}
