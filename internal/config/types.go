package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了网关运行所需的全部配置项。
type Config struct {
	Address       string `mapstructure:"address"`
	FixCfg        string `mapstructure:"fix_cfg"`
	BeginString   string `mapstructure:"begin_string"`
	SenderCompID  string `mapstructure:"sender_comp_id"`
	TargetCompID  string `mapstructure:"target_comp_id"`
	Interval      int64  `mapstructure:"interval"`
	PluginCfgFile string `mapstructure:"plugin_cfg_file"`
	BrokerName    string `mapstructure:"broker_name"`

	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Dedup    DedupConfig    `mapstructure:"dedup"`
	Session  SessionConfig  `mapstructure:"session"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	NATS     NATSConfig     `mapstructure:"nats"`
}

// PipelineConfig 控制转发管道的轮询节奏。
type PipelineConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// CacheConfig 控制事件缓存的保留策略，MaxEntries 为 0 表示不限制。
type CacheConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// DedupConfig 选择去重键来源。
type DedupConfig struct {
	Key string `mapstructure:"key"`
}

// SessionConfig 控制 FIX 会话引擎。
type SessionConfig struct {
	Store        string        `mapstructure:"store"`
	LogonTimeout time.Duration `mapstructure:"logon_timeout"`
}

// StreamConfig 控制服务端推送流。
type StreamConfig struct {
	Buffer int `mapstructure:"buffer"`
}

// DatabaseConfig 管理审计库连接。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string        `mapstructure:"level"`
	Encoding         string        `mapstructure:"encoding"`
	Development      bool          `mapstructure:"development"`
	OutputPaths      []string      `mapstructure:"output_paths"`
	ErrorOutputPaths []string      `mapstructure:"error_output_paths"`
	File             LogFileConfig `mapstructure:"file"`
}

// LogFileConfig 描述滚动日志文件，Path 为空时不写文件。
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// MonitorConfig 控制审计事件与 HTTP 查询接口。
type MonitorConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// MetricsConfig 控制 Prometheus 指标暴露。
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// NATSConfig 描述执行回报的 NATS 转发，URL 为空时关闭。
type NATSConfig struct {
	URL          string        `mapstructure:"url"`
	Subject      string        `mapstructure:"subject"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// StreamInterval 返回推送流的轮询周期。
func (c *Config) StreamInterval() time.Duration {
	return time.Duration(c.Interval) * time.Millisecond
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if strings.TrimSpace(c.Address) == "" {
		err = multierr.Append(err, errors.New("address 不能为空"))
	}
	if strings.TrimSpace(c.FixCfg) == "" {
		err = multierr.Append(err, errors.New("fix_cfg 不能为空"))
	}
	if c.BeginString == "" || c.SenderCompID == "" || c.TargetCompID == "" {
		err = multierr.Append(err, errors.New("begin_string/sender_comp_id/target_comp_id 必须全部配置"))
	}
	if c.Interval <= 0 {
		err = multierr.Append(err, errors.New("interval 必须大于0"))
	}
	if strings.TrimSpace(c.PluginCfgFile) == "" {
		err = multierr.Append(err, errors.New("plugin_cfg_file 不能为空"))
	}
	if strings.TrimSpace(c.BrokerName) == "" {
		err = multierr.Append(err, errors.New("broker_name 不能为空"))
	}
	if c.Pipeline.PollInterval <= 0 {
		err = multierr.Append(err, errors.New("pipeline.poll_interval 必须大于0"))
	}
	if c.Cache.MaxEntries < 0 {
		err = multierr.Append(err, errors.New("cache.max_entries 不能为负"))
	}
	switch c.Dedup.Key {
	case DedupKeyMessage, DedupKeyClOrdID:
	default:
		err = multierr.Append(err, fmt.Errorf("dedup.key 不支持 %q", c.Dedup.Key))
	}
	if want, ok := brokerDedupKeys[c.BrokerName]; ok && c.Dedup.Key != want {
		err = multierr.Append(err, fmt.Errorf("broker_name=%s 以 %s 作为 ClOrdID，dedup.key 必须为 %q", c.BrokerName, want, want))
	}
	switch c.Session.Store {
	case SessionStoreFile, SessionStoreMemory:
	default:
		err = multierr.Append(err, fmt.Errorf("session.store 不支持 %q", c.Session.Store))
	}
	if c.Session.LogonTimeout < 0 {
		err = multierr.Append(err, errors.New("session.logon_timeout 不能为负"))
	}
	if c.Stream.Buffer <= 0 {
		err = multierr.Append(err, errors.New("stream.buffer 必须大于0"))
	}
	if c.Monitor.Enabled {
		if c.Database.Path == "" && !c.Database.InMemory {
			err = multierr.Append(err, errors.New("database.path 不能为空"))
		}
		if c.Database.MaxOpenConns <= 0 {
			err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
		}
		if c.Database.MaxIdleConns < 0 {
			err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
		}
	}
	if (c.Monitor.Enabled || c.Metrics.Enabled) && (c.Monitor.Port <= 0 || c.Monitor.Port > 65535) {
		err = multierr.Append(err, errors.New("monitor.port 必须位于(0,65535]"))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		err = multierr.Append(err, errors.New("metrics.path 必须以 / 开头"))
	}
	if c.NATS.URL != "" {
		if c.NATS.Subject == "" {
			err = multierr.Append(err, errors.New("nats.subject 不能为空"))
		}
		if c.NATS.PollInterval <= 0 {
			err = multierr.Append(err, errors.New("nats.poll_interval 必须大于0"))
		}
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}

const (
	DedupKeyMessage = "message"
	DedupKeyClOrdID = "cl_ord_id"

	SessionStoreFile   = "file"
	SessionStoreMemory = "memory"
)

// brokerDedupKeys 记录各内置档案的 ClOrdID 来源，去重键必须与之相同。
var brokerDedupKeys = map[string]string{
	"broker1": DedupKeyMessage,
	"broker2": DedupKeyClOrdID,
}
