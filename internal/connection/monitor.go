// Package connection 跟踪 FIX 会话的登录状态。
package connection

import "sync/atomic"

// State 为会话的逻辑状态。
type State int32

const (
	Down State = iota
	Up
)

func (s State) String() string {
	if s == Up {
		return "up"
	}
	return "down"
}

// Monitor 保存进程内唯一的会话状态标志，初始为 Down。
// 只由会话回调写入，转发管道轮询读取，不提供唤醒通知。
type Monitor struct {
	up atomic.Bool
}

// NewMonitor 创建处于 Down 状态的监视器。
func NewMonitor() *Monitor {
	return &Monitor{}
}

// SetUp 在登录回调中调用。
func (m *Monitor) SetUp() {
	m.up.Store(true)
}

// SetDown 在登出回调中调用。
func (m *Monitor) SetDown() {
	m.up.Store(false)
}

// IsUp 报告会话当前是否已登录。
func (m *Monitor) IsUp() bool {
	return m.up.Load()
}

// State 返回当前状态。
func (m *Monitor) State() State {
	if m.up.Load() {
		return Up
	}
	return Down
}
