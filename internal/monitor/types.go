package monitor

import (
	"time"

	"fixgw/internal/cache"
)

// EventType 表示审计事件类型。
type EventType string

const (
	EventOrderAccepted     EventType = "order_accepted"
	EventOrderDuplicate    EventType = "order_duplicate"
	EventOrderSent         EventType = "order_sent"
	EventSendFailed        EventType = "send_failed"
	EventTranslationFailed EventType = "translation_failed"
	EventErrorNotice       EventType = "error_notice"
	EventExecutionReport   EventType = "execution_report"
	EventSessionLogon      EventType = "session_logon"
	EventSessionLogout     EventType = "session_logout"
)

var knownTypes = map[EventType]struct{}{
	EventOrderAccepted:     {},
	EventOrderDuplicate:    {},
	EventOrderSent:         {},
	EventSendFailed:        {},
	EventTranslationFailed: {},
	EventErrorNotice:       {},
	EventExecutionReport:   {},
	EventSessionLogon:      {},
	EventSessionLogout:     {},
}

// ParseEventType 校验查询参数中的事件类型，空串表示不过滤。
func ParseEventType(s string) (EventType, bool) {
	if s == "" {
		return "", true
	}
	t := EventType(s)
	_, ok := knownTypes[t]
	return t, ok
}

// Event 封装通用审计事件。
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OrderPayload 记录订单在网关内的处理结果。
type OrderPayload struct {
	Key     string `json:"key"`
	ClOrdID string `json:"cl_ord_id,omitempty"`
	MsgType string `json:"msg_type,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NoticePayload 记录带外错误通知。
type NoticePayload struct {
	Notice string `json:"notice"`
}

// SessionPayload 记录会话状态变化。
type SessionPayload struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
}

// NotificationPayload 记录写入事件缓存的通知。
type NotificationPayload struct {
	Sequence     uint64             `json:"sequence"`
	Notification cache.Notification `json:"notification"`
}
