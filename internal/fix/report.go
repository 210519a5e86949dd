package fix

import (
	"errors"
	"fmt"
	"time"

	"github.com/quickfixgo/quickfix"

	"fixgw/internal/cache"
)

// ErrUnsupportedMsgType 表示该应用消息不会进入事件缓存。
var ErrUnsupportedMsgType = errors.New("fix: 不支持的消息类型")

// DecodeNotification 将执行报告、撤单拒绝和业务拒绝解码为通知。
func DecodeNotification(msg *quickfix.Message, receivedAt time.Time) (cache.Notification, error) {
	msgType, err := msg.Header.GetString(TagMsgType)
	if err != nil {
		return cache.Notification{}, fmt.Errorf("fix: 读取消息类型失败: %w", err)
	}

	n := cache.Notification{
		MsgType:    msgType,
		ClOrdID:    bodyString(msg, TagClOrdID),
		OrderID:    bodyString(msg, TagOrderID),
		Text:       bodyString(msg, TagText),
		ReceivedAt: receivedAt,
	}

	switch msgType {
	case MsgTypeExecutionReport:
		if n.OrderID == "" {
			return cache.Notification{}, fmt.Errorf("fix: 执行报告缺少 OrderID(%d)", TagOrderID)
		}
		n.ExecID = bodyString(msg, TagExecID)
		n.ExecType = bodyString(msg, TagExecType)
		n.OrdStatus = bodyString(msg, TagOrdStatus)
		n.Symbol = bodyString(msg, TagSymbol)
		n.Side = bodyString(msg, TagSide)
		n.LeavesQty = bodyString(msg, TagLeavesQty)
		n.CumQty = bodyString(msg, TagCumQty)
		n.AvgPx = bodyString(msg, TagAvgPx)
	case MsgTypeOrderCancelReject:
		n.OrdStatus = bodyString(msg, TagOrdStatus)
	case MsgTypeBusinessMessageReject:
	default:
		return cache.Notification{}, fmt.Errorf("%w: %s", ErrUnsupportedMsgType, msgType)
	}
	return n, nil
}

func bodyString(msg *quickfix.Message, tag quickfix.Tag) string {
	v, err := msg.Body.GetString(tag)
	if err != nil {
		return ""
	}
	return v
}
