package fixsession

import (
	"errors"
	"fmt"

	"github.com/quickfixgo/quickfix"

	"fixgw/internal/fix"
)

var (
	// ErrInvalidSessionID 表示会话三元组不完整或未在引擎配置中声明。
	ErrInvalidSessionID = errors.New("fixsession: 无效的会话标识")
	// ErrNotLoggedOn 表示等待首次登录超时。
	ErrNotLoggedOn = errors.New("fixsession: 会话未登录")
)

// NewSessionID 由 begin_string/sender_comp_id/target_comp_id 构造会话标识。
func NewSessionID(beginString, senderCompID, targetCompID string) (quickfix.SessionID, error) {
	if beginString == "" || senderCompID == "" || targetCompID == "" {
		return quickfix.SessionID{}, fmt.Errorf("%w: begin_string=%q sender_comp_id=%q target_comp_id=%q",
			ErrInvalidSessionID, beginString, senderCompID, targetCompID)
	}
	return quickfix.SessionID{
		BeginString:  beginString,
		SenderCompID: senderCompID,
		TargetCompID: targetCompID,
	}, nil
}

// Sender 将订单发往固定会话。
type Sender struct {
	sessionID quickfix.SessionID
	send      func(quickfix.Messagable, quickfix.SessionID) error
}

// NewSender 创建基于 quickfix.SendToTarget 的发送器。
func NewSender(sessionID quickfix.SessionID) *Sender {
	return &Sender{sessionID: sessionID, send: quickfix.SendToTarget}
}

// Send 提交订单，会话头由引擎补全。
func (s *Sender) Send(order fix.Order) error {
	if err := s.send(order, s.sessionID); err != nil {
		return fmt.Errorf("fixsession: 发送 %s(%s) 失败: %w", order.MsgType(), order.ClientOrderID(), err)
	}
	return nil
}
