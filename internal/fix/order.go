package fix

import (
	"time"

	"github.com/quickfixgo/quickfix"
	"github.com/shopspring/decimal"
)

// Order 为翻译完成、可直接发送到会话的协议订单。
type Order interface {
	quickfix.Messagable
	// MsgType 返回 35 字段取值。
	MsgType() string
	// ClientOrderID 返回 11 字段取值。
	ClientOrderID() string
}

// NewOrderSingle 对应 35=D。
type NewOrderSingle struct {
	ClOrdID      string
	HandlInst    string
	Symbol       string
	Side         string
	TransactTime time.Time
	OrdType      string
	OrderQty     decimal.Decimal
	// Price 仅限价单写出。
	Price   decimal.Decimal
	Account string
}

func (o *NewOrderSingle) MsgType() string       { return MsgTypeNewOrderSingle }
func (o *NewOrderSingle) ClientOrderID() string { return o.ClOrdID }

// ToMessage 实现 quickfix.Messagable，会话头由 SendToTarget 补全。
func (o *NewOrderSingle) ToMessage() *quickfix.Message {
	msg := quickfix.NewMessage()
	msg.Header.SetField(TagMsgType, quickfix.FIXString(MsgTypeNewOrderSingle))

	msg.Body.SetField(TagClOrdID, quickfix.FIXString(o.ClOrdID))
	msg.Body.SetField(TagHandlInst, quickfix.FIXString(o.HandlInst))
	msg.Body.SetField(TagSymbol, quickfix.FIXString(o.Symbol))
	msg.Body.SetField(TagSide, quickfix.FIXString(o.Side))
	msg.Body.SetField(TagTransactTime, timestamp(o.TransactTime))
	msg.Body.SetField(TagOrdType, quickfix.FIXString(o.OrdType))
	msg.Body.SetField(TagOrderQty, decimalField(o.OrderQty))
	if o.OrdType == OrdTypeLimit {
		msg.Body.SetField(TagPrice, decimalField(o.Price))
	}
	if o.Account != "" {
		msg.Body.SetField(TagAccount, quickfix.FIXString(o.Account))
	}
	return msg
}

// OrderCancelRequest 对应 35=F。
type OrderCancelRequest struct {
	OrigClOrdID  string
	ClOrdID      string
	Symbol       string
	Side         string
	TransactTime time.Time
	OrderQty     decimal.Decimal
	Account      string
}

func (o *OrderCancelRequest) MsgType() string       { return MsgTypeOrderCancelRequest }
func (o *OrderCancelRequest) ClientOrderID() string { return o.ClOrdID }

// ToMessage 实现 quickfix.Messagable。
func (o *OrderCancelRequest) ToMessage() *quickfix.Message {
	msg := quickfix.NewMessage()
	msg.Header.SetField(TagMsgType, quickfix.FIXString(MsgTypeOrderCancelRequest))

	msg.Body.SetField(TagOrigClOrdID, quickfix.FIXString(o.OrigClOrdID))
	msg.Body.SetField(TagClOrdID, quickfix.FIXString(o.ClOrdID))
	msg.Body.SetField(TagSymbol, quickfix.FIXString(o.Symbol))
	msg.Body.SetField(TagSide, quickfix.FIXString(o.Side))
	msg.Body.SetField(TagTransactTime, timestamp(o.TransactTime))
	msg.Body.SetField(TagOrderQty, decimalField(o.OrderQty))
	if o.Account != "" {
		msg.Body.SetField(TagAccount, quickfix.FIXString(o.Account))
	}
	return msg
}

func timestamp(t time.Time) quickfix.FIXUTCTimestamp {
	return quickfix.FIXUTCTimestamp{Time: t.UTC(), Precision: quickfix.Millis}
}

func decimalField(d decimal.Decimal) quickfix.FIXDecimal {
	scale := int32(0)
	if exp := d.Exponent(); exp < 0 {
		scale = -exp
	}
	return quickfix.FIXDecimal{Decimal: d, Scale: scale}
}
