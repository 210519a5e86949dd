// Package fix 构造出站订单消息并解码入站应用消息，只依赖 quickfix 根包的通用字段类型。
package fix

import "github.com/quickfixgo/quickfix"

// FIX 4.2 中网关用到的字段号。
const (
	TagAccount      quickfix.Tag = 1
	TagAvgPx        quickfix.Tag = 6
	TagClOrdID      quickfix.Tag = 11
	TagCumQty       quickfix.Tag = 14
	TagExecID       quickfix.Tag = 17
	TagHandlInst    quickfix.Tag = 21
	TagMsgType      quickfix.Tag = 35
	TagOrderID      quickfix.Tag = 37
	TagOrderQty     quickfix.Tag = 38
	TagOrdStatus    quickfix.Tag = 39
	TagOrdType      quickfix.Tag = 40
	TagOrigClOrdID  quickfix.Tag = 41
	TagPrice        quickfix.Tag = 44
	TagRefSeqNum    quickfix.Tag = 45
	TagSide         quickfix.Tag = 54
	TagSymbol       quickfix.Tag = 55
	TagText         quickfix.Tag = 58
	TagTransactTime quickfix.Tag = 60
	TagExecType     quickfix.Tag = 150
	TagLeavesQty    quickfix.Tag = 151
	TagCxlRejReason quickfix.Tag = 102
)

// 消息类型。
const (
	MsgTypeExecutionReport       = "8"
	MsgTypeOrderCancelReject     = "9"
	MsgTypeNewOrderSingle        = "D"
	MsgTypeOrderCancelRequest    = "F"
	MsgTypeBusinessMessageReject = "j"
)

// Side 取值。
const (
	SideBuy  = "1"
	SideSell = "2"
)

// OrdType 取值。
const (
	OrdTypeMarket = "1"
	OrdTypeLimit  = "2"
)

// HandlInst 取值。
const (
	HandlInstAutomatedPrivate = "1"
	HandlInstAutomatedPublic  = "2"
	HandlInstManual           = "3"
)
