package fix

import (
	"errors"
	"testing"
	"time"

	"github.com/quickfixgo/quickfix"
)

func newInbound(msgType string, fields map[quickfix.Tag]string) *quickfix.Message {
	msg := quickfix.NewMessage()
	msg.Header.SetField(TagMsgType, quickfix.FIXString(msgType))
	for tag, v := range fields {
		msg.Body.SetField(tag, quickfix.FIXString(v))
	}
	return msg
}

func TestDecodeNotification_ExecutionReport(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	msg := newInbound(MsgTypeExecutionReport, map[quickfix.Tag]string{
		TagOrderID:   "EX-1",
		TagClOrdID:   "order-1",
		TagExecID:    "E1",
		TagExecType:  "0",
		TagOrdStatus: "0",
		TagSymbol:    "USDJPY",
		TagSide:      "1",
		TagLeavesQty: "14",
		TagCumQty:    "0",
		TagAvgPx:     "0",
	})

	n, err := DecodeNotification(msg, at)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n.MsgType != "8" || n.OrderID != "EX-1" || n.ClOrdID != "order-1" {
		t.Errorf("unexpected identity fields: %+v", n)
	}
	if n.Symbol != "USDJPY" || n.LeavesQty != "14" || n.ExecID != "E1" {
		t.Errorf("unexpected report fields: %+v", n)
	}
	if !n.ReceivedAt.Equal(at) {
		t.Errorf("expected received time %v, got %v", at, n.ReceivedAt)
	}
}

func TestDecodeNotification_ExecutionReportRequiresOrderID(t *testing.T) {
	msg := newInbound(MsgTypeExecutionReport, map[quickfix.Tag]string{TagClOrdID: "x"})
	if _, err := DecodeNotification(msg, time.Now()); err == nil {
		t.Fatalf("expected error when order id is missing")
	}
}

func TestDecodeNotification_Rejects(t *testing.T) {
	msg := newInbound(MsgTypeOrderCancelReject, map[quickfix.Tag]string{
		TagOrderID:   "EX-1",
		TagClOrdID:   "cancel-1",
		TagOrdStatus: "8",
		TagText:      "too late",
	})
	n, err := DecodeNotification(msg, time.Now())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n.MsgType != "9" || n.Text != "too late" || n.OrdStatus != "8" {
		t.Errorf("unexpected cancel reject: %+v", n)
	}

	msg = newInbound(MsgTypeBusinessMessageReject, map[quickfix.Tag]string{TagText: "unsupported"})
	n, err = DecodeNotification(msg, time.Now())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n.MsgType != "j" || n.Text != "unsupported" {
		t.Errorf("unexpected business reject: %+v", n)
	}
}

func TestDecodeNotification_Unsupported(t *testing.T) {
	msg := newInbound("W", nil)
	_, err := DecodeNotification(msg, time.Now())
	if !errors.Is(err, ErrUnsupportedMsgType) {
		t.Fatalf("expected ErrUnsupportedMsgType, got %v", err)
	}
}
