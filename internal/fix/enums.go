package fix

import (
	"fmt"
	"strings"
)

// ParseSide 接受 buy/sell 或 FIX 原值 1/2。
func ParseSide(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "buy", SideBuy:
		return SideBuy, nil
	case "sell", SideSell:
		return SideSell, nil
	default:
		return "", fmt.Errorf("fix: 未知的买卖方向 %q", v)
	}
}

// ParseOrdType 接受 market/limit 或 FIX 原值 1/2。
func ParseOrdType(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "market", OrdTypeMarket:
		return OrdTypeMarket, nil
	case "limit", OrdTypeLimit:
		return OrdTypeLimit, nil
	default:
		return "", fmt.Errorf("fix: 未知的订单类型 %q", v)
	}
}

// ParseHandlInst 接受 automated_private/automated_public/manual 或 FIX 原值 1/2/3。
func ParseHandlInst(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "automated_private", HandlInstAutomatedPrivate:
		return HandlInstAutomatedPrivate, nil
	case "automated_public", HandlInstAutomatedPublic:
		return HandlInstAutomatedPublic, nil
	case "manual", HandlInstManual:
		return HandlInstManual, nil
	default:
		return "", fmt.Errorf("fix: 未知的处理指令 %q", v)
	}
}
