package translator

import (
	"errors"
	"strings"

	"fixgw/internal/fix"
	"fixgw/internal/rpc"
)

// Broker1 为静态档案：请求只提供订单号，其余字段全部来自档案。
const Broker1 = "broker1"

func init() {
	Register(Broker1, newStaticTranslator)
}

type staticTranslator struct {
	profile Profile
	clock   Clock
}

func newStaticTranslator(profile Profile, clock Clock) (Translator, error) {
	if profile.Symbol == "" {
		return nil, errors.New("静态档案必须配置 symbol")
	}
	if profile.OrdType == fix.OrdTypeLimit && !profile.Price.IsPositive() {
		return nil, errors.New("静态限价档案必须配置 price")
	}
	return &staticTranslator{profile: profile, clock: clock}, nil
}

func (t *staticTranslator) Name() string {
	return Broker1
}

// Translate 以请求原文（不做裁剪，与去重键一致）作为 ClOrdID，只支持新单。
func (t *staticTranslator) Translate(req *rpc.OrderRequest) (fix.Order, error) {
	if action := actionOf(req); action != rpc.ActionNew {
		return nil, fieldError("action", req.Action, ErrUnsupportedAction)
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, fieldError("message", req.Message, ErrMissingValue)
	}
	clOrdID := req.Message
	if err := checkSymbol(t.profile, t.profile.Symbol); err != nil {
		return nil, err
	}

	return &fix.NewOrderSingle{
		ClOrdID:      clOrdID,
		HandlInst:    t.profile.HandlInst,
		Symbol:       t.profile.Symbol,
		Side:         t.profile.Side,
		TransactTime: t.clock(),
		OrdType:      t.profile.OrdType,
		OrderQty:     t.profile.Quantity,
		Price:        t.profile.Price,
		Account:      t.profile.Account,
	}, nil
}
