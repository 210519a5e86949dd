package translator

import (
	"strings"

	"github.com/shopspring/decimal"

	"fixgw/internal/fix"
	"fixgw/internal/rpc"
)

// Broker2 为请求驱动档案：交易要素来自请求，账户与处理指令来自档案。
const Broker2 = "broker2"

func init() {
	Register(Broker2, newRequestTranslator)
}

type requestTranslator struct {
	profile Profile
	clock   Clock
}

func newRequestTranslator(profile Profile, clock Clock) (Translator, error) {
	return &requestTranslator{profile: profile, clock: clock}, nil
}

func (t *requestTranslator) Name() string {
	return Broker2
}

func (t *requestTranslator) Translate(req *rpc.OrderRequest) (fix.Order, error) {
	switch action := actionOf(req); action {
	case rpc.ActionNew:
		return t.newOrder(req)
	case rpc.ActionCancel:
		return t.cancel(req)
	default:
		return nil, fieldError("action", req.Action, ErrUnsupportedAction)
	}
}

func (t *requestTranslator) newOrder(req *rpc.OrderRequest) (fix.Order, error) {
	symbol := orDefault(req.Symbol, t.profile.Symbol, t.profile.AllowDefaults)
	if err := checkSymbol(t.profile, symbol); err != nil {
		return nil, err
	}
	side, err := resolveSide(req.Side, t.profile)
	if err != nil {
		return nil, err
	}
	ordType, err := resolveOrdType(req.OrdType, t.profile)
	if err != nil {
		return nil, err
	}
	qty, err := resolveDecimal("quantity", req.Quantity, t.profile.Quantity, t.profile.AllowDefaults)
	if err != nil {
		return nil, err
	}

	price := decimal.Zero
	if ordType == fix.OrdTypeLimit {
		if price, err = resolveDecimal("price", req.Price, t.profile.Price, t.profile.AllowDefaults); err != nil {
			return nil, err
		}
	}

	return &fix.NewOrderSingle{
		ClOrdID:      clientOrderID(req.ClOrdID),
		HandlInst:    t.profile.HandlInst,
		Symbol:       symbol,
		Side:         side,
		TransactTime: t.clock(),
		OrdType:      ordType,
		OrderQty:     qty,
		Price:        price,
		Account:      t.profile.Account,
	}, nil
}

func (t *requestTranslator) cancel(req *rpc.OrderRequest) (fix.Order, error) {
	orig := strings.TrimSpace(req.OrigClOrdID)
	if orig == "" {
		return nil, fieldError("orig_cl_ord_id", req.OrigClOrdID, ErrMissingValue)
	}
	symbol := orDefault(req.Symbol, t.profile.Symbol, t.profile.AllowDefaults)
	if err := checkSymbol(t.profile, symbol); err != nil {
		return nil, err
	}
	side, err := resolveSide(req.Side, t.profile)
	if err != nil {
		return nil, err
	}
	qty, err := resolveDecimal("quantity", req.Quantity, t.profile.Quantity, t.profile.AllowDefaults)
	if err != nil {
		return nil, err
	}

	return &fix.OrderCancelRequest{
		OrigClOrdID:  orig,
		ClOrdID:      clientOrderID(req.ClOrdID),
		Symbol:       symbol,
		Side:         side,
		TransactTime: t.clock(),
		OrderQty:     qty,
		Account:      t.profile.Account,
	}, nil
}
