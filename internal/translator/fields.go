package translator

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fixgw/internal/fix"
	"fixgw/internal/rpc"
)

var (
	errSymbolPattern = errors.New("不匹配档案的 symbol_pattern")
	errNotPositive   = errors.New("必须大于 0")
)

func actionOf(req *rpc.OrderRequest) string {
	a := strings.ToLower(strings.TrimSpace(req.Action))
	if a == "" {
		return rpc.ActionNew
	}
	return a
}

// orDefault 在请求值为空且档案允许时回退到默认值。
func orDefault(value, fallback string, allow bool) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	if allow {
		return fallback
	}
	return ""
}

func checkSymbol(p Profile, symbol string) error {
	if symbol == "" {
		return fieldError("symbol", symbol, ErrMissingValue)
	}
	if p.SymbolPattern != nil && !p.SymbolPattern.MatchString(symbol) {
		return fieldError("symbol", symbol, errSymbolPattern)
	}
	return nil
}

func resolveSide(value string, p Profile) (string, error) {
	v := orDefault(value, p.Side, p.AllowDefaults)
	if v == "" {
		return "", fieldError("side", value, ErrMissingValue)
	}
	side, err := fix.ParseSide(v)
	if err != nil {
		return "", fieldError("side", value, err)
	}
	return side, nil
}

func resolveOrdType(value string, p Profile) (string, error) {
	v := orDefault(value, p.OrdType, p.AllowDefaults)
	if v == "" {
		return "", fieldError("ord_type", value, ErrMissingValue)
	}
	ordType, err := fix.ParseOrdType(v)
	if err != nil {
		return "", fieldError("ord_type", value, err)
	}
	return ordType, nil
}

func resolveDecimal(field, value string, fallback decimal.Decimal, allow bool) (decimal.Decimal, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		if allow && fallback.IsPositive() {
			return fallback, nil
		}
		return decimal.Zero, fieldError(field, value, ErrMissingValue)
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fieldError(field, value, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fieldError(field, value, errNotPositive)
	}
	return d, nil
}

func clientOrderID(value string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return uuid.NewString()
}
