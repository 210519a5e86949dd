package translator

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixgw/internal/fix"
	"fixgw/internal/rpc"
)

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.UTC)

func fixedClock() time.Time { return fixedNow }

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func requireFieldError(t *testing.T, err error, field string) *TranslationError {
	t.Helper()
	var te *TranslationError
	require.True(t, errors.As(err, &te), "expected TranslationError, got %v", err)
	assert.Equal(t, field, te.Field)
	return te
}

func TestRegistry_KnowsBothProfiles(t *testing.T) {
	assert.Equal(t, []string{Broker1, Broker2}, Names())

	_, err := New("broker9", "", fixedClock)
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestRegister_DuplicatePanics(t *testing.T) {
	assert.Panics(t, func() { Register(Broker1, newStaticTranslator) })
}

func TestBroker1_UsesStaticDefaults(t *testing.T) {
	tr, err := New(Broker1, "", fixedClock)
	require.NoError(t, err)
	assert.Equal(t, Broker1, tr.Name())

	order, err := tr.Translate(&rpc.OrderRequest{Message: "A"})
	require.NoError(t, err)

	nos, ok := order.(*fix.NewOrderSingle)
	require.True(t, ok)
	assert.Equal(t, "A", nos.ClOrdID)
	assert.Equal(t, "USDJPY", nos.Symbol)
	assert.Equal(t, fix.SideBuy, nos.Side)
	assert.Equal(t, fix.OrdTypeLimit, nos.OrdType)
	assert.Equal(t, fix.HandlInstAutomatedPrivate, nos.HandlInst)
	assert.True(t, decimal.RequireFromString("14").Equal(nos.OrderQty))
	assert.True(t, decimal.RequireFromString("893.123").Equal(nos.Price))
	assert.Equal(t, "fantasy", nos.Account)
	assert.Equal(t, fixedNow, nos.TransactTime)
}

func TestBroker1_RejectsCancelAndEmptyMessage(t *testing.T) {
	tr, err := New(Broker1, "", fixedClock)
	require.NoError(t, err)

	_, err = tr.Translate(&rpc.OrderRequest{Message: "A", Action: rpc.ActionCancel})
	te := requireFieldError(t, err, "action")
	assert.ErrorIs(t, te, ErrUnsupportedAction)

	_, err = tr.Translate(&rpc.OrderRequest{Message: "  "})
	requireFieldError(t, err, "message")
}

func TestBroker1_ClOrdIDIsRawMessage(t *testing.T) {
	tr, err := New(Broker1, "", fixedClock)
	require.NoError(t, err)

	a, err := tr.Translate(&rpc.OrderRequest{Message: "A"})
	require.NoError(t, err)
	padded, err := tr.Translate(&rpc.OrderRequest{Message: "A "})
	require.NoError(t, err)

	assert.Equal(t, "A", a.ClientOrderID())
	assert.Equal(t, "A ", padded.ClientOrderID())
}

func TestBroker1_ProfileSymbolMustMatchPattern(t *testing.T) {
	path := writeProfile(t, "symbol: USD/JPY\nsymbol_pattern: '^[A-Z]{6}$'\n")
	_, err := New(Broker1, path, fixedClock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol_pattern")
}

func TestLoadProfile_OverridesAndUnknownKeys(t *testing.T) {
	path := writeProfile(t, "symbol: EURUSD\naccount: acct-7\nprice: \"1.0850\"\n")
	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", p.Symbol)
	assert.Equal(t, "acct-7", p.Account)
	assert.True(t, decimal.RequireFromString("1.085").Equal(p.Price))
	assert.Equal(t, fix.SideBuy, p.Side)

	bad := writeProfile(t, "symbl: EURUSD\n")
	_, err = LoadProfile(bad)
	require.Error(t, err)

	invalid := writeProfile(t, "side: short\nquantity: \"-1\"\n")
	_, err = LoadProfile(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short")
	assert.Contains(t, err.Error(), "quantity")

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func newBroker2(t *testing.T, body string) Translator {
	t.Helper()
	tr, err := New(Broker2, writeProfile(t, body), fixedClock)
	require.NoError(t, err)
	return tr
}

func TestBroker2_NewOrderFromRequest(t *testing.T) {
	tr := newBroker2(t, "symbol_pattern: '^[A-Z]{6}$'\naccount: desk-2\nhandl_inst: manual\n")

	order, err := tr.Translate(&rpc.OrderRequest{
		Message:  "m1",
		ClOrdID:  "c-1",
		Symbol:   "EURUSD",
		Side:     "sell",
		OrdType:  "limit",
		Quantity: "2.5",
		Price:    "1.0850",
	})
	require.NoError(t, err)

	nos := order.(*fix.NewOrderSingle)
	assert.Equal(t, "c-1", nos.ClientOrderID())
	assert.Equal(t, "EURUSD", nos.Symbol)
	assert.Equal(t, fix.SideSell, nos.Side)
	assert.Equal(t, fix.HandlInstManual, nos.HandlInst)
	assert.Equal(t, "desk-2", nos.Account)
	assert.True(t, decimal.RequireFromString("2.5").Equal(nos.OrderQty))
	assert.True(t, decimal.RequireFromString("1.085").Equal(nos.Price))
}

func TestBroker2_GeneratesClOrdID(t *testing.T) {
	tr := newBroker2(t, "allow_defaults: true\n")
	order, err := tr.Translate(&rpc.OrderRequest{Message: "m1"})
	require.NoError(t, err)

	_, err = uuid.Parse(order.ClientOrderID())
	assert.NoError(t, err)
	assert.Equal(t, "USDJPY", order.(*fix.NewOrderSingle).Symbol)
}

func TestBroker2_FieldValidation(t *testing.T) {
	tr := newBroker2(t, "symbol_pattern: '^[A-Z]{6}$'\n")

	cases := []struct {
		name  string
		req   rpc.OrderRequest
		field string
	}{
		{"malformed symbol", rpc.OrderRequest{Symbol: "usd-jpy", Side: "buy", OrdType: "market", Quantity: "1"}, "symbol"},
		{"missing symbol", rpc.OrderRequest{Side: "buy", OrdType: "market", Quantity: "1"}, "symbol"},
		{"bad side", rpc.OrderRequest{Symbol: "USDJPY", Side: "hold", OrdType: "market", Quantity: "1"}, "side"},
		{"bad ord type", rpc.OrderRequest{Symbol: "USDJPY", Side: "buy", OrdType: "stop", Quantity: "1"}, "ord_type"},
		{"zero quantity", rpc.OrderRequest{Symbol: "USDJPY", Side: "buy", OrdType: "market", Quantity: "0"}, "quantity"},
		{"garbage quantity", rpc.OrderRequest{Symbol: "USDJPY", Side: "buy", OrdType: "market", Quantity: "ten"}, "quantity"},
		{"limit without price", rpc.OrderRequest{Symbol: "USDJPY", Side: "buy", OrdType: "limit", Quantity: "1"}, "price"},
		{"unknown action", rpc.OrderRequest{Action: "replace"}, "action"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := tr.Translate(&tc.req)
			assert.Nil(t, order)
			requireFieldError(t, err, tc.field)
		})
	}
}

func TestBroker2_Cancel(t *testing.T) {
	tr := newBroker2(t, "allow_defaults: true\n")

	order, err := tr.Translate(&rpc.OrderRequest{
		Action:      rpc.ActionCancel,
		OrigClOrdID: "c-1",
		ClOrdID:     "c-2",
	})
	require.NoError(t, err)
	cancel := order.(*fix.OrderCancelRequest)
	assert.Equal(t, fix.MsgTypeOrderCancelRequest, cancel.MsgType())
	assert.Equal(t, "c-1", cancel.OrigClOrdID)
	assert.Equal(t, "c-2", cancel.ClOrdID)
	assert.Equal(t, fixedNow, cancel.TransactTime)

	_, err = tr.Translate(&rpc.OrderRequest{Action: rpc.ActionCancel})
	requireFieldError(t, err, "orig_cl_ord_id")
}

func TestBroker2_ConcurrentTranslate(t *testing.T) {
	tr := newBroker2(t, "allow_defaults: true\n")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tr.Translate(&rpc.OrderRequest{Symbol: "GBPUSD"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
