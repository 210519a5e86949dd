package translator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"fixgw/internal/fix"
)

// Profile 为券商的静态默认值，启动后不可变。
type Profile struct {
	Symbol        string
	SymbolPattern *regexp.Regexp
	Side          string
	OrdType       string
	HandlInst     string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	Account       string
	// AllowDefaults 允许请求缺省字段时回退到档案默认值。
	AllowDefaults bool
}

type profileFile struct {
	Symbol        string `yaml:"symbol"`
	SymbolPattern string `yaml:"symbol_pattern"`
	Side          string `yaml:"side"`
	OrdType       string `yaml:"ord_type"`
	HandlInst     string `yaml:"handl_inst"`
	Quantity      string `yaml:"quantity"`
	Price         string `yaml:"price"`
	Account       string `yaml:"account"`
	AllowDefaults bool   `yaml:"allow_defaults"`
}

func defaultProfileFile() profileFile {
	return profileFile{
		Symbol:    "USDJPY",
		Side:      "buy",
		OrdType:   "limit",
		HandlInst: "automated_private",
		Quantity:  "14",
		Price:     "893.123",
		Account:   "fantasy",
	}
}

// DefaultProfile 返回内置默认档案。
func DefaultProfile() Profile {
	p, err := defaultProfileFile().compile()
	if err != nil {
		panic(err)
	}
	return p
}

// LoadProfile 读取 YAML 档案，未出现的键沿用内置默认值。
func LoadProfile(path string) (Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("translator: 读取档案 %s 失败: %w", path, err)
	}

	raw := defaultProfileFile()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Profile{}, fmt.Errorf("translator: 解析档案 %s 失败: %w", path, err)
	}

	p, err := raw.compile()
	if err != nil {
		return Profile{}, fmt.Errorf("translator: 档案 %s 无效: %w", path, err)
	}
	return p, nil
}

func (f profileFile) compile() (Profile, error) {
	var (
		p    = Profile{Symbol: f.Symbol, Account: f.Account, AllowDefaults: f.AllowDefaults}
		errs error
		err  error
	)

	if f.SymbolPattern != "" {
		if p.SymbolPattern, err = regexp.Compile(f.SymbolPattern); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("symbol_pattern: %w", err))
		}
	}
	if p.SymbolPattern != nil && p.Symbol != "" && !p.SymbolPattern.MatchString(p.Symbol) {
		errs = multierr.Append(errs, fmt.Errorf("symbol %q 不匹配 symbol_pattern", p.Symbol))
	}
	if p.Side, err = fix.ParseSide(f.Side); err != nil {
		errs = multierr.Append(errs, err)
	}
	if p.OrdType, err = fix.ParseOrdType(f.OrdType); err != nil {
		errs = multierr.Append(errs, err)
	}
	if p.HandlInst, err = fix.ParseHandlInst(f.HandlInst); err != nil {
		errs = multierr.Append(errs, err)
	}
	if p.Quantity, err = decimal.NewFromString(f.Quantity); err != nil || !p.Quantity.IsPositive() {
		errs = multierr.Append(errs, fmt.Errorf("quantity %q 必须为正数", f.Quantity))
	}
	if f.Price != "" {
		if p.Price, err = decimal.NewFromString(f.Price); err != nil || p.Price.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("price %q 无效", f.Price))
		}
	}
	return p, errs
}
