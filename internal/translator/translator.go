// Package translator 将通用下单请求翻译为特定券商的 FIX 订单。
// 每个券商档案在 init 中注册，按配置的 broker_name 在启动时选定。
package translator

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"fixgw/internal/fix"
	"fixgw/internal/rpc"
)

var (
	// ErrMissingValue 表示必需字段没有取值，且档案不提供默认值。
	ErrMissingValue = errors.New("缺少取值")
	// ErrUnsupportedAction 表示档案不支持该订单动作。
	ErrUnsupportedAction = errors.New("不支持的订单动作")
	// ErrUnknownProfile 表示 broker_name 未注册。
	ErrUnknownProfile = errors.New("translator: 未注册的券商档案")
)

// TranslationError 指明翻译失败的字段。
type TranslationError struct {
	Field string
	Value string
	Err   error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translator: 字段 %s=%q 无效: %v", e.Field, e.Value, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

func fieldError(field, value string, err error) error {
	return &TranslationError{Field: field, Value: value, Err: err}
}

// Translator 为券商翻译器。实现不得持有可变共享状态。
type Translator interface {
	Name() string
	// Translate 返回完整校验过的订单；任一字段无效即失败，不返回半成品。
	Translate(req *rpc.OrderRequest) (fix.Order, error)
}

// Clock 提供 TransactTime。
type Clock func() time.Time

// Factory 由档案构造翻译器。
type Factory func(profile Profile, clock Clock) (Translator, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register 注册券商档案，同名重复注册会 panic。
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("translator: factory 不能为空")
	}
	if _, exists := registry[name]; exists {
		panic("translator: 重复注册档案 " + name)
	}
	registry[name] = factory
}

// Names 返回已注册的档案名，按字母排序。
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New 加载档案文件并构造指定名称的翻译器。profilePath 为空时使用内置默认档案。
func New(name, profilePath string, clock Clock) (Translator, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q（可选: %v）", ErrUnknownProfile, name, Names())
	}

	profile, err := LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}

	t, err := factory(profile, clock)
	if err != nil {
		return nil, fmt.Errorf("translator: 构造 %s 失败: %w", name, err)
	}
	return t, nil
}
