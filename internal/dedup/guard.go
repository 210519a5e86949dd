// Package dedup 拒绝重复提交的订单键。
package dedup

import "sync"

// Guard 记录已接受的订单键，集合只增不减。
type Guard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewGuard 创建空的去重集合。
func NewGuard() *Guard {
	return &Guard{keys: make(map[string]struct{})}
}

// CheckAndInsert 在 key 已存在时返回 true（重复，应拒绝），否则记录 key 并返回 false。
// 检查与插入在同一把锁内完成。
func (g *Guard) CheckAndInsert(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.keys[key]; ok {
		return true
	}
	g.keys[key] = struct{}{}
	return false
}

// Remove 撤销一次未能入队的受理，使同一键可以重试。
func (g *Guard) Remove(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
}

// Len 返回已记录的键数量。
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.keys)
}
