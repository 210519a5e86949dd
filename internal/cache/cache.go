// Package cache 保存来自 FIX 会话的通知，按到达顺序分配连续序号，供多个读者按游标拉取。
package cache

import (
	"sync"
	"time"
)

// Notification 为一条入站会话通知，通常来自执行回报。
type Notification struct {
	MsgType    string    `json:"msg_type"`
	OrderID    string    `json:"order_id,omitempty"`
	ClOrdID    string    `json:"cl_ord_id,omitempty"`
	ExecID     string    `json:"exec_id,omitempty"`
	ExecType   string    `json:"exec_type,omitempty"`
	OrdStatus  string    `json:"ord_status,omitempty"`
	Symbol     string    `json:"symbol,omitempty"`
	Side       string    `json:"side,omitempty"`
	LeavesQty  string    `json:"leaves_qty,omitempty"`
	CumQty     string    `json:"cum_qty,omitempty"`
	AvgPx      string    `json:"avg_px,omitempty"`
	Text       string    `json:"text,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Entry 为带序号的缓存条目，写入后不可变。
type Entry struct {
	Sequence     uint64       `json:"sequence"`
	Notification Notification `json:"notification"`
}

// Cache 为单写多读的追加日志。序号从 1 开始连续递增，永不复用。
type Cache struct {
	mu         sync.RWMutex
	entries    []Entry
	next       uint64
	maxEntries int
}

// New 创建缓存，maxEntries 为 0 表示不淘汰。
func New(maxEntries int) *Cache {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &Cache{
		next:       1,
		maxEntries: maxEntries,
	}
}

// Append 写入一条通知并返回分配的序号。
func (c *Cache) Append(n Notification) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq := c.next
	c.next++
	c.entries = append(c.entries, Entry{Sequence: seq, Notification: n})

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		// 底层数组在下次扩容时只复制保留部分。
		c.entries = c.entries[len(c.entries)-c.maxEntries:]
	}

	return seq
}

// ReadFrom 返回序号 >= cursor 的全部条目，按序号升序。游标早于最旧保留条目时从最旧条目开始。
func (c *Cache) ReadFrom(cursor uint64) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 || cursor >= c.next {
		return nil
	}

	first := c.entries[0].Sequence
	start := 0
	if cursor > first {
		start = int(cursor - first)
	}

	out := make([]Entry, len(c.entries)-start)
	copy(out, c.entries[start:])
	return out
}

// Len 返回当前保留的条目数。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// LastSequence 返回最近分配的序号，尚无条目时为 0。
func (c *Cache) LastSequence() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.next - 1
}
