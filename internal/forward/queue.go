// Package forward 实现 RPC 与 FIX 会话之间的唯一交接点：无界 FIFO 队列与单消费者转发管道。
package forward

import (
	"errors"
	"sync"
	"time"

	"fixgw/internal/rpc"
)

// ErrQueueClosed 表示管道已停止接收新请求。
var ErrQueueClosed = errors.New("forward: 队列已关闭")

// Kind 区分转发请求的两种变体。
type Kind int

const (
	KindOrder Kind = iota
	KindErrorNotice
)

func (k Kind) String() string {
	if k == KindErrorNotice {
		return "error_notice"
	}
	return "order"
}

// Request 为转发请求：订单请求或带外错误通知，只被消费一次。
type Request struct {
	Kind Kind
	// Key 为去重键，仅订单请求有效。
	Key        string
	Order      *rpc.OrderRequest
	Notice     string
	EnqueuedAt time.Time
}

// NewOrder 构造订单请求。
func NewOrder(key string, order *rpc.OrderRequest) Request {
	return Request{Kind: KindOrder, Key: key, Order: order, EnqueuedAt: time.Now()}
}

// NewErrorNotice 构造错误通知。
func NewErrorNotice(notice string) Request {
	return Request{Kind: KindErrorNotice, Notice: notice, EnqueuedAt: time.Now()}
}

// compactThreshold 以上的已出队槽位会被回收。
const compactThreshold = 1024

// Queue 为无界 FIFO 队列，生产者从不阻塞。
type Queue struct {
	mu     sync.Mutex
	items  []Request
	head   int
	closed bool
}

// NewQueue 创建空队列。
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue 追加到队尾，队列关闭后返回 ErrQueueClosed。
func (q *Queue) Enqueue(r Request) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, r)
	return nil
}

// PushFront 将请求放回队首，用于发送前发现会话断开的延后处理。
func (q *Queue) PushFront(r Request) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head > 0 {
		q.head--
		q.items[q.head] = r
		return
	}
	q.items = append(q.items, Request{})
	copy(q.items[1:], q.items)
	q.items[0] = r
}

// TryDequeue 取出队首请求，队列为空时返回 false。
func (q *Queue) TryDequeue() (Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.items) {
		return Request{}, false
	}
	r := q.items[q.head]
	q.items[q.head] = Request{}
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return r, true
}

// Len 返回待处理请求数。
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Close 拒绝后续 Enqueue，已入队的请求保留。
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
