// Package rpc 定义网关对外的 gRPC 服务：消息结构、JSON 编解码器与服务描述。
package rpc

import "fixgw/internal/cache"

// 订单动作。
const (
	ActionNew    = "new"
	ActionCancel = "cancel"
)

// 应答状态。
const (
	StatusAccepted     = "accepted"
	StatusDuplicate    = "duplicate"
	StatusNotification = "notification"
	StatusSummary      = "summary"
	StatusRejected     = "rejected"
)

// OrderRequest 为通用下单请求。Message 为原始请求内容，默认同时作为去重键。
// 数量与价格使用十进制字符串，由翻译层解析校验。
type OrderRequest struct {
	Message     string `json:"message"`
	ClOrdID     string `json:"cl_ord_id,omitempty"`
	OrigClOrdID string `json:"orig_cl_ord_id,omitempty"`
	Action      string `json:"action,omitempty"`
	Symbol      string `json:"symbol,omitempty"`
	Side        string `json:"side,omitempty"`
	OrdType     string `json:"ord_type,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	Price       string `json:"price,omitempty"`
	Account     string `json:"account,omitempty"`

	// Cursor 仅用于 ServerStream，表示起始序号，0 表示从头开始。
	Cursor uint64 `json:"cursor,omitempty"`
}

// OrderResponse 为通用应答。
type OrderResponse struct {
	Message      string              `json:"message"`
	Status       string              `json:"status,omitempty"`
	Sequence     uint64              `json:"sequence,omitempty"`
	Notification *cache.Notification `json:"notification,omitempty"`
	Received     int                 `json:"received,omitempty"`
	Accepted     int                 `json:"accepted,omitempty"`
	Duplicates   int                 `json:"duplicates,omitempty"`
	Rejected     int                 `json:"rejected,omitempty"`
}
