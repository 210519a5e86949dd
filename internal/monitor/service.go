// Package monitor 将网关事件写入 SQLite 审计日志，并支持按类型查询。
package monitor

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fixgw/internal/cache"
	"fixgw/internal/fix"
	"fixgw/internal/store"
)

const defaultListLimit = 100

// Service 负责持久化审计事件。
type Service struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewService 初始化审计服务，创建所需表结构。
func NewService(store *store.Store, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("monitor: store 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		db:     store.DB(),
		logger: logger.Named("monitor"),
		now:    func() time.Time { return time.Now().UTC() },
	}

	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) initSchema() error {
	stmt := `
CREATE TABLE IF NOT EXISTS gateway_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gateway_events_type ON gateway_events(event_type);
`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("monitor: 初始化表失败: %w", err)
	}
	return nil
}

// Record 写入单个事件。
func (s *Service) Record(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("monitor: 序列化事件失败: %w", err)
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO gateway_events (event_type, payload, created_at) VALUES (?, ?, ?)`,
		string(event.Type), string(payload), event.Timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("monitor: 写入事件失败: %w", err)
	}

	return nil
}

func (s *Service) record(ctx context.Context, typ EventType, payload interface{}) {
	if err := s.Record(ctx, Event{Type: typ, Payload: payload}); err != nil {
		s.logger.Warn("记录审计事件失败", zap.String("type", string(typ)), zap.Error(err))
	}
}

// RecordOrderAccepted 记录通过去重并入队的订单。
func (s *Service) RecordOrderAccepted(ctx context.Context, key, clOrdID string) {
	s.record(ctx, EventOrderAccepted, OrderPayload{Key: key, ClOrdID: clOrdID})
}

// RecordOrderDuplicate 记录被去重拒绝的订单。
func (s *Service) RecordOrderDuplicate(ctx context.Context, key string) {
	s.record(ctx, EventOrderDuplicate, OrderPayload{Key: key})
}

func (s *Service) RecordOrderSent(ctx context.Context, key string, order fix.Order) {
	s.record(ctx, EventOrderSent, OrderPayload{
		Key:     key,
		ClOrdID: order.ClientOrderID(),
		MsgType: order.MsgType(),
	})
}

func (s *Service) RecordSendFailed(ctx context.Context, key string, order fix.Order, err error) {
	s.record(ctx, EventSendFailed, OrderPayload{
		Key:     key,
		ClOrdID: order.ClientOrderID(),
		MsgType: order.MsgType(),
		Error:   err.Error(),
	})
}

func (s *Service) RecordTranslationFailed(ctx context.Context, key string, err error) {
	s.record(ctx, EventTranslationFailed, OrderPayload{Key: key, Error: err.Error()})
}

func (s *Service) RecordErrorNotice(ctx context.Context, notice string) {
	s.record(ctx, EventErrorNotice, NoticePayload{Notice: notice})
}

// RecordSession 记录登录与登出。
func (s *Service) RecordSession(ctx context.Context, sessionID string, up bool) {
	typ, state := EventSessionLogout, "down"
	if up {
		typ, state = EventSessionLogon, "up"
	}
	s.record(ctx, typ, SessionPayload{SessionID: sessionID, State: state})
}

// RecordNotification 记录写入事件缓存的通知。
func (s *Service) RecordNotification(ctx context.Context, sequence uint64, n cache.Notification) {
	s.record(ctx, EventExecutionReport, NotificationPayload{Sequence: sequence, Notification: n})
}

// ListEvents 按类型检索最近事件，最新的在前。
func (s *Service) ListEvents(ctx context.Context, eventType EventType, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT event_type, payload, created_at FROM gateway_events`
	args := make([]interface{}, 0, 2)
	if eventType != "" {
		query += ` WHERE event_type = ?`
		args = append(args, string(eventType))
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("monitor: 查询事件失败: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var (
			typ     string
			payload string
			created string
		)
		if scanErr := rows.Scan(&typ, &payload, &created); scanErr != nil {
			return nil, fmt.Errorf("monitor: 解析事件失败: %w", scanErr)
		}

		ts, parseErr := time.Parse(time.RFC3339Nano, created)
		if parseErr != nil {
			s.logger.Warn("事件时间格式异常", zap.String("created_at", created))
		}

		events = append(events, Event{
			Type:      EventType(typ),
			Timestamp: ts,
			Payload:   json.RawMessage(payload),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("monitor: 读取事件失败: %w", err)
	}

	return events, nil
}
