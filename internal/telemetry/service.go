package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"order-splitter/internal/store"
)

// Service 负责持久化运行事件。
type Service struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewService 初始化运行事件服务，创建所需表结构。
func NewService(store *store.Store, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("telemetry: store 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		db:     store.DB(),
		logger: logger,
	}

	if err := s.initSchema(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) initSchema() error {
	stmt := `
CREATE TABLE IF NOT EXISTS runtime_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runtime_events_type ON runtime_events(event_type);
`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("telemetry: 初始化表失败: %w", err)
	}
	return nil
}

// Record 写入单个事件。
func (s *Service) Record(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("telemetry: 序列化事件失败: %w", err)
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runtime_events (event_type, payload, created_at) VALUES (?, ?, ?)`,
		string(event.Type), string(payload), event.Timestamp.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("telemetry: 写入事件失败: %w", err)
	}

	return nil
}

// RecordMetaOrder 记录收到的元订单。
func (s *Service) RecordMetaOrder(ctx context.Context, payload MetaOrderPayload) {
	if err := s.Record(ctx, Event{
		Type:      EventMetaOrderReceived,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}); err != nil {
		s.logger.Warn("记录元订单事件失败", zap.Error(err))
	}
}

// RecordExecution 记录执行汇总。
func (s *Service) RecordExecution(ctx context.Context, payload ExecutionPayload) {
	if err := s.Record(ctx, Event{
		Type:      EventExecutionCompleted,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}); err != nil {
		s.logger.Warn("记录执行事件失败", zap.Error(err))
	}
}

// RecordFailure 记录执行失败。
func (s *Service) RecordFailure(ctx context.Context, payload FailurePayload) {
	if err := s.Record(ctx, Event{
		Type:      EventExecutionFailed,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}); err != nil {
		s.logger.Warn("记录失败事件失败", zap.Error(err))
	}
}

// ListEvents 按类型倒序列出事件，type 为空时返回全部类型。
func (s *Service) ListEvents(ctx context.Context, eventType EventType, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 200
	}

	query := `SELECT event_type, payload, created_at FROM runtime_events`
	args := make([]interface{}, 0, 2)
	if eventType != "" {
		query += ` WHERE event_type = ?`
		args = append(args, string(eventType))
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: 查询事件失败: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var (
			typ       string
			payload   string
			createdAt string
		)
		if err := rows.Scan(&typ, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("telemetry: 读取事件失败: %w", err)
		}

		event := Event{Type: EventType(typ)}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			event.Timestamp = ts
		}

		var decoded interface{}
		if err := json.Unmarshal([]byte(payload), &decoded); err == nil {
			event.Payload = decoded
		} else {
			event.Payload = payload
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("telemetry: 遍历事件失败: %w", err)
	}

	return events, nil
}
