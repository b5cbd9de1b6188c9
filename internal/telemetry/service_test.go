package telemetry

import (
	"context"
	"testing"
	"time"

	"order-splitter/internal/config"
	"order-splitter/internal/splitter"
	"order-splitter/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	sqliteStore, err := store.NewSQLite(config.DatabaseConfig{
		InMemory:     true,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })

	svc, err := NewService(sqliteStore, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestService_RecordAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.RecordMetaOrder(ctx, MetaOrderPayload{
		Volume:     1000,
		StackCount: 2,
		Side:       splitter.SideBuy,
		PriceMin:   10,
		PriceMax:   10,
	})
	svc.RecordExecution(ctx, ExecutionPayload{
		Stacks:      2,
		ChildOrders: 100,
		Elapsed:     1500 * time.Millisecond,
	})
	svc.RecordFailure(ctx, FailurePayload{
		Error: "exchange rejected order: insufficient balance",
	})

	events, err := svc.ListEvents(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	// 倒序：最后写入的排在最前。
	if events[0].Type != EventExecutionFailed {
		t.Errorf("expected newest event first, got %s", events[0].Type)
	}
	if events[2].Type != EventMetaOrderReceived {
		t.Errorf("expected oldest event last, got %s", events[2].Type)
	}
}

func TestService_ListFiltersByType(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.RecordMetaOrder(ctx, MetaOrderPayload{Volume: 1, StackCount: 1})
	svc.RecordExecution(ctx, ExecutionPayload{Stacks: 1})
	svc.RecordExecution(ctx, ExecutionPayload{Stacks: 2})

	events, err := svc.ListEvents(ctx, EventExecutionCompleted, 10)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 execution events, got %d", len(events))
	}
	for _, event := range events {
		if event.Type != EventExecutionCompleted {
			t.Errorf("filter leaked event of type %s", event.Type)
		}
	}
}

func TestService_ListHonorsLimit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		svc.RecordExecution(ctx, ExecutionPayload{Stacks: i})
	}

	events, err := svc.ListEvents(ctx, "", 3)
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
}
