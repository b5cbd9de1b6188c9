package telemetry

import (
	"time"

	"order-splitter/internal/splitter"
)

// EventType 表示运行事件类型。
type EventType string

const (
	EventMetaOrderReceived  EventType = "meta_order_received"
	EventExecutionCompleted EventType = "execution_completed"
	EventExecutionFailed    EventType = "execution_failed"
)

// Event 封装通用运行事件。只记录请求级运行指标，不落盘任何成交记录。
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// MetaOrderPayload 记录收到的元订单参数。
type MetaOrderPayload struct {
	Volume       float64       `json:"volume"`
	StackCount   int           `json:"stackCount"`
	VolumeJitter float64       `json:"volumeJitter"`
	Side         splitter.Side `json:"side"`
	PriceMin     float64       `json:"priceMin"`
	PriceMax     float64       `json:"priceMax"`
}

// ExecutionPayload 记录一次执行的汇总指标。
type ExecutionPayload struct {
	Stacks      int           `json:"stacks"`
	ChildOrders int           `json:"childOrders"`
	Elapsed     time.Duration `json:"elapsedNs"`
}

// FailurePayload 记录失败原因。
type FailurePayload struct {
	Error   string        `json:"error"`
	Elapsed time.Duration `json:"elapsedNs"`
}
