package exchange

import (
	"context"
	"time"
)

// Fill 为交易所返回的成交记录。引擎只做聚合透传，不解释其内容。
type Fill struct {
	OrderID   string    `json:"orderId"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Price     float64   `json:"price"`
	Amount    float64   `json:"amount"`
	Cost      float64   `json:"cost"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacer 抽象单次请求内独占的交易所连接。
type OrderPlacer interface {
	// PlaceMarketOrder 以计价货币数量提交市价单。
	PlaceMarketOrder(ctx context.Context, side string, quoteNotional float64) (Fill, error)
	// Close 释放连接。每个请求无论成功失败都必须恰好调用一次。
	Close() error
}

// Dialer 为每个请求建立新的交易所连接。
type Dialer interface {
	Dial(ctx context.Context) (OrderPlacer, error)
}
