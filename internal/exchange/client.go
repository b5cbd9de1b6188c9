package exchange

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"go.uber.org/zap"

	"order-splitter/internal/config"
)

// Client 封装单次请求独占的 Binance 现货连接。
type Client struct {
	cfg      config.ExchangeConfig
	logger   *zap.Logger
	exchange *ccxt.Binance
	symbol   string

	closeMu sync.Mutex
	closed  bool
}

// BinanceDialer 按配置为每个请求创建新的 Client。
type BinanceDialer struct {
	cfg    config.ExchangeConfig
	logger *zap.Logger
}

// NewBinanceDialer 创建拨号器。凭证在进程启动时读取一次，之后只读。
func NewBinanceDialer(cfg config.ExchangeConfig, logger *zap.Logger) *BinanceDialer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BinanceDialer{cfg: cfg, logger: logger}
}

// Dial 建立一条新的交易所连接。
func (d *BinanceDialer) Dial(ctx context.Context) (OrderPlacer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	userConfig := map[string]interface{}{
		"enableRateLimit": true,
		"timeout":         d.cfg.Timeout.Milliseconds(),
	}
	if d.cfg.APIKey != "" {
		userConfig["apiKey"] = d.cfg.APIKey
	}
	if d.cfg.APISecret != "" {
		userConfig["secret"] = d.cfg.APISecret
	}

	ex := ccxt.NewBinance(userConfig)
	if d.cfg.UseSandbox {
		ex.SetSandboxMode(true)
	}

	return &Client{
		cfg:      d.cfg,
		logger:   d.logger,
		exchange: ex,
		symbol:   d.cfg.Symbol,
	}, nil
}

var _ Dialer = (*BinanceDialer)(nil)

// Symbol 返回交易对符号。
func (c *Client) Symbol() string {
	return c.symbol
}

// PlaceMarketOrder 以 quoteOrderQty 方式提交市价单并返回成交记录。
func (c *Client) PlaceMarketOrder(ctx context.Context, side string, quoteNotional float64) (Fill, error) {
	if err := ctx.Err(); err != nil {
		return Fill{}, err
	}
	if c.isClosed() {
		return Fill{}, ErrClosed
	}
	if quoteNotional <= 0 {
		return Fill{}, fmt.Errorf("%w: 计价数量必须大于0", ErrRejected)
	}

	params := map[string]interface{}{
		"quoteOrderQty": quoteNotional,
	}

	order, err := c.exchange.CreateMarketOrder(
		c.symbol,
		strings.ToLower(side),
		0,
		ccxt.WithCreateMarketOrderParams(params),
	)
	if err != nil {
		return Fill{}, classifyError(err)
	}

	return convertOrder(c.symbol, order), nil
}

// Close 释放连接。重复调用是安全的，只有第一次生效。
func (c *Client) Close() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.exchange = nil

	c.logger.Debug("交易所连接已关闭", zap.String("symbol", c.symbol))
	return nil
}

func (c *Client) isClosed() bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closed
}

func convertOrder(symbol string, order ccxt.Order) Fill {
	fill := Fill{
		OrderID: derefString(order.Id),
		Symbol:  derefString(order.Symbol),
		Side:    strings.ToUpper(derefString(order.Side)),
		Price:   derefFloat(order.Price),
		Amount:  derefFloat(order.Filled),
		Cost:    derefFloat(order.Cost),
		Status:  derefString(order.Status),
	}

	if fill.Symbol == "" {
		fill.Symbol = symbol
	}
	if fill.Amount == 0 {
		fill.Amount = derefFloat(order.Amount)
	}
	if fill.Price == 0 {
		fill.Price = derefFloat(order.Average)
	}

	if order.Timestamp != nil {
		fill.Timestamp = time.UnixMilli(int64(*order.Timestamp)).UTC()
	} else {
		fill.Timestamp = time.Now().UTC()
	}

	return fill
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
