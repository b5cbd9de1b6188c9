package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"order-splitter/internal/config"
	"order-splitter/internal/engine"
	"order-splitter/internal/exchange"
	"order-splitter/internal/server"
	"order-splitter/internal/store"
	"order-splitter/internal/telemetry"
)

// App 聚合核心依赖并驱动系统生命周期。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// New 创建 App 实例。
func New(cfg *config.Config, logger *zap.Logger, store *store.Store) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
	}
}

// Run 装配各组件并阻塞运行 HTTP 服务，直到收到退出信号。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("订单拆分服务已初始化",
		zap.String("environment", a.cfg.App.Environment),
		zap.String("exchange", a.cfg.Exchange.Name),
		zap.String("symbol", a.cfg.Exchange.Symbol),
		zap.Bool("sandbox", a.cfg.Exchange.UseSandbox),
	)

	telemetrySvc, err := telemetry.NewService(a.store, a.logger)
	if err != nil {
		return fmt.Errorf("初始化运行事件服务失败: %w", err)
	}

	dialer := exchange.NewBinanceDialer(a.cfg.Exchange, a.logger)
	eng := engine.New(dialer, a.logger)
	srv := server.New(a.cfg.Server, eng, telemetrySvc, a.logger)

	if err := srv.Run(ctx); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("系统异常退出: %w", err)
	}

	a.logger.Info("系统收到退出信号，已停止")
	return nil
}
