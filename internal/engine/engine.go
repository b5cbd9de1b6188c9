package engine

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"order-splitter/internal/exchange"
	"order-splitter/internal/splitter"
)

// Result 为一次元订单的执行结果：每个 Stack 一组成交记录，
// 组内顺序与子订单提交顺序一致，与完成顺序无关。
type Result struct {
	Stacks [][]exchange.Fill `json:"orders"`
}

// Engine 将元订单拆分为子订单并并发提交到交易所。
type Engine struct {
	dialer exchange.Dialer
	logger *zap.Logger
}

// New 创建执行引擎。
func New(dialer exchange.Dialer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		dialer: dialer,
		logger: logger,
	}
}

// Execute 执行一个元订单。
//
// Stack 之间严格串行：第 i+1 个 Stack 在第 i 个完全结束之前不会被拆分，
// 更不会被提交。Stack 内部所有子订单并发提交，任一子订单失败立即终止
// 整个元订单（已在途的兄弟订单不强制撤销，其结果被丢弃）。交易所连接
// 在本次请求内独占，且无论成功失败都恰好关闭一次。
func (e *Engine) Execute(ctx context.Context, meta splitter.MetaOrder, rng *rand.Rand) (Result, error) {
	start := time.Now()

	// 参数校验失败时不建立任何网络连接。
	plan, err := splitter.NewPlan(meta, rng)
	if err != nil {
		return Result{}, err
	}

	client, err := e.dialer.Dial(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			e.logger.Warn("关闭交易所连接失败", zap.Error(closeErr))
		}
	}()

	result := Result{
		Stacks: make([][]exchange.Fill, 0, plan.Len()),
	}

	childTotal := 0
	for index := 0; ; index++ {
		stack, ok := plan.Next()
		if !ok {
			break
		}

		fills, err := e.executeStack(ctx, client, stack)
		if err != nil {
			e.logger.Warn("Stack 执行失败，终止元订单",
				zap.Int("stack", index),
				zap.Int("children", len(stack.Children)),
				zap.Error(err),
			)
			return Result{}, err
		}

		childTotal += len(fills)
		result.Stacks = append(result.Stacks, fills)
	}

	e.logger.Info("元订单执行完成",
		zap.String("side", string(meta.Side)),
		zap.Float64("volume", meta.Volume),
		zap.Int("stacks", len(result.Stacks)),
		zap.Int("child_orders", childTotal),
		zap.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}

// executeStack 并发提交一个 Stack 的全部子订单，按提交序号收集结果。
func (e *Engine) executeStack(ctx context.Context, client exchange.OrderPlacer, stack splitter.Stack) ([]exchange.Fill, error) {
	fills := make([]exchange.Fill, len(stack.Children))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, child := range stack.Children {
		group.Go(func() error {
			fill, err := client.PlaceMarketOrder(groupCtx, string(child.Side), child.QuoteNotional)
			if err != nil {
				return err
			}
			fills[i] = fill
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return fills, nil
}
