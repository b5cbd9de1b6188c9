package exchange

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	ccxt "github.com/ccxt/ccxt/go/v4"
)

var (
	// ErrRejected 表示交易所明确拒绝了订单（参数非法、余额不足等）。
	ErrRejected = errors.New("exchange rejected order")
	// ErrTransport 表示与交易所通信时发生网络层故障。
	ErrTransport = errors.New("exchange transport failure")
	// ErrClosed 表示连接已关闭后仍被使用。
	ErrClosed = errors.New("exchange client closed")
)

// classifyError 将底层错误归一化为 ErrRejected 或 ErrTransport。
// 两类错误对控制流的影响相同（整个元订单终止），区别只在呈现的消息。
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var ccxtErr *ccxt.Error
	if errors.As(err, &ccxtErr) {
		switch ccxtErr.Type {
		case ccxt.NetworkErrorErrType,
			ccxt.RequestTimeoutErrType,
			ccxt.ExchangeNotAvailableErrType,
			ccxt.OnMaintenanceErrType,
			ccxt.RateLimitExceededErrType,
			ccxt.DDoSProtectionErrType,
			ccxt.BadResponseErrType,
			ccxt.NullResponseErrType:
			return fmt.Errorf("%w: %s", ErrTransport, ccxtMessage(ccxtErr))
		default:
			return fmt.Errorf("%w: %s", ErrRejected, ccxtMessage(ccxtErr))
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	return fmt.Errorf("%w: %v", ErrRejected, err)
}

func ccxtMessage(err *ccxt.Error) string {
	message := strings.TrimSpace(err.Message)
	if message == "" {
		message = "exchange error"
	}
	return message
}
