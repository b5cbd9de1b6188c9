package splitter

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/multierr"
)

// ErrInvalidRequest 表示元订单参数非法，任何网络交互之前即被拒绝。
var ErrInvalidRequest = errors.New("invalid meta order")

// maxStackChildren 限制单个 Stack 的子订单数。体积与价格比例失控的
// 请求在校验阶段即被拒绝，而不是在拆分时耗尽内存或溢出。
const maxStackChildren = 100_000

// Validate 校验元订单参数。
func (m MetaOrder) Validate() error {
	var err error

	if m.Volume <= 0 {
		err = multierr.Append(err, errors.New("volume 必须大于0"))
	}
	if m.StackCount <= 0 {
		err = multierr.Append(err, errors.New("stack count 必须大于0"))
	}
	if m.VolumeJitter < 0 {
		err = multierr.Append(err, errors.New("volume jitter 不能为负"))
	}
	if !m.Side.Valid() {
		err = multierr.Append(err, fmt.Errorf("side 必须为 %s 或 %s", SideBuy, SideSell))
	}
	if m.PriceMax <= 0 {
		err = multierr.Append(err, errors.New("price max 必须大于0"))
	}
	if m.PriceMin < 0 {
		err = multierr.Append(err, errors.New("price min 不能为负"))
	}
	if m.PriceMin > m.PriceMax {
		err = multierr.Append(err, errors.New("price min 不能大于 price max"))
	}
	if m.StackCount > 0 && m.PriceMax > 0 {
		perStack := m.Volume/float64(m.StackCount) + m.VolumeJitter/2
		if perStack/m.PriceMax > maxStackChildren {
			err = multierr.Append(err, fmt.Errorf("单个 Stack 的子订单数不能超过 %d", maxStackChildren))
		}
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	return nil
}

// Plan 按需逐个产出 Stack：第 i 个 Stack 在被请求时才完成随机拆分。
// 整个序列有限（长度等于 StackCount），重放需要携带新的随机源重新创建。
type Plan struct {
	meta MetaOrder
	rng  *rand.Rand

	baseVolume float64
	next       int
}

// NewPlan 校验元订单并返回拆分计划。
func NewPlan(meta MetaOrder, rng *rand.Rand) (*Plan, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Plan{
		meta:       meta,
		rng:        rng,
		baseVolume: math.Floor(meta.Volume / float64(meta.StackCount)),
	}, nil
}

// Len 返回计划产出的 Stack 总数。
func (p *Plan) Len() int {
	return p.meta.StackCount
}

// Next 产出下一个 Stack。序列耗尽时返回 false。
func (p *Plan) Next() (Stack, bool) {
	if p.next >= p.meta.StackCount {
		return Stack{}, false
	}
	p.next++

	half := p.meta.VolumeJitter / 2
	volume := round2(p.baseVolume + p.uniform(-half, half))

	stack := Stack{TargetVolume: volume}

	// 抖动后体积不足一个子订单时该 Stack 为空，不视为错误。
	if volume < p.meta.PriceMax || volume <= 0 {
		return stack, true
	}

	count := int(volume / p.meta.PriceMax)
	stack.Children = make([]ChildOrderSpec, 0, count)
	for i := 0; i < count; i++ {
		price := round2(p.uniform(p.meta.PriceMin, p.meta.PriceMax))
		stack.Children = append(stack.Children, ChildOrderSpec{
			Price:         price,
			Side:          p.meta.Side,
			QuoteNotional: price,
		})
	}

	return stack, true
}

func (p *Plan) uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + p.rng.Float64()*(max-min)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
