package splitter

// Side 表示下单方向。
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid 判断方向是否合法。
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// MetaOrder 描述一次元订单：待拆分的总量、拆分份数及价格区间。
// 请求生命周期内不可变。
type MetaOrder struct {
	Volume       float64
	StackCount   int
	VolumeJitter float64
	Side         Side
	PriceMin     float64
	PriceMax     float64
}

// ChildOrderSpec 描述单个子订单。价格与计价量在当前拆分规则下
// 数值相同，但字段保持独立，便于后续替换计量方式。
type ChildOrderSpec struct {
	Price         float64
	Side          Side
	QuoteNotional float64
}

// Stack 是一组将被并发提交的子订单。
type Stack struct {
	TargetVolume float64
	Children     []ChildOrderSpec
}
