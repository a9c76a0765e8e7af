package health

import "strings"

// SuccessRateStrategy 根据一次调用结果更新成功率（0-100）
type SuccessRateStrategy interface {
	Update(current float64, success bool) float64
}

// EWMAStrategy 趋势平滑，适合高频场景
type EWMAStrategy struct {
	Alpha float64 // e.g. 0.1
}

func (e *EWMAStrategy) Update(current float64, success bool) float64 {
	var value float64
	if success {
		value = 100
	}
	return e.Alpha*value + (1-e.Alpha)*current
}

// SlidingStrategy 成功加 StepUp，失败减 StepDown
type SlidingStrategy struct {
	StepUp   float64
	StepDown float64
}

func (s *SlidingStrategy) Update(current float64, success bool) float64 {
	if success {
		return min(current+s.StepUp, 100)
	}
	return max(current-s.StepDown, 0)
}

// DecayStrategy 每次失败按 Factor 衰减，成功不回升
type DecayStrategy struct {
	Factor float64 // e.g. 0.95
}

func (d *DecayStrategy) Update(current float64, success bool) float64 {
	if success {
		return current
	}
	return max(current*d.Factor, 0)
}

// NewStrategy 按名称构造，未知名称使用 ewma
func NewStrategy(name string) SuccessRateStrategy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sliding":
		return &SlidingStrategy{StepUp: 2, StepDown: 10}
	case "decay":
		return &DecayStrategy{Factor: 0.95}
	default:
		return &EWMAStrategy{Alpha: 0.1}
	}
}
