package timeline

import "github.com/Kevin-Rudy/gogantt/pkg/core"

// Observed 变化检测关心的字段快照
type Observed struct {
	Zoom         float64
	Period       core.Period
	LeftGlobal   int64
	CenterGlobal int64
	RightGlobal  int64
	From         int64
	To           int64
	ForceUpdate  bool
	ScrollPosPx  float64
	ChartWidth   float64
}

// Observe 从配置、水平滚动位置和图表宽度构造快照
func Observe(config TimeConfig, scrollPosPx, chartWidth float64) Observed {
	return Observed{
		Zoom:         config.Zoom,
		Period:       config.Period,
		LeftGlobal:   config.LeftGlobal,
		CenterGlobal: config.CenterGlobal,
		RightGlobal:  config.RightGlobal,
		From:         config.From,
		To:           config.To,
		ForceUpdate:  config.ForceUpdate,
		ScrollPosPx:  scrollPosPx,
		ChartWidth:   chartWidth,
	}
}

// Detector 比较前后两次观察结果，判断重新计算的原因
type Detector struct {
	initialized bool
	last        Observed
}

// NewDetector 创建新的变化检测器
func NewDetector() *Detector {
	return &Detector{}
}

// Detect 记录当前观察结果并返回触发原因；没有相关变化时返回false
func (d *Detector) Detect(current Observed) (core.Trigger, bool) {
	cache := d.last
	d.last = current

	if !d.initialized {
		d.initialized = true
		return core.Trigger{Name: core.TriggerAll}, true
	}

	switch {
	case current.ForceUpdate:
		return core.Trigger{Name: core.TriggerForceUpdate}, true
	case current.Zoom != cache.Zoom:
		return core.Trigger{Name: core.TriggerZoom, OldValue: cache.Zoom, NewValue: current.Zoom}, true
	case current.Period != cache.Period:
		return core.Trigger{Name: core.TriggerPeriod, OldValue: cache.Period, NewValue: current.Period}, true
	case current.LeftGlobal != cache.LeftGlobal:
		return core.Trigger{Name: core.TriggerLeftGlobal, OldValue: cache.LeftGlobal, NewValue: current.LeftGlobal}, true
	case current.CenterGlobal != cache.CenterGlobal:
		return core.Trigger{Name: core.TriggerCenterGlobal, OldValue: cache.CenterGlobal, NewValue: current.CenterGlobal}, true
	case current.RightGlobal != cache.RightGlobal:
		return core.Trigger{Name: core.TriggerRightGlobal, OldValue: cache.RightGlobal, NewValue: current.RightGlobal}, true
	case current.From != cache.From:
		return core.Trigger{Name: core.TriggerFrom, OldValue: cache.From, NewValue: current.From}, true
	case current.To != cache.To:
		return core.Trigger{Name: core.TriggerTo, OldValue: cache.To, NewValue: current.To}, true
	case current.ScrollPosPx != cache.ScrollPosPx:
		return core.Trigger{Name: core.TriggerScroll, OldValue: cache.ScrollPosPx, NewValue: current.ScrollPosPx}, true
	case current.ChartWidth != cache.ChartWidth:
		return core.Trigger{Name: core.TriggerChartWidth, OldValue: cache.ChartWidth, NewValue: current.ChartWidth}, true
	}

	return core.Trigger{}, false
}

// Sync 只记录观察结果，用于计算结果写回配置之后，避免自己的写入再次触发
func (d *Detector) Sync(current Observed) {
	d.initialized = true
	d.last = current
}

// Reset 清空记录，下一次检测返回 all
func (d *Detector) Reset() {
	d.initialized = false
	d.last = Observed{}
}
