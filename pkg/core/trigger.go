package core

// TriggerName 表示触发重新计算的原因
type TriggerName string

const (
	TriggerAll          TriggerName = "all"
	TriggerForceUpdate  TriggerName = "forceUpdate"
	TriggerZoom         TriggerName = "zoom"
	TriggerPeriod       TriggerName = "period"
	TriggerLeftGlobal   TriggerName = "leftGlobal"
	TriggerCenterGlobal TriggerName = "centerGlobal"
	TriggerRightGlobal  TriggerName = "rightGlobal"
	TriggerFrom         TriggerName = "from"
	TriggerTo           TriggerName = "to"
	TriggerScroll       TriggerName = "scroll"
	TriggerChartWidth   TriggerName = "chartWidth"
	TriggerItems        TriggerName = "items"
)

// Trigger 描述一次重新计算的触发原因及变化前后的值
type Trigger struct {
	Name     TriggerName
	OldValue any
	NewValue any
}

// JustApply 外部直接设置的边界值无需重新推导，直接应用
func (t Trigger) JustApply() bool {
	switch t.Name {
	case TriggerLeftGlobal, TriggerCenterGlobal, TriggerRightGlobal, TriggerFrom, TriggerTo:
		return true
	}
	return false
}
