package timeline

import "github.com/Kevin-Rudy/gogantt/pkg/core"

// Placement 条目在视口中的位置
type Placement struct {
	LeftPx   float64
	RightPx  float64
	WidthPx  float64
	CutLeft  bool // 条目开始于窗口左边缘之前
	CutRight bool // 条目结束于窗口右边缘之后
	Visible  bool
}

// Place 计算条目相对于主层级视口序列的位置
// 宽度扣除spacing后不大于0的条目视为不可见
func (c *Converter) Place(item core.Item, tw *core.TimeWindow, spacing float64) Placement {
	dates := tw.MainLevelDates()
	left := c.OffsetPxFromDate(item.Time.Start, dates, tw)
	right := c.OffsetPxFromDate(item.Time.End, dates, tw)

	p := Placement{
		LeftPx:   left,
		RightPx:  right,
		WidthPx:  right - left - spacing,
		CutLeft:  item.Time.Start < tw.LeftGlobal,
		CutRight: item.Time.End > tw.RightGlobal,
	}

	p.Visible = p.WidthPx > 0 &&
		InViewport(item, tw.LeftGlobal, tw.RightGlobal) &&
		p.LeftPx < tw.Width &&
		p.LeftPx+p.WidthPx > 0
	return p
}

// InViewport 判断条目的时间范围是否与窗口重叠
func InViewport(item core.Item, leftGlobal, rightGlobal int64) bool {
	return item.Time.Start < rightGlobal && item.Time.End > leftGlobal
}
