package calendar

import (
	"math"
	"strings"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
)

// rangeSeparator 分隔开始与结束时间的布局
const rangeSeparator = "~"

// Generator 日期网格生成器
type Generator struct {
	adapter *datetime.Adapter
	hooks   Hooks
}

// NewGenerator 创建新的网格生成器，只使用hooks中的单元钩子
func NewGenerator(adapter *datetime.Adapter, hooks Hooks) *Generator {
	return &Generator{
		adapter: adapter,
		hooks:   hooks,
	}
}

// Generate 生成从left到right的周期单元序列
// 单元i从 left + i 个周期开始，到 left + i+1 个周期结束（半开区间）
// timePerPixel 不大于0时返回空序列
func (g *Generator) Generate(left, right datetime.Date, period core.Period, timePerPixel float64, level int, format core.Format) []core.DateCell {
	if timePerPixel <= 0 || math.IsNaN(timePerPixel) || math.IsInf(timePerPixel, 0) {
		return nil
	}

	count := int(math.Ceil(right.Diff(left, period, true)))
	if count <= 0 {
		return []core.DateCell{}
	}

	now := g.adapter.Now().StartOf(period)
	current := now.ValueOf()
	next := now.Add(1, period).ValueOf()
	previous := now.Subtract(1, period).ValueOf()

	dates := make([]core.DateCell, 0, count)
	leftPx := 0.0

	for i := 0; i < count; i++ {
		start := left.Add(i, period)
		end := left.Add(i+1, period)

		cell := core.DateCell{
			LeftGlobal:  start.ValueOf(),
			RightGlobal: end.ValueOf(),
			Period:      period,
			Formatted:   g.formatRange(format.Layout, start, end),
		}
		cell.Current = cell.LeftGlobal == current
		cell.Next = cell.LeftGlobal == next
		cell.Previous = cell.LeftGlobal == previous

		cell = g.hooks.applyCell(cell, period, level, i)

		cell.Width = float64(cell.RightGlobal-cell.LeftGlobal) / timePerPixel
		cell.LeftPx = leftPx
		cell.RightPx = leftPx + cell.Width
		leftPx = cell.RightPx

		dates = append(dates, cell)
	}

	return dates
}

// formatRange 渲染单元标签，布局中包含 "~" 时分别格式化开始与结束（结束取最后一毫秒）
func (g *Generator) formatRange(layout string, start, end datetime.Date) string {
	if layout == "" {
		return ""
	}
	startLayout, endLayout, isRange := strings.Cut(layout, rangeSeparator)
	if !isRange {
		return start.Format(layout)
	}
	last := g.adapter.Date(end.ValueOf() - 1)
	return start.Format(startLayout) + " - " + last.Format(endLayout)
}
