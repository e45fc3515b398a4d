package calendar

import (
	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
)

// Builder 多层级日历构建器
type Builder struct {
	adapter   *datetime.Adapter
	generator *Generator
	hooks     Hooks
}

// Result 一次构建的结果
type Result struct {
	AllDates      [][]core.DateCell
	ScrollWidth   float64 // 主层级总宽度减去最后一页宽度
	LastPageSize  float64
	LastPageCount int
}

// NewBuilder 创建新的日历构建器
func NewBuilder(adapter *datetime.Adapter, hooks Hooks) *Builder {
	return &Builder{
		adapter:   adapter,
		generator: NewGenerator(adapter, hooks),
		hooks:     hooks,
	}
}

// Generator 返回构建器使用的网格生成器
func (b *Builder) Generator() *Generator {
	return b.generator
}

// Hooks 返回构建器的扩展点
func (b *Builder) Hooks() Hooks {
	return b.hooks
}

// Build 为每个层级生成从 FinalFrom 到 FinalTo 的完整单元序列，并计算主层级的百分比
// tw.Level 必须已指向主层级
func (b *Builder) Build(tw *core.TimeWindow, levels []Level) Result {
	all := make([][]core.DateCell, 0, len(levels))

	for index, level := range levels {
		format, ok := ActiveFormat(level.Formats, tw.Zoom)
		if !ok {
			all = append(all, []core.DateCell{})
			continue
		}

		left := b.adapter.Date(tw.FinalFrom).StartOf(format.Period)
		right := b.adapter.Date(tw.FinalTo).EndOf(format.Period)
		dates := b.generator.Generate(left, right, format.Period, tw.TimePerPixel, index, format)
		dates = b.hooks.applyLevel(dates, format, tw, index)
		all = append(all, dates)
	}

	all = b.hooks.applyAll(all, tw)

	result := Result{AllDates: all}
	if tw.Level >= 0 && tw.Level < len(all) {
		result.ScrollWidth, result.LastPageSize, result.LastPageCount = CalculatePercents(all[tw.Level], tw.Width)
	}
	return result
}

// LastPage 从末尾开始累计能完整放入视口的单元宽度和数量
func LastPage(viewport float64, dates []core.DateCell) (float64, int) {
	size := 0.0
	count := 0
	for i := len(dates) - 1; i >= 0; i-- {
		size += dates[i].Width
		if size >= viewport {
			size -= dates[i].Width
			break
		}
		count++
	}
	return size, count
}

// CalculatePercents 原地写入每个单元占可滚动宽度的比例，返回可滚动宽度与最后一页信息
// 百分比限制在[0,1]；所有单元都能放入一页时百分比均为0
func CalculatePercents(dates []core.DateCell, viewport float64) (float64, float64, int) {
	lastSize, lastCount := LastPage(viewport, dates)

	total := 0.0
	for _, date := range dates {
		total += date.Width
	}

	scrollWidth := total - lastSize
	for i := range dates {
		if scrollWidth <= 0 {
			dates[i].LeftPercent = 0
			dates[i].RightPercent = 0
			continue
		}
		dates[i].LeftPercent = clampPercent(dates[i].LeftPx / scrollWidth)
		dates[i].RightPercent = clampPercent(dates[i].RightPx / scrollWidth)
	}

	if scrollWidth < 0 {
		scrollWidth = 0
	}
	return scrollWidth, lastSize, lastCount
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
