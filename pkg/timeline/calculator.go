// Package timeline 实现可见时间窗口的计算、像素与时间的换算以及条目定位
package timeline

import (
	"math"

	"github.com/Kevin-Rudy/gogantt/pkg/calendar"
	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
)

// ErrNoMainLevel 没有主日历层级时无法确定驱动滚动的层级
var ErrNoMainLevel = calendar.ErrNoMainLevel

// pixelEpsilon 累加浮点像素宽度时的容差
const pixelEpsilon = 1e-6

// Input 一次重新计算所需的全部输入
type Input struct {
	Old        core.TimeWindow
	Trigger    core.Trigger
	Config     Config
	Items      []core.Item
	ChartWidth float64
	Horizontal core.ScrollState
}

// Result 一次重新计算的结果
type Result struct {
	Time        core.TimeWindow
	Config      TimeConfig       // 需要写回配置的时间字段
	Horizontal  core.ScrollState // 更新后的水平滚动状态
	Regenerated bool             // 是否重新生成了日历网格
	Skipped     bool             // 条件不足，本次不发布
}

// Calculator 时间窗口计算器
// Recalculate 是纯函数：相同输入产生相同输出，不修改任何输入
type Calculator struct {
	adapter   *datetime.Adapter
	builder   *calendar.Builder
	converter *Converter
}

// NewCalculator 创建新的计算器
func NewCalculator(adapter *datetime.Adapter, hooks calendar.Hooks) *Calculator {
	builder := calendar.NewBuilder(adapter, hooks)
	return &Calculator{
		adapter:   adapter,
		builder:   builder,
		converter: NewConverter(adapter, builder.Generator()),
	}
}

// Converter 返回与计算器共享日期适配器的换算工具
func (c *Calculator) Converter() *Converter {
	return c.converter
}

// Adapter 返回日期适配器
func (c *Calculator) Adapter() *datetime.Adapter {
	return c.adapter
}

// Recalculate 根据触发原因重新计算时间窗口
func (c *Calculator) Recalculate(in Input) (Result, error) {
	width := in.ChartWidth
	if width <= 0 {
		return Result{Skipped: true}, nil
	}

	cfg := in.Config.Time.Clone()
	levels := in.Config.Calendar.Levels
	old := in.Old

	// 计算模式直接使用配置的范围；缩放模式下未设置的边界需要条目来推导
	if cfg.CalculatedZoomMode {
		if cfg.To <= cfg.From {
			return Result{Skipped: true}, nil
		}
	} else if (cfg.From == 0 || cfg.To == 0) && len(in.Items) == 0 {
		return Result{Skipped: true}, nil
	}

	mainIndex, err := calendar.MainLevelIndex(levels)
	if err != nil {
		return Result{}, err
	}

	tw := core.TimeWindow{
		Zoom:               cfg.Zoom,
		Period:             cfg.Period,
		From:               cfg.From,
		To:                 cfg.To,
		CalculatedZoomMode: cfg.CalculatedZoomMode,
		Level:              mainIndex,
		Width:              width,
	}

	if !cfg.CalculatedZoomMode {
		if cfg.Period != old.Period && old.Period != "" {
			if zoom, ok := calendar.DefaultZoom(levels, cfg.Period); ok {
				tw.Zoom = zoom
			}
		}
		if period, ok := calendar.GuessPeriod(levels, tw.Zoom); ok {
			tw.Period = period
		}
	}

	justApply := in.Trigger.JustApply()
	if justApply {
		tw.LeftGlobal = cfg.LeftGlobal
		tw.CenterGlobal = cfg.CenterGlobal
		tw.RightGlobal = cfg.RightGlobal
	}

	if cfg.CalculatedZoomMode {
		tw.FinalFrom, tw.FinalTo = tw.From, tw.To
		tw.TimePerPixel = float64(tw.To-tw.From) / width
		tw.Zoom = math.Log2(tw.TimePerPixel)
		if period, ok := calendar.GuessPeriod(levels, tw.Zoom); ok {
			tw.Period = period
		}
	} else {
		tw.TimePerPixel = math.Exp2(tw.Zoom)
		c.recalculateFromTo(&tw, cfg, in.Items)
	}

	if tw.TimePerPixel <= 0 || math.IsNaN(tw.TimePerPixel) || math.IsInf(tw.TimePerPixel, 0) || !tw.Period.Valid() {
		return Result{Skipped: true}, nil
	}

	horizontal := in.Horizontal
	regenerate := tw.Zoom != old.Zoom ||
		len(old.AllDates) == 0 ||
		len(old.AllDates) != len(levels) ||
		old.Level != mainIndex ||
		cfg.ForceUpdate ||
		in.Trigger.Name == core.TriggerForceUpdate ||
		!c.sameBounds(&old, &tw)

	switch {
	case regenerate:
		build := c.builder.Build(&tw, levels)
		tw.AllDates = build.AllDates
		horizontal.Area = build.ScrollWidth
		horizontal.LastPageSize = build.LastPageSize
		horizontal.LastPageCount = build.LastPageCount
	case width != old.Width:
		// 视口宽度改变只影响最后一页和百分比，复制主层级后重新计算
		all := append([][]core.DateCell(nil), old.AllDates...)
		main := append([]core.DateCell(nil), old.AllDates[mainIndex]...)
		horizontal.Area, horizontal.LastPageSize, horizontal.LastPageCount = calendar.CalculatePercents(main, width)
		all[mainIndex] = main
		tw.AllDates = all
	default:
		tw.AllDates = old.AllDates
	}

	main := tw.MainDates()
	if len(main) == 0 {
		return Result{Skipped: true}, nil
	}
	tw.FinalFrom = main[0].LeftGlobal
	tw.FinalTo = main[len(main)-1].RightGlobal
	calculateTotalViewDuration(&tw)

	updateCenter := true
	anchor := false
	preservedCenter := old.CenterGlobal

	switch {
	case justApply:
		updateCenter = false
		preservedCenter = cfg.CenterGlobal
	case cfg.CalculatedZoomMode:
		tw.LeftGlobal = tw.From
		tw.RightGlobal = tw.To
	case in.Trigger.Name == core.TriggerAll && cfg.LeftGlobal != 0:
		index := anchorIndex(cfg.LeftGlobal, main)
		tw.LeftGlobal = main[index].LeftGlobal
		tw.RightGlobal = rightGlobalFrom(index, width, main)
		anchor = true
	case tw.Zoom != old.Zoom && old.CenterGlobal != 0:
		// 保持逻辑中心：从旧中心向左退半个视口（按周期计），再对齐到所在单元
		halfMs := int64(math.Round(width * tw.TimePerPixel / 2))
		oldCenter := c.adapter.Date(old.CenterGlobal)
		diff := math.Ceil(oldCenter.Diff(c.adapter.Date(old.CenterGlobal+halfMs), tw.Period, true))
		leftMs := oldCenter.Add(int(diff), tw.Period).ValueOf()

		index := anchorIndex(leftMs, main)
		tw.LeftGlobal = main[index].LeftGlobal
		tw.RightGlobal = rightGlobalFrom(index, width, main)
		anchor = true
		updateCenter = false
	default:
		index := 0
		if horizontal.Date != nil {
			index = anchorIndex(horizontal.Date.LeftGlobal, main)
		}
		tw.LeftGlobal = main[index].LeftGlobal
		tw.RightGlobal = rightGlobalFrom(index, width, main)
	}

	c.limitGlobalAndSetCenter(&tw, updateCenter, preservedCenter)
	if anchor {
		horizontal = c.anchorScroll(horizontal, &tw, anchorIndex(tw.LeftGlobal, main))
	}

	tw.LeftInner = tw.LeftGlobal - tw.FinalFrom
	tw.RightInner = tw.RightGlobal - tw.FinalFrom

	c.updateLevels(&tw, levels)

	tw.LeftPx = 0
	tw.RightPx = width
	if visible := tw.MainLevelDates(); len(visible) > 0 {
		tw.LeftPx = visible[0].LeftPx
		tw.RightPx = visible[len(visible)-1].RightPx
	}

	cfg.Zoom = tw.Zoom
	cfg.Period = tw.Format.Period
	cfg.LeftGlobal = tw.LeftGlobal
	cfg.CenterGlobal = tw.CenterGlobal
	cfg.RightGlobal = tw.RightGlobal
	cfg.ForceUpdate = false

	return Result{
		Time:        tw,
		Config:      cfg,
		Horizontal:  horizontal,
		Regenerated: regenerate,
	}, nil
}

// recalculateFromTo 未设置的边界由条目推导，并按周期对齐、追加留白
func (c *Calculator) recalculateFromTo(tw *core.TimeWindow, cfg TimeConfig, items []core.Item) {
	period := tw.Period
	from, to := tw.From, tw.To

	if from == 0 || to == 0 {
		start, end, ok := itemRange(items)
		if ok {
			if from == 0 {
				from = c.adapter.Date(start).StartOf(period).ValueOf()
			}
			if to == 0 {
				to = c.adapter.Date(end).EndOf(period).ValueOf()
			}
		}
	}

	tw.From, tw.To = from, to
	tw.FinalFrom = c.adapter.Date(from).StartOf(period).ValueOf()
	tw.FinalTo = c.adapter.Date(to).StartOf(period).ValueOf()

	if space, ok := cfg.AdditionalSpaces[period]; ok {
		if space.Before > 0 {
			tw.FinalFrom = c.adapter.Date(from).Subtract(space.Before, space.Period).ValueOf()
		}
		if space.After > 0 {
			tw.FinalTo = c.adapter.Date(to).Add(space.After, space.Period).ValueOf()
		}
	}
}

// sameBounds 判断旧网格是否与新的边界和比例一致
func (c *Calculator) sameBounds(old, tw *core.TimeWindow) bool {
	main := old.MainDates()
	if len(main) == 0 {
		return false
	}
	if old.Period != tw.Period || old.TimePerPixel != tw.TimePerPixel {
		return false
	}
	first := c.adapter.Date(tw.FinalFrom).StartOf(tw.Period).ValueOf()
	last := c.adapter.Date(tw.FinalTo).StartOf(tw.Period).Add(1, tw.Period).ValueOf()
	return main[0].LeftGlobal == first && main[len(main)-1].RightGlobal == last
}

// anchorScroll 把水平滚动状态锚定到主层级的某个单元
func (c *Calculator) anchorScroll(horizontal core.ScrollState, tw *core.TimeWindow, index int) core.ScrollState {
	main := tw.MainDates()
	cell := main[index]
	horizontal.Date = &cell
	horizontal.DataIndex = index
	horizontal.PosPx = c.converter.ScrollPosPxFromTime(cell.LeftGlobal, tw, horizontal)
	return horizontal
}

// limitGlobalAndSetCenter 把左右边界限制在可寻址范围内并对齐到周期，然后确定中心
// 左边界最多到最后一页的第一个单元；边界被限制后从左边界重新填满视口
func (c *Calculator) limitGlobalAndSetCenter(tw *core.TimeWindow, updateCenter bool, preservedCenter int64) {
	main := tw.MainDates()
	clamped := false

	if !tw.CalculatedZoomMode {
		if maxLeft := lastPageStart(tw.Width, main); tw.LeftGlobal > maxLeft {
			tw.LeftGlobal = maxLeft
			clamped = true
		}
	}
	if tw.LeftGlobal < tw.FinalFrom {
		tw.LeftGlobal = tw.FinalFrom
		clamped = true
	}
	if tw.RightGlobal > tw.FinalTo || tw.RightGlobal == 0 {
		tw.RightGlobal = tw.FinalTo
	}

	tw.LeftGlobal = c.adapter.Date(tw.LeftGlobal).StartOf(tw.Period).ValueOf()
	if tw.LeftGlobal < tw.FinalFrom {
		tw.LeftGlobal = tw.FinalFrom
	}

	if tw.RightGlobal > tw.LeftGlobal {
		right := c.adapter.Date(tw.RightGlobal - 1).StartOf(tw.Period).Add(1, tw.Period).ValueOf()
		if right > tw.FinalTo {
			right = tw.FinalTo
		}
		tw.RightGlobal = right
	}

	if len(main) > 0 && (clamped || tw.RightGlobal <= tw.LeftGlobal) {
		filled := rightGlobalFrom(anchorIndex(tw.LeftGlobal, main), tw.Width, main)
		if filled > tw.RightGlobal {
			tw.RightGlobal = filled
		}
	}
	if tw.RightGlobal < tw.LeftGlobal {
		tw.RightGlobal = tw.LeftGlobal
	}

	midpoint := tw.LeftGlobal + int64(math.Round(float64(tw.RightGlobal-tw.LeftGlobal)/2))
	if updateCenter || preservedCenter < tw.LeftGlobal || preservedCenter > tw.RightGlobal {
		tw.CenterGlobal = midpoint
		return
	}
	tw.CenterGlobal = preservedCenter
}

// lastPageStart 返回最后一页第一个单元的开始时间，没有能完整放入视口的单元时返回最后一个单元
func lastPageStart(width float64, main []core.DateCell) int64 {
	if len(main) == 0 {
		return math.MaxInt64
	}
	_, count := calendar.LastPage(width, main)
	if count == 0 {
		return main[len(main)-1].LeftGlobal
	}
	return main[len(main)-count].LeftGlobal
}

// updateLevels 把每个层级的完整序列裁剪到视口，并计算视口内的像素位置
func (c *Calculator) updateLevels(tw *core.TimeWindow, levels []calendar.Level) {
	hooks := c.builder.Hooks()
	tw.Levels = make([][]core.DateCell, len(levels))

	for index, level := range levels {
		format, ok := calendar.ActiveFormat(level.Formats, tw.Zoom)
		if index == tw.Level {
			tw.Format = format
		}
		if !ok || index >= len(tw.AllDates) {
			tw.Levels[index] = []core.DateCell{}
			continue
		}
		dates := visibleDates(tw.AllDates[index], tw)
		tw.Levels[index] = hooks.ApplyCurrentView(dates, format, tw, index)
	}
}

// visibleDates 返回与 [LeftGlobal, RightGlobal) 重叠的单元副本
// 第一个单元部分滚出视口时，裁掉的宽度从视口宽度中扣除，左偏移保持为0
func visibleDates(all []core.DateCell, tw *core.TimeWindow) []core.DateCell {
	dates := make([]core.DateCell, 0)
	leftPx := 0.0

	for _, cell := range all {
		if cell.RightGlobal <= tw.LeftGlobal || cell.LeftGlobal >= tw.RightGlobal {
			continue
		}

		view := &core.CurrentView{LeftPx: leftPx, Width: cell.Width}
		if len(dates) == 0 && cell.LeftGlobal < tw.LeftGlobal {
			trimmed := float64(tw.LeftGlobal-cell.LeftGlobal) / tw.TimePerPixel
			view.Width = math.Max(0, cell.Width-trimmed)
		}
		view.RightPx = view.LeftPx + view.Width
		leftPx = view.RightPx

		cell.CurrentView = view
		dates = append(dates, cell)
	}

	return dates
}

// calculateTotalViewDuration 累计主层级的总时长和总宽度
func calculateTotalViewDuration(tw *core.TimeWindow) {
	var ms int64
	px := 0.0
	for _, cell := range tw.MainDates() {
		ms += cell.RightGlobal - cell.LeftGlobal
		px += cell.Width
	}
	tw.TotalViewDurationMs = ms
	tw.TotalViewDurationPx = px
}

// rightGlobalFrom 从index开始累计单元宽度直到填满视口，返回最后一个单元的结束时间
func rightGlobalFrom(index int, width float64, main []core.DateCell) int64 {
	right := main[index].RightGlobal
	total := 0.0
	for i := index; i < len(main); i++ {
		right = main[i].RightGlobal
		total += main[i].Width
		if total+pixelEpsilon >= width {
			break
		}
	}
	return right
}

// anchorIndex 返回包含ms的主层级单元索引，超出末尾时返回最后一个
func anchorIndex(ms int64, main []core.DateCell) int {
	if index, ok := CellAtTime(ms, main); ok {
		return index
	}
	return len(main) - 1
}

// itemRange 返回条目的最早开始时间和最晚结束时间，开始时间为0的条目不参与最早时间的计算
func itemRange(items []core.Item) (int64, int64, bool) {
	if len(items) == 0 {
		return 0, 0, false
	}
	start := int64(math.MaxInt64)
	var end int64
	for _, item := range items {
		if item.Time.Start != 0 && item.Time.Start < start {
			start = item.Time.Start
		}
		if item.Time.End > end {
			end = item.Time.End
		}
	}
	if start == math.MaxInt64 {
		start = 0
	}
	return start, end, true
}
