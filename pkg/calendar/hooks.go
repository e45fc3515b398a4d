package calendar

import "github.com/Kevin-Rudy/gogantt/pkg/core"

// CellHook 在单元宽度计算之前处理单个单元，可以修改边界与标签
type CellHook func(cell core.DateCell, period core.Period, level int, index int) core.DateCell

// LevelDatesHook 处理某一层级的完整单元序列
type LevelDatesHook func(dates []core.DateCell, format core.Format, tw *core.TimeWindow, level int) []core.DateCell

// AllLevelDatesHook 处理所有层级的单元序列
type AllLevelDatesHook func(all [][]core.DateCell, tw *core.TimeWindow) [][]core.DateCell

// Hooks 按注册顺序依次应用的扩展点
type Hooks struct {
	OnLevelDate             []CellHook
	OnLevelDates            []LevelDatesHook
	OnAllLevelDates         []AllLevelDatesHook
	OnCurrentViewLevelDates []LevelDatesHook
}

func (h Hooks) applyCell(cell core.DateCell, period core.Period, level, index int) core.DateCell {
	for _, hook := range h.OnLevelDate {
		cell = hook(cell, period, level, index)
	}
	if cell.RightGlobal < cell.LeftGlobal {
		cell.RightGlobal = cell.LeftGlobal
	}
	return cell
}

func (h Hooks) applyLevel(dates []core.DateCell, format core.Format, tw *core.TimeWindow, level int) []core.DateCell {
	for _, hook := range h.OnLevelDates {
		dates = hook(dates, format, tw, level)
	}
	return dates
}

func (h Hooks) applyAll(all [][]core.DateCell, tw *core.TimeWindow) [][]core.DateCell {
	for _, hook := range h.OnAllLevelDates {
		all = hook(all, tw)
	}
	return all
}

// ApplyCurrentView 应用视口裁剪后的层级钩子
func (h Hooks) ApplyCurrentView(dates []core.DateCell, format core.Format, tw *core.TimeWindow, level int) []core.DateCell {
	for _, hook := range h.OnCurrentViewLevelDates {
		dates = hook(dates, format, tw, level)
	}
	return dates
}
