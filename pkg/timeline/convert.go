package timeline

import (
	"math"
	"sort"

	"github.com/Kevin-Rudy/gogantt/pkg/calendar"
	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
)

// Converter 像素与时间之间的换算工具，可被任何持有 TimeWindow 的使用者调用
type Converter struct {
	adapter   *datetime.Adapter
	generator *calendar.Generator
}

// NewConverter 创建新的换算工具
func NewConverter(adapter *datetime.Adapter, generator *calendar.Generator) *Converter {
	return &Converter{
		adapter:   adapter,
		generator: generator,
	}
}

// CellAtTime 二分查找包含ms的单元（第一个 RightGlobal > ms 的单元）
func CellAtTime(ms int64, dates []core.DateCell) (int, bool) {
	index := sort.Search(len(dates), func(i int) bool {
		return dates[i].RightGlobal > ms
	})
	if index == len(dates) {
		return -1, false
	}
	return index, true
}

// CellAtOffsetPx 返回第一个 LeftPx >= px 的单元
func CellAtOffsetPx(px float64, dates []core.DateCell) (int, bool) {
	index := sort.Search(len(dates), func(i int) bool {
		return dates[i].LeftPx >= px
	})
	if index == len(dates) {
		return -1, false
	}
	return index, true
}

// OffsetPxFromDate 返回时间点相对视口左边缘的像素偏移
// 早于窗口左边缘的时间返回0，超出已生成范围的时间返回视口宽度
func (c *Converter) OffsetPxFromDate(ms int64, dates []core.DateCell, tw *core.TimeWindow) float64 {
	if ms < tw.LeftGlobal {
		return 0
	}

	index, ok := CellAtTime(ms, dates)
	if !ok {
		return tw.Width
	}
	cell := dates[index]

	// 序列可能是稀疏的：目标时间与匹配单元之间跳过的完整周期需要补回
	localMs := ms - cell.LeftGlobal
	date := c.adapter.Date(ms)
	missing := math.Floor(c.adapter.Date(cell.LeftGlobal).StartOf(cell.Period).Diff(date.StartOf(cell.Period), cell.Period, true))
	if missing != 0 {
		localMs = date.Add(int(missing), cell.Period).ValueOf() - cell.LeftGlobal
	}

	localPx := math.Round(float64(localMs) / tw.TimePerPixel)
	return cellOriginPx(cell) + localPx
}

// cellOriginPx 返回单元完整宽度时的视口左偏移；被裁剪的首个单元为负值
func cellOriginPx(cell core.DateCell) float64 {
	if cell.CurrentView == nil {
		return cell.LeftPx
	}
	return cell.CurrentView.RightPx - cell.Width
}

// PixelSpanBetween 返回两个时间之间的单元宽度之和
// 超出主层级已生成范围的部分按需生成边界单元；b早于a时返回负值
func (c *Converter) PixelSpanBetween(a, b int64, tw *core.TimeWindow) float64 {
	if a == b {
		return 0
	}

	inverse := false
	if b < a {
		a, b = b, a
		inverse = true
	}

	main := tw.MainDates()
	if len(main) == 0 || tw.TimePerPixel <= 0 {
		return 0
	}

	period := main[0].Period
	cells := main[:len(main):len(main)]

	if first := main[0]; a < first.LeftGlobal {
		left := c.adapter.Date(a).StartOf(period)
		before := c.generator.Generate(left, c.adapter.Date(first.LeftGlobal), period, tw.TimePerPixel, tw.Level, tw.Format)
		cells = append(before, cells...)
	}

	if last := main[len(main)-1]; b > last.RightGlobal {
		right := c.adapter.Date(b).EndOf(period)
		after := c.generator.Generate(c.adapter.Date(last.RightGlobal), right, period, tw.TimePerPixel, tw.Level, tw.Format)
		cells = append(cells[:len(cells):len(cells)], after...)
	}

	width := 0.0
	counting := false
	for _, cell := range cells {
		if cell.LeftGlobal >= a {
			counting = true
		}
		if cell.RightGlobal > b {
			break
		}
		if counting {
			width += cell.Width
		}
	}

	if inverse {
		return -width
	}
	return width
}

// ScrollPosPxFromTime 返回使滚动条指向某时间所需的滑块位置
func (c *Converter) ScrollPosPxFromTime(ms int64, tw *core.TimeWindow, horizontal core.ScrollState) float64 {
	if horizontal.MaxPosPx <= 0 {
		return 0
	}
	main := tw.MainDates()
	index, ok := CellAtTime(ms, main)
	if !ok {
		if len(main) == 0 {
			return 0
		}
		return horizontal.MaxPosPx
	}
	return math.Round(horizontal.MaxPosPx * main[index].LeftPercent)
}
