// Package tui 图表渲染模块
package tui

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/state"
)

// 绘制用字符
const (
	charBar        = '█'
	charCutLeft    = '◀'
	charCutRight   = '▶'
	charSeparator  = '│'
	charGrid       = '┊'
	charNow        = '│'
	charTrackH     = '─'
	charThumbH     = '━'
	charTrackV     = '│'
	charThumbV     = '┃'
	charExpanded   = '▾'
	charCollapsed  = '▸'
	charWideFiller = 0 // 宽字符占用的第二列
)

// canvasCell 画布上的一个字符单元
type canvasCell struct {
	char  rune
	color string // tview颜色标签，为空时使用默认颜色
}

// canvas 按行列组织的字符画布
type canvas struct {
	width  int
	height int
	cells  [][]canvasCell // [行][列]
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: width, height: height, cells: make([][]canvasCell, height)}
	for y := range c.cells {
		c.cells[y] = make([]canvasCell, width)
		for x := range c.cells[y] {
			c.cells[y][x].char = ' '
		}
	}
	return c
}

// set 设置单元，越界时忽略
func (c *canvas) set(x, y int, char rune, color string) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y][x] = canvasCell{char: char, color: color}
}

// blank 判断单元是否为空白
func (c *canvas) blank(x, y int) bool {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return false
	}
	return c.cells[y][x].char == ' '
}

// text 从x开始写入文字，最多占用maxWidth列，返回实际占用的列数
func (c *canvas) text(x, y, maxWidth int, s, color string) int {
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if used+w > maxWidth {
			break
		}
		c.set(x+used, y, r, color)
		if w == 2 {
			c.set(x+used+1, y, charWideFiller, color)
		}
		used += w
	}
	return used
}

// fill 用同一字符填充一段区域
func (c *canvas) fill(x0, x1, y int, char rune, color string) {
	for x := x0; x < x1; x++ {
		c.set(x, y, char, color)
	}
}

// lines 把画布序列化为带颜色标签的文本行
func (c *canvas) lines() []string {
	lines := make([]string, 0, c.height)
	for _, row := range c.cells {
		var b strings.Builder
		var run strings.Builder
		current := ""

		flush := func() {
			if run.Len() == 0 {
				return
			}
			if current == "" {
				b.WriteString("[-:-:-]")
			} else {
				b.WriteString(current)
			}
			b.WriteString(tview.Escape(run.String()))
			run.Reset()
		}

		for _, cell := range row {
			if cell.char == charWideFiller {
				continue
			}
			if cell.color != current {
				flush()
				current = cell.color
			}
			run.WriteRune(cell.char)
		}
		flush()
		lines = append(lines, b.String())
	}
	return lines
}

// validateChartSize 验证图表尺寸是否合理
func (t *TUI) validateChartSize(l chartLayout, width, height int) string {
	if l.chartCols < t.tuiConfig.MinChartWidth || height < t.tuiConfig.MinChartHeight || l.bodyLines < 1 {
		return "终端尺寸过小"
	}
	if width > t.tuiConfig.MaxChartSize || height > t.tuiConfig.MaxChartSize {
		return "终端尺寸过大"
	}
	return ""
}

// drawGantt 绘制完整的甘特图：日历表头、行列表、条目和滚动条
func (t *TUI) drawGantt(width, height int) string {
	snap := t.engine.Store().Get()
	l := t.computeLayout(width, height, len(snap.Config.Chart.Calendar.Levels))

	if msg := t.validateChartSize(l, width, height); msg != "" {
		return "[red]" + msg + "[white]"
	}

	if !t.engine.Loaded() {
		if err := t.engine.Err(); err != nil {
			return "[red]" + tview.Escape(err.Error()) + "[white]"
		}
		return "[yellow]正在加载条目...[white]"
	}

	cv := newCanvas(width, height)
	tw := snap.Internal.Chart.Time

	t.drawSeparator(cv, l)
	t.drawCalendar(cv, l, &tw)
	positions := t.drawRows(cv, l, snap)
	t.drawGrid(cv, l, &tw)
	t.drawItems(cv, l, snap, positions)
	t.drawNowMarker(cv, l, &tw)
	t.drawScrollbars(cv, l, snap.Config.Scroll)

	return strings.Join(cv.lines(), "\n")
}

// drawSeparator 绘制列表与图表之间的分隔线
func (t *TUI) drawSeparator(cv *canvas, l chartLayout) {
	cv.text(0, 0, l.listWidth, "行", "[yellow]")
	for y := 0; y < l.scrollY; y++ {
		cv.set(l.listWidth, y, charSeparator, "[gray]")
	}
}

// drawCalendar 绘制日历表头，每个层级一行
func (t *TUI) drawCalendar(cv *canvas, l chartLayout, tw *core.TimeWindow) {
	for level, dates := range tw.Levels {
		if level >= l.headerLines {
			break
		}
		for _, date := range dates {
			if date.CurrentView == nil {
				continue
			}
			x0 := l.chartX + t.column(date.CurrentView.LeftPx)
			x1 := l.chartX + t.column(date.CurrentView.RightPx)
			if x1 > l.chartX+l.chartCols {
				x1 = l.chartX + l.chartCols
			}

			start := l.chartX
			if x0 >= l.chartX {
				cv.set(x0, level, charSeparator, "[gray]")
				start = x0 + 1
			}
			if x1 <= start {
				continue
			}

			color := "[white]"
			if date.Current {
				color = "[yellow]"
			}
			cv.text(start, level, x1-start, date.Formatted, color)
		}
	}
}

// rowLines 行在画布上占用的区域
type rowLines struct {
	top   int
	lines int
}

// drawRows 绘制可见行的列表部分，返回每行在画布上的位置
func (t *TUI) drawRows(cv *canvas, l chartLayout, snap state.Snapshot) map[string]rowLines {
	depths := state.RowDepths(snap.Config.List.Rows)
	parents := make(map[string]bool)
	for _, row := range snap.Config.List.Rows {
		if row.ParentID != "" {
			parents[row.ParentID] = true
		}
	}

	positions := make(map[string]rowLines)
	y := l.bodyTop
	for _, row := range snap.Internal.List.VisibleRows {
		if y >= l.bodyTop+l.bodyLines {
			break
		}
		lines := int(math.Round(row.Height))
		if lines < 1 {
			lines = 1
		}
		if y+lines > l.bodyTop+l.bodyLines {
			lines = l.bodyTop + l.bodyLines - y
		}
		positions[row.ID] = rowLines{top: y, lines: lines}

		color := "[white]"
		if row.ID == t.selectedRow {
			color = "[black:darkcyan]"
			for i := 0; i < lines; i++ {
				cv.fill(0, l.listWidth, y+i, ' ', color)
			}
		}

		marker := ' '
		if parents[row.ID] {
			marker = charCollapsed
			if row.Expanded {
				marker = charExpanded
			}
		}

		indent := depths[row.ID] * 2
		if indent > l.listWidth-2 {
			indent = max(l.listWidth-2, 0)
		}
		cv.set(indent, y, marker, color)
		cv.text(indent+2, y, l.listWidth-indent-2, row.Label, color)

		y += lines
	}
	return positions
}

// drawGrid 在条目区域绘制主层级单元的分隔线
func (t *TUI) drawGrid(cv *canvas, l chartLayout, tw *core.TimeWindow) {
	for _, date := range tw.MainLevelDates() {
		if date.CurrentView == nil {
			continue
		}
		x := l.chartX + t.column(date.CurrentView.LeftPx)
		if x < l.chartX || x >= l.chartX+l.chartCols {
			continue
		}
		for y := l.bodyTop; y < l.bodyTop+l.bodyLines; y++ {
			cv.set(x, y, charGrid, "[gray]")
		}
	}
}

// drawItems 绘制条目
// 被窗口截断的条目在截断的一端显示箭头
func (t *TUI) drawItems(cv *canvas, l chartLayout, snap state.Snapshot, positions map[string]rowLines) {
	rowIndex := make(map[string]int)
	for i, row := range snap.Internal.List.RowsWithParentsExpanded {
		rowIndex[row.ID] = i
	}

	for _, item := range snap.Internal.Chart.VisibleItems {
		pos, ok := positions[item.RowID]
		if !ok {
			continue
		}
		p := t.engine.Place(item)
		if !p.Visible {
			continue
		}

		x0 := t.column(p.LeftPx)
		x1 := int(math.Ceil((p.LeftPx + p.WidthPx) / t.tuiConfig.PixelsPerColumn))
		if x0 < 0 {
			x0 = 0
		}
		if x1 > l.chartCols {
			x1 = l.chartCols
		}
		if x1 <= x0 {
			if x0 >= l.chartCols {
				continue
			}
			x1 = x0 + 1
		}

		color := rowColor(rowIndex[item.RowID])
		for y := pos.top; y < pos.top+pos.lines; y++ {
			cv.fill(l.chartX+x0, l.chartX+x1, y, charBar, "["+color+"]")
		}

		// 条目足够宽时在条目上显示标签
		if x1-x0 > 2 {
			cv.text(l.chartX+x0+1, pos.top, x1-x0-2, item.Label, "[black:"+color+"]")
		}

		if p.CutLeft {
			cv.set(l.chartX+x0, pos.top, charCutLeft, "[white:"+color+"]")
		}
		if p.CutRight {
			cv.set(l.chartX+x1-1, pos.top, charCutRight, "[white:"+color+"]")
		}
	}
}

// drawNowMarker 在当前时间所在的列画一条竖线，不覆盖条目
func (t *TUI) drawNowMarker(cv *canvas, l chartLayout, tw *core.TimeWindow) {
	x, ok := t.nowColumn(tw)
	if !ok || x >= l.chartCols {
		return
	}
	for y := l.bodyTop; y < l.bodyTop+l.bodyLines; y++ {
		if cv.blank(l.chartX+x, y) || cv.cells[y][l.chartX+x].char == charGrid {
			cv.set(l.chartX+x, y, charNow, "[red]")
		}
	}
}

// drawScrollbars 绘制水平和垂直滚动条
func (t *TUI) drawScrollbars(cv *canvas, l chartLayout, scroll state.ScrollConfig) {
	ppc := t.tuiConfig.PixelsPerColumn

	cv.fill(l.chartX, l.chartX+l.chartCols, l.scrollY, charTrackH, "[gray]")
	if h := scroll.Horizontal; h.InnerSize > 0 {
		start := int(h.PosPx / ppc)
		length := max(int(math.Round(h.InnerSize/ppc)), 1)
		end := min(start+length, l.chartCols)
		cv.fill(l.chartX+start, l.chartX+end, l.scrollY, charThumbH, "[white]")
	}

	for y := l.bodyTop; y < l.bodyTop+l.bodyLines; y++ {
		cv.set(l.vscrollX, y, charTrackV, "[gray]")
	}
	if v := scroll.Vertical; v.InnerSize > 0 {
		start := int(v.PosPx)
		length := max(int(math.Round(v.InnerSize)), 1)
		end := min(start+length, l.bodyLines)
		for y := start; y < end; y++ {
			cv.set(l.vscrollX, l.bodyTop+y, charThumbV, "[white]")
		}
	}
}
