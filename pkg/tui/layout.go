// Package tui 布局管理模块
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// chartLayout 图表区域内各部分的位置（单位：终端列/行）
type chartLayout struct {
	listWidth   int // 行列表宽度
	chartX      int // 时间轴第一列
	chartCols   int // 时间轴列数
	headerLines int // 日历表头行数
	bodyTop     int // 第一行条目所在的行
	bodyLines   int // 条目区域行数
	scrollY     int // 水平滚动条所在行
	vscrollX    int // 垂直滚动条所在列
}

// setupUI 设置用户界面布局
func (t *TUI) setupUI() {
	// 设置图表属性
	t.chart.SetWordWrap(false)
	t.chart.SetWrap(false)
	t.chart.SetDynamicColors(true)
	t.chart.SetText("[yellow]正在初始化，等待数据...[white]")

	t.status.SetDynamicColors(true)
	t.status.SetWrap(false)

	// 创建主垂直布局：图表占据剩余空间，状态栏固定一行
	t.flex = tview.NewFlex()
	t.flex.SetDirection(tview.FlexRow)
	t.flex.AddItem(t.chart, 0, 1, false)
	t.flex.AddItem(t.status, 1, 0, false)

	// 每次绘制前根据屏幕尺寸同步引擎的图表尺寸
	t.app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		width, height := screen.Size()
		t.resize(width, height-1)
		return false
	})

	t.app.SetRoot(t.flex, true)
}

// computeLayout 根据图表区域尺寸和日历层级数计算布局
func (t *TUI) computeLayout(width, height, levels int) chartLayout {
	listWidth := t.tuiConfig.ListWidth
	if listWidth > width/2 {
		listWidth = width / 2
	}

	l := chartLayout{
		listWidth:   listWidth,
		chartX:      listWidth + 1, // 列表与图表之间的分隔线
		headerLines: levels,
		bodyTop:     levels,
	}
	l.chartCols = width - l.chartX - 1 // 最后一列留给垂直滚动条
	l.vscrollX = l.chartX + l.chartCols
	l.bodyLines = height - levels - 1 // 最后一行留给水平滚动条
	l.scrollY = l.bodyTop + l.bodyLines

	if l.chartCols < 0 {
		l.chartCols = 0
	}
	if l.bodyLines < 0 {
		l.bodyLines = 0
	}
	return l
}

// resize 图表区域尺寸变化时更新引擎的尺寸
func (t *TUI) resize(width, height int) {
	if width == t.width && height == t.height {
		return
	}
	t.width = width
	t.height = height

	l := t.computeLayout(width, height, t.levelCount())
	ppc := t.tuiConfig.PixelsPerColumn
	t.engine.SetDimensions(float64(l.chartCols)*ppc, float64(height), float64(l.bodyLines))

	t.render()
}

// levelCount 返回配置的日历层级数
func (t *TUI) levelCount() int {
	return len(t.engine.Store().Get().Config.Chart.Calendar.Levels)
}

// render 重新生成图表和状态栏的内容
func (t *TUI) render() {
	if t.testMode || t.chart == nil {
		return
	}

	// 获取图表视图的实际可绘制尺寸
	_, _, width, height := t.chart.GetInnerRect()
	if t.width > 0 && t.height > 0 {
		width, height = t.width, t.height
	}

	t.chart.SetText(t.drawGantt(width, height))
	t.status.SetText(t.statusText())
}

// statusText 生成状态栏内容
func (t *TUI) statusText() string {
	tw := t.engine.Time()
	adapter := t.engine.Adapter()

	var b strings.Builder
	b.WriteString("[green]GoGantt[white]")

	if t.engine.Loaded() {
		fmt.Fprintf(&b, " 周期:[yellow]%s[white] 缩放:[yellow]%.1f[white] %s → %s",
			tw.Period, tw.Zoom,
			adapter.Date(tw.LeftGlobal).Format("2006-01-02 15:04"),
			adapter.Date(tw.RightGlobal).Format("2006-01-02 15:04"))
	}

	if t.sourceName != "" {
		fmt.Fprintf(&b, " [gray]%s[white] 条目:%d", tview.Escape(t.sourceName), t.itemCount)
		if !t.lastUpdate.IsZero() {
			fmt.Fprintf(&b, " 更新于%s", t.lastUpdate.Format("15:04:05"))
		}
	}

	if t.message != "" {
		fmt.Fprintf(&b, " [red]%s[white]", tview.Escape(t.message))
	} else {
		b.WriteString(" [gray]q退出 +/-缩放 ←→平移 ↑↓选择 空格展开 p/P周期 t今天 r刷新[white]")
	}

	return b.String()
}

// safeUIUpdate 安全地执行UI更新操作
func (t *TUI) safeUIUpdate(updateFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			// 如果应用已经停止，忽略panic
		}
	}()
	t.app.QueueUpdateDraw(updateFunc)
}
