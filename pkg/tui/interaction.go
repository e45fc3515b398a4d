// Package tui 交互控制模块
package tui

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/log"
)

// 导航事件频率控制 - 包级私有变量
var (
	navigationEventCounter   int                       // 事件计数器
	navigationEventThreshold = 5                       // 5次事件后休息
	navigationRestDuration   = 100 * time.Millisecond // 休息100ms
	isNavigationResting      bool                      // 是否在休息状态
	lastNavigationEventTime  time.Time                 // 最后一次事件时间
)

// shouldHandleNavigationEvent 判断是否应该处理导航事件
func shouldHandleNavigationEvent() bool {
	now := time.Now()

	// 如果正在休息中，检查是否休息够了
	if isNavigationResting {
		if now.Sub(lastNavigationEventTime) >= navigationRestDuration {
			// 休息够了，重置状态
			isNavigationResting = false
			navigationEventCounter = 0
			return true
		}
		// 还在休息，忽略事件
		return false
	}

	// 不在休息状态，可以处理
	return true
}

// recordNavigationEvent 记录导航事件
func recordNavigationEvent() {
	navigationEventCounter++
	lastNavigationEventTime = time.Now()

	// 检查是否达到阈值
	if navigationEventCounter >= navigationEventThreshold {
		isNavigationResting = true
	}
}

// navigate 在频率限制内执行导航操作
func navigate(action func()) {
	if shouldHandleNavigationEvent() {
		action()
		recordNavigationEvent()
	}
}

// setupKeyBindings 设置键盘绑定
func (t *TUI) setupKeyBindings() {
	t.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if t.handleKey(event) {
			return nil
		}
		return event
	})
}

// handleKey 处理按键，返回是否已处理
func (t *TUI) handleKey(event *tcell.EventKey) bool {
	switch event.Key() {
	case tcell.KeyCtrlC:
		t.Stop()
	case tcell.KeyUp:
		navigate(func() { t.moveSelection(-1) })
	case tcell.KeyDown:
		navigate(func() { t.moveSelection(1) })
	case tcell.KeyLeft:
		navigate(func() { t.pan(-1) })
	case tcell.KeyRight:
		navigate(func() { t.pan(1) })
	case tcell.KeyPgUp:
		t.scrollPage(-1)
	case tcell.KeyPgDn:
		t.scrollPage(1)
	case tcell.KeyEnter:
		t.toggleSelected()
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q', 'Q':
			t.Stop()
		case 'k':
			navigate(func() { t.moveSelection(-1) })
		case 'j':
			navigate(func() { t.moveSelection(1) })
		case 'h':
			navigate(func() { t.pan(-1) })
		case 'l':
			navigate(func() { t.pan(1) })
		case 'H':
			t.panPage(-1)
		case 'L':
			t.panPage(1)
		case '+', '=':
			t.zoom(-t.tuiConfig.ZoomStep)
		case '-', '_':
			t.zoom(t.tuiConfig.ZoomStep)
		case 'p':
			t.shiftPeriod(1)
		case 'P':
			t.shiftPeriod(-1)
		case ' ':
			t.toggleSelected()
		case 't':
			t.goToToday()
			t.refreshView()
		case 'r':
			t.engine.ForceUpdate()
			t.refreshView()
		default:
			return false
		}
	default:
		return false
	}
	return true
}

// refreshView 交互后重新生成界面内容
func (t *TUI) refreshView() {
	if !t.testMode {
		t.render()
	}
}

// zoom 调整缩放值，越界时在状态栏提示
// 缩放值是每像素毫秒数的以2为底的对数，减小缩放值显示更多细节
func (t *TUI) zoom(delta float64) {
	t.message = ""
	if err := t.engine.ZoomBy(delta); err != nil {
		t.message = err.Error()
	}
	t.refreshView()
}

// shiftPeriod 按周期顺序切换到更大(step>0)或更小的周期
func (t *TUI) shiftPeriod(step int) {
	current := t.engine.Time().Period
	index := 0
	for i, period := range core.Periods {
		if period == current {
			index = i
			break
		}
	}

	next := index + step
	if next < 0 || next >= len(core.Periods) {
		return
	}

	t.message = ""
	if err := t.engine.SetPeriod(core.Periods[next]); err != nil {
		t.message = err.Error()
	}
	t.refreshView()
}

// pan 按主层级单元数平移窗口
func (t *TUI) pan(cells int) {
	t.engine.ScrollHorizontalBy(cells)
	t.refreshView()
}

// panPage 按一屏的单元数平移窗口
func (t *TUI) panPage(direction int) {
	tw := t.engine.Time()
	cells := max(len(tw.MainLevelDates())-1, 1)
	t.pan(direction * cells)
}

// scrollPage 按一屏的行数滚动列表
func (t *TUI) scrollPage(direction int) {
	rows := max(len(t.engine.VisibleRows())-1, 1)
	t.engine.ScrollVerticalBy(direction * rows)
	t.ensureSelectionVisible()
	t.refreshView()
}

// moveSelection 上下移动选中行，必要时滚动列表
func (t *TUI) moveSelection(delta int) {
	rows := t.expandedRows()
	if len(rows) == 0 {
		return
	}

	index := t.selectedIndex(rows) + delta
	if t.selectedRow == "" {
		index = 0
	}
	if index < 0 {
		index = 0
	}
	if index >= len(rows) {
		index = len(rows) - 1
	}
	t.selectedRow = rows[index].ID

	t.scrollToSelection(rows, index)
	t.refreshView()
}

// scrollToSelection 选中行不完整可见时滚动列表
func (t *TUI) scrollToSelection(rows []core.Row, index int) {
	visible := t.engine.VisibleRows()
	if len(visible) == 0 {
		return
	}

	first := -1
	for i, row := range rows {
		if row.ID == visible[0].ID {
			first = i
			break
		}
	}
	if first < 0 {
		return
	}

	// 最后一行可能只显示了一部分
	lastFull := first + len(visible) - 1
	height := 0.0
	for _, row := range visible {
		height += row.Height
	}
	if height > t.engine.Store().Get().Internal.Chart.Dimensions.InnerHeight && len(visible) > 1 {
		lastFull--
	}

	switch {
	case index < first:
		t.engine.ScrollVerticalBy(index - first)
	case index > lastFull:
		t.engine.ScrollVerticalBy(index - lastFull)
	}
}

// ensureSelectionVisible 翻页后让选中行落在可见区域内
func (t *TUI) ensureSelectionVisible() {
	visible := t.engine.VisibleRows()
	if len(visible) == 0 {
		return
	}
	for _, row := range visible {
		if row.ID == t.selectedRow {
			return
		}
	}
	t.selectedRow = visible[0].ID
}

// toggleSelected 展开或折叠选中行
func (t *TUI) toggleSelected() {
	if t.selectedRow == "" {
		return
	}
	if !t.engine.ToggleRow(t.selectedRow) {
		log.Debug("选中行不存在", "row", t.selectedRow)
	}
	t.ensureSelection()
	t.refreshView()
}
