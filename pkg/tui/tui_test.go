package tui

import (
	"math"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
	"github.com/Kevin-Rudy/gogantt/pkg/state"
	"github.com/Kevin-Rudy/gogantt/pkg/timeline"
)

const dayMs = int64(24 * time.Hour / time.Millisecond)

func ms(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).UnixMilli()
}

// mockDataSource 模拟数据源，用于测试
type mockDataSource struct {
	dataChan chan core.ItemBatch
	started  bool
	stopped  bool
}

func newMockDataSource() *mockDataSource {
	return &mockDataSource{
		dataChan: make(chan core.ItemBatch, 10),
	}
}

func (m *mockDataSource) DataStream() <-chan core.ItemBatch {
	return m.dataChan
}

func (m *mockDataSource) Start() {
	m.started = true
}

func (m *mockDataSource) Stop() {
	if m.stopped {
		return
	}
	m.stopped = true
	close(m.dataChan)
}

// newTestEngine 创建每天40像素、范围为2024年1月的引擎，当前时间固定为1月15日中午
func newTestEngine(t testing.TB) *state.Engine {
	t.Helper()

	tcfg, err := timeline.NewConfigWithOptions(
		timeline.WithZoom(math.Log2(float64(dayMs)/40)),
		timeline.WithPeriod(core.PeriodDay),
		timeline.WithRange(ms(2024, 1, 1), ms(2024, 1, 31)),
		timeline.WithoutAdditionalSpaces(),
		timeline.WithSpacing(0),
	)
	if err != nil {
		t.Fatalf("Failed to create timeline config: %v", err)
	}

	cfg, err := state.NewConfigWithOptions(
		state.WithTimeline(tcfg),
		state.WithDatetime(&datetime.Config{Locale: "en-GB", UTC: true}),
	)
	if err != nil {
		t.Fatalf("Failed to create engine config: %v", err)
	}

	e, err := state.NewEngine(cfg)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	e.Adapter().SetClock(func() time.Time {
		return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	})
	e.Start()
	t.Cleanup(e.Stop)
	return e
}

// newTestTUI 创建60x12的测试界面：列表宽10列，时间轴48列，每列10像素
func newTestTUI(t testing.TB) *TUI {
	t.Helper()

	config := NewConfigWithOptions(
		WithListWidth(10),
		WithPixelsPerColumn(10),
		WithRefreshCron(""),
	)
	tui := NewTUIForTest(newTestEngine(t), newMockDataSource(), config)
	tui.resize(60, 12)
	return tui
}

func testBatch() core.ItemBatch {
	return core.ItemBatch{
		Source: "plan.yaml",
		Rows: []core.Row{
			{ID: "proj", Label: "Project", Expanded: true},
			{ID: "a", ParentID: "proj", Label: "Alpha"},
			{ID: "b", Label: "Beta"},
		},
		Items: []core.Item{
			{ID: "i1", RowID: "a", Label: "Design", Time: core.ItemTime{Start: ms(2024, 1, 2), End: ms(2024, 1, 5)}},
			{ID: "i2", RowID: "b", Label: "Build", Time: core.ItemTime{Start: ms(2024, 1, 10), End: ms(2024, 1, 20)}},
		},
	}
}

var colorTag = regexp.MustCompile(`\[[^\[\]]*\]`)

// plainLines 去掉颜色标签后按行拆分
func plainLines(text string) []string {
	return strings.Split(colorTag.ReplaceAllString(text, ""), "\n")
}

// TestNewTUI 测试TUI实例创建
func TestNewTUI(t *testing.T) {
	mock := newMockDataSource()
	tuiConfig := DefaultConfig()
	tui := NewTUIForTest(newTestEngine(t), mock, tuiConfig)

	if tui == nil {
		t.Fatal("NewTUIForTest should return a valid TUI instance")
	}

	if tui.dataSource == nil || tui.engine == nil {
		t.Error("TUI should have a valid data source and engine")
	}

	if !tui.testMode {
		t.Error("TUI should be in test mode")
	}

	if tui.selectedRow != "" {
		t.Errorf("Expected no selection, got %s", tui.selectedRow)
	}
}

// TestConfig 测试配置验证和选项
func TestConfig(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}

	cases := map[string]*Config{
		"refresh":  NewConfigWithOptions(WithRefreshInterval(time.Millisecond)),
		"cron":     NewConfigWithOptions(WithRefreshCron("sometimes")),
		"pixels":   NewConfigWithOptions(WithPixelsPerColumn(0)),
		"list":     NewConfigWithOptions(WithListWidth(0)),
		"chart":    NewConfigWithOptions(WithChartSize(0, 5)),
		"zoomstep": NewConfigWithOptions(WithZoomStep(0)),
	}
	for name, config := range cases {
		if err := config.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}

	config := NewConfigWithOptions(WithRefreshCron(""), WithChartSize(30, 8))
	if err := config.Validate(); err != nil {
		t.Errorf("Expected disabled cron to be valid, got %v", err)
	}
	if config.MinChartWidth != 30 || config.MinChartHeight != 8 {
		t.Errorf("Expected chart size 30x8, got %dx%d", config.MinChartWidth, config.MinChartHeight)
	}
}

// TestApplyBatch 测试数据批次的处理
func TestApplyBatch(t *testing.T) {
	tui := newTestTUI(t)
	tui.applyBatch(testBatch())

	if tui.sourceName != "plan.yaml" || tui.itemCount != 2 {
		t.Errorf("Expected source info, got %s/%d", tui.sourceName, tui.itemCount)
	}
	if tui.selectedRow != "proj" {
		t.Errorf("Expected first row to be selected, got %s", tui.selectedRow)
	}
	if rows := tui.engine.VisibleRows(); len(rows) != 3 {
		t.Errorf("Expected 3 visible rows, got %d", len(rows))
	}

	// 选中行被删除后改为选中第一行
	tui.selectedRow = "b"
	tui.applyBatch(core.ItemBatch{Source: "plan.yaml", Rows: []core.Row{{ID: "c", Label: "Gamma"}}})
	if tui.selectedRow != "c" {
		t.Errorf("Expected selection to move to c, got %s", tui.selectedRow)
	}
}

// TestProcessData 数据通道中的批次交给引擎，通道关闭后处理结束
func TestProcessData(t *testing.T) {
	tui := newTestTUI(t)
	mock := tui.dataSource.(*mockDataSource)

	mock.dataChan <- testBatch()
	mock.Stop()

	done := make(chan struct{})
	go func() {
		tui.processData()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processData should return after the channel is closed")
	}

	if len(tui.engine.VisibleItems()) != 2 {
		t.Errorf("Expected 2 visible items, got %d", len(tui.engine.VisibleItems()))
	}
}

// TestDrawGantt 测试甘特图的绘制
func TestDrawGantt(t *testing.T) {
	tui := newTestTUI(t)
	tui.applyBatch(testBatch())

	lines := plainLines(tui.drawGantt(60, 12))
	if len(lines) != 12 {
		t.Fatalf("Expected 12 lines, got %d", len(lines))
	}
	for i, line := range lines {
		if n := len([]rune(line)); n != 60 && !strings.Contains(line, "行") {
			t.Errorf("Line %d: expected 60 columns, got %d: %q", i, n, line)
		}
	}

	// 日历表头：上层为月份，下层为日期
	if !strings.Contains(lines[0], "January 2024") {
		t.Errorf("Expected month header, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "│01") || !strings.Contains(lines[1], "│12") {
		t.Errorf("Expected day header from 01 to 12, got %q", lines[1])
	}

	// 行列表：父行带展开标记，子行缩进
	if !strings.HasPrefix(lines[2], "▾ Project") {
		t.Errorf("Expected expanded parent row, got %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "    Alpha") {
		t.Errorf("Expected indented child row, got %q", lines[3])
	}

	// 条目：1月2日到5日，每天4列
	row := []rune(lines[3])
	if !strings.Contains(lines[3], "█Design█") {
		t.Errorf("Expected labelled bar, got %q", lines[3])
	}
	if row[11+4] != '█' || row[11+15] != '█' || row[11+16] == '█' {
		t.Errorf("Expected bar in columns 4-15, got %q", lines[3])
	}

	// 超出窗口右边缘的条目显示截断标记
	if row := []rune(lines[4]); row[11+47] != '▶' {
		t.Errorf("Expected cut marker at the right edge, got %q", lines[4])
	}

	// 滚动条
	if !strings.Contains(lines[11], "━") {
		t.Errorf("Expected horizontal scrollbar thumb, got %q", lines[11])
	}
	if row := []rune(lines[2]); row[59] != '┃' {
		t.Errorf("Expected vertical scrollbar thumb, got %q", lines[2])
	}
}

// TestDrawGanttStates 测试尺寸过小和尚未加载时的提示
func TestDrawGanttStates(t *testing.T) {
	tui := newTestTUI(t)
	if text := tui.drawGantt(20, 4); !strings.Contains(text, "终端尺寸过小") {
		t.Errorf("Expected size warning, got %q", text)
	}

	config := DefaultConfig()
	empty := NewTUIForTest(newTestEngine(t), newMockDataSource(), config)
	if text := empty.drawGantt(80, 20); !strings.Contains(text, "正在加载条目") {
		t.Errorf("Expected loading message, got %q", text)
	}
}

// TestTUINavigation 测试行选择和展开折叠
func TestTUINavigation(t *testing.T) {
	tui := newTestTUI(t)
	tui.applyBatch(testBatch())

	tui.moveSelection(1)
	if tui.selectedRow != "a" {
		t.Errorf("Expected a, got %s", tui.selectedRow)
	}
	tui.moveSelection(1)
	tui.moveSelection(1)
	if tui.selectedRow != "b" {
		t.Errorf("Expected selection to stop at b, got %s", tui.selectedRow)
	}

	tui.moveSelection(-5)
	if tui.selectedRow != "proj" {
		t.Errorf("Expected proj, got %s", tui.selectedRow)
	}

	tui.toggleSelected()
	if rows := tui.expandedRows(); len(rows) != 2 {
		t.Errorf("Expected 2 rows after collapsing, got %d", len(rows))
	}
	if tui.selectedRow != "proj" {
		t.Errorf("Expected proj to stay selected, got %s", tui.selectedRow)
	}

	tui.moveSelection(1)
	if tui.selectedRow != "b" {
		t.Errorf("Expected b after collapsing, got %s", tui.selectedRow)
	}
}

// TestZoomAndPeriod 测试缩放和周期切换
func TestZoomAndPeriod(t *testing.T) {
	tui := newTestTUI(t)
	tui.applyBatch(testBatch())

	before := tui.engine.Time().Zoom
	tui.zoom(-0.5)
	if got := tui.engine.Time().Zoom; math.Abs(got-(before-0.5)) > 1e-9 {
		t.Errorf("Expected zoom %v, got %v", before-0.5, got)
	}

	tui.zoom(500)
	if tui.message == "" {
		t.Error("Expected a message for an out of range zoom")
	}

	tui.shiftPeriod(1)
	if period := tui.engine.Time().Period; period != core.PeriodWeek {
		t.Errorf("Expected week period, got %s", period)
	}
	if tui.message != "" {
		t.Errorf("Expected message to be cleared, got %s", tui.message)
	}

	tui.shiftPeriod(-1)
	if period := tui.engine.Time().Period; period != core.PeriodDay {
		t.Errorf("Expected day period, got %s", period)
	}
}

// TestPanAndToday 测试平移和回到今天
func TestPanAndToday(t *testing.T) {
	tui := newTestTUI(t)
	tui.applyBatch(testBatch())

	tui.pan(1)
	if left := tui.engine.Time().LeftGlobal; left != ms(2024, 1, 2) {
		t.Errorf("Expected window to start on Jan 2, got %v", time.UnixMilli(left).UTC())
	}

	tui.goToToday()
	tw := tui.engine.Time()
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC).UnixMilli()
	if now < tw.LeftGlobal || now >= tw.RightGlobal {
		t.Errorf("Expected window to contain now, got [%v, %v)",
			time.UnixMilli(tw.LeftGlobal).UTC(), time.UnixMilli(tw.RightGlobal).UTC())
	}
	if _, ok := tui.nowColumn(&tw); !ok {
		t.Error("Expected now marker to be visible")
	}
}

// TestHandleKey 测试按键分发
func TestHandleKey(t *testing.T) {
	tui := newTestTUI(t)
	tui.applyBatch(testBatch())

	before := tui.engine.Time().Zoom
	if !tui.handleKey(tcell.NewEventKey(tcell.KeyRune, '+', tcell.ModNone)) {
		t.Error("Expected + to be handled")
	}
	if tui.engine.Time().Zoom >= before {
		t.Errorf("Expected + to zoom in, got %v", tui.engine.Time().Zoom)
	}

	if !tui.handleKey(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)) {
		t.Error("Expected space to be handled")
	}
	if rows := tui.expandedRows(); len(rows) != 2 {
		t.Errorf("Expected space to collapse the selected row, got %d rows", len(rows))
	}

	if tui.handleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)) {
		t.Error("Expected x to be ignored")
	}
}

// TestScheduledRefresh 定时刷新会重新生成日历
func TestScheduledRefresh(t *testing.T) {
	tui := newTestTUI(t)
	tui.applyBatch(testBatch())

	before := tui.engine.Time()
	tui.handleScheduledRefresh()
	after := tui.engine.Time()

	if after.LeftGlobal != before.LeftGlobal || len(after.MainLevelDates()) != len(before.MainLevelDates()) {
		t.Errorf("Expected the same window after a refresh, got [%d, %d)", after.LeftGlobal, after.RightGlobal)
	}

	tui.tuiConfig.RefreshCron = "@every 1h"
	tui.startScheduler()
	if tui.scheduler == nil {
		t.Fatal("Expected scheduler to start")
	}
	tui.stopScheduler()
	if tui.scheduler != nil {
		t.Error("Expected scheduler to be cleared")
	}
}

// TestTUIStop 测试TUI停止功能
func TestTUIStop(t *testing.T) {
	mock := newMockDataSource()
	tui := NewTUIForTest(newTestEngine(t), mock, DefaultConfig())

	// 启动后立即停止
	go func() {
		time.Sleep(10 * time.Millisecond)
		tui.Stop()
	}()

	// 验证停止信号
	select {
	case <-tui.stopChan:
		// 正常收到停止信号
	case <-time.After(100 * time.Millisecond):
		t.Error("Stop signal should be sent within timeout")
	}
}

// BenchmarkDrawGantt 基准测试甘特图绘制性能
func BenchmarkDrawGantt(b *testing.B) {
	tui := newTestTUI(b)
	tui.applyBatch(testBatch())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tui.drawGantt(60, 12)
	}
}
