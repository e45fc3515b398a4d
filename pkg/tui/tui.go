// Package tui 提供基于时间轴引擎的终端甘特图界面
// 左侧为可折叠的行列表，右侧为多层日历表头和条目，底部和右侧为滚动条
package tui

import (
	"time"

	"github.com/rivo/tview"
	"github.com/robfig/cron/v3"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/state"
)

// TUI 主界面结构
type TUI struct {
	app        *tview.Application
	chart      *tview.TextView
	status     *tview.TextView
	flex       *tview.Flex
	engine     *state.Engine
	dataSource core.ItemSource
	scheduler  *cron.Cron

	// 配置信息
	tuiConfig *Config

	// 界面状态
	selectedRow string // 选中行的ID，为空表示没有选中
	width       int    // 最近一次布局使用的图表区域尺寸
	height      int
	message     string // 状态栏上的临时提示

	// 数据来源信息
	sourceName string
	itemCount  int
	lastUpdate time.Time

	// 控制
	stopChan chan struct{}
	doneChan chan struct{}

	// 测试模式标志
	testMode bool
}

// NewTUI 创建新的TUI实例
func NewTUI(engine *state.Engine, dataSource core.ItemSource, tuiConfig *Config) *TUI {
	tui := &TUI{
		app:        tview.NewApplication(),
		chart:      tview.NewTextView(),
		status:     tview.NewTextView(),
		engine:     engine,
		dataSource: dataSource,
		tuiConfig:  tuiConfig,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
		testMode:   false,
	}

	tui.setupUI()
	tui.setupKeyBindings()

	return tui
}

// NewTUIForTest 创建用于测试的TUI实例（不初始化图形组件）
func NewTUIForTest(engine *state.Engine, dataSource core.ItemSource, tuiConfig *Config) *TUI {
	return &TUI{
		app:        tview.NewApplication(), // 创建一个应用实例，但不会运行
		engine:     engine,
		dataSource: dataSource,
		tuiConfig:  tuiConfig,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
		testMode:   true,
	}
}

// Run 启动TUI界面
func (t *TUI) Run() error {
	// 引擎先于数据源启动，保证第一批数据能触发计算
	t.engine.Start()
	t.dataSource.Start()
	t.startScheduler()

	// 启动数据处理goroutine
	go t.processData()

	// 运行应用
	err := t.app.Run()

	// 确保清理工作完成
	<-t.doneChan

	return err
}

// Stop 停止TUI界面
func (t *TUI) Stop() {
	// 先发送停止信号，让processData退出
	select {
	case <-t.stopChan:
		// stopChan已经关闭，避免重复关闭
		return
	default:
		close(t.stopChan)
	}

	t.stopScheduler()

	// 停止数据源
	t.dataSource.Stop()

	// 停止应用
	t.app.Stop()

	t.engine.Stop()
}

// processData 处理来自数据源的批次和定时刷新
// 引擎的写操作都通过UI线程执行，保持单线程的计算顺序
func (t *TUI) processData() {
	defer close(t.doneChan)

	dataChan := t.dataSource.DataStream()
	uiTicker := time.NewTicker(t.tuiConfig.RefreshInterval)
	defer uiTicker.Stop()

	// 初始UI刷新
	t.forceInitialDraw()

	for {
		select {
		case batch, ok := <-dataChan:
			if !ok {
				return
			}
			t.handleDataUpdate(batch)

		case <-uiTicker.C:
			t.handleUIRefresh()

		case <-t.stopChan:
			return
		}
	}
}

// forceInitialDraw 强制初始绘制
func (t *TUI) forceInitialDraw() {
	if !t.testMode && t.app != nil {
		t.app.QueueUpdateDraw(func() {
			t.render()
		})
	}
}

// handleDataUpdate 处理数据更新
func (t *TUI) handleDataUpdate(batch core.ItemBatch) {
	if t.testMode {
		t.applyBatch(batch)
		return
	}
	t.safeUIUpdate(func() {
		t.applyBatch(batch)
	})
}

// handleUIRefresh 处理UI刷新
func (t *TUI) handleUIRefresh() {
	if !t.testMode && t.app != nil {
		t.safeUIUpdate(func() {
			t.render()
		})
	}
}
