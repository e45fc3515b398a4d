// Package tui 时间管理模块
package tui

import (
	"math"

	"github.com/robfig/cron/v3"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/log"
)

// column 把视口像素换算为终端列
func (t *TUI) column(px float64) int {
	return int(math.Floor(px / t.tuiConfig.PixelsPerColumn))
}

// nowColumn 返回当前时间所在的列，不在窗口内时返回false
func (t *TUI) nowColumn(tw *core.TimeWindow) (int, bool) {
	now := t.engine.Adapter().Now().ValueOf()
	if now < tw.LeftGlobal || now >= tw.RightGlobal {
		return 0, false
	}
	px := t.engine.Converter().OffsetPxFromDate(now, tw.MainLevelDates(), tw)
	x := t.column(px)
	if x < 0 {
		return 0, false
	}
	return x, true
}

// goToToday 平移窗口使当前时间位于中间
func (t *TUI) goToToday() {
	tw := t.engine.Time()
	now := t.engine.Adapter().Now().ValueOf()
	t.engine.GoTo(now - (tw.RightGlobal-tw.LeftGlobal)/2)
}

// startScheduler 按cron计划刷新当前/下一个/上一个周期的标记
func (t *TUI) startScheduler() {
	if t.tuiConfig.RefreshCron == "" {
		return
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(t.tuiConfig.RefreshCron, t.handleScheduledRefresh); err != nil {
		log.Warn("无法启动刷新计划", "spec", t.tuiConfig.RefreshCron, "error", err)
		return
	}
	scheduler.Start()
	t.scheduler = scheduler
}

// stopScheduler 停止刷新计划，不等待正在执行的任务
func (t *TUI) stopScheduler() {
	if t.scheduler != nil {
		t.scheduler.Stop()
		t.scheduler = nil
	}
}

// handleScheduledRefresh 处理定时刷新
func (t *TUI) handleScheduledRefresh() {
	log.Debug("按计划刷新日历")
	if t.testMode {
		t.engine.ForceUpdate()
		return
	}
	t.safeUIUpdate(func() {
		t.engine.ForceUpdate()
		t.render()
	})
}
