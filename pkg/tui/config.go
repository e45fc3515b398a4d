// Package tui 配置定义
package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Config TUI组件的配置结构
type Config struct {
	RefreshInterval time.Duration // UI刷新间隔
	RefreshCron     string        // 周期标记刷新计划（cron表达式），为空时不启用
	PixelsPerColumn float64       // 每个终端列对应的时间轴像素
	ListWidth       int           // 左侧行列表宽度
	MinChartWidth   int           // 最小图表宽度
	MinChartHeight  int           // 最小图表高度
	ZoomStep        float64       // 每次缩放按键改变的缩放值
	MaxChartSize    int           // 最大图表尺寸（防止极端值）
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval: time.Second, // 默认1s刷新
		RefreshCron:     "0 * * * *", // 每小时整点
		PixelsPerColumn: 1,           // 一列一个像素
		ListWidth:       24,          // 行列表宽度
		MinChartWidth:   20,          // 最小图表宽度
		MinChartHeight:  5,           // 最小图表高度
		ZoomStep:        0.5,         // 缩放步长
		MaxChartSize:    1000,        // 最大图表尺寸
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return errors.New("UI刷新间隔必须大于0")
	}

	if c.RefreshInterval < 10*time.Millisecond {
		return errors.New("UI刷新间隔不能小于10ms")
	}

	if c.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
			return fmt.Errorf("无效的刷新计划 '%s': %w", c.RefreshCron, err)
		}
	}

	if c.PixelsPerColumn <= 0 {
		return errors.New("每列像素必须大于0")
	}

	if c.ListWidth <= 0 {
		return errors.New("行列表宽度必须大于0")
	}

	if c.MinChartWidth <= 0 {
		return errors.New("最小图表宽度必须大于0")
	}

	if c.MinChartHeight <= 0 {
		return errors.New("最小图表高度必须大于0")
	}

	if c.ZoomStep <= 0 {
		return errors.New("缩放步长必须大于0")
	}

	if c.MaxChartSize <= 0 {
		return errors.New("最大图表尺寸必须大于0")
	}

	return nil
}
