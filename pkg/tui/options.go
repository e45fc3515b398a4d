// Package tui 选项模式支持
package tui

import (
	"time"
)

// Option TUI配置选项函数类型
type Option func(*Config)

// WithRefreshInterval 设置UI刷新间隔
func WithRefreshInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.RefreshInterval = interval
	}
}

// WithRefreshCron 设置周期标记的刷新计划，空字符串表示关闭
func WithRefreshCron(spec string) Option {
	return func(c *Config) {
		c.RefreshCron = spec
	}
}

// WithPixelsPerColumn 设置每个终端列对应的时间轴像素
func WithPixelsPerColumn(pixels float64) Option {
	return func(c *Config) {
		c.PixelsPerColumn = pixels
	}
}

// WithListWidth 设置行列表宽度
func WithListWidth(width int) Option {
	return func(c *Config) {
		c.ListWidth = width
	}
}

// WithChartSize 设置图表尺寸
func WithChartSize(width, height int) Option {
	return func(c *Config) {
		c.MinChartWidth = width
		c.MinChartHeight = height
	}
}

// WithZoomStep 设置缩放步长
func WithZoomStep(step float64) Option {
	return func(c *Config) {
		c.ZoomStep = step
	}
}

// NewConfigWithOptions 使用选项模式创建TUI配置
func NewConfigWithOptions(opts ...Option) *Config {
	config := DefaultConfig()

	// 应用所有选项
	for _, opt := range opts {
		opt(config)
	}

	return config
}
