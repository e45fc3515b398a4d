// Package timeline 选项模式支持
package timeline

import (
	"github.com/Kevin-Rudy/gogantt/pkg/calendar"
	"github.com/Kevin-Rudy/gogantt/pkg/core"
)

// Option 配置选项函数类型
type Option func(*Config)

// WithZoom 设置缩放值
func WithZoom(zoom float64) Option {
	return func(c *Config) {
		c.Time.Zoom = zoom
	}
}

// WithPeriod 设置周期
func WithPeriod(period core.Period) Option {
	return func(c *Config) {
		c.Time.Period = period
	}
}

// WithRange 设置时间范围（毫秒），0表示由条目推导
func WithRange(from, to int64) Option {
	return func(c *Config) {
		c.Time.From = from
		c.Time.To = to
	}
}

// WithCalculatedZoomMode 设置是否由视口宽度计算缩放
func WithCalculatedZoomMode(enabled bool) Option {
	return func(c *Config) {
		c.Time.CalculatedZoomMode = enabled
	}
}

// WithAdditionalSpace 设置某周期下的前后留白
func WithAdditionalSpace(period core.Period, space AdditionalSpace) Option {
	return func(c *Config) {
		if c.Time.AdditionalSpaces == nil {
			c.Time.AdditionalSpaces = make(map[core.Period]AdditionalSpace)
		}
		c.Time.AdditionalSpaces[period] = space
	}
}

// WithoutAdditionalSpaces 清除所有留白
func WithoutAdditionalSpaces() Option {
	return func(c *Config) {
		c.Time.AdditionalSpaces = nil
	}
}

// WithLevels 设置日历层级
func WithLevels(levels []calendar.Level) Option {
	return func(c *Config) {
		c.Calendar.Levels = levels
	}
}

// WithSpacing 设置条目间距
func WithSpacing(spacing float64) Option {
	return func(c *Config) {
		c.Spacing = spacing
	}
}

// NewConfigWithOptions 使用选项模式创建配置
func NewConfigWithOptions(opts ...Option) (*Config, error) {
	config := DefaultConfig()

	// 应用所有选项
	for _, opt := range opts {
		opt(config)
	}

	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
