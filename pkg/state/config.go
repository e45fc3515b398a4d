// Package state 配置定义
package state

import (
	"errors"
	"fmt"

	"github.com/Kevin-Rudy/gogantt/pkg/calendar"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
	"github.com/Kevin-Rudy/gogantt/pkg/scroll"
	"github.com/Kevin-Rudy/gogantt/pkg/timeline"
)

// Config 引擎配置
type Config struct {
	Timeline   *timeline.Config
	Datetime   *datetime.Config
	Horizontal *scroll.Config
	Vertical   *scroll.Config
	RowHeight  float64        // 未设置行高的行使用的高度
	Hooks      calendar.Hooks // 日历生成的扩展点
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Timeline:   timeline.DefaultConfig(),
		Datetime:   datetime.DefaultConfig(),
		Horizontal: scroll.DefaultConfig(),
		Vertical:   scroll.DefaultConfig(),
		RowHeight:  1,
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.Timeline == nil || c.Datetime == nil || c.Horizontal == nil || c.Vertical == nil {
		return errors.New("引擎配置不完整")
	}
	if c.RowHeight <= 0 {
		return errors.New("行高必须大于0")
	}
	if err := c.Timeline.Validate(); err != nil {
		return fmt.Errorf("时间轴配置无效: %w", err)
	}
	if err := c.Datetime.Validate(); err != nil {
		return fmt.Errorf("日期配置无效: %w", err)
	}
	if err := c.Horizontal.Validate(); err != nil {
		return fmt.Errorf("水平滚动条配置无效: %w", err)
	}
	if err := c.Vertical.Validate(); err != nil {
		return fmt.Errorf("垂直滚动条配置无效: %w", err)
	}
	return nil
}

// Option 配置选项函数类型
type Option func(*Config)

// WithTimeline 设置时间轴配置
func WithTimeline(config *timeline.Config) Option {
	return func(c *Config) {
		c.Timeline = config
	}
}

// WithDatetime 设置日期配置
func WithDatetime(config *datetime.Config) Option {
	return func(c *Config) {
		c.Datetime = config
	}
}

// WithScroll 设置两个方向的滚动条配置
func WithScroll(horizontal, vertical *scroll.Config) Option {
	return func(c *Config) {
		c.Horizontal = horizontal
		c.Vertical = vertical
	}
}

// WithRowHeight 设置默认行高
func WithRowHeight(height float64) Option {
	return func(c *Config) {
		c.RowHeight = height
	}
}

// WithHooks 设置日历扩展点
func WithHooks(hooks calendar.Hooks) Option {
	return func(c *Config) {
		c.Hooks = hooks
	}
}

// NewConfigWithOptions 使用选项模式创建配置
func NewConfigWithOptions(opts ...Option) (*Config, error) {
	config := DefaultConfig()

	for _, opt := range opts {
		opt(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
