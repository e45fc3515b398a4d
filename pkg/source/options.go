// Package source 选项模式支持
package source

import (
	"time"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
)

// Option 配置选项函数类型
type Option func(*Config)

// WithInterval 设置重新加载间隔，0表示只加载一次
func WithInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.Interval = interval
	}
}

// WithBufferSize 设置缓冲区大小
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// WithExpandRange 设置重复事件相对于当前时间的展开范围
func WithExpandRange(past, future time.Duration) Option {
	return func(c *Config) {
		c.Past = past
		c.Future = future
	}
}

// WithMaxOccurrences 设置单个重复事件最多展开的次数
func WithMaxOccurrences(n int) Option {
	return func(c *Config) {
		c.MaxOccurrences = n
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

// NewFileSourceWithOptions 使用选项模式创建文件数据源
func NewFileSourceWithOptions(path string, adapter *datetime.Adapter, opts ...Option) (core.ItemSource, error) {
	config, err := NewConfigWithOptions(opts...)
	if err != nil {
		return nil, err
	}

	loader, err := NewFileLoader(path, config, adapter)
	if err != nil {
		return nil, err
	}

	poller, err := NewPoller(loader, config)
	if err != nil {
		return nil, err
	}
	return poller, nil
}
