// Package source 配置定义
package source

import (
	"errors"
	"time"
)

// Config 条目数据源的配置结构
type Config struct {
	Interval       time.Duration // 重新加载间隔，0表示只加载一次
	BufferSize     int           // 数据通道缓冲区大小
	Past           time.Duration // 重复事件向过去展开的范围
	Future         time.Duration // 重复事件向未来展开的范围
	MaxOccurrences int           // 单个重复事件最多展开的次数
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Interval:       30 * time.Second,     // 默认30秒重新加载
		BufferSize:     4,                    // 只需要保留最新的几个批次
		Past:           90 * 24 * time.Hour,  // 默认向前展开90天
		Future:         365 * 24 * time.Hour, // 默认向后展开一年
		MaxOccurrences: 1000,                 // 默认最多展开1000次
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.Interval < 0 {
		return errors.New("重新加载间隔不能为负数")
	}

	if c.Interval > 0 && c.Interval < 100*time.Millisecond {
		return errors.New("重新加载间隔不能小于100ms")
	}

	if c.BufferSize <= 0 {
		return errors.New("缓冲区大小必须大于0")
	}

	if c.Past < 0 || c.Future < 0 {
		return errors.New("展开范围不能为负数")
	}

	if c.MaxOccurrences <= 0 {
		return errors.New("最大展开次数必须大于0")
	}

	return nil
}
