// Package scroll 配置定义
package scroll

import (
	"errors"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
)

// Config 单个方向滚动条的配置 (scroll.horizontal / scroll.vertical)
type Config struct {
	Size         float64 `yaml:"size" json:"size"`                     // 滚动条粗细
	MinInnerSize float64 `yaml:"min_inner_size" json:"min_inner_size"` // 滑块最小长度
}

// DefaultConfig 返回默认配置，适合以字符为单位的终端
func DefaultConfig() *Config {
	return &Config{
		Size:         1,
		MinInnerSize: 1,
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.Size < 0 {
		return errors.New("滚动条粗细不能为负数")
	}
	if c.MinInnerSize < 0 {
		return errors.New("滑块最小长度不能为负数")
	}
	return nil
}

// Apply 把配置写入滚动状态
func (c *Config) Apply(state core.ScrollState) core.ScrollState {
	state.Size = c.Size
	state.MinInnerSize = c.MinInnerSize
	return state
}
