// Package calendar 负责日历层级配置、日期网格生成以及多层级日历的构建
package calendar

import (
	"errors"
	"fmt"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
)

// ErrNoMainLevel 没有任何日历层级被标记为主层级
var ErrNoMainLevel = errors.New("未找到主日历层级 (calendar.levels[].main)")

// Level 表示一行日历（例如年份行、月份行、日期行）
type Level struct {
	Formats []core.Format `yaml:"formats" json:"formats"`
	Main    bool          `yaml:"main,omitempty" json:"main,omitempty"`
}

// Config 日历配置
type Config struct {
	Levels []Level `yaml:"levels" json:"levels"`
}

// DefaultConfig 返回默认的两层日历：上层为较大周期，下层为主层级
func DefaultConfig() *Config {
	return &Config{Levels: DefaultLevels()}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	return ValidateLevels(c.Levels)
}

// ActiveFormat 返回在给定缩放下生效的格式
// 按配置顺序查找第一个满足 zoom <= ZoomTo 的格式；缩放超出所有格式时返回最后一个
func ActiveFormat(formats []core.Format, zoom float64) (core.Format, bool) {
	if len(formats) == 0 {
		return core.Format{}, false
	}
	for _, format := range formats {
		if zoom <= format.ZoomTo {
			return format, true
		}
	}
	return formats[len(formats)-1], true
}

// MainLevelIndex 返回主层级的索引
func MainLevelIndex(levels []Level) (int, error) {
	for i, level := range levels {
		if level.Main {
			return i, nil
		}
	}
	return -1, ErrNoMainLevel
}

// GuessPeriod 根据缩放从主层级推断当前周期
func GuessPeriod(levels []Level, zoom float64) (core.Period, bool) {
	index, err := MainLevelIndex(levels)
	if err != nil {
		return "", false
	}
	format, ok := ActiveFormat(levels[index].Formats, zoom)
	if !ok {
		return "", false
	}
	return format.Period, true
}

// DefaultZoom 返回主层级中某周期被标记为默认的缩放值
func DefaultZoom(levels []Level, period core.Period) (float64, bool) {
	index, err := MainLevelIndex(levels)
	if err != nil {
		return 0, false
	}
	for _, format := range levels[index].Formats {
		if format.Period == period && format.Default {
			return format.ZoomTo, true
		}
	}
	return 0, false
}

// ValidateLevels 在加载配置时检查日历层级的约定：
// 必须恰好有一个主层级，每个层级的格式按ZoomTo升序排列，同一层级中每个周期最多一个默认格式
func ValidateLevels(levels []Level) error {
	if len(levels) == 0 {
		return errors.New("日历层级不能为空")
	}

	mainCount := 0
	for i, level := range levels {
		if level.Main {
			mainCount++
		}

		if len(level.Formats) == 0 {
			return fmt.Errorf("日历层级 %d 没有任何格式", i)
		}

		defaults := make(map[core.Period]bool)
		for j, format := range level.Formats {
			if !format.Period.Valid() {
				return fmt.Errorf("日历层级 %d 格式 %d: 不支持的周期 '%s'", i, j, format.Period)
			}
			if format.Layout == "" {
				return fmt.Errorf("日历层级 %d 格式 %d: 格式字符串不能为空", i, j)
			}
			if j > 0 && format.ZoomTo < level.Formats[j-1].ZoomTo {
				return fmt.Errorf("日历层级 %d 格式 %d: zoom_to 必须按升序排列", i, j)
			}
			if format.Default {
				if defaults[format.Period] {
					return fmt.Errorf("日历层级 %d: 周期 '%s' 有多个默认格式", i, format.Period)
				}
				defaults[format.Period] = true
			}
		}
	}

	if mainCount == 0 {
		return ErrNoMainLevel
	}
	if mainCount > 1 {
		return fmt.Errorf("只能有一个主日历层级，当前有 %d 个", mainCount)
	}

	return nil
}

// DefaultLevels 返回默认日历层级
// 布局字符串使用Go时间格式，"~" 分隔开始与结束的格式
func DefaultLevels() []Level {
	return []Level{
		{
			Formats: []core.Format{
				{ZoomTo: 17, Period: core.PeriodDay, Layout: "Monday, 02 January 2006"},
				{ZoomTo: 23, Period: core.PeriodMonth, Layout: "January 2006"},
				{ZoomTo: 26, Period: core.PeriodMonth, Layout: "Jan 2006"},
				{ZoomTo: 100, Period: core.PeriodYear, Layout: "2006"},
			},
		},
		{
			Main: true,
			Formats: []core.Format{
				{ZoomTo: 16, Period: core.PeriodHour, Layout: "15:04"},
				{ZoomTo: 17, Period: core.PeriodHour, Layout: "15", Default: true},
				{ZoomTo: 19, Period: core.PeriodDay, Layout: "Mon 02 Jan"},
				{ZoomTo: 20, Period: core.PeriodDay, Layout: "Mon 02"},
				{ZoomTo: 21, Period: core.PeriodDay, Layout: "02", Default: true},
				{ZoomTo: 22, Period: core.PeriodDay, Layout: "02"},
				{ZoomTo: 23, Period: core.PeriodWeek, Layout: "02 Jan~02 Jan"},
				{ZoomTo: 24, Period: core.PeriodWeek, Layout: "02~02", Default: true},
				{ZoomTo: 25, Period: core.PeriodMonth, Layout: "January"},
				{ZoomTo: 26, Period: core.PeriodMonth, Layout: "Jan", Default: true},
				{ZoomTo: 29, Period: core.PeriodYear, Layout: "2006", Default: true},
				{ZoomTo: 100, Period: core.PeriodYear, Layout: "06"},
			},
		},
	}
}
