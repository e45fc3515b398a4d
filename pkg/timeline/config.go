// Package timeline 配置定义
package timeline

import (
	"errors"
	"fmt"

	"github.com/Kevin-Rudy/gogantt/pkg/calendar"
	"github.com/Kevin-Rudy/gogantt/pkg/core"
)

// AdditionalSpace 在时间范围前后追加的留白
type AdditionalSpace struct {
	Before int         `yaml:"before" json:"before"`
	After  int         `yaml:"after" json:"after"`
	Period core.Period `yaml:"period" json:"period"`
}

// TimeConfig 时间轴配置 (chart.time)
// From/To 为0时由条目的最早开始和最晚结束时间推导
type TimeConfig struct {
	From               int64                           `yaml:"from" json:"from"`
	To                 int64                           `yaml:"to" json:"to"`
	Zoom               float64                         `yaml:"zoom" json:"zoom"`
	Period             core.Period                     `yaml:"period" json:"period"`
	CalculatedZoomMode bool                            `yaml:"calculated_zoom_mode" json:"calculated_zoom_mode"`
	AdditionalSpaces   map[core.Period]AdditionalSpace `yaml:"additional_spaces,omitempty" json:"additional_spaces,omitempty"`

	LeftGlobal   int64 `yaml:"-" json:"left_global"`
	CenterGlobal int64 `yaml:"-" json:"center_global"`
	RightGlobal  int64 `yaml:"-" json:"right_global"`
	ForceUpdate  bool  `yaml:"-" json:"-"`
}

// Clone 返回深拷贝，避免共享留白表
func (t TimeConfig) Clone() TimeConfig {
	clone := t
	if t.AdditionalSpaces != nil {
		clone.AdditionalSpaces = make(map[core.Period]AdditionalSpace, len(t.AdditionalSpaces))
		for period, space := range t.AdditionalSpaces {
			clone.AdditionalSpaces[period] = space
		}
	}
	return clone
}

// Config 时间轴引擎的配置结构
type Config struct {
	Time     TimeConfig      `yaml:"time" json:"time"`
	Calendar calendar.Config `yaml:"calendar" json:"calendar"`
	Spacing  float64         `yaml:"spacing" json:"spacing"` // 条目宽度扣除的像素
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Time: TimeConfig{
			Zoom:   21,
			Period: core.PeriodDay,
			AdditionalSpaces: map[core.Period]AdditionalSpace{
				core.PeriodHour:  {Before: 24, After: 24, Period: core.PeriodHour},
				core.PeriodDay:   {Before: 1, After: 1, Period: core.PeriodMonth},
				core.PeriodWeek:  {Before: 1, After: 1, Period: core.PeriodYear},
				core.PeriodMonth: {Before: 6, After: 6, Period: core.PeriodYear},
				core.PeriodYear:  {Before: 12, After: 12, Period: core.PeriodYear},
			},
		},
		Calendar: *calendar.DefaultConfig(),
		Spacing:  1,
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if !c.Time.CalculatedZoomMode {
		if c.Time.Zoom <= 0 {
			return errors.New("缩放值必须大于0")
		}
		if c.Time.Zoom > 100 {
			return errors.New("缩放值不能大于100")
		}
	}

	if c.Time.Period != "" && !c.Time.Period.Valid() {
		return fmt.Errorf("不支持的周期 '%s'", c.Time.Period)
	}

	if c.Time.From < 0 || c.Time.To < 0 {
		return errors.New("时间范围不能为负数")
	}

	if c.Time.From != 0 && c.Time.To != 0 && c.Time.From > c.Time.To {
		return errors.New("开始时间不能晚于结束时间")
	}

	for period, space := range c.Time.AdditionalSpaces {
		if !period.Valid() || !space.Period.Valid() {
			return fmt.Errorf("留白配置 '%s' 使用了不支持的周期", period)
		}
		if space.Before < 0 || space.After < 0 {
			return fmt.Errorf("留白配置 '%s' 不能为负数", period)
		}
	}

	if c.Spacing < 0 {
		return errors.New("条目间距不能为负数")
	}

	return c.Calendar.Validate()
}
