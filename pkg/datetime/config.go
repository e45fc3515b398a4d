// Package datetime 配置定义
package datetime

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Config 日期适配器的配置结构
type Config struct {
	Locale    string // BCP 47 语言标签，例如 "en-US"
	UTC       bool   // 为true时所有日期运算使用UTC
	Timezone  string // IANA时区名称，UTC为true时忽略，为空时使用本地时区
	WeekStart string // "monday" 或 "sunday"，为空时按地区推导
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Locale:    "en-US",
		UTC:       false,
		Timezone:  "",
		WeekStart: "",
	}
}

// Validate 验证配置的合理性
func (c *Config) Validate() error {
	if c.Locale == "" {
		return errors.New("语言标签不能为空")
	}

	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("无法解析语言标签 '%s': %w", c.Locale, err)
	}

	switch c.WeekStart {
	case "", "monday", "sunday":
	default:
		return fmt.Errorf("不支持的周起始日 '%s'", c.WeekStart)
	}

	if !c.UTC && c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("无法加载时区 '%s': %w", c.Timezone, err)
		}
	}

	return nil
}

// sundayRegions 以周日作为一周开始的地区
var sundayRegions = map[string]bool{
	"US": true, "CA": true, "JP": true, "KR": true, "TW": true, "HK": true,
	"BR": true, "MX": true, "IL": true, "PH": true, "IN": true, "ZA": true,
}

// weekStartFor 根据配置和语言标签确定一周的起始日
func weekStartFor(weekStart string, tag language.Tag) time.Weekday {
	switch weekStart {
	case "monday":
		return time.Monday
	case "sunday":
		return time.Sunday
	}

	region, confidence := tag.Region()
	if confidence == language.No {
		return time.Monday
	}
	if sundayRegions[region.String()] {
		return time.Sunday
	}
	return time.Monday
}
