package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kevin-Rudy/gogantt/pkg/calendar"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
	"github.com/Kevin-Rudy/gogantt/pkg/source"
	"github.com/Kevin-Rudy/gogantt/pkg/state"
	"github.com/Kevin-Rudy/gogantt/pkg/timeline"
)

// DatetimeConfig 转换为日期适配器配置
func (c *Config) DatetimeConfig() *datetime.Config {
	cfg := &datetime.Config{
		Locale:    c.Locale,
		WeekStart: c.WeekStart,
	}
	if strings.EqualFold(c.Timezone, "UTC") {
		cfg.UTC = true
	} else {
		cfg.Timezone = c.Timezone
	}
	return cfg
}

// TimelineConfig 转换为时间轴配置，from/to 按adapter的时区解析
func (c *Config) TimelineConfig(adapter *datetime.Adapter) (*timeline.Config, error) {
	opts := []timeline.Option{
		timeline.WithZoom(c.Chart.Time.Zoom),
		timeline.WithPeriod(c.Chart.Time.Period),
		timeline.WithCalculatedZoomMode(c.Chart.Time.CalculatedZoomMode),
		timeline.WithLevels(append([]calendar.Level(nil), c.Chart.Calendar.Levels...)),
		timeline.WithSpacing(c.Chart.Spacing),
	}

	if c.Chart.Time.AdditionalSpaces != nil {
		opts = append(opts, timeline.WithoutAdditionalSpaces())
		for period, space := range c.Chart.Time.AdditionalSpaces {
			opts = append(opts, timeline.WithAdditionalSpace(period, space))
		}
	}

	var from, to int64
	if c.Chart.Time.From != "" {
		d, err := adapter.Parse(c.Chart.Time.From)
		if err != nil {
			return nil, fmt.Errorf("chart.time.from: %w", err)
		}
		from = d.ValueOf()
	}
	if c.Chart.Time.To != "" {
		d, err := adapter.Parse(c.Chart.Time.To)
		if err != nil {
			return nil, fmt.Errorf("chart.time.to: %w", err)
		}
		to = d.ValueOf()
	}
	opts = append(opts, timeline.WithRange(from, to))

	return timeline.NewConfigWithOptions(opts...)
}

// EngineConfig 转换为引擎配置
func (c *Config) EngineConfig() (*state.Config, error) {
	dt := c.DatetimeConfig()
	adapter, err := datetime.NewAdapter(dt)
	if err != nil {
		return nil, err
	}

	tl, err := c.TimelineConfig(adapter)
	if err != nil {
		return nil, err
	}

	horizontal := c.Scroll.Horizontal
	vertical := c.Scroll.Vertical
	return state.NewConfigWithOptions(
		state.WithTimeline(tl),
		state.WithDatetime(dt),
		state.WithScroll(&horizontal, &vertical),
		state.WithRowHeight(c.List.RowHeight),
	)
}

// SourceConfig 转换为数据源配置
func (c *Config) SourceConfig() (*source.Config, error) {
	reload, err := time.ParseDuration(c.Source.Reload)
	if err != nil {
		return nil, fmt.Errorf("无效的重新加载间隔 '%s': %w", c.Source.Reload, err)
	}
	day := 24 * time.Hour
	return source.NewConfigWithOptions(
		source.WithInterval(reload),
		source.WithExpandRange(time.Duration(c.Source.PastDays)*day, time.Duration(c.Source.FutureDays)*day),
		source.WithMaxOccurrences(c.Source.MaxOccurrences),
	)
}
