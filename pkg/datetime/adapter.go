// Package datetime 提供按周期单位进行日期运算的适配器
// 所有运算都基于日历（而不是固定毫秒数），以正确处理月份长度、夏令时和闰年
package datetime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"github.com/jinzhu/now"
	"golang.org/x/text/language"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
)

// Adapter 日期适配器，语言和时区在创建时确定
type Adapter struct {
	loc    *time.Location
	tag    language.Tag
	week   *now.Config
	locale monday.Locale
	now    func() time.Time
}

// NewAdapter 创建新的日期适配器
func NewAdapter(config *Config) (*Adapter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	tag := language.MustParse(config.Locale)

	loc := time.Local
	if config.UTC {
		loc = time.UTC
	} else if config.Timezone != "" {
		loaded, err := time.LoadLocation(config.Timezone)
		if err != nil {
			return nil, err
		}
		loc = loaded
	}

	return &Adapter{
		loc: loc,
		tag: tag,
		week: &now.Config{
			WeekStartDay: weekStartFor(config.WeekStart, tag),
			TimeLocation: loc,
		},
		locale: mondayLocale(tag),
		now:    time.Now,
	}, nil
}

// SetClock 替换"现在"的来源，测试时用于固定时间
func (a *Adapter) SetClock(clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	a.now = clock
}

// Location 返回适配器使用的时区
func (a *Adapter) Location() *time.Location {
	return a.loc
}

// Locale 返回适配器使用的语言标签
func (a *Adapter) Locale() language.Tag {
	return a.tag
}

// WeekStart 返回一周的起始日
func (a *Adapter) WeekStart() time.Weekday {
	return a.week.WeekStartDay
}

// Now 返回当前时间
func (a *Adapter) Now() Date {
	return a.FromTime(a.now())
}

// Date 从毫秒时间戳创建日期
func (a *Adapter) Date(ms int64) Date {
	return a.FromTime(time.UnixMilli(ms))
}

// FromTime 从time.Time创建日期
func (a *Adapter) FromTime(t time.Time) Date {
	return Date{t: t.In(a.loc), week: a.week, locale: a.locale}
}

// Parse 解析字符串形式的时间
// 支持 RFC3339、"2006-01-02 15:04"、"2006-01-02" 以及毫秒时间戳
func (a *Adapter) Parse(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, errors.New("时间字符串为空")
	}

	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return a.Date(ms), nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return a.FromTime(t), nil
	}

	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, a.loc); err == nil {
			return a.FromTime(t), nil
		}
	}

	return Date{}, fmt.Errorf("无法解析时间 '%s'", value)
}

// Date 是带时区、周起始日和语言信息的日期句柄，值类型，所有运算返回新值
type Date struct {
	t      time.Time
	week   *now.Config
	locale monday.Locale
}

// with 返回同一适配器设置下的另一个时刻
func (d Date) with(t time.Time) Date {
	d.t = t
	return d
}

// ValueOf 返回毫秒时间戳
func (d Date) ValueOf() int64 {
	return d.t.UnixMilli()
}

// Time 返回底层的time.Time
func (d Date) Time() time.Time {
	return d.t
}

// IsZero 判断日期是否未初始化
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Format 使用Go时间布局格式化日期，月份和星期名称按适配器的语言输出
func (d Date) Format(layout string) string {
	if d.locale == "" {
		return d.t.Format(layout)
	}
	return monday.Format(d.t, layout, d.locale)
}

// StartOf 返回所在周期的开始时刻
func (d Date) StartOf(period core.Period) Date {
	n := d.moment()
	switch period {
	case core.PeriodHour:
		return d.with(n.BeginningOfHour())
	case core.PeriodDay:
		return d.with(n.BeginningOfDay())
	case core.PeriodWeek:
		return d.with(n.BeginningOfWeek())
	case core.PeriodMonth:
		return d.with(n.BeginningOfMonth())
	case core.PeriodYear:
		return d.with(n.BeginningOfYear())
	}
	return d
}

// EndOf 返回所在周期的最后一毫秒
func (d Date) EndOf(period core.Period) Date {
	n := d.moment()
	var end time.Time
	switch period {
	case core.PeriodHour:
		end = n.EndOfHour()
	case core.PeriodDay:
		end = n.EndOfDay()
	case core.PeriodWeek:
		end = n.EndOfWeek()
	case core.PeriodMonth:
		end = n.EndOfMonth()
	case core.PeriodYear:
		end = n.EndOfYear()
	default:
		return d
	}
	return d.with(end.Truncate(time.Millisecond))
}

// moment 按适配器的周起始日包装当前时刻
func (d Date) moment() *now.Now {
	if d.week == nil {
		return now.With(d.t)
	}
	return d.week.With(d.t)
}

// Add 增加n个周期
// 小时按固定时长增加，其余周期按日历增加；月份溢出时取目标月最后一天
func (d Date) Add(n int, period core.Period) Date {
	t := d.t
	switch period {
	case core.PeriodHour:
		t = t.Add(time.Duration(n) * time.Hour)
	case core.PeriodDay:
		t = t.AddDate(0, 0, n)
	case core.PeriodWeek:
		t = t.AddDate(0, 0, 7*n)
	case core.PeriodMonth:
		t = addMonths(t, n)
	case core.PeriodYear:
		t = addMonths(t, 12*n)
	}
	return d.with(t)
}

// Subtract 减少n个周期
func (d Date) Subtract(n int, period core.Period) Date {
	return d.Add(-n, period)
}

// Diff 返回 d - other 以周期为单位的差值
// exact为false时截断为整数
func (d Date) Diff(other Date, period core.Period, exact bool) float64 {
	var result float64

	switch period {
	case core.PeriodHour:
		result = float64(d.t.UnixMilli()-other.t.UnixMilli()) / float64(time.Hour/time.Millisecond)
	case core.PeriodDay:
		result = float64(wallDiffMs(d.t, other.t)) / float64(24*time.Hour/time.Millisecond)
	case core.PeriodWeek:
		result = float64(wallDiffMs(d.t, other.t)) / float64(7*24*time.Hour/time.Millisecond)
	case core.PeriodMonth:
		result = monthDiff(d.t, other.t)
	case core.PeriodYear:
		result = monthDiff(d.t, other.t) / 12
	default:
		result = float64(d.t.UnixMilli() - other.t.UnixMilli())
	}

	if !exact {
		result = truncate(result)
	}
	return result
}

// addMonths 按日历增加月份，日期溢出时截断到月末
func addMonths(t time.Time, n int) time.Time {
	y, m, day := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := daysIn(first.Year(), first.Month(), t.Location())
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysIn 返回某月的天数
func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// wallDiffMs 返回扣除时区偏移变化后的墙上时钟差值（毫秒）
func wallDiffMs(a, b time.Time) int64 {
	_, offsetA := a.Zone()
	_, offsetB := b.Zone()
	return (a.UnixMilli() + int64(offsetA)*1000) - (b.UnixMilli() + int64(offsetB)*1000)
}

// monthDiff 返回 a - b 的月份差（含小数部分）
func monthDiff(a, b time.Time) float64 {
	if a.Day() < b.Day() {
		return -monthDiff(b, a)
	}

	whole := (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	anchor := addMonths(a, whole)
	behind := b.Before(anchor)

	var anchor2 time.Time
	if behind {
		anchor2 = addMonths(a, whole-1)
	} else {
		anchor2 = addMonths(a, whole+1)
	}

	span := anchor2.Sub(anchor)
	if behind {
		span = anchor.Sub(anchor2)
	}
	if span == 0 {
		return -float64(whole)
	}

	result := -(float64(whole) + float64(b.Sub(anchor))/float64(span))
	if result == 0 {
		return 0
	}
	return result
}

// mondayLocale 把语言标签转换为名称本地化使用的locale，英语直接使用Go的格式化
func mondayLocale(tag language.Tag) monday.Locale {
	base, _ := tag.Base()
	if base.String() == "en" {
		return ""
	}
	region, _ := tag.Region()
	return monday.Locale(base.String() + "_" + region.String())
}

// truncate 向零截断
func truncate(v float64) float64 {
	if v < 0 {
		return -float64(int64(-v))
	}
	return float64(int64(v))
}
