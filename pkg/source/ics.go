// Package source iCalendar日历加载
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
	"github.com/Kevin-Rudy/gogantt/pkg/log"
)

// ICSFile 从iCalendar文件加载条目
// 日历本身作为根行，每个事件（UID）作为一行，重复事件的每次发生都是该行上的一个条目
type ICSFile struct {
	Path    string
	Adapter *datetime.Adapter
	Config  *Config
}

// Load 实现Loader接口
func (f *ICSFile) Load() (core.ItemBatch, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return core.ItemBatch{}, err
	}
	name := strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
	batch, err := ParseICS(data, name, f.Adapter, f.Config)
	if err != nil {
		return core.ItemBatch{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	batch.Source = f.Path
	return batch, nil
}

// icsEvent 解析后的VEVENT
type icsEvent struct {
	uid      string
	summary  string
	start    time.Time
	end      time.Time
	allDay   bool
	rrule    string
	exDates  []time.Time
	override *time.Time // RECURRENCE-ID
}

// ParseICS 解析iCalendar数据，按 [现在-Past, 现在+Future] 展开重复事件
// name 在日历没有 X-WR-CALNAME 时用作根行标签
func ParseICS(data []byte, name string, adapter *datetime.Adapter, config *Config) (core.ItemBatch, error) {
	if len(data) == 0 {
		return core.ItemBatch{}, errors.New("日历内容为空")
	}
	if config == nil {
		config = DefaultConfig()
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return core.ItemBatch{}, err
	}

	for _, p := range cal.CalendarProperties {
		if p.IANAToken == "X-WR-CALNAME" && p.Value != "" {
			name = p.Value
		}
	}
	if name == "" {
		name = "calendar"
	}

	events := make([]icsEvent, 0)
	for _, ve := range cal.Events() {
		ev, err := parseEvent(ve, adapter.Location())
		if err != nil {
			log.Error("跳过无法解析的日历事件", err, "calendar", name)
			continue
		}
		events = append(events, ev)
	}

	now := adapter.Now().Time()
	rangeStart := now.Add(-config.Past)
	rangeEnd := now.Add(config.Future)

	rootID := "cal:" + name
	batch := core.ItemBatch{
		Rows:  []core.Row{{ID: rootID, Label: name, Expanded: true}},
		Items: make([]core.Item, 0),
	}

	// 先放基础事件，再用RECURRENCE-ID覆盖对应的某一次发生
	overrides := make(map[string][]icsEvent)
	seen := make(map[string]bool)
	for _, ev := range events {
		if ev.override != nil {
			overrides[ev.uid] = append(overrides[ev.uid], ev)
		}
	}

	for _, ev := range events {
		if ev.override != nil || seen[ev.uid] {
			continue
		}
		seen[ev.uid] = true

		label := ev.summary
		if label == "" {
			label = ev.uid
		}
		batch.Rows = append(batch.Rows, core.Row{ID: ev.uid, ParentID: rootID, Label: label})

		for _, occ := range expand(ev, overrides[ev.uid], rangeStart, rangeEnd, config.MaxOccurrences) {
			id := ev.uid
			if ev.rrule != "" {
				id = ev.uid + "/" + occ.recurrence.UTC().Format("20060102T150405Z")
			}
			summary := occ.summary
			if summary == "" {
				summary = label
			}
			batch.Items = append(batch.Items, core.Item{
				ID:    id,
				RowID: ev.uid,
				Label: summary,
				Time:  core.ItemTime{Start: occ.start.UnixMilli(), End: occ.end.UnixMilli()},
			})
		}
	}

	sort.SliceStable(batch.Items, func(i, j int) bool {
		return batch.Items[i].Time.Start < batch.Items[j].Time.Start
	})

	log.Info("日历解析完成", "calendar", name, "rows", len(batch.Rows), "items", len(batch.Items))
	return batch, nil
}

// parseEvent 把VEVENT转换为icsEvent
func parseEvent(ve *ical.VEvent, loc *time.Location) (icsEvent, error) {
	var ev icsEvent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return ev, errors.New("缺少UID")
	}
	ev.uid = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.summary = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return ev, errors.New("缺少DTSTART")
	}
	ev.allDay = !strings.Contains(dtStart.Value, "T")
	if values, ok := dtStart.ICalParameters["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		ev.allDay = true
	}

	// 全天事件按查看者所在时区的日期解释
	var start time.Time
	var err error
	if ev.allDay {
		start, err = parseICSTime(dtStart.Value, loc)
	} else if start, err = ve.GetStartAt(); err != nil {
		start, err = parseICSTime(dtStart.Value, loc)
	}
	if err != nil {
		return ev, fmt.Errorf("DTSTART: %w", err)
	}
	ev.start = start

	var end time.Time
	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
		if ev.allDay {
			end, err = parseICSTime(dtEnd.Value, loc)
		} else {
			end, err = ve.GetEndAt()
		}
	} else {
		err = errors.New("缺少DTEND")
	}
	switch {
	case err == nil:
		ev.end = end
	case ev.allDay:
		ev.end = start.AddDate(0, 0, 1)
	default:
		ev.end = start
	}
	if ev.end.Before(ev.start) {
		return ev, errors.New("DTEND早于DTSTART")
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		ev.rrule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, start.Location()); err == nil {
				ev.exDates = append(ev.exDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, err := parseICSTime(p.Value, start.Location()); err == nil {
			ev.override = &t
		}
	}

	return ev, nil
}

// parseICSTime 解析DATE或DATE-TIME值；不带Z的值按loc解析
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("时间值为空")
	}
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}

// occurrence 一次具体的发生
type occurrence struct {
	summary    string
	start      time.Time
	end        time.Time
	recurrence time.Time // 规则生成的原始开始时间，被覆盖后保持不变
}

// expand 在范围内展开事件；非重复事件与范围重叠时原样返回
func expand(ev icsEvent, overrides []icsEvent, rangeStart, rangeEnd time.Time, limit int) []occurrence {
	if ev.rrule == "" {
		if ev.end.Before(rangeStart) || ev.start.After(rangeEnd) {
			return nil
		}
		return []occurrence{{summary: ev.summary, start: ev.start, end: ev.end, recurrence: ev.start}}
	}

	r, err := rrule.StrToRRule(ev.rrule)
	if err != nil {
		log.Error("无法解析重复规则", err, "uid", ev.uid, "rrule", ev.rrule)
		return nil
	}
	r.DTStart(ev.start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.exDates {
		set.ExDate(ex.In(ev.start.Location()))
	}

	starts := set.Between(rangeStart.In(ev.start.Location()), rangeEnd.In(ev.start.Location()), true)
	if len(starts) > limit {
		log.Warn("重复事件展开次数超过上限", "uid", ev.uid, "limit", limit)
		starts = starts[:limit]
	}

	duration := ev.end.Sub(ev.start)
	out := make([]occurrence, 0, len(starts))
	for _, start := range starts {
		occ := occurrence{summary: ev.summary, start: start, end: start.Add(duration), recurrence: start}
		if ev.allDay {
			day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			occ.start = day
			occ.end = day.AddDate(0, 0, int(duration.Hours()/24+0.5))
		}
		for _, o := range overrides {
			if o.override.Equal(start) {
				occ = occurrence{summary: o.summary, start: o.start, end: o.end, recurrence: start}
				break
			}
		}
		out = append(out, occ)
	}
	return out
}
