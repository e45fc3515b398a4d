package calendar

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
)

const dayMs = int64(24 * time.Hour / time.Millisecond)

func newTestAdapter(t *testing.T) *datetime.Adapter {
	t.Helper()
	adapter, err := datetime.NewAdapter(&datetime.Config{Locale: "en-GB", UTC: true})
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	adapter.SetClock(func() time.Time {
		return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	})
	return adapter
}

func ms(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).UnixMilli()
}

// TestActiveFormat 测试生效格式的选择
func TestActiveFormat(t *testing.T) {
	formats := []core.Format{
		{ZoomTo: 17, Period: core.PeriodHour},
		{ZoomTo: 21, Period: core.PeriodDay},
		{ZoomTo: 26, Period: core.PeriodMonth},
	}

	cases := map[float64]core.Period{
		10:   core.PeriodHour,
		17:   core.PeriodHour,
		17.5: core.PeriodDay,
		21:   core.PeriodDay,
		25:   core.PeriodMonth,
		40:   core.PeriodMonth,
	}
	for zoom, want := range cases {
		format, ok := ActiveFormat(formats, zoom)
		if !ok {
			t.Errorf("Expected a format for zoom %v", zoom)
			continue
		}
		if format.Period != want {
			t.Errorf("Expected period %s for zoom %v, got %s", want, zoom, format.Period)
		}
	}

	if _, ok := ActiveFormat(nil, 10); ok {
		t.Error("Expected no format for empty list")
	}
}

// TestMainLevel 测试主层级查找与周期推断
func TestMainLevel(t *testing.T) {
	levels := DefaultLevels()

	index, err := MainLevelIndex(levels)
	if err != nil || index != 1 {
		t.Fatalf("Expected main level 1, got %d (%v)", index, err)
	}

	if period, ok := GuessPeriod(levels, 21); !ok || period != core.PeriodDay {
		t.Errorf("Expected day at zoom 21, got %s", period)
	}
	if zoom, ok := DefaultZoom(levels, core.PeriodMonth); !ok || zoom != 26 {
		t.Errorf("Expected default month zoom 26, got %v", zoom)
	}

	_, err = MainLevelIndex([]Level{{Formats: levels[0].Formats}})
	if !errors.Is(err, ErrNoMainLevel) {
		t.Errorf("Expected ErrNoMainLevel, got %v", err)
	}
}

// TestValidateLevels 测试日历层级约定的验证
func TestValidateLevels(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Expected default levels to be valid, got %v", err)
	}

	day := core.Format{ZoomTo: 21, Period: core.PeriodDay, Layout: "02"}
	month := core.Format{ZoomTo: 26, Period: core.PeriodMonth, Layout: "Jan"}

	cases := []struct {
		name   string
		levels []Level
	}{
		{"empty", nil},
		{"no main", []Level{{Formats: []core.Format{day}}}},
		{"two mains", []Level{{Main: true, Formats: []core.Format{day}}, {Main: true, Formats: []core.Format{day}}}},
		{"no formats", []Level{{Main: true}}},
		{"descending", []Level{{Main: true, Formats: []core.Format{month, day}}}},
		{"bad period", []Level{{Main: true, Formats: []core.Format{{ZoomTo: 1, Period: "decade", Layout: "2006"}}}}},
		{"empty layout", []Level{{Main: true, Formats: []core.Format{{ZoomTo: 1, Period: core.PeriodDay}}}}},
		{"two defaults", []Level{{Main: true, Formats: []core.Format{
			{ZoomTo: 20, Period: core.PeriodDay, Layout: "02", Default: true},
			{ZoomTo: 21, Period: core.PeriodDay, Layout: "02", Default: true},
		}}}},
	}

	for _, c := range cases {
		if err := ValidateLevels(c.levels); err == nil {
			t.Errorf("Expected %s to be invalid", c.name)
		}
	}
}

// TestGenerateContiguous 测试生成的单元首尾相接
func TestGenerateContiguous(t *testing.T) {
	adapter := newTestAdapter(t)
	generator := NewGenerator(adapter, Hooks{})

	left := adapter.Date(ms(2024, 1, 1))
	right := adapter.Date(ms(2024, 12, 31)).EndOf(core.PeriodMonth)
	tpp := float64(dayMs) / 10

	dates := generator.Generate(left, right, core.PeriodMonth, tpp, 0, core.Format{Layout: "Jan"})
	if len(dates) != 12 {
		t.Fatalf("Expected 12 months, got %d", len(dates))
	}

	for i := 1; i < len(dates); i++ {
		a, b := dates[i-1], dates[i]
		if a.RightGlobal != b.LeftGlobal {
			t.Errorf("Cell %d: expected rightGlobal %d to equal next leftGlobal %d", i-1, a.RightGlobal, b.LeftGlobal)
		}
		if a.RightPx != b.LeftPx {
			t.Errorf("Cell %d: expected rightPx %v to equal next leftPx %v", i-1, a.RightPx, b.LeftPx)
		}
	}

	// 二月（闰年29天）宽度应为290px
	if got := dates[1].Width; math.Abs(got-290) > 1e-9 {
		t.Errorf("Expected February width 290, got %v", got)
	}
	if dates[0].Formatted != "Jan" {
		t.Errorf("Expected label 'Jan', got %q", dates[0].Formatted)
	}
	if !dates[2].Current || !dates[3].Next || !dates[1].Previous {
		t.Error("Expected March current, April next and February previous")
	}
}

// TestGenerateEmpty 测试无效的像素比例
func TestGenerateEmpty(t *testing.T) {
	adapter := newTestAdapter(t)
	generator := NewGenerator(adapter, Hooks{})
	left := adapter.Date(ms(2024, 1, 1))
	right := adapter.Date(ms(2024, 1, 10))

	if dates := generator.Generate(left, right, core.PeriodDay, 0, 0, core.Format{}); len(dates) != 0 {
		t.Errorf("Expected no dates for zero timePerPixel, got %d", len(dates))
	}
	if dates := generator.Generate(right, left, core.PeriodDay, 1000, 0, core.Format{}); len(dates) != 0 {
		t.Errorf("Expected no dates for reversed range, got %d", len(dates))
	}
}

// TestGenerateRangeLabel 测试开始与结束分别格式化的标签
func TestGenerateRangeLabel(t *testing.T) {
	adapter := newTestAdapter(t)
	generator := NewGenerator(adapter, Hooks{})
	// 2024-01-01 是星期一
	left := adapter.Date(ms(2024, 1, 1))
	right := adapter.Date(ms(2024, 1, 7)).EndOf(core.PeriodWeek)

	dates := generator.Generate(left, right, core.PeriodWeek, 1000, 0, core.Format{Layout: "02 Jan~02 Jan"})
	if len(dates) != 1 {
		t.Fatalf("Expected 1 week, got %d", len(dates))
	}
	if dates[0].Formatted != "01 Jan - 07 Jan" {
		t.Errorf("Expected '01 Jan - 07 Jan', got %q", dates[0].Formatted)
	}
}

// TestCellHooks 测试单元钩子按顺序应用
func TestCellHooks(t *testing.T) {
	adapter := newTestAdapter(t)
	hooks := Hooks{
		OnLevelDate: []CellHook{
			func(cell core.DateCell, period core.Period, level, index int) core.DateCell {
				cell.Formatted = "a"
				return cell
			},
			func(cell core.DateCell, period core.Period, level, index int) core.DateCell {
				cell.Formatted += "b"
				if index == 0 {
					cell.RightGlobal = cell.LeftGlobal - 10
				}
				return cell
			},
		},
	}
	generator := NewGenerator(adapter, hooks)

	dates := generator.Generate(adapter.Date(ms(2024, 1, 1)), adapter.Date(ms(2024, 1, 3)), core.PeriodDay, 1000, 0, core.Format{Layout: "02"})
	if len(dates) != 2 {
		t.Fatalf("Expected 2 dates, got %d", len(dates))
	}
	if dates[1].Formatted != "ab" {
		t.Errorf("Expected hooks applied in order, got %q", dates[1].Formatted)
	}
	if dates[0].RightGlobal < dates[0].LeftGlobal || dates[0].Width != 0 {
		t.Errorf("Expected broken cell to be clamped to zero width, got %+v", dates[0])
	}
}

// TestBuildPercents 测试主层级百分比与最后一页
func TestBuildPercents(t *testing.T) {
	adapter := newTestAdapter(t)
	builder := NewBuilder(adapter, Hooks{})

	tw := &core.TimeWindow{
		Zoom:         21,
		TimePerPixel: float64(dayMs) / 40,
		FinalFrom:    ms(2024, 1, 1),
		FinalTo:      ms(2024, 1, 30),
		Width:        400,
		Level:        1,
	}

	result := builder.Build(tw, DefaultLevels())
	if len(result.AllDates) != 2 {
		t.Fatalf("Expected 2 levels, got %d", len(result.AllDates))
	}

	main := result.AllDates[1]
	if len(main) != 30 {
		t.Fatalf("Expected 30 days, got %d", len(main))
	}
	// 第十天使累计宽度达到视口宽度，因此不计入最后一页
	if result.LastPageCount != 9 || math.Abs(result.LastPageSize-360) > 1e-9 {
		t.Errorf("Expected last page 360/9, got %v/%d", result.LastPageSize, result.LastPageCount)
	}
	if math.Abs(result.ScrollWidth-840) > 1e-9 {
		t.Errorf("Expected scroll width 840, got %v", result.ScrollWidth)
	}

	prev := -1.0
	for i, date := range main {
		if date.LeftPercent < prev {
			t.Errorf("Cell %d: leftPercent decreased", i)
		}
		if date.LeftPercent < 0 || date.LeftPercent > 1 || date.RightPercent < 0 || date.RightPercent > 1 {
			t.Errorf("Cell %d: percents out of range: %v %v", i, date.LeftPercent, date.RightPercent)
		}
		prev = date.LeftPercent
	}

	// 上层级在zoom 21时为月份
	if len(result.AllDates[0]) != 1 || result.AllDates[0][0].Period != core.PeriodMonth {
		t.Errorf("Expected a single month on the top level, got %d cells", len(result.AllDates[0]))
	}
}

// TestPercentsSinglePage 测试所有单元放入一页的情况
func TestPercentsSinglePage(t *testing.T) {
	dates := []core.DateCell{
		{Width: 10, LeftPx: 0, RightPx: 10},
		{Width: 10, LeftPx: 10, RightPx: 20},
	}
	scrollWidth, lastSize, lastCount := CalculatePercents(dates, 100)
	if scrollWidth != 0 {
		t.Errorf("Expected zero scroll width, got %v", scrollWidth)
	}
	if lastSize != 20 || lastCount != 2 {
		t.Errorf("Expected last page 20/2, got %v/%d", lastSize, lastCount)
	}
	for _, d := range dates {
		if d.LeftPercent != 0 || d.RightPercent != 0 {
			t.Errorf("Expected zero percents, got %v %v", d.LeftPercent, d.RightPercent)
		}
	}
}

// TestBuildHooks 测试层级钩子
func TestBuildHooks(t *testing.T) {
	adapter := newTestAdapter(t)
	levelCalls := 0
	allCalls := 0
	hooks := Hooks{
		OnLevelDates: []LevelDatesHook{
			func(dates []core.DateCell, format core.Format, tw *core.TimeWindow, level int) []core.DateCell {
				levelCalls++
				return dates
			},
		},
		OnAllLevelDates: []AllLevelDatesHook{
			func(all [][]core.DateCell, tw *core.TimeWindow) [][]core.DateCell {
				allCalls++
				all[0] = all[0][:0]
				return all
			},
		},
	}
	builder := NewBuilder(adapter, hooks)
	tw := &core.TimeWindow{Zoom: 21, TimePerPixel: float64(dayMs) / 40, FinalFrom: ms(2024, 1, 1), FinalTo: ms(2024, 1, 5), Width: 100, Level: 1}

	result := builder.Build(tw, DefaultLevels())
	if levelCalls != 2 {
		t.Errorf("Expected level hook called per level, got %d", levelCalls)
	}
	if allCalls != 1 {
		t.Errorf("Expected all-level hook called once, got %d", allCalls)
	}
	if len(result.AllDates[0]) != 0 {
		t.Error("Expected all-level hook result to be used")
	}
}
