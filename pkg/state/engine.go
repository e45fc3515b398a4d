package state

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/Kevin-Rudy/gogantt/pkg/calendar"
	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
	"github.com/Kevin-Rudy/gogantt/pkg/log"
	"github.com/Kevin-Rudy/gogantt/pkg/scroll"
	"github.com/Kevin-Rudy/gogantt/pkg/timeline"
)

// 重新计算状态
const (
	statusIdle int32 = iota
	statusRecomputing
)

// Engine 把时间窗口计算器和两个滚动条模型连接到状态容器
// 计算器是 TimeWindow 的唯一写入者；滚动条拖动和重新居中通过变化原因区分，不会在同一次计算中同时写入
type Engine struct {
	config     *Config
	store      *Store
	calc       *timeline.Calculator
	detector   *timeline.Detector
	horizontal *scroll.Model
	vertical   *scroll.Model

	status    atomic.Int32
	loaded    atomic.Bool
	ready     chan struct{}
	readyOnce sync.Once

	errMu sync.RWMutex
	err   error

	running     bool
	runningMu   sync.Mutex
	unsubscribe []func()
}

// NewEngine 创建新的引擎，config为nil时使用默认配置
func NewEngine(config *Config) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	adapter, err := datetime.NewAdapter(config.Datetime)
	if err != nil {
		return nil, fmt.Errorf("创建日期适配器失败: %w", err)
	}

	var initial Snapshot
	initial.Config.Chart.Time = config.Timeline.Time.Clone()
	initial.Config.Chart.Calendar = calendar.Config{
		Levels: append([]calendar.Level(nil), config.Timeline.Calendar.Levels...),
	}
	initial.Config.Chart.Spacing = config.Timeline.Spacing
	initial.Config.Scroll.Horizontal = config.Horizontal.Apply(core.ScrollState{})
	initial.Config.Scroll.Vertical = config.Vertical.Apply(core.ScrollState{})

	return &Engine{
		config:     config,
		store:      NewStore(initial),
		calc:       timeline.NewCalculator(adapter, config.Hooks),
		detector:   timeline.NewDetector(),
		horizontal: scroll.NewModel(scroll.Horizontal, config.Horizontal),
		vertical:   scroll.NewModel(scroll.Vertical, config.Vertical),
		ready:      make(chan struct{}),
	}, nil
}

// Start 订阅状态变化，开始响应
func (e *Engine) Start() {
	e.runningMu.Lock()
	defer e.runningMu.Unlock()
	if e.running {
		return
	}
	e.running = true

	e.unsubscribe = []func(){
		e.store.SubscribeAll([]Path{PathChartTime, PathScrollHorizontal, PathDimensions}, e.onTimeChange, true),
		e.store.Subscribe(PathChartItems, e.onItemsChange),
		e.store.Subscribe(PathListRows, e.onRowsChange),
		e.store.SubscribeAll([]Path{PathRowsExpanded, PathDimensions}, e.onVerticalChange, true),
		e.store.SubscribeAll([]Path{PathRowsExpanded, PathScrollVertical, PathChartItems, PathDimensions}, e.onVisibleChange, true),
	}
}

// Stop 取消所有订阅
func (e *Engine) Stop() {
	e.runningMu.Lock()
	defer e.runningMu.Unlock()
	if !e.running {
		return
	}
	e.running = false

	for _, unsubscribe := range e.unsubscribe {
		unsubscribe()
	}
	e.unsubscribe = nil
}

// Store 返回状态容器
func (e *Engine) Store() *Store {
	return e.store
}

// Adapter 返回日期适配器
func (e *Engine) Adapter() *datetime.Adapter {
	return e.calc.Adapter()
}

// Converter 返回像素与时间的换算工具
func (e *Engine) Converter() *timeline.Converter {
	return e.calc.Converter()
}

// Ready 返回在第一次成功发布时间窗口后关闭的通道
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

// Loaded 是否已经发布过时间窗口
func (e *Engine) Loaded() bool {
	return e.loaded.Load()
}

// Err 返回最近一次计算的致命错误
func (e *Engine) Err() error {
	e.errMu.RLock()
	defer e.errMu.RUnlock()
	return e.err
}

func (e *Engine) setErr(err error) {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	e.err = err
}

// Time 返回当前发布的时间窗口
func (e *Engine) Time() core.TimeWindow {
	return e.store.Get().Internal.Chart.Time
}

// VisibleRows 返回当前可见的行
func (e *Engine) VisibleRows() []core.Row {
	return e.store.Get().Internal.List.VisibleRows
}

// VisibleItems 返回属于可见行的条目
func (e *Engine) VisibleItems() []core.Item {
	return e.store.Get().Internal.Chart.VisibleItems
}

// Place 计算条目在当前时间窗口中的位置
func (e *Engine) Place(item core.Item) timeline.Placement {
	snap := e.store.Get()
	return e.calc.Converter().Place(item, &snap.Internal.Chart.Time, snap.Config.Chart.Spacing)
}

// Recalculate 立即按检测到的变化重新计算
func (e *Engine) Recalculate() error {
	return e.recalculate(nil)
}

// onTimeChange 和 onItemsChange 的错误已经由 recalculate 记录，通过 Err 读取
func (e *Engine) onTimeChange(Snapshot, []Path) {
	e.recalculate(nil)
}

func (e *Engine) onItemsChange(Snapshot, []Path) {
	e.recalculate(&core.Trigger{Name: core.TriggerItems})
}

// recalculate 执行一次完整的计算并把结果作为一个整体发布
// 正在计算时的重入调用直接丢弃，进行中的计算会在发布前读取最新状态
func (e *Engine) recalculate(forced *core.Trigger) error {
	if !e.status.CompareAndSwap(statusIdle, statusRecomputing) {
		log.Debug("跳过重入的时间窗口计算")
		return nil
	}
	defer e.status.Store(statusIdle)

	snap := e.store.Get()
	chart := snap.Config.Chart
	width := snap.Internal.Chart.Dimensions.Width
	horizontal := snap.Config.Scroll.Horizontal

	trigger, ok := e.detector.Detect(timeline.Observe(chart.Time, horizontal.PosPx, width))
	if forced != nil && trigger.Name != core.TriggerAll {
		trigger, ok = *forced, true
	}
	if !ok {
		return nil
	}

	res, err := e.calc.Recalculate(timeline.Input{
		Old:     snap.Internal.Chart.Time,
		Trigger: trigger,
		Config: timeline.Config{
			Time:     chart.Time,
			Calendar: chart.Calendar,
			Spacing:  chart.Spacing,
		},
		Items:      chart.Items,
		ChartWidth: width,
		Horizontal: horizontal,
	})
	if err != nil {
		e.setErr(err)
		if !e.loaded.Load() {
			e.detector.Reset()
		}
		log.Error("时间窗口计算失败", err, "trigger", trigger.Name)
		return err
	}
	if res.Skipped {
		if !e.loaded.Load() {
			e.detector.Reset()
		}
		log.Debug("跳过时间窗口计算", "trigger", trigger.Name, "width", width)
		return nil
	}
	e.setErr(nil)

	main := res.Time.MainDates()
	horizontal = e.horizontal.UpdateHorizontal(res.Horizontal, width, main)
	if trigger.Name != core.TriggerScroll {
		// 非拖动引起的变化：滑块跟随新的左边界
		if index, found := timeline.CellAtTime(res.Time.LeftGlobal, main); found {
			cell := main[index]
			horizontal.Date = &cell
			horizontal.DataIndex = index
		}
		horizontal.PosPx = e.calc.Converter().ScrollPosPxFromTime(res.Time.LeftGlobal, &res.Time, horizontal)
		e.horizontal.SetPos(horizontal.PosPx)
	}

	// 先记录自己的写回，使写回引起的通知不会被识别为新的变化
	e.detector.Sync(timeline.Observe(res.Config, horizontal.PosPx, width))
	e.store.Bulk([]Path{PathTime, PathChartTime, PathScrollHorizontal}, func(s *Snapshot) {
		s.Internal.Chart.Time = res.Time
		s.Config.Chart.Time = res.Config
		s.Config.Scroll.Horizontal = horizontal
	})

	log.Debug("时间窗口已更新",
		"trigger", trigger.Name,
		"period", res.Time.Period,
		"zoom", res.Time.Zoom,
		"cells", len(main),
		"regenerated", res.Regenerated)

	if e.loaded.CompareAndSwap(false, true) {
		e.store.Update(PathLoadedTime, func(s *Snapshot) {
			s.Internal.Loaded.Time = true
		})
		e.readyOnce.Do(func() {
			close(e.ready)
		})
	}
	return nil
}

// onRowsChange 重新计算所有祖先都已展开的行
func (e *Engine) onRowsChange(snap Snapshot, _ []Path) {
	expanded := RowsWithParentsExpanded(snap.Config.List.Rows)
	e.store.Update(PathRowsExpanded, func(s *Snapshot) {
		s.Internal.List.RowsWithParentsExpanded = expanded
	})
}

// onVerticalChange 重新计算垂直滚动条；锚定行被折叠时回到第一行
func (e *Engine) onVerticalChange(snap Snapshot, _ []Path) {
	rows := snap.Internal.List.RowsWithParentsExpanded
	current := snap.Config.Scroll.Vertical
	next := e.vertical.UpdateVertical(current, snap.Internal.Chart.Dimensions.InnerHeight, rows)

	if next.Row != nil {
		index := -1
		for i, row := range rows {
			if row.ID == next.Row.ID {
				index = i
				break
			}
		}
		if index < 0 {
			next.Row = nil
			next.DataIndex = 0
			next.PosPx = 0
			e.vertical.SetPos(0)
		} else {
			next.DataIndex = index
		}
	}

	if reflect.DeepEqual(current, next) {
		return
	}
	e.store.Update(PathScrollVertical, func(s *Snapshot) {
		s.Config.Scroll.Vertical = next
	})
}

// onVisibleChange 重新计算可见行及其条目
func (e *Engine) onVisibleChange(snap Snapshot, _ []Path) {
	rows := VisibleRows(snap.Internal.List.RowsWithParentsExpanded, snap.Config.Scroll.Vertical, snap.Internal.Chart.Dimensions.InnerHeight)
	items := VisibleItems(snap.Config.Chart.Items, rows)

	paths := []Path{PathVisibleItems}
	if !sameRows(rows, snap.Internal.List.VisibleRows) {
		paths = append(paths, PathVisibleRows)
	}
	e.store.Bulk(paths, func(s *Snapshot) {
		if len(paths) > 1 {
			s.Internal.List.VisibleRows = rows
		}
		s.Internal.Chart.VisibleItems = items
	})
}

// SetDimensions 设置图表区域尺寸（宽度单位与时间轴像素一致）
func (e *Engine) SetDimensions(width, height, innerHeight float64) {
	e.store.Update(PathDimensions, func(s *Snapshot) {
		s.Internal.Chart.Dimensions = core.Dimensions{
			Width:       width,
			Height:      height,
			InnerHeight: innerHeight,
		}
	})
}

// SetData 替换行和条目
func (e *Engine) SetData(rows []core.Row, items []core.Item) {
	normalized := NormalizeRows(rows, e.config.RowHeight)
	copied := append([]core.Item(nil), items...)
	e.store.Bulk([]Path{PathListRows, PathChartItems}, func(s *Snapshot) {
		s.Config.List.Rows = normalized
		s.Config.Chart.Items = copied
	})
}

// SetZoom 设置缩放值
func (e *Engine) SetZoom(zoom float64) error {
	if zoom <= 0 || zoom > 100 {
		return fmt.Errorf("缩放值 %v 超出范围 (0, 100]", zoom)
	}
	e.updateTime(func(t *timeline.TimeConfig) {
		t.Zoom = zoom
	})
	return nil
}

// ZoomBy 在当前缩放值上增加delta
func (e *Engine) ZoomBy(delta float64) error {
	return e.SetZoom(e.store.Get().Config.Chart.Time.Zoom + delta)
}

// SetPeriod 切换周期，缩放值随之采用该周期的默认值
func (e *Engine) SetPeriod(period core.Period) error {
	if !period.Valid() {
		return fmt.Errorf("不支持的周期 '%s'", period)
	}
	e.updateTime(func(t *timeline.TimeConfig) {
		t.Period = period
	})
	return nil
}

// SetRange 设置时间范围，0表示由条目推导
func (e *Engine) SetRange(from, to int64) error {
	if from < 0 || to < 0 || (from != 0 && to != 0 && from > to) {
		return errors.New("无效的时间范围")
	}
	e.updateTime(func(t *timeline.TimeConfig) {
		t.From = from
		t.To = to
	})
	return nil
}

// GoTo 平移窗口使左边界位于ms，保持窗口时长和中心的相对位置
func (e *Engine) GoTo(ms int64) {
	e.updateTime(func(t *timeline.TimeConfig) {
		duration := t.RightGlobal - t.LeftGlobal
		center := t.CenterGlobal - t.LeftGlobal
		t.LeftGlobal = ms
		if duration <= 0 {
			t.CenterGlobal = 0
			t.RightGlobal = 0
			return
		}
		t.CenterGlobal = ms + center
		t.RightGlobal = ms + duration
	})
}

// ForceUpdate 要求下一次计算重新生成日历网格
func (e *Engine) ForceUpdate() {
	e.updateTime(func(t *timeline.TimeConfig) {
		t.ForceUpdate = true
	})
}

// SetLevels 替换日历层级并强制重新生成网格
func (e *Engine) SetLevels(levels []calendar.Level) error {
	if err := calendar.ValidateLevels(levels); err != nil {
		return err
	}
	copied := append([]calendar.Level(nil), levels...)
	e.store.Bulk([]Path{PathCalendar, PathChartTime}, func(s *Snapshot) {
		s.Config.Chart.Calendar = calendar.Config{Levels: copied}
		t := s.Config.Chart.Time.Clone()
		t.ForceUpdate = true
		s.Config.Chart.Time = t
	})
	return nil
}

func (e *Engine) updateTime(fn func(*timeline.TimeConfig)) {
	e.store.Update(PathChartTime, func(s *Snapshot) {
		t := s.Config.Chart.Time.Clone()
		fn(&t)
		s.Config.Chart.Time = t
	})
}

// ToggleRow 切换行的展开状态
func (e *Engine) ToggleRow(id string) bool {
	found := false
	e.store.Update(PathListRows, func(s *Snapshot) {
		rows := append([]core.Row(nil), s.Config.List.Rows...)
		for i := range rows {
			if rows[i].ID == id {
				rows[i].Expanded = !rows[i].Expanded
				found = true
			}
		}
		s.Config.List.Rows = rows
	})
	return found
}

// DragHorizontal 按位移拖动水平滑块，锚定单元变化时写入滚动状态
func (e *Engine) DragHorizontal(delta float64) {
	index, pos := e.horizontal.Drag(delta)
	e.applyHorizontal(index, pos)
}

// DragVertical 按位移拖动垂直滑块，锚定行变化时写入滚动状态
func (e *Engine) DragVertical(delta float64) {
	index, pos := e.vertical.Drag(delta)
	e.applyVertical(index, pos)
}

// ScrollHorizontalBy 按单元数平移，不越过最后一页的第一个单元
func (e *Engine) ScrollHorizontalBy(cells int) {
	if e.horizontal.Geometry().MaxPosPx <= 0 {
		return
	}
	current := e.store.Get().Config.Scroll.Horizontal
	index := clampIndex(current.DataIndex+cells, e.horizontal.IndexAt(1))
	if index < 0 {
		return
	}
	pos := e.horizontal.PosForIndex(index)
	e.horizontal.SetPos(pos)
	e.applyHorizontal(index, pos)
}

// ScrollVerticalBy 按行数平移，不越过最后一页的第一行
func (e *Engine) ScrollVerticalBy(rows int) {
	if e.vertical.Geometry().MaxPosPx <= 0 {
		return
	}
	current := e.store.Get().Config.Scroll.Vertical
	index := clampIndex(current.DataIndex+rows, e.vertical.IndexAt(1))
	if index < 0 {
		return
	}
	pos := e.vertical.PosForIndex(index)
	e.vertical.SetPos(pos)
	e.applyVertical(index, pos)
}

func (e *Engine) applyHorizontal(index int, pos float64) {
	current := e.store.Get().Config.Scroll.Horizontal
	next, changed := e.horizontal.ApplyHorizontal(current, index, pos)
	if !changed {
		return
	}
	e.store.Update(PathScrollHorizontal, func(s *Snapshot) {
		s.Config.Scroll.Horizontal = next
	})
}

func (e *Engine) applyVertical(index int, pos float64) {
	current := e.store.Get().Config.Scroll.Vertical
	next, changed := e.vertical.ApplyVertical(current, index, pos)
	if !changed {
		return
	}
	e.store.Update(PathScrollVertical, func(s *Snapshot) {
		s.Config.Scroll.Vertical = next
	})
}

func clampIndex(index, last int) int {
	if last < 0 {
		return -1
	}
	if index < 0 {
		return 0
	}
	if index > last {
		return last
	}
	return index
}
