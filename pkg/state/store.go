// Package state 提供类型化的全局状态容器，以及把时间轴计算器和滚动条模型连接到状态上的引擎
package state

import (
	"strings"
	"sync"

	"github.com/Kevin-Rudy/gogantt/pkg/calendar"
	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/timeline"
)

// Path 状态树中的点分路径
type Path string

const (
	PathConfig           Path = "config"
	PathChartTime        Path = "config.chart.time"
	PathCalendar         Path = "config.chart.calendar"
	PathChartItems       Path = "config.chart.items"
	PathSpacing          Path = "config.chart.spacing"
	PathListRows         Path = "config.list.rows"
	PathScrollHorizontal Path = "config.scroll.horizontal"
	PathScrollVertical   Path = "config.scroll.vertical"
	PathHorizontalPos    Path = "config.scroll.horizontal.posPx"
	PathVerticalPos      Path = "config.scroll.vertical.posPx"

	PathInternal     Path = "_internal"
	PathTime         Path = "_internal.chart.time"
	PathDimensions   Path = "_internal.chart.dimensions"
	PathVisibleItems Path = "_internal.chart.visibleItems"
	PathRowsExpanded Path = "_internal.list.rowsWithParentsExpanded"
	PathVisibleRows  Path = "_internal.list.visibleRows"
	PathLoadedTime   Path = "_internal.loaded.time"
)

// Matches 判断对changed的写入是否需要通知订阅了p的监听者
// 路径相同、changed是p的上级或下级时都视为匹配
func (p Path) Matches(changed Path) bool {
	if p == changed {
		return true
	}
	return isAncestor(p, changed) || isAncestor(changed, p)
}

func isAncestor(parent, child Path) bool {
	return strings.HasPrefix(string(child), string(parent)+".")
}

// Snapshot 整个状态树
// 切片和指针按写时复制的约定使用：读取者不得原地修改
type Snapshot struct {
	Config   ConfigTree
	Internal InternalTree
}

// ConfigTree 用户可配置部分 (config.*)
type ConfigTree struct {
	Chart  ChartConfig
	List   ListConfig
	Scroll ScrollConfig
}

// ChartConfig config.chart
type ChartConfig struct {
	Time     timeline.TimeConfig
	Calendar calendar.Config
	Items    []core.Item
	Spacing  float64
}

// ListConfig config.list
type ListConfig struct {
	Rows []core.Row
}

// ScrollConfig config.scroll
type ScrollConfig struct {
	Horizontal core.ScrollState
	Vertical   core.ScrollState
}

// InternalTree 计算得到的部分 (_internal.*)
type InternalTree struct {
	Chart  ChartInternal
	List   ListInternal
	Loaded LoadedInternal
}

// ChartInternal _internal.chart
type ChartInternal struct {
	Time         core.TimeWindow
	Dimensions   core.Dimensions
	VisibleItems []core.Item
}

// ListInternal _internal.list
type ListInternal struct {
	RowsWithParentsExpanded []core.Row
	VisibleRows             []core.Row
}

// LoadedInternal _internal.loaded
type LoadedInternal struct {
	Time bool
}

// Listener 状态变化回调，收到投递时的最新快照和触发它的路径
type Listener func(snap Snapshot, changed []Path)

type subscription struct {
	id     int
	paths  []Path
	bulk   bool
	fn     Listener
	active bool
}

type notification struct {
	sub     *subscription
	changed []Path
}

// Store 类型化的状态容器
// 写入立即生效；通知进入单一队列，由正在投递的协程依次执行，监听者中的写入不会重入
type Store struct {
	mu     sync.RWMutex
	snap   Snapshot
	subs   []*subscription
	nextID int

	qmu         sync.Mutex
	queue       []notification
	dispatching bool
}

// NewStore 创建新的状态容器
func NewStore(initial Snapshot) *Store {
	return &Store{snap: initial}
}

// Get 返回当前快照
func (s *Store) Get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Value 按路径读取状态；未知路径返回false
func (s *Store) Value(path Path) (any, bool) {
	snap := s.Get()
	switch path {
	case PathChartTime:
		return snap.Config.Chart.Time, true
	case PathCalendar:
		return snap.Config.Chart.Calendar, true
	case PathChartItems:
		return snap.Config.Chart.Items, true
	case PathSpacing:
		return snap.Config.Chart.Spacing, true
	case PathListRows:
		return snap.Config.List.Rows, true
	case PathScrollHorizontal:
		return snap.Config.Scroll.Horizontal, true
	case PathScrollVertical:
		return snap.Config.Scroll.Vertical, true
	case PathHorizontalPos:
		return snap.Config.Scroll.Horizontal.PosPx, true
	case PathVerticalPos:
		return snap.Config.Scroll.Vertical.PosPx, true
	case PathTime:
		return snap.Internal.Chart.Time, true
	case PathDimensions:
		return snap.Internal.Chart.Dimensions, true
	case PathVisibleItems:
		return snap.Internal.Chart.VisibleItems, true
	case PathRowsExpanded:
		return snap.Internal.List.RowsWithParentsExpanded, true
	case PathVisibleRows:
		return snap.Internal.List.VisibleRows, true
	case PathLoadedTime:
		return snap.Internal.Loaded.Time, true
	}
	return nil, false
}

// Update 修改path下的状态并通知订阅者
func (s *Store) Update(path Path, fn func(*Snapshot)) {
	s.Bulk([]Path{path}, fn)
}

// Bulk 在一次提交中修改多个路径
// 批量订阅者每次提交只收到一次通知，普通订阅者每个匹配路径收到一次
func (s *Store) Bulk(paths []Path, fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	pending := s.match(paths)
	s.mu.Unlock()

	s.dispatch(pending)
}

// match 在持有写锁时收集需要通知的订阅
func (s *Store) match(paths []Path) []notification {
	var pending []notification
	for _, sub := range s.subs {
		var changed []Path
		for _, path := range paths {
			for _, subscribed := range sub.paths {
				if subscribed.Matches(path) {
					changed = append(changed, path)
					break
				}
			}
		}
		if len(changed) == 0 {
			continue
		}
		if sub.bulk {
			pending = append(pending, notification{sub: sub, changed: changed})
			continue
		}
		for _, path := range changed {
			pending = append(pending, notification{sub: sub, changed: []Path{path}})
		}
	}
	return pending
}

func (s *Store) dispatch(pending []notification) {
	s.qmu.Lock()
	s.queue = append(s.queue, pending...)
	if s.dispatching {
		s.qmu.Unlock()
		return
	}
	s.dispatching = true

	for len(s.queue) > 0 {
		n := s.queue[0]
		s.queue = s.queue[1:]
		s.qmu.Unlock()

		if s.isActive(n.sub) {
			n.sub.fn(s.Get(), n.changed)
		}

		s.qmu.Lock()
	}

	s.dispatching = false
	s.qmu.Unlock()
}

func (s *Store) isActive(sub *subscription) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sub.active
}

// Subscribe 订阅单个路径，返回取消订阅函数
func (s *Store) Subscribe(path Path, fn Listener) func() {
	return s.SubscribeAll([]Path{path}, fn, false)
}

// SubscribeAll 订阅多个路径；bulk为true时同一次提交只通知一次
func (s *Store) SubscribeAll(paths []Path, fn Listener, bulk bool) func() {
	s.mu.Lock()
	s.nextID++
	sub := &subscription{
		id:     s.nextID,
		paths:  append([]Path(nil), paths...),
		bulk:   bulk,
		fn:     fn,
		active: true,
	}
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		sub.active = false
		for i, existing := range s.subs {
			if existing.id == sub.id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				break
			}
		}
	}
}
