// Package scroll 实现滚动条几何模型：滑块尺寸与行程、百分比表，以及拖动位置到数据索引的映射
package scroll

import (
	"sync"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
)

// Axis 滚动方向
type Axis string

const (
	Horizontal Axis = "horizontal" // 时间方向
	Vertical   Axis = "vertical"   // 行方向
)

// Geometry 滑块几何
type Geometry struct {
	Track      float64 // 轨道长度
	InnerSize  float64 // 滑块长度
	InnerSlack float64 // 最小长度带来的额外长度
	MaxPosPx   float64 // 滑块行程
}

// Thumb 根据视口与内容总长度计算滑块几何
// 滑块长度按 track × viewport/extent 计算并不小于minInner；内容能完整放下时滑块占满轨道
func Thumb(track, viewport, extent, minInner float64) Geometry {
	if track < 0 {
		track = 0
	}

	raw := track
	if extent > viewport && extent > 0 {
		raw = track * viewport / extent
	}

	g := Geometry{Track: track, InnerSize: raw}
	if g.InnerSize < minInner {
		g.InnerSlack = minInner - g.InnerSize
		g.InnerSize = minInner
	}
	if g.InnerSize > track {
		g.InnerSize = track
		g.InnerSlack = track - raw
		if g.InnerSlack < 0 {
			g.InnerSlack = 0
		}
	}

	g.MaxPosPx = track - g.InnerSize
	if g.MaxPosPx < 0 {
		g.MaxPosPx = 0
	}
	return g
}

// Model 单个方向的滚动条模型
// 保存最近一次几何计算得到的百分比表和滑块位置，拖动时据此把位置换算为数据索引
type Model struct {
	axis   Axis
	config Config

	mu       sync.RWMutex
	geometry Geometry
	pos      float64
	percents []float64
	dates    []core.DateCell
	rows     []core.Row
}

// NewModel 创建新的滚动条模型
func NewModel(axis Axis, config *Config) *Model {
	if config == nil {
		config = DefaultConfig()
	}
	return &Model{
		axis:   axis,
		config: *config,
	}
}

// Axis 返回滚动方向
func (m *Model) Axis() Axis {
	return m.axis
}

// UpdateHorizontal 根据主层级完整序列重新计算水平滚动条
// 百分比表取自单元的 LeftPercent，由日历构建时计算
func (m *Model) UpdateHorizontal(state core.ScrollState, chartWidth float64, dates []core.DateCell) core.ScrollState {
	extent := 0.0
	percents := make([]float64, len(dates))
	for i, date := range dates {
		extent += date.Width
		percents[i] = date.LeftPercent
	}

	track := chartWidth - m.config.Size
	g := Thumb(track, chartWidth, extent, m.config.MinInnerSize)

	m.mu.Lock()
	m.dates = dates
	m.rows = nil
	m.percents = percents
	m.geometry = g
	m.pos = clamp(state.PosPx, g.MaxPosPx)
	pos := m.pos
	m.mu.Unlock()

	return m.apply(state, g, pos)
}

// UpdateVertical 根据展开后的行序列重新计算垂直滚动条，同时计算最后一页与可滚动区域
func (m *Model) UpdateVertical(state core.ScrollState, innerHeight float64, rows []core.Row) core.ScrollState {
	rowsHeight := RowsHeight(rows)
	state.LastPageSize, state.LastPageCount = LastPageRows(innerHeight, rows)
	state.Area = rowsHeight - state.LastPageSize

	percents := make([]float64, len(rows))
	top := 0.0
	for i, row := range rows {
		if state.Area > 0 {
			percents[i] = clampPercent(top / state.Area)
		}
		top += row.Height
	}

	g := Thumb(innerHeight, innerHeight, rowsHeight, m.config.MinInnerSize)

	m.mu.Lock()
	m.rows = rows
	m.dates = nil
	m.percents = percents
	m.geometry = g
	m.pos = clamp(state.PosPx, g.MaxPosPx)
	pos := m.pos
	m.mu.Unlock()

	return m.apply(state, g, pos)
}

func (m *Model) apply(state core.ScrollState, g Geometry, pos float64) core.ScrollState {
	state = m.config.Apply(state)
	state.InnerSize = g.InnerSize
	state.InnerSlack = g.InnerSlack
	state.MaxPosPx = g.MaxPosPx
	state.PosPx = pos
	return state
}

// Geometry 返回最近一次计算的滑块几何
func (m *Model) Geometry() Geometry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.geometry
}

// Pos 返回滑块当前位置
func (m *Model) Pos() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pos
}

// SetPos 同步外部写入的滑块位置
func (m *Model) SetPos(pos float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = clamp(pos, m.geometry.MaxPosPx)
}

// Len 返回百分比表长度
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.percents)
}

// IndexAt 返回第一个百分比不小于percent的索引，都小于时返回最后一个；表为空时返回-1
func (m *Model) IndexAt(percent float64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return indexAt(m.percents, percent)
}

func indexAt(percents []float64, percent float64) int {
	if len(percents) == 0 {
		return -1
	}
	for i, p := range percents {
		if p >= percent {
			return i
		}
	}
	return len(percents) - 1
}

// Drag 按指针位移移动滑块，返回新位置对应的数据索引和滑块位置
func (m *Model) Drag(delta float64) (int, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pos = clamp(m.pos+delta, m.geometry.MaxPosPx)
	percent := 0.0
	if m.geometry.MaxPosPx > 0 {
		percent = m.pos / m.geometry.MaxPosPx
	}
	return indexAt(m.percents, percent), m.pos
}

// PosForIndex 返回使滑块指向某个索引的位置
func (m *Model) PosForIndex(index int) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.percents) {
		return m.pos
	}
	return m.percents[index] * m.geometry.MaxPosPx
}

// ApplyHorizontal 把锚定单元和滑块位置写入水平滚动状态
// 锚定单元没有变化时返回false，调用者不需要写入
func (m *Model) ApplyHorizontal(state core.ScrollState, index int, pos float64) (core.ScrollState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.dates) {
		return state, false
	}
	date := m.dates[index]
	if state.Date != nil && state.Date.LeftGlobal == date.LeftGlobal {
		return state, false
	}

	state.Date = &date
	state.DataIndex = index
	state.PosPx = pos
	return state, true
}

// ApplyVertical 把锚定行和滑块位置写入垂直滚动状态
// 锚定行没有变化时返回false，调用者不需要写入
func (m *Model) ApplyVertical(state core.ScrollState, index int, pos float64) (core.ScrollState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.rows) {
		return state, false
	}
	row := m.rows[index]
	if state.Row != nil && state.Row.ID == row.ID {
		return state, false
	}

	state.Row = &row
	state.DataIndex = index
	state.PosPx = pos
	return state, true
}

// RowsHeight 返回行高之和
func RowsHeight(rows []core.Row) float64 {
	height := 0.0
	for _, row := range rows {
		height += row.Height
	}
	return height
}

// LastPageRows 从末尾开始累计能完整放入视口的行高和行数
func LastPageRows(innerHeight float64, rows []core.Row) (float64, int) {
	size := 0.0
	count := 0
	for i := len(rows) - 1; i >= 0; i-- {
		size += rows[i].Height
		if size >= innerHeight {
			size -= rows[i].Height
			break
		}
		count++
	}
	return size, count
}

func clamp(pos, limit float64) float64 {
	if pos < 0 {
		return 0
	}
	if pos > limit {
		return limit
	}
	return pos
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
