// Package core 定义了时间轴引擎的核心数据结构
// 这些类型在日历生成、视口计算、滚动条和界面之间传递，保证各层完全解耦
package core

// Period 表示日历周期单位
type Period string

const (
	PeriodHour  Period = "hour"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Periods 按从小到大的顺序列出所有支持的周期
var Periods = []Period{PeriodHour, PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}

// Valid 检查周期是否受支持
func (p Period) Valid() bool {
	for _, known := range Periods {
		if p == known {
			return true
		}
	}
	return false
}

// CurrentView 表示日期单元在当前视口中的像素位置（以视口左边缘为0）
type CurrentView struct {
	LeftPx  float64
	RightPx float64
	Width   float64
}

// DateCell 表示某一日历层级上的一个网格单元
// 时间边界为半开区间 [LeftGlobal, RightGlobal)，相邻单元首尾相接
type DateCell struct {
	LeftGlobal  int64 // 单元开始时间（毫秒）
	RightGlobal int64 // 下一个单元的开始时间（毫秒）

	Width   float64 // 像素宽度 = (RightGlobal-LeftGlobal)/TimePerPixel
	LeftPx  float64 // 在完整序列中的累计像素偏移
	RightPx float64

	Period    Period
	Formatted string // 渲染后的标签，引擎不解析

	Current  bool // 生成时相对于"现在"所处的周期
	Next     bool
	Previous bool

	CurrentView *CurrentView // 仅在视口裁剪后的序列中设置

	LeftPercent  float64 // 占可滚动宽度的比例，滚动条使用
	RightPercent float64
}

// Contains 判断时间点是否落在单元内
func (c DateCell) Contains(ms int64) bool {
	return ms >= c.LeftGlobal && ms < c.RightGlobal
}

// Format 表示某一缩放范围内生效的日历格式
type Format struct {
	ZoomTo    float64 `yaml:"zoom_to" json:"zoom_to"`
	Period    Period  `yaml:"period" json:"period"`
	Default   bool    `yaml:"default,omitempty" json:"default,omitempty"`
	ClassName string  `yaml:"class_name,omitempty" json:"class_name,omitempty"`
	Layout    string  `yaml:"format" json:"format"` // Go时间布局字符串
}

// TimeWindow 是可见时间轴的唯一权威快照
// 每次重新计算都会整体重建，消费者不得原地修改
type TimeWindow struct {
	Zoom         float64
	Period       Period
	TimePerPixel float64

	From int64 // 配置或由条目推导出的时间范围
	To   int64

	FinalFrom int64 // 包含额外留白后的可寻址时间范围
	FinalTo   int64

	LeftGlobal   int64
	CenterGlobal int64
	RightGlobal  int64

	LeftInner  int64 // LeftGlobal - FinalFrom
	RightInner int64 // RightGlobal - FinalFrom
	LeftPx     float64
	RightPx    float64

	TotalViewDurationMs int64
	TotalViewDurationPx float64

	Width              float64 // 视口像素宽度
	Level              int     // 主层级索引
	Format             Format  // 主层级当前生效的格式
	CalculatedZoomMode bool

	Levels   [][]DateCell // 每个层级裁剪到视口的单元序列
	AllDates [][]DateCell // 每个层级完整生成的单元序列
}

// MainDates 返回主层级的完整单元序列
func (tw *TimeWindow) MainDates() []DateCell {
	if tw.Level < 0 || tw.Level >= len(tw.AllDates) {
		return nil
	}
	return tw.AllDates[tw.Level]
}

// MainLevelDates 返回主层级在视口内的单元序列
func (tw *TimeWindow) MainLevelDates() []DateCell {
	if tw.Level < 0 || tw.Level >= len(tw.Levels) {
		return nil
	}
	return tw.Levels[tw.Level]
}

// ItemTime 条目的时间范围（毫秒）
type ItemTime struct {
	Start int64 `yaml:"start" json:"start"`
	End   int64 `yaml:"end" json:"end"`
}

// Item 表示挂在某一行上的甘特条目
type Item struct {
	ID    string   `yaml:"id" json:"id"`
	RowID string   `yaml:"row_id" json:"row_id"`
	Label string   `yaml:"label" json:"label"`
	Time  ItemTime `yaml:"time" json:"time"`
}

// Row 表示列表中的一行
type Row struct {
	ID       string  `yaml:"id" json:"id"`
	ParentID string  `yaml:"parent_id,omitempty" json:"parent_id,omitempty"`
	Label    string  `yaml:"label" json:"label"`
	Expanded bool    `yaml:"expanded,omitempty" json:"expanded,omitempty"`
	Height   float64 `yaml:"height,omitempty" json:"height,omitempty"`
}

// ScrollState 表示单个方向上的滚动状态
type ScrollState struct {
	Size         float64 // 滚动条粗细
	MinInnerSize float64 // 滑块最小尺寸

	PosPx         float64
	MaxPosPx      float64
	InnerSize     float64 // 滑块尺寸
	InnerSlack    float64 // 最小尺寸带来的额外长度
	Area          float64 // 可滚动的总像素
	LastPageSize  float64
	LastPageCount int

	DataIndex int
	Date      *DateCell // 水平方向当前锚定的单元
	Row       *Row      // 垂直方向当前锚定的行
}

// Dimensions 表示图表区域尺寸
type Dimensions struct {
	Width       float64
	Height      float64
	InnerHeight float64
}
