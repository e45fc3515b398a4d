package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/source"
	"github.com/Kevin-Rudy/gogantt/pkg/state"
	"github.com/Kevin-Rudy/gogantt/pkg/termsize"
)

const dumpTimeLayout = "2006-01-02 15:04"

// dumpCell 日历单元的输出形式
type dumpCell struct {
	Label   string  `yaml:"label"`
	Start   string  `yaml:"start"`
	End     string  `yaml:"end"`
	LeftPx  float64 `yaml:"left_px"`
	WidthPx float64 `yaml:"width_px"`
	Current bool    `yaml:"current,omitempty"`
}

// dumpRow 可见行的输出形式
type dumpRow struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label"`
	Depth    int    `yaml:"depth"`
	Expanded bool   `yaml:"expanded,omitempty"`
}

// dumpItem 可见条目的输出形式
type dumpItem struct {
	ID       string  `yaml:"id"`
	RowID    string  `yaml:"row_id"`
	Label    string  `yaml:"label"`
	Start    string  `yaml:"start"`
	End      string  `yaml:"end"`
	LeftPx   float64 `yaml:"left_px"`
	WidthPx  float64 `yaml:"width_px"`
	CutLeft  bool    `yaml:"cut_left,omitempty"`
	CutRight bool    `yaml:"cut_right,omitempty"`
}

// dumpView 一次计算得到的时间窗口
type dumpView struct {
	Period       core.Period  `yaml:"period"`
	Zoom         float64      `yaml:"zoom"`
	TimePerPixel float64      `yaml:"time_per_pixel"`
	Width        float64      `yaml:"width"`
	From         string       `yaml:"from"`
	To           string       `yaml:"to"`
	Left         string       `yaml:"left"`
	Center       string       `yaml:"center"`
	Right        string       `yaml:"right"`
	Levels       [][]dumpCell `yaml:"levels"`
	Rows         []dumpRow    `yaml:"rows"`
	Items        []dumpItem   `yaml:"items"`
}

// runDump 加载一次条目，计算时间窗口后输出，不启动界面
func runDump(c *cli.Context) error {
	appConfig, err := buildConfigFromCLI(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("配置验证失败: %v", err), 1)
	}

	format := c.String("format")
	if format != "text" && format != "yaml" {
		return cli.Exit(fmt.Sprintf("错误: 不支持的输出格式 %q", format), 1)
	}

	closeLog, err := setupLogging(appConfig, c.String("log-file"), false)
	if err != nil {
		return cli.Exit(fmt.Sprintf("日志设置失败: %v", err), 1)
	}
	defer closeLog()

	size := termsize.Detect()
	columns := c.Int("width")
	if columns <= 0 {
		columns = size.Columns
	}

	engine, err := state.NewEngine(appConfig.EngineConfig)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建时间轴引擎: %v", err), 1)
	}

	var batch core.ItemBatch
	if path := appConfig.File.Source.Path; path != "" {
		loader, err := source.NewFileLoader(path, appConfig.SourceConfig, engine.Adapter())
		if err != nil {
			return cli.Exit(fmt.Sprintf("无法创建数据源: %v", err), 1)
		}
		batch, err = loader.Load()
		if err != nil {
			return cli.Exit(fmt.Sprintf("加载条目失败: %v", err), 1)
		}
	}

	view, err := computeDump(engine, batch, float64(columns)*appConfig.TUIConfig.PixelsPerColumn, float64(size.Rows))
	if err != nil {
		return cli.Exit(fmt.Sprintf("计算时间窗口失败: %v", err), 1)
	}

	return writeDump(os.Stdout, view, format)
}

// computeDump 向引擎提交数据和尺寸，返回计算结果
func computeDump(engine *state.Engine, batch core.ItemBatch, width, height float64) (dumpView, error) {
	engine.Start()
	defer engine.Stop()

	engine.SetData(batch.Rows, batch.Items)
	engine.SetDimensions(width, height, height)

	if !engine.Loaded() {
		if err := engine.Err(); err != nil {
			return dumpView{}, err
		}
		return dumpView{}, errors.New("没有条目，也没有配置时间范围")
	}
	return buildDumpView(engine), nil
}

// buildDumpView 把引擎状态转换为输出结构
func buildDumpView(engine *state.Engine) dumpView {
	tw := engine.Time()
	adapter := engine.Adapter()
	formatMs := func(ms int64) string {
		return adapter.Date(ms).Format(dumpTimeLayout)
	}

	view := dumpView{
		Period:       tw.Period,
		Zoom:         tw.Zoom,
		TimePerPixel: tw.TimePerPixel,
		Width:        tw.Width,
		From:         formatMs(tw.From),
		To:           formatMs(tw.To),
		Left:         formatMs(tw.LeftGlobal),
		Center:       formatMs(tw.CenterGlobal),
		Right:        formatMs(tw.RightGlobal),
	}

	for _, level := range tw.Levels {
		cells := make([]dumpCell, 0, len(level))
		for _, cell := range level {
			dc := dumpCell{
				Label:   cell.Formatted,
				Start:   formatMs(cell.LeftGlobal),
				End:     formatMs(cell.RightGlobal),
				LeftPx:  cell.LeftPx,
				WidthPx: cell.Width,
				Current: cell.Current,
			}
			if cell.CurrentView != nil {
				dc.LeftPx = cell.CurrentView.LeftPx
				dc.WidthPx = cell.CurrentView.Width
			}
			cells = append(cells, dc)
		}
		view.Levels = append(view.Levels, cells)
	}

	snap := engine.Store().Get()
	depths := state.RowDepths(snap.Config.List.Rows)
	for _, row := range engine.VisibleRows() {
		view.Rows = append(view.Rows, dumpRow{
			ID:       row.ID,
			Label:    row.Label,
			Depth:    depths[row.ID],
			Expanded: row.Expanded,
		})
	}

	for _, item := range engine.VisibleItems() {
		placement := engine.Place(item)
		if !placement.Visible {
			continue
		}
		view.Items = append(view.Items, dumpItem{
			ID:       item.ID,
			RowID:    item.RowID,
			Label:    item.Label,
			Start:    formatMs(item.Time.Start),
			End:      formatMs(item.Time.End),
			LeftPx:   placement.LeftPx,
			WidthPx:  placement.WidthPx,
			CutLeft:  placement.CutLeft,
			CutRight: placement.CutRight,
		})
	}

	return view
}

// writeDump 按格式输出时间窗口
func writeDump(w io.Writer, view dumpView, format string) error {
	if format == "yaml" {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(view); err != nil {
			return err
		}
		return encoder.Close()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "周期: %s  缩放: %.2f  每像素: %.0fms  宽度: %.0fpx\n", view.Period, view.Zoom, view.TimePerPixel, view.Width)
	fmt.Fprintf(&b, "范围: %s ~ %s\n", view.From, view.To)
	fmt.Fprintf(&b, "视口: %s | %s | %s\n", view.Left, view.Center, view.Right)

	for i, level := range view.Levels {
		fmt.Fprintf(&b, "\n层级 %d (%d 个单元):\n", i, len(level))
		for _, cell := range level {
			marker := " "
			if cell.Current {
				marker = "*"
			}
			fmt.Fprintf(&b, "  %s %-16s %s ~ %s  left=%.1f width=%.1f\n", marker, cell.Label, cell.Start, cell.End, cell.LeftPx, cell.WidthPx)
		}
	}

	fmt.Fprintf(&b, "\n行 (%d):\n", len(view.Rows))
	for _, row := range view.Rows {
		fmt.Fprintf(&b, "  %s%s [%s]\n", strings.Repeat("  ", row.Depth), row.Label, row.ID)
	}

	fmt.Fprintf(&b, "\n条目 (%d):\n", len(view.Items))
	for _, item := range view.Items {
		cut := ""
		if item.CutLeft {
			cut += " ◀"
		}
		if item.CutRight {
			cut += " ▶"
		}
		fmt.Fprintf(&b, "  %s [%s] %s ~ %s  left=%.1f width=%.1f%s\n", item.Label, item.RowID, item.Start, item.End, item.LeftPx, item.WidthPx, cut)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
