// Package source 加载器定义
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
)

// Loader 一次性读取完整的行与条目集合
type Loader interface {
	Load() (core.ItemBatch, error)
}

// LoaderFunc 把普通函数适配为Loader
type LoaderFunc func() (core.ItemBatch, error)

// Load 实现Loader接口
func (f LoaderFunc) Load() (core.ItemBatch, error) {
	return f()
}

// NewFileLoader 按扩展名选择文件加载器：.yaml/.yml 为条目文件，.ics 为iCalendar日历
func NewFileLoader(path string, config *Config, adapter *datetime.Adapter) (Loader, error) {
	if path == "" {
		return nil, errors.New("数据文件路径不能为空")
	}
	if adapter == nil {
		return nil, errors.New("日期适配器不能为空")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return &YAMLFile{Path: path, Adapter: adapter}, nil
	case ".ics", ".ical":
		return &ICSFile{Path: path, Adapter: adapter, Config: config}, nil
	}
	return nil, fmt.Errorf("不支持的数据文件类型 '%s'", filepath.Ext(path))
}

// yamlRow 条目文件中的行
type yamlRow struct {
	ID       string  `yaml:"id"`
	ParentID string  `yaml:"parent_id"`
	Label    string  `yaml:"label"`
	Expanded bool    `yaml:"expanded"`
	Height   float64 `yaml:"height"`
}

// yamlItem 条目文件中的条目，时间使用可读的字符串
type yamlItem struct {
	ID    string `yaml:"id"`
	RowID string `yaml:"row_id"`
	Label string `yaml:"label"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// yamlDocument 条目文件结构
type yamlDocument struct {
	Rows  []yamlRow  `yaml:"rows"`
	Items []yamlItem `yaml:"items"`
}

// YAMLFile 从YAML文件加载行与条目
type YAMLFile struct {
	Path    string
	Adapter *datetime.Adapter
}

// Load 实现Loader接口
func (f *YAMLFile) Load() (core.ItemBatch, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return core.ItemBatch{}, err
	}
	batch, err := ParseYAML(data, f.Adapter)
	if err != nil {
		return core.ItemBatch{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	batch.Source = f.Path
	return batch, nil
}

// ParseYAML 解析条目文件
// 时间支持 RFC3339、"2006-01-02 15:04"、"2006-01-02" 和毫秒时间戳；只有日期的结束时间包含当天
func ParseYAML(data []byte, adapter *datetime.Adapter) (core.ItemBatch, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return core.ItemBatch{}, err
	}

	batch := core.ItemBatch{
		Rows:  make([]core.Row, 0, len(doc.Rows)),
		Items: make([]core.Item, 0, len(doc.Items)),
	}

	rowIDs := make(map[string]bool, len(doc.Rows))
	for i, r := range doc.Rows {
		if r.ID == "" {
			return core.ItemBatch{}, fmt.Errorf("第 %d 行缺少id", i+1)
		}
		if rowIDs[r.ID] {
			return core.ItemBatch{}, fmt.Errorf("行id '%s' 重复", r.ID)
		}
		rowIDs[r.ID] = true

		label := r.Label
		if label == "" {
			label = r.ID
		}
		batch.Rows = append(batch.Rows, core.Row{
			ID:       r.ID,
			ParentID: r.ParentID,
			Label:    label,
			Expanded: r.Expanded,
			Height:   r.Height,
		})
	}

	for i, it := range doc.Items {
		if it.ID == "" {
			return core.ItemBatch{}, fmt.Errorf("第 %d 个条目缺少id", i+1)
		}
		if !rowIDs[it.RowID] {
			return core.ItemBatch{}, fmt.Errorf("条目 '%s' 引用了不存在的行 '%s'", it.ID, it.RowID)
		}

		start, err := adapter.Parse(it.Start)
		if err != nil {
			return core.ItemBatch{}, fmt.Errorf("条目 '%s' 开始时间: %w", it.ID, err)
		}
		end, err := adapter.Parse(it.End)
		if err != nil {
			return core.ItemBatch{}, fmt.Errorf("条目 '%s' 结束时间: %w", it.ID, err)
		}
		if isDateOnly(it.End) {
			end = end.Add(1, core.PeriodDay)
		}
		if end.ValueOf() < start.ValueOf() {
			return core.ItemBatch{}, fmt.Errorf("条目 '%s' 的结束时间早于开始时间", it.ID)
		}

		label := it.Label
		if label == "" {
			label = it.ID
		}
		batch.Items = append(batch.Items, core.Item{
			ID:    it.ID,
			RowID: it.RowID,
			Label: label,
			Time:  core.ItemTime{Start: start.ValueOf(), End: end.ValueOf()},
		})
	}

	return batch, nil
}

// isDateOnly 判断时间字符串是否只包含日期
func isDateOnly(value string) bool {
	value = strings.TrimSpace(value)
	return len(value) == len("2006-01-02") && strings.Count(value, "-") == 2
}
