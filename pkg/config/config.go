// Package config 应用配置文件：首次运行时写入默认配置，加载时补全缺省值，保存时原子写入并限制权限为0600
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/Kevin-Rudy/gogantt/pkg/calendar"
	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/log"
	"github.com/Kevin-Rudy/gogantt/pkg/scroll"
	"github.com/Kevin-Rudy/gogantt/pkg/timeline"
)

// 缺省值
const (
	defaultLocale         = "en-US"
	defaultRefresh        = "0 * * * *"
	defaultReload         = "30s"
	defaultLogLevel       = "info"
	defaultListWidth      = 24
	defaultPastDays       = 90
	defaultFutureDays     = 365
	defaultMaxOccurrences = 1000
)

// TimeConfig 时间轴配置，from/to 使用可读的时间字符串，为空时由条目推导
type TimeConfig struct {
	From               string                                   `yaml:"from,omitempty"`
	To                 string                                   `yaml:"to,omitempty"`
	Zoom               float64                                  `yaml:"zoom"`
	Period             core.Period                              `yaml:"period"`
	CalculatedZoomMode bool                                     `yaml:"calculated_zoom_mode,omitempty"`
	AdditionalSpaces   map[core.Period]timeline.AdditionalSpace `yaml:"additional_spaces,omitempty"`
}

// ChartConfig 图表配置
type ChartConfig struct {
	Time     TimeConfig      `yaml:"time"`
	Calendar calendar.Config `yaml:"calendar"`
	Spacing  float64         `yaml:"spacing"`
}

// ScrollConfig 两个方向的滚动条配置
type ScrollConfig struct {
	Horizontal scroll.Config `yaml:"horizontal"`
	Vertical   scroll.Config `yaml:"vertical"`
}

// ListConfig 左侧行列表配置
type ListConfig struct {
	RowHeight float64 `yaml:"row_height"` // 未设置行高的行占用的终端行数
	Width     int     `yaml:"width"`      // 列表宽度（列）
}

// SourceConfig 条目数据源配置
type SourceConfig struct {
	Path           string `yaml:"path"`            // .yaml/.yml 条目文件或 .ics 日历
	Reload         string `yaml:"reload"`          // 重新加载间隔，例如 "30s"，"0s" 表示只加载一次
	PastDays       int    `yaml:"past_days"`       // 重复事件向过去展开的天数
	FutureDays     int    `yaml:"future_days"`     // 重复事件向未来展开的天数
	MaxOccurrences int    `yaml:"max_occurrences"` // 单个重复事件最多展开的次数
}

// Config 应用配置
type Config struct {
	// Locale 是BCP 47语言标签，决定默认的周起始日
	Locale string `yaml:"locale"`

	// Timezone 是IANA时区名称；"UTC" 表示使用UTC，为空时使用本地时区
	Timezone string `yaml:"timezone"`

	// WeekStart 为 "monday"、"sunday" 或空（按地区推导）
	WeekStart string `yaml:"week_start,omitempty"`

	// Refresh 是cron表达式，按此计划刷新当前/下一个/上一个周期的标记
	Refresh string `yaml:"refresh"`

	// LogLevel 日志级别：debug、info、warn、error
	LogLevel string `yaml:"log_level"`

	Source SourceConfig `yaml:"source"`
	Chart  ChartConfig  `yaml:"chart"`
	Scroll ScrollConfig `yaml:"scroll"`
	List   ListConfig   `yaml:"list"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	tl := timeline.DefaultConfig()
	return &Config{
		Locale:   defaultLocale,
		Refresh:  defaultRefresh,
		LogLevel: defaultLogLevel,
		Source: SourceConfig{
			Reload:         defaultReload,
			PastDays:       defaultPastDays,
			FutureDays:     defaultFutureDays,
			MaxOccurrences: defaultMaxOccurrences,
		},
		Chart: ChartConfig{
			Time: TimeConfig{
				Zoom:             tl.Time.Zoom,
				Period:           tl.Time.Period,
				AdditionalSpaces: tl.Time.AdditionalSpaces,
			},
			Calendar: tl.Calendar,
			Spacing:  tl.Spacing,
		},
		Scroll: ScrollConfig{
			Horizontal: *scroll.DefaultConfig(),
			Vertical:   *scroll.DefaultConfig(),
		},
		List: ListConfig{
			RowHeight: 1,
			Width:     defaultListWidth,
		},
	}
}

// Normalize 为缺失的字段填入缺省值，使旧版本或只写了部分字段的配置文件也能使用
func (c *Config) Normalize() {
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.Refresh == "" {
		c.Refresh = defaultRefresh
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	if c.Source.Reload == "" {
		c.Source.Reload = defaultReload
	}
	if c.Source.PastDays <= 0 {
		c.Source.PastDays = defaultPastDays
	}
	if c.Source.FutureDays <= 0 {
		c.Source.FutureDays = defaultFutureDays
	}
	if c.Source.MaxOccurrences <= 0 {
		c.Source.MaxOccurrences = defaultMaxOccurrences
	}

	defaults := timeline.DefaultConfig()
	if c.Chart.Time.Zoom == 0 && !c.Chart.Time.CalculatedZoomMode {
		c.Chart.Time.Zoom = defaults.Time.Zoom
	}
	if c.Chart.Time.Period == "" {
		c.Chart.Time.Period = defaults.Time.Period
	}
	if len(c.Chart.Calendar.Levels) == 0 {
		c.Chart.Calendar = defaults.Calendar
	}

	if c.Scroll.Horizontal.Size == 0 && c.Scroll.Horizontal.MinInnerSize == 0 {
		c.Scroll.Horizontal = *scroll.DefaultConfig()
	}
	if c.Scroll.Vertical.Size == 0 && c.Scroll.Vertical.MinInnerSize == 0 {
		c.Scroll.Vertical = *scroll.DefaultConfig()
	}

	if c.List.RowHeight <= 0 {
		c.List.RowHeight = 1
	}
	if c.List.Width <= 0 {
		c.List.Width = defaultListWidth
	}
}

// Validate 验证配置的合理性，返回第一个错误
func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.Refresh); err != nil {
		return fmt.Errorf("无效的刷新计划 '%s': %w", c.Refresh, err)
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	reload, err := time.ParseDuration(c.Source.Reload)
	if err != nil {
		return fmt.Errorf("无效的重新加载间隔 '%s': %w", c.Source.Reload, err)
	}
	if reload < 0 {
		return errors.New("重新加载间隔不能为负数")
	}

	if c.List.Width <= 0 {
		return errors.New("列表宽度必须大于0")
	}

	if err := c.DatetimeConfig().Validate(); err != nil {
		return err
	}

	if _, err := c.EngineConfig(); err != nil {
		return err
	}

	if _, err := c.SourceConfig(); err != nil {
		return err
	}

	return nil
}

// DefaultPath 返回默认的配置文件路径
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gogantt", "config.yaml"), nil
}

// Load 从YAML文件加载配置
// 文件不存在时创建目录并写入默认配置（权限0600），然后返回默认配置；
// 文件存在时解析并补全缺省值
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// 首次运行：写入默认配置
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			log.Info("已写入默认配置", "path", path)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save 把配置写入指定路径
// 先写入同目录下的临时文件，设置0600权限后重命名覆盖目标文件
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("配置文件路径为空")
	}
	if cfg == nil {
		return errors.New("配置为空")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".gogantt-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// 出错时清理临时文件；重命名成功后删除会失败，可以忽略
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save 把配置写入指定路径
func (c *Config) Save(path string) error {
	return Save(path, c)
}
