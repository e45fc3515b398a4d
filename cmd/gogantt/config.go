package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Kevin-Rudy/gogantt/pkg/config"
	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/log"
	"github.com/Kevin-Rudy/gogantt/pkg/source"
	"github.com/Kevin-Rudy/gogantt/pkg/state"
	"github.com/Kevin-Rudy/gogantt/pkg/tui"
)

// AppConfig 应用层配置聚合
type AppConfig struct {
	Path         string         // 配置文件路径
	File         *config.Config // 合并了命令行参数的文件配置
	EngineConfig *state.Config
	SourceConfig *source.Config
	TUIConfig    *tui.Config
}

// buildConfigFromCLI 加载配置文件并用显式设置的命令行参数覆盖
func buildConfigFromCLI(c *cli.Context) (*AppConfig, error) {
	path := c.String("config")
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("无法确定配置文件路径: %w", err)
		}
		path = defaultPath
	}

	file, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	applyCLIOverrides(c, file)

	// 构建 TUI 配置
	tuiConfig := tui.NewConfigWithOptions(
		tui.WithListWidth(file.List.Width),
		tui.WithRefreshCron(file.Refresh),
	)
	if c.IsSet("refresh-rate") {
		tuiConfig.RefreshInterval = c.Duration("refresh-rate")
	}
	if c.IsSet("pixels-per-column") {
		tuiConfig.PixelsPerColumn = c.Float64("pixels-per-column")
	}

	appConfig := &AppConfig{
		Path:      path,
		File:      file,
		TUIConfig: tuiConfig,
	}

	if err := validateConfig(appConfig); err != nil {
		return nil, err
	}
	return appConfig, nil
}

// applyCLIOverrides 把显式设置的命令行参数写入文件配置
func applyCLIOverrides(c *cli.Context, file *config.Config) {
	if c.Args().Present() {
		file.Source.Path = c.Args().First()
	}
	if c.IsSet("items") {
		file.Source.Path = c.String("items")
	}
	if c.IsSet("reload") {
		file.Source.Reload = c.Duration("reload").String()
	}
	if c.IsSet("zoom") {
		file.Chart.Time.Zoom = c.Float64("zoom")
	}
	if c.IsSet("period") {
		file.Chart.Time.Period = core.Period(c.String("period"))
	}
	if c.IsSet("from") {
		file.Chart.Time.From = c.String("from")
	}
	if c.IsSet("to") {
		file.Chart.Time.To = c.String("to")
	}
	if c.IsSet("locale") {
		file.Locale = c.String("locale")
	}
	if c.IsSet("timezone") {
		file.Timezone = c.String("timezone")
	}
	if c.IsSet("week-start") {
		file.WeekStart = c.String("week-start")
	}
	if c.IsSet("list-width") {
		file.List.Width = c.Int("list-width")
	}
	if c.IsSet("refresh-cron") {
		file.Refresh = c.String("refresh-cron")
	}
	if c.IsSet("log-level") {
		file.LogLevel = c.String("log-level")
	}
}

// validateConfig 验证配置的合理性并生成各组件的配置
func validateConfig(appConfig *AppConfig) error {
	// 验证文件配置
	if err := appConfig.File.Validate(); err != nil {
		return fmt.Errorf("配置文件 %s 错误: %v", appConfig.Path, err)
	}

	engineConfig, err := appConfig.File.EngineConfig()
	if err != nil {
		return fmt.Errorf("引擎配置错误: %v", err)
	}
	appConfig.EngineConfig = engineConfig

	sourceConfig, err := appConfig.File.SourceConfig()
	if err != nil {
		return fmt.Errorf("数据源配置错误: %v", err)
	}
	appConfig.SourceConfig = sourceConfig

	// 验证 TUI 配置
	if err := appConfig.TUIConfig.Validate(); err != nil {
		return fmt.Errorf("tui配置错误: %v", err)
	}

	return nil
}

// setupLogging 设置日志级别和输出位置，返回关闭日志文件的函数
// 界面运行时终端被占用，未指定日志文件则丢弃日志
func setupLogging(appConfig *AppConfig, logFile string, interactive bool) (func(), error) {
	level, err := log.ParseLevel(appConfig.File.LogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)

	if logFile == "" {
		if interactive {
			log.SetOutput(io.Discard)
		}
		return func() {}, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("无法打开日志文件 %s: %w", logFile, err)
	}
	log.SetOutput(f)

	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}
