package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Kevin-Rudy/gogantt/pkg/log"
	"github.com/Kevin-Rudy/gogantt/pkg/source"
	"github.com/Kevin-Rudy/gogantt/pkg/state"
	"github.com/Kevin-Rudy/gogantt/pkg/tui"
)

// runApp 主要应用逻辑处理函数
func runApp(c *cli.Context) error {
	// 构建并验证配置
	appConfig, err := buildConfigFromCLI(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("配置验证失败: %v", err), 1)
	}

	if appConfig.File.Source.Path == "" {
		return cli.Exit("错误: 必须指定条目文件\n使用方法: gogantt <条目文件> 或在配置文件中设置 source.path", 1)
	}

	closeLog, err := setupLogging(appConfig, c.String("log-file"), true)
	if err != nil {
		return cli.Exit(fmt.Sprintf("日志设置失败: %v", err), 1)
	}
	defer closeLog()

	// 显示运行配置
	printRunningConfig(appConfig)

	fmt.Println("\n正在初始化时间轴引擎...")

	engine, err := state.NewEngine(appConfig.EngineConfig)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建时间轴引擎: %v", err), 1)
	}

	// 显示系统环境信息
	showSystemInfo(engine)

	loader, err := source.NewFileLoader(appConfig.File.Source.Path, appConfig.SourceConfig, engine.Adapter())
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建数据源: %v", err), 1)
	}
	poller, err := source.NewPoller(loader, appConfig.SourceConfig)
	if err != nil {
		return cli.Exit(fmt.Sprintf("无法创建数据源: %v", err), 1)
	}

	fmt.Println("时间轴引擎初始化成功")
	fmt.Println("\n正在启动TUI界面...")

	// 显示使用说明
	printUsageInstructions()

	log.Info("启动界面", "source", appConfig.File.Source.Path, "config", appConfig.Path)

	// 启动TUI界面 - 这会阻塞直到用户退出
	tuiInstance := tui.NewTUI(engine, poller, appConfig.TUIConfig)
	if err := tuiInstance.Run(); err != nil {
		return cli.Exit(fmt.Sprintf("TUI运行出错: %v", err), 1)
	}

	fmt.Println("\n程序已退出")
	return nil
}

// printRunningConfig 打印运行配置信息
func printRunningConfig(config *AppConfig) {
	timeConfig := config.File.Chart.Time
	fmt.Printf("配置文件: %s\n", config.Path)
	fmt.Printf("条目文件: %s\n", config.File.Source.Path)
	fmt.Printf("重新加载间隔: %v\n", config.SourceConfig.Interval)
	fmt.Printf("周期: %s, 缩放: %.2f\n", timeConfig.Period, timeConfig.Zoom)
	if timeConfig.From != "" || timeConfig.To != "" {
		fmt.Printf("时间范围: %s ~ %s\n", timeConfig.From, timeConfig.To)
	}
	fmt.Printf("界面刷新: %v, 周期刷新计划: %q\n", config.TUIConfig.RefreshInterval, config.TUIConfig.RefreshCron)
}
