package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Kevin-Rudy/gogantt/pkg/termsize"
)

// createCliApp 创建CLI应用实例
func createCliApp() *cli.App {
	app := &cli.App{
		Name:      AppName,
		Version:   AppVersion,
		Usage:     AppDesc,
		Flags:     createCliFlags(),
		Action:    runApp,
		ArgsUsage: "[条目文件 .yaml/.ics]",
	}

	// 添加子命令
	app.Commands = createCommands()

	return app
}

// createCliFlags 创建CLI参数定义
// 文件配置中的值只在参数被显式设置时才会被覆盖
func createCliFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "配置文件路径，不存在时写入默认配置 (默认: 用户配置目录下的 gogantt/config.yaml)",
			EnvVars: []string{"GOGANTT_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "items",
			Aliases: []string{"i"},
			Usage:   "条目文件路径 (.yaml/.yml 或 .ics)",
		},
		&cli.DurationFlag{
			Name:  "reload",
			Value: 30 * time.Second,
			Usage: "条目文件重新加载间隔，0表示只加载一次 (例如: 10s, 1m)",
		},
		&cli.Float64Flag{
			Name:    "zoom",
			Aliases: []string{"z"},
			Value:   21,
			Usage:   "缩放值，每像素毫秒数的以2为底的对数",
		},
		&cli.StringFlag{
			Name:    "period",
			Aliases: []string{"p"},
			Value:   "day",
			Usage:   "周期: hour, day, week, month, year",
		},
		&cli.StringFlag{
			Name:  "from",
			Usage: "时间范围开始 (例如: 2024-01-01, 2024-01-01 09:00, RFC3339)",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "时间范围结束，为空时由条目推导",
		},
		&cli.StringFlag{
			Name:  "locale",
			Value: "en-US",
			Usage: "BCP 47语言标签，决定默认的周起始日",
		},
		&cli.StringFlag{
			Name:  "timezone",
			Usage: "IANA时区名称，UTC表示使用UTC，为空时使用本地时区",
		},
		&cli.StringFlag{
			Name:  "week-start",
			Usage: "周起始日: monday 或 sunday",
		},
		&cli.IntFlag{
			Name:  "list-width",
			Value: 24,
			Usage: "行列表宽度",
		},
		&cli.DurationFlag{
			Name:    "refresh-rate",
			Aliases: []string{"r"},
			Value:   time.Second,
			Usage:   "UI刷新频率 (例如: 500ms, 1s)",
		},
		&cli.StringFlag{
			Name:  "refresh-cron",
			Value: "0 * * * *",
			Usage: "刷新当前周期标记的cron计划",
		},
		&cli.Float64Flag{
			Name:  "pixels-per-column",
			Value: 1,
			Usage: "每个终端列对应的时间轴像素",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "日志级别: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "日志文件路径，界面运行时未设置则丢弃日志",
		},
	}
}

// createCommands 创建子命令
func createCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "dump",
			Aliases:   []string{"d"},
			Usage:     "不启动界面，输出计算得到的时间窗口",
			ArgsUsage: "[条目文件 .yaml/.ics]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "输出格式: text 或 yaml",
				},
				&cli.IntFlag{
					Name:    "width",
					Aliases: []string{"w"},
					Usage:   "图表宽度（列），0表示使用终端宽度",
				},
			},
			Action: runDump,
		},
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "显示详细版本信息",
			Action: func(c *cli.Context) error {
				size := termsize.Detect()
				fmt.Printf("%s v%s\n", AppName, AppVersion)
				fmt.Printf("描述: %s\n", AppDesc)
				fmt.Printf("系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
				fmt.Printf("终端: %dx%d\n", size.Columns, size.Rows)
				return nil
			},
		},
	}
}
