package main

import (
	"fmt"
	"runtime"

	"github.com/Kevin-Rudy/gogantt/pkg/state"
	"github.com/Kevin-Rudy/gogantt/pkg/termsize"
)

// 程序信息常量
const (
	AppName    = "gogantt"
	AppVersion = "0.1.0"
	AppDesc    = "终端里的可缩放甘特时间轴"
)

// showSystemInfo 显示系统环境信息
func showSystemInfo(engine *state.Engine) {
	size := termsize.Detect()
	adapter := engine.Adapter()

	fmt.Println("\n系统信息:")
	fmt.Printf("  操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  终端尺寸: %dx%d\n", size.Columns, size.Rows)
	fmt.Printf("  时区: %s\n", adapter.Location())
	fmt.Printf("  地区: %s (周起始: %s)\n", adapter.Locale(), adapter.WeekStart())
}

// printUsageInstructions 显示TUI操作说明
func printUsageInstructions() {
	fmt.Println("操作说明:")
	fmt.Println("  ↑/↓ 或 k/j   - 选择行")
	fmt.Println("  ←/→ 或 h/l   - 按单元平移时间轴")
	fmt.Println("  H/L          - 按屏平移时间轴")
	fmt.Println("  PgUp/PgDn    - 按屏滚动行列表")
	fmt.Println("  Enter/空格   - 展开或折叠选中行")
	fmt.Println("  +/-          - 放大/缩小")
	fmt.Println("  p/P          - 切换到更大/更小的周期")
	fmt.Println("  t            - 回到今天")
	fmt.Println("  r            - 重新计算时间轴")
	fmt.Println("  q 或 Ctrl+C  - 退出程序")
	fmt.Println("========================================")
}
