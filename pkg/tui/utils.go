// Package tui 工具函数和辅助类型
package tui

// colorSequence 条目颜色序列，按行的顺序循环使用
var colorSequence = []string{
	"green", "yellow", "blue", "magenta", "cyan", "red",
	"orange", "purple", "lime", "pink",
	"darkcyan", "darkgreen", "darkblue", "darkmagenta",
}

// rowColor 根据行在展开序列中的位置返回颜色名称，保证同一行的条目颜色一致
func rowColor(index int) string {
	if index < 0 {
		index = -index
	}
	return colorSequence[index%len(colorSequence)]
}
