//go:build windows

package termsize

import (
	"golang.org/x/sys/windows"
)

// windowsSizer Windows平台实现
type windowsSizer struct{}

// size 通过控制台缓冲区信息读取可见窗口尺寸
func (windowsSizer) size(fd uintptr) (Size, error) {
	var info windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(windows.Handle(fd), &info); err != nil {
		return Size{}, err
	}
	return Size{
		Columns: int(info.Window.Right-info.Window.Left) + 1,
		Rows:    int(info.Window.Bottom-info.Window.Top) + 1,
	}, nil
}

// getPlatformSizer 获取Windows平台的实现
func getPlatformSizer() platformSizer {
	return windowsSizer{}
}
