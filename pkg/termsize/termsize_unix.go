//go:build unix

package termsize

import (
	"golang.org/x/sys/unix"
)

// unixSizer Unix平台实现
type unixSizer struct{}

// size 通过 TIOCGWINSZ 读取窗口尺寸
func (unixSizer) size(fd uintptr) (Size, error) {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil {
		return Size{}, err
	}
	return Size{Columns: int(ws.Col), Rows: int(ws.Row)}, nil
}

// getPlatformSizer 获取Unix平台的实现
func getPlatformSizer() platformSizer {
	return unixSizer{}
}
