// Package termsize 检测终端尺寸
// 每个平台提供自己的实现，检测失败时依次使用 COLUMNS/LINES 环境变量和默认值
package termsize

import (
	"errors"
	"os"
	"strconv"
)

// 无法检测时使用的默认尺寸
const (
	DefaultColumns = 80
	DefaultRows    = 24
)

// ErrNotTerminal 文件描述符不是终端
var ErrNotTerminal = errors.New("不是终端")

// Size 终端的列数和行数
type Size struct {
	Columns int
	Rows    int
}

// platformSizer 定义平台的终端尺寸检测接口
// Unix: ioctl(TIOCGWINSZ)
// Windows: GetConsoleScreenBufferInfo
type platformSizer interface {
	size(fd uintptr) (Size, error)
}

// Get 返回文件对应终端的尺寸
func Get(f *os.File) (Size, error) {
	if f == nil {
		return Size{}, ErrNotTerminal
	}
	s, err := getPlatformSizer().size(f.Fd())
	if err != nil {
		return Size{}, err
	}
	if s.Columns <= 0 || s.Rows <= 0 {
		return Size{}, ErrNotTerminal
	}
	return s, nil
}

// Detect 返回标准输出的终端尺寸，检测失败时使用环境变量，最后使用默认值
func Detect() Size {
	if s, err := Get(os.Stdout); err == nil {
		return s
	}
	return fromEnv(os.Getenv("COLUMNS"), os.Getenv("LINES"))
}

// fromEnv 从环境变量值构造尺寸，无效值使用默认值
func fromEnv(columns, rows string) Size {
	s := Size{Columns: DefaultColumns, Rows: DefaultRows}
	if n, err := strconv.Atoi(columns); err == nil && n > 0 {
		s.Columns = n
	}
	if n, err := strconv.Atoi(rows); err == nil && n > 0 {
		s.Rows = n
	}
	return s
}
