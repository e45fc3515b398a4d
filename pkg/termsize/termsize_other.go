//go:build !unix && !windows

package termsize

// otherSizer 不支持检测的平台
type otherSizer struct{}

func (otherSizer) size(uintptr) (Size, error) {
	return Size{}, ErrNotTerminal
}

// getPlatformSizer 获取不支持平台的实现
func getPlatformSizer() platformSizer {
	return otherSizer{}
}
