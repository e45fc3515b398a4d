package core

// ItemBatch 表示数据源一次加载得到的完整行与条目集合
type ItemBatch struct {
	Source string // 数据源标识（如文件路径）
	Rows   []Row
	Items  []Item
}

// ItemSource 定义了条目数据源的标准接口
// 任何条目提供者（YAML文件、ICS日历等）都应该实现这个接口
type ItemSource interface {
	// DataStream 返回一个只读通道，用于接收最新的条目集合
	// 实现者应该在独立的goroutine中持续发送ItemBatch数据到这个通道
	DataStream() <-chan ItemBatch

	// Start 启动数据加载
	// 这个方法应该是非阻塞的，实际的加载工作在后台goroutine中进行
	Start()

	// Stop 停止数据加载并清理资源
	// 调用此方法后，DataStream()返回的通道应该被关闭
	Stop()
}
