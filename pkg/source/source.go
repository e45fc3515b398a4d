// Package source 实现了core.ItemSource接口，从文件加载甘特图的行与条目
// 按配置的间隔重新加载，只有内容变化时才发送新的批次
package source

import (
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/log"
)

// Poller 定期调用Loader并把变化的批次发送到数据通道
type Poller struct {
	loader    Loader              // 数据加载器
	config    *Config             // 配置信息
	dataChan  chan core.ItemBatch // 数据输出通道
	stopChan  chan struct{}       // 停止信号通道
	wg        sync.WaitGroup      // 等待组，用于优雅关闭
	running   bool                // 运行状态
	runningMu sync.RWMutex        // 保护running状态的锁
	last      *core.ItemBatch     // 最近一次发送的批次
}

// NewPoller 创建新的Poller实例
func NewPoller(loader Loader, config *Config) (*Poller, error) {
	if loader == nil {
		return nil, errors.New("必须指定加载器")
	}
	if config == nil {
		config = DefaultConfig()
	}

	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Poller{
		loader:   loader,
		config:   config,
		dataChan: make(chan core.ItemBatch, config.BufferSize),
		stopChan: make(chan struct{}),
	}, nil
}

// DataStream 实现core.ItemSource接口
func (p *Poller) DataStream() <-chan core.ItemBatch {
	return p.dataChan
}

// Start 实现core.ItemSource接口，立即加载一次，然后按间隔重新加载
func (p *Poller) Start() {
	p.runningMu.Lock()
	if p.running {
		p.runningMu.Unlock()
		return
	}
	p.running = true
	p.runningMu.Unlock()

	p.wg.Add(1)
	go p.run()
}

// Stop 实现core.ItemSource接口
func (p *Poller) Stop() {
	p.runningMu.Lock()
	if !p.running {
		p.runningMu.Unlock()
		return
	}
	p.running = false
	p.runningMu.Unlock()

	// 发送停止信号
	close(p.stopChan)

	// 等待后台goroutine结束
	p.wg.Wait()

	// 关闭数据通道
	close(p.dataChan)
}

// isRunning 检查是否正在运行
func (p *Poller) isRunning() bool {
	p.runningMu.RLock()
	defer p.runningMu.RUnlock()
	return p.running
}

// run 后台加载循环
func (p *Poller) run() {
	defer p.wg.Done()

	p.poll()
	if p.config.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll 加载一次，内容与上次发送的相同时不发送
func (p *Poller) poll() {
	batch, err := p.loader.Load()
	if err != nil {
		log.Error("加载条目失败", err)
		return
	}

	if p.last != nil && reflect.DeepEqual(*p.last, batch) {
		return
	}
	p.last = &batch

	log.Info("条目已加载", "source", batch.Source, "rows", len(batch.Rows), "items", len(batch.Items))
	p.send(batch)
}

// send 发送批次到数据通道
func (p *Poller) send(batch core.ItemBatch) {
	if !p.isRunning() {
		return
	}

	for {
		select {
		case p.dataChan <- batch:
			// 成功发送
			return
		case <-p.stopChan:
			// 停止信号，不再发送
			return
		default:
			// 通道满了，丢弃最旧的批次，只有最新的内容有意义
			select {
			case <-p.dataChan:
			default:
			}
		}
	}
}
