package source

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/datetime"
)

func newTestAdapter(t *testing.T) *datetime.Adapter {
	t.Helper()
	adapter, err := datetime.NewAdapter(&datetime.Config{Locale: "en-GB", UTC: true})
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	adapter.SetClock(func() time.Time {
		return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	})
	return adapter
}

func ms(year int, month time.Month, day, hour, minute int) int64 {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC).UnixMilli()
}

// mockLoader 返回可修改内容的加载器
type mockLoader struct {
	mu    sync.Mutex
	batch core.ItemBatch
	err   error
	calls int
}

func (m *mockLoader) Load() (core.ItemBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.batch, m.err
}

func (m *mockLoader) set(batch core.ItemBatch, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batch = batch
	m.err = err
}

func receive(t *testing.T, ch <-chan core.ItemBatch) core.ItemBatch {
	t.Helper()
	select {
	case batch, ok := <-ch:
		if !ok {
			t.Fatal("Expected a batch, channel closed")
		}
		return batch
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for a batch")
	}
	return core.ItemBatch{}
}

// TestNewPollerValidation 测试NewPoller的参数验证
func TestNewPollerValidation(t *testing.T) {
	if _, err := NewPoller(nil, DefaultConfig()); err == nil {
		t.Error("Expected error for nil loader")
	}

	badConfig := DefaultConfig()
	badConfig.BufferSize = 0
	if _, err := NewPoller(&mockLoader{}, badConfig); err == nil {
		t.Error("Expected error for zero buffer size")
	}

	badConfig = DefaultConfig()
	badConfig.Interval = 10 * time.Millisecond
	if _, err := NewPoller(&mockLoader{}, badConfig); err == nil {
		t.Error("Expected error for too short interval")
	}

	p, err := NewPoller(&mockLoader{}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.config.Interval != DefaultConfig().Interval {
		t.Errorf("Expected default interval, got %v", p.config.Interval)
	}
}

// TestPollerSendsOnlyChanges 内容没有变化时不发送新的批次
func TestPollerSendsOnlyChanges(t *testing.T) {
	loader := &mockLoader{batch: core.ItemBatch{
		Source: "mock",
		Rows:   []core.Row{{ID: "r"}},
		Items:  []core.Item{{ID: "i", RowID: "r", Time: core.ItemTime{Start: 1, End: 2}}},
	}}
	config := DefaultConfig()
	config.Interval = 0

	p, err := NewPoller(loader, config)
	if err != nil {
		t.Fatalf("Failed to create poller: %v", err)
	}
	p.Start()

	first := receive(t, p.DataStream())
	if len(first.Items) != 1 || first.Source != "mock" {
		t.Errorf("Expected first batch with one item, got %+v", first)
	}
	p.wg.Wait()

	p.poll()
	if len(p.dataChan) != 0 {
		t.Errorf("Expected no batch for unchanged content, got %d", len(p.dataChan))
	}

	loader.set(core.ItemBatch{
		Source: "mock",
		Rows:   []core.Row{{ID: "r"}},
		Items:  []core.Item{{ID: "i", RowID: "r", Time: core.ItemTime{Start: 1, End: 3}}},
	}, nil)
	p.poll()
	second := receive(t, p.DataStream())
	if second.Items[0].Time.End != 3 {
		t.Errorf("Expected updated item, got %+v", second.Items[0])
	}

	p.Stop()
	if _, ok := <-p.DataStream(); ok {
		t.Error("Expected channel to be closed after Stop")
	}
	p.Stop()
}

// TestPollerLoadError 加载失败时不发送批次
func TestPollerLoadError(t *testing.T) {
	loader := &mockLoader{err: errors.New("boom")}
	config := DefaultConfig()
	config.Interval = 0

	p, err := NewPoller(loader, config)
	if err != nil {
		t.Fatalf("Failed to create poller: %v", err)
	}
	p.Start()
	p.Stop()

	count := 0
	for range p.DataStream() {
		count++
	}
	if count != 0 {
		t.Errorf("Expected no batches, got %d", count)
	}
	if loader.calls != 1 {
		t.Errorf("Expected 1 load, got %d", loader.calls)
	}
}

// TestPollerInterval 按间隔重新加载
func TestPollerInterval(t *testing.T) {
	loader := &mockLoader{batch: core.ItemBatch{Rows: []core.Row{{ID: "a"}}}}
	config := DefaultConfig()
	config.Interval = 100 * time.Millisecond

	p, err := NewPoller(loader, config)
	if err != nil {
		t.Fatalf("Failed to create poller: %v", err)
	}
	p.Start()
	defer p.Stop()

	receive(t, p.DataStream())
	loader.set(core.ItemBatch{Rows: []core.Row{{ID: "b"}}}, nil)

	batch := receive(t, p.DataStream())
	if batch.Rows[0].ID != "b" {
		t.Errorf("Expected reloaded row b, got %s", batch.Rows[0].ID)
	}
}

// TestSendReplacesStaleBatch 通道满时丢弃旧批次
func TestSendReplacesStaleBatch(t *testing.T) {
	config := DefaultConfig()
	config.BufferSize = 1

	p, err := NewPoller(&mockLoader{}, config)
	if err != nil {
		t.Fatalf("Failed to create poller: %v", err)
	}
	p.running = true

	p.send(core.ItemBatch{Source: "old"})
	p.send(core.ItemBatch{Source: "new"})

	if got := receive(t, p.DataStream()); got.Source != "new" {
		t.Errorf("Expected newest batch, got %s", got.Source)
	}
}

const testItemsYAML = `
rows:
  - id: build
    label: Build
    expanded: true
  - id: compile
    parent_id: build
  - id: release
    height: 2
items:
  - id: c1
    row_id: compile
    label: Compile
    start: "2024-01-03"
    end: "2024-01-04"
  - id: r1
    row_id: release
    start: "2024-01-05 09:30"
    end: "2024-01-05T12:00:00Z"
`

// TestParseYAML 测试条目文件解析
func TestParseYAML(t *testing.T) {
	batch, err := ParseYAML([]byte(testItemsYAML), newTestAdapter(t))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(batch.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(batch.Rows))
	}
	if batch.Rows[1].ParentID != "build" || batch.Rows[1].Label != "compile" {
		t.Errorf("Expected compile row under build labelled by id, got %+v", batch.Rows[1])
	}
	if batch.Rows[2].Height != 2 || !batch.Rows[0].Expanded {
		t.Errorf("Expected row attributes to be kept, got %+v", batch.Rows)
	}

	if len(batch.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(batch.Items))
	}
	c1 := batch.Items[0]
	if c1.Time.Start != ms(2024, 1, 3, 0, 0) || c1.Time.End != ms(2024, 1, 5, 0, 0) {
		t.Errorf("Expected date-only end to include the whole day, got %+v", c1.Time)
	}
	r1 := batch.Items[1]
	if r1.Time.Start != ms(2024, 1, 5, 9, 30) || r1.Time.End != ms(2024, 1, 5, 12, 0) {
		t.Errorf("Expected 09:30-12:00, got %+v", r1.Time)
	}
	if r1.Label != "r1" {
		t.Errorf("Expected label to default to id, got %s", r1.Label)
	}
}

// TestParseYAMLErrors 测试条目文件中的错误
func TestParseYAMLErrors(t *testing.T) {
	adapter := newTestAdapter(t)
	cases := map[string]string{
		"missing row id": "rows:\n  - label: x\n",
		"duplicate row":  "rows:\n  - id: a\n  - id: a\n",
		"unknown row":    "rows:\n  - id: a\nitems:\n  - id: i\n    row_id: b\n    start: \"2024-01-01\"\n    end: \"2024-01-02\"\n",
		"bad time":       "rows:\n  - id: a\nitems:\n  - id: i\n    row_id: a\n    start: soon\n    end: \"2024-01-02\"\n",
		"reversed":       "rows:\n  - id: a\nitems:\n  - id: i\n    row_id: a\n    start: \"2024-01-05\"\n    end: \"2024-01-02\"\n",
		"invalid yaml":   "rows: [",
	}
	for name, doc := range cases {
		if _, err := ParseYAML([]byte(doc), adapter); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

// TestFileLoader 按扩展名选择加载器
func TestFileLoader(t *testing.T) {
	adapter := newTestAdapter(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(path, []byte(testItemsYAML), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	loader, err := NewFileLoader(path, DefaultConfig(), adapter)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	batch, err := loader.Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if batch.Source != path || len(batch.Items) != 2 {
		t.Errorf("Expected 2 items from %s, got %d from %s", path, len(batch.Items), batch.Source)
	}

	if _, err := NewFileLoader(filepath.Join(dir, "plan.csv"), DefaultConfig(), adapter); err == nil {
		t.Error("Expected error for unsupported extension")
	}
	if _, err := NewFileLoader("", DefaultConfig(), adapter); err == nil {
		t.Error("Expected error for empty path")
	}

	missing, err := NewFileLoader(filepath.Join(dir, "missing.yml"), DefaultConfig(), adapter)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := missing.Load(); err == nil {
		t.Error("Expected error for missing file")
	}
}

// TestNewFileSourceWithOptions 测试选项模式
func TestNewFileSourceWithOptions(t *testing.T) {
	adapter := newTestAdapter(t)

	if _, err := NewFileSourceWithOptions("plan.yaml", adapter, WithBufferSize(0)); err == nil {
		t.Error("Expected error for invalid buffer size")
	}

	src, err := NewFileSourceWithOptions("plan.ics", adapter,
		WithInterval(time.Second),
		WithExpandRange(time.Hour, time.Hour),
		WithMaxOccurrences(5),
	)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	p, ok := src.(*Poller)
	if !ok {
		t.Fatalf("Expected *Poller, got %T", src)
	}
	if p.config.Interval != time.Second || p.config.MaxOccurrences != 5 || p.config.Future != time.Hour {
		t.Errorf("Expected options to be applied, got %+v", p.config)
	}
}
