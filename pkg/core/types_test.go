package core

import (
	"testing"
	"time"
)

// TestPeriodValid 测试周期合法性检查
func TestPeriodValid(t *testing.T) {
	for _, p := range Periods {
		if !p.Valid() {
			t.Errorf("Expected period %q to be valid", p)
		}
	}

	if Period("fortnight").Valid() {
		t.Error("Expected unknown period to be invalid")
	}
	if Period("").Valid() {
		t.Error("Expected empty period to be invalid")
	}
}

// TestDateCellContains 测试半开区间的包含判断
func TestDateCellContains(t *testing.T) {
	cell := DateCell{LeftGlobal: 1000, RightGlobal: 2000}

	if !cell.Contains(1000) {
		t.Error("Expected cell to contain its left boundary")
	}
	if !cell.Contains(1999) {
		t.Error("Expected cell to contain 1999")
	}
	if cell.Contains(2000) {
		t.Error("Expected cell not to contain its right boundary")
	}
	if cell.Contains(999) {
		t.Error("Expected cell not to contain 999")
	}
}

// TestTimeWindowMainDates 测试主层级访问的边界情况
func TestTimeWindowMainDates(t *testing.T) {
	tw := TimeWindow{}
	if tw.MainDates() != nil {
		t.Error("Expected nil main dates for empty window")
	}
	if tw.MainLevelDates() != nil {
		t.Error("Expected nil main level dates for empty window")
	}

	tw.Level = 1
	tw.AllDates = [][]DateCell{{{LeftGlobal: 1}}, {{LeftGlobal: 2}, {LeftGlobal: 3}}}
	tw.Levels = [][]DateCell{{}, {{LeftGlobal: 3}}}

	if got := len(tw.MainDates()); got != 2 {
		t.Errorf("Expected 2 main dates, got %d", got)
	}
	if got := tw.MainLevelDates()[0].LeftGlobal; got != 3 {
		t.Errorf("Expected first visible main date at 3, got %d", got)
	}

	tw.Level = 5
	if tw.MainDates() != nil {
		t.Error("Expected nil main dates for out of range level")
	}
}

// TestTriggerJustApply 测试直接应用类触发器的识别
func TestTriggerJustApply(t *testing.T) {
	apply := []TriggerName{TriggerLeftGlobal, TriggerCenterGlobal, TriggerRightGlobal, TriggerFrom, TriggerTo}
	for _, name := range apply {
		if !(Trigger{Name: name}).JustApply() {
			t.Errorf("Expected trigger %q to be just-apply", name)
		}
	}

	recompute := []TriggerName{TriggerAll, TriggerForceUpdate, TriggerZoom, TriggerPeriod, TriggerScroll, TriggerChartWidth, TriggerItems}
	for _, name := range recompute {
		if (Trigger{Name: name}).JustApply() {
			t.Errorf("Expected trigger %q to require recomputation", name)
		}
	}
}

// mockItemSource 模拟数据源，用于测试
type mockItemSource struct {
	dataChan chan ItemBatch
	started  bool
	stopped  bool
}

func newMockItemSource() *mockItemSource {
	return &mockItemSource{
		dataChan: make(chan ItemBatch, 10),
	}
}

func (m *mockItemSource) DataStream() <-chan ItemBatch {
	return m.dataChan
}

func (m *mockItemSource) Start() {
	m.started = true
	go func() {
		for i := 0; i < 3; i++ {
			if m.stopped {
				break
			}
			m.dataChan <- ItemBatch{
				Source: "mock",
				Rows:   []Row{{ID: "r1"}},
				Items:  make([]Item, i+1),
			}
			time.Sleep(10 * time.Millisecond)
		}
		close(m.dataChan)
	}()
}

func (m *mockItemSource) Stop() {
	m.stopped = true
}

// TestItemSourceInterface 测试ItemSource接口
func TestItemSourceInterface(t *testing.T) {
	var source ItemSource = newMockItemSource()
	mock := source.(*mockItemSource)

	if mock.started {
		t.Error("ItemSource should not be started initially")
	}

	source.Start()
	if !mock.started {
		t.Error("ItemSource should be started after Start() call")
	}

	received := 0
	lastCount := 0
	timeout := time.After(500 * time.Millisecond)

loop:
	for {
		select {
		case batch, ok := <-source.DataStream():
			if !ok {
				break loop
			}
			received++
			if batch.Source != "mock" {
				t.Errorf("Expected source 'mock', got '%s'", batch.Source)
			}
			lastCount = len(batch.Items)
		case <-timeout:
			break loop
		}
	}

	if received != 3 {
		t.Errorf("Expected 3 batches, got %d", received)
	}
	if lastCount != 3 {
		t.Errorf("Expected last batch to carry 3 items, got %d", lastCount)
	}

	source.Stop()
	if !mock.stopped {
		t.Error("ItemSource should be stopped after Stop() call")
	}
}
