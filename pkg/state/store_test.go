package state

import (
	"reflect"
	"testing"
)

// TestPathMatches 测试路径匹配规则
func TestPathMatches(t *testing.T) {
	cases := []struct {
		subscribed Path
		changed    Path
		want       bool
	}{
		{PathScrollHorizontal, PathScrollHorizontal, true},
		{PathHorizontalPos, PathScrollHorizontal, true},
		{PathScrollHorizontal, PathHorizontalPos, true},
		{PathConfig, PathChartTime, true},
		{PathScrollHorizontal, PathScrollVertical, false},
		{PathTime, PathVisibleItems, false},
		{Path("config.chart.timeline"), PathChartTime, false},
	}
	for _, c := range cases {
		if got := c.subscribed.Matches(c.changed); got != c.want {
			t.Errorf("%s.Matches(%s): expected %v, got %v", c.subscribed, c.changed, c.want, got)
		}
	}
}

// TestSubscribe 订阅者在相关路径变化时收到最新快照
func TestSubscribe(t *testing.T) {
	s := NewStore(Snapshot{})

	var got []float64
	unsubscribe := s.Subscribe(PathHorizontalPos, func(snap Snapshot, changed []Path) {
		got = append(got, snap.Config.Scroll.Horizontal.PosPx)
		if len(changed) != 1 || changed[0] != PathScrollHorizontal {
			t.Errorf("Expected changed path %s, got %v", PathScrollHorizontal, changed)
		}
	})

	s.Update(PathScrollHorizontal, func(snap *Snapshot) {
		snap.Config.Scroll.Horizontal.PosPx = 12
	})
	s.Update(PathScrollVertical, func(snap *Snapshot) {
		snap.Config.Scroll.Vertical.PosPx = 3
	})

	unsubscribe()
	s.Update(PathScrollHorizontal, func(snap *Snapshot) {
		snap.Config.Scroll.Horizontal.PosPx = 20
	})

	if !reflect.DeepEqual(got, []float64{12}) {
		t.Errorf("Expected one notification with 12, got %v", got)
	}
	if v, ok := s.Value(PathHorizontalPos); !ok || v.(float64) != 20 {
		t.Errorf("Expected stored value 20, got %v", v)
	}
	if _, ok := s.Value(Path("config.unknown")); ok {
		t.Error("Expected unknown path to be reported")
	}
}

// TestBulk 批量订阅者每次提交只收到一次通知
func TestBulk(t *testing.T) {
	s := NewStore(Snapshot{})

	bulkCalls := 0
	var bulkChanged []Path
	s.SubscribeAll([]Path{PathListRows, PathChartItems}, func(_ Snapshot, changed []Path) {
		bulkCalls++
		bulkChanged = changed
	}, true)

	plainCalls := 0
	s.SubscribeAll([]Path{PathListRows, PathChartItems}, func(Snapshot, []Path) {
		plainCalls++
	}, false)

	s.Bulk([]Path{PathListRows, PathChartItems, PathDimensions}, func(*Snapshot) {})

	if bulkCalls != 1 {
		t.Errorf("Expected 1 bulk notification, got %d", bulkCalls)
	}
	if !reflect.DeepEqual(bulkChanged, []Path{PathListRows, PathChartItems}) {
		t.Errorf("Expected matched paths only, got %v", bulkChanged)
	}
	if plainCalls != 2 {
		t.Errorf("Expected 2 plain notifications, got %d", plainCalls)
	}
}

// TestNestedUpdateQueued 监听者中的写入立即生效，但通知在当前监听者返回后才投递
func TestNestedUpdateQueued(t *testing.T) {
	s := NewStore(Snapshot{})
	var order []string

	s.Subscribe(PathDimensions, func(snap Snapshot, _ []Path) {
		order = append(order, "dimensions:start")
		s.Update(PathRowsExpanded, func(snap *Snapshot) {
			snap.Internal.List.VisibleRows = nil
		})
		order = append(order, "dimensions:end")
	})
	s.Subscribe(PathRowsExpanded, func(snap Snapshot, _ []Path) {
		order = append(order, "rows")
	})

	s.Update(PathDimensions, func(snap *Snapshot) {
		snap.Internal.Chart.Dimensions.Width = 10
	})

	want := []string{"dimensions:start", "dimensions:end", "rows"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("Expected %v, got %v", want, order)
	}
}
