// Package tui 数据处理模块
package tui

import (
	"time"

	"github.com/Kevin-Rudy/gogantt/pkg/core"
	"github.com/Kevin-Rudy/gogantt/pkg/log"
)

// applyBatch 把一批行和条目交给引擎
func (t *TUI) applyBatch(batch core.ItemBatch) {
	t.engine.SetData(batch.Rows, batch.Items)

	t.sourceName = batch.Source
	t.itemCount = len(batch.Items)
	t.lastUpdate = time.Now()
	t.message = ""
	if err := t.engine.Err(); err != nil {
		t.message = err.Error()
	}

	log.Debug("已加载条目", "source", batch.Source, "rows", len(batch.Rows), "items", len(batch.Items))

	t.ensureSelection()
	t.render()
}

// expandedRows 返回父行都已展开的行
func (t *TUI) expandedRows() []core.Row {
	return t.engine.Store().Get().Internal.List.RowsWithParentsExpanded
}

// selectedIndex 返回选中行在展开行中的位置，没有选中时返回-1
func (t *TUI) selectedIndex(rows []core.Row) int {
	for i, row := range rows {
		if row.ID == t.selectedRow {
			return i
		}
	}
	return -1
}

// ensureSelection 选中行被删除或折叠后改为选中第一行
func (t *TUI) ensureSelection() {
	rows := t.expandedRows()
	if len(rows) == 0 {
		t.selectedRow = ""
		return
	}
	if t.selectedIndex(rows) < 0 {
		t.selectedRow = rows[0].ID
	}
}
