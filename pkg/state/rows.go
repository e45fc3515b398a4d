package state

import "github.com/Kevin-Rudy/gogantt/pkg/core"

// NormalizeRows 返回行的副本，未设置行高的行使用默认行高
func NormalizeRows(rows []core.Row, rowHeight float64) []core.Row {
	normalized := make([]core.Row, len(rows))
	for i, row := range rows {
		if row.Height <= 0 {
			row.Height = rowHeight
		}
		normalized[i] = row
	}
	return normalized
}

// RowsWithParentsExpanded 按树的深度优先顺序返回所有祖先都已展开的行
// 父行不存在的行按根行处理；循环引用上的行不会出现在结果中
func RowsWithParentsExpanded(rows []core.Row) []core.Row {
	byID := make(map[string]bool, len(rows))
	for _, row := range rows {
		byID[row.ID] = true
	}

	children := make(map[string][]core.Row)
	var roots []core.Row
	for _, row := range rows {
		if row.ParentID == "" || !byID[row.ParentID] {
			roots = append(roots, row)
			continue
		}
		children[row.ParentID] = append(children[row.ParentID], row)
	}

	result := make([]core.Row, 0, len(rows))
	visited := make(map[string]bool, len(rows))

	var walk func(row core.Row)
	walk = func(row core.Row) {
		if visited[row.ID] {
			return
		}
		visited[row.ID] = true
		result = append(result, row)
		if !row.Expanded {
			return
		}
		for _, child := range children[row.ID] {
			walk(child)
		}
	}

	for _, root := range roots {
		walk(root)
	}
	return result
}

// RowDepths 返回每一行在树中的深度，根行为0
func RowDepths(rows []core.Row) map[string]int {
	parents := make(map[string]string, len(rows))
	for _, row := range rows {
		parents[row.ID] = row.ParentID
	}

	depths := make(map[string]int, len(rows))
	for _, row := range rows {
		depth := 0
		seen := map[string]bool{row.ID: true}
		for parent := parents[row.ID]; parent != ""; parent = parents[parent] {
			if _, ok := parents[parent]; !ok || seen[parent] {
				break
			}
			seen[parent] = true
			depth++
		}
		depths[row.ID] = depth
	}
	return depths
}

// VisibleRows 从锚定行开始返回能填满视口高度的行，最后一行可以部分可见
// 锚定行不在序列中时使用dataIndex，越界时从第一行开始
func VisibleRows(rows []core.Row, vertical core.ScrollState, innerHeight float64) []core.Row {
	if len(rows) == 0 || innerHeight <= 0 {
		return []core.Row{}
	}

	start := -1
	if vertical.Row != nil {
		for i, row := range rows {
			if row.ID == vertical.Row.ID {
				start = i
				break
			}
		}
	}
	if start < 0 {
		start = vertical.DataIndex
	}
	if start < 0 || start >= len(rows) {
		start = 0
	}

	visible := make([]core.Row, 0)
	height := 0.0
	for _, row := range rows[start:] {
		visible = append(visible, row)
		height += row.Height
		if height >= innerHeight {
			break
		}
	}
	return visible
}

// VisibleItems 返回属于可见行的条目，保持条目原有顺序
func VisibleItems(items []core.Item, rows []core.Row) []core.Item {
	ids := make(map[string]bool, len(rows))
	for _, row := range rows {
		ids[row.ID] = true
	}

	visible := make([]core.Item, 0)
	for _, item := range items {
		if ids[item.RowID] {
			visible = append(visible, item)
		}
	}
	return visible
}

// sameRows 比较两组行的ID序列
func sameRows(a, b []core.Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
