package tui

import (
	"fmt"

	table "github.com/charmbracelet/bubbles/table"

	"routemap/internal/route"
)

// refreshAttrsFromCurrent rebuilds the points table from the mounted overlay.
func (m *Model) refreshAttrsFromCurrent() {
	points := m.comp.Points()
	if len(points) == 0 {
		m.showAttrs = false
		m.status = "no points in current dataset"
		return
	}
	cols := []table.Column{
		{Title: "#", Width: 4},
		{Title: "status", Width: 6},
		{Title: "group", Width: 10},
		{Title: "lon", Width: 11},
		{Title: "lat", Width: 11},
		{Title: "color", Width: 9},
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(cols)
	m.tbl.SetRows(pointRows(points, m.comp.Colors()))
}

func pointRows(points []route.Point, colors route.StatusColorMap) []table.Row {
	rows := make([]table.Row, 0, len(points))
	for i, p := range points {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", p.Status),
			route.GroupKey(p.Status),
			fmt.Sprintf("%.6f", p.Lon()),
			fmt.Sprintf("%.6f", p.Lat()),
			colors[p.Status],
		})
	}
	return rows
}
