package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"routemap/internal/geom"
	"routemap/internal/mapview"
	"routemap/internal/route"
)

const (
	zoomStep = 0.5
	panStep  = 8 // micro-pixels
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeList()
		m.applyFit()
	case viewReadyMsg:
		if err := m.comp.Ready(m.ctx); err != nil {
			m.logger.Error("overlay render failed", zap.Error(err))
			m.status = "render error: " + err.Error()
			return m, nil
		}
		m.applyFit()
		plan := m.comp.Plan()
		m.status = fmt.Sprintf("rendered  points=%d groups=%d transitions=%d",
			len(m.comp.Points()), len(plan.Groups), len(plan.Transitions))
		return m, nil
	case ConfigReloadedMsg:
		if msg.Err != nil {
			m.logger.Warn("config reload rejected", zap.Error(msg.Err))
			m.status = "config error: " + msg.Err.Error()
			return m, nil
		}
		cmd := m.remount(m.withSelection(msg.Settings))
		if cmd != nil {
			m.fitPending = msg.Fit
			m.status = "config reloaded"
		}
		return m, cmd
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			switch msg.String() {
			case "esc":
				m.pasteMode = false
				m.ta.Blur()
				return m, nil
			case "enter":
				text := strings.TrimSpace(m.ta.Value())
				if text == "" {
					m.status = "paste: empty"
					return m, nil
				}
				points, err := geom.ParseWKTLines(text)
				if err != nil {
					m.status = "wkt error: " + err.Error()
					return m, nil
				}
				cmd := m.replacePoints(points, "pasted")
				if cmd != nil {
					m.source = "<pasted>"
					m.pasteMode = false
					m.ta.Blur()
				}
				return m, cmd
			}
			var cmd tea.Cmd
			m.ta, cmd = m.ta.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+c", "q":
			if err := m.comp.Unmount(); err != nil {
				m.logger.Warn("unmount failed", zap.Error(err))
			}
			return m, tea.Quit
		case "1":
			m.showMarkers = !m.showMarkers
			m.status = fmt.Sprintf("markers: %v", m.showMarkers)
		case "2":
			m.showPaths = !m.showPaths
			m.status = fmt.Sprintf("paths: %v", m.showPaths)
		case "l":
			all := m.showMarkers && m.showPaths
			m.showMarkers = !all
			m.showPaths = !all
			m.status = fmt.Sprintf("layers: markers=%v paths=%v", m.showMarkers, m.showPaths)
		case "+", "=":
			m.zoomBy(zoomStep)
		case "-", "_":
			m.zoomBy(-zoomStep)
		case "f":
			m.fitPending = true
			m.applyFit()
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
				m.resizeList()
			}
		case "p":
			m.pasteMode = !m.pasteMode
			if m.pasteMode {
				m.ta.SetValue("")
				m.status = "paste mode"
				m.ta.Focus()
			} else {
				m.status = "view mode"
				m.ta.Blur()
			}
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrsFromCurrent()
			}
		case "i":
			m.inspect()
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					return m, m.loadPath(it.path)
				}
			}
		case "up":
			m.pan(0, -panStep)
		case "down":
			m.pan(0, panStep)
		case "left":
			m.pan(-panStep, 0)
		case "right":
			m.pan(panStep, 0)
		}
	case tea.MouseMsg:
		m.mouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) resizeList() {
	if m.showSidebar {
		_, _, _, h := m.layout()
		m.l.SetSize(sidebarWidth-2, h-2)
	}
}

// applyFit zooms to the points once both the view and the terminal size
// are known.
func (m *Model) applyFit() {
	if !m.fitPending || m.width == 0 || m.comp == nil || !m.comp.IsReady() {
		return
	}
	m.fitPending = false
	b, ok := route.Bound(m.comp.Points())
	if !ok {
		m.status = "fit: no points"
		return
	}
	_, _, w, h := m.layout()
	vp := m.comp.View().MoveCamera(func(vp *mapview.Viewport) { vp.Fit(b, w, h) })
	m.status = fmt.Sprintf("fit: zoom %.2f", vp.Zoom)
}

func (m *Model) zoomBy(d float64) {
	vp := m.comp.View().MoveCamera(func(vp *mapview.Viewport) { vp.ZoomBy(d) })
	m.status = fmt.Sprintf("zoom: %.2f", vp.Zoom)
}

func (m *Model) pan(dx, dy int) {
	m.comp.View().MoveCamera(func(vp *mapview.Viewport) { vp.Pan(dx, dy) })
}

func (m *Model) inspect() {
	hit, ok := m.inspectNearest()
	if !ok {
		m.inspectPopup = "no marker nearby"
		m.status = m.inspectPopup
		return
	}
	m.inspectPopup = m.describe(hit.point)
	m.status = "inspect popup"
}

// describe builds the popup text for p.
func (m Model) describe(p route.Point) string {
	name := filepath.Base(m.source)
	if m.source == "" {
		name = "<config>"
	}
	view := m.comp.View()
	plan := m.comp.Plan()
	return strings.Join([]string{
		fmt.Sprintf("source: %s", name),
		fmt.Sprintf("point: status=%d lon=%.6f lat=%.6f", p.Status, p.Lon(), p.Lat()),
		fmt.Sprintf("group: %s", route.GroupKey(p.Status)),
		fmt.Sprintf("color: %s", m.comp.Colors()[p.Status]),
		fmt.Sprintf("plan: %s groups=%d transitions=%d", plan.Grouping, len(plan.Groups), len(plan.Transitions)),
		fmt.Sprintf("tiles: %s", view.TileURL()),
		fmt.Sprintf("style layers: %d", len(view.StyleLayers())),
	}, "\n")
}

func (m *Model) mouse(msg tea.MouseMsg) {
	ox, oy, w, h := m.layout()
	cx, cy := msg.X-ox, msg.Y-oy
	if cx < 0 || cx >= w || cy < 0 || cy >= h || m.showAttrs || m.pasteMode {
		m.hovering = false
		m.hoverHasGeo = false
		return
	}
	vp := m.comp.View().Viewport()
	ll := vp.Unproject(cx*2, cy*4, w, h)
	m.hoverHasGeo = true
	m.hoverLon, m.hoverLat = ll.Lon(), ll.Lat()

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelUp:
		m.zoomBy(zoomStep)
		return
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelDown:
		m.zoomBy(-zoomStep)
		return
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.clickAt(cx, cy, w, h)
		return
	}

	m.hovering = m.comp.IsReady()
	m.hoverMicX, m.hoverMicY = m.nearestVertex(cx*2, cy*4, w, h)
}

// clickAt fires the click handlers of the marker under the cell.
func (m *Model) clickAt(cx, cy, w, h int) {
	if !m.showMarkers || !m.comp.IsReady() {
		return
	}
	hit, ok := m.markerAt(cx, cy, w, h)
	if !ok {
		m.inspectPopup = ""
		return
	}
	m.sel.point = nil
	m.comp.View().Markers()[hit.index].Click()
	if m.sel.point == nil {
		return
	}
	p := *m.sel.point
	m.inspectPopup = m.describe(p)
	m.status = fmt.Sprintf("selected: %s", p)
}
