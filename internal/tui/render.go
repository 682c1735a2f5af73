package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"

	"routemap/internal/route"
)

const (
	sidebarWidth = 28
	headerHeight = 1
	footerHeight = 2
)

// layout returns the map origin and size in cells; View and Update share it.
func (m Model) layout() (originX, originY, w, h int) {
	sw := 0
	if m.showSidebar {
		sw = sidebarWidth
		originX = sidebarWidth + 1
	}
	contentHeight := max(4, m.height-headerHeight-footerHeight)
	contentWidth := max(10, m.width)
	w = max(10, contentWidth-sw-1)
	return originX, headerHeight, w, contentHeight
}

// markerHit is a marker projected onto the current canvas.
type markerHit struct {
	index  int
	mx, my int
	point  route.Point
}

// projectedMarkers returns the markers in point order with micro coords.
func (m Model) projectedMarkers(w, h int) []markerHit {
	if m.comp == nil {
		return nil
	}
	vp := m.comp.View().Viewport()
	points := m.comp.Points()
	markers := m.comp.View().Markers()
	out := make([]markerHit, 0, len(markers))
	for i, mk := range markers {
		mx, my := vp.Project(mk.Position, w, h)
		hit := markerHit{index: i, mx: mx, my: my}
		if i < len(points) {
			hit.point = points[i]
		}
		out = append(out, hit)
	}
	return out
}

// markerAt returns the marker drawn in cell (cx, cy), or the closest one
// within one cell.
func (m Model) markerAt(cx, cy, w, h int) (markerHit, bool) {
	best, bestD := markerHit{}, math.MaxInt
	for _, hit := range m.projectedMarkers(w, h) {
		dx, dy := abs(hit.mx/2-cx), abs(hit.my/4-cy)
		if dx > 1 || dy > 1 {
			continue
		}
		if d := dx*dx + dy*dy; d < bestD {
			best, bestD = hit, d
		}
	}
	return best, bestD != math.MaxInt
}

func (m Model) renderAsciiMap(w, h int) string {
	if m.comp == nil || !m.comp.IsReady() {
		return dimStyle.Render("loading map…")
	}
	view := m.comp.View()
	vp := view.Viewport()
	br := newBrailleBuf(w, h)
	canvas := orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{float64(w * 2), float64(h * 4)}}

	// Layers draw in insertion order: groups, then transitions on top.
	if m.showPaths {
		for _, layer := range view.Layers() {
			src, ok := view.Source(layer.Source)
			if !ok || len(src.Line) == 0 {
				continue
			}
			br.setPen(layer.Paint.Color)
			projected := vp.ProjectLine(src.Line, w, h)
			if len(projected) == 1 {
				br.setPixel(int(projected[0][0]), int(projected[0][1]))
				continue
			}
			for _, part := range clip.LineString(canvas, projected) {
				for i := 1; i < len(part); i++ {
					a, b := part[i-1], part[i]
					br.drawLineMicro(int(a[0]), int(a[1]), int(b[0]), int(b[1]))
				}
			}
		}
	}
	cells := br.toCells()

	if m.showMarkers {
		for _, hit := range m.projectedMarkers(w, h) {
			cx, cy := hit.mx/2, hit.my/4
			if hit.mx < 0 || hit.my < 0 || cy >= h || cx >= w {
				continue
			}
			cells[cy][cx] = cell{r: markerGlyph, color: m.comp.Colors()[hit.point.Status]}
		}
	}

	// Hover highlight: an orange circle at the hovered vertex cell
	hover := [2]int{-1, -1}
	if m.hovering {
		hover = [2]int{m.hoverMicX / 2, m.hoverMicY / 4}
	}

	lines := make([]string, h)
	for y, row := range cells {
		lines[y] = renderRow(row, y, hover)
	}
	return strings.Join(lines, "\n")
}

// renderRow styles runs of equally colored cells in one pass.
func renderRow(row []cell, y int, hover [2]int) string {
	var sb strings.Builder
	var run []rune
	runColor := ""
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runColor == "" {
			sb.WriteString(string(run))
		} else {
			sb.WriteString(lipgloss.NewStyle().Foreground(canvasColor(runColor)).Render(string(run)))
		}
		run = run[:0]
	}
	for x, c := range row {
		if hover[1] == y && hover[0] == x {
			flush()
			sb.WriteString(hoverStyle.Render(string(hoverGlyph)))
			continue
		}
		if c.color != runColor {
			flush()
			runColor = c.color
		}
		run = append(run, c.r)
	}
	flush()
	return sb.String()
}

// nearestVertex finds the marker or line vertex closest to micro coords.
func (m Model) nearestVertex(hx, hy, w, h int) (int, int) {
	best := math.MaxInt
	bx, by := hx, hy
	consider := func(mx, my int) {
		dx, dy := mx-hx, my-hy
		if d := dx*dx + dy*dy; d < best {
			best = d
			bx, by = mx, my
		}
	}
	for _, hit := range m.projectedMarkers(w, h) {
		consider(hit.mx, hit.my)
	}
	if m.comp != nil {
		vp := m.comp.View().Viewport()
		for _, seg := range m.comp.Plan().Segments() {
			for _, p := range seg.Line {
				consider(vp.Project(p, w, h))
			}
		}
	}
	return bx, by
}

// inspectNearest finds the marker closest to the viewport center.
func (m Model) inspectNearest() (markerHit, bool) {
	_, _, w, h := m.layout()
	cx, cy := w, h*2 // center in micro coords
	bestD := math.MaxInt
	var best markerHit
	for _, hit := range m.projectedMarkers(w, h) {
		dx, dy := hit.mx-cx, hit.my-cy
		if d := dx*dx + dy*dy; d < bestD {
			bestD = d
			best = hit
		}
	}
	return best, bestD != math.MaxInt
}
