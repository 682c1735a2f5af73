package mapview

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const (
	tileSize       = 256
	earthRadius    = 6378137.0
	worldMeters    = 2 * math.Pi * earthRadius
	pixelsPerMicro = 4 // web pixels per braille dot
	MinZoom        = 0.0
	MaxZoom        = 22.0
)

// Viewport is a Web-Mercator camera over a canvas measured in braille
// micro-pixels (2x4 per terminal cell).
type Viewport struct {
	Center orb.Point
	Zoom   float64
}

// scale is micro-pixels per mercator meter.
func (v Viewport) scale() float64 {
	return tileSize * math.Pow(2, v.Zoom) / worldMeters / pixelsPerMicro
}

// Project maps lon/lat to micro-pixel coords on a w x h cell canvas.
func (v Viewport) Project(p orb.Point, w, h int) (int, int) {
	pm := project.Point(p, project.WGS84.ToMercator)
	cm := project.Point(v.Center, project.WGS84.ToMercator)
	s := v.scale()
	mx := float64(w*2)/2 + (pm[0]-cm[0])*s
	my := float64(h*4)/2 - (pm[1]-cm[1])*s
	return int(math.Round(mx)), int(math.Round(my))
}

// ProjectLine maps every vertex of ls to unrounded micro-pixel coords.
func (v Viewport) ProjectLine(ls orb.LineString, w, h int) orb.LineString {
	cm := project.Point(v.Center, project.WGS84.ToMercator)
	s := v.scale()
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		pm := project.Point(p, project.WGS84.ToMercator)
		out[i] = orb.Point{
			float64(w*2)/2 + (pm[0]-cm[0])*s,
			float64(h*4)/2 - (pm[1]-cm[1])*s,
		}
	}
	return out
}

// Unproject maps micro-pixel coords back to lon/lat.
func (v Viewport) Unproject(mx, my, w, h int) orb.Point {
	cm := project.Point(v.Center, project.WGS84.ToMercator)
	s := v.scale()
	x := cm[0] + (float64(mx)-float64(w*2)/2)/s
	y := cm[1] - (float64(my)-float64(h*4)/2)/s
	return project.Point(orb.Point{x, y}, project.Mercator.ToWGS84)
}

// Pan moves the center by dx, dy micro-pixels.
func (v *Viewport) Pan(dx, dy int) {
	cm := project.Point(v.Center, project.WGS84.ToMercator)
	s := v.scale()
	cm[0] += float64(dx) / s
	cm[1] -= float64(dy) / s
	v.Center = project.Point(cm, project.Mercator.ToWGS84)
}

// ZoomBy changes the zoom level by d, clamped to [MinZoom, MaxZoom].
func (v *Viewport) ZoomBy(d float64) {
	v.Zoom = clampZoom(v.Zoom + d)
}

// Fit centers on b and picks the largest zoom that keeps it inside 90% of
// a w x h cell canvas. A degenerate bound only recenters.
func (v *Viewport) Fit(b orb.Bound, w, h int) {
	v.Center = b.Center()
	lo := project.Point(b.Min, project.WGS84.ToMercator)
	hi := project.Point(b.Max, project.WGS84.ToMercator)
	dx, dy := hi[0]-lo[0], hi[1]-lo[1]
	if (dx <= 0 && dy <= 0) || w <= 0 || h <= 0 {
		return
	}
	s := math.Inf(1)
	if dx > 0 {
		s = math.Min(s, 0.9*float64(w*2)/dx)
	}
	if dy > 0 {
		s = math.Min(s, 0.9*float64(h*4)/dy)
	}
	v.Zoom = clampZoom(math.Log2(s * worldMeters * pixelsPerMicro / tileSize))
}

func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}
