// Package route derives colored path geometry from an ordered list of
// status-tagged points.
package route

import (
	"errors"
	"fmt"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/paulmach/orb"
)

// Status is a severity code. The demo data uses 1..4.
type Status int

// Point is a status-tagged lon/lat coordinate. Slice order is path order.
type Point struct {
	Status      Status
	Coordinates orb.Point
}

func (p Point) Lon() float64 { return p.Coordinates.Lon() }
func (p Point) Lat() float64 { return p.Coordinates.Lat() }

func (p Point) String() string {
	return fmt.Sprintf("status=%d lon=%.6f lat=%.6f", p.Status, p.Lon(), p.Lat())
}

// StatusColorMap maps a status to a hex color ("#rgb" or "#rrggbb").
type StatusColorMap map[Status]string

var (
	ErrUnmappedStatus = errors.New("status has no color")
	ErrInvalidColor   = errors.New("invalid color")
)

// DefaultColors is the palette shipped with the demo data.
func DefaultColors() StatusColorMap {
	return StatusColorMap{
		1: "#2bbb00",
		2: "#ffc932",
		3: "#ff0000",
		4: "#000",
	}
}

// Color returns the color for s and whether it is mapped.
func (c StatusColorMap) Color(s Status) (string, bool) {
	col, ok := c[s]
	return col, ok
}

// Statuses returns the mapped statuses in ascending order.
func (c StatusColorMap) Statuses() []Status {
	out := make([]Status, 0, len(c))
	for s := range c {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidateColors checks every color parses as hex.
func (c StatusColorMap) ValidateColors() error {
	for _, s := range c.Statuses() {
		if _, err := colorful.Hex(c[s]); err != nil {
			return fmt.Errorf("status %d: %q: %w", s, c[s], ErrInvalidColor)
		}
	}
	return nil
}

// Validate enforces that every point status has a parseable color.
func Validate(points []Point, colors StatusColorMap) error {
	if err := colors.ValidateColors(); err != nil {
		return err
	}
	for i, p := range points {
		if _, ok := colors[p.Status]; !ok {
			return fmt.Errorf("point %d (status %d): %w", i, p.Status, ErrUnmappedStatus)
		}
	}
	return nil
}

// Bound returns the bounding box of points. ok is false for an empty list.
func Bound(points []Point) (b orb.Bound, ok bool) {
	if len(points) == 0 {
		return orb.Bound{}, false
	}
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, p.Coordinates)
	}
	return mp.Bound(), true
}
