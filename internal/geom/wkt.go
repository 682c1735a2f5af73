package geom

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"routemap/internal/route"
)

// ParseWKTLines parses one "STATUS WKT" entry per line, for example
//
//	1 POINT(37.84 50.39)
//	2 LINESTRING(38.04 50.59, 38.14 50.69)
//
// Every vertex of POINT, MULTIPOINT or LINESTRING takes the line's status.
// Blank lines and lines starting with '#' are skipped.
func ParseWKTLines(text string) ([]route.Point, error) {
	var points []route.Point
	sc := bufio.NewScanner(strings.NewReader(text))
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		head, rest, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("wkt line %d: want \"STATUS WKT\"", n)
		}
		s, err := strconv.Atoi(strings.TrimSpace(head))
		if err != nil {
			return nil, fmt.Errorf("wkt line %d: invalid status %q", n, head)
		}
		g, err := wkt.Unmarshal(strings.TrimSpace(rest))
		if err != nil {
			return nil, fmt.Errorf("wkt line %d: %w", n, err)
		}
		var verts []orb.Point
		switch g := g.(type) {
		case orb.Point:
			verts = []orb.Point{g}
		case orb.MultiPoint:
			verts = g
		case orb.LineString:
			verts = g
		default:
			return nil, fmt.Errorf("wkt line %d: unsupported geometry %s", n, g.GeoJSONType())
		}
		for _, p := range verts {
			points = append(points, route.Point{Status: route.Status(s), Coordinates: p})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("wkt: %w", ErrNoPoints)
	}
	return points, nil
}
