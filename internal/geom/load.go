// Package geom loads status points from GeoJSON, CSV, KML and WKT files.
package geom

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"routemap/internal/route"
)

var ErrNoPoints = errors.New("no points found")

// Extensions lists the file extensions Load understands.
var Extensions = []string{".geojson", ".json", ".csv", ".kml", ".wkt"}

// Supported reports whether Load handles files with this name.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load reads status points from path, picking the parser by extension.
func Load(path string) ([]route.Point, orb.Bound, error) {
	var (
		points []route.Point
		err    error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson", ".json":
		points, err = LoadGeoJSON(path)
	case ".csv":
		points, err = LoadCSV(path)
	case ".kml":
		points, err = LoadKML(path)
	case ".wkt":
		var data []byte
		data, err = os.ReadFile(path)
		if err == nil {
			points, err = ParseWKTLines(string(data))
		}
	default:
		return nil, orb.Bound{}, fmt.Errorf("unsupported file: %q", ext)
	}
	if err != nil {
		return nil, orb.Bound{}, err
	}
	bb, _ := route.Bound(points)
	return points, bb, nil
}

// statusOf converts a decoded property value into a Status.
func statusOf(v any) (route.Status, bool) {
	switch t := v.(type) {
	case float64:
		return route.Status(t), t == float64(int(t))
	case int:
		return route.Status(t), true
	case string:
		s, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return route.Status(s), true
	}
	return 0, false
}
