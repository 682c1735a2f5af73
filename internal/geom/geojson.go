package geom

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"routemap/internal/route"
)

// LoadGeoJSON reads a FeatureCollection (or a single Feature) of Point and
// MultiPoint features. Each feature needs a numeric "status" property.
func LoadGeoJSON(path string) ([]route.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		f, ferr := geojson.UnmarshalFeature(data)
		if ferr != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		fc = geojson.NewFeatureCollection()
		fc.Append(f)
	}
	var points []route.Point
	for i, f := range fc.Features {
		s, ok := statusOf(f.Properties["status"])
		if !ok {
			return nil, fmt.Errorf("geojson: feature %d: missing or invalid status", i)
		}
		switch g := f.Geometry.(type) {
		case orb.Point:
			points = append(points, route.Point{Status: s, Coordinates: g})
		case orb.MultiPoint:
			for _, p := range g {
				points = append(points, route.Point{Status: s, Coordinates: p})
			}
		case orb.LineString:
			// route vertices share the feature's status
			for _, p := range g {
				points = append(points, route.Point{Status: s, Coordinates: p})
			}
		}
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("geojson: %w", ErrNoPoints)
	}
	return points, nil
}
