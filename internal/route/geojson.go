package route

import (
	"github.com/paulmach/orb/geojson"
)

const (
	LineWidth = 2
	LineJoin  = "round"
	LineCap   = "round"
)

// FeatureCollection exports the plan as LineString features carrying their
// paint and layout as properties.
func (p Plan) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range p.Segments() {
		f := geojson.NewFeature(s.Line)
		f.ID = s.ID
		f.Properties["id"] = s.ID
		f.Properties["kind"] = string(s.Kind)
		f.Properties["line-color"] = s.Color
		f.Properties["line-width"] = LineWidth
		f.Properties["line-join"] = LineJoin
		f.Properties["line-cap"] = LineCap
		fc.Append(f)
	}
	return fc
}

// PointFeatures exports points as Point features with status and color.
func PointFeatures(points []Point, colors StatusColorMap) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, pt := range points {
		f := geojson.NewFeature(pt.Coordinates)
		f.Properties["status"] = int(pt.Status)
		f.Properties["marker-color"] = colors[pt.Status]
		fc.Append(f)
	}
	return fc
}
