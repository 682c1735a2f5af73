package overlay

import (
	"fmt"

	"routemap/internal/mapview"
	"routemap/internal/route"
)

// RenderPaths registers a source and a line layer per segment, groups
// first, keyed by the segment id.
func RenderPaths(v *mapview.View, plan route.Plan) error {
	for _, s := range plan.Segments() {
		if err := v.AddSource(mapview.Source{ID: s.ID, Line: s.Line}); err != nil {
			return fmt.Errorf("%s %s: %w", s.Kind, s.ID, err)
		}
		err := v.AddLayer(mapview.Layer{
			ID:     s.ID,
			Type:   "line",
			Source: s.ID,
			Paint:  mapview.Paint{Color: s.Color, Width: route.LineWidth},
			Layout: mapview.Layout{Join: route.LineJoin, Cap: route.LineCap},
		})
		if err != nil {
			return fmt.Errorf("%s %s: %w", s.Kind, s.ID, err)
		}
	}
	return nil
}
