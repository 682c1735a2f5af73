package overlay

import (
	"routemap/internal/mapview"
	"routemap/internal/route"
)

// PlaceMarkers adds one marker per point, colored by status. Clicking a
// marker reports its point to onSelect.
func PlaceMarkers(v *mapview.View, points []route.Point, colors route.StatusColorMap, onSelect func(route.Point)) error {
	for _, p := range points {
		p := p
		m := &mapview.Marker{
			Position: p.Coordinates,
			Color:    colors[p.Status],
			Label:    route.GroupKey(p.Status),
		}
		if onSelect != nil {
			m.OnClick(func() { onSelect(p) })
		}
		if err := v.AddMarker(m); err != nil {
			return err
		}
	}
	return nil
}
