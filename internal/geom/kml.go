package geom

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"routemap/internal/route"
)

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlPlacemark struct {
	Name  string `xml:"name"`
	Point *struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"Point"`
	Data []kmlData `xml:"ExtendedData>Data"`
}

type kmlDoc struct {
	Placemarks []kmlPlacemark `xml:"Placemark"`
	Document   struct {
		Placemarks []kmlPlacemark `xml:"Placemark"`
	} `xml:"Document"`
}

// LoadKML extracts Placemark > Point coordinates ("lon,lat[,alt]") with the
// status taken from <ExtendedData><Data name="status">.
func LoadKML(path string) ([]route.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc kmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("kml: %w", err)
	}
	var points []route.Point
	for _, pm := range append(doc.Placemarks, doc.Document.Placemarks...) {
		if pm.Point == nil {
			continue
		}
		s, ok := placemarkStatus(pm)
		if !ok {
			return nil, fmt.Errorf("kml: placemark %q has no status", pm.Name)
		}
		// coordinates may contain multiple tuples separated by spaces
		for _, tuple := range strings.Fields(pm.Point.Coordinates) {
			vals := strings.Split(tuple, ",")
			if len(vals) < 2 {
				continue
			}
			lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
			lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
			if err1 != nil || err2 != nil {
				continue
			}
			points = append(points, route.Point{Status: s, Coordinates: orb.Point{lon, lat}})
		}
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("kml: %w", ErrNoPoints)
	}
	return points, nil
}

func placemarkStatus(pm kmlPlacemark) (route.Status, bool) {
	for _, d := range pm.Data {
		if strings.EqualFold(d.Name, "status") {
			return statusOf(d.Value)
		}
	}
	return 0, false
}
