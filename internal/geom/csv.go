package geom

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"routemap/internal/route"
)

// LoadCSV reads a CSV with status and latitude/longitude columns.
// Column detection: status|state|severity, lat|latitude|y and
// lon|lng|long|longitude|x (case-insensitive).
func LoadCSV(path string) ([]route.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	recs, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return parseCSVRecords(recs)
}

func parseCSVRecords(recs [][]string) ([]route.Point, error) {
	if len(recs) == 0 {
		return nil, errors.New("empty csv")
	}
	idxStatus, idxLat, idxLon := -1, -1, -1
	for i, h := range recs[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "status", "state", "severity":
			if idxStatus == -1 {
				idxStatus = i
			}
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		}
	}
	if idxLat == -1 || idxLon == -1 {
		return nil, errors.New("csv: latitude/longitude columns not found")
	}
	if idxStatus == -1 {
		return nil, errors.New("csv: status column not found")
	}
	var points []route.Point
	for n, row := range recs[1:] {
		if idxLon >= len(row) || idxLat >= len(row) || idxStatus >= len(row) {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		s, err := strconv.Atoi(strings.TrimSpace(row[idxStatus]))
		if err != nil {
			return nil, fmt.Errorf("csv: row %d: invalid status %q", n+2, row[idxStatus])
		}
		points = append(points, route.Point{Status: route.Status(s), Coordinates: orb.Point{lon, lat}})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("csv: %w", ErrNoPoints)
	}
	return points, nil
}
