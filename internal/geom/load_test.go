package geom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routemap/internal/route"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_GeoJSONFeatureCollection(t *testing.T) {
	p := writeFile(t, "points.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "properties": {"status": 1}, "geometry": {"type": "Point", "coordinates": [37.842193, 50.392841]}},
	    {"type": "Feature", "properties": {"status": "2"}, "geometry": {"type": "MultiPoint", "coordinates": [[38.0, 50.5], [38.1, 50.6]]}}
	  ]
	}`)
	points, bb, err := Load(p)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, route.Point{Status: 1, Coordinates: orb.Point{37.842193, 50.392841}}, points[0])
	assert.Equal(t, route.Status(2), points[2].Status)
	assert.Equal(t, orb.Point{37.842193, 50.392841}, bb.Min)
	assert.Equal(t, orb.Point{38.1, 50.6}, bb.Max)
}

func TestLoad_GeoJSONSingleFeature(t *testing.T) {
	p := writeFile(t, "line.json", `{"type": "Feature", "properties": {"status": 3},
	  "geometry": {"type": "LineString", "coordinates": [[38.2, 50.7], [38.3, 50.8]]}}`)
	points, _, err := Load(p)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, route.Status(3), points[1].Status)
}

func TestLoad_GeoJSONMissingStatus(t *testing.T) {
	p := writeFile(t, "bad.geojson", `{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [1, 2]}}]}`)
	_, _, err := Load(p)
	assert.ErrorContains(t, err, "status")
}

func TestLoad_CSV(t *testing.T) {
	p := writeFile(t, "points.csv", "Status,Latitude,Longitude\n1,50.39,37.84\n4, 51.09, 38.54\nx,y,z\n")
	points, _, err := Load(p)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, route.Point{Status: 4, Coordinates: orb.Point{38.54, 51.09}}, points[1])
}

func TestLoad_CSVErrors(t *testing.T) {
	_, _, err := Load(writeFile(t, "a.csv", "lat,lon\n1,2\n"))
	assert.ErrorContains(t, err, "status column")

	_, _, err = Load(writeFile(t, "b.csv", "status,name\n1,a\n"))
	assert.ErrorContains(t, err, "latitude/longitude")

	_, _, err = Load(writeFile(t, "c.csv", "status,lat,lon\nhigh,1,2\n"))
	assert.ErrorContains(t, err, "invalid status")

	_, _, err = Load(writeFile(t, "d.csv", "status,lat,lon\n"))
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestLoad_KML(t *testing.T) {
	p := writeFile(t, "points.kml", `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <name>a</name>
      <ExtendedData><Data name="status"><value>2</value></Data></ExtendedData>
      <Point><coordinates>38.042193,50.592841,0</coordinates></Point>
    </Placemark>
    <Placemark>
      <name>b</name>
      <ExtendedData><Data name="status"><value>3</value></Data></ExtendedData>
      <Point><coordinates>38.242193,50.792841</coordinates></Point>
    </Placemark>
  </Document>
</kml>`)
	points, _, err := Load(p)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, route.Point{Status: 2, Coordinates: orb.Point{38.042193, 50.592841}}, points[0])
	assert.Equal(t, route.Status(3), points[1].Status)
}

func TestParseWKTLines(t *testing.T) {
	points, err := ParseWKTLines(`
# demo route
1 POINT(37.842193 50.392841)
2 MULTIPOINT((38.0 50.5),(38.1 50.6))
3 LINESTRING(38.2 50.7, 38.3 50.8)
`)
	require.NoError(t, err)
	require.Len(t, points, 5)
	assert.Equal(t, route.Status(1), points[0].Status)
	assert.Equal(t, route.Status(2), points[2].Status)
	assert.Equal(t, orb.Point{38.3, 50.8}, points[4].Coordinates)
}

func TestParseWKTLines_Errors(t *testing.T) {
	_, err := ParseWKTLines("POINT(1 2)")
	assert.Error(t, err)

	_, err = ParseWKTLines("one POINT(1 2)")
	assert.ErrorContains(t, err, "invalid status")

	_, err = ParseWKTLines("1 POLYGON((0 0, 1 0, 1 1, 0 0))")
	assert.ErrorContains(t, err, "unsupported")

	_, err = ParseWKTLines("\n# nothing\n")
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestLoad_WKTFileAndUnsupported(t *testing.T) {
	points, _, err := Load(writeFile(t, "route.wkt", "4 POINT(38.5 51.0)\n"))
	require.NoError(t, err)
	assert.Len(t, points, 1)

	_, _, err = Load(writeFile(t, "route.shp", ""))
	assert.ErrorContains(t, err, "unsupported")
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.GeoJSON"))
	assert.True(t, Supported("b.wkt"))
	assert.False(t, Supported("c.shp"))
}
