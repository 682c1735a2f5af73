package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routemap/internal/config"
	"routemap/internal/route"
)

func TestExport_DemoRoute(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	s, err := settingsFrom(cfg)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "route.geojson")
	require.NoError(t, export(s, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	// 4 groups + 3 transitions + 8 markers
	require.Len(t, fc.Features, 15)
	assert.Equal(t, "status1", fc.Features[0].Properties["id"])
	assert.Equal(t, "1-status2", fc.Features[4].Properties["id"])
}

func TestLoadConfig_PointsFileReplacesInlinePoints(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
map:
  tile_source: "pmtiles://http://localhost:8080/region.pmtiles"
  glyphs: "/fonts/{fontstack}/{range}.pbf"
  center: [38.0, 50.7]
  zoom: 9
status_colors:
  "1": "#2bbb00"
points:
  - { status: 5, coordinates: [38.0, 50.6] }
`), 0o644))
	pointsPath := filepath.Join(dir, "route.wkt")
	require.NoError(t, os.WriteFile(pointsPath, []byte("1 POINT(37.8 50.3)\n"), 0o644))

	configPath = cfgPath
	t.Cleanup(func() { configPath = "" })

	_, err := loadConfig("")
	assert.ErrorIs(t, err, route.ErrUnmappedStatus)

	cfg, err := loadConfig(pointsPath)
	require.NoError(t, err)
	s, err := settingsFrom(cfg)
	require.NoError(t, err)
	require.Len(t, s.Points, 1)
	assert.Equal(t, route.Status(1), s.Points[0].Status)
}

func TestApplyFlags(t *testing.T) {
	t.Cleanup(func() { grouping, logFile, logLevel = "", "", "" })
	grouping, logFile, logLevel = route.GroupingContiguous, "/tmp/routemap.log", "debug"

	cfg := &config.AppConfig{}
	applyFlags(cfg, "points.csv")
	assert.Equal(t, "points.csv", cfg.PointsFile)
	assert.Equal(t, route.GroupingContiguous, cfg.Grouping)
	assert.Equal(t, "/tmp/routemap.log", cfg.Log.File)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger(config.LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = newLogger(config.LogConfig{File: filepath.Join(t.TempDir(), "x.log"), Level: "loud"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "routemap.log")
	l, err = newLogger(config.LogConfig{File: path, Level: "info"})
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Sync())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
