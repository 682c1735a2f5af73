package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routemap/internal/route"
)

const sampleConfig = `
map:
  tile_source: "pmtiles://http://localhost:8080/region.pmtiles"
  glyphs: "/fonts/{fontstack}/{range}.pbf"
  center: [38.0, 50.7]
  zoom: 9
status_colors:
  "1": "#2bbb00"
  "2": "#ffc932"
points:
  - { status: 1, coordinates: [38.0, 50.6] }
  - { status: 2, coordinates: [38.1, 50.7] }
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadConfig_Default(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "pmtiles://http://localhost:8080/belgorodskaya-oblast.pmtiles", cfg.Map.TileSource)
	assert.Equal(t, []float64{36.580090, 50.593219}, cfg.Map.Center)
	assert.Equal(t, 13.0, cfg.Map.Zoom)
	assert.NotEmpty(t, cfg.Map.Layers)
	assert.Equal(t, route.GroupingByKey, cfg.Grouper().Name())

	colors, err := cfg.Colors()
	require.NoError(t, err)
	assert.Equal(t, route.DefaultColors(), colors)

	points, err := cfg.RoutePoints()
	require.NoError(t, err)
	require.Len(t, points, 8)
	assert.Equal(t, route.Status(1), points[0].Status)
	assert.Equal(t, 38.542193, points[7].Lon())
}

func TestLoadConfig_File(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, 9.0, cfg.Map.Zoom)
	assert.Equal(t, "info", cfg.Log.Level)

	opts := cfg.ViewOptions()
	assert.Equal(t, 38.0, opts.Center.Lon())
	assert.Contains(t, opts.Protocols, "pmtiles")
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("ROUTEMAP_GROUPING", "contiguous")
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, route.GroupingContiguous, cfg.Grouper().Name())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  string
		wantErr string
	}{
		{"unmapped status", sampleConfig + "  - { status: 3, coordinates: [38.2, 50.8] }\n", "status has no color"},
		{"bad grouping", sampleConfig + "grouping: adjacent\n", "unknown grouping"},
		{"bad color", strings.Replace(sampleConfig, `"#2bbb00"`, `"green"`, 1), "invalid color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.mutate))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate_Camera(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	bad := *cfg
	bad.Map.Zoom = 30
	assert.ErrorContains(t, bad.Validate(), "zoom")

	bad = *cfg
	bad.Map.Center = []float64{1}
	assert.ErrorContains(t, bad.Validate(), "center")

	bad = *cfg
	bad.Map.Glyphs = "/fonts/x.pbf"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.StatusColors = map[string]string{"one": "#fff"}
	assert.ErrorContains(t, bad.Validate(), "not an integer")
}

func TestReadConfig_SkipsValidation(t *testing.T) {
	path := writeConfig(t, sampleConfig+"  - { status: 3, coordinates: [38.2, 50.8] }\n")
	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), route.ErrUnmappedStatus)

	_, err = LoadConfig(path)
	assert.ErrorIs(t, err, route.ErrUnmappedStatus)
}

func TestRoutePoints_FromFile(t *testing.T) {
	dir := t.TempDir()
	pointsPath := filepath.Join(dir, "route.csv")
	require.NoError(t, os.WriteFile(pointsPath, []byte("status,lat,lon\n2,50.5,38.0\n1,50.6,38.1\n"), 0o644))

	cfg, err := LoadConfig(writeConfig(t, sampleConfig+"points_file: "+pointsPath+"\n"))
	require.NoError(t, err)
	points, err := cfg.RoutePoints()
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, route.Status(2), points[0].Status)
}

func TestWatch_ReportsChanges(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	changed := make(chan *AppConfig, 4)
	require.NoError(t, Watch(path, func(cfg *AppConfig, err error) {
		if err == nil {
			changed <- cfg
		}
	}))

	require.NoError(t, os.WriteFile(path, []byte(sampleConfig+"grouping: contiguous\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, route.GroupingContiguous, cfg.Grouping)
	case <-time.After(5 * time.Second):
		t.Fatal("no config change observed")
	}
}

func TestWatch_EmptyPath(t *testing.T) {
	assert.NoError(t, Watch("", func(*AppConfig, error) {}))
}
