package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/paulmach/orb"
	"github.com/spf13/viper"

	"routemap/internal/geom"
	"routemap/internal/mapview"
	"routemap/internal/route"
)

//go:embed default.yaml
var defaultConfig []byte

// MapConfig describes the map view: tile source, glyphs, style layers
// and the initial camera.
type MapConfig struct {
	TileSource string           `mapstructure:"tile_source"`
	Glyphs     string           `mapstructure:"glyphs"`
	Center     []float64        `mapstructure:"center"` // [lon, lat]
	Zoom       float64          `mapstructure:"zoom"`
	Fit        bool             `mapstructure:"fit"` // fit the camera to the points on start
	Layers     []map[string]any `mapstructure:"layers"`
}

type PointConfig struct {
	Status      int       `mapstructure:"status"`
	Coordinates []float64 `mapstructure:"coordinates"` // [lon, lat]
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// AppConfig holds entire config
type AppConfig struct {
	Map          MapConfig         `mapstructure:"map"`
	StatusColors map[string]string `mapstructure:"status_colors"`
	Grouping     string            `mapstructure:"grouping"`
	Points       []PointConfig     `mapstructure:"points"`
	PointsFile   string            `mapstructure:"points_file"` // overrides Points when set
	Log          LogConfig         `mapstructure:"log"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("routemap")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("grouping", route.GroupingByKey)
	v.SetDefault("map.zoom", 13)
	v.SetDefault("log.level", "info")
	return v
}

// LoadConfig reads path, or the built-in demo config when path is empty,
// applies ROUTEMAP_* environment overrides and validates the result.
func LoadConfig(path string) (*AppConfig, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadConfig is LoadConfig without validation, for callers that override
// fields before validating.
func ReadConfig(path string) (*AppConfig, error) {
	v := newViper()
	if path == "" {
		if err := v.ReadConfig(bytes.NewReader(defaultConfig)); err != nil {
			return nil, fmt.Errorf("config: default: %w", err)
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Watch calls onChange with the re-read config every time the file at path
// is written. The config is not validated; onChange must call Validate
// after applying its overrides. An empty path watches nothing.
func Watch(path string, onChange func(*AppConfig, error)) error {
	if path == "" {
		return nil
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(decode(v))
	})
	v.WatchConfig()
	return nil
}

// Validate checks the config before anything is drawn: camera bounds,
// grouping name, color syntax, and that every point status has a color.
func (c *AppConfig) Validate() error {
	if c.Map.TileSource == "" {
		return errors.New("config: map.tile_source is required")
	}
	if !strings.Contains(c.Map.Glyphs, "{fontstack}") || !strings.Contains(c.Map.Glyphs, "{range}") {
		return fmt.Errorf("config: map.glyphs %q: %w", c.Map.Glyphs, mapview.ErrInvalidGlyphs)
	}
	if len(c.Map.Center) != 2 {
		return fmt.Errorf("config: map.center needs [lon, lat], got %v", c.Map.Center)
	}
	if lon, lat := c.Map.Center[0], c.Map.Center[1]; lon < -180 || lon > 180 || lat < -85.06 || lat > 85.06 {
		return fmt.Errorf("config: map.center %v out of range", c.Map.Center)
	}
	if c.Map.Zoom < mapview.MinZoom || c.Map.Zoom > mapview.MaxZoom {
		return fmt.Errorf("config: map.zoom %v out of range", c.Map.Zoom)
	}
	if _, err := route.GrouperByName(c.Grouping); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	colors, err := c.Colors()
	if err != nil {
		return err
	}
	if c.PointsFile != "" {
		return colors.ValidateColors()
	}
	points, err := c.inlinePoints()
	if err != nil {
		return err
	}
	if err := route.Validate(points, colors); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Colors converts status_colors to a StatusColorMap.
func (c *AppConfig) Colors() (route.StatusColorMap, error) {
	out := make(route.StatusColorMap, len(c.StatusColors))
	for k, col := range c.StatusColors {
		s, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("config: status_colors key %q is not an integer", k)
		}
		out[route.Status(s)] = col
	}
	return out, nil
}

// RoutePoints returns the points from points_file if set, else the inline
// list, validated against the color map.
func (c *AppConfig) RoutePoints() ([]route.Point, error) {
	var points []route.Point
	if c.PointsFile != "" {
		pts, _, err := geom.Load(c.PointsFile)
		if err != nil {
			return nil, fmt.Errorf("config: points_file: %w", err)
		}
		points = pts
	} else {
		pts, err := c.inlinePoints()
		if err != nil {
			return nil, err
		}
		points = pts
	}
	colors, err := c.Colors()
	if err != nil {
		return nil, err
	}
	if err := route.Validate(points, colors); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return points, nil
}

func (c *AppConfig) inlinePoints() ([]route.Point, error) {
	out := make([]route.Point, 0, len(c.Points))
	for i, p := range c.Points {
		if len(p.Coordinates) < 2 {
			return nil, fmt.Errorf("config: points[%d]: coordinates need [lon, lat]", i)
		}
		out = append(out, route.Point{
			Status:      route.Status(p.Status),
			Coordinates: orb.Point{p.Coordinates[0], p.Coordinates[1]},
		})
	}
	return out, nil
}

// Grouper resolves the configured grouping strategy.
func (c *AppConfig) Grouper() route.Grouper {
	g, err := route.GrouperByName(c.Grouping)
	if err != nil {
		return route.ByKey{}
	}
	return g
}

// ViewOptions builds the map view options with the pmtiles handler.
func (c *AppConfig) ViewOptions() mapview.Options {
	return mapview.Options{
		TileSource: c.Map.TileSource,
		Glyphs:     c.Map.Glyphs,
		Layers:     c.Map.Layers,
		Center:     orb.Point{c.Map.Center[0], c.Map.Center[1]},
		Zoom:       c.Map.Zoom,
		Protocols: map[string]mapview.ProtocolHandler{
			mapview.SchemePMTiles: mapview.PMTiles,
		},
	}
}
