package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"routemap/internal/config"
	"routemap/internal/overlay"
	"routemap/internal/route"
	"routemap/internal/tui"
)

var (
	configPath string
	grouping   string
	exportPath string
	logFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "routemap [points-file]",
	Short: "Status route viewer",
	Long: `routemap draws a route of status points on a terminal map.

Points are colored by status, grouped into paths per status group and joined
by transition segments. Without a config file the built-in demo route is shown.
A points file (.geojson, .json, .csv, .kml, .wkt) replaces the configured points.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "routemap:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default: built-in demo)")
	rootCmd.Flags().StringVarP(&grouping, "grouping", "g", "", "grouping strategy: key or contiguous")
	rootCmd.Flags().StringVarP(&exportPath, "export", "e", "", "write the route as GeoJSON to this file (- for stdout) and exit")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func run(cmd *cobra.Command, args []string) error {
	// A missing .env is fine.
	_ = godotenv.Load()

	pointsFile := ""
	if len(args) == 1 {
		pointsFile = args[0]
	}
	cfg, err := loadConfig(pointsFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	settings, err := settingsFrom(cfg)
	if err != nil {
		return err
	}
	if exportPath != "" {
		return export(settings, exportPath)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	m, err := tui.New(ctx, tui.Options{
		Settings: settings,
		Fit:      cfg.Map.Fit || pointsFile != "",
		Logger:   logger,
		Source:   pointsFile,
	})
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	err = config.Watch(configPath, func(next *config.AppConfig, err error) {
		if err != nil {
			p.Send(tui.ConfigReloadedMsg{Err: err})
			return
		}
		applyFlags(next, pointsFile)
		if err := next.Validate(); err != nil {
			p.Send(tui.ConfigReloadedMsg{Err: err})
			return
		}
		s, err := settingsFrom(next)
		logger.Info("config changed", zap.String("path", configPath), zap.Error(err))
		p.Send(tui.ConfigReloadedMsg{Settings: s, Fit: next.Map.Fit, Err: err})
	})
	if err != nil {
		logger.Warn("config watch disabled", zap.Error(err))
	}

	if _, err := p.Run(); err != nil {
		logger.Error("program exited", zap.Error(err))
		return err
	}
	return nil
}

// loadConfig reads the config and applies the command line overrides.
func loadConfig(pointsFile string) (*config.AppConfig, error) {
	cfg, err := config.ReadConfig(configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, pointsFile)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.AppConfig, pointsFile string) {
	if pointsFile != "" {
		cfg.PointsFile = pointsFile
	}
	if grouping != "" {
		cfg.Grouping = grouping
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
}

func settingsFrom(cfg *config.AppConfig) (overlay.Settings, error) {
	colors, err := cfg.Colors()
	if err != nil {
		return overlay.Settings{}, err
	}
	points, err := cfg.RoutePoints()
	if err != nil {
		return overlay.Settings{}, err
	}
	return overlay.Settings{
		View:    cfg.ViewOptions(),
		Points:  points,
		Colors:  colors,
		Grouper: cfg.Grouper(),
	}, nil
}

// newLogger logs JSON to the configured file. The terminal belongs to the
// TUI, so no file means no logs.
func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	if lc.File == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{lc.File}
	zc.ErrorOutputPaths = []string{lc.File}
	return zc.Build()
}

// export writes the grouped route and the point markers as one GeoJSON
// feature collection.
func export(s overlay.Settings, path string) error {
	plan, err := route.Build(s.Points, s.Colors, s.Grouper)
	if err != nil {
		return err
	}
	fc := plan.FeatureCollection()
	fc.Features = append(fc.Features, route.PointFeatures(s.Points, s.Colors).Features...)
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
