// Package overlay wires status points onto a map view: it creates the view,
// places the markers, and renders the grouped path once the view is ready.
package overlay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"routemap/internal/mapview"
	"routemap/internal/route"
)

type Settings struct {
	View    mapview.Options
	Points  []route.Point
	Colors  route.StatusColorMap
	Grouper route.Grouper
	// OnSelect receives the point of a clicked marker.
	OnSelect func(route.Point)
}

type Component struct {
	logger   *zap.Logger
	settings Settings
	view     *mapview.View
	plan     route.Plan
	ready    bool
}

// Mount validates the points against the color map and creates the view.
func Mount(ctx context.Context, s Settings, logger *zap.Logger) (*Component, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if s.Grouper == nil {
		s.Grouper = route.ByKey{}
	}
	if err := route.Validate(s.Points, s.Colors); err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}
	v, err := mapview.New(ctx, s.View, logger.Named("mapview"))
	if err != nil {
		return nil, err
	}
	logger.Info("overlay mounted",
		zap.Int("points", len(s.Points)),
		zap.String("grouping", s.Grouper.Name()))
	return &Component{logger: logger, settings: s, view: v}, nil
}

// Ready handles the view-ready signal: markers first, then the path.
// Later calls are no-ops. A failed call leaves the view empty so it can be
// retried.
func (c *Component) Ready(ctx context.Context) error {
	if c.ready {
		return nil
	}
	if err := c.view.Load(ctx); err != nil {
		return err
	}
	plan, err := route.Build(c.settings.Points, c.settings.Colors, c.settings.Grouper)
	if err != nil {
		return fmt.Errorf("overlay: %w", err)
	}
	if err := PlaceMarkers(c.view, c.settings.Points, c.settings.Colors, c.selected); err != nil {
		c.view.Reset()
		return fmt.Errorf("overlay: markers: %w", err)
	}
	if err := RenderPaths(c.view, plan); err != nil {
		c.view.Reset()
		return fmt.Errorf("overlay: paths: %w", err)
	}
	c.plan = plan
	c.ready = true
	c.logger.Info("overlay rendered",
		zap.Int("markers", len(c.settings.Points)),
		zap.Int("groups", len(plan.Groups)),
		zap.Int("transitions", len(plan.Transitions)))
	return nil
}

func (c *Component) selected(p route.Point) {
	c.logger.Info("point selected",
		zap.Int("status", int(p.Status)),
		zap.Float64("lon", p.Lon()),
		zap.Float64("lat", p.Lat()))
	if c.settings.OnSelect != nil {
		c.settings.OnSelect(p)
	}
}

func (c *Component) View() *mapview.View          { return c.view }
func (c *Component) Plan() route.Plan             { return c.plan }
func (c *Component) Points() []route.Point        { return c.settings.Points }
func (c *Component) Colors() route.StatusColorMap { return c.settings.Colors }
func (c *Component) IsReady() bool                { return c.ready }

// Unmount destroys the view and releases its protocol handlers.
func (c *Component) Unmount() error {
	c.ready = false
	return c.view.Close()
}
