// Package mapview is the drawing surface the overlay renders onto: a map
// view with a tile source, glyph template, opaque style layers, and the
// line sources, line layers and markers added at runtime.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

var (
	ErrUnknownProtocol = errors.New("no handler registered for scheme")
	ErrInvalidGlyphs   = errors.New("glyph template needs {fontstack} and {range}")
	ErrDuplicateID     = errors.New("id already exists")
	ErrUnknownSource   = errors.New("unknown source")
	ErrNotLoaded       = errors.New("view not loaded")
	ErrClosed          = errors.New("view closed")
)

type Options struct {
	TileSource string
	Glyphs     string
	Layers     []map[string]any
	Center     orb.Point
	Zoom       float64
	// Protocols are registered on this view only and released by Close.
	Protocols map[string]ProtocolHandler
}

// Source is a named line geometry.
type Source struct {
	ID   string
	Line orb.LineString
}

type Paint struct {
	Color string
	Width float64
}

type Layout struct {
	Join string
	Cap  string
}

// Layer draws a source. Only "line" layers are added at runtime.
type Layer struct {
	ID     string
	Type   string
	Source string
	Paint  Paint
	Layout Layout
}

// Marker is a colored pin with click handlers.
type Marker struct {
	Position orb.Point
	Color    string
	Label    string

	handlers []func()
}

// OnClick registers fn to run when the marker is clicked.
func (m *Marker) OnClick(fn func()) *Marker {
	m.handlers = append(m.handlers, fn)
	return m
}

// Click runs every registered handler in order.
func (m *Marker) Click() {
	for _, fn := range m.handlers {
		fn()
	}
}

type View struct {
	mu sync.Mutex

	logger    *zap.Logger
	opts      Options
	protocols map[string]ProtocolHandler
	tileURL   string

	camera Viewport

	loaded  bool
	closed  bool
	sources map[string]Source
	layers  []Layer
	markers []*Marker
}

// New validates opts, registers the protocol handlers and resolves the
// tile source through the handler for its scheme.
func New(ctx context.Context, opts Options, logger *zap.Logger) (*View, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TileSource == "" {
		return nil, errors.New("mapview: tile source is required")
	}
	if !strings.Contains(opts.Glyphs, "{fontstack}") || !strings.Contains(opts.Glyphs, "{range}") {
		return nil, fmt.Errorf("mapview: %q: %w", opts.Glyphs, ErrInvalidGlyphs)
	}
	v := &View{
		logger:    logger,
		opts:      opts,
		protocols: make(map[string]ProtocolHandler, len(opts.Protocols)),
		sources:   make(map[string]Source),
		camera:    Viewport{Center: opts.Center, Zoom: clampZoom(opts.Zoom)},
	}
	for scheme, h := range opts.Protocols {
		v.protocols[strings.ToLower(scheme)] = h
		logger.Debug("protocol registered", zap.String("scheme", scheme))
	}
	tileURL, err := v.resolve(ctx, opts.TileSource)
	if err != nil {
		v.releaseProtocols()
		return nil, err
	}
	v.tileURL = tileURL
	logger.Info("map view created",
		zap.String("tiles", tileURL),
		zap.Int("style_layers", len(opts.Layers)),
		zap.Float64("lon", opts.Center.Lon()),
		zap.Float64("lat", opts.Center.Lat()),
		zap.Float64("zoom", v.camera.Zoom))
	return v, nil
}

func (v *View) resolve(ctx context.Context, raw string) (string, error) {
	scheme := splitScheme(raw)
	switch scheme {
	case "http", "https", "file":
		if _, err := url.Parse(raw); err != nil {
			return "", fmt.Errorf("mapview: tile source: %w", err)
		}
		return raw, nil
	}
	h, ok := v.protocols[scheme]
	if !ok {
		return "", fmt.Errorf("mapview: %q: %w", scheme, ErrUnknownProtocol)
	}
	return h(ctx, raw)
}

// TileURL is the tile source after protocol resolution.
func (v *View) TileURL() string { return v.tileURL }

// StyleLayers returns the declarative layer list as configured.
func (v *View) StyleLayers() []map[string]any { return v.opts.Layers }

// GlyphURL expands the glyph template.
func (v *View) GlyphURL(fontstack, rng string) string {
	r := strings.NewReplacer("{fontstack}", url.PathEscape(fontstack), "{range}", rng)
	return r.Replace(v.opts.Glyphs)
}

// HasProtocol reports whether scheme is currently registered.
func (v *View) HasProtocol(scheme string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.protocols[strings.ToLower(scheme)]
	return ok
}

// Load signals the view is ready to accept sources, layers and markers.
func (v *View) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	v.loaded = true
	return nil
}

func (v *View) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded && !v.closed
}

func (v *View) ready() error {
	if v.closed {
		return ErrClosed
	}
	if !v.loaded {
		return ErrNotLoaded
	}
	return nil
}

func (v *View) AddSource(s Source) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.ready(); err != nil {
		return err
	}
	if _, ok := v.sources[s.ID]; ok {
		return fmt.Errorf("source %q: %w", s.ID, ErrDuplicateID)
	}
	v.sources[s.ID] = s
	v.logger.Debug("source added", zap.String("id", s.ID), zap.Int("vertices", len(s.Line)))
	return nil
}

func (v *View) AddLayer(l Layer) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.ready(); err != nil {
		return err
	}
	for _, existing := range v.layers {
		if existing.ID == l.ID {
			return fmt.Errorf("layer %q: %w", l.ID, ErrDuplicateID)
		}
	}
	if _, ok := v.sources[l.Source]; !ok {
		return fmt.Errorf("layer %q: source %q: %w", l.ID, l.Source, ErrUnknownSource)
	}
	if l.Type == "" {
		l.Type = "line"
	}
	v.layers = append(v.layers, l)
	v.logger.Debug("layer added", zap.String("id", l.ID), zap.String("color", l.Paint.Color))
	return nil
}

// AddMarker places m. Markers can be added before Load, as pins are DOM
// overlays rather than style content.
func (v *View) AddMarker(m *Marker) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	v.markers = append(v.markers, m)
	return nil
}

// Viewport returns a copy of the current camera.
func (v *View) Viewport() Viewport {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.camera
}

// MoveCamera applies fn to the camera under the view lock.
func (v *View) MoveCamera(fn func(*Viewport)) Viewport {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(&v.camera)
	return v.camera
}

// Sources returns every runtime source sorted by id.
func (v *View) Sources() []Source {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Source, 0, len(v.sources))
	for _, s := range v.sources {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b Source) int { return strings.Compare(a.ID, b.ID) })
	return out
}

func (v *View) Source(id string) (Source, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	s, ok := v.sources[id]
	return s, ok
}

// Layers returns the runtime layers in draw order.
func (v *View) Layers() []Layer {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Layer(nil), v.layers...)
}

func (v *View) Markers() []*Marker {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]*Marker(nil), v.markers...)
}

// Reset removes the runtime sources, layers and markers. The view stays
// loaded and keeps its protocol handlers.
func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sources = map[string]Source{}
	v.layers = nil
	v.markers = nil
}

// Close removes everything added to the view and unregisters its
// protocol handlers. Calling it again is a no-op.
func (v *View) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	v.sources = map[string]Source{}
	v.layers = nil
	v.markers = nil
	v.releaseProtocols()
	v.logger.Info("map view removed")
	return nil
}

func (v *View) releaseProtocols() {
	for scheme := range v.protocols {
		delete(v.protocols, scheme)
		v.logger.Debug("protocol removed", zap.String("scheme", scheme))
	}
}
