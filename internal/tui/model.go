package tui

import (
	"context"
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"routemap/internal/overlay"
	"routemap/internal/route"
)

// Options configure the viewer.
type Options struct {
	Settings overlay.Settings
	// Fit zooms to the points once the view is ready.
	Fit    bool
	Logger *zap.Logger
	// Source names where the points came from, shown by inspect.
	Source string
}

// selection is shared between model copies so marker click handlers can
// hand the point back to Update.
type selection struct {
	point *route.Point
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	status string

	ctx    context.Context
	logger *zap.Logger

	// Overlay
	settings   overlay.Settings
	comp       *overlay.Component
	sel        *selection
	source     string
	fitPending bool

	// File explorer
	cwd   string
	l     list.Model
	items []list.Item

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// layer visibility
	showMarkers bool
	showPaths   bool

	// inspect popup
	inspectPopup string

	// hover state
	hovering    bool
	hoverMicX   int
	hoverMicY   int
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64

	// points table
	showAttrs bool
	tbl       table.Model
}

// New mounts the overlay and builds the model. The overlay renders when
// Init's view-ready message arrives.
func New(ctx context.Context, opts Options) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := Model{
		helpVisible: true,
		status:      "routemap ready",
		ctx:         ctx,
		logger:      logger,
		sel:         &selection{},
		source:      opts.Source,
		fitPending:  opts.Fit,
		showMarkers: true,
		showPaths:   true,
	}
	m.settings = m.withSelection(opts.Settings)
	comp, err := overlay.Mount(ctx, m.settings, logger.Named("overlay"))
	if err != nil {
		return Model{}, err
	}
	m.comp = comp
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Point files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste points, one \"STATUS WKT\" per line, e.g. 2 POINT(38.04 50.59). Enter to render; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m, nil
}

// withSelection chains the model's click capture in front of the host's
// OnSelect callback.
func (m Model) withSelection(s overlay.Settings) overlay.Settings {
	host := s.OnSelect
	sel := m.sel
	s.OnSelect = func(p route.Point) {
		sel.point = &p
		if host != nil {
			host(p)
		}
	}
	return s
}

// viewReadyMsg is the map's load signal.
type viewReadyMsg struct{}

func viewReady() tea.Msg { return viewReadyMsg{} }

// ConfigReloadedMsg carries new overlay settings after a config change.
type ConfigReloadedMsg struct {
	Settings overlay.Settings
	Fit      bool
	Err      error
}

func (m Model) Init() tea.Cmd { return viewReady }

// Component exposes the mounted overlay.
func (m Model) Component() *overlay.Component { return m.comp }
