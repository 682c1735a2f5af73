package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"routemap/internal/geom"
	"routemap/internal/overlay"
	"routemap/internal/route"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !geom.Supported(name) {
			continue
		}
		items = append(items, fileItem{title: name, desc: filepath.Ext(name), path: filepath.Join(m.cwd, name)})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.items = items
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no point files in current directory"
	}
}

// loadPath replaces the points with the file's and remounts the overlay.
func (m *Model) loadPath(p string) tea.Cmd {
	points, _, err := geom.Load(p)
	if err != nil {
		m.status = "load error: " + err.Error()
		return nil
	}
	cmd := m.replacePoints(points, filepath.Base(p))
	if cmd != nil {
		m.source = p
	}
	return cmd
}

// replacePoints remounts with points on a fresh view. The current overlay
// stays up when the points do not validate.
func (m *Model) replacePoints(points []route.Point, label string) tea.Cmd {
	s := m.settings
	s.Points = points
	if err := route.Validate(points, s.Colors); err != nil {
		m.status = "invalid points: " + err.Error()
		return nil
	}
	if cmd := m.remount(s); cmd == nil {
		return nil
	}
	m.fitPending = true
	m.status = fmt.Sprintf("loaded: %s  points=%d", label, len(points))
	return viewReady
}

// remount unmounts the current overlay and mounts s in its place.
func (m *Model) remount(s overlay.Settings) tea.Cmd {
	next, err := overlay.Mount(m.ctx, s, m.logger.Named("overlay"))
	if err != nil {
		m.status = "mount error: " + err.Error()
		return nil
	}
	if err := m.comp.Unmount(); err != nil {
		m.logger.Warn("unmount failed", zap.Error(err))
	}
	m.comp = next
	m.settings = s
	m.inspectPopup = ""
	m.hovering = false
	return viewReady
}
