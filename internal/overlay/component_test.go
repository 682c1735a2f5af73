package overlay

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routemap/internal/mapview"
	"routemap/internal/route"
)

func demoPoints() []route.Point {
	statuses := []route.Status{1, 1, 2, 2, 3, 3, 4, 4}
	out := make([]route.Point, len(statuses))
	for i, s := range statuses {
		out[i] = route.Point{Status: s, Coordinates: orb.Point{37.842193 + 0.1*float64(i), 50.392841 + 0.1*float64(i)}}
	}
	return out
}

func settings(points []route.Point) Settings {
	return Settings{
		View: mapview.Options{
			TileSource: "pmtiles://http://localhost:8080/belgorodskaya-oblast.pmtiles",
			Glyphs:     "/fonts/{fontstack}/{range}.pbf",
			Center:     orb.Point{36.580090, 50.593219},
			Zoom:       13,
			Protocols:  map[string]mapview.ProtocolHandler{mapview.SchemePMTiles: mapview.PMTiles},
		},
		Points: points,
		Colors: route.DefaultColors(),
	}
}

func layerIDs(v *mapview.View) []string {
	var ids []string
	for _, l := range v.Layers() {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	c, err := Mount(ctx, settings(demoPoints()), nil)
	require.NoError(t, err)
	assert.False(t, c.IsReady())
	assert.Empty(t, c.View().Markers())

	require.NoError(t, c.Ready(ctx))
	assert.True(t, c.IsReady())
	assert.Len(t, c.View().Markers(), 8)
	assert.Equal(t, []string{
		"status1", "status2", "status3", "status4",
		"1-status2", "2-status3", "3-status4",
	}, layerIDs(c.View()))

	for _, l := range c.View().Layers() {
		assert.Equal(t, 2.0, l.Paint.Width)
		assert.Equal(t, "round", l.Layout.Join)
		assert.Equal(t, "round", l.Layout.Cap)
	}
	// second ready signal does not duplicate anything
	require.NoError(t, c.Ready(ctx))
	assert.Len(t, c.View().Layers(), 7)

	require.NoError(t, c.Unmount())
	assert.False(t, c.View().HasProtocol(mapview.SchemePMTiles))
	assert.Empty(t, c.View().Layers())
}

func TestComponent_MarkerColorsAndClick(t *testing.T) {
	ctx := context.Background()
	points := demoPoints()
	var got []route.Point
	s := settings(points)
	s.OnSelect = func(p route.Point) { got = append(got, p) }

	c, err := Mount(ctx, s, nil)
	require.NoError(t, err)
	require.NoError(t, c.Ready(ctx))

	markers := c.View().Markers()
	require.Len(t, markers, len(points))
	for i, m := range markers {
		assert.Equal(t, route.DefaultColors()[points[i].Status], m.Color)
		assert.Equal(t, points[i].Coordinates, m.Position)
	}
	markers[4].Click()
	require.Len(t, got, 1)
	assert.Equal(t, points[4], got[0])
}

func TestComponent_EmptyPoints(t *testing.T) {
	ctx := context.Background()
	c, err := Mount(ctx, settings(nil), nil)
	require.NoError(t, err)
	require.NoError(t, c.Ready(ctx))
	assert.Empty(t, c.View().Layers())
	assert.Empty(t, c.View().Markers())
	assert.Empty(t, c.Plan().Transitions)
}

func TestComponent_UnmappedStatusFailsAtMount(t *testing.T) {
	points := append(demoPoints(), route.Point{Status: 5, Coordinates: orb.Point{38.6, 51.1}})
	_, err := Mount(context.Background(), settings(points), nil)
	assert.ErrorIs(t, err, route.ErrUnmappedStatus)
}

func TestComponent_RemountIsIdempotent(t *testing.T) {
	ctx := context.Background()
	render := func() ([]string, []string) {
		c, err := Mount(ctx, settings(demoPoints()), nil)
		require.NoError(t, err)
		require.NoError(t, c.Ready(ctx))
		defer c.Unmount()
		var colors []string
		for _, l := range c.View().Layers() {
			colors = append(colors, l.Paint.Color)
		}
		return layerIDs(c.View()), colors
	}
	ids1, colors1 := render()
	ids2, colors2 := render()
	assert.Equal(t, ids1, ids2)
	assert.Equal(t, colors1, colors2)
}

func TestComponent_ContiguousGrouping(t *testing.T) {
	ctx := context.Background()
	points := []route.Point{
		{Status: 1, Coordinates: orb.Point{38.0, 50.0}},
		{Status: 2, Coordinates: orb.Point{38.1, 50.1}},
		{Status: 1, Coordinates: orb.Point{38.2, 50.2}},
	}
	s := settings(points)
	s.Grouper = route.Contiguous{}
	c, err := Mount(ctx, s, nil)
	require.NoError(t, err)
	require.NoError(t, c.Ready(ctx))
	assert.Equal(t, []string{"status1", "status2", "status1#2", "1-status2", "2-status1#2"}, layerIDs(c.View()))
}

// sameKey puts every point in its own bucket under one key, so the path
// layers collide.
type sameKey struct{}

func (sameKey) Name() string { return "same" }

func (sameKey) Group(points []route.Point) []route.Bucket {
	out := make([]route.Bucket, 0, len(points))
	for _, p := range points {
		out = append(out, route.Bucket{Key: "dup", Points: []route.Point{p}})
	}
	return out
}

func TestComponent_FailedReadyLeavesViewEmpty(t *testing.T) {
	ctx := context.Background()
	s := settings(demoPoints())
	s.Grouper = sameKey{}
	c, err := Mount(ctx, s, nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		err := c.Ready(ctx)
		assert.ErrorIs(t, err, mapview.ErrDuplicateID)
		assert.False(t, c.IsReady())
		assert.Empty(t, c.View().Markers())
		assert.Empty(t, c.View().Layers())
		assert.Empty(t, c.View().Sources())
	}
}
