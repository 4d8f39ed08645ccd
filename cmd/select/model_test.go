package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/models"
)

func press(t *testing.T, m model, keys ...tea.KeyMsg) model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMoveKeepsSize(t *testing.T) {
	m := newModel(models.GeoPoint{Lat: 38.72, Lon: -9.14}, 0.02, 20, geo.AntimeridianReject, false)
	require.NoError(t, m.err)
	before := m.adm.AreaSqKm

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.InDelta(t, -9.135, m.center.Lon, 1e-9)
	assert.InDelta(t, before, m.adm.AreaSqKm, 1e-9, "east-west move keeps the area")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.InDelta(t, 38.725, m.center.Lat, 1e-9)
	assert.Less(t, m.adm.AreaSqKm, before, "boxes shrink moving poleward")
}

func TestResizeTripsLimit(t *testing.T) {
	m := newModel(models.GeoPoint{Lat: 38.72, Lon: -9.14}, 0.02, 5, geo.AntimeridianReject, false)
	require.False(t, m.adm.Exceeded)

	m = press(t, m, runes("+"))
	assert.InDelta(t, 0.025, m.latSpan, 1e-12)
	assert.True(t, m.adm.Exceeded)
	assert.Contains(t, m.View(), "exceeds the maximum allowed (5 km²)")

	m = press(t, m, runes("-"))
	assert.False(t, m.adm.Exceeded)
	assert.Contains(t, m.View(), "Selection accepted")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftRight})
	assert.InDelta(t, 0.025, m.lonSpan, 1e-12)
	assert.InDelta(t, 0.02, m.latSpan, 1e-12)
}

func TestAntimeridianToggle(t *testing.T) {
	m := newModel(models.GeoPoint{Lat: 0, Lon: 179.995}, 0.02, 20, geo.AntimeridianReject, false)
	assert.ErrorIs(t, m.err, geo.ErrAntimeridian)
	assert.Contains(t, m.View(), "✗")

	m = press(t, m, runes("a"))
	require.NoError(t, m.err)
	assert.Equal(t, geo.AntimeridianNormalize, m.policy)
	assert.InDelta(t, 4.94, m.adm.AreaSqKm, 0.01)
}

func TestQuit(t *testing.T) {
	m := newModel(models.GeoPoint{Lat: 38.72, Lon: -9.14}, 0.02, 20, geo.AntimeridianReject, false)
	next, cmd := m.Update(runes("q"))
	assert.NotNil(t, cmd)
	assert.Empty(t, next.View())
}
