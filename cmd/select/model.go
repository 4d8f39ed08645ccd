package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/models"
	"github.com/1F47E/roof-area/pkg/render"
)

const (
	minSpan = 0.001 // degrees
	maxSpan = 10.0
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1).
			MarginBottom(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))
)

// model is a rectangle selection moved and resized from the keyboard,
// re-checked against the area limit after every change
type model struct {
	center   models.GeoPoint
	latSpan  float64
	lonSpan  float64
	step     float64 // fraction of the span moved per key press
	maxArea  float64
	policy   geo.AntimeridianPolicy
	printer  *render.Printer
	adm      geo.Admission
	err      error
	quitting bool
}

func newModel(center models.GeoPoint, span, maxArea float64, policy geo.AntimeridianPolicy, color bool) model {
	m := model{
		center:  center,
		latSpan: span,
		lonSpan: span,
		step:    0.25,
		maxArea: maxArea,
		policy:  policy,
		printer: render.NewPrinterWithColor(io.Discard, color),
	}
	m.recompute()
	return m
}

// box returns the selection edges, longitudes wrapped into [-180, 180]
func (m model) box() models.BoundingBox {
	return models.BoundingBox{
		North: math.Min(m.center.Lat+m.latSpan/2, 90),
		South: math.Max(m.center.Lat-m.latSpan/2, -90),
		East:  wrapLon(m.center.Lon + m.lonSpan/2),
		West:  wrapLon(m.center.Lon - m.lonSpan/2),
	}
}

func (m *model) recompute() {
	calc := geo.NewCalculator(geo.Options{Antimeridian: m.policy})
	m.adm, m.err = calc.Admit(geo.Rectangle{Box: m.box()}, m.maxArea)
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		m.center.Lat = math.Min(m.center.Lat+m.latSpan*m.step, 90-m.latSpan/2)
	case "down", "j":
		m.center.Lat = math.Max(m.center.Lat-m.latSpan*m.step, -90+m.latSpan/2)
	case "right", "l":
		m.center.Lon = wrapLon(m.center.Lon + m.lonSpan*m.step)
	case "left", "h":
		m.center.Lon = wrapLon(m.center.Lon - m.lonSpan*m.step)

	case "shift+up":
		m.latSpan = clampSpan(m.latSpan * 1.25)
	case "shift+down":
		m.latSpan = clampSpan(m.latSpan / 1.25)
	case "shift+right":
		m.lonSpan = clampSpan(m.lonSpan * 1.25)
	case "shift+left":
		m.lonSpan = clampSpan(m.lonSpan / 1.25)
	case "+", "=":
		m.latSpan = clampSpan(m.latSpan * 1.25)
		m.lonSpan = clampSpan(m.lonSpan * 1.25)
	case "-", "_":
		m.latSpan = clampSpan(m.latSpan / 1.25)
		m.lonSpan = clampSpan(m.lonSpan / 1.25)

	case "a":
		if m.policy == geo.AntimeridianReject {
			m.policy = geo.AntimeridianNormalize
		} else {
			m.policy = geo.AntimeridianReject
		}

	default:
		return m, nil
	}

	m.center.Lat = math.Max(math.Min(m.center.Lat, 90-m.latSpan/2), -90+m.latSpan/2)
	m.recompute()
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Area selection"))
	b.WriteString("\n")

	box := m.box()
	fmt.Fprintf(&b, "N %9.5f   S %9.5f\nW %9.5f   E %9.5f\n", box.North, box.South, box.West, box.East)
	fmt.Fprintf(&b, "Antimeridian: %s\n\n", m.policy)

	if m.err != nil {
		b.WriteString(errorStyle.Render("✗ " + m.err.Error()))
		b.WriteString("\n")
	} else {
		b.WriteString(m.printer.Admission(m.adm))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("arrows move • shift+arrows or +/- resize • a antimeridian • q quit"))
	b.WriteString("\n")
	return b.String()
}

func clampSpan(s float64) float64 {
	return math.Max(minSpan, math.Min(s, maxSpan))
}

func wrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
