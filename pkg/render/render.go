// Package render formats calculator output for the terminal.
package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/1F47E/roof-area/pkg/geo"
	"github.com/1F47E/roof-area/pkg/models"
)

const barWidth = 40

// ColorEnabled reports whether w is a terminal that should get colours.
// NO_COLOR disables them regardless.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer writes styled lines to w
type Printer struct {
	w     io.Writer
	color bool

	title    lipgloss.Style
	subtitle lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
	info     lipgloss.Style
	dim      lipgloss.Style
	stat     lipgloss.Style
	box      lipgloss.Style
	alertBox lipgloss.Style
}

// NewPrinter creates a printer, enabling colours when w is a terminal
func NewPrinter(w io.Writer) *Printer {
	return NewPrinterWithColor(w, ColorEnabled(w))
}

// NewPrinterWithColor creates a printer with colours forced on or off
func NewPrinterWithColor(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.TrueColor)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Printer{
		w:     w,
		color: color,
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			Background(lipgloss.Color("#282A36")).
			Padding(0, 1),
		subtitle: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD")),
		success: r.NewStyle().
			Foreground(lipgloss.Color("#50FA7B")),
		failure: r.NewStyle().
			Foreground(lipgloss.Color("#FF5555")),
		info: r.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C")),
		dim: r.NewStyle().
			Foreground(lipgloss.Color("#6272A4")),
		stat: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C")),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9")).
			Padding(0, 1),
		alertBox: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF5555")).
			Padding(0, 1),
	}
}

// Title prints a bold heading
func (p *Printer) Title(title string) {
	fmt.Fprintln(p.w, p.title.Render(title))
}

// Subtitle prints a section heading
func (p *Printer) Subtitle(subtitle string) {
	fmt.Fprintln(p.w, p.subtitle.Render(subtitle))
}

// Success prints a check-marked line
func (p *Printer) Success(message string) {
	fmt.Fprintln(p.w, p.success.Render("✓ "+message))
}

// Error prints a cross-marked line in the alert color
func (p *Printer) Error(message string) {
	fmt.Fprintln(p.w, p.failure.Render("✗ "+message))
}

// Info prints a bulleted note
func (p *Printer) Info(message string) {
	fmt.Fprintln(p.w, p.info.Render("• "+message))
}

// Stat prints an indented label: value line
func (p *Printer) Stat(label string, value any) {
	fmt.Fprintf(p.w, "  %s: %s\n", label, p.stat.Render(fmt.Sprint(value)))
}

// Block writes pre-rendered output followed by a newline
func (p *Printer) Block(s string) {
	fmt.Fprintln(p.w, s)
}

func (p *Printer) bar(width int) progress.Model {
	opts := []progress.Option{progress.WithWidth(width), progress.WithoutPercentage()}
	if p.color {
		opts = append(opts, progress.WithDefaultGradient())
	} else {
		opts = append(opts, progress.WithColorProfile(termenv.Ascii))
	}
	return progress.New(opts...)
}

// Histogram renders one bar per bucket, scaled to the fullest bucket
func (p *Printer) Histogram(buckets []models.AreaBucket) string {
	labelWidth, maxCount := 0, 0
	for _, b := range buckets {
		labelWidth = max(labelWidth, lipgloss.Width(b.Label))
		maxCount = max(maxCount, b.Count)
	}

	bar := p.bar(barWidth)
	var sb strings.Builder
	for i, b := range buckets {
		pct := 0.0
		if maxCount > 0 {
			pct = float64(b.Count) / float64(maxCount)
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%-*s %s %s", labelWidth, b.Label, bar.ViewAs(pct), p.stat.Render(fmt.Sprint(b.Count)))
	}
	return sb.String()
}

// Gauge renders the share of the limit used by areaSqKm, capped at full
func (p *Printer) Gauge(areaSqKm, maxAreaSqKm float64) string {
	pct := 1.0
	if maxAreaSqKm > 0 {
		pct = math.Min(areaSqKm/maxAreaSqKm, 1)
	}
	return p.bar(barWidth).ViewAs(pct)
}

// Admission renders the selection panel: area, limit, gauge and verdict
func (p *Printer) Admission(adm geo.Admission) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Area:  %s\n", p.stat.Render(fmt.Sprintf("%.2f km²", adm.AreaSqKm)))
	fmt.Fprintf(&sb, "Limit: %s\n", p.stat.Render(fmt.Sprintf("%g km²", adm.MaxAreaSqKm)))
	sb.WriteString(p.Gauge(adm.AreaSqKm, adm.MaxAreaSqKm))
	sb.WriteString("\n\n")

	if adm.Exceeded {
		sb.WriteString(p.failure.Render(adm.Message()))
		return p.alertBox.Render(sb.String())
	}
	sb.WriteString(p.success.Render("Selection accepted"))
	return p.box.Render(sb.String())
}

// Dim renders s in the muted style
func (p *Printer) Dim(s string) string {
	return p.dim.Render(s)
}
