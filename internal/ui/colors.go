package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/acx/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// Palette holds the styles for titles, outcome markers, help text and the summary box.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	box   lipgloss.Style
}

// NewPalette builds a palette from hex colors for titles, success, errors, warnings and help.
func NewPalette(title, success, failure, warning, muted string) *Palette {
	return &Palette{
		title: NewBold(title).MarginBottom(1),
		ok:    NewBold(success),
		err:   NewBold(failure),
		warn:  NewStyle(warning),
		help:  NewEm(muted),
		box:   NewBox(title),
	}
}

// Marker returns the glyph for an outcome status, styled by severity.
func (p *Palette) Marker(status models.Status) string {
	switch status {
	case models.StatusSuccess, models.StatusWouldMigrate:
		return p.ok.Render("✓")
	case models.StatusSkipped:
		return p.warn.Render("⏭")
	default:
		return p.err.Render("✗")
	}
}

// Mode labels a run mode: warning colors for dry runs, error colors for production writes.
func (p *Palette) Mode(dryRun bool) string {
	if dryRun {
		return p.warn.Render("DRY RUN (nothing will be written)")
	}
	return p.err.Render("PRODUCTION (accounts will be created)")
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// NewBox is a rounded, padded frame used for run summaries.
func NewBox(border string) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1)
}
