package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/tidytray/pkg/tidytray/types"
)

// Color constants using the ANSI 256-color palette.
const (
	ColorPrimary = lipgloss.Color("39")
	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("214")
	ColorDanger  = lipgloss.Color("196")
	ColorMuted   = lipgloss.Color("245")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	labelStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	valueStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)
)

// PrettyFormatter writes styled, human-readable output for a terminal.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Report) error {
	var sections []string

	if r.System != nil {
		sections = append(sections, f.formatSystem(r.System.Platform, r.System.UsedMemoryKB, r.System.TotalMemoryKB))
	}
	if r.Disks != nil {
		sections = append(sections, f.formatDisks(r))
	}
	if r.Temperatures != nil {
		sections = append(sections, f.formatTemperatures(r))
	}

	w.WriteString(strings.Join(sections, "\n"))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) formatSystem(platform string, used, total uint64) string {
	lines := []string{
		labelStyle.Render("Platform: ") + valueStyle.Render(platform),
		labelStyle.Render("Memory:   ") + valueStyle.Render(types.FormatKB(used)) +
			mutedStyle.Render(" used of "+types.FormatKB(total)),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (f *PrettyFormatter) formatDisks(r *Report) string {
	if len(r.Disks) == 0 {
		return mutedStyle.Render("  No disks found")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s\n", headerStyle.Render("DISKS")))
	for _, d := range r.Disks {
		pct := d.UsedPercent()
		sb.WriteString(fmt.Sprintf("  %-24s %s  %s\n",
			d.MountPoint,
			usageStyle(pct).Render(fmt.Sprintf("%5.1f%%", pct)),
			mutedStyle.Render(types.FormatSize(d.Free)+" free of "+types.FormatSize(d.Total)),
		))
	}
	return sb.String()
}

func (f *PrettyFormatter) formatTemperatures(r *Report) string {
	if len(r.Temperatures) == 0 {
		return mutedStyle.Render("  No temperature sensors")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s\n", headerStyle.Render("TEMPERATURES")))
	for _, t := range r.Temperatures {
		sb.WriteString(fmt.Sprintf("  %-32s %s\n", t.Label, valueStyle.Render(fmt.Sprintf("%.1f°C", t.Celsius))))
	}
	return sb.String()
}

func usageStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 90:
		return lipgloss.NewStyle().Foreground(ColorDanger)
	case pct >= 75:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	default:
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	}
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
