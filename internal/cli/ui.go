package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/componentscope/pkg/analysis"
	"github.com/matzehuels/componentscope/pkg/hierarchy/transform"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// maxListed caps how many component names a complexity row spells out.
const maxListed = 4

// =============================================================================
// Printer
// =============================================================================

// printer writes styled, human-readable command output. Commands print to
// cmd.OutOrStdout(); the spinner prints to stderr.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) line(s string) {
	fmt.Fprintln(p.w, s)
}

func (p *printer) success(format string, args ...any) {
	p.line(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func (p *printer) error(format string, args ...any) {
	p.line(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func (p *printer) warning(format string, args ...any) {
	p.line(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (p *printer) info(format string, args ...any) {
	p.line(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// detail prints an indented, muted line.
func (p *printer) detail(format string, args ...any) {
	p.line("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints a written output path.
func (p *printer) file(path string) {
	p.line("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func (p *printer) keyValue(key, value string) {
	p.line(styleKey.Render(key) + " " + StyleValue.Render(value))
}

func (p *printer) nextStep(description, cmd string) {
	p.line(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func (p *printer) newline() {
	fmt.Fprintln(p.w)
}

// json writes v as indented JSON, unstyled, for scripting.
func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// Analysis Output
// =============================================================================

// summary prints the component and cycle counts on a single line.
func (p *printer) summary(components, cycles int, cached bool) {
	parts := []string{fmt.Sprintf("%d components", components)}
	if cycles > 0 {
		parts = append(parts, fmt.Sprintf("%d cycles", cycles))
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	parts = append(parts, statusStyle.Render(status))

	sep := StyleDim.Render(" · ")
	for i := range parts[:len(parts)-1] {
		parts[i] = StyleDim.Render(parts[i])
	}
	p.line("  " + strings.Join(parts, sep))
}

// estimate prints the review time estimate.
func (p *printer) estimate(e analysis.TimeEstimate) {
	p.keyValue("Review time", StyleNumber.Render(formatEstimate(e)))
}

// complexity prints one row per bucket: atomic first, then by ascending
// child count.
func (p *printer) complexity(r analysis.ComplexityReport) {
	if n := len(r.AtomicComponents); n > 0 {
		names := make([]string, n)
		for i, c := range r.AtomicComponents {
			names[i] = c.Name
		}
		p.keyValue("Atomic", StyleNumber.Render(fmt.Sprint(n))+" "+StyleDim.Render(listNames(names)))
	}
	for _, g := range r.ComponentsByComplexity {
		names := make([]string, len(g.Components))
		for i, c := range g.Components {
			names[i] = c.Name
		}
		key := fmt.Sprintf("%d children", g.ChildrenCount)
		if g.ChildrenCount == 1 {
			key = "1 child"
		}
		p.keyValue(key, StyleNumber.Render(fmt.Sprint(len(names)))+" "+StyleDim.Render(listNames(names)))
	}
}

// cycles warns once per group of components that contain each other.
func (p *printer) cycles(cycles []transform.Cycle) {
	for _, c := range cycles {
		names := append(append([]string(nil), c.Names...), c.Names[0])
		p.warning("Components contain each other: %s", strings.Join(names, " "+iconArrow+" "))
	}
}

func formatEstimate(e analysis.TimeEstimate) string {
	return fmt.Sprintf("%dh %02dm", e.Hours, e.Minutes)
}

// listNames joins up to maxListed names and counts the rest.
func listNames(names []string) string {
	if len(names) <= maxListed {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s, +%d more", strings.Join(names[:maxListed], ", "), len(names)-maxListed)
}
