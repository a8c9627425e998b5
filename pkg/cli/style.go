package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Pass    lipgloss.Color
	Fail    lipgloss.Color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Pass:    lipgloss.Color("#3fb950"),
	Fail:    lipgloss.Color("#f85149"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Label  lipgloss.Style
	Border lipgloss.Style
	Pass   lipgloss.Style
	Fail   lipgloss.Style
	Dim    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Pass:   lipgloss.NewStyle().Bold(true).Foreground(t.Pass),
		Fail:   lipgloss.NewStyle().Bold(true).Foreground(t.Fail),
		Dim:    lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Verdict is the terminal view of one evaluation.
type Verdict struct {
	Word      string
	Tier      string
	Status    string
	Passed    bool
	Points    int
	Cost      float64
	Threshold float64
	Message   string
}

// Render returns a one-line summary such as
// "PASS hello [A] cost 84.12 < 130  +3".
func (v Verdict) Render(s Styles) string {
	var b strings.Builder
	switch {
	case v.Status != "graded":
		b.WriteString(s.Fail.Render(strings.ToUpper(v.Status)))
	case v.Passed:
		b.WriteString(s.Pass.Render("PASS"))
	default:
		b.WriteString(s.Fail.Render("FAIL"))
	}
	b.WriteString(" ")
	b.WriteString(s.Label.Render(v.Word))
	if v.Tier != "" {
		b.WriteString(s.Dim.Render(" [" + v.Tier + "]"))
	}
	if v.Status != "graded" {
		if v.Message != "" {
			b.WriteString(" " + s.Dim.Render(v.Message))
		}
		return b.String()
	}
	op := ">="
	if v.Passed {
		op = "<"
	}
	fmt.Fprintf(&b, " cost %.2f %s %g  %s", v.Cost, op, v.Threshold, s.Dim.Render(fmt.Sprintf("+%d", v.Points)))
	return b.String()
}
