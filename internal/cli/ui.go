package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen = lipgloss.Color("35")  // success
	colorWhite = lipgloss.Color("255") // values
	colorGray  = lipgloss.Color("245") // secondary text
	colorDim   = lipgloss.Color("240") // muted text
)

var (
	styleDim         = lipgloss.NewStyle().Foreground(colorDim)
	styleValue       = lipgloss.NewStyle().Foreground(colorWhite)
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconInfo    = "›"
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+styleDim.Render(fmt.Sprintf(format, args...)))
}

// printStats prints package and version counts on one line.
func printStats(w io.Writer, packages, versions int) {
	sep := styleDim.Render(" · ")
	fmt.Fprintln(w, "  "+
		styleValue.Render(fmt.Sprintf("%d packages", packages))+sep+
		styleValue.Render(fmt.Sprintf("%d versions", versions)))
}
