package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cardgraph/pkg/document"
)

// statusOut receives status lines so stdout stays clean for artifacts.
var statusOut io.Writer = os.Stderr

// writer returns the destination for command output.
func (c *CLI) writer() io.Writer {
	if c.out != nil {
		return c.out
	}
	return os.Stdout
}

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
	colorBright = lipgloss.Color("255")
)

// Styles shared by the status lines and the preview.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue     = lipgloss.NewStyle().Foreground(colorBright)

	styleHidden  = lipgloss.NewStyle().Foreground(colorFaint).Strikethrough(true)
	styleSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleLabel   = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
)

const iconCursor = "▸"

// mark is the leading glyph of a status line.
type mark struct {
	glyph string
	style lipgloss.Style
	tint  bool // render the message in the mark's colour too
}

var (
	markOK   = mark{glyph: "✓", style: lipgloss.NewStyle().Foreground(colorOK)}
	markFail = mark{glyph: "✗", style: lipgloss.NewStyle().Foreground(colorFail)}
	markWarn = mark{glyph: "!", style: lipgloss.NewStyle().Foreground(colorWarn), tint: true}
	markInfo = mark{glyph: "›", style: lipgloss.NewStyle().Foreground(colorMuted)}
)

func (m mark) String() string { return m.style.Render(m.glyph) }

// status prints one marked line.
func status(m mark, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if m.tint {
		msg = m.style.Render(msg)
	}
	fmt.Fprintln(statusOut, m.String()+" "+msg)
}

// detail prints an indented, muted line under a status line.
func detail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// wrote reports a file written by a command.
func wrote(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

// field prints a labelled setting.
func field(label, value string) {
	fmt.Fprintln(statusOut, styleLabel.Render(label)+" "+StyleValue.Render(value))
}

// issue prints a check finding; errors and warnings get their own mark.
func issue(is document.Issue) {
	m := markWarn
	if is.Severity == document.SeverityError {
		m = markFail
	}
	status(m, "%s", is)
}

// summary prints the card and connection counts of a result and whether
// it came from the cache.
func summary(cards, conns int, cached bool) {
	parts := []string{fmt.Sprintf("%d cards", cards), fmt.Sprintf("%d connections", conns)}
	origin := lipgloss.NewStyle().Foreground(colorMuted).Render("fresh")
	if cached {
		origin = markOK.style.Render("cached")
	}
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(strings.Join(parts, " · "))+" "+StyleDim.Render("·")+" "+origin)
}

// hint suggests the command to run next, after a blank line.
func hint(what, cmd string) {
	fmt.Fprintln(statusOut)
	fmt.Fprintln(statusOut, StyleDim.Render(what+":")+" "+StyleHighlight.Render(cmd))
}
