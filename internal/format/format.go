// Package format renders log records as text lines.
//
// Two renderings exist for every record: a console form, where the
// timestamp and level name are colorized, and a plain form that is persisted
// to files and never contains escape sequences. Both share the same layout:
//
//	2006-01-02 15:04:05 [INFO    ] message
package format

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/Iron-Ham/daylog/internal/severity"
)

// TimeLayout is the timestamp layout used by both renderings.
const TimeLayout = "2006-01-02 15:04:05"

// levelWidth is the column width the level name is padded to.
const levelWidth = 8

// Color modes accepted by ShouldColor.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ValidColorModes returns the accepted color mode strings.
func ValidColorModes() []string {
	return []string{ColorAuto, ColorAlways, ColorNever}
}

// levelColors maps each level to its ANSI color index.
var levelColors = map[severity.Level]lipgloss.Color{
	severity.Fatal:    lipgloss.Color("9"),
	severity.Critical: lipgloss.Color("9"),
	severity.Error:    lipgloss.Color("1"),
	severity.Warning:  lipgloss.Color("3"),
	severity.Notice:   lipgloss.Color("2"),
	severity.Info:     lipgloss.Color("4"),
	severity.Debug:    lipgloss.Color("5"),
	severity.Trace:    lipgloss.Color("8"),
}

// Formatter renders records. The zero value is not usable; call New.
type Formatter struct {
	color  bool
	styles map[severity.Level]lipgloss.Style
}

// New creates a Formatter. When color is false, RenderConsole produces the
// same output as RenderPlain.
func New(color bool) *Formatter {
	// The renderer is pinned to the basic ANSI profile so that escapes are
	// emitted no matter what the destination writer turns out to be.
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)

	styles := make(map[severity.Level]lipgloss.Style, len(levelColors))
	for level, c := range levelColors {
		styles[level] = r.NewStyle().Foreground(c).Bold(level == severity.Fatal)
	}

	return &Formatter{color: color, styles: styles}
}

// Color reports whether console output is colorized.
func (f *Formatter) Color() bool {
	return f.color
}

// RenderConsole renders the interactive form of a record.
func (f *Formatter) RenderConsole(t time.Time, level severity.Level, msg string) string {
	style, ok := f.styles[level]
	if !f.color || !ok {
		return f.RenderPlain(t, level, msg)
	}

	ts := Timestamp(t)
	var sb strings.Builder
	sb.WriteString(style.Render(ts))
	sb.WriteString(" [")
	sb.WriteString(style.Render(padLevel(level)))
	sb.WriteString("] ")
	sb.WriteString(msg)
	return sb.String()
}

// RenderPlain renders the file form of a record.
func (f *Formatter) RenderPlain(t time.Time, level severity.Level, msg string) string {
	ts := Timestamp(t)
	var sb strings.Builder
	sb.Grow(len(ts) + levelWidth + len(msg) + 4)
	sb.WriteString(ts)
	sb.WriteString(" [")
	sb.WriteString(padLevel(level))
	sb.WriteString("] ")
	sb.WriteString(msg)
	return sb.String()
}

// Timestamp formats t with TimeLayout at second resolution.
func Timestamp(t time.Time) string {
	return t.Format(TimeLayout)
}

// padLevel right-pads the level name so columns line up before any
// escape sequences are added.
func padLevel(level severity.Level) string {
	name := level.String()
	if len(name) >= levelWidth {
		return name
	}
	return name + strings.Repeat(" ", levelWidth-len(name))
}

// ShouldColor resolves a color mode for the given writer. In auto mode,
// color is used only when w is a terminal and NO_COLOR is not set.
func ShouldColor(w io.Writer, mode string) bool {
	switch strings.ToLower(mode) {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
