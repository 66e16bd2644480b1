// Package terminal renders command output: markdown through glamour, and
// status lines, boxes and tables through lipgloss.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Accent is the dashboard's signature green.
var Accent = lipgloss.AdaptiveColor{Light: "#008f58", Dark: "#00FF9D"}

// Writer provides styled terminal output with markdown rendering.
type Writer struct {
	out      io.Writer
	style    *lipgloss.Renderer
	markdown *glamour.TermRenderer
	width    int
	mu       sync.Mutex

	errorStyle   lipgloss.Style
	warnStyle    lipgloss.Style
	successStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	headerStyle  lipgloss.Style
	borderColor  lipgloss.AdaptiveColor
}

// New creates a Writer on stdout.
func New() *Writer {
	return NewWithOutput(os.Stdout)
}

// NewWithOutput creates a Writer on out. Colour is used only when out is a
// terminal and NO_COLOR is unset.
func NewWithOutput(out io.Writer) *Writer {
	color := os.Getenv("NO_COLOR") == ""
	if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		color = false
	}
	return newWriter(out, color)
}

// NewPlain creates a Writer that never emits escape sequences.
func NewPlain(out io.Writer) *Writer {
	return newWriter(out, false)
}

func newWriter(out io.Writer, color bool) *Writer {
	r := lipgloss.NewRenderer(out)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}

	width := terminalWidth(out)
	mdStyle := glamour.WithStandardStyle("notty")
	if color {
		mdStyle = glamour.WithStandardStyle("dark")
		if !r.HasDarkBackground() {
			mdStyle = glamour.WithStandardStyle("light")
		}
	}
	md, _ := glamour.NewTermRenderer(mdStyle, glamour.WithWordWrap(min(width, 100)))

	border := lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#2E4D3D"}
	return &Writer{
		out:      out,
		style:    r,
		markdown: md,
		width:    width,

		errorStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF3860"}).
			Bold(true),
		warnStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"}),
		successStyle: r.NewStyle().Foreground(Accent),
		infoStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#5599FF"}),
		dimStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		headerStyle: r.NewStyle().
			Foreground(Accent).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border),
		borderColor: border,
	}
}

// Print writes text to the terminal.
func (w *Writer) Print(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format, args...)
}

// Println writes text with a newline.
func (w *Writer) Println(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Markdown renders md. On renderer failure the raw text is written and the
// error returned.
func (w *Writer) Markdown(md string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.markdown == nil {
		fmt.Fprintln(w.out, md)
		return nil
	}
	rendered, err := w.markdown.Render(md)
	if err != nil {
		fmt.Fprintln(w.out, md)
		return err
	}
	fmt.Fprint(w.out, rendered)
	return nil
}

// Error prints an error message in red.
func (w *Writer) Error(format string, args ...any) {
	w.line(w.errorStyle, "error: "+fmt.Sprintf(format, args...))
}

// Warn prints a warning message in yellow.
func (w *Writer) Warn(format string, args ...any) {
	w.line(w.warnStyle, "warning: "+fmt.Sprintf(format, args...))
}

// Success prints a success message in the accent colour.
func (w *Writer) Success(format string, args ...any) {
	w.line(w.successStyle, "✓ "+fmt.Sprintf(format, args...))
}

// Info prints an info message in blue.
func (w *Writer) Info(format string, args ...any) {
	w.line(w.infoStyle, fmt.Sprintf(format, args...))
}

// Dim prints secondary text.
func (w *Writer) Dim(format string, args ...any) {
	w.line(w.dimStyle, fmt.Sprintf(format, args...))
}

// Header prints a section header.
func (w *Writer) Header(title string) {
	w.line(w.headerStyle, title)
}

func (w *Writer) line(style lipgloss.Style, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, style.Render(msg))
}

// Newline prints a blank line.
func (w *Writer) Newline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out)
}

// Divider prints a horizontal divider.
func (w *Writer) Divider() {
	w.line(w.dimStyle, strings.Repeat("─", min(w.width, 60)))
}

// Box renders content in a rounded box.
func (w *Writer) Box(title, content string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	boxStyle := w.style.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(w.borderColor).
		Padding(1, 2).
		Width(min(w.width-4, 80))

	output := content
	if title != "" {
		output = w.style.NewStyle().Bold(true).Foreground(Accent).Render(title) + "\n\n" + content
	}
	fmt.Fprintln(w.out, boxStyle.Render(output))
}

// Table prints rows under headers. Columns listed in numeric are
// right-aligned.
func (w *Writer) Table(headers []string, rows [][]string, numeric ...int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	right := make(map[int]bool, len(numeric))
	for _, col := range numeric {
		right[col] = true
	}
	headerStyle := w.style.NewStyle().Bold(true).Foreground(Accent).Padding(0, 1)
	cellStyle := w.style.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(w.style.NewStyle().Foreground(w.borderColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if right[col] {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		})
	fmt.Fprintln(w.out, t.Render())
}

// List prints a bulleted list.
func (w *Writer) List(items []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, item := range items {
		fmt.Fprintln(w.out, "  • "+item)
	}
}

// NumberedList prints a numbered list.
func (w *Writer) NumberedList(items []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, item := range items {
		fmt.Fprintf(w.out, "  %d. %s\n", i+1, item)
	}
}

// Truncate shortens s to at most width terminal cells, ending in an
// ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// terminalWidth returns out's width when it is a terminal, else 80.
func terminalWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}
