package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer that adapts to the terminal background.
// If glamour cannot be initialised the markdown is passed through unchanged.
func NewRenderer() Renderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return PlainRenderer
	}
	return r.Render
}

// PlainRenderer returns markdown as-is.
func PlainRenderer(markdown string) (string, error) {
	return markdown, nil
}

// RendererFor picks a glamour renderer when w is a terminal and plain text otherwise.
func RendererFor(w io.Writer) Renderer {
	if IsTerminal(w) {
		return NewRenderer()
	}
	return PlainRenderer
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
