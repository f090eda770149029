package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`   ____                 _     _ _   `, "#34d399"},
	{`  / ___| __ _ _ __ ___ | |__ (_) |_ `, "#2dd4bf"},
	{` | |  _ / _' | '_ ' _ \| '_ \| | __|`, "#22d3ee"},
	{` | |_| | (_| | | | | | | |_) | | |_ `, "#38bdf8"},
	{`  \____|\__,_|_| |_| |_|_.__/|_|\__|`, "#60a5fa"},
}

// PrintBanner writes the gambit banner, coloured when the terminal supports it.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()
	if !IsTerminal(w) {
		p = termenv.Ascii
	}

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
