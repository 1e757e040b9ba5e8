// Package term renders help text templates for the terminal.
package term

import (
	"bytes"
	"io"
	"os"
	"strings"
	"text/template"

	"golang.org/x/term"
)

const defaultTermWidth = 80

// IsTerminal reports whether w is a file attached to a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of the terminal w writes to, or 80
func Width(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}

// Render executes the template in with data and writes it to w, wrapped to
// the width of w. Styling is stripped unless color is set.
func Render(w io.Writer, in string, data interface{}, color bool) error {
	tmpl, err := template.New("term").Funcs(funcMap).Parse(in)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	out := buf.String()
	if !color {
		out = stripANSI(out)
	}
	out = wrap(out, Width(w))
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err = io.WriteString(w, out)
	return err
}
