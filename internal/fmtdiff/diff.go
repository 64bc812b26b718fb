// Package fmtdiff renders the line changes a formatting run makes. Formatting
// never adds or removes lines, so changes are computed line by line.
package fmtdiff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// Change is a single line whose text differs after formatting.
type Change struct {
	Line   int // 1-based
	Before string
	After  string
}

// Lines compares original and formatted text line by line.
func Lines(original, formatted []byte) []Change {
	before := strings.Split(string(original), "\n")
	after := strings.Split(string(formatted), "\n")
	n := max(len(before), len(after))

	var changes []Change
	for i := 0; i < n; i++ {
		b, a := at(before, i), at(after, i)
		if b != a {
			changes = append(changes, Change{Line: i + 1, Before: b, After: a})
		}
	}
	return changes
}

func at(lines []string, i int) string {
	if i < len(lines) {
		return strings.TrimSuffix(lines[i], "\r")
	}
	return ""
}

// Options controls rendering.
type Options struct {
	// Color enables red/green markers.
	Color bool
	// Width truncates rendered rows to this many terminal cells; 0 disables.
	Width int
}

var (
	headerColor = color.New(color.Bold)
	removeColor = color.New(color.FgRed)
	addColor    = color.New(color.FgGreen)
)

// Render writes changes for path in a compact unified style:
//
//	path:3
//	-do_thing
//	+    do_thing
func Render(w io.Writer, path string, changes []Change, opts Options) error {
	for _, ch := range changes {
		header := fmt.Sprintf("%s:%d", path, ch.Line)
		removed := truncate("-"+visible(ch.Before), opts.Width)
		added := truncate("+"+visible(ch.After), opts.Width)
		if opts.Color {
			header = paint(headerColor, header)
			removed = paint(removeColor, removed)
			added = paint(addColor, added)
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n%s\n", header, removed, added); err != nil {
			return err
		}
	}
	return nil
}

// paint forces color regardless of color.NoColor; the caller already decided.
func paint(c *color.Color, s string) string {
	cc := *c
	cc.EnableColor()
	return cc.Sprint(s)
}

// visible shows tabs so indentation-only changes are readable.
func visible(s string) string {
	return strings.ReplaceAll(s, "\t", "→   ")
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
