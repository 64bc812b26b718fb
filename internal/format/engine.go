package format

import "strings"

// DefaultIndentWidth is the number of spaces per level when Options leave it unset.
const DefaultIndentWidth = 4

// Options configures the indentation unit.
type Options struct {
	// IndentWidth is the number of spaces per level; <= 0 selects DefaultIndentWidth.
	IndentWidth int
	// UseTabs replaces the space unit with a single tab per level.
	UseTabs bool
}

// Engine re-indents FlowLang source. It holds no per-run state, so one
// Engine may be shared by concurrent callers.
type Engine struct {
	unit string
}

// New returns an Engine for the given options.
func New(opts Options) *Engine {
	return &Engine{unit: opts.unit()}
}

func (o Options) unit() string {
	if o.UseTabs {
		return "\t"
	}
	width := o.IndentWidth
	if width <= 0 {
		width = DefaultIndentWidth
	}
	return strings.Repeat(" ", width)
}

var defaultEngine = New(Options{})

// Format re-indents src with the default options.
func Format(src string) string {
	return defaultEngine.Format(src)
}

// Unit returns the whitespace emitted once per indent level.
func (e *Engine) Unit() string {
	if e == nil {
		return defaultEngine.unit
	}
	return e.unit
}

// Format re-indents src. Output has the same number of lines as src and each
// line keeps its trimmed content; only leading whitespace changes.
func (e *Engine) Format(src string) string {
	lines := strings.Split(src, "\n")
	return strings.Join(e.FormatLines(lines), "\n")
}

// IsFormatted reports whether formatting src would leave it unchanged.
func (e *Engine) IsFormatted(src string) bool {
	return e.Format(src) == src
}

// FormatLines runs the transducer over already split lines.
func (e *Engine) FormatLines(lines []string) []string {
	st := state{unit: e.Unit()}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = st.step(line)
	}
	return out
}

// state is the indent counter of a single formatting run.
type state struct {
	unit  string
	level int
}

func (s *state) step(line string) string {
	trimmed := strings.TrimSpace(line)
	switch Classify(trimmed) {
	case Blank:
		return ""
	case Comment:
		return trimmed
	}

	s.level = PreAdjust(s.level, trimmed)
	emitted := strings.Repeat(s.unit, s.level) + trimmed
	s.level = PostAdjust(s.level, trimmed)
	return emitted
}
