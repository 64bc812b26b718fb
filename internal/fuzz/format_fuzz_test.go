package fuzztests

import (
	"strings"
	"testing"

	"flowfmt/internal/format"
	"flowfmt/internal/lexer"
	"flowfmt/internal/spacing"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func clampInput(input []byte) string {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return string(input)
}

func FuzzFormatInvariants(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		src := clampInput(input)
		once := format.Format(src)
		if twice := format.Format(once); twice != once {
			t.Fatalf("not idempotent:\nonce  %q\ntwice %q", once, twice)
		}

		in := strings.Split(src, "\n")
		out := strings.Split(once, "\n")
		if len(in) != len(out) {
			t.Fatalf("line count %d -> %d", len(in), len(out))
		}
		for i := range in {
			trimmed := strings.TrimSpace(in[i])
			if got := strings.TrimSpace(out[i]); got != trimmed {
				t.Fatalf("line %d content %q -> %q", i, trimmed, got)
			}
			if trimmed == "" && out[i] != "" {
				t.Fatalf("blank line %d emitted as %q", i, out[i])
			}
			if strings.HasPrefix(trimmed, format.CommentMarker) && out[i] != trimmed {
				t.Fatalf("comment line %d indented: %q", i, out[i])
			}
		}
	})
}

func FuzzLexerRoundTrip(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		for _, line := range strings.Split(clampInput(input), "\n") {
			toks, trailing := lexer.ScanLine(line)
			var b strings.Builder
			for _, tok := range toks {
				b.WriteString(tok.Gap)
				b.WriteString(tok.Text)
			}
			b.WriteString(trailing)
			if b.String() != line {
				t.Fatalf("round trip mismatch:\nwant %q\ngot  %q", line, b.String())
			}
		}
	})
}

func FuzzSpacingKeepsLines(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		src := clampInput(input)
		spaced := spacing.Text(src)
		if got, want := strings.Count(spaced, "\n"), strings.Count(src, "\n"); got != want {
			t.Fatalf("spacing changed line count %d -> %d", want, got)
		}
		formatted := format.Format(spaced)
		if again := format.Format(formatted); again != formatted {
			t.Fatalf("format after spacing not idempotent: %q", formatted)
		}
	})
}
