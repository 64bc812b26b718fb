package fmtdiff

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLines(t *testing.T) {
	got := Lines([]byte("if x then\ndo_thing\nend"), []byte("if x then\n    do_thing\nend"))
	want := []Change{{Line: 2, Before: "do_thing", After: "    do_thing"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Lines mismatch (-want +got):\n%s", diff)
	}

	if changes := Lines([]byte("same\n"), []byte("same\n")); len(changes) != 0 {
		t.Fatalf("identical input produced changes: %+v", changes)
	}
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	changes := []Change{{Line: 2, Before: "x", After: "\tx"}}
	if err := Render(&buf, "a.flow", changes, Options{}); err != nil {
		t.Fatal(err)
	}
	want := "a.flow:2\n-x\n+→   x\n"
	if buf.String() != want {
		t.Fatalf("Render = %q, want %q", buf.String(), want)
	}
}

func TestRenderTruncatesAndColors(t *testing.T) {
	var buf bytes.Buffer
	changes := []Change{{Line: 1, Before: strings.Repeat("界", 20), After: "short"}}
	if err := Render(&buf, "wide.flow", changes, Options{Width: 10}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasSuffix(lines[1], "...") {
		t.Fatalf("long row not truncated: %q", lines[1])
	}

	buf.Reset()
	if err := Render(&buf, "c.flow", changes, Options{Color: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes: %q", buf.String())
	}
}
