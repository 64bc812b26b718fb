package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"flowfmt/internal/format"
	"flowfmt/internal/observ"
	"flowfmt/internal/trace"
)

const (
	messy     = "if x then\ndo_thing\nend\n"
	formatted = "if x then\n    do_thing\nend\n"
)

func writeSource(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readSource(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestFormatPathsRewritesInPlace(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.flow")
	b := filepath.Join(dir, "nested", "b.flow")
	skipped := filepath.Join(dir, "notes.txt")
	writeSource(t, a, messy)
	writeSource(t, b, formatted)
	writeSource(t, skipped, messy)

	results, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("want 2 results, got %d", len(results))
	}
	if results[0].Path != a || !results[0].Changed {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[1].Path != b || results[1].Changed {
		t.Fatalf("unexpected second result: %+v", results[1])
	}
	if got := readSource(t, a); got != formatted {
		t.Fatalf("a.flow not rewritten: %q", got)
	}
	if got := readSource(t, skipped); got != messy {
		t.Fatalf("non-source file touched: %q", got)
	}
}

func TestFormatPathsCheckDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.flow")
	writeSource(t, path, messy)

	results, err := FormatPaths(context.Background(), []string{path}, FormatOptions{Check: true})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if !results[0].Changed {
		t.Fatalf("check should report change")
	}
	if got := readSource(t, path); got != messy {
		t.Fatalf("check mode modified file: %q", got)
	}
}

func TestFormatPathsOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.script")
	out := filepath.Join(dir, "out.flow")
	writeSource(t, in, messy)

	results, err := FormatPaths(context.Background(), []string{in}, FormatOptions{Output: out})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if results[0].Err != nil || results[0].Output != out {
		t.Fatalf("unexpected result: %+v", results[0])
	}
	if got := readSource(t, out); got != formatted {
		t.Fatalf("output file = %q", got)
	}
	if got := readSource(t, in); got != messy {
		t.Fatalf("input modified: %q", got)
	}

	writeSource(t, filepath.Join(dir, "other.flow"), messy)
	if _, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{Output: out}); err == nil {
		t.Fatalf("expected error for --output with several files")
	}
}

func TestFormatPathsMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.flow")
	results, err := FormatPaths(context.Background(), []string{missing}, FormatOptions{})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 1 || !errors.Is(results[0].Err, os.ErrNotExist) {
		t.Fatalf("want not-exist result, got %+v", results)
	}
}

func TestFormatPathsNoFiles(t *testing.T) {
	_, err := FormatPaths(context.Background(), []string{t.TempDir()}, FormatOptions{})
	if !errors.Is(err, ErrNoSourceFiles) {
		t.Fatalf("want ErrNoSourceFiles, got %v", err)
	}
}

func TestFormatPathsExcludeAndExtensions(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "keep.fl"), messy)
	writeSource(t, filepath.Join(dir, "vendor", "dep.fl"), messy)
	writeSource(t, filepath.Join(dir, ".hidden", "x.fl"), messy)
	writeSource(t, filepath.Join(dir, "gen_api.fl"), messy)

	results, err := FormatPaths(context.Background(), []string{dir}, FormatOptions{
		Check:      true,
		Extensions: []string{".fl"},
		Exclude:    []string{"vendor", "gen_*"},
	})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 1 || filepath.Base(results[0].Path) != "keep.fl" {
		t.Fatalf("unexpected files: %+v", results)
	}
}

func TestFormatPathsParallelOrderAndProgress(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.flow", "a.flow", "b.flow", "d.flow"} {
		writeSource(t, filepath.Join(dir, name), messy)
	}

	var (
		mu     sync.Mutex
		events []Event
	)
	sink := sinkFunc(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	var traceBuf bytes.Buffer
	ctx := trace.WithTracer(context.Background(), trace.NewStreamTracer(&lockedWriter{w: &traceBuf}, trace.LevelDetail, trace.FormatText))
	timer := observ.NewTimer()

	results, err := FormatPaths(ctx, []string{dir}, FormatOptions{Stdout: true, Jobs: 3, Progress: sink, Timer: timer})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	for i, want := range []string{"a.flow", "b.flow", "c.flow", "d.flow"} {
		if filepath.Base(results[i].Path) != want {
			t.Fatalf("result %d = %s, want %s", i, results[i].Path, want)
		}
		if string(results[i].Formatted) != formatted {
			t.Fatalf("formatted content = %q", results[i].Formatted)
		}
	}

	terminal := 0
	for _, ev := range events {
		if ev.Status.Done() {
			terminal++
		}
	}
	if terminal != 4 || len(events) != 12 {
		t.Fatalf("want 12 events with 4 terminal, got %d/%d", len(events), terminal)
	}
	if len(timer.Report().Phases) != 2 {
		t.Fatalf("want collect+format phases, got %+v", timer.Report())
	}
	if !bytes.Contains(traceBuf.Bytes(), []byte("file:")) {
		t.Fatalf("expected per-file trace events:\n%s", traceBuf.String())
	}
}

func TestFormatPathsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FormatPaths(ctx, []string{t.TempDir()}, FormatOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestFormatPathsPreservesBOMAndMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.flow")
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("end\nif x then\ny\nend")...)
	if err := os.WriteFile(path, src, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := FormatPaths(context.Background(), []string{path}, FormatOptions{}); err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	want := append([]byte{0xEF, 0xBB, 0xBF}, []byte("end\nif x then\n    y\nend")...)
	if got := []byte(readSource(t, path)); !bytes.Equal(got, want) {
		t.Fatalf("BOM file = %q, want %q", got, want)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode changed to %v", info.Mode().Perm())
	}
}

func TestFormatPathsSpaceOperatorsAndWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.flow")
	writeSource(t, path, "if a==b then\nx=-1\nend")

	results, err := FormatPaths(context.Background(), []string{path}, FormatOptions{
		Stdout:         true,
		SpaceOperators: true,
		Options:        format.Options{IndentWidth: 2},
	})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if got, want := string(results[0].Formatted), "if a == b then\n  x = -1\nend"; got != want {
		t.Fatalf("want %q got %q", want, got)
	}
}

func TestFormatSource(t *testing.T) {
	out, changed, err := FormatSource([]byte(messy), FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !changed || string(out) != formatted {
		t.Fatalf("FormatSource = %q changed=%v", out, changed)
	}

	out, changed, err = FormatSource([]byte(formatted), FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if changed || string(out) != formatted {
		t.Fatalf("formatted input reported as changed: %q", out)
	}
}

type sinkFunc func(Event)

func (f sinkFunc) OnEvent(ev Event) { f(ev) }

type lockedWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
