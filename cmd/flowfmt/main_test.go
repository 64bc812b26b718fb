package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	messySrc     = "if x then\ndo_thing\nend\n"
	formattedSrc = "if x then\n    do_thing\nend\n"
)

func runCLI(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--color", "off"}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNoArgumentsPrintsUsage(t *testing.T) {
	out, _, err := runCLI(t, "")
	if !errors.Is(err, errReported) {
		t.Fatalf("want errReported, got %v", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Fatalf("usage not printed:\n%s", out)
	}
}

func TestFormatFileInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.flow")
	writeFile(t, path, messySrc)

	out, _, err := runCLI(t, "", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := "Formatted " + path + "\n"; out != want {
		t.Fatalf("want %q got %q", want, out)
	}
	data, _ := os.ReadFile(path)
	if string(data) != formattedSrc {
		t.Fatalf("file not rewritten: %q", data)
	}

	// an already formatted file is still reported
	out, _, err = runCLI(t, "", path)
	if err != nil || out != "Formatted "+path+"\n" {
		t.Fatalf("second run: out=%q err=%v", out, err)
	}
}

func TestCheckMode(t *testing.T) {
	dir := t.TempDir()
	messy := filepath.Join(dir, "messy.flow")
	clean := filepath.Join(dir, "clean.flow")
	writeFile(t, messy, messySrc)
	writeFile(t, clean, formattedSrc)

	out, _, err := runCLI(t, "", "--check", messy)
	if !errors.Is(err, errReported) {
		t.Fatalf("want exit 1 for unformatted file, got %v", err)
	}
	if want := messy + " needs formatting\n"; out != want {
		t.Fatalf("want %q got %q", want, out)
	}
	data, _ := os.ReadFile(messy)
	if string(data) != messySrc {
		t.Fatalf("check rewrote the file: %q", data)
	}

	out, _, err = runCLI(t, "", "--check", clean)
	if err != nil {
		t.Fatalf("want success for formatted file, got %v", err)
	}
	if want := clean + " is already formatted\n"; out != want {
		t.Fatalf("want %q got %q", want, out)
	}
}

func TestMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.flow")
	_, errOut, err := runCLI(t, "", path)
	if !errors.Is(err, errReported) {
		t.Fatalf("want errReported, got %v", err)
	}
	if want := "Error: File " + path + " not found\n"; errOut != want {
		t.Fatalf("want %q got %q", want, errOut)
	}
}

func TestStdin(t *testing.T) {
	out, _, err := runCLI(t, "if x then\ny\nend", "--stdin")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := "if x then\n    y\nend"; out != want {
		t.Fatalf("want %q got %q", want, out)
	}

	_, errOut, err := runCLI(t, "if x then\ny\nend", "--stdin", "--check")
	if !errors.Is(err, errReported) || !strings.Contains(errOut, "needs formatting") {
		t.Fatalf("stdin check: err=%v stderr=%q", err, errOut)
	}

	if _, _, err := runCLI(t, "", "--stdin", "x.flow"); err == nil {
		t.Fatalf("expected error for --stdin with file arguments")
	}
}

func TestOutputFlag(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.flow")
	dst := filepath.Join(dir, "out.flow")
	writeFile(t, in, messySrc)

	if _, _, err := runCLI(t, "", "-o", dst, in); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != formattedSrc {
		t.Fatalf("output = %q", data)
	}
	data, _ = os.ReadFile(in)
	if string(data) != messySrc {
		t.Fatalf("input modified: %q", data)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "flowfmt.toml"), "[format]\nindent_width = 2\n")
	path := filepath.Join(dir, "main.flow")
	writeFile(t, path, messySrc)

	if _, _, err := runCLI(t, "", path); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, _ := os.ReadFile(path)
	if want := "if x then\n  do_thing\nend\n"; string(data) != want {
		t.Fatalf("config width: want %q got %q", want, data)
	}

	if _, _, err := runCLI(t, "", "--tabs", path); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, _ = os.ReadFile(path)
	if want := "if x then\n\tdo_thing\nend\n"; string(data) != want {
		t.Fatalf("--tabs: want %q got %q", want, data)
	}

	if _, _, err := runCLI(t, "", "--indent", "0", path); err == nil {
		t.Fatalf("expected error for --indent 0")
	}
}

func TestJSONReport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.flow"), messySrc)
	writeFile(t, filepath.Join(dir, "b.flow"), formattedSrc)

	out, _, err := runCLI(t, "", "--check", "--format", "json", dir)
	if !errors.Is(err, errReported) {
		t.Fatalf("want exit 1, got %v", err)
	}
	var payload []struct {
		Path    string `json:"path"`
		Changed bool   `json:"changed"`
		Check   bool   `json:"check"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(payload) != 2 || !payload[0].Changed || payload[1].Changed || !payload[0].Check {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDiffFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.flow")
	writeFile(t, path, messySrc)

	out, _, err := runCLI(t, "", "--check", "--diff", path)
	if !errors.Is(err, errReported) {
		t.Fatalf("want exit 1, got %v", err)
	}
	if !strings.Contains(out, "    do_thing") {
		t.Fatalf("diff missing changed line:\n%s", out)
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := runCLI(t, "", "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "flowfmt" || payload.Version == "" || payload.GitCommit == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestStdoutFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.flow")
	writeFile(t, path, messySrc)

	out, _, err := runCLI(t, "", "--stdout", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != formattedSrc {
		t.Fatalf("want %q got %q", formattedSrc, out)
	}
	data, _ := os.ReadFile(path)
	if string(data) != messySrc {
		t.Fatalf("--stdout rewrote the file: %q", data)
	}

	if _, _, err := runCLI(t, "", "--stdout", "--check", path); err == nil {
		t.Fatalf("expected error for --stdout with --check")
	}
}

func TestCacheFlags(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	path := filepath.Join(t.TempDir(), "main.flow")
	writeFile(t, path, formattedSrc)

	entries := filepath.Join(cacheHome, "flowfmt", "fmt")
	if _, _, err := runCLI(t, "", "--cache", path); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(entries); err != nil {
		t.Fatalf("cache not populated: %v", err)
	}

	if _, _, err := runCLI(t, "", "--clear-cache", "--check", path); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(entries); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cache not cleared: %v", err)
	}
}
