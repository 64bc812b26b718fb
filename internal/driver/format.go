package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/google/renameio"
	"golang.org/x/sync/errgroup"

	"flowfmt/internal/format"
	"flowfmt/internal/observ"
	"flowfmt/internal/spacing"
	"flowfmt/internal/trace"
)

// ErrNoSourceFiles is returned when the given paths contain nothing to format.
var ErrNoSourceFiles = errors.New("format: no source files found")

// FormatOptions configures code formatting.
type FormatOptions struct {
	// Check reports whether files would change without writing them.
	Check bool
	// Stdout returns formatted content in results instead of writing files.
	Stdout bool
	// Output writes the single formatted file to this path instead of in place.
	Output string
	// Jobs limits parallel workers; <= 0 uses GOMAXPROCS.
	Jobs int

	Options        format.Options
	SpaceOperators bool
	Extensions     []string
	Exclude        []string

	Cache    *Cache
	Progress ProgressSink
	Timer    *observ.Timer
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path string
	// Output is where the result was written; equals Path for in-place runs.
	Output    string
	Changed   bool
	Cached    bool
	Err       error
	Original  []byte
	Formatted []byte
}

// fingerprint identifies the formatting rules in effect, for cache keys.
func (o FormatOptions) fingerprint() string {
	unit := format.New(o.Options).Unit()
	return "flowfmt/v1|unit=" + strconv.Quote(unit) + "|ops=" + strconv.FormatBool(o.SpaceOperators)
}

// FormatSource formats in-memory source with the same pipeline used for files.
func FormatSource(data []byte, opts FormatOptions) (formatted []byte, changed bool, err error) {
	text, hadBOM, err := decodeSource(data)
	if err != nil {
		return nil, false, err
	}
	formatted = encodeSource(formatText(text, opts), hadBOM)
	return formatted, !bytes.Equal(data, formatted), nil
}

func formatText(text string, opts FormatOptions) string {
	if opts.SpaceOperators {
		text = spacing.Text(text)
	}
	return format.New(opts.Options).Format(text)
}

// FormatPaths formats provided files or directories (recursively collecting
// files with the configured extensions). When opts.Check is true, files are
// not modified; Changed indicates whether formatting would update them. When
// opts.Stdout is true, formatted content is returned without touching disk.
// Per-file failures are reported in FormatResult.Err; the returned error is
// reserved for failures of the run itself.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tr := trace.FromContext(ctx)
	runSpan := trace.Begin(tr, trace.ScopeDriver, "fmt", 0)

	collectIdx := opts.Timer.Begin("collect")
	collectSpan := trace.Begin(tr, trace.ScopePass, "collect", runSpan.ID())
	files, failed, err := collectSourceFiles(ctx, paths, opts.Extensions, opts.Exclude)
	collectSpan.End(fmt.Sprintf("%d files", len(files)))
	opts.Timer.End(collectIdx, fmt.Sprintf("%d files", len(files)))
	if err != nil {
		trace.Error(tr, trace.ScopeDriver, "collect", err, runSpan.ID())
		runSpan.End("failed")
		return nil, err
	}
	if len(files) == 0 && len(failed) == 0 {
		runSpan.End("empty")
		return nil, ErrNoSourceFiles
	}
	if opts.Output != "" && len(files)+len(failed) != 1 {
		runSpan.End("failed")
		return nil, fmt.Errorf("format: --output requires exactly one input file, got %d", len(files)+len(failed))
	}

	results := make([]FormatResult, 0, len(files)+len(failed))
	for path, statErr := range failed {
		results = append(results, FormatResult{Path: path, Err: statErr})
		emit(opts.Progress, Event{File: path, Status: StatusError, Err: statErr})
	}

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	formatIdx := opts.Timer.Begin("format")
	formatSpan := trace.Begin(tr, trace.ScopePass, "format", runSpan.ID())
	engine := format.New(opts.Options)
	fingerprint := opts.fingerprint()

	// индексы уникальны для каждой горутины, мьютекс не нужен
	fileResults := make([]FormatResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fileResults[i] = formatFile(tr, formatSpan.ID(), engine, fingerprint, path, opts)
			return nil
		})
	}
	waitErr := g.Wait()
	formatSpan.End("")
	opts.Timer.End(formatIdx, fmt.Sprintf("jobs=%d", jobs))
	if waitErr != nil {
		runSpan.End("canceled")
		return nil, waitErr
	}

	results = append(results, fileResults...)
	sortResults(results)
	runSpan.WithExtra("files", strconv.Itoa(len(results))).End("")
	return results, nil
}

func formatFile(tr trace.Tracer, parent uint64, engine *format.Engine, fingerprint, path string, opts FormatOptions) FormatResult {
	span := trace.Begin(tr, trace.ScopeFile, "file:"+path, parent)
	start := time.Now()
	emit(opts.Progress, Event{File: path, Status: StatusWorking})

	res := formatSingleFile(engine, fingerprint, path, opts)

	status := StatusUnchanged
	switch {
	case res.Err != nil:
		status = StatusError
		trace.Error(tr, trace.ScopeFile, "file:"+path, res.Err, parent)
	case res.Changed:
		status = StatusChanged
	}
	span.WithExtra("changed", strconv.FormatBool(res.Changed)).
		WithExtra("cached", strconv.FormatBool(res.Cached)).
		End(string(status))
	emit(opts.Progress, Event{File: path, Status: status, Err: res.Err, Elapsed: time.Since(start)})
	return res
}

func formatSingleFile(engine *format.Engine, fingerprint, path string, opts FormatOptions) FormatResult {
	res := FormatResult{Path: path, Output: path}
	if opts.Output != "" {
		res.Output = opts.Output
	}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = err
		return res
	}
	// #nosec G304 -- path comes from user arguments or directory walk
	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Original = data

	key := opts.Cache.Key(fingerprint, data)
	if opts.Output == "" && !opts.Stdout {
		if hit, cacheErr := opts.Cache.IsFormatted(key); cacheErr == nil && hit {
			res.Cached = true
			res.Formatted = data
			return res
		}
	}

	text, hadBOM, err := decodeSource(data)
	if err != nil {
		res.Err = fmt.Errorf("decode: %w", err)
		return res
	}
	if opts.SpaceOperators {
		text = spacing.Text(text)
	}
	formatted := encodeSource(engine.Format(text), hadBOM)
	res.Formatted = formatted
	res.Changed = !bytes.Equal(data, formatted)

	if !res.Changed {
		// best effort: a cache failure never fails formatting
		_ = opts.Cache.MarkFormatted(key, path) //nolint:errcheck
	}

	switch {
	case opts.Check, opts.Stdout:
		return res
	case opts.Output != "":
		res.Err = writeFormatted(opts.Output, formatted, info.Mode().Perm())
	case res.Changed:
		res.Err = writeFormatted(path, formatted, info.Mode().Perm())
	}
	return res
}

// writeFormatted replaces path atomically, keeping an existing file's mode.
func writeFormatted(path string, data []byte, mode os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := renameio.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func sortResults(results []FormatResult) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Path < results[j].Path })
}
