// Package watch reformats FlowLang files as they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"flowfmt/internal/driver"
	"flowfmt/internal/trace"
)

// DefaultDebounce is how long a path must stay quiet before it is reformatted.
const DefaultDebounce = 150 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Format   driver.FormatOptions
	Debounce time.Duration
	// OnResult is called after every formatting attempt.
	OnResult func(driver.FormatResult)
	// OnError receives watcher errors that do not stop the loop.
	OnError func(error)
}

// Watcher watches directories and reformats matching files after writes.
type Watcher struct {
	opts    Options
	fsw     *fsnotify.Watcher
	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// New creates a watcher over roots. Directories are watched recursively,
// skipping hidden and excluded directories; files watch their parent directory.
func New(roots []string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{opts: opts, fsw: fsw, pending: make(map[string]*time.Timer)}
	for _, root := range roots {
		if err := w.add(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return w.fsw.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) skipDir(name string) bool {
	return driver.SkipDir(name, w.opts.Format.Exclude)
}

func (w *Watcher) matches(path string) bool {
	return driver.HasSourceExtension(path, w.opts.Format.Extensions)
}

// Run processes events until ctx is done. It always closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()
	tr := trace.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, tr, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			trace.Error(tr, trace.ScopeDriver, "watch", err, 0)
			if w.opts.OnError != nil {
				w.opts.OnError(err)
			}
		}
	}
}

func (w *Watcher) handle(ctx context.Context, tr trace.Tracer, ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !w.skipDir(filepath.Base(ev.Name)) {
			if err := w.add(ev.Name); err != nil && w.opts.OnError != nil {
				w.opts.OnError(err)
			}
			return
		}
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	if !w.matches(ev.Name) {
		return
	}
	trace.Point(tr, trace.ScopeFile, "watch:"+ev.Name, ev.Op.String(), 0)
	w.schedule(ctx, ev.Name)
}

// schedule debounces bursts of writes, including the write flowfmt itself makes.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.opts.Debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.reformat(ctx, path)
	})
	w.pending[path] = t
}

func (w *Watcher) reformat(ctx context.Context, path string) {
	results, err := driver.FormatPaths(ctx, []string{path}, w.opts.Format)
	if err != nil {
		if !errors.Is(err, context.Canceled) && w.opts.OnError != nil {
			w.opts.OnError(err)
		}
		return
	}
	if w.opts.OnResult == nil {
		return
	}
	for _, res := range results {
		w.opts.OnResult(res)
	}
}

func (w *Watcher) close() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
	_ = w.fsw.Close()
}
