package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"flowfmt/internal/project"
)

// collectSourceFiles expands paths into source files. Explicit file arguments
// are always kept; directories are walked for the configured extensions.
// Paths that cannot be stat'ed are returned in failed instead of aborting.
func collectSourceFiles(ctx context.Context, paths, exts, exclude []string) (files []string, failed map[string]error, err error) {
	seen := make(map[string]struct{})
	addFile := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		info, statErr := os.Stat(p)
		if statErr != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[p] = statErr
			continue
		}
		if !info.IsDir() {
			addFile(p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && (SkipDir(d.Name(), exclude)) {
					return filepath.SkipDir
				}
				return nil
			}
			if HasSourceExtension(path, exts) && !isExcluded(d.Name(), exclude) {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	sort.Strings(files)
	return files, failed, nil
}

// HasSourceExtension reports whether path ends in one of exts. An empty exts
// means project.DefaultExtension.
func HasSourceExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		exts = []string{project.DefaultExtension}
	}
	ext := filepath.Ext(path)
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}

// SkipDir reports whether a directory walk skips the directory name: hidden
// directories and names matching an exclude pattern.
func SkipDir(name string, exclude []string) bool {
	return strings.HasPrefix(name, ".") || isExcluded(name, exclude)
}

func isExcluded(name string, patterns []string) bool {
	for _, pat := range patterns {
		if ok, _ := filepath.Match(pat, name); ok {
			return true
		}
	}
	return false
}

// CollectFiles lists the source files FormatPaths would process for paths.
func CollectFiles(ctx context.Context, paths []string, opts FormatOptions) ([]string, error) {
	files, failed, err := collectSourceFiles(ctx, paths, opts.Extensions, opts.Exclude)
	if err != nil {
		return nil, err
	}
	for path := range failed {
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}
