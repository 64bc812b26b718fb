package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"flowfmt/internal/format"
)

// DefaultExtension is the FlowLang source suffix collected from directories.
const DefaultExtension = ".flow"

// Config is the resolved formatter configuration.
type Config struct {
	// Path is the file the config was loaded from; empty for defaults.
	Path           string
	IndentWidth    int
	UseTabs        bool
	SpaceOperators bool
	Extensions     []string
	Exclude        []string
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		IndentWidth: format.DefaultIndentWidth,
		Extensions:  []string{DefaultExtension},
	}
}

// FormatOptions returns the engine options for this config.
func (c Config) FormatOptions() format.Options {
	return format.Options{IndentWidth: c.IndentWidth, UseTabs: c.UseTabs}
}

type fileConfig struct {
	Format formatSection `toml:"format" yaml:"format"`
}

type formatSection struct {
	IndentWidth    *int64   `toml:"indent_width" yaml:"indent_width"`
	UseTabs        *bool    `toml:"use_tabs" yaml:"use_tabs"`
	SpaceOperators *bool    `toml:"space_operators" yaml:"space_operators"`
	Extensions     []string `toml:"extensions" yaml:"extensions"`
	Exclude        []string `toml:"exclude" yaml:"exclude"`
}

// Load discovers the config file starting at startDir. Defaults are returned
// when none is found.
func Load(startDir string) (Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile parses a config file; the format follows the file extension.
func LoadFile(path string) (Config, error) {
	// #nosec G304 -- path comes from config discovery or the user
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		meta, err := toml.Decode(string(data), &fc)
		if err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
		}
	}

	cfg, err := fc.resolve()
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func (fc fileConfig) resolve() (Config, error) {
	cfg := Default()
	sec := fc.Format
	if sec.IndentWidth != nil {
		width, err := ValidateIndentWidth(*sec.IndentWidth)
		if err != nil {
			return Config{}, err
		}
		cfg.IndentWidth = width
	}
	if sec.UseTabs != nil {
		cfg.UseTabs = *sec.UseTabs
	}
	if sec.SpaceOperators != nil {
		cfg.SpaceOperators = *sec.SpaceOperators
	}
	if sec.Extensions != nil {
		exts, err := normalizeExtensions(sec.Extensions)
		if err != nil {
			return Config{}, err
		}
		cfg.Extensions = exts
	}
	cfg.Exclude = append([]string(nil), sec.Exclude...)
	return cfg, nil
}

// ValidateIndentWidth checks that a width is positive and fits a byte.
func ValidateIndentWidth(v int64) (int, error) {
	w, err := safecast.Conv[uint8](v)
	if err != nil || w == 0 {
		return 0, fmt.Errorf("[format].indent_width must be between 1 and 255, got %d", v)
	}
	return int(w), nil
}

func normalizeExtensions(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("[format].extensions must not be empty")
	}
	out := make([]string, 0, len(in))
	for _, ext := range in {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return nil, fmt.Errorf("[format].extensions contains an empty entry")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out, nil
}
