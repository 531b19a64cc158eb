// Package config handles plusminus.toml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "plusminus.toml"

// Formats lists the accepted output formats.
var Formats = []string{"text", "json"}

// Config represents a plusminus.toml file.
type Config struct {
	Store       Store       `toml:"store"`
	Output      Output      `toml:"output"`
	Locale      Locale      `toml:"locale"`
	Definitions Definitions `toml:"definitions"`

	// Dir is the directory containing the plusminus.toml file (set at load time).
	// Empty for the built-in defaults.
	Dir string `toml:"-"`
}

// Store configures the event database.
type Store struct {
	Path string `toml:"path"`
}

// Output configures CLI output.
type Output struct {
	Format string `toml:"format"`
}

// Locale selects the label language for the built-in blocks.
type Locale struct {
	Tag string `toml:"tag"`
}

// Definitions points at a directory of CUE block definitions.
type Definitions struct {
	Dir string `toml:"dir"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Store:  Store{Path: "plusminus.db"},
		Output: Output{Format: "text"},
		Locale: Locale{Tag: "en"},
	}
}

// Load parses the config file at path. Keys missing from the file keep
// their defaults; unknown keys are an error. Relative paths in the file are
// resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	c.Store.Path = c.resolve(c.Store.Path)
	c.Definitions.Dir = c.resolve(c.Definitions.Dir)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a plusminus.toml file and loads
// it. Returns Default() if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate checks the values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("output.format: must be one of %v, got %q", Formats, c.Output.Format)
	}
	if _, err := language.Parse(c.Locale.Tag); err != nil {
		return fmt.Errorf("locale.tag: %w", err)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	return nil
}

func (c *Config) resolve(p string) string {
	if p == "" || p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}
