// Package config holds the command line settings and their optional YAML
// file counterpart.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/agenthands/rulex/pkg/compiler/emitter"
)

// DefaultPath is read when no -config flag is given and the file exists.
const DefaultPath = ".rulex.yaml"

// Config is the effective setting for one run of the tool.
type Config struct {
	Flavor string
	Debug  bool
	Color  bool
}

// File is the on-disk form. Keys that are absent leave the flag defaults
// untouched.
type File struct {
	Flavor *string `yaml:"flavor"`
	Debug  *bool   `yaml:"debug"`
	Color  *bool   `yaml:"color"`
}

// Default emits PCRE with colored diagnostics.
func Default() Config {
	return Config{Flavor: emitter.PCRE.String(), Color: true}
}

// Bind registers -flavor, -debug and -no-color on set, using c's current
// values as defaults.
func (c *Config) Bind(set *flag.FlagSet) {
	names := make([]string, 0, len(emitter.Flavors()))
	for _, f := range emitter.Flavors() {
		names = append(names, f.String())
	}
	set.StringVar(&c.Flavor, "flavor", c.Flavor, "Regex flavor to emit, one of "+strings.Join(names, ", "))
	set.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
	set.BoolFunc("no-color", "Disable colored diagnostics", func(string) error {
		c.Color = false
		return nil
	})
}

// Apply copies the file's values into c, except for settings that were
// given explicitly on the command line.
func (c *Config) Apply(f *File, set *flag.FlagSet) {
	explicit := make(map[string]bool)
	set.Visit(func(fl *flag.Flag) { explicit[fl.Name] = true })

	if f.Flavor != nil && !explicit["flavor"] {
		c.Flavor = *f.Flavor
	}
	if f.Debug != nil && !explicit["debug"] {
		c.Debug = *f.Debug
	}
	if f.Color != nil && !explicit["no-color"] {
		c.Color = *f.Color
	}
}

// EmitterFlavor validates the configured flavor name.
func (c Config) EmitterFlavor() (emitter.Flavor, error) {
	return emitter.ParseFlavor(c.Flavor)
}

// Parse decodes a YAML config. Unknown keys are an error.
func Parse(data []byte) (*File, error) {
	f := &File{}
	if err := yaml.UnmarshalStrict(data, f); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return f, nil
}

// Load reads and parses the config file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// LoadOptional is Load, except that a missing file yields (nil, nil).
func LoadOptional(path string) (*File, error) {
	f, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return f, err
}
