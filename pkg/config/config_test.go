package config_test

import (
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rulex/pkg/compiler/emitter"
	"github.com/agenthands/rulex/pkg/config"
)

func TestParse(t *testing.T) {
	f, err := config.Parse([]byte("flavor: python\ncolor: false\n"))
	require.NoError(t, err)
	require.NotNil(t, f.Flavor)
	assert.Equal(t, "python", *f.Flavor)
	require.NotNil(t, f.Color)
	assert.False(t, *f.Color)
	assert.Nil(t, f.Debug)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := config.Parse([]byte("flavour: python\n"))
	assert.ErrorContains(t, err, "parsing config")
}

func TestFlagsOverrideFile(t *testing.T) {
	f, err := config.Parse([]byte("flavor: ruby\ndebug: true\ncolor: false\n"))
	require.NoError(t, err)

	cfg := config.Default()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.Bind(set)
	require.NoError(t, set.Parse([]string{"-flavor", "java"}))

	cfg.Apply(f, set)
	assert.Equal(t, config.Config{Flavor: "java", Debug: true, Color: false}, cfg)

	flavor, err := cfg.EmitterFlavor()
	require.NoError(t, err)
	assert.Equal(t, emitter.Java, flavor)
}

func TestNoColorFlag(t *testing.T) {
	cfg := config.Default()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.Bind(set)
	require.NoError(t, set.Parse([]string{"-no-color"}))

	yes := true
	cfg.Apply(&config.File{Color: &yes}, set)
	assert.False(t, cfg.Color)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte("flavor: re2\n"), 0o600))

	f, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "re2", *f.Flavor)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	f, err = config.LoadOptional(filepath.Join(dir, "missing.yaml"))
	assert.NoError(t, err)
	assert.Nil(t, f)
}

func TestInvalidFlavor(t *testing.T) {
	cfg := config.Config{Flavor: "perl"}
	_, err := cfg.EmitterFlavor()
	assert.ErrorIs(t, err, emitter.ErrUnknownFlavor)
}
