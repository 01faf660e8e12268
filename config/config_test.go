package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func newFlagSet() *flag.FlagSet {

	fs := flag.NewFlagSet("coordex", flag.ContinueOnError)
	fs.String("output", DefaultOutput, "")
	fs.Bool("properties", false, "")
	fs.Bool("geojson", false, "")
	fs.Bool("verbose", false, "")

	return fs
}

func TestLoadDefaults(t *testing.T) {

	fs := newFlagSet()

	err := fs.Parse([]string{})

	if err != nil {
		t.Fatalf("Failed to parse flags, %v", err)
	}

	cfg, err := LoadWithPaths(fs, t.TempDir())

	if err != nil {
		t.Fatalf("Failed to load config, %v", err)
	}

	if cfg.Output != DefaultOutput || cfg.Properties || cfg.GeoJSON || cfg.Verbose {
		t.Fatalf("Unexpected config %+v", cfg)
	}
}

func TestLoadPrecedence(t *testing.T) {

	dir := t.TempDir()

	body := []byte("output: from-file\nproperties: true\ngeojson: true\n")

	err := os.WriteFile(filepath.Join(dir, "coordex.yaml"), body, 0644)

	if err != nil {
		t.Fatalf("Failed to write config file, %v", err)
	}

	t.Setenv("COORDEX_GEOJSON", "false")
	t.Setenv("COORDEX_VERBOSE", "true")
	t.Setenv("COORDEX_OUTPUT", "from-env")

	fs := newFlagSet()

	err = fs.Parse([]string{"-output", "from-flag"})

	if err != nil {
		t.Fatalf("Failed to parse flags, %v", err)
	}

	cfg, err := LoadWithPaths(fs, dir)

	if err != nil {
		t.Fatalf("Failed to load config, %v", err)
	}

	if cfg.Output != "from-flag" {
		t.Fatalf("Expected flag to win, got %s", cfg.Output)
	}

	if !cfg.Properties {
		t.Fatalf("Expected properties from config file")
	}

	if cfg.GeoJSON {
		t.Fatalf("Expected environment to override config file")
	}

	if !cfg.Verbose {
		t.Fatalf("Expected verbose from environment")
	}
}

func TestLoadInvalidConfigFile(t *testing.T) {

	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "coordex.json"), []byte("{not json"), 0644)

	if err != nil {
		t.Fatalf("Failed to write config file, %v", err)
	}

	_, err = LoadWithPaths(nil, dir)

	if err == nil {
		t.Fatalf("Expected an error for an invalid config file")
	}
}
