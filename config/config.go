// Package config resolves coordex options from defaults, an optional config file,
// COORDEX_* environment variables and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variables, for example COORDEX_OUTPUT.
const EnvPrefix = "COORDEX"

// ConfigName is the name (without extension) of the optional config file.
const ConfigName = "coordex"

// DefaultOutput is the default directory shapefiles are written to.
const DefaultOutput = "shapes"

// Config holds the resolved coordex options.
type Config struct {
	// The directory to write output files to.
	Output string `mapstructure:"output"`
	// Write per-photo attributes.
	Properties bool `mapstructure:"properties"`
	// Also write a GeoJSON copy of the output.
	GeoJSON bool `mapstructure:"geojson"`
	// Enable debug logging.
	Verbose bool `mapstructure:"verbose"`
}

// Load resolves a Config using fs and a config file in the current directory.
func Load(fs *flag.FlagSet) (*Config, error) {
	return LoadWithPaths(fs, ".")
}

// LoadWithPaths resolves a Config using fs and the first config file found in paths.
// Only flags that were explicitly set on the command line override other sources.
func LoadWithPaths(fs *flag.FlagSet, paths ...string) (*Config, error) {

	v := viper.New()

	v.SetDefault("output", DefaultOutput)
	v.SetDefault("properties", false)
	v.SetDefault("geojson", false)
	v.SetDefault("verbose", false)

	v.SetConfigName(ConfigName)

	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	err := v.ReadInConfig()

	if err != nil {

		var not_found viper.ConfigFileNotFoundError

		if !errors.As(err, &not_found) {
			return nil, fmt.Errorf("Failed to read config file, %w", err)
		}
	}

	if fs != nil {

		fs.Visit(func(fl *flag.Flag) {
			v.Set(fl.Name, fl.Value.String())
		})
	}

	cfg := new(Config)

	err = v.Unmarshal(cfg)

	if err != nil {
		return nil, fmt.Errorf("Failed to decode config, %w", err)
	}

	return cfg, nil
}
