package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mjurczak/watchmap/gpxheatmap"
)

// EnvPrefix is prepended to environment overrides: WATCHMAP_LOG_LEVEL sets
// log.level.
const EnvPrefix = "WATCHMAP"

// Config holds all run configuration.
type Config struct {
	Dir                      string  `mapstructure:"dir" validate:"required"`
	Output                   string  `mapstructure:"output" validate:"required"`
	MinPointSeparationMeters float64 `mapstructure:"min_point_separation_meters" validate:"gt=0"`
	MaxFilesPerRun           int     `mapstructure:"max_files_per_run" validate:"gte=0"`
	Recursive                bool    `mapstructure:"recursive"`
	Distance                 string  `mapstructure:"distance" validate:"oneof=haversine wgs84"`
	GeoJSON                  string  `mapstructure:"geojson"`
	MetricsFile              string  `mapstructure:"metrics_file"`
	Title                    string  `mapstructure:"title"`

	Heat  HeatConfig             `mapstructure:"heat"`
	Track gpxheatmap.TrackStyle  `mapstructure:"track"`
	Tiles []gpxheatmap.TileLayer `mapstructure:"tiles" validate:"dive"`
	Log   LogConfig              `mapstructure:"log"`
}

// HeatConfig is the heat layer section: per-point weight and layer style.
type HeatConfig struct {
	Weight               float64 `mapstructure:"weight" validate:"gt=0"`
	gpxheatmap.HeatStyle `mapstructure:",squash"`
}

// LogConfig selects the slog level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"dir":            "dir",
	"output":         "output",
	"min-separation": "min_point_separation_meters",
	"max-files":      "max_files_per_run",
	"recursive":      "recursive",
	"distance":       "distance",
	"geojson":        "geojson",
	"metrics-file":   "metrics_file",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

// Load reads configuration from defaults, an optional YAML file, environment
// variables and flags, in increasing order of precedence. With configFile
// empty, watchmap.yaml is looked up in the working directory and may be
// absent; an explicit configFile must exist.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("dir", "")
	v.SetDefault("output", gpxheatmap.DefaultOutput)
	v.SetDefault("min_point_separation_meters", gpxheatmap.DefaultMinSeparation)
	v.SetDefault("max_files_per_run", gpxheatmap.DefaultMaxFiles)
	v.SetDefault("recursive", false)
	v.SetDefault("distance", "haversine")
	v.SetDefault("geojson", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("title", "GPX Heatmap")
	v.SetDefault("heat.weight", gpxheatmap.DefaultHeatWeight)
	v.SetDefault("heat.radius", 8)
	v.SetDefault("heat.blur", 10)
	v.SetDefault("track.color", "red")
	v.SetDefault("track.weight", 2)
	v.SetDefault("track.opacity", 0.1)
	v.SetDefault("track.smooth_factor", 4.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("watchmap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.Tiles) == 0 {
		cfg.Tiles = gpxheatmap.DefaultTileLayers()
	}
	if len(cfg.Heat.Gradient) == 0 {
		cfg.Heat.Gradient = gpxheatmap.DefaultGradient()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RenderOptions returns the map styling.
func (c *Config) RenderOptions() gpxheatmap.RenderOptions {
	return gpxheatmap.RenderOptions{
		Title: c.Title,
		Tiles: c.Tiles,
		Heat:  c.Heat.HeatStyle,
		Track: c.Track,
	}
}
