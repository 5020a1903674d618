package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mjurczak/watchmap/config"
	"github.com/mjurczak/watchmap/gpxheatmap"
	"github.com/mjurczak/watchmap/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "watchmap",
	Short: "Plot a directory of GPX/TCX recordings onto a heatmap",
	Long: `watchmap reads every GPX and TCX file in a directory, thins each track
so consecutive points are at least a few meters apart, and writes a single
HTML page with one line per track, a density heat layer over all points
and the view fitted to the area covered.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
		return Run(cfg, logger)
	},
}

// Run executes one pipeline run as configured.
func Run(cfg *config.Config, logger *slog.Logger) error {
	src, err := gpxheatmap.OpenSource(cfg.Dir, gpxheatmap.SourceOptions{
		MaxFiles:  cfg.MaxFilesPerRun,
		Recursive: cfg.Recursive,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	distance, err := gpxheatmap.DistanceByName(cfg.Distance)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	p := &gpxheatmap.Pipeline{
		Reducer: gpxheatmap.Reducer{MinSeparation: cfg.MinPointSeparationMeters, Distance: distance},
		Weight:  cfg.Heat.Weight,
		Metrics: gpxheatmap.NewMetrics(reg),
		Logger:  logger,
	}
	res, runErr := p.Run(src)
	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			logger.Warn("could not write metrics", "file", cfg.MetricsFile, "error", err)
		}
	}
	if runErr != nil {
		if errors.Is(runErr, gpxheatmap.ErrNoPoints) {
			return fmt.Errorf("nothing to plot in %s: %w", cfg.Dir, runErr)
		}
		return runErr
	}

	renderer := gpxheatmap.NewLeafletRenderer(cfg.RenderOptions())
	if err := gpxheatmap.WriteMap(cfg.Output, renderer, res.MapData()); err != nil {
		return err
	}
	logger.Info("map written", "file", cfg.Output, "tracks", len(res.Tracks), "points", res.Aggregate.Len())

	if cfg.GeoJSON != "" {
		if err := gpxheatmap.WriteGeoJSON(cfg.GeoJSON, res.Tracks, res.Aggregate.Bounds); err != nil {
			return err
		}
		logger.Info("geojson written", "file", cfg.GeoJSON)
	}
	return nil
}

// Execute runs the root command and exits non-zero on failure. This is
// called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (default is ./watchmap.yaml if present)")
	f.StringP("dir", "d", "", "Input directory")
	f.StringP("output", "o", gpxheatmap.DefaultOutput, "Output map name")
	f.Float64("min-separation", gpxheatmap.DefaultMinSeparation, "Minimum distance in meters between kept track points")
	f.Int("max-files", gpxheatmap.DefaultMaxFiles, "Maximum number of trace files parsed (0 for no limit)")
	f.Bool("recursive", false, "Descend into subdirectories")
	f.String("distance", "haversine", "Distance metric: haversine or wgs84")
	f.String("geojson", "", "Also write the reduced tracks as GeoJSON to this file")
	f.String("metrics-file", "", "Write run counters in Prometheus text format to this file")
	f.String("log-level", "info", "Log level: debug, info, warn or error")
	f.String("log-format", "text", "Log format: text or json")
}
