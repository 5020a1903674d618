package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mjurczak/watchmap/gpxheatmap"
)

func testFlags() *pflag.FlagSet {
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.StringP("dir", "d", "", "")
	f.StringP("output", "o", gpxheatmap.DefaultOutput, "")
	f.Float64("min-separation", gpxheatmap.DefaultMinSeparation, "")
	f.Int("max-files", gpxheatmap.DefaultMaxFiles, "")
	f.String("distance", "haversine", "")
	f.String("log-level", "info", "")
	return f
}

// chdir moves into an empty directory so no stray watchmap.yaml is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)
	f := testFlags()
	require.NoError(t, f.Parse([]string{"-d", "/data/tracks"}))

	cfg, err := Load("", f)
	require.NoError(t, err)
	assert.Equal(t, "/data/tracks", cfg.Dir)
	assert.Equal(t, "heatmap-map.html", cfg.Output)
	assert.Equal(t, 15.0, cfg.MinPointSeparationMeters)
	assert.Equal(t, 50, cfg.MaxFilesPerRun)
	assert.Equal(t, "haversine", cfg.Distance)
	assert.Equal(t, 0.05, cfg.Heat.Weight)
	assert.Equal(t, 8, cfg.Heat.Radius)
	assert.Equal(t, 10, cfg.Heat.Blur)
	assert.Equal(t, gpxheatmap.DefaultGradient(), cfg.Heat.Gradient)
	assert.Equal(t, gpxheatmap.DefaultTileLayers(), cfg.Tiles)
	assert.Equal(t, gpxheatmap.TrackStyle{Color: "red", Weight: 2, Opacity: 0.1, SmoothFactor: 4}, cfg.Track)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	opts := cfg.RenderOptions()
	assert.Equal(t, "GPX Heatmap", opts.Title)
	assert.Equal(t, 8, opts.Heat.Radius)
}

func TestLoadRequiresDir(t *testing.T) {
	chdir(t)
	_, err := Load("", testFlags())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Dir")
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("WATCHMAP_DIR", "/env/tracks")
	t.Setenv("WATCHMAP_MIN_POINT_SEPARATION_METERS", "25")
	t.Setenv("WATCHMAP_MAX_FILES_PER_RUN", "0")
	t.Setenv("WATCHMAP_LOG_LEVEL", "debug")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/env/tracks", cfg.Dir)
	assert.Equal(t, 25.0, cfg.MinPointSeparationMeters)
	assert.Equal(t, 0, cfg.MaxFilesPerRun)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFlagsBeatEnv(t *testing.T) {
	chdir(t)
	t.Setenv("WATCHMAP_MIN_POINT_SEPARATION_METERS", "25")
	f := testFlags()
	require.NoError(t, f.Parse([]string{"--dir", "x", "--min-separation", "40"}))

	cfg, err := Load("", f)
	require.NoError(t, err)
	assert.Equal(t, 40.0, cfg.MinPointSeparationMeters)
}

func TestLoadFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dir: /yaml/tracks
output: out.html
min_point_separation_meters: 30
max_files_per_run: 10
distance: wgs84
heat:
  weight: 0.2
  radius: 12
  gradient:
    - stop: 0.5
      color: green
    - stop: 1
      color: black
tiles:
  - name: Local
    url: http://tiles.local/{z}/{x}/{y}.png
    max_zoom: 17
log:
  format: json
`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/yaml/tracks", cfg.Dir)
	assert.Equal(t, "out.html", cfg.Output)
	assert.Equal(t, 30.0, cfg.MinPointSeparationMeters)
	assert.Equal(t, 10, cfg.MaxFilesPerRun)
	assert.Equal(t, "wgs84", cfg.Distance)
	assert.Equal(t, 0.2, cfg.Heat.Weight)
	assert.Equal(t, 12, cfg.Heat.Radius)
	assert.Equal(t, 10, cfg.Heat.Blur)
	assert.Equal(t, []gpxheatmap.GradientStop{{Stop: 0.5, Color: "green"}, {Stop: 1, Color: "black"}}, cfg.Heat.Gradient)
	assert.Equal(t, []gpxheatmap.TileLayer{{Name: "Local", URL: "http://tiles.local/{z}/{x}/{y}.png", MaxZoom: 17}}, cfg.Tiles)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadDefaultFileInWorkingDir(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "watchmap.yaml"), []byte("dir: found\nrecursive: true\n"), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "found", cfg.Dir)
	assert.True(t, cfg.Recursive)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t)
	_, err := Load("does-not-exist.yaml", nil)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero separation", map[string]string{"WATCHMAP_MIN_POINT_SEPARATION_METERS": "0"}},
		{"negative cap", map[string]string{"WATCHMAP_MAX_FILES_PER_RUN": "-1"}},
		{"unknown metric", map[string]string{"WATCHMAP_DISTANCE": "manhattan"}},
		{"unknown level", map[string]string{"WATCHMAP_LOG_LEVEL": "loud"}},
		{"zero weight", map[string]string{"WATCHMAP_HEAT_WEIGHT": "0"}},
		{"opacity above one", map[string]string{"WATCHMAP_TRACK_OPACITY": "1.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t)
			t.Setenv("WATCHMAP_DIR", "/tracks")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", nil)
			assert.Error(t, err)
		})
	}
}
