package gpxheatmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracksToGeoJSON(t *testing.T) {
	tracks := []Track{
		{Name: "A", Path: "a.gpx", Points: []GeoPoint{{0, 0}, {0, 0.0002}, {0, 0.0005}}},
		{Name: "B", Path: "b.tcx", Points: []GeoPoint{{1, 2}}},
		{Name: "skipped"},
	}
	fc := TracksToGeoJSON(tracks, BoundingBox{South: 0, West: 0, North: 1, East: 2})

	require.Len(t, fc.Features, 2)
	ls, ok := fc.Features[0].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Equal(t, orb.LineString{{0, 0}, {0.0002, 0}, {0.0005, 0}}, ls)
	assert.Equal(t, "A", fc.Features[0].Properties.MustString("name"))
	assert.Equal(t, 3, fc.Features[0].Properties.MustInt("points"))

	pt, ok := fc.Features[1].Geometry.(orb.Point)
	require.True(t, ok)
	assert.Equal(t, orb.Point{2, 1}, pt)
	assert.Equal(t, "b.tcx", fc.Features[1].Properties.MustString("source"))

	assert.Equal(t, geojson.BBox{0, 0, 2, 1}, fc.BBox)
}

func TestWriteGeoJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tracks.geojson")
	tracks := []Track{{Name: "A", Points: []GeoPoint{{47.1, 8.2}, {47.2, 8.3}}}}
	require.NoError(t, WriteGeoJSON(out, tracks, BoundingBox{South: 47.1, West: 8.2, North: 47.2, East: 8.3}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "LineString", fc.Features[0].Geometry.GeoJSONType())
}
