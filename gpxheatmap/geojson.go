package gpxheatmap

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// TracksToGeoJSON builds a FeatureCollection with one feature per track: a
// LineString, or a Point when reduction left a single point.
func TracksToGeoJSON(tracks []Track, bounds BoundingBox) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, t := range tracks {
		if len(t.Points) == 0 {
			continue
		}
		var g orb.Geometry
		if len(t.Points) == 1 {
			g = t.Points[0].orbPoint()
		} else {
			ls := make(orb.LineString, len(t.Points))
			for i, p := range t.Points {
				ls[i] = p.orbPoint()
			}
			g = ls
		}
		f := geojson.NewFeature(g)
		f.Properties["name"] = t.Name
		f.Properties["source"] = t.Path
		f.Properties["points"] = len(t.Points)
		fc.Append(f)
	}
	if len(fc.Features) > 0 {
		fc.BBox = geojson.NewBBox(bounds.bound())
	}
	return fc
}

// WriteGeoJSON writes the reduced tracks to outputPath.
func WriteGeoJSON(outputPath string, tracks []Track, bounds BoundingBox) error {
	data, err := TracksToGeoJSON(tracks, bounds).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("could not write geojson file: %w", err)
	}
	return nil
}
