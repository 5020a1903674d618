package gpxheatmap

import (
	"fmt"
	"slices"

	"github.com/paulmach/orb"
)

// DefaultHeatWeight is the intensity every point contributes to the heat layer.
const DefaultHeatWeight = 0.05

// BoundingBox is a south/west/north/east rectangle in degrees. Longitude
// wraparound at the antimeridian is not handled.
type BoundingBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

func boxFromBound(b orb.Bound) BoundingBox {
	return BoundingBox{South: b.Min.Lat(), West: b.Min.Lon(), North: b.Max.Lat(), East: b.Max.Lon()}
}

func (b BoundingBox) bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.West, b.South}, Max: orb.Point{b.East, b.North}}
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return boxFromBound(b.bound().Union(o.bound()))
}

// Contains reports whether p lies inside b, edges included.
func (b BoundingBox) Contains(p GeoPoint) bool {
	return b.South <= p.Lat && p.Lat <= b.North &&
		b.West <= p.Lon && p.Lon <= b.East
}

// TrackBounds returns the bounding box of the points in t.
func TrackBounds(t Track) (BoundingBox, error) {
	if len(t.Points) == 0 {
		return BoundingBox{}, fmt.Errorf("bounds of %q: %w", t.Name, ErrEmptyTrack)
	}
	mp := make(orb.MultiPoint, len(t.Points))
	for i, p := range t.Points {
		mp[i] = p.orbPoint()
	}
	return boxFromBound(mp.Bound()), nil
}

// WeightedPoint is one sample of the heat layer.
type WeightedPoint struct {
	Lat    float64
	Lon    float64
	Weight float64
}

// Aggregate is the state threaded through Fold: every point pooled from the
// tracks seen so far plus their combined bounding box.
type Aggregate struct {
	Points []WeightedPoint
	Bounds BoundingBox
	Tracks int
}

// Len is the number of pooled points.
func (a Aggregate) Len() int {
	return len(a.Points)
}

// Fold adds t to the aggregate with a constant weight per point and returns
// the new state. a is never modified and the result shares no spare
// capacity with it, so any earlier state can be folded into again. On error
// the returned state equals a.
func Fold(a Aggregate, t Track, weight float64) (Aggregate, error) {
	box, err := TrackBounds(t)
	if err != nil {
		return a, err
	}
	next := Aggregate{Points: slices.Clip(a.Points), Bounds: box, Tracks: a.Tracks + 1}
	if a.Tracks > 0 {
		next.Bounds = a.Bounds.Union(box)
	}
	for _, p := range t.Points {
		next.Points = append(next.Points, WeightedPoint{Lat: p.Lat, Lon: p.Lon, Weight: weight})
	}
	return next, nil
}
