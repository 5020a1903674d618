package gpxheatmap

import (
	"errors"
	"fmt"

	"github.com/StefanSchroeder/Golang-Ellipsoid/ellipsoid"
	"github.com/paulmach/orb/geo"
)

// DefaultMinSeparation is the minimum spacing in meters between two
// consecutive points kept by a Reducer.
const DefaultMinSeparation = 15.0

// ErrEmptyTrack is returned when an operation needs at least one point.
var ErrEmptyTrack = errors.New("track has no points")

// DistanceFunc returns the geodesic distance between a and b in meters.
type DistanceFunc func(a, b GeoPoint) float64

// Haversine is the great-circle distance on a spherical earth.
func Haversine(a, b GeoPoint) float64 {
	return geo.DistanceHaversine(a.orbPoint(), b.orbPoint())
}

var wgs84 = ellipsoid.Init("WGS84", ellipsoid.Degrees, ellipsoid.Meter,
	ellipsoid.LongitudeIsSymmetric, ellipsoid.BearingIsSymmetric)

// WGS84 is the geodesic distance on the WGS84 ellipsoid.
func WGS84(a, b GeoPoint) float64 {
	if a == b {
		return 0
	}
	distance, _ := wgs84.To(a.Lat, a.Lon, b.Lat, b.Lon)
	return distance
}

// DistanceByName resolves a configured metric name.
func DistanceByName(name string) (DistanceFunc, error) {
	switch name {
	case "", "haversine":
		return Haversine, nil
	case "wgs84":
		return WGS84, nil
	}
	return nil, fmt.Errorf("unknown distance metric %q", name)
}

// Reducer thins out a track so that consecutive kept points are more than
// MinSeparation meters apart.
//
// The first point is always kept. Scanning forward, the next point kept is
// the first one farther than MinSeparation from the last kept point; all
// points in between are discarded. Unlike Douglas-Peucker this bounds the
// spacing of the output, not its deviation from the input path.
type Reducer struct {
	MinSeparation float64
	Distance      DistanceFunc
}

// Reduce returns a new track and leaves t untouched.
func (r Reducer) Reduce(t Track) (Track, error) {
	if len(t.Points) == 0 {
		return Track{}, fmt.Errorf("reduce %q: %w", t.Name, ErrEmptyTrack)
	}
	minSep := r.MinSeparation
	if minSep <= 0 {
		minSep = DefaultMinSeparation
	}
	dist := r.Distance
	if dist == nil {
		dist = Haversine
	}

	last := t.Points[0]
	points := []GeoPoint{last}
	for _, p := range t.Points[1:] {
		if dist(last, p) > minSep {
			points = append(points, p)
			last = p
		}
	}
	return Track{Name: t.Name, Path: t.Path, Points: points}, nil
}
