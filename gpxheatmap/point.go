package gpxheatmap

import (
	"math"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/spf13/cast"
)

// GeoPoint is a WGS84 position in decimal degrees.
type GeoPoint struct {
	Lat float64
	Lon float64
}

func (p GeoPoint) orbPoint() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// RawPoint is a track point as handed over by a format reader. Latitude and
// longitude are kept untyped: readers may deliver numbers, numeric strings or
// nothing at all.
type RawPoint struct {
	LatitudeDegrees  any
	LongitudeDegrees any
	Time             time.Time
}

// RawTrack holds the points of one recording before validation.
type RawTrack struct {
	Name   string
	Path   string
	Format string
	Points []RawPoint
}

// TimeSpan returns the earliest and latest timestamps in t. Points without a
// time are ignored; both results are zero when no point carries one.
func (t RawTrack) TimeSpan() (start, end time.Time) {
	for _, p := range t.Points {
		if p.Time.IsZero() {
			continue
		}
		if start.IsZero() || p.Time.Before(start) {
			start = p.Time
		}
		if p.Time.After(end) {
			end = p.Time
		}
	}
	return start, end
}

// Track is an ordered sequence of valid points from one recording.
type Track struct {
	Name   string
	Path   string
	Points []GeoPoint
}

// FilterTrack keeps the points whose coordinates are finite numbers within
// the degree ranges and reports how many were dropped. Point order is kept.
func FilterTrack(raw RawTrack) (Track, int) {
	track := Track{Name: raw.Name, Path: raw.Path}
	points := make([]GeoPoint, 0, len(raw.Points))
	for _, rp := range raw.Points {
		lat, ok := parseDegrees(rp.LatitudeDegrees, 90)
		if !ok {
			continue
		}
		lon, ok := parseDegrees(rp.LongitudeDegrees, 180)
		if !ok {
			continue
		}
		points = append(points, GeoPoint{Lat: lat, Lon: lon})
	}
	track.Points = points
	return track, len(raw.Points) - len(points)
}

// parseDegrees accepts numbers and decimal strings. Surrounding whitespace is
// ignored; hexadecimal notation is not a coordinate.
func parseDegrees(v any, limit float64) (float64, bool) {
	switch s := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		s = strings.TrimSpace(s)
		if strings.ContainsAny(s, "xX") {
			return 0, false
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < -limit || f > limit {
		return 0, false
	}
	return f, true
}
