package gpxheatmap

import (
	"errors"
	"log/slog"
)

// ErrNoPoints is returned when a run ends without a single usable point.
var ErrNoPoints = errors.New("no track points to render")

// Pipeline filters, reduces and aggregates tracks, one at a time.
type Pipeline struct {
	Reducer Reducer
	// Weight is the heat intensity of every point. Zero means DefaultHeatWeight.
	Weight  float64
	Metrics *Metrics
	Logger  *slog.Logger
}

// Result is what a run hands over to the renderer.
type Result struct {
	Tracks        []Track
	Aggregate     Aggregate
	Source        SourceStats
	DroppedPoints int
	EmptyTracks   int
}

// MapData returns the renderer input.
func (r *Result) MapData() MapData {
	return MapData{Tracks: r.Tracks, Heat: r.Aggregate.Points, Bounds: r.Aggregate.Bounds}
}

// Run drains src. Per-file and per-point problems are counted and skipped;
// ErrNoPoints is returned, together with the partial result, when nothing
// could be aggregated.
func (p *Pipeline) Run(src TrackIterator) (*Result, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	weight := p.Weight
	if weight == 0 {
		weight = DefaultHeatWeight
	}

	res := &Result{}
	for src.Next() {
		raw := src.Track()
		track, dropped := FilterTrack(raw)
		res.DroppedPoints += dropped
		if dropped > 0 {
			log.Debug("dropped malformed points", "track", raw.Name, "dropped", dropped)
		}

		reduced, err := p.Reducer.Reduce(track)
		if err == nil {
			res.Aggregate, err = Fold(res.Aggregate, reduced, weight)
		}
		if err != nil {
			res.EmptyTracks++
			p.Metrics.observeTrack(len(raw.Points), len(track.Points), 0, false)
			log.Warn("skipping track", "track", raw.Name, "file", raw.Path, "error", err)
			continue
		}
		p.Metrics.observeTrack(len(raw.Points), len(track.Points), len(reduced.Points), true)
		res.Tracks = append(res.Tracks, reduced)
		log.Debug("track reduced", "track", reduced.Name, "points", len(track.Points), "kept", len(reduced.Points))
	}

	res.Source = src.Stats()
	p.Metrics.observeSource(res.Source)
	log.Info("tracks aggregated",
		"tracks", len(res.Tracks),
		"points", res.Aggregate.Len(),
		"files_parsed", res.Source.Parsed,
		"files_failed", res.Source.Failed,
		"files_unsupported", res.Source.Unsupported,
		"files_capped", res.Source.Capped,
		"dropped_points", res.DroppedPoints,
		"empty_tracks", res.EmptyTracks,
	)
	if res.Aggregate.Len() == 0 {
		return res, ErrNoPoints
	}
	return res, nil
}
