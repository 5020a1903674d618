package gpxheatmap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what a pipeline run did. A nil *Metrics records nothing.
type Metrics struct {
	Files  *prometheus.CounterVec
	Points *prometheus.CounterVec
	Tracks *prometheus.CounterVec
}

// NewMetrics registers the run counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Files: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watchmap",
			Name:      "files_total",
			Help:      "Trace files listed, by outcome",
		}, []string{"outcome"}),
		Points: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watchmap",
			Name:      "points_total",
			Help:      "Track points, by pipeline stage",
		}, []string{"stage"}),
		Tracks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "watchmap",
			Name:      "tracks_total",
			Help:      "Tracks, by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeTrack(read, kept, reduced int, aggregated bool) {
	if m == nil {
		return
	}
	m.Points.WithLabelValues("read").Add(float64(read))
	m.Points.WithLabelValues("filtered").Add(float64(kept))
	m.Points.WithLabelValues("reduced").Add(float64(reduced))
	if aggregated {
		m.Tracks.WithLabelValues("aggregated").Inc()
	} else {
		m.Tracks.WithLabelValues("empty").Inc()
	}
}

func (m *Metrics) observeSource(s SourceStats) {
	if m == nil {
		return
	}
	m.Files.WithLabelValues("parsed").Add(float64(s.Parsed))
	m.Files.WithLabelValues(SkipUnsupported.String()).Add(float64(s.Unsupported))
	m.Files.WithLabelValues(SkipParseFailure.String()).Add(float64(s.Failed))
	m.Files.WithLabelValues(SkipCapped.String()).Add(float64(s.Capped))
}
