package gpxheatmap

import (
	"errors"
	"fmt"
	"log/slog"
)

// DefaultMaxFiles is the default number of trace files parsed in one run.
const DefaultMaxFiles = 50

// ErrUnsupportedFormat marks files whose extension has no reader.
var ErrUnsupportedFormat = errors.New("unsupported trace format")

// SkipReason says why the source passed over a file.
type SkipReason int

const (
	SkipUnsupported SkipReason = iota + 1
	SkipParseFailure
	SkipCapped
)

func (r SkipReason) String() string {
	switch r {
	case SkipUnsupported:
		return "unsupported"
	case SkipParseFailure:
		return "parse_failure"
	case SkipCapped:
		return "capped"
	}
	return fmt.Sprintf("SkipReason(%d)", int(r))
}

// SkipError describes a file that did not yield a track. It never aborts a
// run.
type SkipError struct {
	Path   string
	Reason SkipReason
	Err    error
}

func (e *SkipError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("skip %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("skip %s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

// SourceStats counts what the source did with each file it listed.
type SourceStats struct {
	Seen        int
	Parsed      int
	Unsupported int
	Failed      int
	Capped      int
}

// SourceOptions configures OpenSource.
type SourceOptions struct {
	// MaxFiles caps the number of parse attempts. Zero means no cap.
	MaxFiles  int
	Recursive bool
	Logger    *slog.Logger
}

// TrackIterator yields raw tracks one at a time.
type TrackIterator interface {
	Next() bool
	Track() RawTrack
	Stats() SourceStats
}

// Source iterates over the trace files of a directory, parsing one file per
// call to Next. It is finite and cannot be restarted.
type Source struct {
	files    []string
	pos      int
	maxFiles int
	log      *slog.Logger

	cur     RawTrack
	stats   SourceStats
	skipped []*SkipError
}

// OpenSource lists dir. Files are only parsed as the source is advanced.
func OpenSource(dir string, opts SourceOptions) (*Source, error) {
	if opts.MaxFiles < 0 {
		return nil, fmt.Errorf("max files must not be negative, got %d", opts.MaxFiles)
	}
	files, err := listTraceFiles(dir, opts.Recursive)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Source{files: files, maxFiles: opts.MaxFiles, log: log}, nil
}

// Next parses files until one yields a track and reports whether it did.
func (s *Source) Next() bool {
	s.cur = RawTrack{}
	for s.pos < len(s.files) {
		path := s.files[s.pos]
		s.pos++
		s.stats.Seen++

		parse, ok := parserFor(path)
		if !ok {
			s.skip(path, SkipUnsupported, ErrUnsupportedFormat)
			continue
		}
		if s.maxFiles > 0 && s.attempts() >= s.maxFiles {
			s.skip(path, SkipCapped, nil)
			continue
		}

		track, err := parse(path)
		if err != nil {
			s.skip(path, SkipParseFailure, err)
			s.log.Warn("skipping unreadable file", "file", path, "error", err)
			continue
		}
		s.stats.Parsed++
		attrs := []any{"file", path, "format", track.Format, "points", len(track.Points)}
		if start, end := track.TimeSpan(); !start.IsZero() {
			attrs = append(attrs, "start", start, "duration", end.Sub(start))
		}
		s.log.Info("processing file", attrs...)
		s.cur = track
		return true
	}
	return false
}

func (s *Source) attempts() int {
	return s.stats.Parsed + s.stats.Failed
}

func (s *Source) skip(path string, reason SkipReason, err error) {
	switch reason {
	case SkipUnsupported:
		s.stats.Unsupported++
	case SkipParseFailure:
		s.stats.Failed++
	case SkipCapped:
		s.stats.Capped++
	}
	s.skipped = append(s.skipped, &SkipError{Path: path, Reason: reason, Err: err})
	s.log.Debug("file skipped", "file", path, "reason", reason.String())
}

// Track returns the track produced by the last successful call to Next.
func (s *Source) Track() RawTrack { return s.cur }

// Stats returns the counters so far.
func (s *Source) Stats() SourceStats { return s.stats }

// Skipped returns every file passed over so far, in listing order.
func (s *Source) Skipped() []*SkipError { return s.skipped }
