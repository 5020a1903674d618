package gpxheatmap

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tkrajina/gpxgo/gpx"
)

// Recognized trace formats.
const (
	FormatGPX = "gpx"
	FormatTCX = "tcx"
)

// ParseFunc reads one trace file into a RawTrack.
type ParseFunc func(path string) (RawTrack, error)

var parsers = map[string]ParseFunc{
	".gpx": ParseGPXFile,
	".tcx": ParseTCXFile,
}

func parserFor(path string) (ParseFunc, bool) {
	p, ok := parsers[strings.ToLower(filepath.Ext(path))]
	return p, ok
}

// listTraceFiles returns the regular files in dir in listing order. With
// recursive set, subdirectories are walked depth first.
func listTraceFiles(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input directory: %s is not a directory", dir)
	}

	var files []string
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("input directory: %w", err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() {
				files = append(files, filepath.Join(dir, e.Name()))
			}
		}
		return files, nil
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}
	return files, nil
}

// ParseGPXFile reads every track segment point of a GPX file, in document
// order, into a single RawTrack.
func ParseGPXFile(filename string) (RawTrack, error) {
	gpxFile, err := gpx.ParseFile(filename)
	if err != nil {
		return RawTrack{}, fmt.Errorf("read GPX file: %w", err)
	}

	track := RawTrack{Name: gpxTrackName(gpxFile, filename), Path: filename, Format: FormatGPX}
	for _, trk := range gpxFile.Tracks {
		for _, segment := range trk.Segments {
			for _, point := range segment.Points {
				track.Points = append(track.Points, RawPoint{
					LatitudeDegrees:  point.Latitude,
					LongitudeDegrees: point.Longitude,
					Time:             point.Timestamp,
				})
			}
		}
	}
	return track, nil
}

func gpxTrackName(g *gpx.GPX, filename string) string {
	for _, trk := range g.Tracks {
		if name := strings.TrimSpace(trk.Name); name != "" {
			return name
		}
	}
	if name := strings.TrimSpace(g.Name); name != "" {
		return name
	}
	return baseName(filename)
}

func baseName(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}
