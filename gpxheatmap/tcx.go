package gpxheatmap

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"
)

// Subset of the Garmin TrainingCenterDatabase v2 schema. Element names are
// matched without namespace so v1 and vendor variants decode too.
type tcxDatabase struct {
	XMLName    xml.Name      `xml:"TrainingCenterDatabase"`
	Activities []tcxActivity `xml:"Activities>Activity"`
	Courses    []tcxCourse   `xml:"Courses>Course"`
}

type tcxActivity struct {
	Sport string   `xml:"Sport,attr"`
	ID    string   `xml:"Id"`
	Laps  []tcxLap `xml:"Lap"`
}

type tcxLap struct {
	Tracks []tcxTrack `xml:"Track"`
}

type tcxCourse struct {
	Name   string     `xml:"Name"`
	Tracks []tcxTrack `xml:"Track"`
}

type tcxTrack struct {
	Points []tcxTrackpoint `xml:"Trackpoint"`
}

type tcxTrackpoint struct {
	Time     string       `xml:"Time"`
	Position *tcxPosition `xml:"Position"`
}

type tcxPosition struct {
	LatitudeDegrees  string `xml:"LatitudeDegrees"`
	LongitudeDegrees string `xml:"LongitudeDegrees"`
}

// ParseTCXFile reads the trackpoints of every activity lap and course in a
// TCX file. Trackpoints without a position (heart rate only samples, for
// instance) are kept with empty coordinates so the point filter can drop them.
func ParseTCXFile(filename string) (RawTrack, error) {
	f, err := os.Open(filename)
	if err != nil {
		return RawTrack{}, fmt.Errorf("read TCX file: %w", err)
	}
	defer f.Close()

	var db tcxDatabase
	if err := xml.NewDecoder(f).Decode(&db); err != nil {
		return RawTrack{}, fmt.Errorf("read TCX file: %w", err)
	}

	track := RawTrack{Name: tcxName(db, filename), Path: filename, Format: FormatTCX}
	add := func(tracks []tcxTrack) {
		for _, trk := range tracks {
			for _, tp := range trk.Points {
				track.Points = append(track.Points, tp.raw())
			}
		}
	}
	for _, activity := range db.Activities {
		for _, lap := range activity.Laps {
			add(lap.Tracks)
		}
	}
	for _, course := range db.Courses {
		add(course.Tracks)
	}
	return track, nil
}

func (tp tcxTrackpoint) raw() RawPoint {
	var rp RawPoint
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(tp.Time)); err == nil {
		rp.Time = t
	}
	if tp.Position != nil {
		rp.LatitudeDegrees = strings.TrimSpace(tp.Position.LatitudeDegrees)
		rp.LongitudeDegrees = strings.TrimSpace(tp.Position.LongitudeDegrees)
	}
	return rp
}

func tcxName(db tcxDatabase, filename string) string {
	for _, a := range db.Activities {
		if a.Sport != "" && a.ID != "" {
			return a.Sport + " " + strings.TrimSpace(a.ID)
		}
	}
	for _, c := range db.Courses {
		if name := strings.TrimSpace(c.Name); name != "" {
			return name
		}
	}
	return baseName(filename)
}
