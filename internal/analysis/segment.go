package analysis

import (
	"errors"
	"fmt"
)

// ErrUnknownSegment is returned for labels that do not name one of the four
// track segments.
var ErrUnknownSegment = errors.New("unknown segment")

// SegmentLength is the nominal length of a track segment in meters.
const SegmentLength = 25.0

// TrackLength is the nominal length of the full track in meters.
const TrackLength = 100.0

// Segment identifies one of the four fixed 25-meter portions of the track.
type Segment string

const (
	Segment0to25   Segment = "0-25m"
	Segment25to50  Segment = "25-50m"
	Segment50to75  Segment = "50-75m"
	Segment75to100 Segment = "75-100m"
)

// Segments lists all segments in track order.
var Segments = []Segment{Segment0to25, Segment25to50, Segment50to75, Segment75to100}

// ParseSegment parses a segment label.
func ParseSegment(label string) (Segment, error) {
	switch Segment(label) {
	case Segment0to25, Segment25to50, Segment50to75, Segment75to100:
		return Segment(label), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSegment, label)
}

// Index returns the position of the segment on the track, starting at 0.
func (s Segment) Index() int {
	for i, seg := range Segments {
		if seg == s {
			return i
		}
	}
	return -1
}

// Offset returns the distance in meters from the start line to the
// beginning of the segment.
func (s Segment) Offset() float64 {
	return float64(s.Index()) * SegmentLength
}

func (s Segment) String() string {
	return string(s)
}
