package board

import (
	"time"

	"github.com/bryandebourbon/gotransit-board/departures"
)

// Thirty future-looking entries one minute apart, computed once from a
// single snapshot with no further refresh.
const (
	DefaultTimelineSteps   = 30
	DefaultTimelineSpacing = time.Minute
)

// TimelineEntry is the board as it will look at one future instant.
type TimelineEntry struct {
	AsOf       time.Time        `json:"as_of"`
	Departures []TimedDeparture `json:"departures"`
}

// TimedDeparture decorates a departure with its countdown relative to
// the entry's as-of time.
type TimedDeparture struct {
	departures.Departure
	CountdownMinutes int  `json:"countdown_minutes"`
	CountdownKnown   bool `json:"countdown_known"`
}

// BuildTimeline precomputes steps entries spaced apart from start.
// Each entry drops departures that have already left by its as-of
// time; departures with no time estimate stay on every entry since
// they cannot be aged out.
func BuildTimeline(deps []departures.Departure, start time.Time, steps int, spacing time.Duration) []TimelineEntry {
	if steps <= 0 {
		steps = DefaultTimelineSteps
	}
	if spacing <= 0 {
		spacing = DefaultTimelineSpacing
	}
	entries := make([]TimelineEntry, 0, steps)
	for i := 0; i < steps; i++ {
		asOf := start.Add(time.Duration(i) * spacing)
		entry := TimelineEntry{AsOf: asOf}
		for _, d := range deps {
			mins, known := d.Countdown(asOf)
			if known && mins < 0 {
				continue // already departed at this instant
			}
			entry.Departures = append(entry.Departures, TimedDeparture{
				Departure:        d,
				CountdownMinutes: mins,
				CountdownKnown:   known,
			})
		}
		entries = append(entries, entry)
	}
	return entries
}
