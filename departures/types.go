package departures

import (
	"fmt"
	"strings"
	"time"
)

// UnknownLabel substitutes for trip and route identifiers the feed
// omitted.
const UnknownLabel = "Unknown"

// Direction is the binary schedule attribute carried by direction_id.
type Direction int

const (
	DirectionUnknown  Direction = iota
	DirectionInbound            // direction_id == 0
	DirectionOutbound           // direction_id == 1
)

func directionFromID(id *uint32) Direction {
	if id == nil {
		return DirectionUnknown
	}
	switch *id {
	case 0:
		return DirectionInbound
	case 1:
		return DirectionOutbound
	}
	return DirectionUnknown
}

func (d Direction) String() string {
	switch d {
	case DirectionInbound:
		return "Inbound"
	case DirectionOutbound:
		return "Outbound"
	}
	return UnknownLabel
}

// Selector narrows a stop query to one direction, or keeps both.
type Selector int

const (
	SelectAll Selector = iota
	SelectInbound
	SelectOutbound
)

// ParseSelector accepts the query-string spellings of a selector.
func ParseSelector(s string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return SelectAll, nil
	case "inbound", "0":
		return SelectInbound, nil
	case "outbound", "1":
		return SelectOutbound, nil
	}
	return SelectAll, fmt.Errorf("unknown direction selector %q", s)
}

func (s Selector) String() string {
	switch s {
	case SelectInbound:
		return "inbound"
	case SelectOutbound:
		return "outbound"
	}
	return "all"
}

// RelationshipKind tags a ScheduleRelationship value.
type RelationshipKind int

const (
	RelationshipUnspecified RelationshipKind = iota
	RelationshipScheduled
	RelationshipSkipped
	RelationshipNoData
	RelationshipOther
)

// ScheduleRelationship is a closed variant of the feed's free-form
// schedule_relationship strings. Unrecognized values are preserved
// verbatim under RelationshipOther so new feed vocabulary is never
// silently lost.
type ScheduleRelationship struct {
	Kind RelationshipKind
	Raw  string // original feed value, set only when Kind == RelationshipOther
}

// ParseScheduleRelationship maps a wire string (nil for absent) onto
// the closed variant.
func ParseScheduleRelationship(s *string) ScheduleRelationship {
	if s == nil {
		return ScheduleRelationship{Kind: RelationshipUnspecified}
	}
	switch strings.ToUpper(strings.TrimSpace(*s)) {
	case "SCHEDULED":
		return ScheduleRelationship{Kind: RelationshipScheduled}
	case "SKIPPED":
		return ScheduleRelationship{Kind: RelationshipSkipped}
	case "NO_DATA":
		return ScheduleRelationship{Kind: RelationshipNoData}
	}
	return ScheduleRelationship{Kind: RelationshipOther, Raw: *s}
}

func (r ScheduleRelationship) String() string {
	switch r.Kind {
	case RelationshipScheduled:
		return "SCHEDULED"
	case RelationshipSkipped:
		return "SKIPPED"
	case RelationshipNoData:
		return "NO_DATA"
	case RelationshipOther:
		return r.Raw
	}
	return ""
}

// TripUpdate is the flattened domain record derived from one feed
// entity. Immutable after projection.
type TripUpdate struct {
	EntityID     string
	TripID       string // UnknownLabel when the feed omits trip_id
	RouteID      string // UnknownLabel when the feed omits route_id
	Direction    Direction
	DelaySeconds *int32 // trip-level delay, absent when the feed omits it
	VehicleLabel string
	StartTime    string
	StartDate    string
	Relationship ScheduleRelationship
	StopTimes    []StopTime
}

// StopTime is the projected per-stop timing record of a trip.
type StopTime struct {
	StopID       string
	Arrival      *Event
	Departure    *Event
	Relationship ScheduleRelationship
}

// Event is a single arrival or departure prediction.
type Event struct {
	DelaySeconds *int32
	Unix         *int64
	Uncertainty  *int32
}

// Departure is the display-ready record for one trip at one stop.
type Departure struct {
	TripID        string
	RouteID       string
	Direction     Direction
	DirectionText string
	VehicleLabel  string
	StopID        string
	Relationship  ScheduleRelationship
	ArrivalUnix   int64 // 0 when the feed carries no arrival estimate
	DepartureUnix int64 // 0 when the feed carries no departure estimate
	DelaySeconds  int32
	DelayMinutes  int32 // DelaySeconds rounded to the nearest minute
}

// DepartureClock formats the departure as a local wall-clock time, or
// empty when the feed gave no estimate.
func (d Departure) DepartureClock(loc *time.Location) string {
	return clock(d.DepartureUnix, loc)
}

// ArrivalClock formats the arrival as a local wall-clock time, or
// empty when the feed gave no estimate.
func (d Departure) ArrivalClock(loc *time.Location) string {
	return clock(d.ArrivalUnix, loc)
}

// Countdown returns whole minutes from now until departure, negative
// once the trip has left. Returns false when the departure time is
// unknown.
func (d Departure) Countdown(now time.Time) (int, bool) {
	if d.DepartureUnix == 0 {
		return 0, false
	}
	return int(time.Unix(d.DepartureUnix, 0).Sub(now) / time.Minute), true
}

func clock(unix int64, loc *time.Location) string {
	if unix == 0 {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(unix, 0).In(loc).Format("15:04")
}
