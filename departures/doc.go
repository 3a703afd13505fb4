// Package departures turns decoded GTFS-Realtime feeds into per-stop,
// per-direction departure boards.
//
// Project flattens feed entities into immutable TripUpdate records;
// Filter selects and orders the trips serving one stop. Both are pure
// functions: every poll recomputes from scratch, no state crosses
// invocations.
//
// Delay is carried in seconds throughout; DelayMinutes on a Departure
// is the only derived minute value and is computed by rounding, never
// by reinterpreting raw seconds as minutes.
package departures
